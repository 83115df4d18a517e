package main

import (
	"os"

	"notewise/backend/internal/app"
)

// @title           Notewise API
// @version         1.0
// @description     Conversational AI backend for the Notewise note-taking app.
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
