package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	AppPort              int    `mapstructure:"APP_PORT"`
	DatabasePath         string `mapstructure:"DATABASE_PATH"`
	OllamaURL            string `mapstructure:"OLLAMA_URL"`
	OpenAIBaseURL        string `mapstructure:"OPENAI_BASE_URL"`
	OpenAIAPIKey         string `mapstructure:"OPENAI_API_KEY"`
	DefaultProvider      string `mapstructure:"DEFAULT_PROVIDER"`
	DefaultModel         string `mapstructure:"DEFAULT_MODEL"`
	ReservedOutputTokens int    `mapstructure:"RESERVED_OUTPUT_TOKENS"`
	LogLevel             string `mapstructure:"LOG_LEVEL"`
}

func LoadConfig() (*Config, error) {
	viper.SetDefault("APP_PORT", 8000)
	viper.SetDefault("DATABASE_PATH", "/data/notewise.db")
	viper.SetDefault("OLLAMA_URL", "http://ollama:11434")
	viper.SetDefault("OPENAI_BASE_URL", "https://api.openai.com")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("DEFAULT_PROVIDER", "ollama")
	viper.SetDefault("DEFAULT_MODEL", "")
	viper.SetDefault("RESERVED_OUTPUT_TOKENS", 1024)
	viper.SetDefault("LOG_LEVEL", "INFO")

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./backend")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
