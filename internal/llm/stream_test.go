package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testUnit decodes the simple {"content": ..., "done": ..., "tokens": ...}
// shape used throughout these tests.
func testUnit(data []byte) (string, bool, int, error) {
	var u struct {
		Content string `json:"content"`
		Done    bool   `json:"done"`
		Tokens  int    `json:"tokens"`
	}
	if err := json.Unmarshal(data, &u); err != nil {
		return "", false, 0, err
	}
	return u.Content, u.Done, u.Tokens, nil
}

func collectDecoder() (*Decoder, *strings.Builder) {
	var out strings.Builder
	d := NewDecoder(testUnit, func(delta string) { out.WriteString(delta) })
	return d, &out
}

func TestDecoder_NDJSONFraming(t *testing.T) {
	d, out := collectDecoder()
	d.Feed([]byte("{\"content\": \"Hello \"}\n{\"content\": \"world\"}\n{\"done\": true, \"tokens\": 7}\n"))

	assert.Equal(t, "Hello world", out.String())
	assert.Equal(t, StateDone, d.State())
	assert.Equal(t, 7, d.Tokens())
}

func TestDecoder_SSEFraming(t *testing.T) {
	d, out := collectDecoder()
	d.Feed([]byte("data: {\"content\": \"Hello \"}\n\ndata: {\"content\": \"world\"}\n\ndata: [DONE]\n\n"))

	assert.Equal(t, "Hello world", out.String())
	assert.Equal(t, StateDone, d.State())
}

func TestDecoder_SSECommentsAndEventsSkipped(t *testing.T) {
	d, out := collectDecoder()
	d.Feed([]byte(": keep-alive\nevent: message\ndata: {\"content\": \"x\"}\n\ndata: [DONE]\n"))

	assert.Equal(t, "x", out.String())
}

func TestDecoder_ArbitrarySplitReassemblesIdentically(t *testing.T) {
	// Multi-byte content: the split points below land inside runes.
	content := "héllo wörld → 日本語テキスト"
	var stream strings.Builder
	for _, r := range content {
		unit, err := json.Marshal(map[string]any{"content": string(r)})
		require.NoError(t, err)
		stream.Write(unit)
		stream.WriteByte('\n')
	}
	stream.WriteString("{\"done\": true}\n")
	full := stream.String()

	whole, wholeOut := collectDecoder()
	whole.Feed([]byte(full))

	for split := 1; split < len(full); split++ {
		d, out := collectDecoder()
		d.Feed([]byte(full[:split]))
		d.Feed([]byte(full[split:]))

		require.Equal(t, wholeOut.String(), out.String(), "split at byte %d", split)
		require.Equal(t, content, out.String(), "split at byte %d", split)
		require.Equal(t, StateDone, d.State(), "split at byte %d", split)
	}
}

func TestDecoder_CorruptUnitSkippedNotFatal(t *testing.T) {
	d, out := collectDecoder()
	d.Feed([]byte("{\"content\": \"before\"}\nnot json at all\n{\"content\": \"after\"}\n{\"done\": true}\n"))

	assert.Equal(t, "beforeafter", out.String())
	assert.Equal(t, StateDone, d.State())
}

func TestDecoder_NoCallbacksAfterDone(t *testing.T) {
	d, out := collectDecoder()
	d.Feed([]byte("{\"done\": true}\n{\"content\": \"late\"}\n"))

	assert.Empty(t, out.String())
	assert.Equal(t, StateDone, d.State())
}

func TestDecoder_TokensEstimatedWhenNotReported(t *testing.T) {
	d, _ := collectDecoder()
	d.Feed([]byte(fmt.Sprintf("{\"content\": %q}\n{\"done\": true}\n", strings.Repeat("x", 40))))

	assert.Equal(t, 10, d.Tokens())
}

func TestDecoder_RunAbortsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	pr, pw := io.Pipe()
	d, out := collectDecoder()

	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx, pr) }()

	_, err := pw.Write([]byte("{\"content\": \"partial\"}\n"))
	require.NoError(t, err)

	cancel()
	pw.CloseWithError(context.Canceled)

	runErr := <-errCh
	assert.ErrorIs(t, runErr, context.Canceled)
	assert.Equal(t, StateAborted, d.State())
	// Everything emitted before cancellation is retained exactly.
	assert.Equal(t, "partial", out.String())
}

func TestDecoder_RunFinishesOnEOFWithoutTerminalUnit(t *testing.T) {
	d, out := collectDecoder()
	err := d.Run(context.Background(), io.NopCloser(strings.NewReader("{\"content\": \"tail\"}")))

	require.NoError(t, err)
	assert.Equal(t, "tail", out.String())
	assert.Equal(t, StateDone, d.State())
}
