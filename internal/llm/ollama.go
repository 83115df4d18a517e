package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"notewise/backend/internal/tokens"
)

const defaultOllamaSystemPrompt = "You are a helpful assistant inside a note-taking app."

// ollamaProvider adapts a locally hosted Ollama instance. It requires no
// credential and reports usage through eval counts on the terminal stream
// unit; its streaming framing is newline-delimited JSON.
type ollamaProvider struct {
	client     *http.Client
	url        string
	descriptor ProviderDescriptor
}

// NewOllamaProvider builds the adapter for the Ollama backend at url. The
// model catalog is static, defined at startup.
func NewOllamaProvider(url string, models []ModelDescriptor) Provider {
	if len(models) == 0 {
		models = []ModelDescriptor{
			{ID: "llama3.2", Name: "Llama 3.2", ContextWindow: 8192, CostPer1KTokens: 0},
		}
	}
	return &ollamaProvider{
		client: &http.Client{},
		url:    strings.TrimRight(url, "/"),
		descriptor: ProviderDescriptor{
			ID:             "ollama",
			Name:           "Ollama (local)",
			RequiresAPIKey: false,
			Models:         models,
		},
	}
}

func (p *ollamaProvider) Describe() ProviderDescriptor { return p.descriptor }

// Wire shapes for the Ollama chat API.
type ollamaChatRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Model     string  `json:"model"`
	Message   Message `json:"message"`
	Response  string  `json:"response"`
	Done      bool    `json:"done"`
	EvalCount int     `json:"eval_count"`
}

func (p *ollamaProvider) buildRequest(req *ChatRequest, stream bool) *ollamaChatRequest {
	messages := make([]Message, 0, len(req.Messages)+1)
	messages = append(messages, Message{
		Role:    "system",
		Content: systemPreamble(defaultOllamaSystemPrompt, req.Note),
	})
	messages = append(messages, req.Messages...)

	wire := &ollamaChatRequest{
		Model:    req.Options.Model,
		Messages: messages,
		Stream:   stream,
		Options:  map[string]any{},
	}
	if req.Options.Temperature > 0 {
		wire.Options["temperature"] = req.Options.Temperature
	}
	if req.Options.MaxTokens > 0 {
		wire.Options["num_predict"] = req.Options.MaxTokens
	}
	if len(wire.Options) == 0 {
		wire.Options = nil
	}
	return wire
}

func (p *ollamaProvider) post(ctx context.Context, wire *ollamaChatRequest) (*http.Response, error) {
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, chatError(p.descriptor.ID, err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, chatError(p.descriptor.ID, fmt.Sprintf("backend returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(bodyBytes))))
	}
	return resp, nil
}

func (p *ollamaProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	resp, err := p.post(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, chatError(p.descriptor.ID, fmt.Sprintf("could not decode response: %v", err))
	}

	content := chatResp.Message.Content
	if content == "" {
		content = chatResp.Response
	}
	return p.result(req.Options.Model, content, chatResp.EvalCount), nil
}

func (p *ollamaProvider) ChatStream(ctx context.Context, req *ChatRequest, ch chan<- StreamChunk) error {
	defer close(ch)

	resp, err := p.post(ctx, p.buildRequest(req, true))
	if err != nil {
		return err
	}

	decoder := NewDecoder(ollamaUnit, func(delta string) {
		select {
		case ch <- StreamChunk{Content: delta}:
		case <-ctx.Done():
		}
	})

	if err := decoder.Run(ctx, resp.Body); err != nil {
		if decoder.State() == StateAborted && ctx.Err() != nil {
			return ctx.Err()
		}
		return chatError(p.descriptor.ID, err.Error())
	}

	select {
	case ch <- StreamChunk{Done: true, TokensSoFar: decoder.Tokens()}:
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

func (p *ollamaProvider) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	result, err := p.Chat(ctx, &ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
		Options:  opts,
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

func (p *ollamaProvider) Analyze(ctx context.Context, content string, kind AnalysisKind) (*Analysis, error) {
	text, err := p.Complete(ctx, analysisPrompt(content, kind), Options{Model: p.descriptor.Models[0].ID})
	if err != nil {
		return nil, err
	}
	return extractAnalysis(text, kind), nil
}

// result computes the cost estimate from the backend-reported usage, or from
// the token estimator over the response text when usage is absent.
func (p *ollamaProvider) result(modelID, content string, reportedTokens int) *ChatResult {
	desc, _ := p.descriptor.Model(modelID)
	used := reportedTokens
	if used == 0 {
		used = tokens.Estimate(content)
	}
	return &ChatResult{
		Content:    content,
		Model:      modelID,
		TokensUsed: used,
		Cost:       float64(used) / 1000 * desc.CostPer1KTokens,
	}
}

// ollamaUnit decodes one NDJSON stream chunk.
func ollamaUnit(data []byte) (string, bool, int, error) {
	var chunk ollamaChatResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false, 0, err
	}
	delta := chunk.Message.Content
	if delta == "" {
		delta = chunk.Response
	}
	return delta, chunk.Done, chunk.EvalCount, nil
}
