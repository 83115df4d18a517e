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

const defaultOpenAISystemPrompt = "You are a helpful assistant inside a note-taking app."

// openAIProvider adapts any OpenAI-compatible chat-completions backend. It
// requires an API key, reports usage on non-streaming responses, and frames
// its stream as `data: ` prefixed SSE events terminated by `data: [DONE]`.
type openAIProvider struct {
	client     *http.Client
	baseURL    string
	apiKey     string
	descriptor ProviderDescriptor
}

// NewOpenAIProvider builds the adapter. The credential is re-read by the
// caller on every construction so configuration changes take effect on the
// next exchange.
func NewOpenAIProvider(baseURL, apiKey string, models []ModelDescriptor) Provider {
	if len(models) == 0 {
		models = []ModelDescriptor{
			{ID: "gpt-4o-mini", Name: "GPT-4o mini", ContextWindow: 128000, CostPer1KTokens: 0.00015},
		}
	}
	return &openAIProvider{
		client:  &http.Client{},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		descriptor: ProviderDescriptor{
			ID:             "openai",
			Name:           "OpenAI-compatible",
			RequiresAPIKey: true,
			Models:         models,
		},
	}
}

func (p *openAIProvider) Describe() ProviderDescriptor { return p.descriptor }

// Wire shapes for the chat-completions API.
type openAIChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Stream      bool      `json:"stream"`
	Temperature float64   `json:"temperature,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type openAIChatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      Message `json:"message"`
		Delta        Message `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

func (p *openAIProvider) buildRequest(req *ChatRequest, stream bool) *openAIChatRequest {
	messages := make([]Message, 0, len(req.Messages)+1)
	messages = append(messages, Message{
		Role:    "system",
		Content: systemPreamble(defaultOpenAISystemPrompt, req.Note),
	})
	messages = append(messages, req.Messages...)

	return &openAIChatRequest{
		Model:       req.Options.Model,
		Messages:    messages,
		Stream:      stream,
		Temperature: req.Options.Temperature,
		MaxTokens:   req.Options.MaxTokens,
	}
}

func (p *openAIProvider) post(ctx context.Context, wire *openAIChatRequest) (*http.Response, error) {
	body, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/v1/chat/completions", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("could not create http request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

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

func (p *openAIProvider) Chat(ctx context.Context, req *ChatRequest) (*ChatResult, error) {
	resp, err := p.post(ctx, p.buildRequest(req, false))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var chatResp openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return nil, chatError(p.descriptor.ID, fmt.Sprintf("could not decode response: %v", err))
	}
	if len(chatResp.Choices) == 0 {
		return nil, chatError(p.descriptor.ID, "backend returned no choices")
	}

	content := chatResp.Choices[0].Message.Content
	return p.result(req.Options.Model, content, chatResp.Usage.TotalTokens), nil
}

func (p *openAIProvider) ChatStream(ctx context.Context, req *ChatRequest, ch chan<- StreamChunk) error {
	defer close(ch)

	resp, err := p.post(ctx, p.buildRequest(req, true))
	if err != nil {
		return err
	}

	decoder := NewDecoder(openAIUnit, func(delta string) {
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

func (p *openAIProvider) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	result, err := p.Chat(ctx, &ChatRequest{
		Messages: []Message{{Role: "user", Content: prompt}},
		Options:  opts,
	})
	if err != nil {
		return "", err
	}
	return result.Content, nil
}

func (p *openAIProvider) Analyze(ctx context.Context, content string, kind AnalysisKind) (*Analysis, error) {
	text, err := p.Complete(ctx, analysisPrompt(content, kind), Options{Model: p.descriptor.Models[0].ID})
	if err != nil {
		return nil, err
	}
	return extractAnalysis(text, kind), nil
}

func (p *openAIProvider) result(modelID, content string, reportedTokens int) *ChatResult {
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

// openAIUnit decodes one SSE data payload from the chat-completions stream.
func openAIUnit(data []byte) (string, bool, int, error) {
	var chunk openAIChatResponse
	if err := json.Unmarshal(data, &chunk); err != nil {
		return "", false, 0, err
	}
	if len(chunk.Choices) == 0 {
		// Some backends send a usage-only chunk at the end of the stream.
		return "", chunk.Usage.TotalTokens > 0, chunk.Usage.TotalTokens, nil
	}
	choice := chunk.Choices[0]
	done := choice.FinishReason != nil && *choice.FinishReason != ""
	return choice.Delta.Content, done, chunk.Usage.TotalTokens, nil
}
