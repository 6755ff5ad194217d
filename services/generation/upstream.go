package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/glyphloom/glyphloom/pkg/validation"
)

// UpstreamClient defines the interface for the external generation service.
type UpstreamClient interface {
	Generate(ctx context.Context, req Request) (*Result, error)
}

// systemPrompt instructs the model to answer with the JSON contract the
// orchestrator expects.
const systemPrompt = `You convert a short text prompt into a pictograph pattern.
Respond with a single JSON object and nothing else:
{"sequence": ["emoji", ...], "rationale": "why these symbols", "confidence": 0.0-1.0, "name": "short title"}
Each sequence entry must be exactly one emoji. Order matters: the first
entry becomes the outermost ring of the pattern, the last its center.`

// OpenAIClient calls the OpenAI chat completion API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient builds a client from the environment.
//
// Reads OPENAI_API_KEY (or the container secret file) and GLYPHLOOM_MODEL.
func NewOpenAIClient() (*OpenAIClient, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("GLYPHLOOM_MODEL")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API key from container secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = "gpt-4o-mini"
		slog.Warn("GLYPHLOOM_MODEL not set, defaulting to gpt-4o-mini")
	}
	slog.Info("Initializing OpenAI client", "model", model)
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}, nil
}

// upstreamPayload is the JSON body the model is asked to produce.
type upstreamPayload struct {
	Sequence   []string `json:"sequence"`
	Rationale  string   `json:"rationale"`
	Confidence float64  `json:"confidence"`
	Name       string   `json:"name"`
}

// Generate implements the UpstreamClient interface.
func (o *OpenAIClient) Generate(ctx context.Context, req Request) (*Result, error) {
	slog.Debug("Generating pattern via OpenAI", "model", o.model, "language", req.Language)

	user := fmt.Sprintf("Prompt: %s\nLanguage: %s\nAt most %d symbols.",
		req.Prompt, req.Language, req.MaxSymbols)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, classifyOpenAIError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &UpstreamError{Op: "generate", Err: fmt.Errorf("no choices returned")}
	}

	var payload upstreamPayload
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &payload); err != nil {
		return nil, &UpstreamError{Op: "generate", Err: fmt.Errorf("unparseable response: %w", err)}
	}

	return shapeUpstreamResult(payload, req.MaxSymbols)
}

// shapeUpstreamResult validates and normalizes the model's payload.
func shapeUpstreamResult(payload upstreamPayload, maxSymbols int) (*Result, error) {
	if len(payload.Sequence) == 0 {
		return nil, &UpstreamError{Op: "generate", Err: fmt.Errorf("empty sequence returned")}
	}
	if maxSymbols > 0 && len(payload.Sequence) > maxSymbols {
		payload.Sequence = payload.Sequence[:maxSymbols]
	}

	sequence := make([]string, 0, len(payload.Sequence))
	for _, raw := range payload.Sequence {
		symbol, err := validation.SanitizeSymbol(raw)
		if err != nil {
			return nil, &UpstreamError{Op: "generate", Err: fmt.Errorf("bad symbol in response: %w", err)}
		}
		sequence = append(sequence, symbol)
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	} else if confidence > 1 {
		confidence = 1
	}

	return &Result{
		Sequence:   sequence,
		Rationale:  payload.Rationale,
		Confidence: confidence,
		Name:       payload.Name,
		Source:     SourceRemote,
	}, nil
}

// classifyOpenAIError maps transport errors onto the package taxonomy.
func classifyOpenAIError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamError{Op: "generate", Timeout: true, Err: err}
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{Op: "generate", StatusCode: apiErr.HTTPStatusCode, Err: err}
	}

	return &UpstreamError{Op: "generate", Err: err}
}
