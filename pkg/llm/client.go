// Package llm provides the thin client for the Cerebras inference API.
// Cerebras exposes an OpenAI-compatible chat-completions endpoint, so the
// client is built on the go-openai SDK with a per-call credential.
package llm

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/polymind-ai/polymind/pkg/models"
)

// DefaultBaseURL is the Cerebras OpenAI-compatible endpoint.
const DefaultBaseURL = "https://api.cerebras.ai/v1"

// Provider is the provider label attached to model replies.
const Provider = "cerebras"

// TokenFunc receives each content delta as it arrives from the upstream
// stream. A nil TokenFunc selects buffered collection.
type TokenFunc func(delta string)

// Client is the minimal surface the executors need from the backend.
// Implementations must be safe for concurrent use.
type Client interface {
	// CallBuffered runs one chat completion and returns the full text.
	CallBuffered(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message) (string, error)

	// CallStreaming runs one chat completion, forwarding each content delta
	// to onToken while accumulating, and returns the accumulated text.
	CallStreaming(ctx context.Context, key string, spec models.ModelSpec, msgs []models.Message, onToken TokenFunc) (string, error)
}

// CerebrasClient implements Client against the Cerebras API. A single shared
// http.Client backs every call; the credential varies per call because keys
// rotate within a request.
type CerebrasClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewCerebrasClient creates a client for the given base URL. An empty
// baseURL selects the production Cerebras endpoint.
func NewCerebrasClient(baseURL string) *CerebrasClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &CerebrasClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		// No client-side timeout: generation length is unbounded and the
		// surrounding context carries cancellation. Dial/TLS limits come
		// from the transport defaults.
		httpClient: &http.Client{Timeout: 0, Transport: &http.Transport{
			MaxIdleConnsPerHost: 8,
			IdleConnTimeout:     90 * time.Second,
		}},
	}
}

// CallBuffered runs one completion and returns the accumulated text.
func (c *CerebrasClient) CallBuffered(
	ctx context.Context,
	key string,
	spec models.ModelSpec,
	msgs []models.Message,
) (string, error) {
	return c.CallStreaming(ctx, key, spec, msgs, nil)
}

// CallStreaming runs one completion over the upstream token stream. Each
// content delta is forwarded to onToken (when non-nil) and appended to the
// accumulator returned on normal completion.
func (c *CerebrasClient) CallStreaming(
	ctx context.Context,
	key string,
	spec models.ModelSpec,
	msgs []models.Message,
	onToken TokenFunc,
) (string, error) {
	stream, err := c.openaiFor(key).CreateChatCompletionStream(ctx, buildRequest(spec, msgs))
	if err != nil {
		return "", c.wrapError(err, key, spec.ModelName)
	}
	defer stream.Close()

	var buf strings.Builder
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return buf.String(), nil
			}
			return "", c.wrapError(err, key, spec.ModelName)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		buf.WriteString(delta)
		if onToken != nil {
			onToken(delta)
		}
	}
}

// openaiFor builds an SDK client bound to one credential. Construction is
// cheap: the heavy state (the http.Client) is shared.
func (c *CerebrasClient) openaiFor(key string) *openai.Client {
	cfg := openai.DefaultConfig(key)
	cfg.BaseURL = c.baseURL
	cfg.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(cfg)
}

func buildRequest(spec models.ModelSpec, msgs []models.Message) openai.ChatCompletionRequest {
	converted := make([]openai.ChatCompletionMessage, len(msgs))
	for i, m := range msgs {
		converted[i] = openai.ChatCompletionMessage{
			Role:    string(m.Role),
			Content: m.Content,
		}
	}
	return openai.ChatCompletionRequest{
		Model:       spec.ModelName,
		Messages:    converted,
		Temperature: spec.Temperature,
		MaxTokens:   spec.MaxOutputTokens,
		Stream:      true,
	}
}

// wrapError maps any transport or provider failure to an APIError carrying
// the upstream HTTP status (500 when no status is available). Context
// cancellation is passed through untouched so callers can distinguish an
// aborted request from an upstream failure.
func (c *CerebrasClient) wrapError(err error, key, model string) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	status := http.StatusInternalServerError
	var apiErr *openai.APIError
	var reqErr *openai.RequestError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}
	if status == 0 {
		status = http.StatusInternalServerError
	}

	return &APIError{Status: status, Key: key, Model: model, Err: err}
}
