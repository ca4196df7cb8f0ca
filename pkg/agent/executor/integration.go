package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polymind-ai/polymind/pkg/keypool"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
)

// ErrIntegrationFailed indicates the single-call retry budget was exhausted
// or the key pool emptied before the integrator produced a response.
var ErrIntegrationFailed = errors.New("統合処理に失敗しました")

// Integration wraps one logical model call with the same retry, rotation
// and eviction discipline as a single parallel task. Plans, summaries,
// personas, routing instructions and the streamed final answer all go
// through here; a nil token callback selects buffered collection.
type Integration struct {
	pool   *keypool.Pool
	client llm.Client
	logger *slog.Logger
}

// NewIntegration creates an integration executor.
func NewIntegration(pool *keypool.Pool, client llm.Client, logger *slog.Logger) *Integration {
	if logger == nil {
		logger = slog.Default()
	}
	return &Integration{pool: pool, client: client, logger: logger}
}

// Run performs the call. onToken non-nil streams each delta to the caller
// (integration steps pass the stream sink's Data method); nil buffers.
// Returns the full collected text on success.
func (e *Integration) Run(
	ctx context.Context,
	spec models.ModelSpec,
	msgs []models.Message,
	onToken llm.TokenFunc,
) (string, error) {
	attempts := 0
	maxAttempts := max(e.pool.Count(), MinRetry)
	var lastErr error

	for attempts < maxAttempts && e.pool.Count() > 0 {
		key, err := e.pool.Next()
		if err != nil {
			lastErr = err
			break
		}

		content, err := e.client.CallStreaming(ctx, key, spec, msgs, onToken)
		attempts++
		if err == nil {
			return content, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		lastErr = err

		var apiErr *llm.APIError
		if !errors.As(err, &apiErr) {
			continue
		}

		class := llm.Classify(apiErr.Status)
		e.logger.Warn("Integration call failed",
			"model", spec.ModelName,
			"status", apiErr.Status,
			"attempts", attempts,
			"evict_key", class.EvictKey)

		if class.EvictKey {
			e.pool.Evict(key)
			if grown := attempts + e.pool.Count(); grown > maxAttempts {
				maxAttempts = grown
			}
		}
		if class.Permanent && class.DropModel {
			break
		}
	}

	if lastErr == nil {
		lastErr = keypool.ErrExhausted
	}
	return "", fmt.Errorf("%w: %v", ErrIntegrationFailed, lastErr)
}
