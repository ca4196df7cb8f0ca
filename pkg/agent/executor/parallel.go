// Package executor implements the two model-call disciplines shared by all
// steps: the parallel fan-out over N model tasks and the single-call
// integration wrapper. Both apply the same retry budget, key rotation and
// classified eviction policy.
package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/polymind-ai/polymind/pkg/keypool"
	"github.com/polymind-ai/polymind/pkg/llm"
	"github.com/polymind-ai/polymind/pkg/models"
)

// MinRetry is the floor for per-task attempt budgets, regardless of pool
// size. A single-key pool still gets three tries on transient failures.
const MinRetry = 3

// ErrAllFailed indicates no parallel task produced a reply. The message is
// surfaced verbatim to the client in the ERROR frame.
var ErrAllFailed = errors.New("全ての並列推論モデルが失敗しました")

// Messages supplies the conversation for each task: either one shared
// sequence for every model, or a per-spec-ID mapping (expert-team personas
// and subtask fan-outs use the latter).
type Messages struct {
	shared []models.Message
	perID  map[string][]models.Message
}

// SharedMessages gives every task the same conversation.
func SharedMessages(msgs []models.Message) Messages {
	return Messages{shared: msgs}
}

// PerIDMessages gives each task the conversation mapped by its spec ID.
// Tasks whose ID is absent (or mapped to an empty slice) are pre-marked
// failed without consuming any attempts.
func PerIDMessages(m map[string][]models.Message) Messages {
	return Messages{perID: m}
}

func (m Messages) forSpec(id string) []models.Message {
	if m.perID != nil {
		return m.perID[id]
	}
	return m.shared
}

type taskState int

const (
	taskPending taskState = iota
	taskSucceeded
	taskFailed
)

type task struct {
	spec        models.ModelSpec
	messages    []models.Message
	attempts    int
	maxAttempts int
	state       taskState
	reply       models.ModelReply
	lastErr     error
}

// Parallel runs fan-outs against a request-scoped key pool.
type Parallel struct {
	pool   *keypool.Pool
	client llm.Client
	logger *slog.Logger
}

// NewParallel creates a fan-out executor.
func NewParallel(pool *keypool.Pool, client llm.Client, logger *slog.Logger) *Parallel {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parallel{pool: pool, client: client, logger: logger}
}

type outcome struct {
	idx     int
	key     string
	content string
	err     error
}

// Run fans out one buffered model call per spec and returns the successful
// replies in input order (failures are omitted). Within a round all pending
// tasks run concurrently; rounds are sequential so retried tasks see a pool
// already narrowed by sibling failures. Returns ErrAllFailed only when no
// task succeeded.
func (p *Parallel) Run(ctx context.Context, specs []models.ModelSpec, msgs Messages) ([]models.ModelReply, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w: no model specs", ErrAllFailed)
	}

	tasks := make([]*task, len(specs))
	for i, spec := range specs {
		t := &task{
			spec:        spec,
			messages:    msgs.forSpec(spec.ID),
			maxAttempts: max(p.pool.Count(), MinRetry),
		}
		if len(t.messages) == 0 {
			t.state = taskFailed
			t.lastErr = fmt.Errorf("no messages for model %s", spec.ID)
		}
		tasks[i] = t
	}

	for p.anyPending(tasks) && p.pool.Count() > 0 {
		if err := p.runRound(ctx, tasks); err != nil {
			return nil, err
		}
	}

	var replies []models.ModelReply
	var lastErr error
	for _, t := range tasks {
		switch t.state {
		case taskSucceeded:
			replies = append(replies, t.reply)
		default:
			if t.lastErr != nil {
				lastErr = t.lastErr
			}
		}
	}
	if len(replies) == 0 {
		if lastErr == nil {
			lastErr = keypool.ErrExhausted
		}
		return nil, fmt.Errorf("%w: %v", ErrAllFailed, lastErr)
	}
	return replies, nil
}

// runRound executes every pending task concurrently and applies the
// classification policy to the collected outcomes.
func (p *Parallel) runRound(ctx context.Context, tasks []*task) error {
	var wg sync.WaitGroup
	outcomes := make(chan outcome, len(tasks))

	for i, t := range tasks {
		if t.state != taskPending {
			continue
		}
		wg.Add(1)
		go func(idx int, t *task) {
			defer wg.Done()
			// Key acquisition happens inside the worker: the pool's rotating
			// cursor is the tie-break, and two tasks may legitimately share
			// the sole remaining key.
			key, err := p.pool.Next()
			if err != nil {
				outcomes <- outcome{idx: idx, err: err}
				return
			}
			content, err := p.client.CallBuffered(ctx, key, t.spec, t.messages)
			outcomes <- outcome{idx: idx, key: key, content: content, err: err}
		}(i, t)
	}
	wg.Wait()
	close(outcomes)

	for o := range outcomes {
		t := tasks[o.idx]

		if o.err == nil {
			t.state = taskSucceeded
			t.reply = models.ModelReply{
				Model:    t.spec.DisplayName(),
				Provider: llm.Provider,
				Content:  o.content,
			}
			continue
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(o.err, keypool.ErrExhausted) {
			// Leave the task pending; the outer loop observes the empty pool.
			t.lastErr = o.err
			continue
		}

		t.attempts++
		t.lastErr = o.err

		var apiErr *llm.APIError
		if !errors.As(o.err, &apiErr) {
			// Not a classified model failure; treat as transient.
			p.requeueOrFail(t)
			continue
		}

		class := llm.Classify(apiErr.Status)
		p.logger.Warn("Model call failed",
			"model", t.spec.ModelName,
			"spec_id", t.spec.ID,
			"status", apiErr.Status,
			"attempts", t.attempts,
			"evict_key", class.EvictKey,
			"drop_model", class.DropModel)

		if class.EvictKey {
			p.pool.Evict(o.key)
			p.growBudgets(tasks)
		}

		switch {
		case class.Permanent && class.DropModel:
			t.state = taskFailed
		default:
			p.requeueOrFail(t)
		}
	}
	return nil
}

// growBudgets raises every still-pending task's budget to cover the shrunk
// pool: a task must be able to try each surviving key at least once more.
// The max keeps growth monotonic when two evictions land in one round.
func (p *Parallel) growBudgets(tasks []*task) {
	remaining := p.pool.Count()
	for _, t := range tasks {
		if t.state != taskPending {
			continue
		}
		if grown := t.attempts + remaining; grown > t.maxAttempts {
			t.maxAttempts = grown
		}
	}
}

func (p *Parallel) requeueOrFail(t *task) {
	if t.attempts >= t.maxAttempts {
		t.state = taskFailed
	}
}

func (p *Parallel) anyPending(tasks []*task) bool {
	for _, t := range tasks {
		if t.state == taskPending {
			return true
		}
	}
	return false
}
