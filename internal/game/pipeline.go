package game

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// queueCapacity bounds how many mutations may wait behind the in-flight one.
const queueCapacity = 64

// MutationFunc edits a clone of the canonical state. Returning an error
// rejects the mutation with the state unchanged; legality guards belong here.
type MutationFunc func(*GameState) error

// Effect is a dependent side effect (render, animation) run after a mutation
// commits, always against the new canonical state. Effects run in
// registration order and complete before the next queued mutation is applied.
type Effect func(*GameState)

type mutationRequest struct {
	description string
	fn          MutationFunc
	reply       chan mutationResult
}

type mutationResult struct {
	state *GameState
	err   error
}

// Pipeline owns the canonical GameState and serializes every change to it:
// one mutation in flight at a time, further submissions queued FIFO. Each
// mutation is applied to a clone, validated, and only then committed; side
// effects never observe a state that failed validation.
type Pipeline struct {
	logger *zap.Logger

	mu        sync.RWMutex
	canonical *GameState
	closed    bool

	effects []Effect
	queue   chan mutationRequest
	done    chan struct{}
}

// NewPipeline creates a pipeline owning initial and starts its worker.
func NewPipeline(initial *GameState, logger *zap.Logger) *Pipeline {
	p := &Pipeline{
		logger:    logger,
		canonical: initial.Clone(),
		queue:     make(chan mutationRequest, queueCapacity),
		done:      make(chan struct{}),
	}
	go p.run()
	return p
}

// OnCommit registers a side effect. Registration order is execution order.
func (p *Pipeline) OnCommit(e Effect) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.effects = append(p.effects, e)
}

// Current returns a deep copy of the canonical state. No caller ever holds a
// live reference.
func (p *Pipeline) Current() *GameState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.canonical.Clone()
}

// Submit queues a mutation and blocks until it has been applied (or
// rejected). On success the returned state is the new canonical state; on
// rejection the previous canonical state is returned alongside the error.
func (p *Pipeline) Submit(ctx context.Context, description string, fn MutationFunc) (*GameState, error) {
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, fmt.Errorf("pipeline closed")
	}
	p.mu.RUnlock()

	req := mutationRequest{
		description: description,
		fn:          fn,
		reply:       make(chan mutationResult, 1),
	}

	select {
	case p.queue <- req:
	default:
		return nil, fmt.Errorf("mutation queue full, rejecting %q", description)
	}

	select {
	case res := <-req.reply:
		return res.state, res.err
	case <-ctx.Done():
		// The mutation still runs; cancellation mid-mutation is not
		// supported. Only the caller stops waiting.
		return nil, ctx.Err()
	case <-p.done:
		return nil, fmt.Errorf("pipeline closed")
	}
}

// Close stops the worker after the queued mutations drain.
func (p *Pipeline) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	close(p.queue)
}

func (p *Pipeline) run() {
	defer close(p.done)
	for req := range p.queue {
		req.reply <- p.apply(req)
	}
}

// apply executes one mutation end to end: clone, mutate, validate, commit,
// effects. The validate → commit → effect ordering is the core correctness
// property of the whole system.
func (p *Pipeline) apply(req mutationRequest) mutationResult {
	p.mu.RLock()
	base := p.canonical
	p.mu.RUnlock()

	candidate := base.Clone()
	if err := req.fn(candidate); err != nil {
		if re, ok := IsRejected(err); ok {
			p.logger.Info("mutation rejected",
				zap.String("mutation", req.description),
				zap.String("reason", string(re.Reason)),
			)
		} else {
			p.logger.Warn("mutation failed",
				zap.String("mutation", req.description),
				zap.Error(err),
			)
		}
		return mutationResult{state: base.Clone(), err: err}
	}

	res := Validate(candidate)
	if res.Fatal() {
		p.logger.Error("mutation produced unrecoverable state, reverting",
			zap.String("mutation", req.description),
			zap.Any("findings", res.Findings),
		)
		return mutationResult{
			state: base.Clone(),
			err:   fmt.Errorf("%q: %w", req.description, ErrFatalState),
		}
	}
	for _, f := range res.Warnings() {
		p.logger.Warn("state repaired during commit",
			zap.String("mutation", req.description),
			zap.String("code", f.Code),
			zap.String("detail", f.Message),
		)
	}

	committed := res.Repaired

	p.mu.Lock()
	p.canonical = committed
	effects := make([]Effect, len(p.effects))
	copy(effects, p.effects)
	p.mu.Unlock()

	p.logger.Debug("mutation committed",
		zap.String("mutation", req.description),
		zap.String("phase", committed.Phase.String()),
		zap.Int("turn", committed.Turn),
	)

	for _, e := range effects {
		e(committed.Clone())
	}

	return mutationResult{state: committed.Clone()}
}
