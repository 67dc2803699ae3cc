package llm

import (
	"context"
	"log/slog"

	"github.com/huangsam/cleanscore/internal/contract"
)

// RepairLoop drives a candidate through parse and repair rounds until it parses,
// the repair budget runs out, or a repair round yields nothing usable.
type RepairLoop[T any] struct {
	Name       string
	MaxRepairs int

	// Parse validates a candidate.
	Parse func(candidate string) (T, error)
	// Repair asks the model to fix a candidate and returns the raw reply.
	Repair func(ctx context.Context, candidate string) (string, error)
	// Extract pulls the next candidate out of a repair reply.
	Extract func(reply string) (string, bool)
	// Fallback is returned once the loop gives up.
	Fallback func() T

	Logger *slog.Logger
}

// RepairResult reports how a loop ended.
type RepairResult[T any] struct {
	Value    T
	Repairs  int
	Fallback bool
}

// Run never fails on malformed content. The only error is ctx's, when the caller cancelled.
func (l *RepairLoop[T]) Run(ctx context.Context, candidate string) (RepairResult[T], error) {
	logger := l.Logger
	if logger == nil {
		logger = contract.DiscardLogger()
	}

	repairs := 0
	for {
		value, err := l.Parse(candidate)
		if err == nil {
			if repairs > 0 {
				logger.Info("model reply repaired", "loop", l.Name, "attempt", repairs)
			}
			return RepairResult[T]{Value: value, Repairs: repairs}, nil
		}
		logger.Debug("candidate rejected", "loop", l.Name, "attempt", repairs, "err", err)

		if repairs >= l.MaxRepairs {
			logger.Warn("repair budget exhausted, using fallback", "loop", l.Name, "attempts", repairs)
			break
		}
		repairs++

		reply, err := l.Repair(ctx, candidate)
		if err != nil {
			if ctx.Err() != nil {
				var zero RepairResult[T]
				return zero, ctx.Err()
			}
			logger.Warn("repair request failed, using fallback", "loop", l.Name, "attempt", repairs, "err", err)
			break
		}
		next, ok := l.Extract(reply)
		if !ok {
			logger.Warn("repair reply has no json, using fallback", "loop", l.Name, "attempt", repairs)
			break
		}
		candidate = next
	}
	return RepairResult[T]{Value: l.Fallback(), Repairs: repairs, Fallback: true}, nil
}
