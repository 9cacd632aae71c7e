package narrative

import (
	"context"
	"time"

	"github.com/abhisek/skillquest/internal/logger"
)

type logging struct {
	inner Backend
	log   *logger.Logger
}

// WithLogging logs every call with its latency and token usage. Prompt and
// reply text are never logged.
func WithLogging(b Backend, log *logger.Logger) Backend {
	if log == nil {
		log = logger.Nop()
	}
	return &logging{inner: b, log: log}
}

func (l *logging) Complete(ctx context.Context, p Prompt) (*Reply, error) {
	start := time.Now()
	reply, err := l.inner.Complete(ctx, p)

	kv := []any{
		"backend", l.inner.Name(),
		"latency_ms", time.Since(start).Milliseconds(),
		"signals", len(p.Facts.Signals),
	}
	if reply != nil {
		kv = append(kv, "model", reply.Model,
			"input_tokens", reply.Usage.InputTokens,
			"output_tokens", reply.Usage.OutputTokens)
	}
	if err != nil {
		l.log.Warn("narrative request failed", append(kv, "error", err)...)
		return nil, err
	}
	l.log.Debug("narrative request", kv...)
	return reply, nil
}

func (l *logging) Name() string { return l.inner.Name() }
