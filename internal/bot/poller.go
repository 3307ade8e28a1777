package bot

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/metrics"
)

const (
	minPollBackoff = time.Second
	maxPollBackoff = 30 * time.Second
)

// UpdateHandler handles a single update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, update Update)
}

// Poller runs the long-poll loop. Updates are handled one at a time in the
// order received, and the offset moves past an update only after its
// handler returns, so a crash redelivers the update being handled.
type Poller struct {
	transport Transport
	handler   UpdateHandler
	timeout   time.Duration
	log       *zap.Logger

	offset int64
}

func NewPoller(transport Transport, handler UpdateHandler, timeout time.Duration, log *zap.Logger) *Poller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Poller{
		transport: transport,
		handler:   handler,
		timeout:   timeout,
		log:       log,
	}
}

// Offset returns the id of the next update to request.
func (p *Poller) Offset() int64 {
	return p.offset
}

// Run polls until ctx is canceled.
func (p *Poller) Run(ctx context.Context) error {
	p.log.Info("bot poller started", zap.Duration("timeout", p.timeout))
	backoff := minPollBackoff

	for {
		if ctx.Err() != nil {
			p.log.Info("bot poller stopped")
			return nil
		}

		updates, err := p.transport.GetUpdates(ctx, p.offset, p.timeout)
		if err != nil {
			if ctx.Err() != nil {
				p.log.Info("bot poller stopped")
				return nil
			}
			metrics.BotPollErrors.Inc()
			p.log.Warn("getUpdates failed", zap.Error(err), zap.Duration("retry_in", backoff))

			select {
			case <-ctx.Done():
				p.log.Info("bot poller stopped")
				return nil
			case <-time.After(backoff):
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = minPollBackoff

		p.handle(ctx, updates)
	}
}

// handle processes one batch and advances the offset after each update.
func (p *Poller) handle(ctx context.Context, updates []Update) {
	for _, update := range updates {
		if update.UpdateID < p.offset {
			continue
		}
		p.handler.HandleUpdate(ctx, update)
		p.offset = update.UpdateID + 1
	}
}
