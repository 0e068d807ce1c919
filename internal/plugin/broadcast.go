package plugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Broadcaster fans an event out to every plugin concurrently.
type Broadcaster struct {
	engine *Engine
	logger zerolog.Logger
}

// NewBroadcaster creates a broadcaster running plugins on engine.
func NewBroadcaster(engine *Engine, logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{engine: engine, logger: logger}
}

// Broadcast runs every plugin's script for event, each on its own
// goroutine, and returns once all of them have finished. Failures are
// logged with the plugin name and never stop the other plugins.
// There is no ordering between plugins handling the same event; callers
// that need ordering between events wait for Broadcast to return.
func (b *Broadcaster) Broadcast(ctx context.Context, plugins []*Plugin, event Event) {
	if len(plugins) == 0 {
		return
	}

	logger := b.logger.With().
		Str("sweep", uuid.NewString()).
		Str("event", kindOf(event)).
		Logger()

	var wg sync.WaitGroup
	for _, p := range plugins {
		p := p
		wg.Add(1)
		go func() {
			defer wg.Done()

			out := b.invoke(ctx, p, event)
			if !out.OK() {
				logger.Error().
					Err(out.Err).
					Str("plugin", out.Plugin).
					Msg("plugin execution failure")
				return
			}
			logger.Debug().
				Str("plugin", out.Plugin).
				Dur("took", out.Duration).
				Msg("plugin executed")
		}()
	}
	wg.Wait()
}

// invoke keeps a panic inside one plugin's goroutine from reaching the host.
func (b *Broadcaster) invoke(ctx context.Context, p *Plugin, event Event) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{
				Event: kindOf(event),
				Err:   fmt.Errorf("plugin panic: %v", r),
			}
			if p != nil {
				out.Plugin = p.Name()
			}
		}
	}()
	return b.engine.Run(ctx, p, event)
}
