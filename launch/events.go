package launch

import (
	"context"
	"log/slog"
)

// Event is a request for the UI, posted by the tray menu or the hotkey
// listener and handled by Dispatch only.
type Event int

const (
	EventOpenAdd Event = iota + 1
	EventOpenHistory
	EventQuit
)

const eventQueueSize = 8

func (e Event) String() string {
	switch e {
	case EventOpenAdd:
		return "open-add"
	case EventOpenHistory:
		return "open-history"
	case EventQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Post queues ev without blocking; when the queue is full the event is
// dropped, the pending ones already open the same pages.
func (a *App) Post(ev Event) bool {
	select {
	case a.events <- ev:
		return true
	default:
		a.logger.Debug("event dropped", slog.String("event", ev.String()))
		return false
	}
}

// Dispatch drains the queue until ctx is done. It is the only place acting
// on events, so producers never touch UI state from their own goroutine.
func (a *App) Dispatch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-a.events:
			a.handle(ev)
		}
	}
}

func (a *App) handle(ev Event) {
	switch ev {
	case EventOpenAdd, EventOpenHistory:
		if !a.cfg.Web.Enabled {
			a.logger.Warn("web UI disabled, nothing to open", slog.String("event", ev.String()))
			return
		}
		url := a.addURL()
		if ev == EventOpenHistory {
			url = a.historyURL()
		}
		if err := a.open(url); err != nil {
			a.logger.Error("cannot open browser", slog.String("url", url), slog.Any("error", err))
		}
	case EventQuit:
		a.quit()
	default:
		a.logger.Warn("unknown event", slog.Int("event", int(ev)))
	}
}
