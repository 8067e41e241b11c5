package poller

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/workbridg/workbridg-web/internal/backend"
	"github.com/workbridg/workbridg-web/internal/chat"
	"github.com/workbridg/workbridg-web/internal/constants"
	"github.com/workbridg/workbridg-web/internal/metrics"
	"github.com/workbridg/workbridg-web/internal/models"
)

type EventType string

const (
	// EventSnapshot carries a chat list that differs from the previous one
	EventSnapshot EventType = "snapshot"
	// EventError reports a failed poll; the previous snapshot stays valid
	EventError EventType = "error"
	// EventLogout means the session is gone and polling has stopped
	EventLogout EventType = "logout"
)

type Event struct {
	Type  EventType
	Chats []models.Chat
	Key   string
	Err   error
}

// FetchFunc loads the current chat list of one user.
type FetchFunc func(ctx context.Context) ([]models.Chat, error)

type Config struct {
	Interval time.Duration
	// InitialKey suppresses the first snapshot when the caller already holds it
	InitialKey string
	Breaker    BreakerConfig
}

// Poller re-fetches a chat list on a fixed interval and reports it only when
// its comparison key changes. Polls never overlap: a tick that fires while a
// fetch is in flight is dropped.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration
	breaker  *Breaker
	log      logrus.FieldLogger
	lastKey  string
}

func New(fetch FetchFunc, config Config, log logrus.FieldLogger) *Poller {
	interval := config.Interval
	if interval <= 0 {
		interval = constants.DefaultChatPollInterval
	}
	breakerConfig := config.Breaker
	if breakerConfig.FailureThreshold <= 0 {
		breakerConfig = DefaultBreakerConfig()
	}
	return &Poller{
		fetch:    fetch,
		interval: interval,
		breaker:  NewBreaker(breakerConfig),
		log:      log,
		lastKey:  config.InitialKey,
	}
}

// Poll runs one fetch. It reports whether the event should be delivered.
func (p *Poller) Poll(ctx context.Context) (Event, bool) {
	var chats []models.Chat
	err := p.breaker.Execute(func() error {
		var fetchErr error
		chats, fetchErr = p.fetch(ctx)
		return fetchErr
	})

	switch {
	case errors.Is(err, ErrBreakerOpen):
		metrics.IncrementChatPoll("skipped")
		return Event{}, false
	case errors.Is(err, backend.ErrSessionExpired):
		metrics.IncrementChatPoll("error")
		return Event{Type: EventLogout, Err: err}, true
	case err != nil:
		if ctx.Err() != nil {
			return Event{}, false
		}
		metrics.IncrementChatPoll("error")
		p.log.WithError(err).WithField("breaker", p.breaker.State().String()).Warn("Chat poll failed")
		return Event{Type: EventError, Err: err}, true
	}

	key := chat.ComparisonKey(chats)
	if key == p.lastKey {
		metrics.IncrementChatPoll("unchanged")
		return Event{}, false
	}
	p.lastKey = key
	metrics.IncrementChatPoll("changed")
	return Event{Type: EventSnapshot, Chats: chats, Key: key}, true
}

// Run polls immediately and then on every tick until ctx is done or the
// session expires, delivering events to out. It returns
// backend.ErrSessionExpired after emitting the logout event.
func (p *Poller) Run(ctx context.Context, out chan<- Event) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		if ev, ok := p.Poll(ctx); ok {
			select {
			case out <- ev:
			case <-ctx.Done():
				return ctx.Err()
			}
			if ev.Type == EventLogout {
				return backend.ErrSessionExpired
			}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Key returns the comparison key of the last delivered snapshot.
func (p *Poller) Key() string {
	return p.lastKey
}
