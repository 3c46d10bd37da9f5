// Package events implements a synchronous, typed publish/subscribe bus.
//
// Every event kind is bound to one payload type through a [Topic]. Handlers are invoked in subscription order,
// on the publisher's call stack, with the same payload value. Payloads are not cloned: a handler must not
// mutate a payload that later handlers will also receive.
//
// A handler that returns an error or panics is logged and skipped; the remaining handlers still run and the
// publisher never sees the failure.
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/rba/internal/models"
	"github.com/desertthunder/rba/internal/shared"
	"golang.org/x/time/rate"
)

// DefaultMaxDepth bounds nested publishes triggered from inside handlers.
const DefaultMaxDepth = 32

// Kind enumerates the events emitted by the state container.
type Kind int

const (
	ProfileUpdatedKind Kind = iota
	ResumeUpdatedKind
	PreferencesUpdatedKind
	AnalysisUpdatedKind
	JobsUpdatedKind
	MetricsUpdatedKind
)

func (k Kind) String() string {
	switch k {
	case ProfileUpdatedKind:
		return "profileUpdated"
	case ResumeUpdatedKind:
		return "resumeUpdated"
	case PreferencesUpdatedKind:
		return "preferencesUpdated"
	case AnalysisUpdatedKind:
		return "analysisUpdated"
	case JobsUpdatedKind:
		return "jobsUpdated"
	case MetricsUpdatedKind:
		return "metricsUpdated"
	default:
		return ""
	}
}

// Topic binds a [Kind] to its payload type.
type Topic[T any] struct {
	kind Kind
}

// Kind returns the event kind of the topic.
func (t Topic[T]) Kind() Kind { return t.kind }

// Name returns the event name, e.g. "resumeUpdated".
func (t Topic[T]) Name() string { return t.kind.String() }

var (
	ProfileUpdated     = Topic[models.Profile]{kind: ProfileUpdatedKind}
	ResumeUpdated      = Topic[models.Resume]{kind: ResumeUpdatedKind}
	PreferencesUpdated = Topic[models.Preferences]{kind: PreferencesUpdatedKind}
	AnalysisUpdated    = Topic[models.Analysis]{kind: AnalysisUpdatedKind}
	JobsUpdated        = Topic[[]models.Job]{kind: JobsUpdatedKind}
	MetricsUpdated     = Topic[models.Metrics]{kind: MetricsUpdatedKind}
)

// Handler receives the payload of one event.
type Handler[T any] func(payload T) error

// Subscription identifies a registered handler.
type Subscription struct {
	ID   string
	Kind Kind
}

type subscriber struct {
	id string
	fn func(payload any) error
}

// Bus dispatches events to subscribers.
type Bus struct {
	mu       sync.Mutex
	subs     map[Kind][]subscriber
	logger   *log.Logger
	maxDepth int
	depth    int
	dropLog  *rate.Sometimes
}

// BusOpts contains configuration options for creating a Bus.
type BusOpts struct {
	Logger   *log.Logger
	MaxDepth int
}

// NewBus creates an empty [Bus].
func NewBus(opts BusOpts) *Bus {
	if opts.Logger == nil {
		opts.Logger = shared.NopLogger()
	}
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}

	return &Bus{
		subs:     map[Kind][]subscriber{},
		logger:   shared.WithLogger(opts.Logger, "component", "events"),
		maxDepth: opts.MaxDepth,
		dropLog:  &rate.Sometimes{First: 3, Interval: 10 * time.Second},
	}
}

// Subscribe registers handler for topic and returns its [Subscription].
func Subscribe[T any](b *Bus, topic Topic[T], handler Handler[T]) Subscription {
	id := shared.GenerateID()
	fn := func(payload any) error {
		v, ok := payload.(T)
		if !ok {
			return fmt.Errorf("unexpected payload %T for %s", payload, topic.Name())
		}
		return handler(v)
	}

	b.mu.Lock()
	b.subs[topic.kind] = append(b.subs[topic.kind], subscriber{id: id, fn: fn})
	b.mu.Unlock()

	return Subscription{ID: id, Kind: topic.kind}
}

// On registers a handler that takes no arguments.
func On[T any](b *Bus, topic Topic[T], fn func()) Subscription {
	return Subscribe(b, topic, func(T) error {
		fn()
		return nil
	})
}

// Unsubscribe removes the handler registered under sub. Unknown subscriptions are ignored.
func (b *Bus) Unsubscribe(sub Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	list := b.subs[sub.Kind]
	for i, s := range list {
		if s.id == sub.ID {
			next := make([]subscriber, 0, len(list)-1)
			next = append(next, list[:i]...)
			next = append(next, list[i+1:]...)
			b.subs[sub.Kind] = next
			return
		}
	}
}

// Clear removes every subscription.
func (b *Bus) Clear() {
	b.mu.Lock()
	b.subs = map[Kind][]subscriber{}
	b.mu.Unlock()
}

// Count returns the number of handlers subscribed to kind.
func (b *Bus) Count(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs[kind])
}

// Publish delivers payload to every handler subscribed to topic.
//
// Handlers subscribed or unsubscribed during delivery take effect from the next publish.
func Publish[T any](b *Bus, topic Topic[T], payload T) {
	b.publish(topic.kind, payload)
}

func (b *Bus) publish(kind Kind, payload any) {
	b.mu.Lock()
	if b.depth >= b.maxDepth {
		b.mu.Unlock()
		b.dropLog.Do(func() {
			b.logger.Warn("dropping nested event, publish depth exceeded", "event", kind.String(), "max_depth", b.maxDepth)
		})
		return
	}
	b.depth++
	handlers := b.subs[kind]
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.depth--
		b.mu.Unlock()
	}()

	for _, s := range handlers {
		if err := b.invoke(s, payload); err != nil {
			b.logger.Error("error in event listener", "event", kind.String(), "subscription", s.id, "error", err)
		}
	}
}

func (b *Bus) invoke(s subscriber, payload any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return s.fn(payload)
}
