package hub

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"scalebridge/scale"
)

// Subscriber is a sink for serialized readings. The transport layer
// owns the underlying connection; the registry only holds a reference
// until the subscriber is removed. Send reports delivery failure,
// which the registry treats as a disconnect.
type Subscriber interface {
	Send(data []byte) error
}

// Registry tracks the currently connected subscribers and broadcasts
// each new reading to all of them. Membership is safe against
// concurrent Add/Remove/Broadcast; a subscriber added while a
// broadcast is in flight may be skipped by that pass but receives the
// next one.
type Registry struct {
	mu    sync.Mutex
	subs  map[Subscriber]struct{}
	cache *Cache
	log   *zap.SugaredLogger
}

func NewRegistry(cache *Cache, log *zap.SugaredLogger) *Registry {
	return &Registry{
		subs:  map[Subscriber]struct{}{},
		cache: cache,
		log:   log,
	}
}

// Add registers a subscriber. If a reading is already cached it is
// sent immediately as the subscriber's first message, so late joiners
// are not left blank until the next physical measurement. A failed
// initial send goes through the normal removal path.
func (reg *Registry) Add(s Subscriber) {
	reg.mu.Lock()
	reg.subs[s] = struct{}{}
	n := len(reg.subs)
	reg.mu.Unlock()
	reg.log.Infow("subscriber connected", "subscribers", n)

	if r, ok := reg.cache.Get(); ok {
		data, err := json.Marshal(r)
		if err != nil {
			reg.log.Errorw("marshal cached reading", "error", err)
			return
		}
		if err := s.Send(data); err != nil {
			reg.log.Infow("subscriber dropped on first send", "error", err)
			reg.Remove(s)
		}
	}
}

// Remove deregisters a subscriber. Removing one that is not present
// is a no-op.
func (reg *Registry) Remove(s Subscriber) {
	reg.mu.Lock()
	delete(reg.subs, s)
	reg.mu.Unlock()
}

// Broadcast serializes the reading once and delivers it to every
// registered subscriber. Subscribers whose delivery fails are removed
// as part of the same pass; failures never abort delivery to the rest
// and never surface to the caller.
func (reg *Registry) Broadcast(r scale.Reading) {
	data, err := json.Marshal(r)
	if err != nil {
		reg.log.Errorw("marshal reading", "error", err)
		return
	}

	reg.mu.Lock()
	targets := make([]Subscriber, 0, len(reg.subs))
	for s := range reg.subs {
		targets = append(targets, s)
	}
	reg.mu.Unlock()

	for _, s := range targets {
		if err := s.Send(data); err != nil {
			reg.log.Infow("subscriber dropped", "error", err)
			reg.Remove(s)
		}
	}
}

// Len reports the current number of subscribers.
func (reg *Registry) Len() int {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	return len(reg.subs)
}
