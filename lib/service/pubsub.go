package service

import (
	"sync"

	"github.com/google/uuid"
	"github.com/satstacker/satstacker.go/db/models"
)

// Pubsub fans settled zaps out to stream subscribers, keyed by the
// receiving user's id. Delivery is best effort: a subscriber that has
// stopped draining its channel loses events instead of blocking the
// publisher, which runs on the settlement path.
type Pubsub struct {
	mu   sync.RWMutex
	subs map[string]map[string]chan models.Zap
}

func NewPubsub() *Pubsub {
	ps := &Pubsub{}
	ps.subs = make(map[string]map[string]chan models.Zap)
	return ps
}

func (ps *Pubsub) Subscribe(topic string, ch chan models.Zap) (subId string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		ps.subs[topic] = make(map[string]chan models.Zap)
	}
	subId = uuid.NewString()
	ps.subs[topic][subId] = ch
	return subId
}

func (ps *Pubsub) Unsubscribe(id string, topic string) {
	ps.mu.Lock()
	defer ps.mu.Unlock()
	if ps.subs[topic] == nil {
		return
	}
	if ps.subs[topic][id] == nil {
		return
	}
	close(ps.subs[topic][id])
	delete(ps.subs[topic], id)
}

func (ps *Pubsub) Publish(topic string, msg models.Zap) {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	if ps.subs[topic] == nil {
		return
	}

	for _, ch := range ps.subs[topic] {
		select {
		case ch <- msg:
		default:
		}
	}
}
