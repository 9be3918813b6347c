package ephemeral

import (
	"sync"

	"github.com/central-university-dev/go-portal-realtime/internal/domain/models"
)

// PresenceTracker целиком перезаписывает присутствие собеседника на каждом кадре.
type PresenceTracker struct {
	mu       sync.RWMutex
	presence models.Presence
}

func NewPresenceTracker() *PresenceTracker {
	return &PresenceTracker{}
}

func (p *PresenceTracker) Set(presence models.Presence) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.presence = presence
}

func (p *PresenceTracker) Get() models.Presence {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.presence
}
