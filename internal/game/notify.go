package game

import (
	"sync"
	"time"

	"github.com/pokebattle/battle-server-go/internal/game/rules"
)

// Notification types emitted to presentation-layer subscribers.
const (
	NotifyPhaseChange = "PHASE_CHANGE"
	NotifyStateChange = "STATE_CHANGE"
	NotifyGameOver    = "GAME_OVER"
	NotifyRejected    = "ACTION_REJECTED"
)

// Notification is a state-change event pushed to rendering collaborators.
// The core never calls into rendering directly; subscribers react to these.
type Notification struct {
	Type      string         `json:"type"`
	GameID    string         `json:"game_id"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// NotificationHandler consumes notifications. Handlers run on the pipeline
// goroutine and should hand work off quickly.
type NotificationHandler func(Notification)

// Notifier fans notifications out to registered handlers in registration
// order.
type Notifier struct {
	mu       sync.RWMutex
	handlers []NotificationHandler
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{}
}

// Subscribe registers a handler for all future notifications.
func (n *Notifier) Subscribe(h NotificationHandler) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.handlers = append(n.handlers, h)
}

// Publish delivers a notification to every subscriber.
func (n *Notifier) Publish(note Notification) {
	n.mu.RLock()
	handlers := make([]NotificationHandler, len(n.handlers))
	copy(handlers, n.handlers)
	n.mu.RUnlock()

	for _, h := range handlers {
		h(note)
	}
}

// PublishPhaseChange emits the standard phase-transition notification: old
// phase, new phase, turn player, timestamp.
func (n *Notifier) PublishPhaseChange(gameID string, from, to rules.Phase, turnPlayer Seat) {
	n.Publish(Notification{
		Type:      NotifyPhaseChange,
		GameID:    gameID,
		Timestamp: time.Now(),
		Data: map[string]any{
			"from":        from.String(),
			"to":          to.String(),
			"turn_player": string(turnPlayer),
		},
	})
}
