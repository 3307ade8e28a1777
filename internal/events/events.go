package events

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yukikurage/goal-boards-api/internal/metrics"
)

// Routing keys
const (
	BoardCreated    = "board.created"
	BoardUpdated    = "board.updated"
	BoardDeleted    = "board.deleted"
	CategoryCreated = "category.created"
	CategoryUpdated = "category.updated"
	CategoryDeleted = "category.deleted"
	GoalCreated     = "goal.created"
	GoalUpdated     = "goal.updated"
	GoalArchived    = "goal.archived"
	CommentCreated  = "comment.created"
	CommentUpdated  = "comment.updated"
	CommentDeleted  = "comment.deleted"
	BotChatVerified = "bot.chat_verified"
)

// Event is the envelope published for every domain change.
type Event struct {
	Type       string    `json:"type"`
	EntityID   uint64    `json:"entity_id"`
	BoardID    uint64    `json:"board_id,omitempty"`
	ActorID    uint64    `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher delivers events. Implementations need not guarantee delivery.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// Emitter publishes after a change has been committed and only logs failures,
// so a broker outage never fails the user's request.
type Emitter struct {
	publisher Publisher
	log       *zap.Logger
}

func NewEmitter(publisher Publisher, log *zap.Logger) *Emitter {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{publisher: publisher, log: log}
}

func (e *Emitter) Emit(ctx context.Context, eventType string, entityID, boardID, actorID uint64) {
	if e == nil {
		return
	}
	evt := Event{
		Type:       eventType,
		EntityID:   entityID,
		BoardID:    boardID,
		ActorID:    actorID,
		OccurredAt: time.Now().UTC(),
	}
	if err := e.publisher.Publish(ctx, eventType, evt); err != nil {
		metrics.IncrementEventPublished(eventType, "failed")
		e.log.Warn("failed to publish event",
			zap.String("routing_key", eventType),
			zap.Uint64("entity_id", entityID),
			zap.Error(err),
		)
		return
	}
	metrics.IncrementEventPublished(eventType, "ok")
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, any) error { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) Publish(_ context.Context, _ string, payload any) error {
	evt, ok := payload.(Event)
	if !ok {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
	return nil
}

// Types returns the recorded event types in publish order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]string, len(r.events))
	for i, e := range r.events {
		types[i] = e.Type
	}
	return types
}

func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}
