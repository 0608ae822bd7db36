package broker

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ProgressEvent is emitted whenever a roadmap's daily snapshot changes.
type ProgressEvent struct {
	UserID    uuid.UUID `json:"userId"`
	RoadmapID uuid.UUID `json:"roadmapId"`
	Interest  string    `json:"interest"`
	Progress  int       `json:"progress"`
	Day       time.Time `json:"date"`
	Reason    string    `json:"reason"` // "saved" or "step_toggled"
}

// ProgressBroker fans progress events out to every subscriber of a user.
type ProgressBroker interface {
	Publish(ctx context.Context, event ProgressEvent) error
	// Subscribe returns events for userID until ctx is cancelled.
	Subscribe(ctx context.Context, userID uuid.UUID) (<-chan ProgressEvent, error)
	Close() error
}

// NopBroker drops every event. It is used when Redis is not configured.
type NopBroker struct{}

func (NopBroker) Publish(context.Context, ProgressEvent) error { return nil }

func (NopBroker) Subscribe(ctx context.Context, _ uuid.UUID) (<-chan ProgressEvent, error) {
	ch := make(chan ProgressEvent)
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch, nil
}

func (NopBroker) Close() error { return nil }
