package changefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
)

// Kind classifies a row-level change.
type Kind string

const (
	KindInsert Kind = "insert"
	KindUpdate Kind = "update"
	KindDelete Kind = "delete"
)

// Change announces one row-level change in an owner-scoped collection.
type Change struct {
	Kind     Kind      `json:"kind"`
	OwnerID  uuid.UUID `json:"owner_id"`
	EntityID uuid.UUID `json:"entity_id"`
	At       time.Time `json:"at"`
}

// Feed is the in-process push channel announcing row changes to
// subscribed stores. Topics are scoped per collection and owner, so a
// subscriber only sees changes to its own rows.
type Feed struct {
	pubSub *gochannel.GoChannel
}

func New() *Feed {
	return &Feed{
		pubSub: gochannel.NewGoChannel(
			gochannel.Config{},
			watermill.NewStdLogger(false, false),
		),
	}
}

func topicFor(collection string, ownerID uuid.UUID) string {
	return fmt.Sprintf("%s.changed.%s", collection, ownerID)
}

// Publish announces a change to every subscriber of the owner's
// collection topic.
func (f *Feed) Publish(collection string, change Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("failed to marshal change: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return f.pubSub.Publish(topicFor(collection, change.OwnerID), msg)
}

// Subscribe delivers every change on the owner's collection topic to
// onChange until the returned unsubscribe function is called.
func (f *Feed) Subscribe(collection string, ownerID uuid.UUID, onChange func(Change)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())

	messages, err := f.pubSub.Subscribe(ctx, topicFor(collection, ownerID))
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		for msg := range messages {
			var change Change
			if err := json.Unmarshal(msg.Payload, &change); err != nil {
				msg.Nack()
				continue
			}
			msg.Ack()
			onChange(change)
		}
	}()

	return cancel, nil
}

// Close shuts the underlying pubsub down, closing all subscriptions.
func (f *Feed) Close() error {
	return f.pubSub.Close()
}
