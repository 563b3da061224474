package changefeed

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitFor(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for change")
		return Change{}
	}
}

func TestFeedDeliversToOwnerTopic(t *testing.T) {
	feed := New()
	defer feed.Close()

	owner := uuid.New()
	entity := uuid.New()

	received := make(chan Change, 1)
	unsubscribe, err := feed.Subscribe("notes", owner, func(c Change) {
		received <- c
	})
	require.NoError(t, err)
	defer unsubscribe()

	err = feed.Publish("notes", Change{Kind: KindUpdate, OwnerID: owner, EntityID: entity, At: time.Now()})
	require.NoError(t, err)

	got := waitFor(t, received)
	assert.Equal(t, KindUpdate, got.Kind)
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, entity, got.EntityID)
}

func TestFeedScopesByOwnerAndCollection(t *testing.T) {
	feed := New()
	defer feed.Close()

	owner := uuid.New()
	other := uuid.New()

	received := make(chan Change, 4)
	unsubscribe, err := feed.Subscribe("notes", owner, func(c Change) {
		received <- c
	})
	require.NoError(t, err)
	defer unsubscribe()

	// Same collection, different owner: must not be delivered.
	require.NoError(t, feed.Publish("notes", Change{Kind: KindInsert, OwnerID: other, EntityID: uuid.New()}))
	// Same owner, different collection: must not be delivered.
	require.NoError(t, feed.Publish("ecg_results", Change{Kind: KindInsert, OwnerID: owner, EntityID: uuid.New()}))
	// The one we subscribed to.
	require.NoError(t, feed.Publish("notes", Change{Kind: KindDelete, OwnerID: owner, EntityID: uuid.New()}))

	got := waitFor(t, received)
	assert.Equal(t, KindDelete, got.Kind)

	select {
	case c := <-received:
		t.Fatalf("unexpected extra change delivered: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestFeedUnsubscribeStopsDelivery(t *testing.T) {
	feed := New()
	defer feed.Close()

	owner := uuid.New()

	received := make(chan Change, 1)
	unsubscribe, err := feed.Subscribe("notes", owner, func(c Change) {
		received <- c
	})
	require.NoError(t, err)

	unsubscribe()
	// Give the subscription goroutine a moment to wind down.
	time.Sleep(50 * time.Millisecond)

	_ = feed.Publish("notes", Change{Kind: KindInsert, OwnerID: owner, EntityID: uuid.New()})

	select {
	case c := <-received:
		t.Fatalf("change delivered after unsubscribe: %+v", c)
	case <-time.After(100 * time.Millisecond):
	}
}
