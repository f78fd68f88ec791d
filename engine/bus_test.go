package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for bus event")
		return Event{}
	}
}

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	a, unsubA := bus.Subscribe()
	defer unsubA()
	b, unsubB := bus.Subscribe()
	defer unsubB()

	bus.Publish(TargetCampaigns)

	evA := receive(t, a)
	evB := receive(t, b)
	assert.Equal(t, TargetCampaigns, evA.Target)
	assert.Equal(t, evA.ID, evB.ID, "both subscribers see the same event")
	assert.NotEmpty(t, evA.ID)
	assert.False(t, evA.At.IsZero())
}

func TestEventMatches(t *testing.T) {
	assert.True(t, Event{Target: TargetAll}.Matches(TargetCampaigns))
	assert.True(t, Event{Target: TargetConversations}.Matches(TargetConversations))
	assert.False(t, Event{Target: TargetConversations}.Matches(TargetCampaigns))
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	unsubscribe()

	_, open := <-ch
	assert.False(t, open, "channel closes on unsubscribe")

	// Publishing after unsubscribe must not panic.
	bus.Publish(TargetAll)
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := NewBus()
	defer bus.Close()

	ch, unsubscribe := bus.Subscribe()
	defer unsubscribe()

	// Overflow the buffer without draining; Publish must never block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Publish(TargetDashboard)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a slow subscriber")
	}

	require.NotEmpty(t, ch)
}

func TestCloseShutsSubscribers(t *testing.T) {
	bus := NewBus()
	ch, _ := bus.Subscribe()

	bus.Close()

	_, open := <-ch
	assert.False(t, open)

	// Subscribing after close yields a closed channel.
	late, _ := bus.Subscribe()
	_, open = <-late
	assert.False(t, open)
}
