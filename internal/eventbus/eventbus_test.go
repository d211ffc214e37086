package eventbus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishDeliversToSubscribers(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan DomainEvent, 1)
	b.Subscribe(EventIndexChanged, func(e DomainEvent) { got <- e })

	b.Publish(IndexChangedEvent{Path: "/var/lib/plocate/plocate.db"})

	select {
	case e := <-got:
		ev, ok := e.(IndexChangedEvent)
		require.True(t, ok)
		assert.Equal(t, "/var/lib/plocate/plocate.db", ev.Path)
	case <-time.After(2 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	first := make(chan DomainEvent, 4)
	second := make(chan DomainEvent, 4)
	unsubscribe := b.Subscribe(EventError, func(e DomainEvent) { first <- e })
	b.Subscribe(EventError, func(e DomainEvent) { second <- e })

	unsubscribe()
	b.Publish(ErrorEvent{Message: "boom"})

	select {
	case <-second:
	case <-time.After(2 * time.Second):
		t.Fatal("remaining subscriber was not called")
	}
	assert.Empty(t, first)
}

func TestPanickingHandlerDoesNotStopBus(t *testing.T) {
	b := New()
	defer b.Close()

	got := make(chan struct{}, 1)
	b.Subscribe(EventConfigLoaded, func(DomainEvent) { panic("bad handler") })
	b.Subscribe(EventConfigLoaded, func(DomainEvent) { got <- struct{}{} })

	b.Publish(ConfigLoadedEvent{Path: "config.toml"})

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("second handler was not called after panic")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	b := New()
	b.Close()
	b.Close()

	assert.NotPanics(t, func() {
		b.Publish(IndexChangedEvent{Path: "x"})
	})
}
