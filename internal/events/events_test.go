package events

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/kahvecikaan/probagno/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterMatches(t *testing.T) {
	testCases := []struct {
		name   string
		filter Filter
		change Change
		match  bool
	}{
		{"Table only", Filter{Table: domain.KindProducts}, Change{Table: domain.KindProducts, Slug: "a"}, true},
		{"Other table", Filter{Table: domain.KindProducts}, Change{Table: domain.KindCategories}, false},
		{"Same slug", Filter{Table: domain.KindProducts, Slug: "a"}, Change{Table: domain.KindProducts, Slug: "a"}, true},
		{"Other slug", Filter{Table: domain.KindProducts, Slug: "a"}, Change{Table: domain.KindProducts, Slug: "b"}, false},
		{"Change without slug", Filter{Table: domain.KindProducts, Slug: "a"}, Change{Table: domain.KindProducts}, true},
		{"Empty filter", Filter{}, Change{Table: domain.KindSettings, Key: "store"}, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.match, tc.filter.Matches(tc.change))
		})
	}
}

func TestPublishFansOut(t *testing.T) {
	bus := NewEventBus[Change]()
	a := bus.Subscribe()
	b := bus.Subscribe()

	bus.Publish(Change{Table: domain.KindProducts})

	assert.Equal(t, domain.KindProducts, (<-a).Table)
	assert.Equal(t, domain.KindProducts, (<-b).Table)

	bus.Unsubscribe(a)
	bus.Unsubscribe(a)
	assert.Equal(t, 1, bus.Len())
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	bus := NewEventBus[Change]()
	bus.Subscribe()

	for i := 0; i < subscriberBuffer+3; i++ {
		bus.Publish(Change{Table: domain.KindProducts})
	}

	assert.Equal(t, uint64(3), bus.Dropped())
}

func TestBusNotifier(t *testing.T) {
	bus := NewEventBus[Change]()
	n := NewBusNotifier(bus)

	var calls atomic.Int32
	cancel := n.OnInvalidate(Filter{Table: domain.KindProducts, Slug: "a"}, func(Change) {
		calls.Add(1)
	})

	bus.Publish(Change{Table: domain.KindProducts, Slug: "b"})
	bus.Publish(Change{Table: domain.KindCategories})
	bus.Publish(Change{Table: domain.KindProducts, Slug: "a"})

	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	cancel()
	assert.Equal(t, 0, bus.Len())
}
