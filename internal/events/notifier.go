package events

import "sync"

// Notifier registers invalidation callbacks on change signals
type Notifier interface {
	OnInvalidate(filter Filter, fn func(Change)) (cancel func())
}

// BusNotifier adapts a ChangeBus to Notifier. Every registration gets its own
// subscription and goroutine.
type BusNotifier struct {
	bus *ChangeBus
}

func NewBusNotifier(bus *ChangeBus) *BusNotifier {
	return &BusNotifier{bus: bus}
}

func (n *BusNotifier) OnInvalidate(filter Filter, fn func(Change)) func() {
	sub := n.bus.Subscribe()
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for change := range sub {
			if filter.Matches(change) {
				fn(change)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			n.bus.Unsubscribe(sub)
			wg.Wait()
		})
	}
}
