// Package events is the page-wide publish/subscribe contract between
// components. Delivery is synchronous and in subscription order.
package events

import "sync"

// LanguageChanged is published by the language switcher after the current
// language changed. Data is a LanguageChange.
const LanguageChanged = "languageChanged"

// Event is a broadcast notification.
type Event struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// LanguageChange is the payload of a LanguageChanged event.
type LanguageChange struct {
	Lang string `json:"lang"`
}

type Handler func(Event)

type subscription struct {
	id int
	h  Handler
}

// Bus delivers events to the handlers subscribed to their type.
// Handlers must not publish from inside a delivery.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string][]subscription
	nextID int
}

func NewBus() *Bus {
	return &Bus{subs: map[string][]subscription{}}
}

// Subscribe registers h for events of type typ and returns a function that
// removes the registration.
func (b *Bus) Subscribe(typ string, h Handler) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	id := b.nextID
	b.subs[typ] = append(b.subs[typ], subscription{id: id, h: h})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			list := b.subs[typ]
			for i, s := range list {
				if s.id == id {
					b.subs[typ] = append(list[:i:i], list[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers e to every current subscriber of e.Type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	list := make([]subscription, len(b.subs[e.Type]))
	copy(list, b.subs[e.Type])
	b.mu.RUnlock()

	for _, s := range list {
		s.h(e)
	}
}

// Subscribers returns how many handlers listen to typ.
func (b *Bus) Subscribers(typ string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[typ])
}
