package i18n

import (
	"fmt"
	"strings"
	"sync"

	"safari_reviews/internal/events"
)

// Switcher owns the current page language. Changing it broadcasts a
// LanguageChanged event; subscribers read labels through Lookup.
type Switcher struct {
	bundle *Bundle
	bus    *events.Bus

	mu      sync.RWMutex
	current string
}

func NewSwitcher(b *Bundle, bus *events.Bus, initial string) *Switcher {
	s := &Switcher{bundle: b, bus: bus, current: b.Fallback()}
	if b.IsSupported(initial) {
		s.current = strings.ToLower(initial)
	}
	return s
}

func (s *Switcher) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Set switches to lang and notifies subscribers. Setting the current
// language again still notifies, as the page does.
func (s *Switcher) Set(lang string) error {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if !s.bundle.IsSupported(lang) {
		return fmt.Errorf("%w: %q", ErrUnsupported, lang)
	}
	s.mu.Lock()
	s.current = lang
	s.mu.Unlock()

	if s.bus != nil {
		s.bus.Publish(events.Event{Type: events.LanguageChanged, Data: events.LanguageChange{Lang: lang}})
	}
	return nil
}

// Lookup translates key in the current language.
func (s *Switcher) Lookup(key string) string {
	return s.bundle.T(s.Current(), key)
}
