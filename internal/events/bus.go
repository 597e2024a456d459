// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events is a small in-process push-event bus.
package events

import (
	"context"
	"sync"
	"time"
)

// PullProgress is the event name carrying model download status lines.
const PullProgress = "ollama-pull-progress"

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 64

// Event is a single push notification.
type Event struct {
	Name    string
	Key     string // identifies the producing cycle, e.g. the model being pulled
	Payload string
	At      time.Time
}

// =============================================================================
// BUS
// =============================================================================

// Bus fans events out to subscriptions by name. The zero value is not
// usable; call NewBus.
type Bus struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscription]struct{}
	buffer int
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:   make(map[string]map[*Subscription]struct{}),
		buffer: DefaultBuffer,
	}
}

// Subscribe registers a new subscription for name.
func (b *Bus) Subscribe(name string) *Subscription {
	s := &Subscription{
		name: name,
		bus:  b,
		ch:   make(chan Event, b.buffer),
		done: make(chan struct{}),
	}

	b.mu.Lock()
	set, ok := b.subs[name]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.subs[name] = set
	}
	set[s] = struct{}{}
	b.mu.Unlock()

	return s
}

// SubscribeContext is Subscribe with the subscription closed when ctx ends.
func (b *Bus) SubscribeContext(ctx context.Context, name string) *Subscription {
	s := b.Subscribe(name)
	go func() {
		select {
		case <-ctx.Done():
			s.Close()
		case <-s.done:
		}
	}()
	return s
}

// Emit delivers ev to every current subscriber of ev.Name. It blocks while a
// subscriber's buffer is full, so a single producer's events are never
// reordered or dropped; a closed subscription is skipped.
func (b *Bus) Emit(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.subs[ev.Name]))
	for s := range b.subs[ev.Name] {
		targets = append(targets, s)
	}
	b.mu.RUnlock()

	for _, s := range targets {
		select {
		case <-s.done:
			continue
		default:
		}
		select {
		case s.ch <- ev:
		case <-s.done:
		}
	}
}

// Subscribers returns the number of live subscriptions for name.
func (b *Bus) Subscribers(name string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[name])
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if set, ok := b.subs[s.name]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.subs, s.name)
		}
	}
}

// =============================================================================
// SUBSCRIPTION
// =============================================================================

// Subscription is one consumer's view of a named event stream.
type Subscription struct {
	name string
	bus  *Bus
	ch   chan Event
	done chan struct{}
	once sync.Once
}

// Name returns the event name this subscription listens to.
func (s *Subscription) Name() string { return s.name }

// Events returns the ordered event channel. It is never closed; select on
// Done to observe release.
func (s *Subscription) Events() <-chan Event { return s.ch }

// Done is closed once the subscription has been released.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close releases the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.once.Do(func() {
		close(s.done)
		s.bus.remove(s)
	})
}
