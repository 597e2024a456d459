// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package events

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBus_DeliversInOrder(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(PullProgress)
	defer sub.Close()

	const n = DefaultBuffer * 3
	go func() {
		for i := 0; i < n; i++ {
			bus.Emit(Event{Name: PullProgress, Payload: fmt.Sprint(i)})
		}
	}()

	for i := 0; i < n; i++ {
		select {
		case ev := <-sub.Events():
			require.Equal(t, fmt.Sprint(i), ev.Payload)
			assert.False(t, ev.At.IsZero())
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

func TestBus_OnlyMatchingName(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe("a")
	defer sub.Close()

	bus.Emit(Event{Name: "b", Payload: "ignored"})
	bus.Emit(Event{Name: "a", Payload: "kept"})

	ev := <-sub.Events()
	assert.Equal(t, "kept", ev.Payload)
	assert.Len(t, sub.Events(), 0)
}

func TestBus_CloseIsIdempotentAndUnblocksEmit(t *testing.T) {
	bus := NewBus()
	sub := bus.Subscribe(PullProgress)

	// Fill the buffer so the next Emit blocks.
	for i := 0; i < DefaultBuffer; i++ {
		bus.Emit(Event{Name: PullProgress})
	}

	emitted := make(chan struct{})
	go func() {
		bus.Emit(Event{Name: PullProgress})
		close(emitted)
	}()

	sub.Close()
	sub.Close()

	select {
	case <-emitted:
	case <-time.After(2 * time.Second):
		t.Fatal("Emit did not return after Close")
	}
	assert.Equal(t, 0, bus.Subscribers(PullProgress))
}

func TestBus_SubscribeContext(t *testing.T) {
	bus := NewBus()
	ctx, cancel := context.WithCancel(context.Background())
	sub := bus.SubscribeContext(ctx, PullProgress)
	require.Equal(t, 1, bus.Subscribers(PullProgress))

	cancel()
	select {
	case <-sub.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("subscription not released after context cancel")
	}
	assert.Equal(t, 0, bus.Subscribers(PullProgress))
}

func TestBus_ConcurrentSubscribeEmitClose(t *testing.T) {
	bus := NewBus()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s := bus.Subscribe(PullProgress)
			time.Sleep(time.Millisecond)
			s.Close()
		}()
		go func() {
			defer wg.Done()
			bus.Emit(Event{Name: PullProgress, Payload: "x"})
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, bus.Subscribers(PullProgress))
}
