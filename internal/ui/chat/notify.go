// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the root Bubble Tea model of the llmpad TUI.
package chat

import (
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
)

// RefreshMsg tells the model to re-read the store snapshots.
type RefreshMsg struct{}

// AlertMsg carries a notification for the alert modal.
type AlertMsg struct{ Text string }

// RefreshOnChange returns an app.OnChange callback that posts RefreshMsg
// through send. It never blocks, so stores may fire it from inside
// Update; a burst of changes collapses into one message.
func RefreshOnChange(send func(tea.Msg)) func() {
	var pending atomic.Bool
	return func() {
		if !pending.CompareAndSwap(false, true) {
			return
		}
		go func() {
			pending.Store(false)
			send(RefreshMsg{})
		}()
	}
}

// Notifier forwards store alerts to the program in order. Alerts raised
// before Attach are held until then, up to notifierBuffer; past that
// they are dropped so Alert never blocks its caller.
type Notifier struct {
	ch   chan string
	once sync.Once

	mu     sync.RWMutex
	closed bool
}

const notifierBuffer = 64

// NewNotifier creates a notifier.
func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan string, notifierBuffer)}
}

// Alert implements app.Notifier.
func (n *Notifier) Alert(message string) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.closed {
		return
	}
	select {
	case n.ch <- message:
	default:
	}
}

// Attach starts delivering alerts through send, usually (*tea.Program).Send.
func (n *Notifier) Attach(send func(tea.Msg)) {
	n.once.Do(func() {
		go func() {
			for msg := range n.ch {
				send(AlertMsg{Text: msg})
			}
		}()
	})
}

// Close stops delivery. Alerts after Close are dropped.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.closed {
		n.closed = true
		close(n.ch)
	}
}
