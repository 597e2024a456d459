// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package events is a small in-process push-event bus.
//
// Producers Emit named events; consumers Subscribe by name and receive every
// event emitted after the subscription was created, in emit order. A
// subscription is released with Close, which is idempotent and never races
// with a concurrent Emit.
//
// # Key Types
//
//   - Bus: fan-out of named events to subscriptions
//   - Subscription: one consumer's ordered stream
//   - Event: name, cycle key and free-text payload
//
// # Usage
//
//	sub := bus.Subscribe(events.PullProgress)
//	defer sub.Close()
//	for {
//	    select {
//	    case ev := <-sub.Events():
//	        fmt.Println(ev.Payload)
//	    case <-sub.Done():
//	        return
//	    }
//	}
package events
