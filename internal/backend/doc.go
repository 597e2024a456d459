// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend defines the operations the stores call and the
// in-process implementation that serves them.
//
// # Key Types
//
//   - Gateway: typed request/response operations plus the push-event Listen
//   - Local: sqlite + models directory + Ollama implementation
//   - SendRequest / SendResult: one chat turn
//
// # Usage
//
//	gw := backend.NewLocal(backend.Options{
//	    Store:      store,
//	    Bus:        events.NewBus(),
//	    ModelFiles: modelfile.NewFinder(cfg.ModelsDir),
//	    Logger:     logger,
//	})
//	res, err := gw.SendMessage(ctx, backend.SendRequest{Input: "hello", Settings: st})
package backend
