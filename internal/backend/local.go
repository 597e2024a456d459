// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package backend defines the operations the stores call and the
// in-process implementation that serves them.
package backend

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/llmpad/internal/completion"
	"github.com/jeranaias/llmpad/internal/events"
	"github.com/jeranaias/llmpad/internal/model"
	"github.com/jeranaias/llmpad/internal/modelfile"
	"github.com/jeranaias/llmpad/internal/ollama"
	"github.com/jeranaias/llmpad/internal/storage"
	"github.com/jeranaias/llmpad/internal/util"
)

// TitleMaxRunes is the length of an auto-generated conversation title
// before the "..." suffix.
const TitleMaxRunes = 50

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Completer performs a chat completion round trip.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

// Puller downloads a model, reporting status lines as they arrive.
// Both ollama.Runner (CLI) and ollama.Client (HTTP) satisfy it.
type Puller interface {
	Pull(ctx context.Context, name string, onLine func(line string)) error
}

// Creator builds a model from Modelfile content.
type Creator interface {
	Create(ctx context.Context, name, content string) error
}

// RemoteLister lists installed model names for an OpenAI-style base URL.
type RemoteLister interface {
	ModelNames(ctx context.Context, apiURL string) ([]string, error)
}

// OllamaLister adapts an ollama.Client to RemoteLister.
type OllamaLister struct {
	Client *ollama.Client
}

// ModelNames lists models of the Ollama instance behind apiURL.
func (o OllamaLister) ModelNames(ctx context.Context, apiURL string) ([]string, error) {
	return o.Client.ForAPI(apiURL).ModelNames(ctx)
}

// Options wires a Local gateway.
type Options struct {
	Store      *storage.Store
	Bus        *events.Bus
	Completer  Completer
	Puller     Puller
	Creator    Creator
	Remote     RemoteLister
	ModelFiles *modelfile.Finder
	Logger     zerolog.Logger
}

// =============================================================================
// LOCAL GATEWAY
// =============================================================================

// Local serves Gateway in-process from sqlite, the models directory and a
// local Ollama.
type Local struct {
	store     *storage.Store
	bus       *events.Bus
	completer Completer
	puller    Puller
	creator   Creator
	remote    RemoteLister
	files     *modelfile.Finder
	log       zerolog.Logger
}

var _ Gateway = (*Local)(nil)

// NewLocal creates a gateway from opts. Store, Bus and ModelFiles are
// required.
func NewLocal(opts Options) *Local {
	if opts.Completer == nil {
		opts.Completer = completion.New(completion.DefaultTimeout)
	}
	if opts.Remote == nil {
		opts.Remote = OllamaLister{Client: ollama.NewClient()}
	}
	if opts.Puller == nil || opts.Creator == nil {
		runner := ollama.NewRunner("")
		if opts.Puller == nil {
			opts.Puller = runner
		}
		if opts.Creator == nil {
			opts.Creator = runner
		}
	}
	return &Local{
		store:     opts.Store,
		bus:       opts.Bus,
		completer: opts.Completer,
		puller:    opts.Puller,
		creator:   opts.Creator,
		remote:    opts.Remote,
		files:     opts.ModelFiles,
		log:       opts.Logger.With().Str("component", "backend").Logger(),
	}
}

// call logs one gateway operation with a fresh request id.
func (l *Local) call(op string, fn func(log zerolog.Logger) error) error {
	log := l.log.With().Str("op", op).Str("request_id", uuid.NewString()).Logger()
	start := time.Now()
	err := fn(log)

	ev := log.Debug()
	if err != nil && !errors.Is(err, context.Canceled) {
		ev = log.Warn().Err(err)
	}
	ev.Dur("duration", time.Since(start)).Msg("backend call")
	return err
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

func (l *Local) ListConversations(ctx context.Context) (out []model.Conversation, err error) {
	err = l.call("list_conversations", func(zerolog.Logger) error {
		out, err = l.store.ListConversations(ctx)
		return err
	})
	return out, err
}

func (l *Local) CreateConversation(ctx context.Context, title string) (conv model.Conversation, err error) {
	err = l.call("create_conversation", func(zerolog.Logger) error {
		conv, err = l.store.CreateConversation(ctx, title)
		return err
	})
	return conv, err
}

func (l *Local) ListMessages(ctx context.Context, conversationID int64) (out []model.Message, err error) {
	err = l.call("get_messages", func(log zerolog.Logger) error {
		log.Debug().Int64("conversation_id", conversationID).Msg("loading messages")
		out, err = l.store.ListMessages(ctx, conversationID)
		return err
	})
	return out, err
}

func (l *Local) DeleteConversation(ctx context.Context, id int64) error {
	return l.call("delete_conversation", func(zerolog.Logger) error {
		return l.store.DeleteConversation(ctx, id)
	})
}

func (l *Local) RenameConversation(ctx context.Context, id int64, title string) error {
	return l.call("rename_conversation", func(zerolog.Logger) error {
		return l.store.RenameConversation(ctx, id, title)
	})
}

// SendMessage persists the user turn, asks the completion endpoint for a
// reply using the stored history and persists the reply. A new
// conversation is created when req.ConversationID is 0. The user message
// stays stored when the completion fails.
func (l *Local) SendMessage(ctx context.Context, req SendRequest) (res SendResult, err error) {
	err = l.call("send_message", func(log zerolog.Logger) error {
		if strings.TrimSpace(req.Input) == "" {
			return model.ValidationError{Field: "input", Message: "message is empty"}
		}

		convID := req.ConversationID
		if convID == 0 {
			conv, err := l.store.CreateConversation(ctx, util.TitleFromInput(req.Input, TitleMaxRunes))
			if err != nil {
				return err
			}
			convID = conv.ID
			log.Debug().Int64("conversation_id", convID).Msg("created conversation for message")
		}

		user, err := l.store.AddMessage(ctx, convID, model.RoleUser, req.Input)
		if err != nil {
			return err
		}
		history, err := l.store.ListMessages(ctx, convID)
		if err != nil {
			return err
		}

		settings := req.Settings.WithDefaults()
		reply, err := l.completer.Complete(ctx, completion.Request{
			APIURL:  settings.APIURL,
			APIKey:  settings.APIKey,
			Model:   settings.Model,
			History: history,
		})
		if err != nil {
			return err
		}

		assistant, err := l.store.AddMessage(ctx, convID, model.RoleAssistant, reply)
		if err != nil {
			return err
		}
		conv, err := l.store.GetConversation(ctx, convID)
		if err != nil {
			return err
		}

		log.Debug().
			Int64("conversation_id", convID).
			Int("history", len(history)).
			Str("model", settings.Model).
			Msg("message answered")
		res = SendResult{Conversation: conv, User: user, Assistant: assistant}
		return nil
	})
	return res, err
}

// =============================================================================
// SETTINGS
// =============================================================================

func (l *Local) GetSettings(ctx context.Context) (st *model.Settings, err error) {
	err = l.call("get_settings", func(zerolog.Logger) error {
		st, err = l.store.GetSettings(ctx)
		return err
	})
	return st, err
}

func (l *Local) SaveSettings(ctx context.Context, settings model.Settings) error {
	return l.call("save_settings", func(log zerolog.Logger) error {
		log.Debug().Str("api_url", settings.APIURL).Str("model", settings.Model).Msg("saving settings")
		return l.store.SaveSettings(ctx, settings)
	})
}

// =============================================================================
// MODELS
// =============================================================================

func (l *Local) ListModelFiles(ctx context.Context) (out []model.ModelFile, err error) {
	err = l.call("get_modelfiles", func(zerolog.Logger) error {
		out, err = l.files.List()
		return err
	})
	return out, err
}

// ModelFilesWithStatus annotates each descriptor with its base model. An
// unreachable server reports every base as unavailable.
func (l *Local) ModelFilesWithStatus(ctx context.Context, apiURL string) (out []model.ModelFileInfo, err error) {
	err = l.call("get_modelfiles_with_status", func(log zerolog.Logger) error {
		files, err := l.files.List()
		if err != nil {
			return err
		}
		installed, err := l.remote.ModelNames(ctx, apiURL)
		if err != nil {
			log.Debug().Err(err).Msg("remote listing failed; treating bases as unavailable")
			installed = nil
		}
		out = modelfile.WithStatus(files, installed)
		return nil
	})
	return out, err
}

func (l *Local) ListRemoteModels(ctx context.Context, apiURL string) (out []string, err error) {
	err = l.call("list_ollama_models", func(zerolog.Logger) error {
		out, err = l.remote.ModelNames(ctx, apiURL)
		return err
	})
	return out, err
}

// CreateModel runs `ollama create` for content. apiURL is accepted for
// symmetry with the other model calls; the CLI talks to its default host.
func (l *Local) CreateModel(ctx context.Context, apiURL, name, content string) (msg string, err error) {
	err = l.call("create_ollama_model", func(log zerolog.Logger) error {
		if strings.TrimSpace(name) == "" {
			return model.ValidationError{Field: "name", Message: "model name is required"}
		}
		log.Debug().Str("model", name).Str("api_url", apiURL).Msg("creating model")
		if err := l.creator.Create(ctx, name, content); err != nil {
			return err
		}
		msg = fmt.Sprintf("Model '%s' created successfully!", name)
		return nil
	})
	return msg, err
}

// PullModel downloads name, publishing every status line on
// events.PullProgress keyed by the model name.
func (l *Local) PullModel(ctx context.Context, name string) (msg string, err error) {
	err = l.call("pull_ollama_model", func(log zerolog.Logger) error {
		if strings.TrimSpace(name) == "" {
			return model.ValidationError{Field: "name", Message: "model name is required"}
		}
		lines := 0
		err := l.puller.Pull(ctx, name, func(line string) {
			lines++
			l.bus.Emit(events.Event{
				Name:    events.PullProgress,
				Key:     name,
				Payload: line,
				At:      time.Now(),
			})
		})
		log.Debug().Str("model", name).Int("lines", lines).Msg("pull finished")
		if err != nil {
			return fmt.Errorf("failed to download model '%s': %w", name, err)
		}
		msg = fmt.Sprintf("Model '%s' downloaded successfully!", name)
		return nil
	})
	return msg, err
}

// Listen subscribes to event on the bus.
func (l *Local) Listen(ctx context.Context, event string) (*events.Subscription, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.bus.SubscribeContext(ctx, event), nil
}
