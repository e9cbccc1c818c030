// Package bot hosts text commands that drive prompts and menus.
package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode"

	"github.com/rs/zerolog/log"

	"github.com/gosuda/reactkit/internal/messenger"
)

// Request is one parsed command invocation.
type Request struct {
	Client  messenger.Client
	Message *messenger.Message
	Name    string
	Args    string
}

// Command runs a single invocation. Returned errors are logged by the Router.
type Command func(ctx context.Context, req Request) error

// Router reads every message from an event source and runs the command it
// names, each invocation on its own goroutine.
type Router struct {
	events   messenger.EventSource
	clients  *Registry
	prefix   string
	origin   string
	commands map[string]Command
	wg       sync.WaitGroup
}

// RouterOption configures a Router.
type RouterOption func(*Router)

// WithOrigin makes the Router run only commands whose message carries origin,
// usually the Origin of this process's Redis relay.
func WithOrigin(origin string) RouterOption {
	return func(r *Router) {
		r.origin = origin
	}
}

// NewRouter creates a Router for messages starting with prefix.
func NewRouter(events messenger.EventSource, clients *Registry, prefix string, opts ...RouterOption) *Router {
	r := &Router{
		events:   events,
		clients:  clients,
		prefix:   prefix,
		commands: make(map[string]Command),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Handle registers cmd under name. It must not be called once Run has started.
func (r *Router) Handle(name string, cmd Command) {
	r.commands[name] = cmd
}

// Run dispatches commands until ctx is done, then waits for running
// invocations to return.
func (r *Router) Run(ctx context.Context) {
	messages, cleanup := r.events.SubscribeMessages(ctx, messenger.MessageFilter{})
	defer cleanup()

	defer r.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			r.dispatch(ctx, msg)
		}
	}
}

// dispatch starts the command msg names, if any.
func (r *Router) dispatch(ctx context.Context, msg messenger.Message) {
	if msg.Bot || msg.Origin != r.origin {
		return
	}

	name, args, ok := Parse(r.prefix, msg.Content)
	if !ok {
		return
	}

	cmd, ok := r.commands[name]
	if !ok {
		log.Debug().Str("command", name).Msg("unknown command")
		return
	}

	client, ok := r.clients.Get(msg.Platform)
	if !ok {
		log.Warn().Str("platform", msg.Platform).Msg("command from unregistered platform")
		return
	}

	req := Request{Client: client, Message: &msg, Name: name, Args: args}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.invoke(ctx, cmd, req)
	}()
}

func (r *Router) invoke(ctx context.Context, cmd Command, req Request) {
	logger := log.With().
		Str("command", req.Name).
		Str("platform", req.Message.Platform).
		Str("channel_id", string(req.Message.ChannelID)).
		Str("user_id", string(req.Message.AuthorID)).
		Logger()

	defer func() {
		if p := recover(); p != nil {
			logger.Error().Interface("panic", p).Msg("command panicked")
		}
	}()

	err := cmd(ctx, req)
	switch {
	case err == nil:
		logger.Debug().Msg("command finished")
	case errors.Is(err, messenger.ErrTimeout), errors.Is(err, context.Canceled):
		logger.Debug().Err(err).Msg("command ended without an answer")
	default:
		logger.Error().Err(err).Msg("command failed")
	}
}

// Parse splits "<prefix><name> <args>" into name and args. It reports false
// when content does not start with prefix or names no command.
func Parse(prefix, content string) (name, args string, ok bool) {
	rest, found := strings.CutPrefix(content, prefix)
	if !found || prefix == "" || rest == "" {
		return "", "", false
	}
	if unicode.IsSpace(rune(rest[0])) {
		return "", "", false
	}

	name = strings.Fields(rest)[0]
	return name, strings.TrimSpace(rest[len(name):]), true
}
