package bot

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/time/rate"

	"github.com/gosuda/reactkit/internal/config"
	"github.com/gosuda/reactkit/internal/formatting"
	"github.com/gosuda/reactkit/internal/menu"
	"github.com/gosuda/reactkit/internal/messenger"
	"github.com/gosuda/reactkit/internal/prompt"
)

// Commands are the built-in demo commands.
type Commands struct {
	settings config.BotConfig
	tracker  *menu.Tracker
	limiter  *rate.Limiter
}

// NewCommands creates the built-in commands. Reaction attaches across all
// commands share one limiter built from settings.
func NewCommands(settings config.BotConfig, tracker *menu.Tracker) *Commands {
	return &Commands{
		settings: settings,
		tracker:  tracker,
		limiter:  rate.NewLimiter(rate.Limit(settings.ReactionRate), settings.ReactionBurst),
	}
}

// Register adds every built-in command to r.
func (c *Commands) Register(r *Router) {
	r.Handle("colour", c.Colour)
	r.Handle("pet", c.Pet)
	r.Handle("confirm", c.Confirm)
	r.Handle("scoreboard", c.Scoreboard)
	r.Handle("pages", c.Pages)
}

func (c *Commands) seeder(client messenger.Client) *messenger.Seeder {
	return messenger.NewSeeder(client, messenger.WithLimiter(c.limiter))
}

func reply(ctx context.Context, req Request, content string) error {
	if _, err := req.Client.SendMessage(ctx, req.Message.ChannelID, messenger.Page{Content: content}); err != nil {
		return fmt.Errorf("bot.reply: %w", err)
	}
	return nil
}

// Colour asks for the user's favourite colour and answers their next message.
func (c *Commands) Colour(ctx context.Context, req Request) error {
	q, err := req.Client.SendMessage(ctx, req.Message.ChannelID, messenger.Page{Content: "What is your favourite colour?"})
	if err != nil {
		return fmt.Errorf("bot.Commands.Colour: %w", err)
	}

	colour, ok := prompt.WaitForMessageContent(ctx, req.Client, q, req.Message.AuthorID, c.settings.PromptTimeout)
	if !ok {
		return reply(ctx, req, "I like red!")
	}
	return reply(ctx, req, colour+" is my favourite too!")
}

// Pet asks the user to pick dogs or cats by reaction and disagrees with them.
func (c *Commands) Pet(ctx context.Context, req Request) error {
	pets := []messenger.Marker{messenger.MarkerDog, messenger.MarkerCat}

	q, err := req.Client.SendMessage(ctx, req.Message.ChannelID, messenger.Page{Content: "Do you like dogs or cats more? React below!"})
	if err != nil {
		return fmt.Errorf("bot.Commands.Pet: %w", err)
	}

	idx, _, err := prompt.WaitForReaction(ctx, req.Client, q, req.Message.AuthorID, pets, c.settings.PromptTimeout,
		prompt.WithSeeder(c.seeder(req.Client)))
	if err != nil {
		return fmt.Errorf("bot.Commands.Pet: %w", err)
	}

	return reply(ctx, req, fmt.Sprintf("I like %s more!", pets[1-idx]))
}

// Confirm asks a yes/no question and reports the answer.
func (c *Commands) Confirm(ctx context.Context, req Request) error {
	question := "Are you sure?"
	if req.Args != "" {
		question = req.Args
	}

	q, err := req.Client.SendMessage(ctx, req.Message.ChannelID, messenger.Page{Content: question})
	if err != nil {
		return fmt.Errorf("bot.Commands.Confirm: %w", err)
	}

	yes, err := prompt.WaitForYesNo(ctx, req.Client, q, req.Message.AuthorID, c.settings.PromptTimeout,
		prompt.WithSeeder(c.seeder(req.Client)))
	switch {
	case errors.Is(err, messenger.ErrTimeout):
		return reply(ctx, req, "No answer, cancelled.")
	case err != nil:
		return fmt.Errorf("bot.Commands.Confirm: %w", err)
	case yes:
		return reply(ctx, req, "Confirmed.")
	default:
		return reply(ctx, req, "Cancelled.")
	}
}

// ScoreboardControls are first, previous, close, next and last page.
func ScoreboardControls() []menu.Control {
	return []menu.Control{
		{Marker: messenger.MarkerFirst, Handler: menu.HandlerFunc(menu.FirstPage)},
		{Marker: messenger.MarkerPrev, Handler: menu.HandlerFunc(menu.PrevPage)},
		{Marker: messenger.MarkerClose, Handler: menu.HandlerFunc(menu.Close)},
		{Marker: messenger.MarkerNext, Handler: menu.HandlerFunc(menu.NextPage)},
		{Marker: messenger.MarkerLast, Handler: menu.HandlerFunc(menu.LastPage)},
	}
}

// Scoreboard shows one page per player in a five-control menu.
func (c *Commands) Scoreboard(ctx context.Context, req Request) error {
	scores := []struct {
		player string
		points int
	}{
		{"Player A", 10},
		{"Player B", 5},
		{"Player C", 8},
	}

	pages := make([]messenger.Page, 0, len(scores))
	for _, s := range scores {
		pages = append(pages, messenger.Page{
			Content: s.player + "!",
			Embed:   &messenger.Embed{Description: fmt.Sprintf("%s scored %d points!", s.player, s.points)},
		})
	}

	opts := c.menuOptions()
	opts.Controls = ScoreboardControls()

	return c.runMenu(ctx, req, pages, opts)
}

// Pages splits the command's arguments into code-block pages and shows them
// in a menu.
func (c *Commands) Pages(ctx context.Context, req Request) error {
	if req.Args == "" {
		return reply(ctx, req, "Usage: pages <text>")
	}

	chunks := formatting.Pagify(req.Args, formatting.DefaultPagifyOptions())
	pages := make([]messenger.Page, 0, len(chunks))
	for i, chunk := range chunks {
		pages = append(pages, messenger.Page{
			Content: "```\n" + chunk + "\n```",
			Embed:   &messenger.Embed{Footer: fmt.Sprintf("Page %d/%d", i+1, len(chunks))},
		})
	}

	return c.runMenu(ctx, req, pages, c.menuOptions())
}

func (c *Commands) menuOptions() menu.Options {
	opts := menu.DefaultOptions()
	opts.Timeout = c.settings.MenuTimeout
	opts.NonBlockingSeed = c.settings.MenuNonBlockingSeed
	return opts
}

func (c *Commands) runMenu(ctx context.Context, req Request, pages []messenger.Page, opts menu.Options) error {
	m := menu.New(req.Client, req.Message, pages, opts,
		menu.WithSeeder(c.seeder(req.Client)),
		menu.WithTracker(c.tracker),
	)

	if _, err := m.Run(ctx); err != nil {
		return fmt.Errorf("bot.Commands.%s: %w", req.Name, err)
	}
	return nil
}
