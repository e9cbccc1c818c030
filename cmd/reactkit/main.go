package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	slacklib "github.com/slack-go/slack"

	"github.com/gosuda/reactkit/internal/bot"
	"github.com/gosuda/reactkit/internal/config"
	"github.com/gosuda/reactkit/internal/menu"
	"github.com/gosuda/reactkit/internal/messenger"
	"github.com/gosuda/reactkit/internal/messenger/discord"
	rkslack "github.com/gosuda/reactkit/internal/messenger/slack"
	"github.com/gosuda/reactkit/internal/server"
	redisstore "github.com/gosuda/reactkit/internal/store/redis"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}
}

func setupLogging(cfg config.LogConfig) {
	level, parseErr := zerolog.ParseLevel(cfg.Level)
	if parseErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "text" {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	} else {
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}

func run() error {
	// Load configuration from environment.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogging(cfg.Log)

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	broker := messenger.NewBroker()

	// Platform adapters publish straight to the broker, or through Redis so
	// every bot process sees every gateway event.
	var pub messenger.Publisher = broker
	var routerOpts []bot.RouterOption
	if cfg.Redis.Enabled() {
		relay, relayErr := redisstore.New(ctx, redisstore.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.ChannelPrefix,
		})
		if relayErr != nil {
			return relayErr
		}
		defer relay.Close()

		go func() {
			if runErr := relay.Run(ctx, broker); runErr != nil && !errors.Is(runErr, context.Canceled) {
				log.Error().Err(runErr).Msg("redis relay stopped")
			}
		}()
		pub = relay
		routerOpts = append(routerOpts, bot.WithOrigin(relay.Origin()))
		log.Info().Str("addr", cfg.Redis.Addr).Str("origin", relay.Origin()).Msg("redis relay enabled")
	}

	registry := bot.NewRegistry()

	if cfg.Discord.Enabled() {
		session, sessErr := openDiscord(ctx, cfg.Discord, pub, broker, registry)
		if sessErr != nil {
			return sessErr
		}
		defer session.Close()
	}

	var slackHandler *rkslack.Handler
	if cfg.Slack.Enabled() {
		handler, slackErr := setupSlack(ctx, cfg.Slack, pub, broker, registry)
		if slackErr != nil {
			return slackErr
		}
		slackHandler = handler
	}

	tracker := menu.NewTracker()

	router := bot.NewRouter(broker, registry, cfg.Bot.CommandPrefix, routerOpts...)
	bot.NewCommands(cfg.Bot, tracker).Register(router)

	routerDone := make(chan struct{})
	go func() {
		defer close(routerDone)
		router.Run(ctx)
	}()

	// Create HTTP server with all routes wired.
	srv := server.New(ctx, cfg, server.Deps{
		Menus:     tracker,
		Events:    broker,
		Platforms: registry,
		Slack:     slackHandler,
	})

	// Start server in background goroutine.
	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Strs("platforms", registry.Platforms()).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	select {
	case <-routerDone:
	case <-shutdownCtx.Done():
		log.Warn().Msg("commands still running at shutdown")
	}

	log.Info().Msg("stopped")
	return nil
}

func openDiscord(
	ctx context.Context,
	cfg config.DiscordConfig,
	pub messenger.Publisher,
	events messenger.EventSource,
	registry *bot.Registry,
) (*discordgo.Session, error) {
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentGuildMessages |
		discordgo.IntentGuildMessageReactions |
		discordgo.IntentDirectMessages |
		discordgo.IntentDirectMessageReactions |
		discordgo.IntentMessageContent

	discord.NewBridge(ctx, pub).Attach(session)

	if err := session.Open(); err != nil {
		return nil, fmt.Errorf("discord open: %w", err)
	}

	registry.Register(discord.Platform, messenger.NewClient(
		discord.NewDiscordMessenger(discord.NewSessionAPI(session)),
		events,
	))
	log.Info().Msg("Discord gateway connected")

	return session, nil
}

func setupSlack(
	ctx context.Context,
	cfg config.SlackConfig,
	pub messenger.Publisher,
	events messenger.EventSource,
	registry *bot.Registry,
) (*rkslack.Handler, error) {
	client := slacklib.New(cfg.BotToken)

	auth, err := client.AuthTestContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("slack auth test: %w", err)
	}
	botUserID := messenger.UserID(auth.UserID)

	registry.Register(rkslack.Platform, messenger.NewClient(
		rkslack.NewSlackMessenger(client, botUserID),
		events,
	))
	log.Info().Str("team", auth.Team).Str("bot_user_id", auth.UserID).Msg("Slack integration enabled")

	return rkslack.NewHandler(cfg.SigningSecret, pub, botUserID), nil
}
