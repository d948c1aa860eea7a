package bot

import (
	"context"
	"fmt"

	"github.com/Vitoster1098/PhantomBot/internal/config"
	"github.com/Vitoster1098/PhantomBot/internal/discord"
	"github.com/Vitoster1098/PhantomBot/pkg/jobmgr"
	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Bot owns the gateway session and wires the dispatch layer to it.
type Bot struct {
	cfg        *config.Config
	dg         *discordgo.Session
	tracker    *discord.StatusTracker
	dispatcher *discord.Dispatcher
	jobs       *jobmgr.Manager
	log        zerolog.Logger
}

func New(cfg *config.Config, log zerolog.Logger) *Bot {
	return &Bot{
		cfg:     cfg,
		tracker: discord.NewStatusTracker(log),
		jobs:    jobmgr.NewManager(log),
		log:     log,
	}
}

// Dispatcher returns the operation surface for command logic. Nil until Run
// has opened the session.
func (b *Bot) Dispatcher() *discord.Dispatcher {
	return b.dispatcher
}

// Run opens the gateway session and blocks until the context is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	b.dg = dg

	dg.Identify.Intents = discordgo.IntentsAll
	b.tracker.Bind(dg)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("opening gateway session: %w", err)
	}
	defer dg.Close()

	b.dispatcher = discord.New(dg, b.cfg.GuildID, b.tracker.State,
		discord.WithLogger(b.log),
		discord.WithJobManager(b.jobs),
	)

	if b.cfg.Game != "" {
		if err := b.dispatcher.SetGame(b.cfg.Game); err != nil {
			b.log.Warn().Err(err).Msg("Startup presence not set")
		}
	}

	b.log.Info().Str("guild", b.cfg.GuildID).Msg("Bot running")
	<-ctx.Done()

	b.jobs.StopAll()
	b.log.Info().Msg("Shutdown signal received, closing session")
	return nil
}
