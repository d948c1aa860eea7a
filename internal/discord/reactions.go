package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// AddReaction adds one reaction to a message. A nil message or empty token is
// an argument error, except that a message missing during a reconnect window
// is retried under the usual bound. Transport failures are logged and
// swallowed.
func (d *Dispatcher) AddReaction(ctx context.Context, message *discordgo.Message, token ReactionToken) error {
	if token.IsZero() {
		return fmt.Errorf("emoji was empty: %w", ErrInvalidArgument)
	}
	msg, err := resolveWithRetry(ctx, d.gate, "message", func() (*discordgo.Message, bool) {
		return message, message != nil
	})
	if err != nil {
		return err
	}

	if err := d.s.MessageReactionAdd(msg.ChannelID, msg.ID, token.APIName()); err != nil {
		d.log.Error().Err(err).Str("emoji", token.APIName()).Str("message", msg.ID).Msg("Failed to add reaction")
	}
	return nil
}

// AddReactions adds several reactions to a message in order.
func (d *Dispatcher) AddReactions(ctx context.Context, message *discordgo.Message, tokens ...ReactionToken) error {
	for _, t := range tokens {
		if err := d.AddReaction(ctx, message, t); err != nil {
			return err
		}
	}
	return nil
}

// AddReactionNamed resolves an emoji name (guild custom emoji first, then
// unicode) and adds it as a reaction.
func (d *Dispatcher) AddReactionNamed(ctx context.Context, message *discordgo.Message, name string) error {
	if name == "" {
		return fmt.Errorf("emoji name was empty: %w", ErrInvalidArgument)
	}
	return d.AddReaction(ctx, message, d.emoji.Resolve(name))
}

// AddReactionsNamed resolves a batch of emoji names with a single guild emoji
// fetch and adds each as a reaction.
func (d *Dispatcher) AddReactionsNamed(ctx context.Context, message *discordgo.Message, names ...string) error {
	for _, name := range names {
		if name == "" {
			return fmt.Errorf("emoji name was empty: %w", ErrInvalidArgument)
		}
	}
	return d.AddReactions(ctx, message, d.emoji.ResolveAll(names...)...)
}
