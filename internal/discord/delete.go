package discord

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// BulkDelete removes the amount messages immediately preceding the channel's
// last known message in one bulk call. Fetching message history can stall on
// the API, so the fetch-and-delete sequence runs as a detached job and this
// call returns as soon as the job is queued; at most one purge runs per
// channel at a time. The batch endpoint needs at least two messages — single
// deletions go through DeleteMessage.
func (d *Dispatcher) BulkDelete(channel *discordgo.Channel, amount int) error {
	if channel == nil || amount < 2 {
		return fmt.Errorf("channel was nil or amount was less than 2: %w", ErrInvalidArgument)
	}

	err := d.jobs.StartAsync("purge:"+channel.ID, func(ctx context.Context) error {
		return d.purge(ctx, channel, amount)
	})
	if err != nil {
		d.log.Warn().Str("channel", channel.Name).Msg("Purge already running for channel")
	}
	return nil
}

// BulkDeleteFrom resolves a channel by name or ID and bulk deletes there.
func (d *Dispatcher) BulkDeleteFrom(channelName string, amount int) error {
	ch, err := d.resolver.Channel(channelName)
	if err != nil {
		return err
	}
	return d.BulkDelete(ch, amount)
}

func (d *Dispatcher) purge(ctx context.Context, channel *discordgo.Channel, amount int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	msgs, err := d.s.ChannelMessages(channel.ID, amount, channel.LastMessageID, "", "")
	if err != nil {
		return fmt.Errorf("fetching messages from #%s: %w", channel.Name, err)
	}
	if len(msgs) == 0 {
		return nil
	}

	ids := make([]string, 0, len(msgs))
	for _, m := range msgs {
		ids = append(ids, m.ID)
	}

	d.log.Info().Str("channel", channel.Name).Int("count", len(ids)).Msg("Bulk deleting messages")
	if err := d.s.ChannelMessagesBulkDelete(channel.ID, ids); err != nil {
		return fmt.Errorf("bulk deleting in #%s: %w", channel.Name, err)
	}
	return nil
}

// BulkDeleteMessages removes an explicit set of messages from a channel in
// one bulk call. The set must hold at least two messages.
func (d *Dispatcher) BulkDeleteMessages(channel *discordgo.Channel, messages ...*discordgo.Message) error {
	if channel == nil || len(messages) < 2 {
		return fmt.Errorf("channel was nil or fewer than 2 messages given: %w", ErrInvalidArgument)
	}

	ids := make([]string, 0, len(messages))
	for _, m := range messages {
		if m != nil {
			ids = append(ids, m.ID)
		}
	}
	if err := d.s.ChannelMessagesBulkDelete(channel.ID, ids); err != nil {
		d.log.Error().Err(err).Str("channel", channel.Name).Msg("Failed to bulk delete messages")
	}
	return nil
}

// DeleteMessage deletes a single message. A message that is already gone
// (the API's "unknown message" rejection) counts as success: the desired end
// state is absence, and it does not matter whether this call or a race got
// there first.
func (d *Dispatcher) DeleteMessage(message *discordgo.Message) error {
	if message == nil {
		return fmt.Errorf("message was nil: %w", ErrInvalidArgument)
	}

	d.log.Debug().Str("message", message.ID).Msg("Deleting message")
	err := d.s.ChannelMessageDelete(message.ChannelID, message.ID)
	if err == nil {
		return nil
	}

	if isUnknownMessage(err) {
		d.log.Debug().Str("message", message.ID).Msg("Message already deleted")
		return nil
	}
	d.log.Error().Err(err).Str("message", message.ID).Msg("Failed to delete message")
	return nil
}

// isUnknownMessage reports whether err is the gateway's error code 10008.
func isUnknownMessage(err error) bool {
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Message != nil {
		return rest.Message.Code == discordgo.ErrCodeUnknownMessage
	}
	return false
}
