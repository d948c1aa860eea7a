package discord

// Presence updates are idempotent and rare, so they go out once, best effort,
// with no retry policy.

// SetGame sets the bot's presence to "playing game".
func (d *Dispatcher) SetGame(game string) error {
	if err := d.s.UpdateGameStatus(0, game); err != nil {
		d.log.Error().Err(err).Str("game", game).Msg("Failed to set game presence")
		return err
	}
	return nil
}

// SetStream sets the bot's presence to "streaming game" at the given URL.
func (d *Dispatcher) SetStream(game, url string) error {
	if err := d.s.UpdateStreamingStatus(0, game, url); err != nil {
		d.log.Error().Err(err).Str("game", game).Str("url", url).Msg("Failed to set streaming presence")
		return err
	}
	return nil
}

// RemoveGame clears any activity, leaving the bot plainly online.
func (d *Dispatcher) RemoveGame() error {
	if err := d.s.UpdateGameStatus(0, ""); err != nil {
		d.log.Error().Err(err).Msg("Failed to clear presence")
		return err
	}
	return nil
}
