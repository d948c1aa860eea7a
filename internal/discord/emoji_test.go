package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestEmojiResolver_PrefersGuildCustom(t *testing.T) {
	f := &fakeSession{emojis: []*discordgo.Emoji{
		{ID: "111", Name: "Kappa"},
	}}
	r := NewEmojiResolver(f, "guild1", zerolog.Nop())

	// any casing matches the custom emoji
	tok := r.Resolve("kappa")
	assert.Equal(t, "Kappa:111", tok.APIName())
	tok = r.Resolve("KAPPA")
	assert.Equal(t, "Kappa:111", tok.APIName())
}

func TestEmojiResolver_UnicodePassthrough(t *testing.T) {
	f := &fakeSession{emojis: []*discordgo.Emoji{
		{ID: "111", Name: "Kappa"},
	}}
	r := NewEmojiResolver(f, "guild1", zerolog.Nop())

	tok := r.Resolve("😀")
	assert.Equal(t, "😀", tok.APIName())
	assert.Empty(t, tok.ID)
}

func TestEmojiResolver_AliasFallback(t *testing.T) {
	f := &fakeSession{}
	r := NewEmojiResolver(f, "guild1", zerolog.Nop())

	tok := r.Resolve(":wave:")
	assert.Equal(t, "👋", tok.APIName())
}

func TestEmojiResolver_BatchFetchesOnce(t *testing.T) {
	f := &fakeSession{emojis: []*discordgo.Emoji{
		{ID: "111", Name: "Kappa"},
	}}
	r := NewEmojiResolver(f, "guild1", zerolog.Nop())

	tokens := r.ResolveAll("kappa", "😀", "kappa")
	assert.Len(t, tokens, 3)
	assert.Equal(t, "Kappa:111", tokens[0].APIName())
	assert.Equal(t, "😀", tokens[1].APIName())
	assert.Equal(t, 1, f.emojiFetches)
}
