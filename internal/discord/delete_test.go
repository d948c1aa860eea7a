package discord

import (
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkDelete(t *testing.T) {
	f := &fakeSession{history: []*discordgo.Message{
		{ID: "m1"}, {ID: "m2"}, {ID: "m3"},
	}}
	d := newTestDispatcher(f, stateNormal)

	ch := &discordgo.Channel{ID: "100", Name: "general", LastMessageID: "m0"}
	require.NoError(t, d.BulkDelete(ch, 5))

	require.Eventually(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return len(f.bulkDeletes) == 1
	}, time.Second, 5*time.Millisecond)

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, 1, f.historyFetches)
	assert.Equal(t, []string{"m1", "m2", "m3"}, f.bulkDeletes[0])
}

func TestBulkDelete_RejectsSmallAmountBeforeAnyFetch(t *testing.T) {
	f := &fakeSession{history: []*discordgo.Message{{ID: "m1"}}}
	d := newTestDispatcher(f, stateNormal)

	ch := &discordgo.Channel{ID: "100", Name: "general", LastMessageID: "m0"}
	assert.ErrorIs(t, d.BulkDelete(ch, 1), ErrInvalidArgument)
	assert.ErrorIs(t, d.BulkDelete(nil, 5), ErrInvalidArgument)
	assert.Equal(t, 0, f.historyFetches)
}

func TestBulkDeleteMessages(t *testing.T) {
	f := &fakeSession{}
	d := newTestDispatcher(f, stateNormal)

	ch := &discordgo.Channel{ID: "100", Name: "general"}
	err := d.BulkDeleteMessages(ch, &discordgo.Message{ID: "a"}, &discordgo.Message{ID: "b"})
	require.NoError(t, err)
	require.Len(t, f.bulkDeletes, 1)
	assert.Equal(t, []string{"a", "b"}, f.bulkDeletes[0])

	assert.ErrorIs(t, d.BulkDeleteMessages(ch, &discordgo.Message{ID: "a"}), ErrInvalidArgument)
}

func TestDeleteMessage(t *testing.T) {
	f := &fakeSession{}
	d := newTestDispatcher(f, stateNormal)

	require.NoError(t, d.DeleteMessage(&discordgo.Message{ID: "m1", ChannelID: "100"}))
	assert.Equal(t, []string{"m1"}, f.singleDeletes)

	assert.ErrorIs(t, d.DeleteMessage(nil), ErrInvalidArgument)
}

func TestDeleteMessage_AlreadyGoneIsSuccess(t *testing.T) {
	f := &fakeSession{deleteErr: &discordgo.RESTError{
		Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
	}}
	d := newTestDispatcher(f, stateNormal)

	err := d.DeleteMessage(&discordgo.Message{ID: "gone", ChannelID: "100"})
	assert.NoError(t, err)
}

func TestDeleteMessage_OtherTransportErrorsAreSwallowed(t *testing.T) {
	f := &fakeSession{deleteErr: errors.New("network down")}
	d := newTestDispatcher(f, stateNormal)

	err := d.DeleteMessage(&discordgo.Message{ID: "m1", ChannelID: "100"})
	assert.NoError(t, err)
}
