package discord

import (
	"sync"

	"github.com/bwmarrin/discordgo"
)

// fakeSession records every call so tests can assert on attempt counts and
// payloads without a live gateway.
type fakeSession struct {
	mu sync.Mutex

	channels []*discordgo.Channel
	members  []*discordgo.Member
	roles    []*discordgo.Role
	emojis   []*discordgo.Emoji
	guild    *discordgo.Guild
	history  []*discordgo.Message

	channelListErr error
	memberListErr  error
	memberErr      error
	sendErr        error
	deleteErr      error
	historyErr     error
	dmErr          error

	channelFetches int
	memberFetches  int
	emojiFetches   int
	historyFetches int

	sentChannels   []string
	sentTexts      []string
	sentEmbeds     []*discordgo.MessageEmbed
	sentComplex    []*discordgo.MessageSend
	reactionsAdded []string
	bulkDeletes    [][]string
	singleDeletes  []string
	roleAdds       []string
	roleRemoves    []string
	roleCreates    []string
	roleDeletes    []string
	roleEdits      [][]string
	dmOpened       []string
	gamesSet       []string
	streamsSet     []string
}

func (f *fakeSession) Guild(string, ...discordgo.RequestOption) (*discordgo.Guild, error) {
	return f.guild, nil
}

func (f *fakeSession) GuildChannels(string, ...discordgo.RequestOption) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.channelFetches++
	if f.channelListErr != nil {
		return nil, f.channelListErr
	}
	return f.channels, nil
}

func (f *fakeSession) GuildMembers(string, string, int, ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.memberFetches++
	if f.memberListErr != nil {
		return nil, f.memberListErr
	}
	return f.members, nil
}

func (f *fakeSession) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.memberErr != nil {
		return nil, f.memberErr
	}
	for _, m := range f.members {
		if m.User != nil && m.User.ID == userID {
			return m, nil
		}
	}
	return nil, &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember}}
}

func (f *fakeSession) GuildRoles(string, ...discordgo.RequestOption) ([]*discordgo.Role, error) {
	return f.roles, nil
}

func (f *fakeSession) GuildRoleCreate(_ string, data *discordgo.RoleParams, _ ...discordgo.RequestOption) (*discordgo.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleCreates = append(f.roleCreates, data.Name)
	return &discordgo.Role{ID: "new", Name: data.Name}, nil
}

func (f *fakeSession) GuildRoleDelete(_, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleDeletes = append(f.roleDeletes, roleID)
	return nil
}

func (f *fakeSession) GuildMemberEdit(_, userID string, data *discordgo.GuildMemberParams, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data.Roles != nil {
		f.roleEdits = append(f.roleEdits, *data.Roles)
	}
	return nil, nil
}

func (f *fakeSession) GuildMemberRoleAdd(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleAdds = append(f.roleAdds, userID+":"+roleID)
	return nil
}

func (f *fakeSession) GuildMemberRoleRemove(_, userID, roleID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roleRemoves = append(f.roleRemoves, userID+":"+roleID)
	return nil
}

func (f *fakeSession) GuildEmojis(string, ...discordgo.RequestOption) ([]*discordgo.Emoji, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.emojiFetches++
	return f.emojis, nil
}

func (f *fakeSession) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentChannels = append(f.sentChannels, channelID)
	f.sentTexts = append(f.sentTexts, content)
	return &discordgo.Message{ID: "m1", ChannelID: channelID, Content: content}, nil
}

func (f *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentChannels = append(f.sentChannels, channelID)
	f.sentComplex = append(f.sentComplex, data)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sentChannels = append(f.sentChannels, channelID)
	f.sentEmbeds = append(f.sentEmbeds, embed)
	return &discordgo.Message{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakeSession) ChannelMessages(_ string, limit int, _, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.historyFetches++
	if f.historyErr != nil {
		return nil, f.historyErr
	}
	if limit > len(f.history) {
		limit = len(f.history)
	}
	return f.history[:limit], nil
}

func (f *fakeSession) ChannelMessageDelete(_, messageID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.singleDeletes = append(f.singleDeletes, messageID)
	return nil
}

func (f *fakeSession) ChannelMessagesBulkDelete(_ string, messages []string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.bulkDeletes = append(f.bulkDeletes, messages)
	return nil
}

func (f *fakeSession) MessageReactionAdd(_, messageID, emojiID string, _ ...discordgo.RequestOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reactionsAdded = append(f.reactionsAdded, emojiID)
	return nil
}

func (f *fakeSession) UserChannelCreate(recipientID string, _ ...discordgo.RequestOption) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dmErr != nil {
		return nil, f.dmErr
	}
	f.dmOpened = append(f.dmOpened, recipientID)
	return &discordgo.Channel{
		ID:         "dm-" + recipientID,
		Type:       discordgo.ChannelTypeDM,
		Recipients: []*discordgo.User{{ID: recipientID, Username: "recipient"}},
	}, nil
}

func (f *fakeSession) UpdateGameStatus(_ int, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gamesSet = append(f.gamesSet, name)
	return nil
}

func (f *fakeSession) UpdateStreamingStatus(_ int, name string, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.streamsSet = append(f.streamsSet, name+"@"+url)
	return nil
}

// fixed connection states for tests
func stateNormal() ConnectionState      { return StateNormal }
func stateReconnected() ConnectionState { return StateReconnected }
