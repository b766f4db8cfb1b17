package cache

import (
	"github.com/stoat-chat/stoatgo"
	"github.com/stoat-chat/stoatgo/wire"
)

// The helpers below build wire.ServerMessage values directly (bypassing
// the codec) so event-application tests can exercise Cache.Apply without
// round-tripping through JSON. The wire package's unexported kind field
// defaults to the zero value, which is fine here: Apply dispatches on
// concrete Go type, never on Kind().

func readyMsg(self, other stoat.User, dm, textCh stoat.Channel, server stoat.Server, member stoat.Member) wire.Ready {
	return wire.Ready{
		Users:    []stoat.User{self, other},
		Servers:  []stoat.Server{server},
		Channels: []stoat.Channel{dm, textCh},
		Members:  []stoat.Member{member},
	}
}

func readyWithChannels(chs ...stoat.Channel) wire.Ready {
	return wire.Ready{Channels: chs}
}

func wireMessage(m stoat.Message) wire.Message {
	return wire.Message{Message: m}
}

func reactMsg(id, channelID, userID, emojiID string) wire.MessageReact {
	return wire.MessageReact{ID: id, ChannelID: channelID, UserID: userID, EmojiID: emojiID}
}

func unreactMsg(id, channelID, userID, emojiID string) wire.MessageUnreact {
	return wire.MessageUnreact{ID: id, ChannelID: channelID, UserID: userID, EmojiID: emojiID}
}

func serverDeleteMsg(id string) wire.ServerDelete {
	return wire.ServerDelete{ID: id}
}

func memberLeaveMsg(serverID, userID string) wire.ServerMemberLeave {
	return wire.ServerMemberLeave{ID: serverID, User: userID}
}

func roleDeleteMsg(serverID, roleID string) wire.ServerRoleDelete {
	return wire.ServerRoleDelete{ID: serverID, RoleID: roleID}
}
