package discordbot

import (
	"bytes"

	"github.com/bwmarrin/discordgo"
)

// Chat is the part of the discord API the commands use.
type Chat interface {
	Reply(message *discordgo.Message, content string) (*discordgo.Message, error)
	Edit(channelId, messageId, content string) error
	SendFile(channelId, name string, data []byte) (*discordgo.Message, error)
	Message(channelId, messageId string) (*discordgo.Message, error)
}

type discordChat struct {
	session *discordgo.Session
}

func (c discordChat) Reply(message *discordgo.Message, content string) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendReply(message.ChannelID, content, message.Reference())
}

func (c discordChat) Edit(channelId, messageId, content string) error {
	_, err := c.session.ChannelMessageEdit(channelId, messageId, content)
	return err
}

func (c discordChat) SendFile(channelId, name string, data []byte) (*discordgo.Message, error) {
	return c.session.ChannelMessageSendComplex(channelId, &discordgo.MessageSend{
		Files: []*discordgo.File{
			{
				Name:        name,
				ContentType: "image/png",
				Reader:      bytes.NewReader(data),
			},
		},
	})
}

func (c discordChat) Message(channelId, messageId string) (*discordgo.Message, error) {
	return c.session.ChannelMessage(channelId, messageId)
}
