package common

import (
	"errors"

	"decryptzone/service"

	"github.com/bwmarrin/discordgo"
)

// ChannelSender posts messages to a channel; *discordgo.Session satisfies it
type ChannelSender interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// UserMessage turns a ledger error into text safe to show a player
func UserMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		return "Could not identify your Discord account."
	case errors.Is(err, service.ErrUserNotFound):
		return "You are not registered yet. Try /progress first."
	case errors.Is(err, service.ErrUnknownChallenge):
		return "That challenge does not exist. Use /challenges to see the list."
	case errors.Is(err, service.ErrInvalidPoints), errors.Is(err, service.ErrPointsMismatch):
		return "That solve could not be scored."
	default:
		return "Something went wrong. Please try again later."
	}
}
