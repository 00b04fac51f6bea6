package common

import (
	"decryptzone/identity"

	"github.com/bwmarrin/discordgo"
)

// SubjectPrefix namespaces Discord accounts among identity subjects
const SubjectPrefix = "discord:"

// InteractionUser returns the user behind an interaction in a guild or a DM
func InteractionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User
	}
	return i.User
}

// IdentityFromUser maps a Discord account onto a ledger identity
func IdentityFromUser(u *discordgo.User) *identity.Identity {
	if u == nil || u.ID == "" {
		return nil
	}
	return &identity.Identity{
		Subject:  SubjectPrefix + u.ID,
		Name:     u.GlobalName,
		Nickname: u.Username,
	}
}

// IdentityFromInteraction is IdentityFromUser for the interaction's author
func IdentityFromInteraction(i *discordgo.InteractionCreate) *identity.Identity {
	return IdentityFromUser(InteractionUser(i))
}
