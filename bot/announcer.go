package bot

import (
	"context"
	"fmt"

	"decryptzone/bot/common"
	"decryptzone/events"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// announcer posts accepted solves to a channel
type announcer struct {
	sender    common.ChannelSender
	channelID string
}

func newAnnouncer(sender common.ChannelSender, channelID string) *announcer {
	return &announcer{sender: sender, channelID: channelID}
}

func (a *announcer) handle(ctx context.Context, event events.Event) {
	solved, ok := event.(events.ChallengeSolvedEvent)
	if !ok {
		return
	}

	_, err := a.sender.ChannelMessageSendComplex(a.channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{buildSolveAnnouncement(solved)},
	})
	if err != nil {
		log.WithFields(log.Fields{
			"channelID":   a.channelID,
			"userID":      solved.UserID,
			"challengeID": solved.ChallengeID,
			"error":       err,
		}).Error("Failed to announce solve")
	}
}

func buildSolveAnnouncement(e events.ChallengeSolvedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "🔓 Code cracked",
		Description: fmt.Sprintf("**%s** decoded challenge #%d for +%d pts and now has **%s** pts (%d solved).",
			e.Username, e.ChallengeID, e.Points, common.FormatScore(e.NewScore), e.SolvedCount),
		Color: common.ColorSuccess,
	}
}
