package leaderboard

import (
	"bytes"
	"context"
	"fmt"

	"decryptzone/bot/common"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

// HandleCommand answers /leaderboard with an embed and the rendered image
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx := context.Background()

	if err := common.DeferResponse(s, i, false); err != nil {
		log.Errorf("Error deferring leaderboard response: %v", err)
		return
	}

	entries, err := f.ledger.GetLeaderboard(ctx)
	if err != nil {
		log.WithError(err).Error("Error getting leaderboard")
		common.FollowUpWithError(s, i, "Unable to retrieve the leaderboard. Please try again.")
		return
	}

	embed := BuildLeaderboardEmbed(entries)

	image, err := f.renderer.Render(entries)
	if err != nil {
		// the embed alone still answers the command
		log.WithError(err).Warn("Error rendering leaderboard image")
		if err := common.FollowUpWithEmbed(s, i, embed); err != nil {
			log.Errorf("Error sending leaderboard: %v", err)
		}
		return
	}

	if err := common.FollowUpWithImage(s, i, embed, imageName, image); err != nil {
		log.Errorf("Error sending leaderboard: %v", err)
	}
}

// Post sends the current leaderboard to channelID
func (f *Feature) Post(ctx context.Context, sender common.ChannelSender, channelID string) error {
	entries, err := f.ledger.GetLeaderboard(ctx)
	if err != nil {
		return fmt.Errorf("failed to get leaderboard: %w", err)
	}

	embed := BuildLeaderboardEmbed(entries)
	msg := &discordgo.MessageSend{Embeds: []*discordgo.MessageEmbed{embed}}

	image, err := f.renderer.Render(entries)
	if err != nil {
		log.WithError(err).Warn("Error rendering leaderboard image")
	} else {
		embed.Image = &discordgo.MessageEmbedImage{URL: "attachment://" + imageName}
		msg.Files = []*discordgo.File{{
			Name:        imageName,
			ContentType: "image/png",
			Reader:      bytes.NewReader(image),
		}}
	}

	if _, err := sender.ChannelMessageSendComplex(channelID, msg); err != nil {
		return fmt.Errorf("failed to post leaderboard: %w", err)
	}
	return nil
}
