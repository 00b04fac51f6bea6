package challenges

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"decryptzone/bot/common"
	"decryptzone/challenge"
	"decryptzone/models"

	"github.com/bwmarrin/discordgo"
)

// BuildChallengesEmbed lists every challenge, marking the ones in solved
func BuildChallengesEmbed(all []challenge.Challenge, solved []int) *discordgo.MessageEmbed {
	lines := make([]string, 0, len(all))
	for _, ch := range all {
		mark := "🔒"
		if slices.Contains(solved, ch.ID) {
			mark = "✅"
		}
		lines = append(lines, fmt.Sprintf("%s `#%02d` `%s` (%s, %d pts)", mark, ch.ID, ch.Encoded, ch.Hint, ch.Points))
	}

	embed := &discordgo.MessageEmbed{
		Title:       "🔐 Decrypt Challenges",
		Description: strings.Join(lines, "\n"),
		Color:       common.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("%d/%d solved • answer with /solve", countSolved(all, solved), len(all)),
		},
		Timestamp: time.Now().Format(time.RFC3339),
	}
	return embed
}

func countSolved(all []challenge.Challenge, solved []int) int {
	n := 0
	for _, ch := range all {
		if slices.Contains(solved, ch.ID) {
			n++
		}
	}
	return n
}

// BuildProgressEmbed summarizes a player's record
func BuildProgressEmbed(user *models.User, total int) *discordgo.MessageEmbed {
	solved := "none yet"
	if len(user.SolvedChallenges) > 0 {
		ids := slices.Clone(user.SolvedChallenges)
		slices.Sort(ids)
		parts := make([]string, len(ids))
		for i, id := range ids {
			parts[i] = fmt.Sprintf("#%d", id)
		}
		solved = strings.Join(parts, ", ")
	}

	return &discordgo.MessageEmbed{
		Title: fmt.Sprintf("📊 Progress for %s", user.Username),
		Color: common.ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Score", Value: common.FormatScore(user.Score), Inline: true},
			{Name: "Solved", Value: fmt.Sprintf("%d/%d", len(user.SolvedChallenges), total), Inline: true},
			{Name: "Last solve", Value: common.FormatSolvedAt(lastSolve(user)), Inline: true},
			{Name: "Challenges", Value: solved},
		},
	}
}

// a fresh record carries its creation time, which is not a solve
func lastSolve(user *models.User) int64 {
	if len(user.SolvedChallenges) == 0 {
		return 0
	}
	return user.LastSolvedAt
}

// BuildSolveEmbed reports the outcome of a correct answer
func BuildSolveEmbed(ch challenge.Challenge, accepted bool, user *models.User) *discordgo.MessageEmbed {
	if !accepted {
		return &discordgo.MessageEmbed{
			Title:       "✅ Already solved",
			Description: fmt.Sprintf("You already cracked challenge #%d. Score stays at **%s** pts.", ch.ID, common.FormatScore(user.Score)),
			Color:       common.ColorWarning,
		}
	}
	return &discordgo.MessageEmbed{
		Title:       "🎉 Code cracked!",
		Description: fmt.Sprintf("`%s` is **%s**. +%d pts, new score **%s** pts.", ch.Encoded, ch.Answer, ch.Points, common.FormatScore(user.Score)),
		Color:       common.ColorSuccess,
	}
}
