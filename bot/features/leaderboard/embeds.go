package leaderboard

import (
	"fmt"
	"strings"
	"time"

	"decryptzone/bot/common"
	"decryptzone/models"

	"github.com/bwmarrin/discordgo"
)

// BuildLeaderboardEmbed lists the ranked players, podium first
func BuildLeaderboardEmbed(entries []*models.LeaderboardEntry) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:     "🏆 Decrypt Leaderboard",
		Color:     common.ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}

	if len(entries) == 0 {
		embed.Description = "No players yet. Be the first to crack a code with /solve!"
		return embed
	}

	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := entry.Username
		if name == "" {
			name = entry.Name
		}
		lines = append(lines, fmt.Sprintf("%s **%s** - %s pts (%d solved)",
			common.RankLabel(entry.Rank), name, common.FormatScore(entry.Score), entry.SolvedCount))
	}

	embed.Description = strings.Join(lines, "\n")
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Ties go to whoever got there first"}
	return embed
}
