package bot

import (
	"fmt"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

var minChallengeID = 1.0

func slashCommands() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "leaderboard",
			Description: "Show the top 10 decoders",
		},
		{
			Name:        "progress",
			Description: "Show your score and solved challenges",
		},
		{
			Name:        "challenges",
			Description: "List the encoded words waiting to be cracked",
		},
		{
			Name:        "solve",
			Description: "Submit the decoded answer to a challenge",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "challenge",
					Description: "Challenge number",
					Required:    true,
					MinValue:    &minChallengeID,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "answer",
					Description: "Your decoded word",
					Required:    true,
				},
			},
		},
	}
}

// registerCommands registers all slash commands with Discord.
// A guild id scopes them to one server, which applies instantly during development.
func (b *Bot) registerCommands() error {
	for _, cmd := range slashCommands() {
		if _, err := b.session.ApplicationCommandCreate(b.session.State.User.ID, b.config.GuildID, cmd); err != nil {
			return fmt.Errorf("cannot create '%s' command: %w", cmd.Name, err)
		}
	}
	log.WithField("guildID", b.config.GuildID).Info("Registered slash commands")
	return nil
}

func (b *Bot) handleCommands(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "leaderboard":
		b.leaderboard.HandleCommand(s, i)
	case "progress":
		b.challenges.HandleProgress(s, i)
	case "challenges":
		b.challenges.HandleChallenges(s, i)
	case "solve":
		b.challenges.HandleSolve(s, i)
	}
}
