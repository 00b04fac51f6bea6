package bot

import (
	"context"
	"fmt"
	"time"

	"decryptzone/bot/common"
	"decryptzone/bot/features/challenges"
	"decryptzone/bot/features/leaderboard"
	"decryptzone/challenge"
	"decryptzone/events"
	"decryptzone/render"
	"decryptzone/service"

	"github.com/bwmarrin/discordgo"
	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// Config holds bot configuration
type Config struct {
	Token                   string
	GuildID                 string
	AnnounceChannelID       string
	LeaderboardPostInterval time.Duration
}

// Bot is the Discord front end of the ledger
type Bot struct {
	config      Config
	session     *discordgo.Session
	scheduler   gocron.Scheduler
	leaderboard *leaderboard.Feature
	challenges  *challenges.Feature
}

// New connects to Discord, registers the slash commands and wires event subscriptions
func New(config Config, ledger service.LedgerService, catalog *challenge.Catalog, renderer *render.LeaderboardRenderer, eventBus *events.Bus) (*Bot, error) {
	dg, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("error creating discord session: %w", err)
	}
	dg.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		config:      config,
		session:     dg,
		leaderboard: leaderboard.NewFeature(ledger, renderer),
		challenges:  challenges.NewFeature(ledger, catalog),
	}

	dg.AddHandler(bot.handleCommands)

	if err := dg.Open(); err != nil {
		return nil, fmt.Errorf("error opening connection: %w", err)
	}

	if err := bot.registerCommands(); err != nil {
		dg.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	if config.AnnounceChannelID != "" {
		a := newAnnouncer(dg, config.AnnounceChannelID)
		eventBus.Subscribe(events.EventTypeChallengeSolved, a.handle)
		log.WithField("channelID", config.AnnounceChannelID).Info("Solve announcements enabled")

		if config.LeaderboardPostInterval > 0 {
			scheduler, err := bot.startLeaderboardSchedule(dg)
			if err != nil {
				dg.Close()
				return nil, fmt.Errorf("error scheduling leaderboard post: %w", err)
			}
			bot.scheduler = scheduler
		}
	}

	return bot, nil
}

// Close stops scheduled jobs and disconnects from Discord
func (b *Bot) Close() error {
	if b.scheduler != nil {
		if err := b.scheduler.Shutdown(); err != nil {
			log.Errorf("Error stopping scheduler: %v", err)
		}
	}
	return b.session.Close()
}

func (b *Bot) startLeaderboardSchedule(sender common.ChannelSender) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(b.config.LeaderboardPostInterval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := b.leaderboard.Post(ctx, sender, b.config.AnnounceChannelID); err != nil {
				log.WithError(err).Error("Scheduled leaderboard post failed")
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, err
	}

	scheduler.Start()
	log.WithField("interval", b.config.LeaderboardPostInterval).Info("Scheduled leaderboard post")
	return scheduler, nil
}
