package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"decryptzone/bot"
	"decryptzone/challenge"
	"decryptzone/config"
	"decryptzone/database"
	"decryptzone/events"
	"decryptzone/httpapi"
	"decryptzone/identity"
	"decryptzone/render"
	"decryptzone/repository"
	"decryptzone/repository/memory"
	"decryptzone/service"

	log "github.com/sirupsen/logrus"
)

const leaderboardTitle = "DECRYPT LEADERBOARD"

// Run initializes and starts the application
func Run(ctx context.Context) error {
	cfg := config.Get()
	setupLogging(cfg)

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"storage":     cfg.StorageDriver,
	}).Info("Starting decryptzone...")

	eventBus := events.NewBus()

	uowFactory, closeStore, err := openStore(ctx, cfg, eventBus)
	if err != nil {
		return err
	}
	defer closeStore()

	catalog := challenge.NewCatalog(cfg.ChallengePoints)

	var opts []service.Option
	if cfg.EnforceChallengePoints {
		opts = append(opts, service.WithPointsPolicy(catalog))
		log.Info("Challenge points are enforced from the catalog")
	}
	ledger := service.NewLedgerService(uowFactory, opts...)

	verifier, err := identity.NewVerifier(identity.VerifierConfig{
		Secret:       cfg.AuthJWTSecret,
		PublicKeyPEM: cfg.AuthJWTPublicKey,
		Issuer:       cfg.AuthJWTIssuer,
		Audience:     cfg.AuthJWTAudience,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	renderer := render.NewLeaderboardRenderer(leaderboardTitle)

	server := httpapi.NewServer(httpapi.Config{AllowedOrigins: cfg.AllowedOrigins}, ledger, catalog, renderer, verifier)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Listen(cfg.HTTPAddr)
	}()

	var discordBot *bot.Bot
	if cfg.DiscordEnabled() {
		log.Info("Initializing Discord bot...")
		discordBot, err = bot.New(bot.Config{
			Token:                   cfg.DiscordToken,
			GuildID:                 cfg.DiscordGuildID,
			AnnounceChannelID:       cfg.DiscordAnnounceChannelID,
			LeaderboardPostInterval: cfg.LeaderboardPostInterval,
		}, ledger, catalog, renderer, eventBus)
		if err != nil {
			shutdownServer(server)
			return fmt.Errorf("failed to initialize Discord bot: %w", err)
		}
		log.Info("Discord bot initialized successfully")
	} else {
		log.Info("DISCORD_TOKEN not set, Discord bot disabled")
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("Shutting down...")
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("HTTP server stopped: %w", err)
		}
	}

	if discordBot != nil {
		if err := discordBot.Close(); err != nil {
			log.Errorf("Error closing Discord bot: %v", err)
		}
	}
	shutdownServer(server)

	log.Info("Shutdown completed")
	return runErr
}

func shutdownServer(server *httpapi.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Errorf("Error shutting down HTTP server: %v", err)
	}
}

// openStore selects the storage backend and returns its unit-of-work factory
func openStore(ctx context.Context, cfg *config.Config, eventBus *events.Bus) (service.UnitOfWorkFactory, func(), error) {
	switch cfg.StorageDriver {
	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		return memory.NewStore(eventBus), func() {}, nil

	case config.StorageDriverPostgres:
		databaseURL := cfg.GetDatabaseURL()

		log.Info("Applying database migrations...")
		if err := database.RunMigrationsWithURL(databaseURL); err != nil {
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}

		log.Info("Connecting to database...")
		db, err := database.NewConnection(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		log.Info("Database connection established successfully")

		return repository.NewUnitOfWorkFactory(db, eventBus), db.Close, nil

	default:
		return nil, nil, errors.New("unknown storage driver " + cfg.StorageDriver)
	}
}
