package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/rustweek/royale/internal/attribution"
	"github.com/rustweek/royale/internal/common/scheduler"
	"github.com/rustweek/royale/internal/handlers/discord"
	"github.com/rustweek/royale/internal/handlers/feed"
	"github.com/rustweek/royale/internal/models"
	eventlogRepo "github.com/rustweek/royale/internal/repositories/eventlog"
	groupsRepo "github.com/rustweek/royale/internal/repositories/groups"
	historyRepo "github.com/rustweek/royale/internal/repositories/history"
	ledgerRepo "github.com/rustweek/royale/internal/repositories/ledger"
	"github.com/rustweek/royale/internal/rules"
	ledgerService "github.com/rustweek/royale/internal/services/ledger"
	"github.com/rustweek/royale/internal/services/messaging"
	"github.com/rustweek/royale/internal/services/scoring"
	"github.com/rustweek/royale/internal/services/tournament"
)

func main() {
	// .env is optional; real deployments use the environment directly
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       0,
	})

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	// Initialize repositories
	ledgerStore, err := ledgerRepo.NewRedis(&ledgerRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create ledger repository: %v", err)
	}

	historyStore, err := historyRepo.NewRedis(&historyRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create history repository: %v", err)
	}

	eventLogStore, err := eventlogRepo.NewRedis(&eventlogRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create event log repository: %v", err)
	}

	groupsStore, err := groupsRepo.NewRedis(&groupsRepo.Config{
		RedisClient: redisClient,
	})
	if err != nil {
		log.Fatalf("Failed to create groups repository: %v", err)
	}

	// Initialize the rule table; a partial override set falls back to
	// the built-in defaults wholesale
	ruleTable := rules.Default()
	if overrides := ruleOverridesFromEnv(); len(overrides) > 0 {
		var replaced bool
		ruleTable, replaced = rules.New(overrides)
		if replaced {
			log.Printf("WARN: rule overrides incomplete, using default table")
		}
	}

	// Initialize the ledger
	ledgerSvc, err := ledgerService.New(&ledgerService.Config{
		Repo: ledgerStore,
	})
	if err != nil {
		log.Fatalf("Failed to create ledger service: %v", err)
	}

	// Initialize the attribution engine
	engine, err := attribution.New(&attribution.Config{
		Roster:              ledgerSvc,
		MinLongShotDistance: getEnvFloat("MIN_LONG_SHOT_DISTANCE", 0),
	})
	if err != nil {
		log.Fatalf("Failed to create attribution engine: %v", err)
	}

	messagingSvc, err := messaging.NewService(&messaging.ServiceConfig{})
	if err != nil {
		log.Fatalf("Failed to create messaging service: %v", err)
	}

	// Initialize the shared Discord session; the bot and the notifier
	// use the same connection
	discordToken := getEnv("DISCORD_TOKEN", "")
	if discordToken == "" {
		log.Fatal("DISCORD_TOKEN environment variable is required")
	}

	session, err := discordgo.New("Bot " + discordToken)
	if err != nil {
		log.Fatalf("Failed to create Discord session: %v", err)
	}

	announceChannelID := getEnv("ANNOUNCE_CHANNEL_ID", "")
	if announceChannelID == "" {
		log.Fatal("ANNOUNCE_CHANNEL_ID environment variable is required")
	}

	notifier, err := discord.NewNotifier(&discord.NotifierConfig{
		Session:           session,
		AnnounceChannelID: announceChannelID,
	})
	if err != nil {
		log.Fatalf("Failed to create notifier: %v", err)
	}

	// Initialize the scoring engine
	scoringSvc, err := scoring.NewService(&scoring.Config{
		Ledger:        ledgerSvc,
		Caps:          ledgerService.NewCapTracker(),
		Rules:         ruleTable,
		Attribution:   engine,
		Messaging:     messagingSvc,
		Notifier:      notifier,
		EventLog:      eventLogStore,
		NPCKillCap:    getEnvInt("NPC_KILL_CAP", 0),
		AnimalKillCap: getEnvInt("ANIMAL_KILL_CAP", 0),
	})
	if err != nil {
		log.Fatalf("Failed to create scoring service: %v", err)
	}

	sched, err := scheduler.New()
	if err != nil {
		log.Fatalf("Failed to create scheduler: %v", err)
	}

	// Initialize the tournament state machine
	tournamentSvc, err := tournament.New(&tournament.Config{
		Ledger:    ledgerSvc,
		Scoring:   scoringSvc,
		Messaging: messagingSvc,
		Notifier:  notifier,
		History:   historyStore,
		EventLog:  eventLogStore,
		Groups:    groupsStore,
		Scheduler: sched,
		Schedule: tournament.ScheduleConfig{
			Weekday:  time.Weekday(getEnvInt("START_WEEKDAY", int(time.Friday))),
			Hour:     getEnvInt("START_HOUR", 18),
			Minute:   getEnvInt("START_MINUTE", 0),
			Timezone: getEnv("TIMEZONE", ""),
		},
		Duration:   getEnvDuration("TOURNAMENT_DURATION", 2*time.Hour),
		JoinCutoff: getEnvDuration("JOIN_CUTOFF", 0),
	})
	if err != nil {
		log.Fatalf("Failed to create tournament service: %v", err)
	}

	// Restore the ledger and the state machine from the last run
	restored, err := ledgerSvc.RestoreSnapshot(context.Background())
	if err != nil {
		log.Printf("WARN: failed to restore ledger snapshot: %v", err)
	} else if restored.ParticipantCount > 0 {
		log.Printf("restored %d participants", restored.ParticipantCount)
	}

	if err := tournamentSvc.Resume(context.Background()); err != nil {
		log.Fatalf("Failed to resume tournament state: %v", err)
	}

	// Initialize Discord bot
	bot, err := discord.New(&discord.Config{
		Session:           session,
		ApplicationID:     getEnv("APPLICATION_ID", ""),
		GuildID:           getEnv("GUILD_ID", ""),
		TournamentService: tournamentSvc,
		Rules:             ruleTable,
	})
	if err != nil {
		log.Fatalf("Failed to create Discord bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start Discord bot: %v", err)
	}

	// Start the game event feed
	feedServer, err := feed.NewServer(&feed.Config{
		Scoring:   scoringSvc,
		AuthToken: requireEnv("FEED_TOKEN"),
	})
	if err != nil {
		log.Fatalf("Failed to create feed server: %v", err)
	}

	feedAddr := getEnv("FEED_ADDR", ":8787")
	httpServer := &http.Server{Addr: feedAddr, Handler: feedServer}
	go func() {
		log.Printf("feed listening on %s", feedAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Feed server failed: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error stopping feed server: %v", err)
	}

	if err := tournamentSvc.Stop(shutdownCtx); err != nil {
		log.Printf("Error stopping tournament timers: %v", err)
	}

	if err := sched.Stop(); err != nil {
		log.Printf("Error stopping scheduler: %v", err)
	}

	// One last save so a restart resumes with current scores
	if err := ledgerSvc.PersistSnapshot(shutdownCtx); err != nil {
		log.Printf("Error persisting ledger on shutdown: %v", err)
	}

	if err := bot.Stop(); err != nil {
		log.Printf("Error stopping bot: %v", err)
	}

	log.Println("Bot has been shut down")
}

// ruleOverridesFromEnv reads RULE_<CODE> overrides. All seven must be
// present for the override set to be used.
func ruleOverridesFromEnv() map[models.RuleCode]int {
	codes := []models.RuleCode{
		models.RuleCodeKill,
		models.RuleCodeDead,
		models.RuleCodeJoke,
		models.RuleCodeNPC,
		models.RuleCodeEnt,
		models.RuleCodeBruh,
		models.RuleCodeWhy,
	}

	overrides := make(map[models.RuleCode]int)
	for _, code := range codes {
		raw := os.Getenv("RULE_" + string(code))
		if raw == "" {
			continue
		}
		delta, err := strconv.Atoi(raw)
		if err != nil {
			log.Printf("WARN: ignoring unparsable RULE_%s=%q", code, raw)
			continue
		}
		overrides[code] = delta
	}

	return overrides
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// requireEnv exits when a required variable is missing
func requireEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("%s environment variable is required", key)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("WARN: ignoring unparsable %s=%q", key, raw)
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("WARN: ignoring unparsable %s=%q", key, raw)
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("WARN: ignoring unparsable %s=%q", key, raw)
		return defaultValue
	}
	return value
}
