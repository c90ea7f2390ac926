package app

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"unitconv/internal/config"
	"unitconv/internal/history"
	"unitconv/internal/httpx"
	"unitconv/internal/integrations/llm"
	slackbot "unitconv/internal/integrations/slack"
	"unitconv/internal/service"
	"unitconv/internal/storage/sqlite"
	"unitconv/internal/sweep"
	"unitconv/internal/web"

	"github.com/slack-go/slack"
)

func Main() {
	cfg := config.LoadConfig()
	appliedHTTPTimeout := httpx.ConfigureExternalHTTPClient(cfg.ExternalHTTPTimeoutSeconds)
	log.Printf(
		"Config loaded. Listen=%s Precision=%d SessionIdle=%s SweepSchedule=%s Timezone=%s Slack=%t LLM=%t LLMModel=%s ExternalHTTPTimeout=%s",
		cfg.ListenAddr,
		cfg.Precision,
		cfg.SessionIdle(),
		cfg.SessionSweepSchedule,
		cfg.Timezone,
		cfg.SlackConfigured(),
		cfg.LLMEnabled,
		cfg.LLMModel,
		appliedHTTPTimeout,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store history.Store
	if cfg.DBPath != "" {
		db, err := sqlite.InitDB(cfg.DBPath)
		if err != nil {
			log.Fatalf("Failed to init database: %v", err)
		}
		defer db.Close()
		log.Printf("Database initialized at %s", cfg.DBPath)
		store = sqlite.NewStore(db)
	} else {
		log.Println("No db_path set, keeping history in memory")
		store = history.NewMemoryStore()
	}

	var opts []service.Option
	if cfg.LLMEnabled {
		opts = append(opts, service.WithQueryParser(llm.NewParser(cfg)))
		log.Printf("Free-text fallback enabled (model=%s)", cfg.LLMModel)
	}
	conv := service.New(store, cfg.Precision, opts...)

	sweep.Start(ctx, cfg, store)

	if cfg.SlackConfigured() {
		api := slack.New(
			cfg.SlackBotToken,
			slack.OptionAppLevelToken(cfg.SlackAppToken),
		)
		go func() {
			log.Println("Starting Slack bot...")
			if err := slackbot.StartSlackBot(ctx, conv, api); err != nil && ctx.Err() == nil {
				log.Printf("Slack bot error: %v", err)
			}
		}()
	}

	log.Printf("Starting Unit Converter on %s...", cfg.ListenAddr)
	if err := web.NewServer(conv).ListenAndServe(ctx, cfg.ListenAddr); err != nil {
		log.Fatalf("HTTP server error: %v", err)
	}
	log.Println("Unit Converter stopped")
}
