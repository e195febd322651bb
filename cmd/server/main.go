package main // Entry point package

import (
	stdlog "log"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/ticket-counter/internal/config"
	"github.com/iliyamo/ticket-counter/internal/handler"
	"github.com/iliyamo/ticket-counter/internal/jira"
	"github.com/iliyamo/ticket-counter/internal/logger"
	"github.com/iliyamo/ticket-counter/internal/repository"
	"github.com/iliyamo/ticket-counter/internal/router"
	"github.com/iliyamo/ticket-counter/internal/service"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.Env)
	if err != nil {
		stdlog.Fatal(err)
	}
	defer log.Sync()

	e := echo.New()
	e.HideBanner = true
	// Health first: the probe must be able to answer before storage is up.
	router.RegisterHealth(e)

	workspaces := repository.NewWorkspaces(cfg.DataDir)
	records := repository.NewRecordStore(workspaces)

	// Session backend: file by default, redis when configured and reachable.
	var sessions repository.SessionStore = repository.NewFileSessionStore(filepath.Join(cfg.DataDir, "sessions.json"))
	if cfg.SessionBackend == "redis" {
		if rdb := config.NewRedisClient(); rdb != nil {
			sessions = repository.NewRedisSessionStore(rdb)
			log.Info("using redis session backend")
		} else {
			log.Warn("redis unreachable, falling back to file session store")
		}
	}

	// One-shot legacy upgrade; failures are logged but never stop startup.
	if migrated, err := repository.NewMigrator(records, cfg.LegacyFile).Run(); err != nil {
		log.Warn("legacy migration failed", zap.Error(err))
	} else if migrated {
		log.Info("migrated legacy ticket data", zap.String("backup", cfg.LegacyFile+".backup"))
	}

	jiraConfig := jira.NewConfigStore(workspaces, cfg.JiraConfigFile)
	jiraClient := jira.NewClient(cfg.JiraTimeout)
	stats := service.NewStats(records, log)

	router.RegisterAPI(e, sessions,
		handler.NewAuthHandler(sessions),
		handler.NewTicketHandler(records, jiraConfig, jiraClient, log),
		handler.NewJiraHandler(jiraConfig, jiraClient, records, log),
		handler.NewStatsHandler(stats, log),
	)

	addr := ":" + cfg.Port
	log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
}
