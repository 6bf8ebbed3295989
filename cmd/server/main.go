package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/qrypta/vaultcore/internal/config"
	"github.com/qrypta/vaultcore/internal/entropy"
	"github.com/qrypta/vaultcore/internal/logger"
	"github.com/qrypta/vaultcore/internal/service"
	"github.com/qrypta/vaultcore/internal/store"
	"github.com/qrypta/vaultcore/internal/workers"
	"github.com/qrypta/vaultcore/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("vaultcore-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	storages, db, err := store.NewStorages(ctx, cfg.Storage, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer db.Close()

	aggregator := entropy.NewAggregator(cfg.Entropy, log)

	// Prove the entropy path before accepting work: a core that cannot
	// source randomness must not start.
	if _, err := aggregator.Generate(ctx, 32); err != nil {
		log.Fatal().Err(err).Msg("entropy self-check failed")
	}

	services := service.NewServices(storages, aggregator, cfg, log)

	// First signed entry of the trail; it also proves the signer path
	// (entropy, keygen, persistence) end to end before workers start.
	if _, err := services.AuditTrail.LogEvent(ctx, "system", models.ActionCoreStart, "vaultcore", buildVersion); err != nil {
		log.Fatal().Err(err).Msg("error recording startup audit event")
	}

	workers.NewWorkers(ctx, storages, cfg, log).Run()

	log.Info().Msg("vault core started")
	<-ctx.Done()
	log.Info().Msg("vault core shutting down")
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
