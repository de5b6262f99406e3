package main

import (
	"fmt"
	"os"

	"github.com/veeduria/obras-service/internal/auth"
	"github.com/veeduria/obras-service/internal/config"
	"github.com/veeduria/obras-service/internal/db"
	"github.com/veeduria/obras-service/internal/excel"
	httphandler "github.com/veeduria/obras-service/internal/http"
	"github.com/veeduria/obras-service/internal/http/middleware"
	"github.com/veeduria/obras-service/internal/logger"
	"github.com/veeduria/obras-service/internal/pdf"
	"github.com/veeduria/obras-service/internal/repository"
	"github.com/veeduria/obras-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment)

	database, err := db.New(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	contractRepo := repository.NewContractRepository(database)
	additionRepo := repository.NewAdditionRepository(database)
	modificationRepo := repository.NewModificationRepository(database)
	progressRepo := repository.NewProgressRepository(database)

	gate := auth.NewGate(contractRepo)

	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}
	excelGenerator := excel.NewGenerator()

	additionService := service.NewAdditionService(additionRepo, gate)
	modificationService := service.NewModificationService(modificationRepo, gate)
	progressService := service.NewProgressService(progressRepo, gate)
	statementService := service.NewStatementService(
		progressRepo,
		additionRepo,
		modificationRepo,
		gate,
		excelGenerator,
		pdfGenerator,
	)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(additionService, modificationService, progressService, statementService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting obras service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
