package main

import (
	"fmt"
	"os"

	"github.com/TDXM1001/zugou-rental/internal/auth"
	"github.com/TDXM1001/zugou-rental/internal/config"
	"github.com/TDXM1001/zugou-rental/internal/db"
	"github.com/TDXM1001/zugou-rental/internal/excel"
	httphandler "github.com/TDXM1001/zugou-rental/internal/http"
	"github.com/TDXM1001/zugou-rental/internal/http/middleware"
	"github.com/TDXM1001/zugou-rental/internal/logger"
	"github.com/TDXM1001/zugou-rental/internal/pdf"
	"github.com/TDXM1001/zugou-rental/internal/repository"
	"github.com/TDXM1001/zugou-rental/internal/service"
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

	store := repository.NewStore(database)
	excelGenerator := excel.NewGenerator()
	pdfGenerator, err := pdf.NewGenerator()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init pdf generator")
	}

	contractService := service.NewContractService(store, excelGenerator, pdfGenerator, cfg)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)
	handler := httphandler.NewHandler(contractService, log)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, log, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	log.Info().Str("addr", addr).Msg("starting rental service")

	if err := router.Run(addr); err != nil {
		log.Error().Err(err).Msg("server stopped")
		os.Exit(1)
	}
}
