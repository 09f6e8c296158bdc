package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/finviz/internal/budget"
	budgetStore "github.com/MrJamesThe3rd/finviz/internal/budget/store"
	"github.com/MrJamesThe3rd/finviz/internal/config"
	"github.com/MrJamesThe3rd/finviz/internal/database"
	"github.com/MrJamesThe3rd/finviz/internal/export"
	finvizHttp "github.com/MrJamesThe3rd/finviz/internal/http"
	budgetHandler "github.com/MrJamesThe3rd/finviz/internal/http/budget"
	exportHandler "github.com/MrJamesThe3rd/finviz/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/finviz/internal/http/importcsv"
	matchingHandler "github.com/MrJamesThe3rd/finviz/internal/http/matching"
	reportHandler "github.com/MrJamesThe3rd/finviz/internal/http/report"
	txHandler "github.com/MrJamesThe3rd/finviz/internal/http/transaction"
	"github.com/MrJamesThe3rd/finviz/internal/importer"
	"github.com/MrJamesThe3rd/finviz/internal/matching"
	matchingStore "github.com/MrJamesThe3rd/finviz/internal/matching/store"
	"github.com/MrJamesThe3rd/finviz/internal/report"
	"github.com/MrJamesThe3rd/finviz/internal/transaction"
	txStore "github.com/MrJamesThe3rd/finviz/internal/transaction/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	if cfg.DB.Migrate {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	var (
		transactionService = transaction.NewService(txStore.New(db))
		budgetService      = budget.NewService(budgetStore.New(db))
		matchingService    = matching.NewService(matchingStore.New(db))
		importService      = importer.NewService(matchingService)
		reportService      = report.NewService(transactionService, budgetService)
		exportService      = export.NewService(transactionService, budgetService)
	)

	router := finvizHttp.New(finvizHttp.Options{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		JWTSecret:      cfg.Auth.JWTSecret,
	}, finvizHttp.Handlers{
		Transactions: txHandler.NewHandler(transactionService, reportService),
		Budgets:      budgetHandler.NewHandler(budgetService),
		Reports:      reportHandler.NewHandler(reportService, cfg.Report.RecentLimit),
		Import:       importHandler.NewHandler(importService, transactionService),
		Categories:   matchingHandler.NewHandler(matchingService),
		Export:       exportHandler.NewHandler(exportService),
	})

	if cfg.Auth.JWTSecret == "" {
		slog.Warn("AUTH_JWT_SECRET is not set, API is unauthenticated")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	go func() {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shut down server", "error", err)
		}
	}()

	slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped")
}
