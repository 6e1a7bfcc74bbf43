package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/danielhkuo/curia/cliparse"
	"github.com/danielhkuo/curia/curation"
	"github.com/danielhkuo/curia/db"
	"github.com/danielhkuo/curia/jobs"
	"github.com/danielhkuo/curia/middleware"
	"github.com/danielhkuo/curia/router"
)

func main() {
	// Load .env if present; real env always wins
	godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	dbConn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready")

	// Wire the curation engine
	engine := curation.NewEngine(dbConn, cfg)

	// Background maintenance (score rebuild, finalize sweep)
	scheduler := jobs.NewScheduler(engine)
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	// Create router
	mux := router.NewRouter(engine, cfg)

	// Create server with CORS applied at the top level
	server := http.Server{
		Handler: middleware.CORS(mux, cfg.AllowedOrigins),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
