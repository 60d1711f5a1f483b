package main

import (
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/huddle/cliparse"
	"github.com/danielhkuo/huddle/db"
	"github.com/danielhkuo/huddle/logger"
	"github.com/danielhkuo/huddle/middleware"
	"github.com/danielhkuo/huddle/router"
	"github.com/danielhkuo/huddle/scheduler"
)

func main() {
	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Log.WithError(err).Warn("failed to load .env file")
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		logger.Log.WithError(err).Fatal("Error parsing flags")
	}
	logger.Init(cfg)

	// Connect to the database
	dbConn, err := db.Open(cfg)
	if err != nil {
		logger.Log.WithError(err).Fatal("database connection failed")
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(dbConn); err != nil {
		logger.Log.WithError(err).Fatal("schema creation failed")
	}
	logger.Log.WithField("type", cfg.DatabaseType).Info("Database schema ready")

	// Close expired polls, forms and surveys in the background
	sweeper := scheduler.NewDeadlineSweeper(dbConn, cfg.CloseSweepSpec)
	if err := sweeper.Start(); err != nil {
		logger.Log.WithError(err).Fatal("scheduler start failed")
	}
	defer sweeper.Stop()

	// Create router
	mux := router.NewRouter(dbConn, cfg)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
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
	logger.Log.WithFields(logrus.Fields{
		"port":        cfg.Port,
		"environment": cfg.Environment,
	}).Info("Listening")
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Log.WithError(err).Error("Server closed")
	} else {
		logger.Log.Info("Server closed")
	}
}
