package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/service"
	"gitlab.com/dirk.krummacker/contacts-api/internal/storage"
)

// Usage example on the command line:
// > PORT=5000 DB_DRIVER=sqlite DB_PATH=contacts.db go run main.go
// > PORT=8080 DB_DRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=secret GIN_LOGGING=OFF go run main.go
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New(config.LogConfig{}).WithError(err).Fatal("could not load configuration")
	}
	log := logger.New(cfg.Log)
	gin.SetMode(cfg.Server.Mode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()
	log.WithField("driver", cfg.Database.Driver).Info("database connected")

	if cfg.Database.Migrate {
		if err := storage.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("could not apply database schema")
		}
		log.Info("database schema applied")
	}

	handler := service.NewHandler(storage.New(db), log)
	router, err := service.SetupHttpRouter(handler, cfg.Server)
	if err != nil {
		log.WithError(err).Fatal("could not set up router")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", server.Addr).Info("server starting")
		serverErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	case <-ctx.Done():
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Warn("could not shut down server gracefully")
		}
	}
	log.Info("server stopped")
}
