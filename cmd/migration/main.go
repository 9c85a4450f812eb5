package main

import (
	"context"
	"flag"
	"os"

	"gitlab.com/dirk.krummacker/contacts-api/internal/config"
	"gitlab.com/dirk.krummacker/contacts-api/internal/logger"
	"gitlab.com/dirk.krummacker/contacts-api/internal/storage"
)

// Usage example on the command line:
// > DB_DRIVER=sqlite DB_PATH=contacts.db go run main.go
// > DB_DRIVER=mysql DBHOST=localhost:3306 DBUSER=dirk DBPWD=secret go run main.go -file=../../scripts/database.sql
func main() {
	filePtr := flag.String("file", "", "an sql file to execute instead of the bundled schema")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.New(config.LogConfig{}).WithError(err).Fatal("could not load configuration")
	}
	log := logger.New(cfg.Log)

	ctx := context.Background()
	db, err := storage.Open(ctx, cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("could not connect to database")
	}
	defer db.Close()

	if *filePtr == "" {
		if err := storage.Migrate(ctx, db); err != nil {
			log.WithError(err).Fatal("could not apply bundled schema")
		}
		log.WithField("driver", cfg.Database.Driver).Info("bundled schema applied")
		return
	}

	readFile, err := os.Open(*filePtr) // nosemgrep
	if err != nil {
		log.WithError(err).Fatal("could not open sql file")
	}
	defer readFile.Close()
	if err := storage.ExecStatements(ctx, db, readFile); err != nil {
		log.WithError(err).Fatal("could not execute sql file")
	}
	log.WithField("file", *filePtr).Info("sql file executed")
}
