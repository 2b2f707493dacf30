// @title Treasure Hunt Tracker API
// @version 1.0
// @description Participant registration, quest progress and task submissions for a treasure hunt.

// @contact.name API Support

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8080
// @BasePath /api

package main

import (
	"flag"
	"log"
	"treasure_hunt_backend/internal/app"
	"treasure_hunt_backend/internal/config"
	"treasure_hunt_backend/pkg/database"
	"treasure_hunt_backend/pkg/logger"
)

func main() {
	migrateOnly := flag.Bool("migrate-only", false, "apply the postgres migrations and exit")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *migrateOnly {
		logger.InitLogger(cfg)
		defer logger.Log.Sync()

		if cfg.Store.Driver != config.StoreDriverPostgres {
			log.Fatalf("-migrate-only needs store driver %q, got %q", config.StoreDriverPostgres, cfg.Store.Driver)
		}
		if err := database.RunMigrations(cfg.Postgres.URL); err != nil {
			log.Fatalf("Failed to migrate: %v", err)
		}
		log.Println("Migrations applied")
		return
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
