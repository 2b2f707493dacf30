// Exports every participant's quest progress as CSV, one row per participant
// and quest, for the organisers' end-of-hunt tally.
//
// Usage: go run scripts/export_progress.go -out progress.csv

package main

import (
	"context"
	"encoding/csv"
	"flag"
	"io"
	"log"
	"os"
	"strconv"
	"time"
	"treasure_hunt_backend/internal/catalog"
	"treasure_hunt_backend/internal/config"
	"treasure_hunt_backend/internal/repository"
	"treasure_hunt_backend/internal/service"
	"treasure_hunt_backend/pkg/database"
	"treasure_hunt_backend/pkg/logger"
	"treasure_hunt_backend/pkg/supabase"
)

func main() {
	out := flag.String("out", "", "output file, stdout when empty")
	flag.Parse()

	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	hunt, err := catalog.Load(cfg.Tracker.CatalogPath)
	if err != nil {
		log.Fatalf("Failed to load catalog: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer closeStore()

	participants, err := store.ListParticipants(ctx)
	if err != nil {
		log.Fatalf("Failed to fetch participants: %v", err)
	}

	var w io.Writer = os.Stdout
	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *out, err)
		}
		defer f.Close()
		w = f
	}

	progress := service.NewProgressService(hunt)
	cw := csv.NewWriter(w)
	cw.Write([]string{"participant_id", "name", "quest_id", "quest", "completion", "locked", "completed_tasks"})
	for i := range participants {
		view := progress.ParticipantProgress(&participants[i])
		for _, q := range view.Quests {
			quest, _ := hunt.Quest(q.QuestID)
			done := 0
			for _, task := range quest.Tasks {
				if participants[i].HasSubmission(q.QuestID, task.ID) {
					done++
				}
			}
			cw.Write([]string{
				view.ID.String(),
				view.Name,
				q.QuestID,
				q.Name,
				strconv.Itoa(q.Completion),
				strconv.FormatBool(q.Locked),
				strconv.Itoa(done),
			})
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		log.Fatalf("Failed to write csv: %v", err)
	}

	log.Printf("Exported %d participants", len(participants))
}

func openStore(ctx context.Context, cfg *config.Config) (repository.ParticipantStore, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		pool, err := database.NewPool(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewPostgresStore(pool), pool.Close, nil
	case config.StoreDriverMySQL:
		db, err := database.InitDB(&cfg.Database, false)
		if err != nil {
			return nil, nil, err
		}
		return repository.NewMySQLStore(db), func() {
			if sqlDB, err := db.DB(); err == nil {
				sqlDB.Close()
			}
		}, nil
	default:
		client := supabase.NewClient(cfg.Backend.URL, cfg.Backend.APIKey, cfg.Backend.Timeout)
		return repository.NewPostgRESTStore(client), func() {}, nil
	}
}
