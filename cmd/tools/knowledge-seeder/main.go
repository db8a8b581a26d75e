// cmd/tools/knowledge-seeder/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"scam-analyzer/internal/agents/knowledge"
	"scam-analyzer/internal/common/config"
	"scam-analyzer/internal/common/database"
	"scam-analyzer/internal/models"
)

// seedEntry is one line of the seed file. Confirmations defaults to 1; the
// stored confidence follows from the confirmation count, it is never set
// directly.
type seedEntry struct {
	IndicatorType models.IndicatorType     `json:"indicatorType"`
	Value         string                   `json:"value"`
	Category      models.IndicatorCategory `json:"category"`
	Confirmations int                      `json:"confirmations"`
}

func main() {
	seedPath := flag.String("file", "configs/seed-indicators.json", "Path to seed indicator file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fatal("config load failed: %v", err)
	}

	raw, err := os.ReadFile(*seedPath)
	if err != nil {
		fatal("read seed file: %v", err)
	}
	var entries []seedEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		fatal("parse seed file: %v", err)
	}

	ctx := context.Background()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fatal("postgres connection failed: %v", err)
	}
	defer pg.Close()
	if err := pg.Ping(ctx); err != nil {
		fatal("postgres ping failed: %v", err)
	}

	store := knowledge.NewPostgresStore(pg.DB, cfg.Knowledge.ConfidenceDecay)
	if err := store.EnsureSchema(ctx); err != nil {
		fatal("schema migration failed: %v", err)
	}

	seeded := 0
	for _, e := range entries {
		if e.IndicatorType == "" || e.Value == "" {
			fmt.Fprintf(os.Stderr, "skipping entry with missing type or value: %+v\n", e)
			continue
		}
		if e.Category == "" {
			e.Category = models.CategoryOther
		}
		if e.Confirmations < 1 {
			e.Confirmations = 1
		}
		var last *models.KnowledgeEntry
		for i := 0; i < e.Confirmations; i++ {
			last, err = store.Confirm(ctx, e.IndicatorType, knowledge.NormalizeValue(e.Value), e.Category)
			if err != nil {
				fatal("confirm %s %q: %v", e.IndicatorType, e.Value, err)
			}
		}
		fmt.Printf("seeded %s %q: confidence %.3f after %d confirmation(s)\n",
			last.IndicatorType, last.Value, last.Confidence, last.ConfirmationCount)
		seeded++
	}

	fmt.Printf("done: %d indicator(s) seeded\n", seeded)
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
