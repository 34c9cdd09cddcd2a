package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // sterownik postgres

	"library-management-api/internal/config"
	"library-management-api/internal/postgres"
)

// tableStatus to wiersz raportu po migracji
type tableStatus struct {
	Name string `db:"table_name"`
	Rows int64  `db:"row_count"`
}

func main() {
	dryRun := flag.Bool("dry-run", false, "wypisz schemat bez wykonywania")
	flag.Parse()

	if *dryRun {
		fmt.Println(postgres.Schema)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Błąd konfiguracji: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("Brak DATABASE_URL - migracja wymaga bazy PostgreSQL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Nie można połączyć się z bazą: %v", err)
	}
	defer db.Close()

	if _, err := db.ExecContext(ctx, postgres.Schema); err != nil {
		log.Fatalf("Błąd migracji: %v", err)
	}
	log.Println("Schemat bazy zaktualizowany")

	// n_live_tup to szacunek statystyk PostgreSQL, wystarczający do raportu
	var tables []tableStatus
	err = db.SelectContext(ctx, &tables,
		`SELECT relname AS table_name, n_live_tup AS row_count
		 FROM pg_stat_user_tables
		 ORDER BY relname`)
	if err != nil {
		log.Fatalf("Błąd odczytu listy tabel: %v", err)
	}

	for _, t := range tables {
		fmt.Printf("%-14s ~%d\n", t.Name, t.Rows)
	}
}
