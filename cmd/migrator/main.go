package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Sales and inventory keep separate migration sets. When both live in one
// database, pass a distinct -migrations-table for each.
func main() {
	var storagePath, migrationsPath, migrationsTable string
	var down bool

	flag.StringVar(&storagePath, "storage-path", "", "postgres url without scheme: user:pass@host:port/db?sslmode=disable")
	flag.StringVar(&migrationsPath, "migrations-path", "", "path to migrations, e.g. ./migrations/sales")
	flag.StringVar(&migrationsTable, "migrations-table", "", "name of the schema version table")
	flag.BoolVar(&down, "down", false, "roll every migration back")
	flag.Parse()

	if storagePath == "" {
		storagePath = os.Getenv("STORAGE_PATH")
		if storagePath == "" {
			panic("empty storage path")
		}
	}
	if migrationsPath == "" {
		migrationsPath = os.Getenv("MIGRATIONS_PATH")
		if migrationsPath == "" {
			panic("empty migrations path")
		}
	}

	dbURL := fmt.Sprintf("postgres://%s", storagePath)
	if migrationsTable != "" {
		dbURL = withQuery(dbURL, "x-migrations-table", migrationsTable)
	}

	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		panic(err)
	}

	if down {
		err = m.Down()
	} else {
		err = m.Up()
	}

	if err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			fmt.Println("no migrations to apply")
			return
		}
		panic(err)
	}

	fmt.Println("migrations applied")
}

func withQuery(rawURL, key, value string) string {
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}

	return rawURL + sep + key + "=" + value
}
