package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"

	"github.com/yourusername/exam-api/internal/config"
)

// Отдельный раннер миграций: применять схему без запуска API-сервера
// удобно в CI и при ручном восстановлении после неудачной миграции.
func main() {
	var (
		down  = flag.Bool("down", false, "откатить одну миграцию вместо применения всех")
		force = flag.Int("force", -1, "принудительно выставить версию (сброс dirty-состояния)")
	)
	flag.Parse()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sql.Open("postgres", cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatal(err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		log.Fatal(err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://migrations",
		"postgres",
		driver,
	)
	if err != nil {
		log.Fatal(err)
	}

	switch {
	case *force >= 0:
		fmt.Printf("Принудительно выставляем версию %d...\n", *force)
		if err := m.Force(*force); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		fmt.Println("Готово. Dirty-состояние сброшено.")
	case *down:
		fmt.Println("Откатываем одну миграцию...")
		if err := m.Steps(-1); err != nil {
			log.Fatalf("Failed to roll back: %v", err)
		}
		fmt.Println("Откат выполнен.")
	default:
		fmt.Println("Применяем миграции...")
		if err := m.Up(); err != nil {
			if err == migrate.ErrNoChange {
				fmt.Println("Изменений нет, база данных актуальна.")
				return
			}
			log.Fatalf("Failed to apply migrations: %v", err)
		}
		fmt.Println("Миграции применены.")
	}
}
