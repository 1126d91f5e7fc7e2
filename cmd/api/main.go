// path: cmd/api/main.go
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/techappsUT/socialqueue-ucb/internal/config"
)

// App wires the HTTP server to its graceful shutdown lifecycle.
type App struct {
	Container *Container
	Server    *http.Server
}

func main() {
	log.Println("starting socialqueue-ucb API server")

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	app, err := NewApp()
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}
	app.Start()
}

// NewApp loads configuration, opens both database handles the container
// needs (raw *sql.DB for internal/store, *gorm.DB for internal/operator),
// and builds the HTTP server.
func NewApp() (*App, error) {
	cfg := config.Load()
	logConfiguration(cfg)

	sqlDB, err := setupDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("database setup failed: %w", err)
	}

	gormDB, err := setupGormDatabase(cfg)
	if err != nil {
		return nil, fmt.Errorf("gorm database setup failed: %w", err)
	}

	container, err := NewContainer(cfg, sqlDB, gormDB)
	if err != nil {
		return nil, fmt.Errorf("container initialization failed: %w", err)
	}

	router := setupRouter(container)

	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &App{Container: container, Server: server}, nil
}

func dsn(cfg *config.Config) string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User,
		cfg.Database.Password, cfg.Database.DBName, cfg.Database.SSLMode,
	)
}

// setupDatabase opens the raw *sql.DB the internal/store repositories run
// hand-written SQL against.
func setupDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	log.Println("database connection verified")
	return db, nil
}

// setupGormDatabase opens the gorm handle internal/operator runs against,
// over the same Postgres instance.
func setupGormDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn(cfg)), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open gorm database: %w", err)
	}
	return db, nil
}

// Start runs the HTTP server until SIGINT/SIGTERM, then drains in-flight
// requests within the shutdown grace period (spec §5 default 30s).
func (app *App) Start() {
	go func() {
		log.Printf("server listening on %s", app.Server.Addr)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Server.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("server gracefully stopped")
}

func logConfiguration(cfg *config.Config) {
	log.Printf("server: %s:%s", cfg.Server.Host, cfg.Server.Port)
	log.Printf("database: %s@%s:%s/%s", cfg.Database.User, cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	log.Printf("queue: %s", cfg.Queue.Addr)
}
