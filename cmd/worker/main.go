// path: cmd/worker/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/techappsUT/socialqueue-ucb/internal/application/common"
	"github.com/techappsUT/socialqueue-ucb/internal/config"
)

// WorkerApp holds every periodic and queue-consuming JobProcessor.
type WorkerApp struct {
	Logger     common.Logger
	Processors []JobProcessor
}

// JobProcessor is implemented by every queue consumer and tick runner in
// this package.
type JobProcessor interface {
	Name() string
	Run(ctx context.Context) error
	Stop(ctx context.Context) error
}

func main() {
	log.Println("starting socialqueue-ucb worker")

	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file found, using environment variables")
	}

	app, err := NewWorkerApp()
	if err != nil {
		log.Fatalf("failed to initialize worker: %v", err)
	}
	app.Start()
}

// NewWorkerApp wires the worker container and assembles its processor set:
// one QueueProcessor per jobqueue queue, plus the two Scheduler tick
// runners split by cadence (spec §4.K).
func NewWorkerApp() (*WorkerApp, error) {
	cfg := config.Load()

	sqlDB, err := setupDatabase(cfg)
	if err != nil {
		return nil, err
	}

	container, err := NewWorkerContainer(cfg, sqlDB)
	if err != nil {
		return nil, err
	}

	processors := []JobProcessor{
		NewGenerateProcessor(container.Generator, container.Queue, container.Logger),
		NewPublishProcessor(container.Publisher, container.Queue, container.Logger),
		NewTokenRefreshProcessor(container.TokenLifecycle, container.Queue, container.Logger),
		NewSweepProcessor(container.Scheduler, container.Logger),
		NewPeriodicProcessor(container.Scheduler, container.Logger),
	}

	return &WorkerApp{Logger: container.Logger, Processors: processors}, nil
}

// Start runs every processor until SIGINT/SIGTERM, then stops each within a
// 30s grace period (matching cmd/api's shutdown timeout).
func (app *WorkerApp) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for _, p := range app.Processors {
		go func(p JobProcessor) {
			log.Printf("starting processor: %s", p.Name())
			if err := p.Run(ctx); err != nil {
				log.Printf("processor %s stopped with error: %v", p.Name(), err)
			}
		}(p)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down worker")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	for _, p := range app.Processors {
		if err := p.Stop(shutdownCtx); err != nil {
			log.Printf("failed to stop processor %s: %v", p.Name(), err)
		}
	}
	log.Println("worker stopped gracefully")
}
