// Worker consumes the change topic from Kafka and keeps per-org metric
// snapshots current. Requires kafka.brokers in the configuration.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"

	"opsboard/internal/config"
	"opsboard/internal/db"
	"opsboard/internal/events"
	"opsboard/internal/logging"
	"opsboard/internal/repository"
	"opsboard/internal/services"
)

// debounceInterval batches bursts of changes into one recompute per org.
const debounceInterval = 5 * time.Second

func main() {
	logger := logging.NewLogger()

	cfg, err := config.LoadConfig("")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal("worker: kafka.brokers is required")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("worker shutting down")
		cancel()
	}()

	pool, err := db.Connect(ctx, cfg.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer pool.Close()

	store := repository.NewPostgresStore(pool)
	snapshots := services.NewSnapshotService(store)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Kafka.Brokers,
		Topic:          cfg.Kafka.Topic,
		GroupID:        cfg.Kafka.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	logger.Info("worker consuming changes",
		"topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)

	var (
		mu    sync.Mutex
		dirty = make(map[string]struct{})
	)

	// Recompute dirty orgs on a fixed cadence instead of per event.
	go func() {
		ticker := time.NewTicker(debounceInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				mu.Lock()
				orgs := make([]string, 0, len(dirty))
				for org := range dirty {
					orgs = append(orgs, org)
				}
				dirty = make(map[string]struct{})
				mu.Unlock()

				for _, org := range orgs {
					if _, err := snapshots.Recompute(ctx, org); err != nil {
						logger.Error("snapshot recompute failed", "org_id", org, "error", err)
						continue
					}
					logger.Debug("snapshot recomputed", "org_id", org)
				}
			}
		}
	}()

	gate := events.NewVersionGate()
	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("worker stopped")
				return
			}
			logger.Error("kafka read error", "error", err)
			continue
		}

		change, err := events.Decode(msg.Value)
		if err != nil {
			logger.Warn("discarding malformed change message", "error", err)
			continue
		}
		if !gate.Admit(change) {
			continue
		}

		mu.Lock()
		dirty[change.OrgID] = struct{}{}
		mu.Unlock()
	}
}
