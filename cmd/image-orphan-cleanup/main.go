package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/imagestore"
	"github.com/csentein/P6-Sentein-Clement/internal/adapter/postgres"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/jonboulle/clockwork"
)

func main() {
	var (
		databaseURL = flag.String("database", os.Getenv("DATABASE_URL"), "Postgres URL (or set DATABASE_URL env)")
		imageDir    = flag.String("images", envOr("IMAGE_DIR", "images"), "Image directory (or set IMAGE_DIR env)")
		minAge      = flag.Duration("min-age", time.Hour, "Only remove files older than this")
		dryRun      = flag.Bool("dry-run", false, "Dry run mode (don't delete files)")
		verbose     = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *databaseURL == "" {
		log.Fatal("Database URL required (--database or DATABASE_URL env)")
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(handler))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.Connect(ctx, *databaseURL, nil)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	disk, err := imagestore.NewDisk(*imageDir, clockwork.NewRealClock())
	if err != nil {
		log.Fatalf("Failed to open image directory: %v", err)
	}

	if err := cleanup(ctx, postgres.NewItemRepo(pool), disk, *minAge, *dryRun); err != nil {
		log.Fatalf("Cleanup failed: %v", err)
	}
	slog.Info("Cleanup complete")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// cleanup removes image files left behind by uploads whose item was never
// stored or whose removal failed after the item was deleted.
func cleanup(ctx context.Context, items domain.ItemRepository, disk *imagestore.Disk, minAge time.Duration, dryRun bool) error {
	start := time.Now()
	slog.Info("Starting cleanup", "dir", disk.Dir(), "min_age", minAge, "dry_run", dryRun)

	all, err := items.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list items: %w", err)
	}

	referenced := make(map[string]struct{}, len(all))
	for _, item := range all {
		if name := domain.ImageFileName(item.ImageURL); name != "" {
			referenced[name] = struct{}{}
		}
	}

	orphans, err := disk.Orphans(referenced, minAge)
	if err != nil {
		return err
	}

	var removed int
	for _, name := range orphans {
		if dryRun {
			slog.Info("Would remove orphan", "file", name)
			continue
		}
		if err := disk.Remove(ctx, name); err != nil {
			slog.Warn("Failed to remove orphan", "file", name, "error", err)
			continue
		}
		slog.Debug("Removed orphan", "file", name)
		removed++
	}

	slog.Info("Cleanup summary",
		"items", len(all),
		"referenced", len(referenced),
		"orphans", len(orphans),
		"removed", removed,
		"duration", time.Since(start))
	return nil
}
