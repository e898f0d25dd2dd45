package main

import (
	"fmt"

	"nexus-hq/arbiter/pkg/audit"
	auditstorage "nexus-hq/arbiter/pkg/audit/storage"
	"nexus-hq/arbiter/pkg/config"
	"nexus-hq/arbiter/pkg/review"
)

// buildAuditStorage constructs the configured audit backend.
func buildAuditStorage(cfg *config.Config) (audit.Storage, error) {
	switch cfg.Audit.Backend {
	case "sqlite":
		sqliteConfig := auditstorage.DefaultSQLiteConfig()
		sqliteConfig.Path = cfg.Audit.Path
		return auditstorage.NewSQLiteStorage(sqliteConfig)
	case "memory":
		return auditstorage.NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unsupported audit backend: %s", cfg.Audit.Backend)
	}
}

// buildReviewQueue constructs the configured review queue backend.
func buildReviewQueue(cfg *config.Config) (review.Queue, error) {
	switch cfg.Review.Backend {
	case "sqlite":
		return review.NewSQLiteQueue(cfg.Review.Path)
	case "memory":
		return review.NewMemoryQueue(), nil
	default:
		return nil, fmt.Errorf("unsupported review backend: %s", cfg.Review.Backend)
	}
}
