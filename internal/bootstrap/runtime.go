// Package bootstrap wires process-level runtime dependencies before the
// server or a CLI takes over.
package bootstrap

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"atheneum/internal/cache"
	"atheneum/internal/config"
	"atheneum/internal/database"
	"atheneum/internal/models"
	"atheneum/internal/seed"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedDemoData populates a development database with demo authors,
	// posts and quizzes when it is empty.
	SeedDemoData bool
}

// InitRuntime connects to DB and Redis and optionally runs demo seeding.
func InitRuntime(cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Init Redis (may result in nil client if unreachable)
	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevRootAdmin(cfg, db); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development root admin: %w", err)
	}

	if opts.SeedDemoData {
		var users int64
		if err := db.Model(&models.User{}).Count(&users).Error; err != nil {
			return nil, nil, fmt.Errorf("check for existing data: %w", err)
		}
		if users <= 1 {
			if err := seed.Seed(db, seed.Options{}); err != nil {
				return nil, nil, fmt.Errorf("failed to seed demo data: %w", err)
			}
		}
	}

	return db, r, nil
}

// ensureDevRootAdmin guarantees a usable admin account with ID 1 in
// development environments so the moderation surface is reachable on a
// fresh database.
func ensureDevRootAdmin(cfg *config.Config, db *gorm.DB) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123!ABC"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash root password: %w", err)
	}

	if err := db.Transaction(func(tx *gorm.DB) error {
		var root models.User
		findErr := tx.First(&root, 1).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			root = models.User{
				ID:       1,
				Username: "atheneum_root",
				Email:    "root@atheneum.local",
				Password: string(hashedPassword),
				IsAdmin:  true,
			}
			if err := tx.Create(&root).Error; err != nil {
				return err
			}
		case findErr != nil:
			return findErr
		default:
			if err := tx.Model(&models.User{}).Where("id = ?", 1).
				Update("is_admin", true).Error; err != nil {
				return err
			}
		}

		// Ensure users ID sequence is not behind explicit ID insertion.
		// This is PostgreSQL-specific.
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec(`
				SELECT setval(
					pg_get_serial_sequence('users', 'id'),
					GREATEST((SELECT COALESCE(MAX(id), 1) FROM users), 1),
					true
				)
			`).Error; err != nil {
				return fmt.Errorf("failed to reset users sequence: %w", err)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	log.Printf("development root admin ensured for user ID 1")
	return nil
}
