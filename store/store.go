package store

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/gormlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// CachedProject is one cached upstream response. Payload holds the filtered
// project JSON; NotFound marks a negative entry for a project the upstream
// reported as missing.
type CachedProject struct {
	gorm.Model
	ProjectID int `gorm:"uniqueIndex"`
	Payload   []byte
	NotFound  bool
	FetchedAt time.Time
}

// Store persists fetched project metadata in a local SQLite database so the
// revalidation window survives process restarts.
type Store struct {
	db *gorm.DB
}

// Open initializes the SQLite database connection and migrates models.
func Open(dbPath string) (*Store, error) {
	// Configure GORM logger
	newLogger := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard log writer (os.Stdout)
		gormlogger.Config{
			SlowThreshold:             time.Second,     // Slow SQL threshold
			LogLevel:                  gormlogger.Warn, // Log level (Warn, Error, Info)
			IgnoreRecordNotFoundError: true,            // Ignore ErrRecordNotFound error
			ParameterizedQueries:      false,           // Log SQL queries with params
			Colorful:                  true,            // Enable color
		},
	)

	db, err := gorm.Open(gormlite.Open(dbPath), &gorm.Config{
		Logger: newLogger, // Use the configured logger
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := db.AutoMigrate(&CachedProject{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Get returns the cached entry for a project, or nil when none exists.
func (s *Store) Get(projectID int) (*CachedProject, error) {
	var entry CachedProject
	err := s.db.Where("project_id = ?", projectID).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query project cache: %w", err)
	}
	return &entry, nil
}

// Put inserts or replaces the cached entry for a project.
func (s *Store) Put(projectID int, payload []byte, notFound bool, fetchedAt time.Time) error {
	var existing CachedProject
	err := s.db.Where("project_id = ?", projectID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		entry := CachedProject{
			ProjectID: projectID,
			Payload:   payload,
			NotFound:  notFound,
			FetchedAt: fetchedAt,
		}
		if err := s.db.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to insert project cache entry: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to query project cache: %w", err)
	}

	existing.Payload = payload
	existing.NotFound = notFound
	existing.FetchedAt = fetchedAt
	if err := s.db.Save(&existing).Error; err != nil {
		return fmt.Errorf("failed to update project cache entry: %w", err)
	}
	return nil
}
