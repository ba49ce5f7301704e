package journal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Entry is one processed scene in the run history. The journal is an audit
// trail for the operator, it is never consulted during resolution.
type Entry struct {
	gorm.Model
	SceneID    string `gorm:"index"`
	Path       string
	Source     string // "nfo" or "re", empty when nothing parsed
	Status     string // "updated", "dry_run" or "skipped"
	Reason     string
	Performers int // resolved performer ids
	Tags       int // resolved tag ids
	DryRun     bool
	Error      string
}

type Journal struct {
	db *gorm.DB
}

// Open creates or opens the sqlite journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}
	if err := db.AutoMigrate(&Entry{}); err != nil {
		return nil, fmt.Errorf("failed to migrate journal database: %w", err)
	}
	return &Journal{db: db}, nil
}

func (j *Journal) Record(e *Entry) error {
	return j.db.Create(e).Error
}

// Recent returns the latest entries, newest first.
func (j *Journal) Recent(limit int) ([]Entry, error) {
	var entries []Entry
	err := j.db.Order("id desc").Limit(limit).Find(&entries).Error
	return entries, err
}
