package logging

import (
	"log/slog"
	"time"

	"github.com/findmypaw/backend/internal/models"
	"gorm.io/gorm"
)

// DefaultRetention is how long persisted error logs are kept.
const DefaultRetention = 30 * 24 * time.Hour

// StartCleanup prunes system_logs older than retention once a day until
// done is closed.
func StartCleanup(db *gorm.DB, retention time.Duration, done <-chan struct{}) {
	if retention <= 0 {
		retention = DefaultRetention
	}
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				deleted, err := Prune(db, time.Now().Add(-retention))
				if err != nil {
					slog.Error("log cleanup failed", "action", "logs.cleanup", "error", err)
				} else if deleted > 0 {
					slog.Info("log cleanup completed", "deleted", deleted)
				}
			case <-done:
				return
			}
		}
	}()
}

// Prune deletes persisted logs written before cutoff.
func Prune(db *gorm.DB, cutoff time.Time) (int64, error) {
	result := db.Where("timestamp < ?", cutoff).Delete(&models.SystemLog{})
	return result.RowsAffected, result.Error
}
