package repository

import (
	"errors"
	"time"

	"github.com/blaisecz/cognitive-sync/internal/domain"
	"github.com/blaisecz/cognitive-sync/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// notFound maps gorm's missing-row error onto domain.ErrNotFound.
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}

func ownedBy(userID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("user_id = ?", userID)
	}
}

func coreOnly(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", domain.SleepTypeCore)
}

// startedWithin bounds start_at by the optional filter window.
func startedWithin(from, to *time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if from != nil {
			db = db.Where("start_at >= ?", *from)
		}
		if to != nil {
			db = db.Where("start_at <= ?", *to)
		}
		return db
	}
}

// afterCursor continues a (start_at, id) descending page. Undecodable
// cursors are rejected by the handler, so they are ignored here.
func afterCursor(encoded string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		cursor, err := pagination.DecodeCursor(encoded)
		if err != nil || cursor == nil {
			return db
		}
		return db.Where(
			"(start_at < ?) OR (start_at = ? AND id < ?)",
			cursor.StartAt, cursor.StartAt, cursor.ID,
		)
	}
}
