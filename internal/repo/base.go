package repo

import (
	"context"

	"github.com/angelmondragon/warehousepos-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db *gorm.DB
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// DB returns the GORM connection bound to the supplied context (if any).
func (b Base) DB(ctx context.Context) *gorm.DB {
	if ctx == nil {
		return b.db
	}
	return b.db.WithContext(ctx)
}

// WithTx returns a copy of the base bound to tx so repository calls join an
// open transaction.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx}
}

// Keyset orders q newest first and skips rows at or after cursor. The table
// prefix qualifies columns when q joins other tables.
func Keyset(q *gorm.DB, table string, cursor *pagination.Cursor, limit int) *gorm.DB {
	prefix := ""
	if table != "" {
		prefix = table + "."
	}
	if cursor != nil {
		q = q.Where("("+prefix+"created_at < ?) OR ("+prefix+"created_at = ? AND "+prefix+"id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}
	return q.Order(prefix + "created_at DESC").Order(prefix + "id DESC").Limit(pagination.LimitWithBuffer(limit))
}
