package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/elitetable/elitetable/config"
)

// GormStorage implements Storage on GORM.
type GormStorage struct {
	db      *gorm.DB
	timeout time.Duration
}

var _ Storage = (*GormStorage)(nil)

// NewGormStorage uses DB_QUERY_TIMEOUT for every call.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db, timeout: config.QueryTimeout()}
}

// WithTimeout returns a copy using d per call; d <= 0 disables the limit.
func (s *GormStorage) WithTimeout(d time.Duration) *GormStorage {
	return &GormStorage{db: s.db, timeout: d}
}

// conn scopes the session to ctx plus the query timeout.
func (s *GormStorage) conn(ctx context.Context) (*gorm.DB, context.CancelFunc) {
	if s.timeout > 0 {
		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		return s.db.WithContext(ctx), cancel
	}
	return s.db.WithContext(ctx), func() {}
}

func (s *GormStorage) Ping(ctx context.Context) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(db.Statement.Context)
}

// translate maps driver errors onto the package sentinels. Dialects without
// a GORM error translator are matched on their message.
func translate(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrReference, err)
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"),
		strings.Contains(msg, "duplicate entry"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "foreign key constraint"),
		strings.Contains(msg, "violates foreign key"):
		return fmt.Errorf("%w: %v", ErrReference, err)
	}
	return fmt.Errorf("repositories: %w", err)
}

func getByID[T any](ctx context.Context, s *GormStorage, id string, preload ...string) (*T, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	for _, p := range preload {
		db = db.Preload(p)
	}
	var row T
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func create[T any](ctx context.Context, s *GormStorage, row *T) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	return translate(db.Omit(clause.Associations).Create(row).Error)
}

// updateByID applies columns (snake_case column names) to row id and returns
// the reloaded row.
func updateByID[T any](ctx context.Context, s *GormStorage, id string, columns map[string]any, preload ...string) (*T, error) {
	db, cancel := s.conn(ctx)
	defer cancel()

	var row T
	if err := db.Where("id = ?", id).Take(&row).Error; err != nil {
		return nil, translate(err)
	}
	if len(columns) > 0 {
		if err := db.Model(&row).Omit(clause.Associations).Updates(columns).Error; err != nil {
			return nil, translate(err)
		}
	}

	q := db
	for _, p := range preload {
		q = q.Preload(p)
	}
	var fresh T
	if err := q.Where("id = ?", id).Take(&fresh).Error; err != nil {
		return nil, translate(err)
	}
	return &fresh, nil
}

func deleteByID[T any](ctx context.Context, s *GormStorage, id string) error {
	db, cancel := s.conn(ctx)
	defer cancel()
	var row T
	return translate(db.Where("id = ?", id).Delete(&row).Error)
}

type statusCount struct {
	Status string
	Count  int64
}

func countByStatus(ctx context.Context, s *GormStorage, model any) (map[string]int64, error) {
	db, cancel := s.conn(ctx)
	defer cancel()
	var rows []statusCount
	if err := db.Model(model).Select("status, COUNT(*) AS count").Group("status").Scan(&rows).Error; err != nil {
		return nil, translate(err)
	}
	out := make(map[string]int64, len(rows))
	for _, r := range rows {
		out[r.Status] = r.Count
	}
	return out, nil
}
