// Package eventlog keeps a queryable sqlite or postgres index of committed module events.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"farmchain/core/events"
	"farmchain/core/types"
)

// ErrPathRequired is returned when the index path is missing.
var ErrPathRequired = errors.New("eventlog: path must be configured")

// Record is one persisted event.
type Record struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq          uint64    `gorm:"uniqueIndex"`
	Type         string    `gorm:"index"`
	GlobalFarmID string    `gorm:"index"`
	DepositID    string    `gorm:"index"`
	Attributes   string    `gorm:"not null"`
	CreatedAt    time.Time
}

// Event decodes the stored attributes back into the generic event form.
func (r Record) Event() (*types.Event, error) {
	attrs := map[string]string{}
	if err := json.Unmarshal([]byte(r.Attributes), &attrs); err != nil {
		return nil, fmt.Errorf("eventlog: decode %s: %w", r.ID, err)
	}
	return &types.Event{Type: r.Type, Attributes: attrs}, nil
}

// Store appends events to the index. It implements events.Emitter; write
// failures are logged and do not reach the emitting module.
type Store struct {
	mu     sync.Mutex
	db     *gorm.DB
	seq    uint64
	logger *slog.Logger
}

// Open opens or creates the index at path. postgres:// URLs select the
// postgres driver; anything else is treated as a sqlite DSN.
func Open(path string) (*Store, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, ErrPathRequired
	}
	db, err := gorm.Open(dialector(trimmed), &gorm.Config{Logger: logger.Discard})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	var last struct{ Max uint64 }
	if err := db.Model(&Record{}).Select("COALESCE(MAX(seq), 0) AS max").Scan(&last).Error; err != nil {
		return nil, fmt.Errorf("load sequence: %w", err)
	}
	return &Store{db: db, seq: last.Max, logger: slog.Default()}, nil
}

func dialector(dsn string) gorm.Dialector {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return postgres.Open(dsn)
	}
	return sqlite.Open(dsn)
}

func (s *Store) SetLogger(logger *slog.Logger) {
	if logger != nil {
		s.logger = logger
	}
}

// Close releases database resources.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Emit implements events.Emitter.
func (s *Store) Emit(evt events.Event) {
	if err := s.Append(context.Background(), evt); err != nil {
		s.logger.Error("event index write failed", "type", evt.EventType(), "error", err)
	}
}

// Append persists one event.
func (s *Store) Append(ctx context.Context, evt events.Event) error {
	payload := events.Payload(evt)
	if payload == nil {
		return nil
	}
	encoded, err := json.Marshal(payload.Attributes)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record := Record{
		ID:           uuid.New(),
		Seq:          s.seq + 1,
		Type:         payload.Type,
		GlobalFarmID: payload.Attr(types.AttrGlobalFarmID),
		DepositID:    payload.Attr(types.AttrDepositID),
		Attributes:   string(encoded),
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	s.seq = record.Seq
	return nil
}

// Filter narrows List. Empty fields match everything.
type Filter struct {
	Type         string
	GlobalFarmID string
	DepositID    string
	Limit        int
}

// List returns matching events in emission order.
func (s *Store) List(ctx context.Context, filter Filter) ([]Record, error) {
	query := s.db.WithContext(ctx).Model(&Record{}).Order("seq ASC")
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.GlobalFarmID != "" {
		query = query.Where("global_farm_id = ?", filter.GlobalFarmID)
	}
	if filter.DepositID != "" {
		query = query.Where("deposit_id = ?", filter.DepositID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	var records []Record
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	return records, nil
}
