package localstore

import (
	"encoding/json"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tutordesk/tutordesk-backend/internal/platform/logger"
)

// KV is the narrow on-device durable storage interface: whole string values
// under fixed keys, one key per entity collection.
type KV interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
}

type localItem struct {
	Key   string `gorm:"primaryKey;column:key"`
	Value string `gorm:"type:text;not null;column:value"`
}

func (localItem) TableName() string { return "local_item" }

// SQLiteKV persists items in a single key/value table in an on-device
// sqlite file. There is no cross-process coordination; concurrent writers
// race under last-write-wins semantics at this level.
type SQLiteKV struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteKV(path string, baseLog *logger.Logger) (*SQLiteKV, error) {
	kvLog := baseLog.With("store", "SQLiteKV")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&localItem{}); err != nil {
		return nil, err
	}
	return &SQLiteKV{db: db, log: kvLog}, nil
}

func (s *SQLiteKV) GetItem(key string) (string, bool) {
	var item localItem
	if err := s.db.Where("key = ?", key).Take(&item).Error; err != nil {
		return "", false
	}
	return item.Value, true
}

func (s *SQLiteKV) SetItem(key, value string) error {
	item := localItem{Key: key, Value: value}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&item).Error
}

// Store layers JSON collection semantics over a KV. Reads are total: an
// absent key or unparseable value yields an empty collection, never an
// error. Writes replace the whole serialized collection; callers
// read-modify-write under a single logical operation.
type Store struct {
	kv  KV
	log *logger.Logger
}

func NewStore(kv KV, baseLog *logger.Logger) *Store {
	return &Store{kv: kv, log: baseLog.With("store", "LocalStore")}
}

func ReadCollection[T any](s *Store, key string) []T {
	raw, ok := s.kv.GetItem(key)
	if !ok || strings.TrimSpace(raw) == "" {
		return []T{}
	}
	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.log.Warn("Discarding unparseable local collection", "key", key, "error", err)
		return []T{}
	}
	if items == nil {
		return []T{}
	}
	return items
}

func WriteCollection[T any](s *Store, key string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return err
	}
	return s.kv.SetItem(key, string(raw))
}
