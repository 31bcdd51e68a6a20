package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"voice-console/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store is the console's durable local storage: per-session key/value settings
// plus the mutation journal.
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Load returns every setting stored for a console session.
func (s *Store) Load(ctx context.Context, sessionID string) (map[string]string, error) {
	var rows []models.ConsoleSetting
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Get returns a single setting; ok is false when it is not stored.
func (s *Store) Get(ctx context.Context, sessionID, key string) (string, bool, error) {
	var row models.ConsoleSetting
	err := s.db.WithContext(ctx).Where("session_id = ? AND key = ?", sessionID, key).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.Value, true, nil
}

// Set upserts a setting.
func (s *Store) Set(ctx context.Context, sessionID, key, value string) error {
	row := models.ConsoleSetting{SessionID: sessionID, Key: key, Value: value, UpdatedAt: time.Now()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

// Delete removes a setting. Deleting a missing key is not an error.
func (s *Store) Delete(ctx context.Context, sessionID, key string) error {
	return s.db.WithContext(ctx).
		Where("session_id = ? AND key = ?", sessionID, key).
		Delete(&models.ConsoleSetting{}).Error
}

// Clear removes every setting of a console session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&models.ConsoleSetting{}).Error
}

// Sessions lists the ids of every console session that still holds a token.
func (s *Store) Sessions(ctx context.Context) ([]string, error) {
	var ids []string
	err := s.db.WithContext(ctx).Model(&models.ConsoleSetting{}).
		Where("key = ?", models.SettingToken).
		Distinct().Pluck("session_id", &ids).Error
	return ids, err
}

// Journal appends a mutation record.
func (s *Store) Journal(ctx context.Context, entry models.MutationLog) error {
	return s.db.WithContext(ctx).Create(&entry).Error
}

// Mutations returns the most recent journal entries of a session, newest first.
func (s *Store) Mutations(ctx context.Context, sessionID string, limit int) ([]models.MutationLog, error) {
	var logs []models.MutationLog
	err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).
		Order("id DESC").Limit(limit).Find(&logs).Error
	return logs, err
}
