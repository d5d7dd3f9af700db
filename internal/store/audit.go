package store

import (
	"context"
	"time"

	"github.com/mepla/Enchilada/internal/models"
)

func (s *Store) CreateAuditLog(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// CreateAuditLogBatch inserts entries in chunks of 100.
func (s *Store) CreateAuditLogBatch(ctx context.Context, entries []*models.AuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return s.db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

// DeleteOldAuditLogs removes entries created before the cutoff.
func (s *Store) DeleteOldAuditLogs(ctx context.Context, before time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("created_at < ?", before).Delete(&models.AuditLog{})
	return res.RowsAffected, res.Error
}

// ListAuditLogs returns the most recent entries, newest first.
func (s *Store) ListAuditLogs(ctx context.Context, eventType models.EventType, limit int) ([]models.AuditLog, error) {
	var logs []models.AuditLog
	q := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit)
	if eventType != "" {
		q = q.Where("event_type = ?", eventType)
	}
	err := q.Find(&logs).Error
	return logs, err
}
