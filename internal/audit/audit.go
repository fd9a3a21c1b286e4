// Package audit appends and reads the immutable audit trail. The writer
// never opens a transaction of its own: it appends on whatever handle the
// caller passes, so the audit row commits or rolls back together with the
// entity change it describes.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"taskhub/backend/internal/models"
)

type Writer struct{}

func NewWriter() *Writer {
	return &Writer{}
}

// Record appends one audit row on tx. tx must be an open transaction handle
// owned by the caller. details is marshalled to JSON: a Diff for UPDATE, a
// snapshot map for CREATE and DELETE. Callers must not Record an UPDATE with
// an empty diff; skipping the call entirely is the contract.
func (w *Writer) Record(tx *gorm.DB, entityType string, entityID uuid.UUID, action models.AuditAction, actorID uuid.UUID, details interface{}) error {
	payload, err := json.Marshal(details)
	if err != nil {
		return fmt.Errorf("marshal audit details: %w", err)
	}

	entry := models.AuditLog{
		ID:         uuid.Must(uuid.NewV4()),
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		ActorID:    actorID,
		Timestamp:  time.Now().UTC(),
		Details:    datatypes.JSON(payload),
	}

	return tx.Create(&entry).Error
}

type Reader struct {
	db *gorm.DB
}

func NewReader(db *gorm.DB) *Reader {
	return &Reader{db: db}
}

// EntityHistory returns the audit entries for one entity, newest first.
func (r *Reader) EntityHistory(ctx context.Context, entityType string, entityID uuid.UUID, page, pageSize int) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).
		Model(&models.AuditLog{}).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.AuditLog
	err := query.
		Order("timestamp DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
