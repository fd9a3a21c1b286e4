package models

import (
	"time"

	"github.com/gofrs/uuid"
	"gorm.io/datatypes"
)

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

const (
	EntityProject = "Project"
	EntityTask    = "Task"
)

// AuditLog is append-only. Rows are written in the same transaction as the
// entity change they describe and are never updated or deleted afterwards.
// Details holds {old,new} pairs for UPDATE and a full snapshot for
// CREATE/DELETE; the DELETE snapshot outlives the entity row.
type AuditLog struct {
	ID         uuid.UUID      `json:"id" gorm:"primaryKey;type:uuid"`
	EntityType string         `json:"entity_type" gorm:"not null;index:idx_audit_entity"`
	EntityID   uuid.UUID      `json:"entity_id" gorm:"type:uuid;not null;index:idx_audit_entity"`
	Action     AuditAction    `json:"action" gorm:"not null"`
	ActorID    uuid.UUID      `json:"actor_id" gorm:"type:uuid;not null"`
	Timestamp  time.Time      `json:"timestamp" gorm:"not null;index"`
	Details    datatypes.JSON `json:"details"`
}
