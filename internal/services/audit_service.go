package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sokonihq/sokoni-backend/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditService durably records state-changing actions.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

// RecordTx writes an audit event inside the caller's transaction so the
// event commits or rolls back with the action it describes.
func (s *AuditService) RecordTx(tx *gorm.DB, actorID *uuid.UUID, action, entityType, entityID string, payload any) error {
	event := models.AuditEvent{
		ID:         uuid.New(),
		ActorID:    actorID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID,
		CreatedAt:  time.Now(),
	}
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal audit payload: %w", err)
		}
		event.Payload = datatypes.JSON(b)
	}
	return tx.Create(&event).Error
}

// Record writes an audit event outside any transaction, logging failures
// instead of surfacing them.
func (s *AuditService) Record(actorID *uuid.UUID, action, entityType, entityID string, payload any) {
	if err := s.RecordTx(s.db, actorID, action, entityType, entityID, payload); err != nil {
		slog.Error("failed to record audit event", "action", action, "entity_type", entityType, "entity_id", entityID, "error", err)
	}
}
