package audit

import (
	"encoding/json"
	"fmt"

	"mealdesk-backend/internal/models"

	"gorm.io/gorm"
)

type LogOptions struct {
	UserID      uint
	UserName    string
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog records one audit row. It takes the caller's handle so the row can
// join the surrounding transaction: a reservation and its audit trail commit
// or roll back together.
func WriteLog(db *gorm.DB, opts LogOptions) error {
	// jsonb columns want the JSON null literal, not an empty string.
	beforeStr := "null"
	afterStr := "null"

	if opts.Before != nil {
		if b, err := json.Marshal(opts.Before); err == nil {
			beforeStr = string(b)
		}
	}
	if opts.After != nil {
		if b, err := json.Marshal(opts.After); err == nil {
			afterStr = string(b)
		}
	}

	row := models.AuditLog{
		UserID:      opts.UserID,
		UserName:    opts.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  beforeStr,
		AfterData:   afterStr,
	}

	if err := db.Create(&row).Error; err != nil {
		return fmt.Errorf("audit log not written: %w", err)
	}

	return nil
}
