package models

import "time"

type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionCancel AuditAction = "cancel"
	AuditActionDelete AuditAction = "delete"
	// Reconcile marks a failed combined-rollback that needs manual cleanup.
	AuditActionReconcile AuditAction = "reconcile"
)

type AuditLog struct {
	ID          uint        `gorm:"primaryKey"`
	UserID      uint        `gorm:"index"`
	UserName    string      `gorm:"size:200"`
	EntityType  string      `gorm:"size:50;index;not null"`
	EntityID    uint        `gorm:"index"`
	Action      AuditAction `gorm:"size:20;not null"`
	Description string      `gorm:"size:500"`
	BeforeData  string      `gorm:"type:text"`
	AfterData   string      `gorm:"type:text"`
	CreatedAt   time.Time
}
