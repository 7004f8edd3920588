package domain

import (
	"time"

	"github.com/google/uuid"
)

// PlanExport stores metadata about an exported plan schedule. The document itself lives
// in object storage under ObjectKey.
type PlanExport struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	PlanID       uuid.UUID `gorm:"type:uuid;not null;index" json:"planId"`
	OwnerID      uuid.UUID `gorm:"type:uuid;not null;index" json:"ownerId"`
	ObjectKey    string    `gorm:"size:512;not null;uniqueIndex" json:"-"` // internal use only
	ContentType  string    `gorm:"size:128;not null" json:"contentType"`
	SizeBytes    int64     `gorm:"not null" json:"sizeBytes"`
	DaysExported int       `gorm:"not null" json:"daysExported"`
	CreatedAt    time.Time `json:"createdAt"`
}

func (PlanExport) TableName() string {
	return "plan_exports"
}
