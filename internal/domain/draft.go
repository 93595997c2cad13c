package domain

import "time"

// DraftResult is the mail-draft service response consumed by the core.
type DraftResult struct {
	Success      bool   `json:"success"`
	DraftID      string `json:"draft_id,omitempty"`
	Error        string `json:"error,omitempty"`
	AuthRequired bool   `json:"auth_required,omitempty"`
	AuthURL      string `json:"auth_url,omitempty"`
}

// DraftRecord is the audit entry persisted for every successfully created
// draft. The batch itself lives in memory; this table is operational
// history only.
type DraftRecord struct {
	ID         string `gorm:"type:uuid;primaryKey"`
	Domain     string `gorm:"type:varchar(255);not null"`
	Recipients string `gorm:"type:text;not null"`
	Subject    string `gorm:"type:text;not null"`
	DraftID    string `gorm:"type:varchar(255);not null"`
	Combined   bool   `gorm:"not null;default:false"`
	CreatedAt  time.Time
}
