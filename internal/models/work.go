// internal/models/work.go
package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OriginalWork is a rights holder's catalog entry. Its fingerprint is
// what submitted derivatives are matched against.
type OriginalWork struct {
	BaseModel
	OwnerID         uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title           string         `json:"title" gorm:"size:255;not null"`
	Artist          string         `json:"artist" gorm:"size:255;not null"`
	FileKey         string         `json:"file_key" gorm:"size:512"`
	FileSize        int64          `json:"file_size"`
	MimeType        string         `json:"mime_type" gorm:"size:100"`
	Fingerprint     string         `json:"fingerprint,omitempty" gorm:"type:text"`
	DurationSeconds float64        `json:"duration_seconds"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	UploadedAt      time.Time      `json:"uploaded_at"`

	// Relationships
	Owner    User               `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Requests []ClearanceRequest `json:"requests,omitempty" gorm:"foreignKey:OriginalWorkID"`
}

// DerivativeWork is a musician's submitted audio that samples one or
// more original works.
type DerivativeWork struct {
	BaseModel
	OwnerID         uuid.UUID      `json:"owner_id" gorm:"type:uuid;not null;index"`
	Title           string         `json:"title" gorm:"size:255;not null"`
	Artist          string         `json:"artist" gorm:"size:255;not null"`
	FileKey         string         `json:"file_key" gorm:"size:512"`
	FileSize        int64          `json:"file_size"`
	MimeType        string         `json:"mime_type" gorm:"size:100"`
	Fingerprint     string         `json:"fingerprint,omitempty" gorm:"type:text"`
	DurationSeconds float64        `json:"duration_seconds"`
	Tags            pq.StringArray `json:"tags" gorm:"type:text[]"`
	UploadedAt      time.Time      `json:"uploaded_at"`

	// Relationships
	Owner    User               `json:"owner,omitempty" gorm:"foreignKey:OwnerID"`
	Requests []ClearanceRequest `json:"requests,omitempty" gorm:"foreignKey:DerivativeWorkID"`
}
