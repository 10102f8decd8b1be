// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}

	return json.Unmarshal(bytes, j)
}

// Enums
type UserType string

const (
	UserTypeMusician     UserType = "musician"
	UserTypeRightsHolder UserType = "rights_holder"
	UserTypeAdmin        UserType = "admin"
)

type UserStatus string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"
)

type ClearanceStatus string

const (
	ClearanceStatusPending     ClearanceStatus = "pending"
	ClearanceStatusApproved    ClearanceStatus = "approved"
	ClearanceStatusRejected    ClearanceStatus = "rejected"
	ClearanceStatusNegotiating ClearanceStatus = "negotiating"
	ClearanceStatusFinalized   ClearanceStatus = "finalized"
)

// Terminal reports whether no further party-driven transition is
// permitted from this status.
func (s ClearanceStatus) Terminal() bool {
	return s == ClearanceStatusRejected || s == ClearanceStatusFinalized
}

func (s ClearanceStatus) Valid() bool {
	switch s {
	case ClearanceStatusPending, ClearanceStatusApproved, ClearanceStatusRejected,
		ClearanceStatusNegotiating, ClearanceStatusFinalized:
		return true
	}
	return false
}

type ResponseDecision string

const (
	DecisionApprove   ResponseDecision = "approve"
	DecisionReject    ResponseDecision = "reject"
	DecisionNegotiate ResponseDecision = "negotiate"
)

type TransactionType string

const (
	TransactionTypeClearanceFee TransactionType = "clearance_fee"
	TransactionTypeRoyalty      TransactionType = "royalty"
)

type TransactionStatus string

const (
	TransactionStatusPending   TransactionStatus = "pending"
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusRefunded  TransactionStatus = "refunded"
)
