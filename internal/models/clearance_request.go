// internal/models/clearance_request.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// ClearanceRequest is the negotiation between the musician who
// submitted a derivative work and the rights holder of the matched
// original. Status only moves along the edges enforced by the
// clearance service; RequesterID and RightsHolderID never change
// after creation.
type ClearanceRequest struct {
	BaseModel
	DerivativeWorkID  uuid.UUID       `json:"derivative_work_id" gorm:"type:uuid;not null;index"`
	OriginalWorkID    uuid.UUID       `json:"original_work_id" gorm:"type:uuid;not null;index"`
	RequesterID       uuid.UUID       `json:"requester_id" gorm:"type:uuid;not null;index"`
	RightsHolderID    uuid.UUID       `json:"rights_holder_id" gorm:"type:uuid;not null;index"`
	Status            ClearanceStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	UsageDescription  string          `json:"usage_description" gorm:"type:text;not null"`
	TermsOfUse        string          `json:"terms_of_use,omitempty" gorm:"type:text"`
	RoyaltyPercentage *float64        `json:"royalty_percentage,omitempty" gorm:"type:decimal(5,2)"`
	CounterProposal   string          `json:"counter_proposal,omitempty" gorm:"type:text"`
	Notes             string          `json:"notes,omitempty" gorm:"type:text"`
	MatchConfidence   *float64        `json:"match_confidence,omitempty" gorm:"type:decimal(4,3)"`
	RequestDate       time.Time       `json:"request_date"`
	ResponseDate      *time.Time      `json:"response_date,omitempty"`
	CounterDate       *time.Time      `json:"counter_date,omitempty"`
	FinalizedDate     *time.Time      `json:"finalized_date,omitempty"`

	// Optimistic concurrency token, incremented on every persisted
	// mutation. Writes are conditioned on the caller's expected value.
	Version int64 `json:"version" gorm:"not null;default:1"`

	// Relationships
	DerivativeWork DerivativeWork `json:"derivative_work,omitempty" gorm:"foreignKey:DerivativeWorkID"`
	OriginalWork   OriginalWork   `json:"original_work,omitempty" gorm:"foreignKey:OriginalWorkID"`
	Requester      User           `json:"requester,omitempty" gorm:"foreignKey:RequesterID"`
	RightsHolder   User           `json:"rights_holder,omitempty" gorm:"foreignKey:RightsHolderID"`
}

// CanTransition reports whether the status graph permits moving to the
// target status. Role and field requirements are enforced separately by
// the clearance service.
func (r *ClearanceRequest) CanTransition(to ClearanceStatus) bool {
	switch r.Status {
	case ClearanceStatusPending:
		return to == ClearanceStatusApproved || to == ClearanceStatusRejected ||
			to == ClearanceStatusNegotiating
	case ClearanceStatusNegotiating:
		return to == ClearanceStatusApproved || to == ClearanceStatusRejected ||
			to == ClearanceStatusNegotiating
	case ClearanceStatusApproved:
		// Terms are on the table; the requester may accept or reopen,
		// and the rights holder may still revise before acceptance.
		return to == ClearanceStatusFinalized || to == ClearanceStatusNegotiating
	}
	return false
}
