// internal/models/transaction.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Transaction records a clearance fee payment raised against a
// finalized clearance request.
type Transaction struct {
	BaseModel
	ClearanceRequestID uuid.UUID         `json:"clearance_request_id" gorm:"type:uuid;not null;index"`
	PayerID            uuid.UUID         `json:"payer_id" gorm:"type:uuid;not null;index"`
	PayeeID            uuid.UUID         `json:"payee_id" gorm:"type:uuid;not null;index"`
	TransactionType    TransactionType   `json:"transaction_type" gorm:"type:varchar(20);not null;index"`
	Amount             float64           `json:"amount" gorm:"type:decimal(10,2);not null"`
	Currency           string            `json:"currency" gorm:"size:3;default:'usd'"`
	Status             TransactionStatus `json:"status" gorm:"type:varchar(20);default:'pending';index"`
	PaymentIntentID    string            `json:"payment_intent_id,omitempty" gorm:"size:255;index"`
	Metadata           JSONB             `json:"metadata" gorm:"type:jsonb"`
	CompletedAt        *time.Time        `json:"completed_at"`

	// Relationships
	ClearanceRequest ClearanceRequest `json:"clearance_request,omitempty" gorm:"foreignKey:ClearanceRequestID"`
	Payer            User             `json:"payer,omitempty" gorm:"foreignKey:PayerID"`
	Payee            User             `json:"payee,omitempty" gorm:"foreignKey:PayeeID"`
}
