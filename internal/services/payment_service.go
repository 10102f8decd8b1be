// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/brydge/brydge-backend/internal/config"
	"github.com/brydge/brydge-backend/internal/models"
	"github.com/brydge/brydge-backend/internal/utils"
)

// PaymentService settles clearance fees: once a clearance is
// finalized, the requester pays the agreed fee to the rights holder
// through Stripe.
type PaymentService struct {
	db     *gorm.DB
	config *config.Config
}

type CreateClearanceFeeRequest struct {
	ClearanceRequestID uuid.UUID `json:"clearance_request_id" validate:"required"`
	Amount             float64   `json:"amount" validate:"required,min=0.01"`
	Currency           string    `json:"currency,omitempty"`
}

type PaymentIntentResponse struct {
	ClientSecret  string    `json:"client_secret"`
	PaymentID     string    `json:"payment_id"`
	TransactionID uuid.UUID `json:"transaction_id"`
	Status        string    `json:"status"`
}

type ConfirmPaymentRequest struct {
	PaymentIntentID string    `json:"payment_intent_id" validate:"required"`
	TransactionID   uuid.UUID `json:"transaction_id" validate:"required"`
}

func NewPaymentService(db *gorm.DB, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		config: config,
	}
}

func (s *PaymentService) CreateClearanceFeeIntent(payerID uuid.UUID, req *CreateClearanceFeeRequest) (*PaymentIntentResponse, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	// Find the clearance being paid for
	var clearance models.ClearanceRequest
	if err := s.db.First(&clearance, "id = ?", req.ClearanceRequestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("clearance request not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if clearance.Status != models.ClearanceStatusFinalized {
		return nil, errors.New("clearance fees can only be paid on finalized requests")
	}

	if clearance.RequesterID != payerID {
		return nil, errors.New("only the requester may pay the clearance fee")
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	// Record the pending transaction first
	transaction := &models.Transaction{
		ClearanceRequestID: clearance.ID,
		PayerID:            clearance.RequesterID,
		PayeeID:            clearance.RightsHolderID,
		TransactionType:    models.TransactionTypeClearanceFee,
		Amount:             req.Amount,
		Currency:           currency,
		Status:             models.TransactionStatusPending,
	}
	if err := s.db.Create(transaction).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	// Create Stripe PaymentIntent (amount in cents)
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount * 100)),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("clearance_request_id", clearance.ID.String())
	params.AddMetadata("transaction_id", transaction.ID.String())

	intent, err := paymentintent.New(params)
	if err != nil {
		s.db.Model(transaction).Update("status", models.TransactionStatusFailed)
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	if err := s.db.Model(transaction).Update("payment_intent_id", intent.ID).Error; err != nil {
		return nil, fmt.Errorf("failed to record payment intent: %w", err)
	}

	return &PaymentIntentResponse{
		ClientSecret:  intent.ClientSecret,
		PaymentID:     intent.ID,
		TransactionID: transaction.ID,
		Status:        string(intent.Status),
	}, nil
}

func (s *PaymentService) ConfirmPayment(userID uuid.UUID, req *ConfirmPaymentRequest) (*models.Transaction, error) {
	// Validate request
	if err := utils.ValidateStruct(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	var transaction models.Transaction
	if err := s.db.First(&transaction, "id = ?", req.TransactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("transaction not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if transaction.PayerID != userID {
		return nil, errors.New("unauthorized to confirm this payment")
	}

	if transaction.PaymentIntentID != req.PaymentIntentID {
		return nil, errors.New("payment intent does not match transaction")
	}

	if transaction.Status == models.TransactionStatusCompleted {
		return &transaction, nil
	}

	// Verify the intent actually succeeded
	intent, err := paymentintent.Get(req.PaymentIntentID, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}

	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, fmt.Errorf("payment intent is %s, not succeeded", intent.Status)
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.TransactionStatusCompleted,
		"completed_at": &now,
	}
	if err := s.db.Model(&transaction).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to complete transaction: %w", err)
	}

	transaction.Status = models.TransactionStatusCompleted
	transaction.CompletedAt = &now
	return &transaction, nil
}

func (s *PaymentService) GetPaymentHistory(userID uuid.UUID, params utils.PaginationParams) ([]models.Transaction, int64, error) {
	query := s.db.Model(&models.Transaction{}).
		Where("payer_id = ? OR payee_id = ?", userID, userID).
		Preload("ClearanceRequest")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	allowedSortFields := []string{"created_at", "amount", "completed_at"}
	query = utils.ApplySort(query, params, allowedSortFields)
	query = utils.ApplyPagination(query, params)

	var transactions []models.Transaction
	if err := query.Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	return transactions, total, nil
}
