package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionSignup          AuditAction = "SIGNUP"
	AuditActionLogin           AuditAction = "LOGIN"
	AuditActionProfileUpdate   AuditAction = "PROFILE_UPDATE"
	AuditActionTaskPost        AuditAction = "TASK_POST"
	AuditActionTaskAccept      AuditAction = "TASK_ACCEPT"
	AuditActionTaskComplete    AuditAction = "TASK_COMPLETE"
	AuditActionTaskCancel      AuditAction = "TASK_CANCEL"
	AuditActionTaskPaid        AuditAction = "TASK_PAID"
	AuditActionTopup           AuditAction = "WALLET_TOPUP"
	AuditActionPayout          AuditAction = "WALLET_PAYOUT"
	AuditActionReviewSubmit    AuditAction = "REVIEW_SUBMIT"
	AuditActionReviewDelete    AuditAction = "REVIEW_DELETE"
	AuditActionPaymentInitiate AuditAction = "PAYMENT_INITIATE"
	AuditActionPaymentVerify   AuditAction = "PAYMENT_VERIFY"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Details      string      `json:"details,omitempty"` // JSON string
	IPAddress    string      `json:"ip_address"`
	CreatedAt    time.Time   `json:"created_at"`
}
