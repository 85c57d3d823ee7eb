package dto

import (
	"github.com/shopspring/decimal"
)

// SignupRequest is the request body for account creation.
type SignupRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Password string `json:"password" binding:"required,min=8,max=128" sanitize:"-"`
	Role     string `json:"role" binding:"omitempty,oneof=client runner"`
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required" sanitize:"-"`
}

// LoginResponse is the response body for successful login.
type LoginResponse struct {
	Token  string `json:"token"`
	Expiry int64  `json:"expiry"` // Unix timestamp
}

// Location is a GeoJSON-style point: coordinates are [lng, lat].
type Location struct {
	Coordinates []float64 `json:"coordinates" binding:"required,coords"`
}

// PostTaskRequest is the request body for posting a task.
type PostTaskRequest struct {
	Title       string          `json:"title" binding:"required,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Budget      decimal.Decimal `json:"budget"`
	Location    *Location       `json:"location" binding:"required"`
}

// MoneyRequest is the request body for wallet topups and payouts.
type MoneyRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference *string         `json:"reference,omitempty" binding:"omitempty,max=100,safe_id"`
}

// UpdateProfileRequest lists the only profile fields a user may change.
type UpdateProfileRequest struct {
	Name *string `json:"name" binding:"omitempty,min=1,max=100"`
}

// SubmitReviewRequest is the request body for reviewing a task.
type SubmitReviewRequest struct {
	TaskID  string  `json:"task_id" binding:"required,uuid"`
	Rating  int     `json:"rating" binding:"required,min=1,max=5"`
	Comment *string `json:"comment,omitempty"`
}

// InitiatePaymentRequest is the request body for starting a gateway payment.
type InitiatePaymentRequest struct {
	TaskID string          `json:"task_id" binding:"required,uuid"`
	Amount decimal.Decimal `json:"amount"`
}

// VerifyPaymentRequest is the gateway's return post.
type VerifyPaymentRequest struct {
	PayRequestID      string `form:"PAY_REQUEST_ID" json:"PAY_REQUEST_ID" binding:"required,safe_id"`
	Reference         string `form:"REFERENCE" json:"REFERENCE" binding:"required,safe_id"`
	TransactionStatus string `form:"TRANSACTION_STATUS" json:"TRANSACTION_STATUS" binding:"required,numeric"`
	Checksum          string `form:"CHECKSUM" json:"CHECKSUM" binding:"required,hexadecimal"`
}

// ListQuery is the common pagination query.
type ListQuery struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Normalize applies the default page and page size.
func (q *ListQuery) Normalize() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = 20
	}
}

// TaskListQuery filters the admin task listing.
type TaskListQuery struct {
	ListQuery
	Status   string `form:"status" binding:"omitempty,oneof=posted accepted completed cancelled paid"`
	ClientID string `form:"client_id" binding:"omitempty,uuid"`
	RunnerID string `form:"runner_id" binding:"omitempty,uuid"`
}

// TransactionListQuery filters transaction listings.
type TransactionListQuery struct {
	ListQuery
	Type   string `form:"type" binding:"omitempty,oneof=topup payout payment refund"`
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	From   string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}
