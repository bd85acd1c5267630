package topup

import "time"

// TopUpRequest tracks cash handed to an admin. It is created pending
// and flips to approved exactly once; the approved flag never reverts
// and approved_at is set if and only if approved is true.
type TopUpRequest struct {
	ID         string     `db:"id" json:"id"`
	AccountID  int        `db:"account_id" json:"account_id"`
	Amount     int64      `db:"amount" json:"amount"`
	Approved   bool       `db:"approved" json:"approved"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
}

type CreateRequest struct {
	Amount int64 `json:"amount" binding:"required,gt=0"`
}

type ApproveRequest struct {
	ID string `json:"id" binding:"required"`
}

type ApproveResult struct {
	Success bool  `json:"success"`
	Already bool  `json:"already,omitempty"`
	Balance int64 `json:"balance,omitempty"`
}
