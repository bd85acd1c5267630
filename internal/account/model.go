package account

import "time"

// Account is a registered customer. The phone number is the login
// identity; balance is the single source of spending power, held in
// whole kyats.
type Account struct {
	ID             int        `db:"id" json:"id"`
	Phone          string     `db:"phone" json:"phone"`
	Balance        int64      `db:"balance" json:"balance"`
	LastToppedUpAt *time.Time `db:"last_topped_up_at" json:"last_topped_up_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// BalanceSnapshot is the display-only view served by the balance
// cache. It is never used inside a mutating transaction.
type BalanceSnapshot struct {
	Exists         bool       `json:"exists"`
	Balance        int64      `json:"balance"`
	LastToppedUpAt *time.Time `json:"last_topped_up_at,omitempty"`
}

type RegisterRequest struct {
	Phone string `json:"phone" binding:"required,min=3"`
}

type LoginRequest struct {
	Phone string `json:"phone" binding:"required,min=3"`
}

type AdminLoginRequest struct {
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
	Account      Account `json:"account"`
}
