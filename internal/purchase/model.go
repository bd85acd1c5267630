package purchase

import "time"

// Transaction is an append-only record of one purchased line item.
// Records are never mutated or deleted.
type Transaction struct {
	ID        int       `db:"id" json:"id"`
	AccountID int       `db:"account_id" json:"account_id"`
	ProductID int       `db:"product_id" json:"product_id"`
	Quantity  int       `db:"quantity" json:"quantity"`
	Total     int64     `db:"total" json:"total"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Item is one order line. The line total is computed by the client and
// trusted as-is, matching the storefront UI which prices from the same
// catalog; re-pricing server-side would be the hardened alternative.
type Item struct {
	ProductID int   `json:"product_id" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
	Total     int64 `json:"total" binding:"gte=0"`
}

type PurchaseRequest struct {
	Items []Item `json:"items" binding:"required,min=1,dive"`
}

type PurchaseResult struct {
	OK           bool  `json:"ok"`
	Total        int64 `json:"total"`
	BalanceAfter int64 `json:"balance_after"`
}
