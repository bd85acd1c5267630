package catalog

import "time"

type Product struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     int64     `db:"price" json:"price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type CreateProductRequest struct {
	Name  string `json:"name" binding:"required,min=1,max=100"`
	Price int64  `json:"price" binding:"required,gte=0"`
}

type UpdateProductRequest struct {
	ProductID int    `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required,min=1,max=100"`
	Price     int64  `json:"price" binding:"required,gte=0"`
}
