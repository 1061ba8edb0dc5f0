package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type CreateProductRequest struct {
	Title      string   `json:"title"`
	SKU        string   `json:"sku"`
	Price      float64  `json:"price"`
	ParentID   string   `json:"parent_id"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

type Service interface {
	Create(ctx context.Context, req CreateProductRequest) (Product, error)
	GetByID(ctx context.Context, id snowflake.ID) (Product, error)
}
