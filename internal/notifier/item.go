package notifier

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/siftbridge/internal/catalog/domain"
)

// BuildItemFields assembles the vendor item schema for one product or
// variation. Id, title, price micros, currency and quantity are always
// present; sku, category and tags only when the product has them.
func (n *Notifier) BuildItemFields(ctx context.Context, productID snowflake.ID, quantity int) (map[string]any, error) {
	product, err := n.catalog.FindByID(ctx, n.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, catalogdomain.ErrNotFound
	}

	if quantity <= 0 {
		quantity = 1
	}

	item := map[string]any{
		"$item_id":       product.ID.String(),
		"$product_title": product.Title,
		"$price":         PriceToMicros(product.Price),
		"$currency_code": n.cfg.StoreCurrency,
		"$quantity":      quantity,
	}

	if product.SKU != "" {
		item["$sku"] = product.SKU
	}

	// The vendor schema takes a single category string, so multiple terms
	// collapse into one comma-joined value. Tags go through as-is.
	if len(product.Categories) > 0 {
		names := make([]string, 0, len(product.Categories))
		for _, category := range product.Categories {
			names = append(names, category.Name)
		}
		item["$category"] = strings.Join(names, ", ")
	}
	if len(product.Tags) > 0 {
		item["$tags"] = product.Tags
	}

	return item, nil
}
