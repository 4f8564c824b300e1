package domain

// Item represents a catalog item
type Item struct {
	ID       int     `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// CreateItemRequest is the body accepted by POST /api/items.
// Keys match exactly; absent, null or mistyped fields fall back to defaults.
type CreateItemRequest struct {
	Name     *string  `json:"name"`
	Price    *float64 `json:"price"`
	Category *string  `json:"category"`
}

func (r *CreateItemRequest) UnmarshalJSON(data []byte) error {
	fields, err := objectFields(data)
	if err != nil {
		return err
	}
	*r = CreateItemRequest{
		Name:     stringField(fields, "name"),
		Price:    numberField(fields, "price"),
		Category: stringField(fields, "category"),
	}
	return nil
}

// ToItem builds an item without an id, applying defaults
func (r CreateItemRequest) ToItem() Item {
	price := 0.0
	if r.Price != nil {
		price = *r.Price
	}
	return Item{
		Name:     stringOr(r.Name, "Unknown"),
		Price:    price,
		Category: stringOr(r.Category, "general"),
	}
}
