package domain

import (
	"strconv"
)

// Column names of the products collection
const (
	ColumnID          = "id"
	ColumnName        = "name"
	ColumnDescription = "description"
	ColumnPrice       = "price"
	ColumnStock       = "stock"
	ColumnImageURL    = "image_url"
)

// Product represents a row of the products collection
//
// swagger:model
type Product struct {
	// The ID of the product, assigned by the backend
	//
	// required: true
	// min: 1
	// example: 42
	ID int `json:"id" gorm:"primaryKey;autoIncrement"`

	// The name of the product
	//
	// required: true
	// example: Widget
	Name string `json:"name" gorm:"not null"`

	// The description of the product
	//
	// required: false
	// example: A very useful widget
	Description string `json:"description"`

	// The price of the product
	//
	// required: true
	// min: 0
	// example: 9.99
	Price float64 `json:"price" gorm:"not null;default:0"`

	// Units in stock
	//
	// required: true
	// min: 0
	// example: 5
	Stock int `json:"stock" gorm:"not null;default:0"`

	// Public URL of the product image, null when there is none
	//
	// required: false
	ImageURL *string `json:"image_url" gorm:"column:image_url"`
}

// Fields is a set of column values sent to the backend on insert or update.
// A nil image_url is stored as null.
type Fields map[string]any

// Apply copies the recognised columns of f onto p. Unknown columns are ignored.
func (p *Product) Apply(f Fields) {
	for column, value := range f {
		switch column {
		case ColumnName:
			if s, ok := value.(string); ok {
				p.Name = s
			}
		case ColumnDescription:
			if s, ok := value.(string); ok {
				p.Description = s
			}
		case ColumnPrice:
			p.Price = toFloat(value)
		case ColumnStock:
			p.Stock = int(toFloat(value))
		case ColumnImageURL:
			p.ImageURL = toOptionalString(value)
		}
	}
}

// PriceLabel renders the price with two decimals, as shown in the list
func (p Product) PriceLabel() string {
	return "$" + strconv.FormatFloat(p.Price, 'f', 2, 64)
}

// Image returns the image URL or the empty string
func (p Product) Image() string {
	if p.ImageURL == nil {
		return ""
	}
	return *p.ImageURL
}

// StockLevel classifies stock for the list badge
type StockLevel string

const (
	StockInStock StockLevel = "in-stock"
	StockLow     StockLevel = "low"
	StockOut     StockLevel = "out"
)

func (p Product) StockLevel() StockLevel {
	switch {
	case p.Stock > 10:
		return StockInStock
	case p.Stock > 0:
		return StockLow
	default:
		return StockOut
	}
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		return ParsePrice(n)
	}
	return 0
}

func toOptionalString(v any) *string {
	switch s := v.(type) {
	case string:
		if s == "" {
			return nil
		}
		return &s
	case *string:
		if s == nil || *s == "" {
			return nil
		}
		c := *s
		return &c
	}
	return nil
}
