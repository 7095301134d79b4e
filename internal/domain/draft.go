package domain

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Draft holds the values of a create or edit form before submission
type Draft struct {
	Name        string  `json:"name" validate:"notblank"`
	Description string  `json:"description"`
	Price       float64 `json:"price" validate:"gte=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
	ImageURL    string  `json:"image_url" validate:"blankorurl"`
}

// DraftFrom pre-populates an edit draft with the current record
func DraftFrom(p Product) Draft {
	return Draft{
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Stock:       p.Stock,
		ImageURL:    p.Image(),
	}
}

// Fields returns every column of the draft. A blank image URL becomes null.
func (d Draft) Fields() Fields {
	f := Fields{
		ColumnName:        d.Name,
		ColumnDescription: d.Description,
		ColumnPrice:       d.Price,
		ColumnStock:       d.Stock,
		ColumnImageURL:    nil,
	}
	if u := strings.TrimSpace(d.ImageURL); u != "" {
		f[ColumnImageURL] = u
	}
	return f
}

// QuickFields returns only the columns touched by the inline edit
func (d Draft) QuickFields() Fields {
	return Fields{
		ColumnName:  d.Name,
		ColumnPrice: d.Price,
		ColumnStock: d.Stock,
	}
}

func (d *Draft) Reset() {
	*d = Draft{}
}

// Set assigns a raw form value to the named field. Numeric input is coerced,
// never rejected.
func (d *Draft) Set(field, raw string) error {
	switch field {
	case ColumnName:
		d.Name = raw
	case ColumnDescription:
		d.Description = raw
	case ColumnPrice:
		d.Price = ParsePrice(raw)
	case ColumnStock:
		d.Stock = ParseStock(raw)
	case ColumnImageURL:
		d.ImageURL = raw
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return nil
}

var (
	floatPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)
	intPrefix   = regexp.MustCompile(`^[+-]?\d+`)
)

// ParsePrice reads the longest numeric prefix of s. Anything that does not
// start with a number, or that is not finite, is 0.
func ParsePrice(s string) float64 {
	m := floatPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v == 0 {
		// -0
		return 0
	}
	return v
}

// ParseStock reads the leading integer of s, truncating any fraction.
// Non-numeric or out of range input is 0.
func ParseStock(s string) int {
	m := intPrefix.FindString(strings.TrimSpace(s))
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}
