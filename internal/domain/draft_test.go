package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  float64
	}{
		{"Plain decimal", "9.99", 9.99},
		{"Integer", "12", 12},
		{"Leading whitespace", "  3.5", 3.5},
		{"Numeric prefix", "12abc", 12},
		{"Leading dot", ".5", 0.5},
		{"Exponent", "1e2", 100},
		{"Negative", "-4.25", -4.25},
		{"Empty", "", 0},
		{"Letters", "abc", 0},
		{"NaN literal", "NaN", 0},
		{"Infinity literal", "Infinity", 0},
		{"Overflow", "1e400", 0},
		{"Negative zero", "-0", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParsePrice(tc.input))
		})
	}
}

func TestParseStock(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  int
	}{
		{"Integer", "5", 5},
		{"Truncates fraction", "3.9", 3},
		{"Numeric prefix", "7 units", 7},
		{"Negative", "-2", -2},
		{"Empty", "", 0},
		{"Letters", "many", 0},
		{"Out of range", "99999999999999999999999", 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ParseStock(tc.input))
		})
	}
}

func TestDraftFieldsNormalizesBlankImage(t *testing.T) {
	for _, img := range []string{"", "   "} {
		d := Draft{Name: "Widget", Price: 9.99, Stock: 5, ImageURL: img}
		f := d.Fields()

		v, ok := f[ColumnImageURL]
		require.True(t, ok, "image_url must always be sent on a full update")
		assert.Nil(t, v)
	}

	d := Draft{Name: "Widget", ImageURL: "https://cdn.example.com/a.png"}
	assert.Equal(t, "https://cdn.example.com/a.png", d.Fields()[ColumnImageURL])
}

func TestDraftQuickFieldsLeaveDescriptionAndImageOut(t *testing.T) {
	d := Draft{Name: "Widget", Description: "desc", Price: 1, Stock: 2, ImageURL: "https://x/y.png"}
	f := d.QuickFields()

	assert.Len(t, f, 3)
	assert.NotContains(t, f, ColumnDescription)
	assert.NotContains(t, f, ColumnImageURL)
}

func TestDraftSet(t *testing.T) {
	var d Draft

	require.NoError(t, d.Set(ColumnName, "Widget"))
	require.NoError(t, d.Set(ColumnPrice, "not a number"))
	require.NoError(t, d.Set(ColumnStock, "12.7"))
	require.NoError(t, d.Set(ColumnImageURL, "https://x/y.png"))

	assert.Equal(t, "Widget", d.Name)
	assert.Equal(t, 0.0, d.Price)
	assert.Equal(t, 12, d.Stock)
	assert.Equal(t, "https://x/y.png", d.ImageURL)

	err := d.Set("sku", "abc")
	assert.ErrorIs(t, err, ErrUnknownField)

	d.Reset()
	assert.Equal(t, Draft{}, d)
}

func TestDraftFromRoundTrip(t *testing.T) {
	img := "https://cdn.example.com/w.png"
	p := Product{ID: 7, Name: "Widget", Description: "d", Price: 9.99, Stock: 5, ImageURL: &img}

	var applied Product
	applied.ID = p.ID
	applied.Apply(DraftFrom(p).Fields())

	assert.Equal(t, p, applied)

	p.ImageURL = nil
	applied = Product{ID: p.ID}
	applied.Apply(DraftFrom(p).Fields())
	assert.Equal(t, p, applied)
}
