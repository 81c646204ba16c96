package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidators(t *testing.T) {
	v := Violations{}
	Required("name", "  ", v)
	Required("ok", "x", v)
	Email("email", "not-an-email", v)
	Email("empty_email", "", v)
	NonNegative("price", decimal.NewFromInt(-1), v)
	NonNegative("zero", decimal.Zero, v)
	Positive("rate", decimal.Zero, v)
	NonNegativeInt("qty", -2, v)
	OneOf("status", "lost", []string{"draft", "sent"}, v)
	MaxLength("title", "ééé", 2, v)

	assert.Equal(t, Violations{
		"name":   "required",
		"email":  "invalid_email",
		"price":  "must_be_non_negative",
		"rate":   "must_be_positive",
		"qty":    "must_be_non_negative",
		"status": "invalid_choice",
		"title":  "too_long",
	}, v)
}

func TestAddKeepsFirstViolation(t *testing.T) {
	v := Violations{}
	v.Add("name", "required")
	v.Add("name", "too_long")
	assert.Equal(t, "required", v["name"])
}

func TestMerge(t *testing.T) {
	v := Violations{}
	v.Merge("items.1.", Violations{"quantity": "must_be_non_negative"})
	assert.Equal(t, "must_be_non_negative", v["items.1.quantity"])
	assert.False(t, v.Empty())
	assert.True(t, Violations{}.Empty())
}
