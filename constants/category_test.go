package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalize(t *testing.T) {
	cases := map[string]Category{
		"rent_payment":    RentPayment,
		"Rent Payment":    RentPayment,
		"rent":            RentPayment,
		"security-deposit": SecurityDeposit,
		"deposit":         SecurityDeposit,
		"pet":             Pets,
		"sublease":        Subletting,
		"eviction":        Default,
		"other":           Other,
	}
	for in, want := range cases {
		got, ok := Canonicalize(in)
		assert.True(t, ok, "input %q", in)
		assert.Equal(t, want, got, "input %q", in)
	}

	_, ok := Canonicalize("astrology")
	assert.False(t, ok)
	_, ok = Canonicalize("")
	assert.False(t, ok)
}

func TestIsValid(t *testing.T) {
	for _, cat := range Categories() {
		assert.True(t, IsValid(cat))
	}
	assert.False(t, IsValid("made_up"))
}

func TestDescriptionsCoverAllCategories(t *testing.T) {
	desc := Descriptions()
	for _, cat := range Categories() {
		assert.NotEmpty(t, desc[cat])
	}
}
