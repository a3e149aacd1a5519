package constants

import (
	"strings"
)

// Category is the closed set of lease clause types the classifier emits.
type Category string

const (
	RentPayment     Category = "rent_payment"
	SecurityDeposit Category = "security_deposit"
	Maintenance     Category = "maintenance"
	Termination     Category = "termination"
	Utilities       Category = "utilities"
	Pets            Category = "pets"
	Subletting      Category = "subletting"
	Insurance       Category = "insurance"
	Default         Category = "default"
	Other           Category = "other"
)

var allCategories = []Category{
	RentPayment,
	SecurityDeposit,
	Maintenance,
	Termination,
	Utilities,
	Pets,
	Subletting,
	Insurance,
	Default,
	Other,
}

// Categories returns the clause types in their canonical order.
func Categories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

func AsStringSlice() []string {
	result := make([]string, len(allCategories))
	for i, cat := range allCategories {
		result[i] = string(cat)
	}
	return result
}

// Descriptions maps each clause type to a short human-readable summary.
func Descriptions() map[Category]string {
	return map[Category]string{
		RentPayment:     "Clauses about rent amounts, due dates, payment methods, and late fees",
		SecurityDeposit: "Clauses about deposits, refunds, deductions, and escrow requirements",
		Maintenance:     "Clauses about repairs, upkeep, and maintenance responsibilities",
		Termination:     "Clauses about lease ending, notice periods, and early termination",
		Utilities:       "Clauses about utility payments and service responsibilities",
		Pets:            "Clauses about pet policies, deposits, and restrictions",
		Subletting:      "Clauses about sublease rights, assignments, and restrictions",
		Insurance:       "Clauses about renter's insurance and liability requirements",
		Default:         "Clauses about breach of lease, remedies, and penalties",
		Other:           "Miscellaneous clauses including governing law and general provisions",
	}
}

// Canonicalize maps free-form labels (including a few synonyms seen in
// training data) onto the closed category set. The second return reports
// whether the input matched a known category.
func Canonicalize(input string) (Category, bool) {
	if input == "" {
		return Other, false
	}

	normalized := strings.ToLower(strings.TrimSpace(input))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")

	// synonyms map
	synonyms := map[string]Category{
		"rent":       RentPayment,
		"payment":    RentPayment,
		"deposit":    SecurityDeposit,
		"repairs":    Maintenance,
		"pet":        Pets,
		"sublease":   Subletting,
		"assignment": Subletting,
		"breach":     Default,
		"eviction":   Default,
	}

	if cat, ok := synonyms[normalized]; ok {
		return cat, true
	}

	for _, cat := range allCategories {
		if normalized == string(cat) {
			return cat, true
		}
	}

	return Other, false
}

// IsValid reports whether label is a member of the closed category set.
func IsValid(label Category) bool {
	for _, cat := range allCategories {
		if label == cat {
			return true
		}
	}
	return false
}
