package fields

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateFieldKeywords flags fields whose values get date normalization.
var dateFieldKeywords = []string{
	"date", "commencement", "expiration", "termination",
	"effective", "signed", "start", "end", "due",
}

// monetaryFieldKeywords flags fields whose values get currency formatting.
var monetaryFieldKeywords = []string{
	"amount", "rent", "deposit", "fee", "charge", "cost", "price",
	"allowance", "payment", "tax", "insurance", "liability", "cap",
}

var dateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"2 Jan 2006",
	"01-02-2006",
	"January 2 2006",
}

var (
	reCurrency   = regexp.MustCompile(`^([£$€¥₹]|USD|EUR|GBP|INR)\s*`)
	reNonNumeric = regexp.MustCompile(`[^\d.]`)
)

// IsDateField reports whether the field name indicates a date value.
func IsDateField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, kw := range dateFieldKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// IsMonetaryField reports whether the field name indicates a money value.
func IsMonetaryField(fieldName string) bool {
	lower := strings.ToLower(fieldName)
	for _, kw := range monetaryFieldKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// FormatValue normalizes an extracted literal based on the field it belongs
// to: dates become MM/DD/YYYY, monetary amounts get a currency symbol,
// thousands separators, and two decimals. Unparseable values pass through
// unchanged; formatting is presentation, not validation.
func FormatValue(fieldName, value string) string {
	if value == "" {
		return ""
	}
	if IsDateField(fieldName) {
		return formatDate(value)
	}
	if IsMonetaryField(fieldName) {
		return formatAmount(value)
	}
	return value
}

func formatDate(value string) string {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("01/02/2006")
		}
	}
	return value
}

func formatAmount(value string) string {
	trimmed := strings.TrimSpace(value)
	currency := "$"
	if m := reCurrency.FindStringSubmatch(trimmed); m != nil {
		currency = m[1]
	}

	numeric := reNonNumeric.ReplaceAllString(trimmed, "")
	if numeric == "" {
		return value
	}
	amount, err := strconv.ParseFloat(numeric, 64)
	if err != nil {
		return value
	}
	return currency + groupThousands(fmt.Sprintf("%.2f", amount))
}

// groupThousands inserts comma separators into the integer part of a
// formatted decimal ("1234.50" -> "1,234.50").
func groupThousands(s string) string {
	intPart, fracPart, _ := strings.Cut(s, ".")
	if len(intPart) <= 3 {
		if fracPart != "" {
			return intPart + "." + fracPart
		}
		return intPart
	}
	var b strings.Builder
	lead := len(intPart) % 3
	if lead > 0 {
		b.WriteString(intPart[:lead])
	}
	for i := lead; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}
	if fracPart != "" {
		b.WriteByte('.')
		b.WriteString(fracPart)
	}
	return b.String()
}
