package main

import (
	"fmt"
	"strings"
	"time"
)

// formatCurrency renders an amount with its currency prefix and
// thousands separators, dropping the decimals for whole figures.
func formatCurrency(amount float64, currency string) string {
	prefix := currencyPrefix(currency)
	whole := int64(amount)
	if amount == float64(whole) {
		return prefix + formatIntComma(whole)
	}
	return fmt.Sprintf("%s%s.%02d", prefix, formatIntComma(whole), int64(amount*100)%100)
}

func currencyPrefix(currency string) string {
	switch strings.ToUpper(strings.TrimSpace(currency)) {
	case "USD", "":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "AUD":
		return "A$"
	default:
		return strings.ToUpper(currency) + " "
	}
}

func formatIntComma(value int64) string {
	sign := ""
	if value < 0 {
		sign = "-"
		value = -value
	}
	digits := fmt.Sprintf("%d", value)
	if len(digits) <= 3 {
		return sign + digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return sign + b.String()
}

func formatYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

// formatEnum capitalizes a backend enum value for display: "offMarket"
// becomes "Off Market", "real-estate" becomes "Real Estate".
func formatEnum(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	var words []string
	var current strings.Builder
	flush := func() {
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	for _, r := range value {
		switch {
		case r == '-' || r == '_' || r == ' ':
			flush()
		case r >= 'A' && r <= 'Z':
			flush()
			current.WriteRune(r)
		default:
			current.WriteRune(r)
		}
	}
	flush()
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

// formatDate renders the date part of a backend timestamp, accepting
// RFC3339 and plain dates; unknown shapes pass through untouched.
func formatDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2006-01-02")
		}
	}
	return value
}

func joinPipe(items []string) string {
	kept := items[:0:0]
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item != "" {
			kept = append(kept, item)
		}
	}
	return strings.Join(kept, " | ")
}

func truncate(value string, max int) string {
	if max <= 0 || len(value) <= max {
		return value
	}
	if max <= 1 {
		return value[:max]
	}
	return value[:max-1] + "…"
}
