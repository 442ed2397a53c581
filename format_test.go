package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,250,000", formatCurrency(1250000, "USD"))
	assert.Equal(t, "$950", formatCurrency(950, ""))
	assert.Equal(t, "€2,400", formatCurrency(2400, "eur"))
	assert.Equal(t, "£380", formatCurrency(380, "GBP"))
	assert.Equal(t, "A$1,100", formatCurrency(1100, "AUD"))
	assert.Equal(t, "TRY 42", formatCurrency(42, "try"))
	assert.Equal(t, "$12,500.50", formatCurrency(12500.50, "USD"))
}

func TestFormatIntComma(t *testing.T) {
	assert.Equal(t, "0", formatIntComma(0))
	assert.Equal(t, "999", formatIntComma(999))
	assert.Equal(t, "1,000", formatIntComma(1000))
	assert.Equal(t, "12,345,678", formatIntComma(12345678))
	assert.Equal(t, "-4,200", formatIntComma(-4200))
}

func TestFormatEnum(t *testing.T) {
	assert.Equal(t, "Off Market", formatEnum("offMarket"))
	assert.Equal(t, "Real Estate", formatEnum("real-estate"))
	assert.Equal(t, "Market News", formatEnum("market_news"))
	assert.Equal(t, "For Sale", formatEnum("for sale"))
	assert.Equal(t, "New", formatEnum("new"))
	assert.Empty(t, formatEnum("  "))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-07-01", formatDate("2025-07-01T09:30:00Z"))
	assert.Equal(t, "2025-07-01", formatDate("2025-07-01T09:30:00.123Z"))
	assert.Equal(t, "2025-07-01", formatDate("2025-07-01"))
	assert.Equal(t, "last week", formatDate("last week"))
	assert.Empty(t, formatDate("  "))
}

func TestFormatYesNo(t *testing.T) {
	assert.Equal(t, "Yes", formatYesNo(true))
	assert.Equal(t, "No", formatYesNo(false))
}

func TestJoinPipe(t *testing.T) {
	assert.Equal(t, "a | b", joinPipe([]string{"a", "", " b "}))
	assert.Empty(t, joinPipe(nil))
	assert.Empty(t, joinPipe([]string{" ", ""}))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exact", truncate("exact", 5))
	assert.Equal(t, "long…", truncate("longer", 5))
	assert.Equal(t, "l", truncate("long", 1))
	assert.Equal(t, "untouched", truncate("untouched", 0))
}
