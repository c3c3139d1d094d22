package common

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatMoney(decimal.RequireFromString("1234.5"), "USD"))
	assert.Equal(t, "$0.01", FormatMoney(decimal.RequireFromString("0.005"), "usd"))
	assert.Equal(t, "12.30 ZZZ", FormatMoney(decimal.RequireFromString("12.3"), "ZZZ"))
}

func TestFormatPercent(t *testing.T) {
	v := 10.0049
	assert.Equal(t, "10.00%", FormatPercent(&v))
	assert.Equal(t, "n/a", FormatPercent(nil))
}
