//go:build unit

package money_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/pkg/money"
)

func mustMoney(t *testing.T, s string) money.Money {
	t.Helper()
	m, err := money.FromString(s)
	require.NoError(t, err)
	return m
}

func TestFromString(t *testing.T) {
	t.Parallel()

	t.Run("parses decimal strings", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "19.99", mustMoney(t, "19.99").String())
		assert.Equal(t, "5.00", mustMoney(t, "5").String())
	})

	t.Run("rejects negatives", func(t *testing.T) {
		t.Parallel()
		_, err := money.FromString("-0.01")
		assert.ErrorIs(t, err, money.ErrNegativeAmount)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		t.Parallel()
		_, err := money.FromString("ten quid")
		assert.Error(t, err)
	})
}

func TestArithmeticIsExact(t *testing.T) {
	t.Parallel()

	t.Run("repeated addition has no float drift", func(t *testing.T) {
		t.Parallel()
		sum := money.Zero
		tick := mustMoney(t, "0.10")
		for i := 0; i < 10; i++ {
			sum = sum.Add(tick)
		}
		assert.True(t, sum.Equal(mustMoney(t, "1.00")))
	})

	t.Run("line total multiplies exactly", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "59.97", mustMoney(t, "19.99").MulInt(3).String())
	})

	t.Run("intermediate values stay unrounded", func(t *testing.T) {
		t.Parallel()
		rate := decimal.RequireFromString("0.20")
		tax := mustMoney(t, "59.97").Mul(rate)

		assert.True(t, tax.Decimal().Equal(decimal.RequireFromString("11.994")))
		assert.Equal(t, "11.99", tax.String(), "rounding happens only at String")
	})

	t.Run("subtraction can go negative for comparisons", func(t *testing.T) {
		t.Parallel()
		diff := mustMoney(t, "5.00").Sub(mustMoney(t, "7.50"))
		assert.True(t, diff.IsNegative())
	})
}

func TestRound(t *testing.T) {
	t.Parallel()

	t.Run("matches the rendered amount", func(t *testing.T) {
		t.Parallel()
		rate := decimal.RequireFromString("0.20")
		// 20% of 39.98 is 7.996, displayed as 8.00
		tax := mustMoney(t, "39.98").Mul(rate)

		assert.Equal(t, tax.String(), tax.Round().String())
		assert.True(t, tax.Round().Equal(mustMoney(t, "8.00")))
	})

	t.Run("an echoed display total equals the rounded exact total", func(t *testing.T) {
		t.Parallel()
		exact := mustMoney(t, "57.976")
		echoed := mustMoney(t, "57.98")

		assert.False(t, exact.Equal(echoed))
		assert.True(t, exact.Round().Equal(echoed.Round()))
	})

	t.Run("already-rounded amounts are unchanged", func(t *testing.T) {
		t.Parallel()
		m := mustMoney(t, "10.00")
		assert.True(t, m.Equal(m.Round()))
	})
}

func TestComparisons(t *testing.T) {
	t.Parallel()

	a := mustMoney(t, "99.99")
	b := mustMoney(t, "100.00")

	assert.True(t, a.LessThan(b))
	assert.True(t, b.GreaterThanOrEqual(b), "boundary is inclusive")
	assert.True(t, a.Min(b).Equal(a))
	assert.True(t, money.Zero.IsZero())
	assert.True(t, mustMoney(t, "1.0").Equal(mustMoney(t, "1.00")))
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	type payload struct {
		Total money.Money `json:"total"`
	}

	raw, err := json.Marshal(payload{Total: mustMoney(t, "64.00")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"64.00"}`, string(raw))

	var back payload
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back.Total.Equal(mustMoney(t, "64.00")))
}
