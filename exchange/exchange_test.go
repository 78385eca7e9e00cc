package exchange

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openquant/backtester/common"
)

func d(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

func TestZeroSizeRejected(t *testing.T) {
	t.Parallel()
	_, err := NewMarketOrder("a", decimal.Zero)
	assert.ErrorIs(t, err, ErrZeroSizeOrder)
	_, err = NewLimitOrder("a", decimal.Zero, d(10))
	assert.ErrorIs(t, err, ErrZeroSizeOrder)
}

func TestOrderIDsUnique(t *testing.T) {
	t.Parallel()
	seen := make(map[common.OrderID]struct{})
	for i := 0; i < 100; i++ {
		id, err := NewOrderID()
		require.NoError(t, err)
		_, dup := seen[id]
		require.False(t, dup)
		seen[id] = struct{}{}
	}
}

func TestMarketFillsAtMid(t *testing.T) {
	t.Parallel()
	o, err := NewMarketOrder("a", d(1))
	require.NoError(t, err)
	price, ok := o.FillPrice(OHLC{Open: 10, High: 12, Low: 9})
	require.True(t, ok)
	assert.True(t, price.Equal(d(10.5)), "got %s", price)
}

func TestLimitBuyHeuristic(t *testing.T) {
	t.Parallel()
	bar := OHLC{Open: 10, High: 12, Low: 9}
	for _, ti := range []struct {
		name     string
		extremum float64
		fills    bool
		price    float64
	}{
		{name: "inside bar", extremum: 9.5, fills: true, price: 9.5},
		{name: "at the low", extremum: 9, fills: true, price: 9},
		{name: "below the low", extremum: 8.99, fills: false},
		{name: "above the open", extremum: 11, fills: true, price: 10},
	} {
		ti := ti
		t.Run(ti.name, func(t *testing.T) {
			t.Parallel()
			o, err := NewLimitOrder("a", d(1), d(ti.extremum))
			require.NoError(t, err)
			price, ok := o.FillPrice(bar)
			assert.Equal(t, ti.fills, ok)
			if ti.fills {
				assert.True(t, price.Equal(d(ti.price)), "got %s want %v", price, ti.price)
			}
		})
	}
}

func TestLimitSellHeuristic(t *testing.T) {
	t.Parallel()
	bar := OHLC{Open: 10, High: 12, Low: 9}
	for _, ti := range []struct {
		name     string
		extremum float64
		fills    bool
		price    float64
	}{
		{name: "inside bar", extremum: 11, fills: true, price: 11},
		{name: "at the high", extremum: 12, fills: true, price: 12},
		{name: "above the high", extremum: 12.01, fills: false},
		{name: "below the open", extremum: 9.5, fills: true, price: 10},
	} {
		ti := ti
		t.Run(ti.name, func(t *testing.T) {
			t.Parallel()
			o, err := NewLimitOrder("a", d(-1), d(ti.extremum))
			require.NoError(t, err)
			price, ok := o.FillPrice(bar)
			assert.Equal(t, ti.fills, ok)
			if ti.fills {
				assert.True(t, price.Equal(d(ti.price)), "got %s want %v", price, ti.price)
			}
		})
	}
}

func TestEvaluateDeltas(t *testing.T) {
	t.Parallel()
	o, err := NewLimitOrder("a", d(1), d(9.5))
	require.NoError(t, err)
	fill, ok := o.Evaluate(OHLC{Open: 10, High: 12, Low: 9})
	require.True(t, ok)
	assert.True(t, fill.Price.Equal(d(9.5)))
	assert.True(t, fill.DeltaCash.Equal(d(-9.5)), "got %s", fill.DeltaCash)
	assert.True(t, fill.DeltaEquity.Equal(d(1)))

	sell, err := NewMarketOrder("a", d(-2))
	require.NoError(t, err)
	fill, ok = sell.Evaluate(OHLC{Open: 10, High: 11, Low: 9})
	require.True(t, ok)
	assert.True(t, fill.Price.Equal(d(10)))
	assert.True(t, fill.DeltaCash.Equal(d(20)))
	assert.True(t, fill.DeltaEquity.Equal(d(-2)))
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	assert.ErrorIs(t, r.Add(nil), common.ErrNilArguments)

	o, err := NewMarketOrder("a", d(1))
	require.NoError(t, err)
	require.NoError(t, r.Add(o))
	assert.ErrorIs(t, r.Add(o), ErrDuplicateOrder)

	got, err := r.Get(o.ID)
	require.NoError(t, err)
	assert.Equal(t, o, got)

	_, err = r.Get("missing")
	assert.ErrorIs(t, err, ErrUnknownOrder)
	assert.Equal(t, 1, r.Len())
}
