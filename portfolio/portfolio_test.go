package portfolio

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

func TestNew(t *testing.T) {
	t.Parallel()
	_, err := New(d(-1))
	assert.ErrorIs(t, err, ErrNegativePrincipal)

	p, err := New(d(100000))
	require.NoError(t, err)
	assert.True(t, p.BuyingPower().Equal(d(100000)))
	assert.True(t, p.TotalValue().Equal(d(100000)))
	assert.True(t, p.Equity("aapl").IsZero())
}

func TestProcessFill(t *testing.T) {
	t.Parallel()
	p, err := New(d(1000))
	require.NoError(t, err)

	closes := map[common.AssetID]decimal.Decimal{"aapl": d(11)}
	// buy 2 @ 9.5
	p.ProcessFill("aapl", d(2), d(-19), closes)

	assert.True(t, p.Equity("aapl").Equal(d(2)))
	assert.True(t, p.BuyingPower().Equal(d(981)))
	assert.True(t, p.TotalValue().Equal(d(1003)), "got %s", p.TotalValue())
}

func TestTotalValueInvariant(t *testing.T) {
	t.Parallel()
	p, err := New(d(500))
	require.NoError(t, err)

	closes := map[common.AssetID]decimal.Decimal{"a": d(10), "b": d(20)}
	fills := []struct {
		asset       common.AssetID
		deltaEquity float64
		deltaCash   float64
	}{
		{asset: "a", deltaEquity: 3, deltaCash: -30},
		{asset: "b", deltaEquity: 1, deltaCash: -21},
		{asset: "a", deltaEquity: -2, deltaCash: 19},
	}
	for _, f := range fills {
		p.ProcessFill(f.asset, d(f.deltaEquity), d(f.deltaCash), closes)
		want := p.BuyingPower()
		for asset, size := range p.Holdings() {
			want = want.Add(size.Mul(closes[asset]))
		}
		assert.True(t, p.TotalValue().Equal(want))
	}
}

func TestCanAfford(t *testing.T) {
	t.Parallel()
	p, err := New(d(5))
	require.NoError(t, err)
	assert.True(t, p.CanAfford(d(-5)))
	assert.False(t, p.CanAfford(d(-5.01)))
	assert.True(t, p.CanAfford(d(100)))
}

func TestHoldingsIsACopy(t *testing.T) {
	t.Parallel()
	p, err := New(d(100))
	require.NoError(t, err)
	p.ProcessFill("a", d(1), d(-10), map[common.AssetID]decimal.Decimal{"a": d(10)})
	h := p.Holdings()
	h["a"] = d(99)
	assert.True(t, p.Equity("a").Equal(d(1)))
}
