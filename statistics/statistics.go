// Package statistics accumulates a run summary through the engine's
// callbacks: per-bar total value, order activity, overall return and
// maximum drawdown.
package statistics

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"

	"github.com/openquant/backtester/common"
	"github.com/openquant/backtester/engine"
	"github.com/openquant/backtester/eventtypes/databar"
	"github.com/openquant/backtester/eventtypes/order"
)

var oneHundred = decimal.NewFromInt(100)

// New returns an empty statistic
func New() *Statistic {
	return &Statistic{}
}

// Attach wires the statistic into settings ahead of any callbacks already
// present, which still run afterwards
func (s *Statistic) Attach(set *engine.Settings) {
	userData := set.OnDataEvent
	set.OnDataEvent = func(bt *engine.BackTest, e *databar.CompletedProcessing) error {
		if err := s.OnData(bt, e); err != nil {
			return err
		}
		if userData != nil {
			return userData(bt, e)
		}
		return nil
	}
	userOrder := set.OnOrderEvent
	set.OnOrderEvent = func(bt *engine.BackTest, e order.Event) error {
		if err := s.OnOrder(bt, e); err != nil {
			return err
		}
		if userOrder != nil {
			return userOrder(bt, e)
		}
		return nil
	}
}

// OnData samples the portfolio for the completed bar. The portfolio's
// own total value updates only on fills, so the sample marks holdings to
// the freshest close itself without mutating portfolio state
func (s *Statistic) OnData(bt *engine.BackTest, _ *databar.CompletedProcessing) error {
	if !s.initialSet {
		s.initial = bt.Portfolio().TotalValue()
		s.initialSet = true
	}
	s.barValues = append(s.barValues, BarValue{
		Time:  bt.CurrentBarStart(),
		Value: markedValue(bt),
	})
	return nil
}

// markedValue prices every holding at the most recent completed bar's
// close on top of uncommitted cash
func markedValue(bt *engine.BackTest) decimal.Decimal {
	total := bt.Portfolio().BuyingPower()
	closeField := common.FieldID(bt.Config().Columns.Close)
	for asset, size := range bt.Portfolio().Holdings() {
		v, err := bt.Lattice().Value(0, asset, closeField)
		if err != nil {
			continue
		}
		if f, ok := v.Float64(); ok {
			total = total.Add(size.Mul(decimal.NewFromFloat(f)))
		}
	}
	return total
}

// OnOrder counts lifecycle events
func (s *Statistic) OnOrder(_ *engine.BackTest, e order.Event) error {
	switch e.(type) {
	case *order.Ack:
		s.acks++
	case *order.Fill:
		s.fills++
	}
	return nil
}

// BarValues returns the sampled per-bar total values in bar order
func (s *Statistic) BarValues() []BarValue {
	out := make([]BarValue, len(s.barValues))
	copy(out, s.barValues)
	return out
}

// Results computes the summary for the run so far
func (s *Statistic) Results() Results {
	r := Results{
		Bars:         len(s.barValues),
		OrdersPlaced: s.acks,
		OrdersFilled: s.fills,
		InitialValue: s.initial,
	}
	if len(s.barValues) == 0 {
		return r
	}
	r.FinalValue = s.barValues[len(s.barValues)-1].Value
	if s.initial.IsPositive() {
		r.ReturnPercent = r.FinalValue.Sub(s.initial).Div(s.initial).Mul(oneHundred)
	}

	peak := s.barValues[0].Value
	maxDraw := decimal.Zero
	for _, bv := range s.barValues {
		if bv.Value.GreaterThan(peak) {
			peak = bv.Value
		}
		if peak.IsPositive() {
			draw := peak.Sub(bv.Value).Div(peak).Mul(oneHundred)
			if draw.GreaterThan(maxDraw) {
				maxDraw = draw
			}
		}
	}
	r.MaxDrawdownPercent = maxDraw
	return r
}

// PrintResult writes a human-readable summary
func (s *Statistic) PrintResult(w io.Writer) {
	r := s.Results()
	fmt.Fprintf(w, "bars processed:  %d\n", r.Bars)
	fmt.Fprintf(w, "orders placed:   %d\n", r.OrdersPlaced)
	fmt.Fprintf(w, "orders filled:   %d\n", r.OrdersFilled)
	fmt.Fprintf(w, "initial value:   %s\n", r.InitialValue)
	fmt.Fprintf(w, "final value:     %s\n", r.FinalValue)
	fmt.Fprintf(w, "return:          %s%%\n", r.ReturnPercent.StringFixed(4))
	fmt.Fprintf(w, "max drawdown:    %s%%\n", r.MaxDrawdownPercent.StringFixed(4))
}
