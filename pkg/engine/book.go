package engine

import (
	"sort"
	"time"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

// Book holds the live orders of one run in insertion order. Identifiers are
// a per-run counter so that replays produce byte-identical trade logs.
type Book struct {
	orders []*Order
	nextID OrderID
}

func NewBook() *Book {
	return &Book{}
}

// Submit validates the order and enqueues it. The returned identifier is
// stable across replays of the same run.
func (b *Book) Submit(order Order, at time.Time) (OrderID, error) {
	if err := order.validate(); err != nil {
		return 0, err
	}
	b.nextID++
	order.ID = b.nextID
	order.Status = StatusPending
	order.CreatedAt = at
	order.Filled = fixed.Zero
	b.orders = append(b.orders, &order)
	return order.ID, nil
}

func (b *Book) Cancel(id OrderID) error {
	order := b.find(id)
	if order == nil {
		return ErrUnknownOrder
	}
	order.Status = StatusCancelled
	b.compact()
	return nil
}

// Modify replaces the governing price of a live order: the limit price for
// limit orders, the stop price for stop kinds. Market orders have no price
// to modify.
func (b *Book) Modify(id OrderID, price fixed.Point) error {
	order := b.find(id)
	if order == nil {
		return ErrUnknownOrder
	}
	if !price.IsPos() {
		return ErrInvalidOrder
	}
	switch order.Kind {
	case KindLimit:
		order.LimitPrice = price
	case KindStopLoss, KindTakeProfit, KindTrailingStop:
		order.StopPrice = price
	default:
		return ErrInvalidOrder
	}
	return nil
}

// Open returns copies of the live orders, preserving insertion order.
func (b *Book) Open() []Order {
	out := make([]Order, 0, len(b.orders))
	for _, order := range b.orders {
		out = append(out, *order)
	}
	return out
}

func (b *Book) find(id OrderID) *Order {
	for _, order := range b.orders {
		if order.ID == id && !order.Status.Terminal() {
			return order
		}
	}
	return nil
}

func (b *Book) compact() {
	live := b.orders[:0]
	for _, order := range b.orders {
		if !order.Status.Terminal() {
			live = append(live, order)
		}
	}
	b.orders = live
}

// expireOpen marks every remaining live order Expired. Called once when the
// run completes.
func (b *Book) expireOpen() {
	for _, order := range b.orders {
		if !order.Status.Terminal() {
			order.Status = StatusExpired
		}
	}
	b.compact()
}

// ratchetTrailing tightens trailing-stop triggers using the previous
// candle's favorable extreme. The trigger never relaxes, and an order only
// ratchets on movement that happened strictly after its submission.
func (b *Book) ratchetTrailing(prev market.Candle) {
	for _, order := range b.orders {
		if order.Kind != KindTrailingStop || order.Status.Terminal() {
			continue
		}
		if !order.CreatedAt.Before(prev.TimeStamp) {
			continue
		}
		distance := order.TrailPercent.Div(fixed.Hundred)
		if order.Side == SideSell {
			candidate := prev.High.Mul(fixed.One.Sub(distance))
			if candidate.Gt(order.StopPrice) {
				order.StopPrice = candidate
			}
		} else {
			candidate := prev.Low.Mul(fixed.One.Add(distance))
			if candidate.Lt(order.StopPrice) {
				order.StopPrice = candidate
			}
		}
	}
}

// candidate is one order that executes against the current candle, with its
// resolved fill price and the trigger level used by the intrabar ordering.
type candidate struct {
	order   *Order
	price   fixed.Point
	trigger fixed.Point
	maker   bool
}

// candidates resolves which live orders execute against the candle and at
// what price, ordered by the configured intrabar policy: stop-triggered
// exits first, then entries; within a category the assumed path is low->high
// for bullish candles and high->low for bearish ones.
func (b *Book) candidates(c market.Candle, cfg Config) []candidate {
	var exits, entries []candidate

	for _, order := range b.orders {
		if order.Status.Terminal() {
			continue
		}
		cand, ok := resolveOrder(order, c, cfg.SlippageRate)
		if !ok {
			continue
		}
		if order.Kind.IsExit() {
			exits = append(exits, cand)
		} else {
			entries = append(entries, cand)
		}
	}

	switch cfg.Intrabar {
	case IntrabarPessimistic:
		// Adverse-first: stop-losses and trailing stops before take-profits,
		// insertion order within each group.
		sort.SliceStable(exits, func(i, j int) bool {
			return exits[i].order.Kind != KindTakeProfit && exits[j].order.Kind == KindTakeProfit
		})
	default:
		sortByPath(exits, c.Bullish())
		sortByPath(entries, c.Bullish())
	}

	return append(exits, entries...)
}

func sortByPath(cands []candidate, bullish bool) {
	sort.SliceStable(cands, func(i, j int) bool {
		if bullish {
			return cands[i].trigger.Lt(cands[j].trigger)
		}
		return cands[i].trigger.Gt(cands[j].trigger)
	})
}

// resolveOrder decides whether one order executes against the candle. The
// switch is exhaustive over Kind: adding a kind means adding a case here.
func resolveOrder(order *Order, c market.Candle, slippage fixed.Point) (candidate, bool) {
	switch order.Kind {
	case KindMarket:
		// Fills immediately at the open, slippage against the trader.
		return candidate{
			order:   order,
			price:   slip(c.Open, order.Side, slippage),
			trigger: c.Open,
		}, true

	case KindLimit:
		limit := order.LimitPrice
		if order.Side == SideBuy {
			if c.Low.Gt(limit) {
				return candidate{}, false
			}
			// A gap through the limit honors the better opening price.
			price := limit.Min(c.Open)
			return candidate{order: order, price: price, trigger: limit, maker: price.Eq(limit)}, true
		}
		if c.High.Lt(limit) {
			return candidate{}, false
		}
		price := limit.Max(c.Open)
		return candidate{order: order, price: price, trigger: limit, maker: price.Eq(limit)}, true

	case KindStopLoss, KindTrailingStop:
		stop := order.StopPrice
		if order.Side == SideSell {
			if c.Low.Gt(stop) {
				return candidate{}, false
			}
			// A gap below the stop fills at the worse opening price.
			raw := stop.Min(c.Open)
			return candidate{order: order, price: slip(raw, order.Side, slippage), trigger: stop}, true
		}
		if c.High.Lt(stop) {
			return candidate{}, false
		}
		raw := stop.Max(c.Open)
		return candidate{order: order, price: slip(raw, order.Side, slippage), trigger: stop}, true

	case KindTakeProfit:
		stop := order.StopPrice
		if order.Side == SideSell {
			if c.High.Lt(stop) {
				return candidate{}, false
			}
			raw := stop.Max(c.Open)
			return candidate{order: order, price: slip(raw, order.Side, slippage), trigger: stop}, true
		}
		if c.Low.Gt(stop) {
			return candidate{}, false
		}
		raw := stop.Min(c.Open)
		return candidate{order: order, price: slip(raw, order.Side, slippage), trigger: stop}, true

	default:
		return candidate{}, false
	}
}

// slip moves a taker fill price against the trader.
func slip(price fixed.Point, side Side, rate fixed.Point) fixed.Point {
	if rate.IsZero() {
		return price
	}
	if side == SideBuy {
		return price.Mul(fixed.One.Add(rate))
	}
	return price.Mul(fixed.One.Sub(rate))
}
