package engine

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tetuaoro/bts-rs/pkg/market"
	"github.com/tetuaoro/bts-rs/pkg/utility"
	"github.com/tetuaoro/bts-rs/pkg/utility/fixed"
)

type State int

const (
	StateNotStarted State = iota
	StateRunning
	StateCompleted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "not-started"
	}
}

// ErrNoCandles reports a run over an empty candle sequence.
var ErrNoCandles = errors.New("candle sequence is empty")

// IndicatorSet carries precomputed indicator series aligned index-for-index
// with the candle sequence. The engine computes nothing from them; it only
// slices the current value into each snapshot.
type IndicatorSet map[string][]fixed.Point

// Result is everything a run produced. Equity curve and trade log are
// append-only during the run and read-only afterwards; on an abort they
// cover the candles processed up to the failure point.
type Result struct {
	State       State
	EquityCurve []EquitySample
	Trades      []TradeEntry
	Rejections  []Rejection
	Position    Position
	Wallet      WalletSnapshot
}

// Simulator folds the candle sequence into an equity curve and a trade log.
// One simulator owns one run and all of its state; independent runs may
// execute concurrently without any sharing.
type Simulator struct {
	logger *zap.Logger
	cfg    Config
	fees   FeeModel

	state    State
	book     *Book
	position Position
	wallet   *Wallet

	equityCurve []EquitySample
	trades      []TradeEntry
	rejections  []Rejection
	pending     []Rejection

	lastCandle market.Candle
	hasLast    bool
}

func NewSimulator(logger *zap.Logger, cfg Config) (*Simulator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	wallet, err := NewWallet(cfg.InitialBalance)
	if err != nil {
		return nil, err
	}
	return &Simulator{
		logger:   logger,
		cfg:      cfg,
		fees:     cfg.feeModel(),
		state:    StateNotStarted,
		book:     NewBook(),
		position: newPosition(cfg.Leverage),
		wallet:   wallet,
	}, nil
}

func (s *Simulator) State() State {
	return s.state
}

// Run executes the simulation over the candle sequence. It is strictly
// sequential: fills precede the equity sample that reflects them, and
// strategy intents never affect the candle that produced them. A fatal data
// error aborts the run, preserving the equity curve and trade log up to the
// failure point in the returned result.
func (s *Simulator) Run(candles []market.Candle, strat Strategy, indicators IndicatorSet) (result *Result, err error) {
	if s.state != StateNotStarted {
		return nil, ErrRunFinished
	}
	if len(candles) == 0 {
		return nil, ErrNoCandles
	}
	for name, series := range indicators {
		if len(series) != len(candles) {
			return nil, fmt.Errorf("indicator %q has %d values for %d candles", name, len(series), len(candles))
		}
	}

	s.state = StateRunning
	s.logger.Info("simulation started",
		zap.Stringer("execution_id", utility.GetExecutionID()),
		zap.Int("candles", len(candles)),
		zap.String("initial_balance", s.cfg.InitialBalance.String()))

	defer func() {
		if r := recover(); r != nil {
			s.state = StateAborted
			result = s.result()
			err = fmt.Errorf("fatal numeric error: %v", r)
			s.logger.Error("simulation aborted", zap.Any("panic", r))
		}
	}()

	for i, candle := range candles {
		if abortErr := s.checkCandle(candle); abortErr != nil {
			s.state = StateAborted
			s.logger.Error("simulation aborted", zap.Error(abortErr))
			return s.result(), abortErr
		}

		// 1. Trailing stops ratchet on the previous candle's favorable
		// movement, so a trigger is never tested against the bar that
		// produced it.
		if s.hasLast {
			s.book.ratchetTrailing(s.lastCandle)
		}

		// 2-3. Resolve fills and apply each one to position and wallet.
		s.resolveFills(candle)

		if s.cfg.CloseOnFinish && i == len(candles)-1 {
			s.liquidate(candle)
		}

		// 4. Mark to market and sample the equity curve.
		s.position.mark(candle.Close)
		s.equityCurve = append(s.equityCurve, EquitySample{
			TimeStamp: candle.TimeStamp,
			Equity:    s.wallet.Equity(s.position.UnrealizedPnL),
			Balance:   s.wallet.Cash(),
		})

		// 5. Strategy callback; intents take effect on the next candle.
		if strat != nil {
			intents := strat.OnCandle(s.snapshot(i, candle, indicators))
			s.applyIntents(intents, candle.TimeStamp)
		}

		s.lastCandle = candle
		s.hasLast = true
	}

	s.book.expireOpen()
	s.state = StateCompleted
	s.logger.Info("simulation completed",
		zap.Int("trades", len(s.trades)),
		zap.Int("rejections", len(s.rejections)),
		zap.String("final_equity", s.wallet.Equity(s.position.UnrealizedPnL).String()))
	return s.result(), nil
}

func (s *Simulator) checkCandle(candle market.Candle) error {
	if err := candle.Validate(); err != nil {
		return err
	}
	if s.hasLast && !candle.TimeStamp.After(s.lastCandle.TimeStamp) {
		return market.ErrInvalidCandle{Candle: candle, Reason: "timestamp not strictly increasing"}
	}
	return nil
}

func (s *Simulator) resolveFills(candle market.Candle) {
	for _, cand := range s.book.candidates(candle, s.cfg) {
		quantity := cand.order.Remaining()
		if s.cfg.MaxFillPerCandle.IsPos() {
			quantity = quantity.Min(s.cfg.MaxFillPerCandle)
		}

		ch := s.position.preview(cand.order.Side, quantity, cand.price)
		fee := s.fees.Fee(cand.price, quantity, cand.maker)

		// Margin gates only the exposure-increasing part of a fill; a pure
		// reduction can never be margin-blocked.
		if !ch.openedQty.IsZero() && !s.wallet.canApply(ch, cand.price, s.cfg.Leverage, fee, s.cfg.MarginMinimum) {
			cand.order.Status = StatusCancelled
			s.reject(cand.order.ID, ErrInsufficientMargin, candle.TimeStamp)
			s.logger.Warn("fill rejected",
				zap.Int64("order_id", int64(cand.order.ID)),
				zap.Stringer("kind", cand.order.Kind),
				zap.String("price", cand.price.String()),
				zap.String("quantity", quantity.String()))
			continue
		}

		s.position.apply(cand.order.Side, quantity, cand.price)
		s.wallet.applyFill(ch, cand.price, s.cfg.Leverage, fee)

		cand.order.Filled = cand.order.Filled.Add(quantity)
		if cand.order.Filled.Eq(cand.order.Quantity) {
			cand.order.Status = StatusFilled
		} else {
			cand.order.Status = StatusPartiallyFilled
		}

		s.trades = append(s.trades, TradeEntry{
			OrderID:     cand.order.ID,
			Side:        cand.order.Side,
			Kind:        cand.order.Kind,
			Quantity:    quantity,
			Price:       cand.price,
			Fee:         fee,
			Maker:       cand.maker,
			TimeStamp:   candle.TimeStamp,
			RealizedPnL: ch.realized,
		})
		s.logger.Debug("fill applied",
			zap.Int64("order_id", int64(cand.order.ID)),
			zap.Stringer("side", cand.order.Side),
			zap.Stringer("kind", cand.order.Kind),
			zap.String("price", cand.price.String()),
			zap.String("quantity", quantity.String()))
	}
	s.book.compact()
}

// liquidate closes the open position at the candle close, taker fees
// applied. The synthetic trade carries order id zero.
func (s *Simulator) liquidate(candle market.Candle) {
	if s.position.Side == PositionFlat {
		return
	}
	side := SideSell
	if s.position.Side == PositionShort {
		side = SideBuy
	}
	quantity := s.position.Quantity
	price := candle.Close
	fee := s.fees.Fee(price, quantity, false)

	ch := s.position.apply(side, quantity, price)
	s.wallet.applyFill(ch, price, s.cfg.Leverage, fee)

	s.trades = append(s.trades, TradeEntry{
		OrderID:     0,
		Side:        side,
		Kind:        KindMarket,
		Quantity:    quantity,
		Price:       price,
		Fee:         fee,
		TimeStamp:   candle.TimeStamp,
		RealizedPnL: ch.realized,
	})
	s.logger.Debug("position liquidated at run end",
		zap.String("price", price.String()),
		zap.String("quantity", quantity.String()))
}

func (s *Simulator) applyIntents(intents []Intent, at time.Time) {
	for _, intent := range intents {
		switch it := intent.(type) {
		case SubmitIntent:
			if _, err := s.book.Submit(it.Order, at); err != nil {
				s.reject(0, err, at)
			}
		case CancelIntent:
			if err := s.book.Cancel(it.ID); err != nil {
				s.reject(it.ID, err, at)
			}
		case ModifyIntent:
			if err := s.book.Modify(it.ID, it.Price); err != nil {
				s.reject(it.ID, err, at)
			}
		}
	}
}

func (s *Simulator) reject(id OrderID, err error, at time.Time) {
	rejection := Rejection{OrderID: id, Err: err, TimeStamp: at}
	s.rejections = append(s.rejections, rejection)
	s.pending = append(s.pending, rejection)
}

func (s *Simulator) snapshot(index int, candle market.Candle, indicators IndicatorSet) Snapshot {
	values := make(map[string]fixed.Point, len(indicators))
	for name, series := range indicators {
		values[name] = series[index]
	}
	snap := Snapshot{
		Index:      index,
		Candle:     candle,
		Position:   s.position,
		Wallet:     s.wallet.snapshot(s.position.UnrealizedPnL),
		Orders:     s.book.Open(),
		Indicators: values,
		Rejections: s.pending,
	}
	s.pending = nil
	return snap
}

func (s *Simulator) result() *Result {
	return &Result{
		State:       s.state,
		EquityCurve: s.equityCurve,
		Trades:      s.trades,
		Rejections:  s.rejections,
		Position:    s.position,
		Wallet:      s.wallet.snapshot(s.position.UnrealizedPnL),
	}
}
