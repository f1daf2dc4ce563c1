package engine

import (
	"limitbook/internal/book"
	"limitbook/internal/common"
)

// archiveCapacity bounds the ring of recently-terminal orders kept for
// diagnostic lookup after they leave the book.
const archiveCapacity = 4096

// orderLocation is the OrderIndex's bookkeeping for one resting order:
// which side and price level it lives on, and the handle needed to evict
// it in O(1) without a scan.
type orderLocation struct {
	side   common.Side
	price  common.PriceTick
	level  *book.Level
	handle book.Handle
}

// OrderBook is the matching engine for a single symbol. It owns both
// half-books, every resting order, and the index used for O(1)-ish
// cancellation. An OrderBook is not safe for concurrent use — callers
// share one across goroutines only behind a mutex or a single-consumer
// queue; Engine provides that sharding per symbol.
type OrderBook struct {
	symbol string

	bids *book.HalfBook
	asks *book.HalfBook

	index map[common.OrderId]orderLocation

	nextOrderId common.OrderId
	nextTradeId common.TradeId
	clock       common.Timestamp

	archive     []*common.Order
	archiveHead int
}

// NewOrderBook constructs an empty book for symbol.
func NewOrderBook(symbol string) *OrderBook {
	return &OrderBook{
		symbol: symbol,
		bids:   book.NewHalfBook(common.Bid),
		asks:   book.NewHalfBook(common.Ask),
		index:  make(map[common.OrderId]orderLocation),
	}
}

// Symbol returns the symbol this book matches orders for.
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

func (ob *OrderBook) tick() common.Timestamp {
	ob.clock++
	return ob.clock
}

func (ob *OrderBook) halfBook(side common.Side) *book.HalfBook {
	if side == common.Bid {
		return ob.bids
	}
	return ob.asks
}

// crosses reports whether a taker on side at limit price would be able to
// trade against the opposite half-book's best level.
func crosses(side common.Side, limit common.PriceTick, oppBest common.PriceTick) bool {
	if side == common.Bid {
		return oppBest <= limit
	}
	return oppBest >= limit
}

// Submit validates req, matches it against resting liquidity per
// price-time priority, and applies the requested time-in-force policy to
// any remainder. It never partially applies a rejected request.
func (ob *OrderBook) Submit(req SubmitRequest) (SubmitResult, error) {
	if req.Symbol == "" {
		return SubmitResult{}, ErrEmptySymbol
	}
	if req.PriceTick == 0 {
		return SubmitResult{}, ErrInvalidPrice
	}
	if req.Quantity == 0 {
		return SubmitResult{}, ErrInvalidQuantity
	}

	if req.TimeInForce == common.FOK && !ob.canFullyFill(req.Side, req.PriceTick, req.Quantity) {
		return SubmitResult{Status: RejectedFOK}, nil
	}

	ob.nextOrderId++
	taker := &common.Order{
		Id:          ob.nextOrderId,
		SubmitterId: req.SubmitterId,
		Symbol:      req.Symbol,
		Side:        req.Side,
		PriceTick:   req.PriceTick,
		TimeInForce: req.TimeInForce,
		Quantity:    req.Quantity,
		Timestamp:   ob.tick(),
	}

	trades := ob.match(taker)

	switch req.TimeInForce {
	case common.IOC:
		ob.archiveOrder(taker)
		return SubmitResult{Trades: trades, Status: ioStatus(taker)}, nil
	case common.FOK:
		// canFullyFill already guaranteed this, but stay honest about it.
		ob.archiveOrder(taker)
		return SubmitResult{Trades: trades, Status: FullyFilled}, nil
	default: // GTC
		if taker.Remaining() > 0 {
			ob.rest(taker)
			id := taker.Id
			status := Accepted
			if len(trades) > 0 {
				status = PartiallyFilledAndResting
			}
			return SubmitResult{OrderId: &id, Trades: trades, Status: status}, nil
		}
		ob.archiveOrder(taker)
		return SubmitResult{Trades: trades, Status: FullyFilled}, nil
	}
}

// ioStatus reports the outcome of an IOC submission. IOC never rests: a
// full fill is FullyFilled, anything else (partial or no fill at all) has
// its remainder discarded and is reported as CancelledIOC.
func ioStatus(taker *common.Order) SubmitStatus {
	if taker.Remaining() == 0 {
		return FullyFilled
	}
	return CancelledIOC
}

// canFullyFill computes, without mutating any state, whether a taker on
// side at limit with quantity qty would fully fill against the opposite
// half-book. Used to precheck FOK orders before any mutation happens.
func (ob *OrderBook) canFullyFill(side common.Side, limit common.PriceTick, qty uint64) bool {
	opp := ob.halfBook(side.Opposite())
	var available uint64
	full := false
	opp.WalkFromBest(opp.Len(), func(lvl *book.Level) bool {
		if !crosses(side, limit, lvl.PriceTick) {
			return false
		}
		available += lvl.AggregateQuantity()
		if available >= qty {
			full = true
			return false
		}
		return true
	})
	return full
}

// match runs the core matching loop: it consumes resting liquidity from
// the opposite half-book while the book crosses and the taker still has
// quantity remaining, emitting a trade per fill.
func (ob *OrderBook) match(taker *common.Order) []common.Trade {
	var trades []common.Trade
	opp := ob.halfBook(taker.Side.Opposite())

	for taker.Remaining() > 0 {
		lvl, ok := opp.Best()
		if !ok || !crosses(taker.Side, taker.PriceTick, lvl.PriceTick) {
			break
		}

		maker := lvl.PeekFront()
		if maker == nil {
			// Invariant violation guard: a level present in the half-book
			// must never be empty. Treat this as fatal rather than loop.
			panic("limitbook: price level present with no resting orders")
		}

		qty := min(maker.Remaining(), taker.Remaining())

		ob.nextTradeId++
		trade := common.Trade{
			Id:           ob.nextTradeId,
			Symbol:       ob.symbol,
			TakerOrderId: taker.Id,
			MakerOrderId: maker.Id,
			TakerUserId:  taker.SubmitterId,
			MakerUserId:  maker.SubmitterId,
			PriceTick:    lvl.PriceTick,
			Quantity:     qty,
			Timestamp:    ob.tick(),
		}
		trades = append(trades, trade)

		maker.QuantityFilled += qty
		taker.QuantityFilled += qty
		lvl.Fill(qty)

		if maker.Remaining() == 0 {
			lvl.PopFront()
			delete(ob.index, maker.Id)
			ob.archiveOrder(maker)
		}
		if lvl.IsEmpty() {
			opp.DropLevel(lvl.PriceTick)
		}
	}

	return trades
}

// rest inserts order into its own half-book at its limit price and
// records it in the OrderIndex. Only called for GTC orders with
// remaining quantity after matching.
func (ob *OrderBook) rest(order *common.Order) {
	hb := ob.halfBook(order.Side)
	lvl := hb.LevelOrCreate(order.PriceTick)
	handle := lvl.PushBack(order)
	ob.index[order.Id] = orderLocation{
		side:   order.Side,
		price:  order.PriceTick,
		level:  lvl,
		handle: handle,
	}
}

// Cancel removes a resting order from the book by id. Uses eager
// cancellation: the order is evicted from its queue immediately via the
// OrderIndex handle.
func (ob *OrderBook) Cancel(id common.OrderId) (CancelResult, error) {
	loc, ok := ob.index[id]
	if !ok {
		return CancelResult{}, ErrOrderNotFound
	}

	order := loc.handle.Value.(*common.Order)
	order.IsCancelled = true
	loc.level.Remove(loc.handle)
	delete(ob.index, id)

	hb := ob.halfBook(loc.side)
	if loc.level.IsEmpty() {
		hb.DropLevel(loc.price)
	}

	ob.archiveOrder(order)
	return CancelResult{Success: true}, nil
}

// Depth walks each half-book best-to-worst, emitting up to maxLevels
// (price, aggregate quantity) pairs per side. Depth never mutates state.
func (ob *OrderBook) Depth(maxLevels int) DepthSnapshot {
	snapshot := DepthSnapshot{Symbol: ob.symbol}

	ob.bids.WalkFromBest(maxLevels, func(lvl *book.Level) bool {
		snapshot.Bids = append(snapshot.Bids, DepthLevel{PriceTick: lvl.PriceTick, Quantity: lvl.AggregateQuantity()})
		return true
	})
	ob.asks.WalkFromBest(maxLevels, func(lvl *book.Level) bool {
		snapshot.Asks = append(snapshot.Asks, DepthLevel{PriceTick: lvl.PriceTick, Quantity: lvl.AggregateQuantity()})
		return true
	})

	return snapshot
}

// archiveOrder retains a terminal order's final state in a bounded ring
// for diagnostic lookup after it has left the live book.
func (ob *OrderBook) archiveOrder(order *common.Order) {
	if ob.archive == nil {
		ob.archive = make([]*common.Order, archiveCapacity)
	}
	ob.archive[ob.archiveHead] = order
	ob.archiveHead = (ob.archiveHead + 1) % archiveCapacity
}

// Archived looks up a terminal order previously evicted from the book.
// It is a best-effort diagnostic aid, not part of the core's correctness
// surface: entries are evicted oldest-first once the ring fills.
func (ob *OrderBook) Archived(id common.OrderId) (*common.Order, bool) {
	for _, order := range ob.archive {
		if order != nil && order.Id == id {
			return order, true
		}
	}
	return nil, false
}
