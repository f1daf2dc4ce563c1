package engine

import (
	"fmt"

	"limitbook/internal/book"
	"limitbook/internal/common"
)

// CheckInvariants walks the whole book and verifies that it is uncrossed
// and that every level's orders are consistent with the order index and
// with each other (fill conservation is a property of Submit's return
// values rather than of book shape, and is checked directly by tests
// that call Submit). It is not called on the hot path — production code
// relies on the matching loop's own narrower invariants inline; this
// full walk is for tests to run after every mutating step.
func (ob *OrderBook) CheckInvariants() error {
	if bestBid, ok := ob.bids.Best(); ok {
		if bestAsk, ok := ob.asks.Best(); ok {
			if bestBid.PriceTick >= bestAsk.PriceTick {
				return fmt.Errorf("crossed book: best bid %s >= best ask %s", bestBid.PriceTick, bestAsk.PriceTick)
			}
		}
	}

	seen := make(map[common.OrderId]bool, len(ob.index))
	if err := checkHalfBook(ob.bids, common.Bid, seen); err != nil {
		return err
	}
	if err := checkHalfBook(ob.asks, common.Ask, seen); err != nil {
		return err
	}

	if len(seen) != len(ob.index) {
		return fmt.Errorf("order index has %d entries but half-books contain %d live orders", len(ob.index), len(seen))
	}
	for id := range seen {
		if _, ok := ob.index[id]; !ok {
			return fmt.Errorf("order %d resting in a level but missing from the order index", id)
		}
	}

	return nil
}

func checkHalfBook(hb *book.HalfBook, side common.Side, seen map[common.OrderId]bool) error {
	var err error
	hb.WalkFromBest(hb.Len(), func(lvl *book.Level) bool {
		if lvl.IsEmpty() {
			err = fmt.Errorf("empty level %s retained on %s side", lvl.PriceTick, side)
			return false
		}
		var sum uint64
		lvl.Each(func(order *common.Order) bool {
			if order.Side != side {
				err = fmt.Errorf("order %d has side %s but rests on %s half-book", order.Id, order.Side, side)
				return false
			}
			if order.PriceTick != lvl.PriceTick {
				err = fmt.Errorf("order %d has price %s but rests on level %s", order.Id, order.PriceTick, lvl.PriceTick)
				return false
			}
			if order.Remaining() == 0 {
				err = fmt.Errorf("order %d rests with zero remaining quantity", order.Id)
				return false
			}
			sum += order.Remaining()
			seen[order.Id] = true
			return true
		})
		if err != nil {
			return false
		}
		if sum != lvl.AggregateQuantity() {
			err = fmt.Errorf("level %s aggregate %d does not match summed remaining %d", lvl.PriceTick, lvl.AggregateQuantity(), sum)
			return false
		}
		return true
	})
	return err
}

