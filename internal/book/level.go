// Package book implements the FIFO price-level queue and the per-side
// ordered index of price levels (the half-book) that the matching engine
// is built on.
package book

import (
	"container/list"

	"limitbook/internal/common"
)

// Handle identifies an order's position inside a Level for O(1) removal.
// It stays valid across unrelated pushes and removals on the same level.
type Handle = *list.Element

// Level is a FIFO queue of live orders resting at one price on one side,
// plus the aggregate of their remaining quantity. An empty level must not
// be kept around by its owning HalfBook (book.HalfBook.DropLevel).
type Level struct {
	PriceTick common.PriceTick
	Side      common.Side

	orders       *list.List
	aggregateQty uint64
}

// NewLevel creates an empty level for the given price and side.
func NewLevel(price common.PriceTick, side common.Side) *Level {
	return &Level{
		PriceTick: price,
		Side:      side,
		orders:    list.New(),
	}
}

// AggregateQuantity is the sum of remaining quantity over every live order
// resting in the level.
func (l *Level) AggregateQuantity() uint64 {
	return l.aggregateQty
}

// IsEmpty reports whether the level currently holds any live order.
func (l *Level) IsEmpty() bool {
	return l.orders.Len() == 0
}

// PushBack appends order to the tail of the queue and returns a stable
// handle for later O(1) removal.
func (l *Level) PushBack(order *common.Order) Handle {
	l.aggregateQty += order.Remaining()
	return l.orders.PushBack(order)
}

// PeekFront returns the order at the head of the queue, or nil if the
// level is empty.
func (l *Level) PeekFront() *common.Order {
	front := l.orders.Front()
	if front == nil {
		return nil
	}
	return front.Value.(*common.Order)
}

// PopFront removes the head of the queue. The caller must already have
// accounted for its remaining quantity via Fill — PopFront itself does
// not touch the aggregate, since by the time an order is popped its
// remaining quantity is always zero (fully matched orders) under this
// engine's eager-cancellation strategy.
func (l *Level) PopFront() {
	if front := l.orders.Front(); front != nil {
		l.orders.Remove(front)
	}
}

// Fill records that qty of the level's resting liquidity has just been
// matched away, keeping the aggregate in sync with live remaining.
func (l *Level) Fill(qty uint64) {
	l.aggregateQty -= qty
}

// Each visits every order in the level front-to-back, stopping early if
// visit returns false. It exists for diagnostics (invariant checking) —
// the matching loop itself only ever needs PeekFront.
func (l *Level) Each(visit func(*common.Order) bool) {
	for e := l.orders.Front(); e != nil; e = e.Next() {
		if !visit(e.Value.(*common.Order)) {
			return
		}
	}
}

// Remove evicts the order at handle — used for direct (eager) cancellation
// of an order that is not necessarily at the front of the queue.
func (l *Level) Remove(handle Handle) {
	order := handle.Value.(*common.Order)
	l.aggregateQty -= order.Remaining()
	l.orders.Remove(handle)
}
