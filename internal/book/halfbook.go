package book

import (
	"github.com/tidwall/btree"

	"limitbook/internal/common"
)

// HalfBook is the ordered price index for one side of one symbol's book,
// backed by a tidwall/btree.BTreeG keyed on price tick. Both sides share
// this one implementation; the ordering direction is selected by the
// comparator NewHalfBook builds from the side rather than duplicated per
// side.
type HalfBook struct {
	side   common.Side
	levels *btree.BTreeG[*Level]
}

// NewHalfBook constructs a half-book for side. Bids order best-first as
// highest tick first; asks order best-first as lowest tick first.
func NewHalfBook(side common.Side) *HalfBook {
	var less func(a, b *Level) bool
	if side == common.Bid {
		less = func(a, b *Level) bool { return a.PriceTick > b.PriceTick }
	} else {
		less = func(a, b *Level) bool { return a.PriceTick < b.PriceTick }
	}
	return &HalfBook{
		side:   side,
		levels: btree.NewBTreeG(less),
	}
}

// Best returns the best (price-priority-first) level, or false if the
// half-book has no resting liquidity.
func (h *HalfBook) Best() (*Level, bool) {
	return h.levels.Min()
}

// LevelOrCreate returns the level at price, creating an empty one and
// inserting it if it does not already exist.
func (h *HalfBook) LevelOrCreate(price common.PriceTick) *Level {
	if lvl, ok := h.levels.Get(NewLevel(price, h.side)); ok {
		return lvl
	}
	lvl := NewLevel(price, h.side)
	h.levels.Set(lvl)
	return lvl
}

// Level looks up the level at price without creating it.
func (h *HalfBook) Level(price common.PriceTick) (*Level, bool) {
	return h.levels.Get(NewLevel(price, h.side))
}

// DropLevel removes the level at price. Must be called exactly when a
// level becomes empty — HalfBook never retains empty levels.
func (h *HalfBook) DropLevel(price common.PriceTick) {
	h.levels.Delete(NewLevel(price, h.side))
}

// Len reports the number of distinct live price levels.
func (h *HalfBook) Len() int {
	return h.levels.Len()
}

// WalkFromBest visits up to limit levels, best price first, stopping early
// if visit returns false.
func (h *HalfBook) WalkFromBest(limit int, visit func(*Level) bool) {
	if limit <= 0 {
		return
	}
	visited := 0
	h.levels.Scan(func(lvl *Level) bool {
		if visited >= limit {
			return false
		}
		visited++
		return visit(lvl)
	})
}
