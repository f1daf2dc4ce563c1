package common

import "fmt"

// Trade is the immutable record of one match between a taker and a maker.
// Price is always the maker's resting tick per price-time priority rules.
type Trade struct {
	Id           TradeId
	Symbol       string
	TakerOrderId OrderId
	MakerOrderId OrderId
	TakerUserId  uint64
	MakerUserId  uint64
	PriceTick    PriceTick
	Quantity     uint64
	Timestamp    Timestamp
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%d symbol=%s taker=%d maker=%d qty=%d price=%s}",
		t.Id, t.Symbol, t.TakerOrderId, t.MakerOrderId, t.Quantity, t.PriceTick,
	)
}
