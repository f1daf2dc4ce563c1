package common

import "fmt"

// Order is the engine's record of a single submission. Identity fields are
// fixed at creation; QuantityFilled and IsCancelled are the only fields the
// engine mutates afterwards, and only the engine is permitted to do so.
type Order struct {
	Id          OrderId
	SubmitterId uint64
	Symbol      string
	Side        Side
	PriceTick   PriceTick
	TimeInForce TimeInForce
	Quantity    uint64 // original requested quantity
	Timestamp   Timestamp

	QuantityFilled uint64
	IsCancelled    bool
}

// Remaining is the live quantity still eligible to trade.
func (o *Order) Remaining() uint64 {
	return o.Quantity - o.QuantityFilled
}

// IsLive reports whether the order still has remaining quantity and has
// not been cancelled.
func (o *Order) IsLive() bool {
	return o.Remaining() > 0 && !o.IsCancelled
}

func (o *Order) String() string {
	return fmt.Sprintf(
		"Order{id=%d symbol=%s side=%s price=%s tif=%s qty=%d filled=%d cancelled=%t}",
		o.Id, o.Symbol, o.Side, o.PriceTick, o.TimeInForce, o.Quantity, o.QuantityFilled, o.IsCancelled,
	)
}
