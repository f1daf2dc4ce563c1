package engine

import "limitbook/internal/common"

// SubmitStatus discriminates the outcome of a Submit call.
type SubmitStatus int

const (
	Accepted SubmitStatus = iota
	PartiallyFilledAndResting
	FullyFilled
	CancelledIOC
	RejectedFOK
	Rejected
)

func (s SubmitStatus) String() string {
	switch s {
	case Accepted:
		return "accepted"
	case PartiallyFilledAndResting:
		return "partially_filled_and_resting"
	case FullyFilled:
		return "fully_filled"
	case CancelledIOC:
		return "cancelled_ioc"
	case RejectedFOK:
		return "rejected_fok"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// SubmitRequest is the validated, strictly-typed submission the engine
// accepts. Transport layers are responsible for converting their own
// loosely-typed wire requests into this shape before calling Submit.
type SubmitRequest struct {
	Symbol      string
	Side        common.Side
	PriceTick   common.PriceTick
	Quantity    uint64
	TimeInForce common.TimeInForce
	SubmitterId uint64
}

// SubmitResult is everything Submit reports back about one submission.
type SubmitResult struct {
	OrderId *common.OrderId
	Trades  []common.Trade
	Status  SubmitStatus
}

// CancelResult reports the outcome of a Cancel call.
type CancelResult struct {
	Success bool
}

// DepthLevel is one (price, aggregate quantity) pair in a depth snapshot.
type DepthLevel struct {
	PriceTick common.PriceTick
	Quantity  uint64
}

// DepthSnapshot is the aggregated view of resting liquidity on both sides
// of a symbol's book, each truncated to the requested level count. Bids
// are best-first (descending tick); asks are best-first (ascending tick).
type DepthSnapshot struct {
	Symbol string
	Bids   []DepthLevel
	Asks   []DepthLevel
}
