package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitbook/internal/common"
)

func submit(t *testing.T, ob *OrderBook, side common.Side, tif common.TimeInForce, price, qty uint64) SubmitResult {
	t.Helper()
	res, err := ob.Submit(SubmitRequest{
		Symbol:      "AAPL",
		Side:        side,
		PriceTick:   common.PriceTick(price),
		Quantity:    qty,
		TimeInForce: tif,
	})
	require.NoError(t, err)
	require.NoError(t, ob.CheckInvariants())
	return res
}

// S1: empty book, a single resting bid.
func TestScenario1_RestingBid(t *testing.T) {
	ob := NewOrderBook("AAPL")

	res := submit(t, ob, common.Bid, common.GTC, 10, 100)
	require.NotNil(t, res.OrderId)
	assert.Equal(t, common.OrderId(1), *res.OrderId)
	assert.Empty(t, res.Trades)
	assert.Equal(t, Accepted, res.Status)

	depth := ob.Depth(10)
	assert.Equal(t, []DepthLevel{{PriceTick: 10, Quantity: 100}}, depth.Bids)
	assert.Empty(t, depth.Asks)
}

// S2: a crossing ask partially consumes the resting bid.
func TestScenario2_PartialFillAgainstResting(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 100)

	res := submit(t, ob, common.Ask, common.GTC, 9, 60)
	require.Len(t, res.Trades, 1)
	trade := res.Trades[0]
	assert.Equal(t, common.OrderId(2), trade.TakerOrderId)
	assert.Equal(t, common.OrderId(1), trade.MakerOrderId)
	assert.Equal(t, uint64(60), trade.Quantity)
	assert.Equal(t, common.PriceTick(10), trade.PriceTick)
	assert.Nil(t, res.OrderId)
	assert.Equal(t, FullyFilled, res.Status)

	depth := ob.Depth(10)
	assert.Equal(t, []DepthLevel{{PriceTick: 10, Quantity: 40}}, depth.Bids)
	assert.Empty(t, depth.Asks)
}

// S3: a crossing ask fully consumes the resting bid and rests its own remainder.
func TestScenario3_FullConsumptionThenRest(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 100)

	res := submit(t, ob, common.Ask, common.GTC, 10, 150)
	require.Len(t, res.Trades, 1)
	assert.Equal(t, uint64(100), res.Trades[0].Quantity)
	assert.Equal(t, common.PriceTick(10), res.Trades[0].PriceTick)
	require.NotNil(t, res.OrderId)
	assert.Equal(t, common.OrderId(2), *res.OrderId)
	assert.Equal(t, PartiallyFilledAndResting, res.Status)

	depth := ob.Depth(10)
	assert.Empty(t, depth.Bids)
	assert.Equal(t, []DepthLevel{{PriceTick: 10, Quantity: 50}}, depth.Asks)
}

// S4: FIFO within a price level.
func TestScenario4_FIFOWithinLevel(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 50) // id 1
	submit(t, ob, common.Bid, common.GTC, 10, 30) // id 2

	res := submit(t, ob, common.Ask, common.IOC, 10, 60)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, common.OrderId(1), res.Trades[0].MakerOrderId)
	assert.Equal(t, uint64(50), res.Trades[0].Quantity)
	assert.Equal(t, common.OrderId(2), res.Trades[1].MakerOrderId)
	assert.Equal(t, uint64(10), res.Trades[1].Quantity)
	assert.Nil(t, res.OrderId)
	assert.Equal(t, FullyFilled, res.Status)

	depth := ob.Depth(10)
	assert.Equal(t, []DepthLevel{{PriceTick: 10, Quantity: 20}}, depth.Bids)
}

// S5: best-price-first across levels, remainder rests.
func TestScenario5_BestPriceFirstAcrossLevels(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 40)
	submit(t, ob, common.Bid, common.GTC, 11, 30)

	res := submit(t, ob, common.Ask, common.GTC, 9, 100)
	require.Len(t, res.Trades, 2)
	assert.Equal(t, common.PriceTick(11), res.Trades[0].PriceTick)
	assert.Equal(t, uint64(30), res.Trades[0].Quantity)
	assert.Equal(t, common.PriceTick(10), res.Trades[1].PriceTick)
	assert.Equal(t, uint64(40), res.Trades[1].Quantity)

	depth := ob.Depth(10)
	assert.Empty(t, depth.Bids)
	assert.Equal(t, []DepthLevel{{PriceTick: 9, Quantity: 30}}, depth.Asks)
}

// S6: FOK rejected when the book cannot fully fill it.
func TestScenario6_FOKRejected(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 40)

	res, err := ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Ask, TimeInForce: common.FOK, PriceTick: 10, Quantity: 50})
	require.NoError(t, err)
	assert.Equal(t, RejectedFOK, res.Status)
	assert.Empty(t, res.Trades)
	require.NoError(t, ob.CheckInvariants())

	depth := ob.Depth(10)
	assert.Equal(t, []DepthLevel{{PriceTick: 10, Quantity: 40}}, depth.Bids)
}

// S7: cancel removes a resting order; a second cancel is NotFound.
func TestScenario7_CancelThenNotFound(t *testing.T) {
	ob := NewOrderBook("AAPL")
	res := submit(t, ob, common.Bid, common.GTC, 10, 100)

	cancelRes, err := ob.Cancel(*res.OrderId)
	require.NoError(t, err)
	assert.True(t, cancelRes.Success)
	require.NoError(t, ob.CheckInvariants())

	depth := ob.Depth(10)
	assert.Empty(t, depth.Bids)

	_, err = ob.Cancel(*res.OrderId)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestFOKFullyFillsExactly(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 40)
	submit(t, ob, common.Bid, common.GTC, 9, 20)

	res, err := ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Ask, TimeInForce: common.FOK, PriceTick: 9, Quantity: 60})
	require.NoError(t, err)
	assert.Equal(t, FullyFilled, res.Status)
	require.Len(t, res.Trades, 2)
	require.NoError(t, ob.CheckInvariants())
}

func TestIOCNeverRests(t *testing.T) {
	ob := NewOrderBook("AAPL")
	res, err := ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Bid, TimeInForce: common.IOC, PriceTick: 10, Quantity: 50})
	require.NoError(t, err)
	assert.Nil(t, res.OrderId)
	assert.Equal(t, CancelledIOC, res.Status)
	assert.Empty(t, ob.Depth(10).Bids)
}

func TestSubmitValidation(t *testing.T) {
	ob := NewOrderBook("AAPL")

	_, err := ob.Submit(SubmitRequest{Symbol: "", Side: common.Bid, PriceTick: 10, Quantity: 1})
	assert.ErrorIs(t, err, ErrEmptySymbol)

	_, err = ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Bid, PriceTick: 0, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Bid, PriceTick: 1, Quantity: 0})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestMonotonicIds(t *testing.T) {
	ob := NewOrderBook("AAPL")
	r1 := submit(t, ob, common.Bid, common.GTC, 10, 10)
	r2 := submit(t, ob, common.Bid, common.GTC, 10, 10)
	assert.Less(t, uint64(*r1.OrderId), uint64(*r2.OrderId))
}

func TestSelfMatchPermitted(t *testing.T) {
	ob := NewOrderBook("AAPL")
	res, err := ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Bid, PriceTick: 10, Quantity: 50, SubmitterId: 7})
	require.NoError(t, err)
	require.NotNil(t, res.OrderId)

	res2, err := ob.Submit(SubmitRequest{Symbol: "AAPL", Side: common.Ask, TimeInForce: common.IOC, PriceTick: 10, Quantity: 50, SubmitterId: 7})
	require.NoError(t, err)
	require.Len(t, res2.Trades, 1)
	assert.Equal(t, uint64(7), res2.Trades[0].TakerUserId)
	assert.Equal(t, uint64(7), res2.Trades[0].MakerUserId)
}

func TestDepthTruncation(t *testing.T) {
	ob := NewOrderBook("AAPL")
	for i := uint64(1); i <= 5; i++ {
		submit(t, ob, common.Bid, common.GTC, 10+i, 10)
	}
	depth := ob.Depth(2)
	assert.Len(t, depth.Bids, 2)
	assert.Equal(t, common.PriceTick(15), depth.Bids[0].PriceTick)
	assert.Equal(t, common.PriceTick(14), depth.Bids[1].PriceTick)
}

func TestDepthIsPure(t *testing.T) {
	ob := NewOrderBook("AAPL")
	submit(t, ob, common.Bid, common.GTC, 10, 10)

	d1 := ob.Depth(5)
	d2 := ob.Depth(5)
	assert.Equal(t, d1, d2)
}
