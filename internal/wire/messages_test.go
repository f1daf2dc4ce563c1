package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitbook/internal/common"
)

func TestNewOrderMessage_RoundTrip(t *testing.T) {
	m := NewOrderMessage{
		Symbol:      "AAPL",
		Side:        common.Bid,
		TimeInForce: common.IOC,
		PriceTick:   12345,
		Quantity:    678,
		SubmitterId: 9,
	}
	parsed, err := ParseMessage(m.Serialize())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestCancelOrderMessage_RoundTrip(t *testing.T) {
	m := CancelOrderMessage{Symbol: "AAPL", OrderId: 42}
	parsed, err := ParseMessage(m.Serialize())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestDepthRequestMessage_RoundTrip(t *testing.T) {
	m := DepthRequestMessage{Symbol: "AAPL", MaxLevels: 5}
	parsed, err := ParseMessage(m.Serialize())
	require.NoError(t, err)
	assert.Equal(t, m, parsed)
}

func TestParseMessage_TooShort(t *testing.T) {
	_, err := ParseMessage(nil)
	assert.ErrorIs(t, err, ErrMessageTooShort)
}

func TestParseMessage_InvalidType(t *testing.T) {
	_, err := ParseMessage([]byte{255})
	assert.ErrorIs(t, err, ErrInvalidMessageType)
}

func TestDepthReportMsg_Serialize_Size(t *testing.T) {
	r := DepthReportMsg{
		Symbol: "AAPL",
		Bids:   []DepthEntry{{PriceTick: 10, Quantity: 100}},
		Asks:   []DepthEntry{{PriceTick: 11, Quantity: 50}, {PriceTick: 12, Quantity: 30}},
	}
	buf := r.Serialize()
	assert.Equal(t, byte(DepthReport), buf[0])
	assert.Equal(t, 1+1+len(r.Symbol)+2+2+3*16, len(buf))
}

func TestParseReport_TradeRoundTrip(t *testing.T) {
	r := TradeReport{
		TradeId: 7, Symbol: "AAPL", Side: common.Ask,
		PriceTick: 101, Quantity: 50, OwnOrderId: 3, CounterOrderId: 2,
	}
	parsed, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestParseReport_OrderAckRoundTrip(t *testing.T) {
	r := OrderAckReport{Success: true, HasOrder: true, OrderId: 5, Status: 2, Message: "ok"}
	parsed, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestParseReport_ErrorRoundTrip(t *testing.T) {
	r := ErrorReportMsg{Message: "unknown symbol"}
	parsed, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}

func TestParseReport_DepthRoundTrip(t *testing.T) {
	r := DepthReportMsg{
		Symbol: "AAPL",
		Bids:   []DepthEntry{{PriceTick: 10, Quantity: 100}},
		Asks:   []DepthEntry{{PriceTick: 11, Quantity: 50}, {PriceTick: 12, Quantity: 30}},
	}
	parsed, err := ParseReport(r.Serialize())
	require.NoError(t, err)
	assert.Equal(t, r, parsed)
}
