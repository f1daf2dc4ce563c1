package wire

import (
	"encoding/binary"
	"fmt"

	"limitbook/internal/common"
)

// Report is anything ParseReport can produce from a response frame.
type Report interface {
	ReportType() ReportMessageType
}

func (TradeReport) ReportType() ReportMessageType    { return ExecutionReport }
func (OrderAckReport) ReportType() ReportMessageType { return OrderAck }
func (ErrorReportMsg) ReportType() ReportMessageType { return ErrorReport }
func (DepthReportMsg) ReportType() ReportMessageType { return DepthReport }

// TradeReport is the wire shape of one leg of a common.Trade, addressed
// to one of its two parties — one report is sent to each side of a
// match.
type TradeReport struct {
	TradeId        common.TradeId
	Symbol         string
	Side           common.Side // the recipient's own side in this trade
	PriceTick      common.PriceTick
	Quantity       uint64
	OwnOrderId     common.OrderId
	CounterOrderId common.OrderId
}

// Serialize encodes: type(1) side(1) price(8) qty(8) tradeId(8)
// ownOrderId(8) counterOrderId(8) symbolLen(1) symbol(n).
func (r TradeReport) Serialize() []byte {
	buf := make([]byte, headerLen+1+8+8+8+8+8+1+len(r.Symbol))
	buf[0] = byte(ExecutionReport)
	buf[1] = byte(r.Side)
	binary.BigEndian.PutUint64(buf[2:10], uint64(r.PriceTick))
	binary.BigEndian.PutUint64(buf[10:18], r.Quantity)
	binary.BigEndian.PutUint64(buf[18:26], uint64(r.TradeId))
	binary.BigEndian.PutUint64(buf[26:34], uint64(r.OwnOrderId))
	binary.BigEndian.PutUint64(buf[34:42], uint64(r.CounterOrderId))
	buf[42] = byte(len(r.Symbol))
	copy(buf[43:], r.Symbol)
	return buf
}

// OrderAckReport is the wire shape of a SubmitResult or CancelResult.
type OrderAckReport struct {
	Success  bool
	HasOrder bool
	OrderId  common.OrderId
	Status   uint8
	Message  string
}

// Serialize encodes: type(1) success(1) hasOrder(1) orderId(8) status(1)
// msgLen(2) message(n).
func (r OrderAckReport) Serialize() []byte {
	buf := make([]byte, headerLen+1+1+8+1+2+len(r.Message))
	buf[0] = byte(OrderAck)
	if r.Success {
		buf[1] = 1
	}
	if r.HasOrder {
		buf[2] = 1
	}
	binary.BigEndian.PutUint64(buf[3:11], uint64(r.OrderId))
	buf[11] = r.Status
	binary.BigEndian.PutUint16(buf[12:14], uint16(len(r.Message)))
	copy(buf[14:], r.Message)
	return buf
}

// ErrorReportMsg is the wire shape of a rejected request.
type ErrorReportMsg struct {
	Message string
}

// Serialize encodes: type(1) msgLen(2) message(n).
func (r ErrorReportMsg) Serialize() []byte {
	buf := make([]byte, headerLen+2+len(r.Message))
	buf[0] = byte(ErrorReport)
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(r.Message)))
	copy(buf[3:], r.Message)
	return buf
}

// DepthReportMsg is the wire shape of a DepthSnapshot.
type DepthReportMsg struct {
	Symbol string
	Bids   []DepthEntry
	Asks   []DepthEntry
}

// DepthEntry is one (price, quantity) pair inside a DepthReportMsg.
type DepthEntry struct {
	PriceTick common.PriceTick
	Quantity  uint64
}

// Serialize encodes: type(1) symbolLen(1) symbol(n) nBids(2) nAsks(2)
// then nBids*(price(8) qty(8)) then nAsks*(price(8) qty(8)).
func (r DepthReportMsg) Serialize() []byte {
	size := headerLen + 1 + len(r.Symbol) + 2 + 2 + (len(r.Bids)+len(r.Asks))*16
	buf := make([]byte, size)
	buf[0] = byte(DepthReport)
	buf[1] = byte(len(r.Symbol))
	offset := 2
	copy(buf[offset:], r.Symbol)
	offset += len(r.Symbol)
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(r.Bids)))
	offset += 2
	binary.BigEndian.PutUint16(buf[offset:offset+2], uint16(len(r.Asks)))
	offset += 2
	for _, lvl := range r.Bids {
		binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(lvl.PriceTick))
		binary.BigEndian.PutUint64(buf[offset+8:offset+16], lvl.Quantity)
		offset += 16
	}
	for _, lvl := range r.Asks {
		binary.BigEndian.PutUint64(buf[offset:offset+8], uint64(lvl.PriceTick))
		binary.BigEndian.PutUint64(buf[offset+8:offset+16], lvl.Quantity)
		offset += 16
	}
	return buf
}

// ParseReport decodes a single outbound response frame, the counterpart
// to ParseMessage used by clients reading back from the transport.
func ParseReport(frame []byte) (Report, error) {
	if len(frame) < headerLen {
		return nil, ErrMessageTooShort
	}
	body := frame[headerLen:]
	switch ReportMessageType(frame[0]) {
	case OrderAck:
		return parseOrderAck(body)
	case ExecutionReport:
		return parseTradeReport(body)
	case ErrorReport:
		return parseErrorReport(body)
	case DepthReport:
		return parseDepthReport(body)
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, frame[0])
	}
}

func parseTradeReport(body []byte) (TradeReport, error) {
	const fixed = 1 + 8 + 8 + 8 + 8 + 8 + 1
	if len(body) < fixed {
		return TradeReport{}, ErrMessageTooShort
	}
	symbolLen := int(body[fixed-1])
	if len(body) < fixed+symbolLen {
		return TradeReport{}, ErrMessageTooShort
	}
	return TradeReport{
		Side:           common.Side(body[0]),
		PriceTick:      common.PriceTick(binary.BigEndian.Uint64(body[1:9])),
		Quantity:       binary.BigEndian.Uint64(body[9:17]),
		TradeId:        common.TradeId(binary.BigEndian.Uint64(body[17:25])),
		OwnOrderId:     common.OrderId(binary.BigEndian.Uint64(body[25:33])),
		CounterOrderId: common.OrderId(binary.BigEndian.Uint64(body[33:41])),
		Symbol:         string(body[fixed : fixed+symbolLen]),
	}, nil
}

func parseOrderAck(body []byte) (OrderAckReport, error) {
	const fixed = 1 + 1 + 8 + 1 + 2
	if len(body) < fixed {
		return OrderAckReport{}, ErrMessageTooShort
	}
	msgLen := int(binary.BigEndian.Uint16(body[11:13]))
	if len(body) < fixed+msgLen {
		return OrderAckReport{}, ErrMessageTooShort
	}
	return OrderAckReport{
		Success:  body[0] == 1,
		HasOrder: body[1] == 1,
		OrderId:  common.OrderId(binary.BigEndian.Uint64(body[2:10])),
		Status:   body[10],
		Message:  string(body[fixed : fixed+msgLen]),
	}, nil
}

func parseErrorReport(body []byte) (ErrorReportMsg, error) {
	const fixed = 2
	if len(body) < fixed {
		return ErrorReportMsg{}, ErrMessageTooShort
	}
	msgLen := int(binary.BigEndian.Uint16(body[0:2]))
	if len(body) < fixed+msgLen {
		return ErrorReportMsg{}, ErrMessageTooShort
	}
	return ErrorReportMsg{Message: string(body[fixed : fixed+msgLen])}, nil
}

func parseDepthReport(body []byte) (DepthReportMsg, error) {
	const fixed = 1 + 2 + 2
	if len(body) < fixed {
		return DepthReportMsg{}, ErrMessageTooShort
	}
	symbolLen := int(body[0])
	offset := 1
	if len(body) < offset+symbolLen+4 {
		return DepthReportMsg{}, ErrMessageTooShort
	}
	symbol := string(body[offset : offset+symbolLen])
	offset += symbolLen
	nBids := int(binary.BigEndian.Uint16(body[offset : offset+2]))
	offset += 2
	nAsks := int(binary.BigEndian.Uint16(body[offset : offset+2]))
	offset += 2
	if len(body) < offset+(nBids+nAsks)*16 {
		return DepthReportMsg{}, ErrMessageTooShort
	}
	r := DepthReportMsg{Symbol: symbol}
	for i := 0; i < nBids; i++ {
		r.Bids = append(r.Bids, DepthEntry{
			PriceTick: common.PriceTick(binary.BigEndian.Uint64(body[offset : offset+8])),
			Quantity:  binary.BigEndian.Uint64(body[offset+8 : offset+16]),
		})
		offset += 16
	}
	for i := 0; i < nAsks; i++ {
		r.Asks = append(r.Asks, DepthEntry{
			PriceTick: common.PriceTick(binary.BigEndian.Uint64(body[offset : offset+8])),
			Quantity:  binary.BigEndian.Uint64(body[offset+8 : offset+16]),
		})
		offset += 16
	}
	return r, nil
}
