// Package wire is limitbook's binary request/response framing: orders
// carry the core's uint64 PriceTick/OrderId fields, cancellation is by
// order id, and a DepthRequest/DepthReport pair lets clients query book
// state over the wire.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"

	"limitbook/internal/common"
)

var (
	ErrInvalidMessageType = errors.New("invalid message type")
	ErrMessageTooShort    = errors.New("message too short")
)

// MessageType discriminates an inbound request.
type MessageType uint8

const (
	Heartbeat MessageType = iota
	NewOrder
	CancelOrder
	DepthRequest
)

// ReportMessageType discriminates an outbound response.
type ReportMessageType uint8

const (
	OrderAck ReportMessageType = iota
	ExecutionReport
	ErrorReport
	DepthReport
)

// Message is anything ParseMessage can produce from a request frame.
type Message interface {
	Type() MessageType
}

const headerLen = 1 // message/report type byte

// NewOrderMessage is the wire shape of SubmitRequest.
type NewOrderMessage struct {
	Symbol      string
	Side        common.Side
	TimeInForce common.TimeInForce
	PriceTick   common.PriceTick
	Quantity    uint64
	SubmitterId uint64
}

func (NewOrderMessage) Type() MessageType { return NewOrder }

// Serialize encodes m as: type(1) side(1) tif(1) price(8) qty(8)
// submitter(8) symbolLen(1) symbol(n).
func (m NewOrderMessage) Serialize() []byte {
	buf := make([]byte, headerLen+1+1+8+8+8+1+len(m.Symbol))
	buf[0] = byte(NewOrder)
	buf[1] = byte(m.Side)
	buf[2] = byte(m.TimeInForce)
	binary.BigEndian.PutUint64(buf[3:11], uint64(m.PriceTick))
	binary.BigEndian.PutUint64(buf[11:19], m.Quantity)
	binary.BigEndian.PutUint64(buf[19:27], m.SubmitterId)
	buf[27] = byte(len(m.Symbol))
	copy(buf[28:], m.Symbol)
	return buf
}

func parseNewOrder(body []byte) (NewOrderMessage, error) {
	const fixed = 1 + 1 + 8 + 8 + 8 + 1
	if len(body) < fixed {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	symbolLen := int(body[fixed-1])
	if len(body) < fixed+symbolLen {
		return NewOrderMessage{}, ErrMessageTooShort
	}
	return NewOrderMessage{
		Side:        common.Side(body[0]),
		TimeInForce: common.TimeInForce(body[1]),
		PriceTick:   common.PriceTick(binary.BigEndian.Uint64(body[2:10])),
		Quantity:    binary.BigEndian.Uint64(body[10:18]),
		SubmitterId: binary.BigEndian.Uint64(body[18:26]),
		Symbol:      string(body[fixed : fixed+symbolLen]),
	}, nil
}

// CancelOrderMessage is the wire shape of a cancel-by-id request.
type CancelOrderMessage struct {
	Symbol  string
	OrderId common.OrderId
}

func (CancelOrderMessage) Type() MessageType { return CancelOrder }

// Serialize encodes m as: type(1) orderId(8) symbolLen(1) symbol(n).
func (m CancelOrderMessage) Serialize() []byte {
	buf := make([]byte, headerLen+8+1+len(m.Symbol))
	buf[0] = byte(CancelOrder)
	binary.BigEndian.PutUint64(buf[1:9], uint64(m.OrderId))
	buf[9] = byte(len(m.Symbol))
	copy(buf[10:], m.Symbol)
	return buf
}

func parseCancelOrder(body []byte) (CancelOrderMessage, error) {
	const fixed = 8 + 1
	if len(body) < fixed {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	symbolLen := int(body[8])
	if len(body) < fixed+symbolLen {
		return CancelOrderMessage{}, ErrMessageTooShort
	}
	return CancelOrderMessage{
		OrderId: common.OrderId(binary.BigEndian.Uint64(body[0:8])),
		Symbol:  string(body[fixed : fixed+symbolLen]),
	}, nil
}

// DepthRequestMessage asks for a symbol's current depth snapshot.
type DepthRequestMessage struct {
	Symbol    string
	MaxLevels uint16
}

func (DepthRequestMessage) Type() MessageType { return DepthRequest }

// Serialize encodes m as: type(1) maxLevels(2) symbolLen(1) symbol(n).
func (m DepthRequestMessage) Serialize() []byte {
	buf := make([]byte, headerLen+2+1+len(m.Symbol))
	buf[0] = byte(DepthRequest)
	binary.BigEndian.PutUint16(buf[1:3], m.MaxLevels)
	buf[3] = byte(len(m.Symbol))
	copy(buf[4:], m.Symbol)
	return buf
}

func parseDepthRequest(body []byte) (DepthRequestMessage, error) {
	const fixed = 2 + 1
	if len(body) < fixed {
		return DepthRequestMessage{}, ErrMessageTooShort
	}
	symbolLen := int(body[2])
	if len(body) < fixed+symbolLen {
		return DepthRequestMessage{}, ErrMessageTooShort
	}
	return DepthRequestMessage{
		MaxLevels: binary.BigEndian.Uint16(body[0:2]),
		Symbol:    string(body[fixed : fixed+symbolLen]),
	}, nil
}

// ParseMessage decodes a single inbound request frame.
func ParseMessage(frame []byte) (Message, error) {
	if len(frame) < headerLen {
		return nil, ErrMessageTooShort
	}
	body := frame[headerLen:]
	switch MessageType(frame[0]) {
	case NewOrder:
		return parseNewOrder(body)
	case CancelOrder:
		return parseCancelOrder(body)
	case DepthRequest:
		return parseDepthRequest(body)
	case Heartbeat:
		return heartbeatMessage{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidMessageType, frame[0])
	}
}

type heartbeatMessage struct{}

func (heartbeatMessage) Type() MessageType { return Heartbeat }
