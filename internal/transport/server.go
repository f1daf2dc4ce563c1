// Package transport is limitbook's TCP front door: a tomb-supervised
// worker pool reads and frames client connections, translates wire
// requests into engine calls, and routes trade/error/depth reports back
// to the owning sessions.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"limitbook/internal/common"
	"limitbook/internal/engine"
	"limitbook/internal/metrics"
	"limitbook/internal/wire"
)

const (
	maxFrameSize       = 4 * 1024
	defaultConnTimeout = 5 * time.Second
)

var (
	ErrImproperConversion = errors.New("improper task type conversion")
	ErrSessionNotFound    = errors.New("session not found")
)

// session tracks one connected client, tagged with a correlation id for
// log lines. Order identity belongs entirely to the engine's monotonic
// OrderId; the session uuid is purely an ambient/session concern.
type session struct {
	id          uuid.UUID
	conn        net.Conn
	submitterId uint64
}

type clientMessage struct {
	sessionId uuid.UUID
	message   wire.Message
}

// Engine is the subset of *engine.Engine the transport depends on.
type Engine interface {
	Submit(req engine.SubmitRequest) (engine.SubmitResult, error)
	Cancel(symbol string, id common.OrderId) (engine.CancelResult, error)
	Depth(symbol string, maxLevels int) (engine.DepthSnapshot, error)
}

// Server is the TCP gateway in front of an Engine.
type Server struct {
	address  string
	port     int
	eng      Engine
	metrics  *metrics.Metrics
	maxDepth int

	pool   WorkerPool
	cancel context.CancelFunc

	mu             sync.Mutex
	sessions       map[uuid.UUID]*session
	sessionsByUser map[uint64]uuid.UUID

	inbox chan clientMessage
}

// New constructs a Server that will route requests into eng.
func New(address string, port, workers, maxDepth int, eng Engine, m *metrics.Metrics) *Server {
	return &Server{
		address:        address,
		port:           port,
		eng:            eng,
		metrics:        m,
		maxDepth:       maxDepth,
		pool:           NewWorkerPool(workers),
		sessions:       make(map[uuid.UUID]*session),
		sessionsByUser: make(map[uint64]uuid.UUID),
		inbox:          make(chan clientMessage, 64),
	}
}

// addressString is the listen address in host:port form.
func (s *Server) addressString() string {
	return fmt.Sprintf("%s:%d", s.address, s.port)
}

// Shutdown stops the server's background goroutines.
func (s *Server) Shutdown() {
	log.Info().Msg("transport shutting down")
	if s.cancel != nil {
		s.cancel()
	}
}

// Run listens for connections and serves them until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	defer s.Shutdown()

	ctx, s.cancel = context.WithCancel(ctx)
	t, ctx := tomb.WithContext(ctx)

	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.addressString())
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	defer listener.Close()

	t.Go(func() error {
		s.pool.Setup(t, s.handleConnection)
		return nil
	})
	t.Go(func() error {
		return s.dispatchLoop(t)
	})

	log.Info().Str("address", listener.Addr().String()).Msg("transport listening")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			conn, err := listener.Accept()
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				log.Error().Err(err).Msg("accept failed")
				continue
			}
			sess := s.addSession(conn)
			log.Info().Str("session", sess.id.String()).Str("remote", conn.RemoteAddr().String()).Msg("client connected")
			s.pool.AddTask(connTask{conn: conn, sessionId: sess.id})
		}
	}
}

func (s *Server) addSession(conn net.Conn) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess := &session{id: uuid.New(), conn: conn}
	s.sessions[sess.id] = sess
	return sess
}

func (s *Server) removeSession(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		delete(s.sessionsByUser, sess.submitterId)
	}
	delete(s.sessions, id)
}

func (s *Server) bindUser(id uuid.UUID, submitterId uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[id]; ok {
		sess.submitterId = submitterId
	}
	s.sessionsByUser[submitterId] = id
}

func (s *Server) sessionFor(id uuid.UUID) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	return sess, ok
}

func (s *Server) sessionForUser(submitterId uint64) (*session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.sessionsByUser[submitterId]
	if !ok {
		return nil, false
	}
	sess, ok := s.sessions[id]
	return sess, ok
}

// connTask pairs a connection with the session it belongs to, so each
// worker can read a frame and route it without scanning the session
// table.
type connTask struct {
	conn      net.Conn
	sessionId uuid.UUID
}

// handleConnection reads exactly one frame per pool dispatch and requeues
// the connection for its next frame.
func (s *Server) handleConnection(t *tomb.Tomb, task any) error {
	ct, ok := task.(connTask)
	if !ok {
		return ErrImproperConversion
	}
	conn := ct.conn

	if err := conn.SetReadDeadline(time.Now().Add(defaultConnTimeout)); err != nil {
		log.Error().Err(err).Msg("failed setting read deadline")
	}

	buf := make([]byte, maxFrameSize)
	n, err := conn.Read(buf)
	if err != nil {
		log.Debug().Err(err).Str("remote", conn.RemoteAddr().String()).Msg("connection closed")
		s.removeSession(ct.sessionId)
		conn.Close()
		return nil
	}

	msg, err := wire.ParseMessage(buf[:n])
	if err != nil {
		log.Warn().Err(err).Msg("failed to parse frame")
		s.writeError(conn, err)
		s.pool.AddTask(ct)
		return nil
	}

	select {
	case <-t.Dying():
		return nil
	case s.inbox <- clientMessage{sessionId: ct.sessionId, message: msg}:
	}
	s.pool.AddTask(ct)
	return nil
}

// dispatchLoop is the single-consumer sessionHandler: it is the only
// goroutine that ever calls into the Engine, so two frames from different
// connections never race each other into the same book beyond whatever
// serialization the Engine itself already provides per symbol.
func (s *Server) dispatchLoop(t *tomb.Tomb) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case cm := <-s.inbox:
			s.handleMessage(cm)
		}
	}
}

func (s *Server) handleMessage(cm clientMessage) {
	sess, ok := s.sessionFor(cm.sessionId)
	if !ok {
		log.Warn().Err(ErrSessionNotFound).Str("session", cm.sessionId.String()).Msg("dropping message for vanished session")
		return
	}

	switch m := cm.message.(type) {
	case wire.NewOrderMessage:
		s.handleNewOrder(sess, m)
	case wire.CancelOrderMessage:
		s.handleCancelOrder(sess, m)
	case wire.DepthRequestMessage:
		s.handleDepthRequest(sess, m)
	default:
		// Heartbeats need no reply.
	}
}

func (s *Server) handleNewOrder(sess *session, m wire.NewOrderMessage) {
	s.bindUser(sess.id, m.SubmitterId)
	if s.metrics != nil {
		s.metrics.OrdersSubmitted.WithLabelValues(m.Symbol, m.Side.String()).Inc()
	}

	res, err := s.eng.Submit(engine.SubmitRequest{
		Symbol:      m.Symbol,
		Side:        m.Side,
		PriceTick:   m.PriceTick,
		Quantity:    m.Quantity,
		TimeInForce: m.TimeInForce,
		SubmitterId: m.SubmitterId,
	})
	if err != nil {
		if s.metrics != nil {
			s.metrics.OrdersRejected.WithLabelValues(m.Symbol, "validation").Inc()
		}
		s.writeError(sess.conn, err)
		return
	}
	if res.Status == engine.RejectedFOK && s.metrics != nil {
		s.metrics.OrdersRejected.WithLabelValues(m.Symbol, "fok").Inc()
	}

	ack := wire.OrderAckReport{Success: res.Status != engine.RejectedFOK, Status: uint8(res.Status)}
	if res.OrderId != nil {
		ack.HasOrder = true
		ack.OrderId = *res.OrderId
	}
	s.write(sess.conn, ack.Serialize())

	for _, trade := range res.Trades {
		if s.metrics != nil {
			s.metrics.TradesExecuted.Inc()
			s.metrics.TradedQuantity.Add(float64(trade.Quantity))
		}
		s.reportTrade(m.Symbol, m.Side, trade)
	}
}

// reportTrade sends each side of trade an execution report addressed to
// whichever live session currently belongs to that user. takerSide is
// the taker's side on this trade; the maker always rests on the
// opposite side.
func (s *Server) reportTrade(symbol string, takerSide common.Side, trade common.Trade) {
	if taker, ok := s.sessionForUser(trade.TakerUserId); ok {
		s.write(taker.conn, wire.TradeReport{
			TradeId: trade.Id, Symbol: symbol, Side: takerSide,
			PriceTick: trade.PriceTick, Quantity: trade.Quantity,
			OwnOrderId: trade.TakerOrderId, CounterOrderId: trade.MakerOrderId,
		}.Serialize())
	}
	if maker, ok := s.sessionForUser(trade.MakerUserId); ok {
		s.write(maker.conn, wire.TradeReport{
			TradeId: trade.Id, Symbol: symbol, Side: takerSide.Opposite(),
			PriceTick: trade.PriceTick, Quantity: trade.Quantity,
			OwnOrderId: trade.MakerOrderId, CounterOrderId: trade.TakerOrderId,
		}.Serialize())
	}
}

func (s *Server) handleCancelOrder(sess *session, m wire.CancelOrderMessage) {
	res, err := s.eng.Cancel(m.Symbol, m.OrderId)
	if err != nil {
		if s.metrics != nil {
			s.metrics.OrdersRejected.WithLabelValues(m.Symbol, "cancel_not_found").Inc()
		}
		s.writeError(sess.conn, err)
		return
	}
	if s.metrics != nil {
		s.metrics.OrdersCancelled.WithLabelValues(m.Symbol).Inc()
	}
	s.write(sess.conn, wire.OrderAckReport{Success: res.Success, HasOrder: true, OrderId: m.OrderId}.Serialize())
}

func (s *Server) handleDepthRequest(sess *session, m wire.DepthRequestMessage) {
	limit := int(m.MaxLevels)
	if limit <= 0 || limit > s.maxDepth {
		limit = s.maxDepth
	}
	snapshot, err := s.eng.Depth(m.Symbol, limit)
	if err != nil {
		s.writeError(sess.conn, err)
		return
	}
	if s.metrics != nil {
		s.metrics.DepthRequests.WithLabelValues(m.Symbol).Inc()
		s.metrics.BookDepthLevels.WithLabelValues(m.Symbol, "bid").Set(float64(len(snapshot.Bids)))
		s.metrics.BookDepthLevels.WithLabelValues(m.Symbol, "ask").Set(float64(len(snapshot.Asks)))
	}

	report := wire.DepthReportMsg{Symbol: m.Symbol}
	for _, lvl := range snapshot.Bids {
		report.Bids = append(report.Bids, wire.DepthEntry{PriceTick: lvl.PriceTick, Quantity: lvl.Quantity})
	}
	for _, lvl := range snapshot.Asks {
		report.Asks = append(report.Asks, wire.DepthEntry{PriceTick: lvl.PriceTick, Quantity: lvl.Quantity})
	}
	s.write(sess.conn, report.Serialize())
}

func (s *Server) write(conn net.Conn, payload []byte) {
	if _, err := conn.Write(payload); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func (s *Server) writeError(conn net.Conn, err error) {
	s.write(conn, wire.ErrorReportMsg{Message: err.Error()}.Serialize())
}
