package transport

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"limitbook/internal/common"
	"limitbook/internal/engine"
	"limitbook/internal/wire"
)

func startTestServer(t *testing.T) (addr string, stop func()) {
	t.Helper()
	eng := engine.New()
	srv := New("127.0.0.1", 0, 4, 20, eng, nil)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	listener.Close()
	port := listener.Addr().(*net.TCPAddr).Port
	srv.port = port

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", srv.addressString(), 50*time.Millisecond)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	return srv.addressString(), func() {
		cancel()
		<-done
	}
}

func TestServer_SubmitReturnsOrderAck(t *testing.T) {
	addr, stop := startTestServer(t)
	defer stop()

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	order := wire.NewOrderMessage{
		Symbol: "AAPL", Side: common.Bid, TimeInForce: common.GTC,
		PriceTick: 10, Quantity: 100, SubmitterId: 1,
	}
	_, err = conn.Write(order.Serialize())
	require.NoError(t, err)

	buf := make([]byte, 1024)
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, err := conn.Read(buf)
	require.NoError(t, err)
	require.Equal(t, byte(wire.OrderAck), buf[0])
	_ = n
}
