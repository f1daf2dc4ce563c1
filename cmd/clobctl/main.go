// Command clobctl is a minimal TCP client for exercising a clobd
// instance: flag-driven place/cancel/depth actions over a persistent
// connection, with reports read back on a separate goroutine.
package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"

	"limitbook/internal/common"
	"limitbook/internal/wire"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "address of the clobd server")
	owner := flag.Uint64("owner", 0, "submitter id (compulsory)")
	action := flag.String("action", "place", "action to perform: ['place', 'cancel', 'depth']")

	symbol := flag.String("symbol", "AAPL", "symbol")
	sideStr := flag.String("side", "buy", "order side: 'buy' or 'sell'")
	tifStr := flag.String("tif", "gtc", "time in force: 'gtc', 'ioc', or 'fok'")
	price := flag.Uint64("price", 100, "limit price in ticks")
	qty := flag.Uint64("qty", 10, "order quantity")

	orderId := flag.Uint64("order-id", 0, "order id to cancel")
	maxLevels := flag.Uint64("levels", 10, "max depth levels to request")

	flag.Parse()

	if *owner == 0 {
		fmt.Println("Error: -owner is compulsory.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("failed to connect to %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("connected to %s as submitter %d\n", *serverAddr, *owner)

	done := make(chan struct{})
	go readReports(conn, done)

	side := common.Bid
	if strings.ToLower(*sideStr) == "sell" {
		side = common.Ask
	}

	tif := common.GTC
	switch strings.ToLower(*tifStr) {
	case "ioc":
		tif = common.IOC
	case "fok":
		tif = common.FOK
	}

	switch strings.ToLower(*action) {
	case "place":
		m := wire.NewOrderMessage{
			Symbol:      *symbol,
			Side:        side,
			TimeInForce: tif,
			PriceTick:   common.PriceTick(*price),
			Quantity:    *qty,
			SubmitterId: *owner,
		}
		if _, err := conn.Write(m.Serialize()); err != nil {
			log.Fatalf("failed to send order: %v", err)
		}
		fmt.Printf("-> sent %s %s order: %s %d @ %d\n", tif, sideLabel(side), *symbol, *qty, *price)

	case "cancel":
		if *orderId == 0 {
			log.Fatal("Error: -order-id is required for cancellation")
		}
		m := wire.CancelOrderMessage{Symbol: *symbol, OrderId: common.OrderId(*orderId)}
		if _, err := conn.Write(m.Serialize()); err != nil {
			log.Fatalf("failed to send cancel: %v", err)
		}
		fmt.Printf("-> sent cancel for order %d\n", *orderId)

	case "depth":
		m := wire.DepthRequestMessage{Symbol: *symbol, MaxLevels: uint16(*maxLevels)}
		if _, err := conn.Write(m.Serialize()); err != nil {
			log.Fatalf("failed to send depth request: %v", err)
		}
		fmt.Printf("-> requested depth for %s\n", *symbol)

	default:
		log.Fatalf("unknown action: %s", *action)
	}

	<-done
}

func sideLabel(side common.Side) string {
	if side == common.Ask {
		return "SELL"
	}
	return "BUY"
}

// readReports drains response frames until the connection closes,
// printing each one. Each frame is read whole since clobd writes one
// frame per conn.Write and the client never pipelines requests.
func readReports(conn net.Conn, done chan<- struct{}) {
	defer close(done)
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			fmt.Println("connection closed")
			return
		}
		report, err := wire.ParseReport(buf[:n])
		if err != nil {
			log.Printf("failed to parse report: %v", err)
			continue
		}
		printReport(report)
	}
}

func printReport(report wire.Report) {
	switch r := report.(type) {
	case wire.OrderAckReport:
		if r.HasOrder {
			fmt.Printf("[ACK] success=%v order=%d status=%d\n", r.Success, r.OrderId, r.Status)
		} else {
			fmt.Printf("[ACK] success=%v status=%d\n", r.Success, r.Status)
		}
	case wire.TradeReport:
		fmt.Printf("[TRADE] %s %d @ %d | own=%d counter=%d\n", sideLabel(r.Side), r.Quantity, r.PriceTick, r.OwnOrderId, r.CounterOrderId)
	case wire.ErrorReportMsg:
		fmt.Printf("[ERROR] %s\n", r.Message)
	case wire.DepthReportMsg:
		fmt.Printf("[DEPTH] %s bids=%v asks=%v\n", r.Symbol, r.Bids, r.Asks)
	}
}
