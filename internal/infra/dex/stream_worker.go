package dex

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dex_go/internal/domain"
	"dex_go/internal/infra"

	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	maxRetries   = 10
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// StreamWorker maintains the websocket subscription to market tickers and
// pushes observations into a PriceSink. The swap path never reads from the
// stream; execution always fetches a fresh REST snapshot.
type StreamWorker struct {
	wsURL     string
	markets   []string
	sink      domain.PriceSink
	conn      *websocket.Conn
	mu        sync.RWMutex
	writeMu   sync.Mutex
	connected bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	logger    *slog.Logger
}

// NewStreamWorker factory
func NewStreamWorker(wsURL string, markets []string, sink domain.PriceSink) *StreamWorker {
	return &StreamWorker{
		wsURL:   wsURL,
		markets: markets,
		sink:    sink,
		logger:  slog.Default().With("module", "dex_stream"),
	}
}

func (w *StreamWorker) Connect(ctx context.Context) error {
	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go w.connectionLoop(ctx)
	return nil
}

func (w *StreamWorker) connectionLoop(ctx context.Context) {
	defer w.wg.Done()
	retryCount := 0
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if err := w.connect(ctx); err != nil {
			w.logger.Warn("Stream connection failed", slog.Any("error", err), slog.Int("retry", retryCount))
			retryCount++
			if retryCount > maxRetries {
				retryCount = 0 // Infinite retry loop for monitoring
			}
			delay := infra.CalculateBackoff(retryCount)
			time.Sleep(delay)
		} else {
			retryCount = 0
			w.readLoop(ctx)
		}
	}
}

func (w *StreamWorker) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.wsURL, nil)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.conn = conn
	w.connected = true
	w.mu.Unlock()

	if err := w.subscribe(); err != nil {
		w.closeConnection()
		return err
	}

	infra.GlobalMetrics.IncrementStreams()
	go w.pingLoop(ctx)
	w.logger.Info("Stream connected", slog.Int("markets", len(w.markets)))
	return nil
}

func (w *StreamWorker) subscribe() error {
	req := streamSubscribeRequest{Op: "subscribe", Markets: w.markets}
	b, err := json.Marshal(req)
	if err != nil {
		w.logger.Error("Failed to marshal subscribe request", slog.Any("error", err))
		return err
	}
	return w.threadSafeWrite(websocket.TextMessage, b)
}

func (w *StreamWorker) pingLoop(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.threadSafeWrite(websocket.TextMessage, []byte("ping"))
		}
	}
}

func (w *StreamWorker) threadSafeWrite(msgType int, data []byte) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.conn == nil {
		return fmt.Errorf("no conn")
	}
	return w.conn.WriteMessage(msgType, data)
}

func (w *StreamWorker) readLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		// Copy the pointer under the lock; a concurrent Disconnect can nil
		// w.conn between the check and the read.
		w.mu.RLock()
		conn := w.conn
		w.mu.RUnlock()
		if conn == nil {
			return
		}
		conn.SetReadDeadline(time.Now().Add(readTimeout))

		_, msg, err := conn.ReadMessage()
		if err != nil {
			w.closeConnection()
			return
		}
		if string(msg) == "pong" {
			continue
		}
		w.handleMessage(msg)
	}
}

func (w *StreamWorker) handleMessage(msg []byte) {
	var tick streamTickerMessage
	json.Unmarshal(msg, &tick)
	if tick.Type != "ticker" || tick.MarketID == "" {
		return
	}

	price, err := decimal.NewFromString(tick.Price)
	if err != nil {
		return // malformed tick, skip
	}
	// Bid/ask are optional on the feed; zero means "not quoted".
	bid, _ := decimal.NewFromString(tick.BestBid)
	ask, _ := decimal.NewFromString(tick.BestAsk)

	w.sink.UpdateTicker(domain.Ticker{
		MarketID:   tick.MarketID,
		Ticker:     tick.Ticker,
		Price:      price,
		BestBid:    bid,
		BestAsk:    ask,
		UpdatedAtM: tick.Ts,
	})
}

func (w *StreamWorker) IsConnected() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.connected
}

func (w *StreamWorker) closeConnection() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn != nil {
		w.conn.Close()
		w.conn = nil
		infra.GlobalMetrics.DecrementStreams()
	}
	w.connected = false
}

func (w *StreamWorker) Disconnect() {
	if w.cancel != nil {
		w.cancel()
	}
	w.closeConnection()
	w.wg.Wait()
}
