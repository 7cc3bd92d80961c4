package dex

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"dex_go/internal/domain"

	"github.com/gorilla/websocket"
)

type recordingSink struct {
	mu      sync.Mutex
	tickers []domain.Ticker
}

func (s *recordingSink) UpdateTicker(t domain.Ticker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickers = append(s.tickers, t)
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tickers)
}

// createMockStreamServer creates a mock websocket server that answers the
// subscription and then pushes the given messages.
func createMockStreamServer(t *testing.T, messages []interface{}) *httptest.Server {
	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool { return true },
	}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade error: %v", err)
			return
		}
		defer conn.Close()

		// Read subscription message
		_, _, _ = conn.ReadMessage()

		for _, msg := range messages {
			data, _ := json.Marshal(msg)
			conn.WriteMessage(websocket.TextMessage, data)
			time.Sleep(10 * time.Millisecond)
		}

		time.Sleep(100 * time.Millisecond)
	}))
}

func httpToWS(url string) string {
	return strings.Replace(url, "http://", "ws://", 1)
}

func TestStreamWorker_TickerDelivery(t *testing.T) {
	server := createMockStreamServer(t, []interface{}{
		map[string]interface{}{
			"type":      "ticker",
			"market_id": "0xabc",
			"ticker":    "INJ/USDT",
			"price":     "5.1",
			"best_bid":  "5.0",
			"best_ask":  "5.2",
			"ts":        int64(1704067200000),
		},
		// Malformed price must be skipped, not crash the loop.
		map[string]interface{}{
			"type":      "ticker",
			"market_id": "0xabc",
			"price":     "not-a-number",
		},
	})
	defer server.Close()

	sink := &recordingSink{}
	worker := NewStreamWorker(httpToWS(server.URL), []string{"0xabc"}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := worker.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer worker.Disconnect()

	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("no ticker delivered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	sink.mu.Lock()
	got := sink.tickers[0]
	sink.mu.Unlock()
	if got.MarketID != "0xabc" || got.Ticker != "INJ/USDT" {
		t.Errorf("ticker = %+v", got)
	}
	if got.Price.String() != "5.1" {
		t.Errorf("price = %s, want 5.1", got.Price)
	}
	if sink.count() > 1 {
		t.Errorf("malformed tick was delivered: %d updates", sink.count())
	}
}

// Disconnect while the read loop is mid-read must shut down cleanly; the
// loop works on its own copy of the connection, never the shared pointer.
func TestStreamWorker_DisconnectDuringRead(t *testing.T) {
	messages := make([]interface{}, 50)
	for i := range messages {
		messages[i] = map[string]interface{}{
			"type":      "ticker",
			"market_id": "0xabc",
			"price":     "5.1",
			"ts":        int64(i),
		}
	}
	server := createMockStreamServer(t, messages)
	defer server.Close()

	sink := &recordingSink{}
	worker := NewStreamWorker(httpToWS(server.URL), []string{"0xabc"}, sink)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := worker.Connect(ctx); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// Let the read loop get going, then tear down while messages are in flight.
	deadline := time.Now().Add(2 * time.Second)
	for sink.count() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("stream never delivered")
		}
		time.Sleep(5 * time.Millisecond)
	}
	worker.Disconnect()

	if worker.IsConnected() {
		t.Error("worker still reports connected after Disconnect")
	}
}
