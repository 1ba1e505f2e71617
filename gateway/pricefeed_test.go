package gateway

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestPriceFeedStreamsAggTrades(t *testing.T) {
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ws/ethusdt@aggTrade" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		msgs := []string{
			`{"e":"aggTrade","s":"ETHUSDT","p":"1843.21","q":"0.5"}`,
			`{"e":"aggTrade","s":"ETHUSDT","p":"bogus"}`,
			`{"e":"aggTrade","s":"ETHUSDT","p":"1850.4","q":"1.2"}`,
		}
		for _, m := range msgs {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(m)); err != nil {
				return
			}
		}
		// 保持连接直到客户端断开
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	feed := NewPriceFeed("ETHUSDT")
	feed.BaseEndpoint = "ws" + strings.TrimPrefix(srv.URL, "http")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- feed.Run(ctx) }()

	if got := feed.Step(); got != 1843.21 {
		t.Fatalf("first price = %v, want 1843.21", got)
	}
	// 解析失败的消息被丢弃，不产生 tick
	if got := feed.Step(); got != 1850.4 {
		t.Fatalf("second price = %v, want 1850.4", got)
	}
	if got := feed.CurrentPrice(); got != 1850.4 {
		t.Fatalf("current price = %v, want 1850.4", got)
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("feed did not stop after cancel")
	}
}
