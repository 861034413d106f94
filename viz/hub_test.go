// C:/workspace/go/DroNET-Go/viz/hub_test.go
package viz

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestHubBroadcastsToClient(t *testing.T) {
	// 1. 起一个只有 /ws 的服务端并连上一个客户端
	hub := NewHub()
	go hub.Run()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWs)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接 WebSocket 失败: %v", err)
	}
	defer conn.Close()

	// 2. 等待 Hub 完成注册
	registered := false
	for i := 0; i < 100; i++ {
		hub.mu.Lock()
		registered = len(hub.clients) == 1
		hub.mu.Unlock()
		if registered {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !registered {
		t.Fatalf("客户端未被注册")
	}

	// 3. 广播一帧快照, 客户端应原样收到 JSON
	hub.BroadcastState(WorldState{Step: 42, Algorithm: "QTAR"})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("读取广播失败: %v", err)
	}
	var ws WorldState
	if err := json.Unmarshal(raw, &ws); err != nil {
		t.Fatalf("解析广播失败: %v", err)
	}
	if ws.Step != 42 || ws.Algorithm != "QTAR" {
		t.Errorf("期望 (42, QTAR), 得到 (%d, %s)", ws.Step, ws.Algorithm)
	}

	t.Log("WebSocket 广播测试通过。")
}
