// C:/workspace/go/DroNET-Go/viz/state_test.go
package viz

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/simulation"
)

func newVizConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 3
	cfg.NDrones = 4
	cfg.EnvWidth = 400
	cfg.EnvHeight = 400
	cfg.LenSimulation = 50
	cfg.TimeStepDuration = 1
	cfg.EventDuration = 30
	cfg.EventGenerationInterval = 10
	cfg.DroneMaxBufferSize = 16
	cfg.DroneMaxEnergy = 500
	cfg.DroneComRange = 400
	cfg.DepotComRange = 80
	cfg.DepotX = 200
	cfg.DepotY = 0
	cfg.WaypointsPerPath = 3
	return cfg
}

func TestSnapshotFreshSimulator(t *testing.T) {
	// 1. 刚组装好、尚未推进的模拟器
	cfg := newVizConfig()
	sim, err := simulation.NewSimulator(cfg, nil)
	if err != nil {
		t.Fatalf("组装模拟失败: %v", err)
	}
	ws := Snapshot(sim, 0)

	// 2. 帧里应有每一架无人机和仓库的完整状态
	if ws.Step != 0 || ws.Algorithm != "QTAR" {
		t.Errorf("期望 (0, QTAR), 得到 (%d, %s)", ws.Step, ws.Algorithm)
	}
	if ws.Width != cfg.EnvWidth || ws.Height != cfg.EnvHeight {
		t.Errorf("地图尺寸不符: %fx%f", ws.Width, ws.Height)
	}
	if len(ws.Drones) != cfg.NDrones {
		t.Fatalf("期望 %d 架无人机, 得到 %d", cfg.NDrones, len(ws.Drones))
	}
	for _, d := range ws.Drones {
		if d.Energy != cfg.DroneMaxEnergy {
			t.Errorf("无人机 %d 应满电, 得到 %f", d.Index, d.Energy)
		}
		if d.BufferLength != 0 || d.MoveRouting {
			t.Errorf("无人机 %d 初始状态不干净: %+v", d.Index, d)
		}
	}
	if ws.Depot.Coords != (simulation.Point{X: 200, Y: 0}) {
		t.Errorf("仓库坐标不符: %v", ws.Depot.Coords)
	}
	if ws.Depot.Received != 0 || ws.DeliveredEvents != 0 {
		t.Errorf("新模拟不应有送达: %+v", ws)
	}

	// 3. 前端协议依赖的字段名
	raw, err := json.Marshal(ws)
	if err != nil {
		t.Fatalf("序列化快照失败: %v", err)
	}
	for _, key := range []string{`"step"`, `"drones"`, `"depot"`, `"delivered_events"`, `"delivery_ratio"`} {
		if !strings.Contains(string(raw), key) {
			t.Errorf("快照 JSON 缺少字段 %s", key)
		}
	}
}

func TestSnapshotAfterRun(t *testing.T) {
	// 跑完一次模拟后, 帧与指标保持一致
	cfg := newVizConfig()
	sim, err := simulation.NewSimulator(cfg, nil)
	if err != nil {
		t.Fatalf("组装模拟失败: %v", err)
	}
	if err := sim.Run(); err != nil {
		t.Fatalf("模拟执行失败: %v", err)
	}

	ws := Snapshot(sim, sim.CurrentStep())
	m := sim.Metrics()
	if ws.DeliveredEvents != m.DeliveredEvents() {
		t.Errorf("帧内送达事件数 %d 与指标 %d 不符", ws.DeliveredEvents, m.DeliveredEvents())
	}
	if ws.Depot.Received != len(m.Deliveries) {
		t.Errorf("帧内仓库收包数 %d 与送达记录数 %d 不符", ws.Depot.Received, len(m.Deliveries))
	}
}
