// C:/workspace/go/DroNET-Go/simulation/simulator_test.go
package simulation

import (
	"testing"

	"github.com/davegabe/DroNET-hw2/config"
)

// newSimulationConfig 五机小场景, 通信范围盖住大半地图,
// 跑 300 步足以产生事件、转发与送达。
func newSimulationConfig() config.Config {
	cfg := config.Default()
	cfg.Seed = 7
	cfg.NDrones = 5
	cfg.EnvWidth = 500
	cfg.EnvHeight = 500
	cfg.LenSimulation = 300
	cfg.TimeStepDuration = 1
	cfg.EventDuration = 100
	cfg.EventGenerationInterval = 20
	cfg.EventGenerationProb = 0.8
	cfg.PacketsMaxTTL = 64
	cfg.DroneMaxBufferSize = 32
	cfg.DroneMaxEnergy = 1000
	cfg.DroneSpeed = 8
	cfg.DroneComRange = 500
	cfg.DepotComRange = 100
	cfg.DepotX = 250
	cfg.DepotY = 0
	cfg.WaypointsPerPath = 4
	return cfg
}

func TestSimulatorEndToEnd(t *testing.T) {
	// 1. 完整跑一次 QTAR 模拟
	cfg := newSimulationConfig()
	sim, err := NewSimulator(cfg, nil)
	if err != nil {
		t.Fatalf("组装模拟失败: %v", err)
	}
	steps := 0
	sim.SetOnStepEnd(func(s *Simulator, step int) { steps++ })
	if err := sim.Run(); err != nil {
		t.Fatalf("模拟执行失败: %v", err)
	}

	// 2. 回调每步触发一次, 步号停在最后一步
	if steps != cfg.LenSimulation {
		t.Errorf("期望回调 %d 次, 得到 %d", cfg.LenSimulation, steps)
	}
	if sim.CurrentStep() != cfg.LenSimulation-1 {
		t.Errorf("期望最终步号 %d, 得到 %d", cfg.LenSimulation-1, sim.CurrentStep())
	}

	// 3. 事件持续产生且有送达
	m := sim.Metrics()
	if len(m.Events) == 0 {
		t.Fatalf("期望产生事件, 得到 0 个")
	}
	if m.DeliveredEvents() == 0 {
		t.Errorf("期望至少送达一个事件")
	}
	if m.DeliveredEvents() > len(m.Events) {
		t.Errorf("送达事件数 %d 不应超过产生事件数 %d", m.DeliveredEvents(), len(m.Events))
	}
	if sim.Depot().BufferLength() != len(m.Deliveries) {
		t.Errorf("仓库缓冲区 %d 与送达记录数 %d 不符", sim.Depot().BufferLength(), len(m.Deliveries))
	}

	// 4. 每架无人机每步都在巡逻或转向, 两类步数之和覆盖全部移动
	total := cfg.NDrones * cfg.LenSimulation
	if m.TimeOnMission+m.TimeOnActiveRouting < total {
		t.Errorf("巡逻 %d + 转向 %d 未覆盖 %d 次移动",
			m.TimeOnMission, m.TimeOnActiveRouting, total)
	}

	// 5. 航点、仓库与折返点都在地图内, 无人机不应飞出地图
	for _, d := range sim.Drones() {
		if d.Coords.X < 0 || d.Coords.X > cfg.EnvWidth ||
			d.Coords.Y < 0 || d.Coords.Y > cfg.EnvHeight {
			t.Errorf("无人机 %d 飞出地图: %v", d.Index, d.Coords)
		}
	}

	t.Log("端到端模拟测试通过。")
}

func TestSimulatorDeterminism(t *testing.T) {
	// 1. 同一种子跑两次
	run := func() *Simulator {
		sim, err := NewSimulator(newSimulationConfig(), nil)
		if err != nil {
			t.Fatalf("组装模拟失败: %v", err)
		}
		if err := sim.Run(); err != nil {
			t.Fatalf("模拟执行失败: %v", err)
		}
		return sim
	}
	a := run()
	b := run()

	// 2. 指标逐项一致
	if a.Metrics().GetRawStats() != b.Metrics().GetRawStats() {
		t.Errorf("同一种子的两次运行指标不一致:\n%+v\n%+v",
			a.Metrics().GetRawStats(), b.Metrics().GetRawStats())
	}

	// 3. 每架无人机的最终位置一致
	for i := range a.Drones() {
		if a.Drones()[i].Coords != b.Drones()[i].Coords {
			t.Errorf("无人机 %d 的最终位置不一致: %v vs %v",
				i, a.Drones()[i].Coords, b.Drones()[i].Coords)
		}
	}

	t.Log("同种子复现测试通过。")
}

func TestSimulatorAllAlgorithms(t *testing.T) {
	// 三种路由策略都应能完整跑完
	for _, kind := range []config.RoutingKind{config.RoutingQTAR, config.RoutingGEO, config.RoutingRND} {
		cfg := newSimulationConfig()
		cfg.LenSimulation = 150
		cfg.RoutingAlgorithm = kind
		sim, err := NewSimulator(cfg, nil)
		if err != nil {
			t.Fatalf("组装 %s 模拟失败: %v", kind, err)
		}
		if err := sim.Run(); err != nil {
			t.Fatalf("%s 模拟执行失败: %v", kind, err)
		}
		if len(sim.Metrics().Events) == 0 {
			t.Errorf("%s 模拟未产生事件", kind)
		}
	}
}

func TestNewSimulatorRejectsBadConfig(t *testing.T) {
	// 1. 非法的无人机数量
	cfg := newSimulationConfig()
	cfg.NDrones = 0
	if _, err := NewSimulator(cfg, nil); err == nil {
		t.Errorf("期望拒绝 0 架无人机的配置")
	}

	// 2. 未知的路由策略
	cfg = newSimulationConfig()
	cfg.RoutingAlgorithm = config.RoutingKind("SHORTEST")
	if _, err := NewSimulator(cfg, nil); err == nil {
		t.Errorf("期望拒绝未知的路由策略")
	}
}
