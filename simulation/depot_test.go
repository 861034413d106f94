// C:/workspace/go/DroNET-Go/simulation/depot_test.go
package simulation

import (
	"math"
	"testing"

	"github.com/davegabe/DroNET-hw2/config"
)

func TestDepotTransfer(t *testing.T) {
	// 1. 两架无人机携带三份数据包, 其中一个事件有两份副本
	cfg := newTestConfig()
	cfg.RoutingAlgorithm = config.RoutingGEO
	depot, drones := newTestFleet(t, &cfg,
		Point{X: 50, Y: 0},
		Point{X: 80, Y: 0},
	)
	d0, d1 := drones[0], drones[1]
	m := d0.metrics

	ev1, err := NewEventWithDeadline(d0.Coords, 2, 200, m)
	if err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}
	ev2, err := NewEventWithDeadline(d1.Coords, 5, 200, m)
	if err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}
	d0.AcceptPackets([]*DataPacket{ev1.AsPacket(2, d0)})
	d1.AcceptPackets([]*DataPacket{ev1.AsPacket(3, d1), ev2.AsPacket(5, d1)})

	// 2. 卸载只登记引用, 清空来源缓冲区是调用方的责任
	depot.TransferNotifiedPackets(d0, 10)
	if depot.BufferLength() != 1 {
		t.Fatalf("期望仓库收到 1 个包, 得到 %d", depot.BufferLength())
	}
	if d0.BufferLength() != 1 {
		t.Errorf("卸载不应清空来源缓冲区, 得到 %d", d0.BufferLength())
	}
	d0.EmptyBuffer()
	if d0.BufferLength() != 0 {
		t.Errorf("清空后缓冲区应为空, 得到 %d", d0.BufferLength())
	}
	if got := depot.AllPackets()[0].DeliveryTime; got != 10 {
		t.Errorf("期望送达时间戳 10, 得到 %d", got)
	}

	// 3. 仓库不去重, 指标按事件去重
	depot.TransferNotifiedPackets(d1, 12)
	d1.EmptyBuffer()
	if depot.BufferLength() != 3 {
		t.Errorf("期望仓库累计 3 个包, 得到 %d", depot.BufferLength())
	}
	if len(m.Deliveries) != 3 {
		t.Errorf("期望 3 条送达记录, 得到 %d", len(m.Deliveries))
	}
	if got := m.DeliveredEvents(); got != 2 {
		t.Errorf("期望去重后 2 个送达事件, 得到 %d", got)
	}
	if got := m.DeliveryRatio(); got != 1.0 {
		t.Errorf("期望送达率 1.0, 得到 %f", got)
	}

	// 4. 每个事件取最早一次送达的时延: (10-2) 与 (12-5) 的均值
	if got := m.MeanDeliveryDelay(); math.Abs(got-7.5) > 1e-9 {
		t.Errorf("期望平均时延 7.5, 得到 %f", got)
	}

	t.Log("仓库卸载与指标登记测试通过。")
}

func TestDepotFeedbackFanOut(t *testing.T) {
	// 1. 学习型路由下, 送达反馈广播给编队中的每个路由实例
	cfg := newTestConfig()
	depot, drones := newTestFleet(t, &cfg,
		Point{X: 50, Y: 0},
		Point{X: 300, Y: 0},
		Point{X: 600, Y: 0},
	)
	d0 := drones[0]

	ev, err := NewEventWithDeadline(d0.Coords, 4, 200, nil)
	if err != nil {
		t.Fatalf("创建事件失败: %v", err)
	}
	d0.AcceptPackets([]*DataPacket{ev.AsPacket(4, d0)})

	pending := [][2]int{{0, 1}, {1, 2}, {2, 0}}
	for i, pair := range pending {
		q := drones[i].routing.(*QTARRouting)
		q.takenActions[ev.Identifier] = pair
	}

	// 2. 第 20 步卸载: 时延 16 步, 携带者满电
	depot.TransferNotifiedPackets(d0, 20)

	want := 0.7*(16.0/64.0) + 0.2 + 0.1
	for i, pair := range pending {
		q := drones[i].routing.(*QTARRouting)
		if got := q.qTable[pair[1]]; math.Abs(got-want) > 1e-9 {
			t.Errorf("无人机 %d 期望 Q 值 %f, 得到 %f", i, want, got)
		}
		if _, ok := q.takenActions[ev.Identifier]; ok {
			t.Errorf("无人机 %d 的决策记录应在反馈后删除", i)
		}
	}
}
