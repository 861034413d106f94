// C:/workspace/go/DroNET-Go/simulation/qtar_test.go
package simulation

import (
	"errors"
	"math"
	"testing"

	"github.com/google/uuid"
)

// newQTARScene 搭一个手算友好的场景: 仓库在原点, 0 号机在 (1000,0),
// 三个一跳邻居, 一个贴着仓库的两跳邻居 4 号机。
func newQTARScene(t *testing.T) (*QTARRouting, []*Drone) {
	t.Helper()
	cfg := newTestConfig()
	_, drones := newTestFleet(t, &cfg,
		Point{X: 1000, Y: 0},
		Point{X: 800, Y: 0},
		Point{X: 800, Y: 100},
		Point{X: 800, Y: -100},
		Point{X: 0, Y: 0},
	)
	s := drones[0]
	s.oneHopNeighbors = []*Drone{drones[1], drones[2], drones[3]}
	s.twoHopNeighbors = map[int][]*Drone{
		1: {drones[4]},
		2: {drones[4]},
		3: {drones[4]},
	}
	return s.routing.(*QTARRouting), drones
}

func TestQTARRelaySelectionPrefersLowestValue(t *testing.T) {
	q, drones := newQTARScene(t)
	s := drones[0]

	// 1. 三条网关都指向同一架合格的两跳邻居 4 号机:
	//    候选是两跳邻居本身, 只收录一次, 网关自己从不入围
	q.qTable[1] = 3
	q.qTable[2] = 1
	q.qTable[3] = 2
	pck := newTestDataPacket(t, s, 0, 500)

	relay, err := q.RelaySelection(pck, nil)
	if err != nil {
		t.Fatalf("挑选中继失败: %v", err)
	}
	if relay.Index != 4 {
		t.Errorf("期望两跳邻居 4 号机胜出, 得到 %d", relay.Index)
	}

	// 2. 决策按两跳邻居的序号记录, 等待这一事件的反馈
	taken, ok := q.takenActions[pck.EventRef.Identifier]
	if !ok {
		t.Fatalf("期望记录本次决策")
	}
	if taken != [2]int{0, 4} {
		t.Errorf("期望记录 (状态 0, 动作 4), 得到 %v", taken)
	}

	// 3. 两架合格两跳邻居同场竞争时价值表决定胜负:
	//    3 号机也当得了两跳目标, 价值 2 小于 4 号机的 5
	s.twoHopNeighbors = map[int][]*Drone{
		1: {drones[4]},
		2: {drones[3]},
	}
	q.qTable[4] = 5
	relay, err = q.RelaySelection(pck, nil)
	if err != nil {
		t.Fatalf("挑选中继失败: %v", err)
	}
	if relay.Index != 3 {
		t.Errorf("期望价值更小的 3 号机胜出, 得到 %d", relay.Index)
	}
	if taken := q.takenActions[pck.EventRef.Identifier]; taken != [2]int{0, 3} {
		t.Errorf("期望记录 (状态 0, 动作 3), 得到 %v", taken)
	}

	// 4. 3 号机失去资格后轮到 4 号机
	s.twoHopNeighbors = map[int][]*Drone{1: {drones[4]}}
	relay, err = q.RelaySelection(pck, nil)
	if err != nil {
		t.Fatalf("挑选中继失败: %v", err)
	}
	if relay.Index != 4 {
		t.Errorf("期望 4 号机胜出, 得到 %d", relay.Index)
	}
}

func TestQTARRelaySelectionNoCandidate(t *testing.T) {
	q, drones := newQTARScene(t)
	s := drones[0]
	pck := newTestDataPacket(t, s, 0, 500)

	// 1. 两跳表为空时挑不出中继, 且不产生决策记录
	s.twoHopNeighbors = map[int][]*Drone{}
	if _, err := q.RelaySelection(pck, nil); !errors.Is(err, ErrNoRelayFound) {
		t.Fatalf("期望 ErrNoRelayFound, 得到 %v", err)
	}
	if len(q.takenActions) != 0 {
		t.Errorf("挑选失败不应留下决策记录, 得到 %d 条", len(q.takenActions))
	}

	// 2. 两跳表挂在一跳表之外的网关名下时同样无候选
	s.twoHopNeighbors = map[int][]*Drone{5: {drones[4]}}
	if _, err := q.RelaySelection(pck, nil); !errors.Is(err, ErrNoRelayFound) {
		t.Errorf("期望 ErrNoRelayFound, 得到 %v", err)
	}

	// 3. 剩余生存期耗尽后任何邻居都不合格 (需求速度为正无穷)
	s.twoHopNeighbors = map[int][]*Drone{1: {drones[4]}}
	q.curStep = 64
	if _, err := q.RelaySelection(pck, nil); !errors.Is(err, ErrNoRelayFound) {
		t.Errorf("期望 ErrNoRelayFound, 得到 %v", err)
	}
	q.curStep = 0

	// 4. 两跳推进速度不及需求速度的邻居不入围:
	//    把两跳邻居搬到比本机还远的地方
	drones[4].Coords = Point{X: 2000, Y: 0}
	if _, err := q.RelaySelection(pck, nil); !errors.Is(err, ErrNoRelayFound) {
		t.Errorf("期望 ErrNoRelayFound, 得到 %v", err)
	}
}

func TestQTARRelaySelectionNearDepotShortcut(t *testing.T) {
	q, drones := newQTARScene(t)
	s := drones[0]
	pck := newTestDataPacket(t, s, 0, 500)

	// 1. 有邻居贴近仓库时绕过资格筛选, 直接把包推给它
	s.twoHopNeighbors = map[int][]*Drone{}
	relay, err := q.RelaySelection(pck, drones[3])
	if err != nil {
		t.Fatalf("挑选中继失败: %v", err)
	}
	if relay.Index != 3 {
		t.Errorf("期望直接选中 3 号机, 得到 %d", relay.Index)
	}
	if taken := q.takenActions[pck.EventRef.Identifier]; taken != [2]int{0, 3} {
		t.Errorf("期望记录 (状态 0, 动作 3), 得到 %v", taken)
	}
}

func TestQTARFeedback(t *testing.T) {
	q, drones := newQTARScene(t)
	eventID := uuid.New()

	// 1. 与历史决策无关的反馈被静默忽略
	q.Feedback(drones[4], eventID, 10, 1)
	for i, v := range q.qTable {
		if v != 0 {
			t.Fatalf("无关反馈不应更新价值表, 动作 %d 得到 %f", i, v)
		}
	}

	// 2. 命中决策记录时按三项加权更新:
	//    0.7*(32/64) + 0.2*1 + 0.1*(满电) = 0.65
	q.takenActions[eventID] = [2]int{0, 1}
	q.Feedback(drones[4], eventID, 32, 1)

	want := 0.7*0.5 + 0.2 + 0.1
	if math.Abs(q.qTable[1]-want) > 1e-9 {
		t.Errorf("期望动作 1 的价值 %f, 得到 %f", want, q.qTable[1])
	}

	// 3. 记录随消费删除, 同一事件的第二条反馈无效
	if _, ok := q.takenActions[eventID]; ok {
		t.Errorf("期望决策记录已删除")
	}
	q.qTable[1] = -1
	q.Feedback(drones[4], eventID, 5, -1)
	if q.qTable[1] != -1 {
		t.Errorf("重复反馈不应更新价值表, 得到 %f", q.qTable[1])
	}
}

func TestArgsortStable(t *testing.T) {
	// 1. 升序排列下标, 相等值保持原始顺序
	got := argsortStable([]float64{3, 1, 2, 1})
	want := []int{1, 3, 2, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("期望顺序 %v, 得到 %v", want, got)
		}
	}
}
