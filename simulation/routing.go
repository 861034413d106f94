// C:/workspace/go/DroNET-Go/simulation/routing.go
package simulation

import (
	"fmt"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/google/uuid"
)

// ErrNoRelayFound 本步找不到合格的中继，数据包继续留在缓冲区。
var ErrNoRelayFound = fmt.Errorf("no suitable relay found")

// RoutingAlgorithm 路由策略契约。每架无人机持有自己的策略实例，
// 实例之间只通过 Feedback 广播交换信息。
type RoutingAlgorithm interface {
	// RelaySelection 为一个数据包挑选下一跳。
	// nearDepot 非 nil 时表示该一跳邻居已身处仓库通信范围内，
	// 策略应当直接把包推给它。挑不出中继时返回 ErrNoRelayFound。
	RelaySelection(pck *DataPacket, nearDepot *Drone) (*Drone, error)

	// Feedback 消费一条全网广播的结局反馈。
	// outcome 为 1 表示事件送达仓库，-1 表示事件的数据包过期作废;
	// delay 为对应的送达延迟或事件生存期 (步)。
	// 与本实例历史决策无关的反馈必须被静默忽略。
	Feedback(drone *Drone, eventID uuid.UUID, delay int, outcome int)

	// Routing 执行本机一个时间步的完整转发回合。
	Routing(depot *Depot, drones []*Drone, curStep int)
}

// NewRoutingAlgorithm 按配置实例化一种路由策略。
func NewRoutingAlgorithm(kind config.RoutingKind, d *Drone) (RoutingAlgorithm, error) {
	switch kind {
	case config.RoutingQTAR:
		return NewQTARRouting(d), nil
	case config.RoutingGEO:
		return NewGEORouting(d), nil
	case config.RoutingRND:
		return NewRNDRouting(d), nil
	default:
		return nil, fmt.Errorf("未知的路由策略 %q", kind)
	}
}

// relaySelector 具体策略只需实现选择逻辑，转发回合由 routingBase 托管。
type relaySelector interface {
	RelaySelection(pck *DataPacket, nearDepot *Drone) (*Drone, error)
}

// routingBase 所有策略共享的转发回合骨架。
type routingBase struct {
	drone    *Drone
	selector relaySelector

	// 本步名册与步号，RelaySelection 执行期间有效。
	drones  []*Drone
	curStep int
}

// Routing 一个时间步的转发回合:
//  1. 缓冲区为空直接返回;
//  2. 若有数据包即将过期且允许转向，标记全部在途包并掉头飞向仓库，
//     本步不再转发;
//  3. 否则逐包挑选中继。选中即计一次传输尝试，中继缓冲区已满或
//     已知同一事件时本跳放弃，数据包留在本机等待下一步。
//
// 转发是复制而不是移交: 本机副本要等过期清理或仓库卸载才消失。
func (b *routingBase) Routing(depot *Depot, drones []*Drone, curStep int) {
	b.drones = drones
	b.curStep = curStep
	d := b.drone

	if d.BufferLength() == 0 {
		return
	}

	if d.cfg.RoutingIfExpiring && !d.MoveRouting && d.PacketIsExpiring(curStep) {
		d.MoveRouting = true
		for _, pck := range d.AllPackets() {
			pck.IsMovePacket = true
		}
		d.tracer.DiversionStarted(d.Index, curStep)
		return
	}

	var nearDepot *Drone
	for _, nb := range d.oneHopNeighbors {
		if EuclideanDistance(nb.Coords, depot.Coords) <= depot.CommunicationRange {
			nearDepot = nb
			break
		}
	}

	for _, pck := range d.AllPackets() {
		relay, err := b.selector.RelaySelection(pck, nearDepot)
		if err != nil {
			continue
		}

		pck.IncreaseTransmissionAttempt()
		if relay.IsFull() || relay.IsKnownPacket(pck) {
			continue
		}

		pck.AddHop(relay)
		relay.AcceptPackets([]*DataPacket{pck})
		d.tracer.PacketRelayed(d.Index, relay.Index, pck.Identifier, curStep)
	}
}
