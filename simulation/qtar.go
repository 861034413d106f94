// C:/workspace/go/DroNET-Go/simulation/qtar.go
package simulation

import (
	"sort"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/google/uuid"
)

// QTARRouting 基于 Q 表的强化学习路由。
// 每架无人机维护一张以编队序号为动作的价值表，
// 用两跳邻居信息筛选能赶在截止时间前送达的候选中继，
// 再按价值表挑出历史表现最好的那个。
// 价值通过仓库与过期清理广播的延迟反馈更新: 值越小代表
// 经由该动作的历史送达延迟越短，排序时越靠前。
type QTARRouting struct {
	routingBase

	// qTable 下标即动作 (目标无人机序号)，升序越靠前越优先。
	qTable []float64

	// takenActions 事件 -> (决策时状态, 所选动作)。
	// 同一事件只保留最近一次决策，反馈消费后即删除。
	takenActions map[uuid.UUID][2]int
}

func NewQTARRouting(d *Drone) *QTARRouting {
	q := &QTARRouting{
		routingBase:  routingBase{drone: d},
		qTable:       make([]float64, d.cfg.NDrones),
		takenActions: make(map[uuid.UUID][2]int),
	}
	q.selector = q
	return q
}

// RelaySelection 两阶段挑选中继:
//  1. 资格筛选。对每条 (网关 j, 经 j 的两跳邻居 k) 记录,
//     若经由 j/k 的两跳推进速度超过 k 按剩余生存期算出的最低需求
//     速度，k 即入围候选集。候选是两跳邻居本身而非网关，
//     同一架两跳邻居经多条网关合格也只收录一次;
//  2. 价值排序。把价值表稳定升序排列，返回第一个落在候选集内的
//     动作对应的无人机，并记下这次决策等待反馈。
//
// 已有邻居贴近仓库时跳过筛选，直接把包推给它。
func (q *QTARRouting) RelaySelection(pck *DataPacket, nearDepot *Drone) (*Drone, error) {
	d := q.drone
	state := d.Index

	var candidates []*Drone
	if nearDepot != nil {
		candidates = []*Drone{nearDepot}
	} else {
		remainingTTL := d.cfg.PacketsMaxTTL - (q.curStep - pck.CreationTime)
		for oneHopIdx, twoHops := range d.twoHopNeighbors {
			oneHop := q.oneHopByIndex(oneHopIdx)
			if oneHop == nil {
				continue
			}
			for _, twoHop := range twoHops {
				if TwoHopSpeed(d, oneHop, twoHop, d.cfg.TimeStepDuration) > ComputeRequiredSpeed(twoHop, remainingTTL, d.cfg.TimeStepDuration) {
					if !containsDrone(candidates, twoHop) {
						candidates = append(candidates, twoHop)
					}
				}
			}
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoRelayFound
	}

	for _, action := range argsortStable(q.qTable) {
		for _, candidate := range candidates {
			if candidate.Index == action {
				if pck.EventRef != nil {
					q.takenActions[pck.EventRef.Identifier] = [2]int{state, action}
				}
				return candidate, nil
			}
		}
	}
	return nil, ErrNoRelayFound
}

// Feedback 消费一条结局广播。只有本实例为该事件记过决策才会更新，
// 更新后立即删除记录，保证每条决策至多被一条反馈修正一次。
// 新价值由三项加权: 归一化延迟、速度占位项、反馈来源机的剩余电量比。
func (q *QTARRouting) Feedback(drone *Drone, eventID uuid.UUID, delay int, outcome int) {
	taken, ok := q.takenActions[eventID]
	if !ok {
		return
	}
	delete(q.takenActions, eventID)

	action := taken[1]
	q.qTable[action] = config.QTARWeightDelay*(float64(delay)/float64(q.drone.cfg.PacketsMaxTTL)) +
		config.QTARWeightSpeed*1.0 +
		config.QTARWeightEnergy*(drone.ResidualEnergy/q.drone.cfg.DroneMaxEnergy)

	q.drone.tracer.FeedbackApplied(q.drone.Index, action, eventID, delay, outcome, q.qTable[action])
}

func (q *QTARRouting) oneHopByIndex(idx int) *Drone {
	for _, nb := range q.drone.oneHopNeighbors {
		if nb.Index == idx {
			return nb
		}
	}
	return nil
}

// argsortStable 返回把 values 升序排列的下标序列，相等值保持原序。
func argsortStable(values []float64) []int {
	order := make([]int, len(values))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return values[order[a]] < values[order[b]]
	})
	return order
}
