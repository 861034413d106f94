// C:/workspace/go/DroNET-Go/simulation/depot.go
package simulation

import (
	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/trace"
)

// Depot 地面仓库，网络中所有数据包的最终目的地。
// 它不移动，只在无人机飞入自己的通信范围时吸收其缓冲区，
// 并在学习型路由下把送达反馈广播给整个编队。
type Depot struct {
	Entity

	CommunicationRange float64

	buffer []*DataPacket

	swarm   []*Drone
	cfg     *config.Config
	metrics *Metrics
	tracer  *trace.Recorder
}

// NewDepot 在给定坐标创建仓库。
func NewDepot(coords Point, cfg *config.Config, m *Metrics, tracer *trace.Recorder) *Depot {
	return &Depot{
		Entity:             NewEntity(coords),
		CommunicationRange: cfg.DepotComRange,
		cfg:                cfg,
		metrics:            m,
		tracer:             tracer,
	}
}

// SetSwarm 注入编队名册，送达反馈要广播给每一个路由实例。
func (dep *Depot) SetSwarm(drones []*Drone) {
	dep.swarm = drones
}

// TransferNotifiedPackets 无人机进入范围后调用，卸载其缓冲区内的
// 全部数据包。每个数据包记入送达指标并打上送达时间戳; 学习型路由下
// 还会带着实际送达延迟向全编队广播一条正反馈。
// 清空来源无人机的缓冲区是调用方的责任，这里只登记副本。
func (dep *Depot) TransferNotifiedPackets(current *Drone, curStep int) {
	offloaded := current.AllPackets()
	dep.buffer = append(dep.buffer, offloaded...)

	for _, pck := range offloaded {
		delay := curStep - pck.EventRef.GenerationTime

		if dep.cfg.RoutingAlgorithm.IsLearning() {
			for _, drone := range dep.swarm {
				drone.routing.Feedback(current, pck.EventRef.Identifier, delay, 1)
			}
		}

		pck.DeliveryTime = curStep
		dep.metrics.RegisterDelivery(pck, curStep)
		dep.tracer.PacketDelivered(current.Index, pck.Identifier, pck.EventRef.Identifier, delay, curStep)
	}
}

// AllPackets 仓库已经收下的全部数据包，含同一事件的多份副本。
func (dep *Depot) AllPackets() []*DataPacket {
	return dep.buffer
}

// BufferLength 仓库已收下的数据包数量。
func (dep *Depot) BufferLength() int {
	return len(dep.buffer)
}
