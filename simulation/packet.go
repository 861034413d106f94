// C:/workspace/go/DroNET-Go/simulation/packet.go
package simulation

import (
	"github.com/davegabe/DroNET-hw2/config"
)

// Packet 事件在网络中的传输载体，携带跳数历史。
// 同一个 Packet 对象可以同时被多个缓冲区引用 (复制转发、仓库卸载
// 都只复制引用不复制内容)，去重与反馈关联均按事件标识进行。
type Packet struct {
	Entity

	// CreationTime 数据包创建的时间步。
	CreationTime int

	// EventRef 关联的事件。nil 表示该包不关联事件 (如 hello 信标)，
	// 此时数据包永不过期。
	EventRef *Event

	// RetransmissionCount 累计的转发尝试次数 (含被拒绝的尝试)。
	RetransmissionCount int

	// OptionalPayload 附加数据，协议本身不解释。
	OptionalPayload any

	// DeliveryTime 送达仓库的时间步，-1 表示尚未送达。
	DeliveryTime int

	// IsMovePacket 该包是否由转向仓库的无人机携带过。
	IsMovePacket bool

	// hopCount 从 -1 起，每经过一跳加一，首跳后为 0。
	hopCount    int
	maxHopCount int

	// lastTwoHops 最近两跳的滑动窗口，不是完整路径记录。
	lastTwoHops []*Drone
}

func newPacket(curStep int, ev *Event, cfg *config.Config) Packet {
	coords := Point{}
	if ev != nil {
		coords = ev.Coords
	}
	return Packet{
		Entity:       NewEntity(coords),
		CreationTime: curStep,
		EventRef:     ev,
		hopCount:     -1,
		maxHopCount:  cfg.PacketsMaxTTL,
		DeliveryTime: -1,
	}
}

// AddHop 把 drone 记入滑动窗口 (满两条时淘汰最旧的一条) 并把跳数加一。
// 每当数据包落到一架新的携带无人机手里，恰好调用一次。
func (p *Packet) AddHop(drone *Drone) {
	if len(p.lastTwoHops) == 2 {
		p.lastTwoHops = p.lastTwoHops[1:]
	}
	p.lastTwoHops = append(p.lastTwoHops, drone)
	p.hopCount++
}

// HopCount 数据包已经经过的跳数。
func (p *Packet) HopCount() int {
	return p.hopCount
}

// MaxHopCount 数据包允许的最大跳数。只作路由参考，不触发过期。
func (p *Packet) MaxHopCount() int {
	return p.maxHopCount
}

// LastTwoHops 最近两跳的携带者，最旧在前。
func (p *Packet) LastTwoHops() []*Drone {
	return p.lastTwoHops
}

// IsExpired 数据包的过期完全由关联事件的截止时间决定。
// 跳数达到上限不会触发过期，这是有意保留的非对称。
func (p *Packet) IsExpired(curStep int) bool {
	if p.EventRef == nil {
		return false
	}
	return p.EventRef.IsExpired(curStep)
}

// SameEvent 报告两个数据包是否关联同一个事件。
func (p *Packet) SameEvent(other *Packet) bool {
	if p.EventRef == nil || other.EventRef == nil {
		return false
	}
	return p.EventRef.Identifier == other.EventRef.Identifier
}

// Age 数据包自创建以来经过的步数。
func (p *Packet) Age(curStep int) int {
	return curStep - p.CreationTime
}

// IncreaseTransmissionAttempt 记录一次转发尝试。
func (p *Packet) IncreaseTransmissionAttempt() {
	p.RetransmissionCount++
}

// DataPacket 普通的事件数据包。
type DataPacket struct {
	Packet
}

// NewDataPacket 创建一个数据包。关联了事件且 m 非 nil 时，
// 把包登记进"生成数据包"指标。
func NewDataPacket(curStep int, ev *Event, cfg *config.Config, m *Metrics) *DataPacket {
	pck := &DataPacket{Packet: newPacket(curStep, ev, cfg)}
	if ev != nil && m != nil {
		m.RegisterGeneratedPacket(pck)
	}
	return pck
}

// ACKPacket 对某个数据包的确认。属于包族但核心转发流程不使用它。
type ACKPacket struct {
	Packet
	Src         *Drone
	Dst         *Drone
	AckedPacket *Packet
}

// NewACKPacket 创建一个确认包。
func NewACKPacket(src, dst *Drone, acked *Packet, curStep int, cfg *config.Config) *ACKPacket {
	return &ACKPacket{
		Packet:      newPacket(curStep, nil, cfg),
		Src:         src,
		Dst:         dst,
		AckedPacket: acked,
	}
}

// HelloPacket 周期广播的邻居信标，携带发送方的位置、速度与邻居表。
// 信标只用于邻居发现，从不进入转发缓冲区。
type HelloPacket struct {
	Packet
	Sender           *Drone
	Position         Point
	Speed            float64
	NextTarget       Point
	LinkHoldingTimer float64
	SequenceNumber   int
	OneHopNeighbors  []*Drone
	TwoHopNeighbors  map[int][]*Drone
}
