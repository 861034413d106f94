// C:/workspace/go/DroNET-Go/simulation/metrics.go
package simulation

import (
	"fmt"

	"github.com/google/uuid"
)

// Delivery 一次到仓库的送达记录。
type Delivery struct {
	Packet *DataPacket
	Step   int
}

// Metrics 单次模拟的指标汇总。模拟为单线程协作式推进，
// 指标在步内被同步写入，无并发访问。
type Metrics struct {
	// Events 模拟期间产生的全部事件。
	Events []*Event

	// EventsNotListened 因无人机正在转向/返航而错过的事件。
	EventsNotListened []*Event

	// GeneratedPackets 创建出的全部数据包 (含未入缓冲区的)。
	GeneratedPackets []*DataPacket

	// AllDataPackets 实际进入无人机缓冲区的数据包计数。
	AllDataPackets int

	// Deliveries 全部送达记录，仓库不去重，同一事件可能出现多次。
	Deliveries []Delivery

	// TimeOnMission 所有无人机执行巡逻任务的总步数。
	TimeOnMission int

	// TimeOnActiveRouting 所有无人机处于转向/返航状态的总步数。
	TimeOnActiveRouting int
}

// NewMetrics 创建一个空的指标汇总。
func NewMetrics() *Metrics {
	return &Metrics{}
}

// RegisterEvent 登记一个新产生的事件。
func (m *Metrics) RegisterEvent(ev *Event) {
	m.Events = append(m.Events, ev)
}

// RegisterEventNotListened 登记一个被错过的事件。
func (m *Metrics) RegisterEventNotListened(ev *Event) {
	m.EventsNotListened = append(m.EventsNotListened, ev)
}

// RegisterGeneratedPacket 登记一个新创建的数据包。
func (m *Metrics) RegisterGeneratedPacket(pck *DataPacket) {
	m.GeneratedPackets = append(m.GeneratedPackets, pck)
}

// RegisterDelivery 登记一次送达。
func (m *Metrics) RegisterDelivery(pck *DataPacket, step int) {
	m.Deliveries = append(m.Deliveries, Delivery{Packet: pck, Step: step})
}

// DeliveredEvents 按事件去重后的送达数量。
func (m *Metrics) DeliveredEvents() int {
	seen := make(map[uuid.UUID]bool, len(m.Deliveries))
	for _, del := range m.Deliveries {
		if del.Packet.EventRef == nil {
			continue
		}
		seen[del.Packet.EventRef.Identifier] = true
	}
	return len(seen)
}

// DeliveryRatio 送达事件数占产生事件数的比例。
func (m *Metrics) DeliveryRatio() float64 {
	if len(m.Events) == 0 {
		return 0
	}
	return float64(m.DeliveredEvents()) / float64(len(m.Events))
}

// MeanDeliveryDelay 每个事件首次送达时延 (步) 的平均值。
func (m *Metrics) MeanDeliveryDelay() float64 {
	first := make(map[uuid.UUID]int, len(m.Deliveries))
	for _, del := range m.Deliveries {
		if del.Packet.EventRef == nil {
			continue
		}
		id := del.Packet.EventRef.Identifier
		delay := del.Step - del.Packet.EventRef.GenerationTime
		if old, ok := first[id]; !ok || delay < old {
			first[id] = delay
		}
	}
	if len(first) == 0 {
		return 0
	}
	total := 0
	for _, delay := range first {
		total += delay
	}
	return float64(total) / float64(len(first))
}

// MetricsRawStats Excel自动统计需要以下两个函数
type MetricsRawStats struct {
	Events              int
	EventsNotListened   int
	GeneratedPackets    int
	AllDataPackets      int
	Deliveries          int
	DeliveredEvents     int
	DeliveryRatio       float64
	MeanDeliveryDelay   float64
	TimeOnMission       int
	TimeOnActiveRouting int
}

func (m *Metrics) GetRawStats() MetricsRawStats {
	return MetricsRawStats{
		Events:              len(m.Events),
		EventsNotListened:   len(m.EventsNotListened),
		GeneratedPackets:    len(m.GeneratedPackets),
		AllDataPackets:      m.AllDataPackets,
		Deliveries:          len(m.Deliveries),
		DeliveredEvents:     m.DeliveredEvents(),
		DeliveryRatio:       m.DeliveryRatio(),
		MeanDeliveryDelay:   m.MeanDeliveryDelay(),
		TimeOnMission:       m.TimeOnMission,
		TimeOnActiveRouting: m.TimeOnActiveRouting,
	}
}

// Summary 返回一段可读的统计文本。
func (m *Metrics) Summary() string {
	stats := fmt.Sprintf("--- 模拟统计 ---\n")
	stats += fmt.Sprintf("  - 产生事件数: %d\n", len(m.Events))
	stats += fmt.Sprintf("  - 错过事件数: %d\n", len(m.EventsNotListened))
	stats += fmt.Sprintf("  - 生成数据包数: %d\n", len(m.GeneratedPackets))
	stats += fmt.Sprintf("  - 入缓冲数据包数: %d\n", m.AllDataPackets)
	stats += fmt.Sprintf("  - 送达记录数 (含重复): %d\n", len(m.Deliveries))
	stats += fmt.Sprintf("  - 送达事件数 (去重): %d\n", m.DeliveredEvents())
	stats += fmt.Sprintf("  - 送达率: %.2f%%\n", m.DeliveryRatio()*100)
	stats += fmt.Sprintf("  - 平均送达时延: %.1f 步\n", m.MeanDeliveryDelay())
	stats += fmt.Sprintf("  - 巡逻任务总步数: %d\n", m.TimeOnMission)
	stats += fmt.Sprintf("  - 转向/返航总步数: %d\n", m.TimeOnActiveRouting)
	stats += "------------------\n"
	return stats
}
