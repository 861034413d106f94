// C:/workspace/go/DroNET-Go/simulation/entity.go
package simulation

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/davegabe/DroNET-hw2/config"
)

// Entity 是环境中一切对象 (无人机、事件、数据包) 的公共身份。
// 身份由 Identifier 唯一确定，坐标可变而身份不变。
type Entity struct {
	Identifier uuid.UUID `json:"id"`
	Coords     Point     `json:"coords"`
}

// NewEntity 分配一个带全新标识符的实体。
func NewEntity(coords Point) Entity {
	return Entity{Identifier: uuid.New(), Coords: coords}
}

// SameIdentity 报告两个实体是否为同一对象。只比较标识符。
func (e *Entity) SameIdentity(other *Entity) bool {
	return e.Identifier == other.Identifier
}

// ErrInvalidDeadline 显式截止时间早于事件生成时间。
var ErrInvalidDeadline = fmt.Errorf("deadline precedes generation time")

// Event 无人机在兴趣区域内感知到的一个现象。
// 截止时间之后该事件不再值得上报，关联的数据包随之作废。
// 事件创建后不再修改。
type Event struct {
	Entity
	GenerationTime int `json:"i_gen"`
	Deadline       int `json:"i_dead"`
}

// NewEvent 创建一个事件，截止时间为生成时间加配置的事件生存期。
// m 非 nil 时把事件登记进指标收集器。
func NewEvent(coords Point, curStep int, cfg *config.Config, m *Metrics) *Event {
	ev := &Event{
		Entity:         NewEntity(coords),
		GenerationTime: curStep,
		Deadline:       curStep + cfg.EventDuration,
	}
	if m != nil {
		m.RegisterEvent(ev)
	}
	return ev
}

// NewEventWithDeadline 创建一个显式指定截止时间的事件。
// 截止时间早于生成时间是配置错误。
func NewEventWithDeadline(coords Point, curStep, deadline int, m *Metrics) (*Event, error) {
	if deadline < curStep {
		return nil, fmt.Errorf("事件截止时间 %d 早于生成时间 %d: %w", deadline, curStep, ErrInvalidDeadline)
	}
	ev := &Event{
		Entity:         NewEntity(coords),
		GenerationTime: curStep,
		Deadline:       deadline,
	}
	if m != nil {
		m.RegisterEvent(ev)
	}
	return ev, nil
}

// IsExpired 报告事件的截止时间是否已过。
// 恰好等于截止时间的那一步尚未过期。
func (ev *Event) IsExpired(curStep int) bool {
	return curStep > ev.Deadline
}

// AsPacket 把事件包装为数据包，并把 drone 记为第一跳 (跳数从 -1 变为 0)。
// 只在数据包诞生时调用一次。
func (ev *Event) AsPacket(curStep int, drone *Drone) *DataPacket {
	pck := NewDataPacket(curStep, ev, drone.cfg, drone.metrics)
	pck.AddHop(drone)
	return pck
}
