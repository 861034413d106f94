// C:/workspace/go/DroNET-Go/viz/state.go
package viz

import (
	"github.com/davegabe/DroNET-hw2/simulation"
)

// WorldState 一帧可视化快照，按步广播给前端。
type WorldState struct {
	Step      int     `json:"step"`
	Algorithm string  `json:"algorithm"`
	Width     float64 `json:"width"`
	Height    float64 `json:"height"`

	Depot  DepotState   `json:"depot"`
	Drones []DroneState `json:"drones"`

	DeliveredEvents int     `json:"delivered_events"`
	DeliveryRatio   float64 `json:"delivery_ratio"`
}

// DroneState 单架无人机的可视化状态。
type DroneState struct {
	Index        int              `json:"index"`
	Coords       simulation.Point `json:"coords"`
	Target       simulation.Point `json:"target"`
	BufferLength int              `json:"buffer_length"`
	Energy       float64          `json:"energy"`
	MoveRouting  bool             `json:"move_routing"`
	Neighbors    []int            `json:"neighbors"`
}

// DepotState 仓库的可视化状态。
type DepotState struct {
	Coords             simulation.Point `json:"coords"`
	CommunicationRange float64          `json:"communication_range"`
	Received           int              `json:"received"`
}

// Snapshot 从模拟器当前状态组装一帧快照。
func Snapshot(s *simulation.Simulator, step int) WorldState {
	cfg := s.Config()
	depot := s.Depot()

	drones := make([]DroneState, 0, len(s.Drones()))
	for _, d := range s.Drones() {
		neighbors := make([]int, 0, len(d.OneHopNeighbors()))
		for _, nb := range d.OneHopNeighbors() {
			neighbors = append(neighbors, nb.Index)
		}
		drones = append(drones, DroneState{
			Index:        d.Index,
			Coords:       d.Coords,
			Target:       d.NextTarget(),
			BufferLength: d.BufferLength(),
			Energy:       d.ResidualEnergy,
			MoveRouting:  d.MoveRouting,
			Neighbors:    neighbors,
		})
	}

	return WorldState{
		Step:      step,
		Algorithm: string(cfg.RoutingAlgorithm),
		Width:     cfg.EnvWidth,
		Height:    cfg.EnvHeight,
		Depot: DepotState{
			Coords:             depot.Coords,
			CommunicationRange: depot.CommunicationRange,
			Received:           depot.BufferLength(),
		},
		Drones:          drones,
		DeliveredEvents: s.Metrics().DeliveredEvents(),
		DeliveryRatio:   s.Metrics().DeliveryRatio(),
	}
}
