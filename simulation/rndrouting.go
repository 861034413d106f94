// C:/workspace/go/DroNET-Go/simulation/rndrouting.go
package simulation

import "github.com/google/uuid"

// RNDRouting 随机基线: 在一跳邻居里均匀随机挑一个当中继。
type RNDRouting struct {
	routingBase
}

func NewRNDRouting(d *Drone) *RNDRouting {
	r := &RNDRouting{routingBase{drone: d}}
	r.selector = r
	return r
}

func (r *RNDRouting) RelaySelection(pck *DataPacket, nearDepot *Drone) (*Drone, error) {
	if nearDepot != nil {
		return nearDepot, nil
	}

	d := r.drone
	if len(d.oneHopNeighbors) == 0 {
		return nil, ErrNoRelayFound
	}
	return d.oneHopNeighbors[d.rnd.IntN(len(d.oneHopNeighbors))], nil
}

// Feedback 基线策略不学习。
func (r *RNDRouting) Feedback(drone *Drone, eventID uuid.UUID, delay int, outcome int) {
}
