// C:/workspace/go/DroNET-Go/simulation/georouting.go
package simulation

import "github.com/google/uuid"

// GEORouting 地理贪心基线: 把数据包推给比自己更靠近仓库的
// 最近邻居，没有更近的邻居就按兵不动。
type GEORouting struct {
	routingBase
}

func NewGEORouting(d *Drone) *GEORouting {
	g := &GEORouting{routingBase{drone: d}}
	g.selector = g
	return g
}

func (g *GEORouting) RelaySelection(pck *DataPacket, nearDepot *Drone) (*Drone, error) {
	if nearDepot != nil {
		return nearDepot, nil
	}

	d := g.drone
	var best *Drone
	bestDistance := d.DistanceFromDepot
	for _, nb := range d.oneHopNeighbors {
		distance := EuclideanDistance(nb.Coords, d.depot.Coords)
		if distance < bestDistance {
			best = nb
			bestDistance = distance
		}
	}
	if best == nil {
		return nil, ErrNoRelayFound
	}
	return best, nil
}

// Feedback 基线策略不学习。
func (g *GEORouting) Feedback(drone *Drone, eventID uuid.UUID, delay int, outcome int) {
}
