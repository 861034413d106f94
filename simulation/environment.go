// C:/workspace/go/DroNET-Go/simulation/environment.go
package simulation

import (
	"math/rand/v2"

	"github.com/davegabe/DroNET-hw2/config"
)

// Environment 兴趣区域的描述性状态: 地图尺寸、编队名册、仓库
// 与事件发生器。它自己不推进任何逻辑，只供调度器和可视化读取。
type Environment struct {
	Width  float64
	Height float64

	Drones []*Drone
	Depot  *Depot

	EventGenerator *EventGenerator
}

func NewEnvironment(cfg *config.Config, rndEvent *rand.Rand) *Environment {
	return &Environment{
		Width:          cfg.EnvWidth,
		Height:         cfg.EnvHeight,
		EventGenerator: NewEventGenerator(cfg, rndEvent),
	}
}

func (e *Environment) AddDrones(drones []*Drone) {
	e.Drones = drones
}

func (e *Environment) AddDepot(depot *Depot) {
	e.Depot = depot
}

// EventGenerator 事件发生器。感知轮到来时对每架无人机独立掷骰，
// 也能在区域内均匀采样事件坐标。
type EventGenerator struct {
	width  float64
	height float64
	prob   float64
	rnd    *rand.Rand
}

func NewEventGenerator(cfg *config.Config, rnd *rand.Rand) *EventGenerator {
	return &EventGenerator{
		width:  cfg.EnvWidth,
		height: cfg.EnvHeight,
		prob:   cfg.EventGenerationProb,
		rnd:    rnd,
	}
}

// Senses 掷一次骰子: 本轮该无人机是否感知到事件。
func (g *EventGenerator) Senses() bool {
	return g.rnd.Float64() < g.prob
}

// UniformEventCoords 在兴趣区域内均匀随机采一个坐标。
func (g *EventGenerator) UniformEventCoords() Point {
	return Point{
		X: g.rnd.Float64() * g.width,
		Y: g.rnd.Float64() * g.height,
	}
}

// RandomMissionPath 为一架无人机生成一条随机巡逻路径。
// 航点在区域内均匀分布，路径到头后从首个航点循环。
func RandomMissionPath(rnd *rand.Rand, cfg *config.Config) []Point {
	path := make([]Point, cfg.WaypointsPerPath)
	for i := range path {
		path[i] = Point{
			X: rnd.Float64() * cfg.EnvWidth,
			Y: rnd.Float64() * cfg.EnvHeight,
		}
	}
	return path
}
