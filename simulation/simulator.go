// C:/workspace/go/DroNET-Go/simulation/simulator.go
package simulation

import (
	"fmt"
	"log"
	"math/rand/v2"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/trace"
)

// Simulator 离散时间调度器，驱动整个编队逐步演化。
// 所有随机性都来自三条独立的 PCG 流 (任务路径 / 事件 / 电量)，
// 同一种子下任意两次运行完全一致。
type Simulator struct {
	cfg config.Config

	drones  []*Drone
	depot   *Depot
	env     *Environment
	metrics *Metrics
	tracer  *trace.Recorder

	curStep int

	rndMission *rand.Rand
	rndEvent   *rand.Rand
	rndEnergy  *rand.Rand

	onStepEnd func(s *Simulator, step int)
}

// NewSimulator 组装一次模拟: 校验配置、铺设随机流、生成仓库、
// 按随机巡逻路径生成编队并互相注入名册。
func NewSimulator(cfg config.Config, tracer *trace.Recorder) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("配置校验失败: %w", err)
	}

	s := &Simulator{
		cfg:        cfg,
		metrics:    NewMetrics(),
		tracer:     tracer,
		rndMission: rand.New(rand.NewPCG(uint64(cfg.Seed), 1)),
		rndEvent:   rand.New(rand.NewPCG(uint64(cfg.Seed), 2)),
		rndEnergy:  rand.New(rand.NewPCG(uint64(cfg.Seed), 3)),
	}

	s.env = NewEnvironment(&s.cfg, s.rndEvent)
	s.depot = NewDepot(Point{X: cfg.DepotX, Y: cfg.DepotY}, &s.cfg, s.metrics, tracer)

	s.drones = make([]*Drone, cfg.NDrones)
	for i := range cfg.NDrones {
		path := RandomMissionPath(s.rndMission, &s.cfg)
		d, err := NewDrone(i, path, s.depot, &s.cfg, s.metrics, s.rndEnergy, tracer)
		if err != nil {
			return nil, fmt.Errorf("创建无人机 %d 失败: %w", i, err)
		}
		s.drones[i] = d
	}
	for _, d := range s.drones {
		d.SetSwarm(s.drones)
	}
	s.depot.SetSwarm(s.drones)
	s.env.AddDrones(s.drones)
	s.env.AddDepot(s.depot)

	return s, nil
}

// SetOnStepEnd 注册每步结束后的回调，供采集器和可视化挂载。
func (s *Simulator) SetOnStepEnd(fn func(s *Simulator, step int)) {
	s.onStepEnd = fn
}

// Run 执行完整模拟。任何一步出错都立即中止并带步号返回。
func (s *Simulator) Run() error {
	log.Printf("🛫 模拟开始: 算法=%s 无人机=%d 步数=%d 种子=%d",
		s.cfg.RoutingAlgorithm, s.cfg.NDrones, s.cfg.LenSimulation, s.cfg.Seed)

	progressEvery := s.cfg.LenSimulation / 10
	if progressEvery == 0 {
		progressEvery = 1
	}

	for step := 0; step < s.cfg.LenSimulation; step++ {
		s.curStep = step
		if err := s.runStep(step); err != nil {
			return fmt.Errorf("第 %d 步执行失败: %w", step, err)
		}
		if s.onStepEnd != nil {
			s.onStepEnd(s, step)
		}
		if (step+1)%progressEvery == 0 {
			log.Printf("⏳ 进度 %3d%%: 步 %d/%d, 已送达事件 %d 个",
				(step+1)*100/s.cfg.LenSimulation, step+1, s.cfg.LenSimulation,
				s.metrics.DeliveredEvents())
		}
	}

	log.Printf("🏁 模拟结束")
	log.Print(s.metrics.Summary())
	return nil
}

// runStep 一个时间步内各阶段按固定次序执行:
// 移动 -> 信标交换 -> 事件感知 -> 路由转发 -> 过期清理 ->
// 仓库卸载 -> 电量衰减。单线程推进，阶段内按编队序号遍历。
func (s *Simulator) runStep(step int) error {
	for _, d := range s.drones {
		if err := d.Move(s.cfg.TimeStepDuration); err != nil {
			return err
		}
	}

	s.helloRound(step)

	if s.cfg.EventGenerationInterval > 0 && step > 0 && step%s.cfg.EventGenerationInterval == 0 {
		for _, d := range s.drones {
			if s.env.EventGenerator.Senses() {
				d.FeelEvent(step)
			}
		}
	}

	for _, d := range s.drones {
		d.Routing(s.drones, s.depot, step)
	}

	for _, d := range s.drones {
		d.UpdatePackets(step)
	}

	for _, d := range s.drones {
		if EuclideanDistance(d.Coords, s.depot.Coords) <= s.depot.CommunicationRange && d.BufferLength() > 0 {
			s.depot.TransferNotifiedPackets(d, step)
			d.EmptyBuffer()
		}
	}

	for _, d := range s.drones {
		d.UpdateBattery(step)
	}

	return nil
}

// helloRound 信标交换阶段。先按当前真实位置算出每架机的在范围
// 邻居并刷新其 hello 间隔，到期的无人机广播信标，广播完统一剪枝。
// 信标只送达广播瞬间真正在通信范围内的邻居。
func (s *Simulator) helloRound(step int) {
	inRange := make([][]*Drone, len(s.drones))
	for i, d := range s.drones {
		for _, other := range s.drones {
			if other.Index == d.Index {
				continue
			}
			if EuclideanDistance(d.Coords, other.Coords) <= d.CommunicationRange {
				inRange[i] = append(inRange[i], other)
			}
		}
	}

	for i, d := range s.drones {
		d.UpdateHelloInterval(inRange[i], step)
	}

	for i, d := range s.drones {
		if !d.HelloIsDue(step) {
			continue
		}
		hp := d.BuildHelloPacket(step)
		for _, nb := range inRange[i] {
			nb.AcceptHello(hp)
		}
		d.ScheduleNextHello(step)
		s.tracer.HelloSent(d.Index, hp.SequenceNumber, d.helloInterval, step)
	}

	for _, d := range s.drones {
		d.PruneNeighborTables(step)
	}
}

func (s *Simulator) Drones() []*Drone {
	return s.drones
}

func (s *Simulator) Depot() *Depot {
	return s.depot
}

func (s *Simulator) Environment() *Environment {
	return s.env
}

func (s *Simulator) Metrics() *Metrics {
	return s.metrics
}

func (s *Simulator) CurrentStep() int {
	return s.curStep
}

func (s *Simulator) Config() config.Config {
	return s.cfg
}
