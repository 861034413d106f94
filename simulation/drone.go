// C:/workspace/go/DroNET-Go/simulation/drone.go
package simulation

import (
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/trace"
)

// ErrInvalidMoveRatio 移动插值比例为负，说明配置或逻辑已经出错，
// 必须中止本次模拟而不是悄悄修正。
var ErrInvalidMoveRatio = fmt.Errorf("negative movement interpolation ratio")

// Drone 一架自主巡逻的无人机。
// 它感知事件、缓存数据包、通过周期 hello 信标维护邻居表，
// 并把转发决策委托给自己的路由策略实例。
type Drone struct {
	Entity

	// Index 本机在编队中的序号，所有按机索引的表都用它。
	Index int

	// --- 静态参数 ---
	Speed              float64
	SensingRange       float64
	CommunicationRange float64
	bufferMaxSize      int

	// --- 机体状态 ---
	ResidualEnergy    float64
	DistanceFromDepot float64

	// MoveRouting 为 true 时无人机正抛下任务径直飞向仓库。
	MoveRouting       bool
	comeBackToMission bool
	lastMoveRouting   bool
	lastMissionCoords Point

	path            []Point
	currentWaypoint int

	// tightestEventDeadline 缓冲区内最紧迫的事件截止时间，
	// 缓冲区为空时为 NaN。
	tightestEventDeadline float64

	buffer []*DataPacket

	// --- hello 协议状态 ---
	linkHoldingTimer float64
	helloInterval    float64
	nextHelloStep    float64
	sequenceNumber   int

	// 对每个潜在邻居各保留两份带时间戳的距离采样，
	// 用于估计链路还能维持多久。
	distT1 []float64
	distT2 []float64
	t1     []float64
	t2     []float64

	oneHopNeighbors     []*Drone
	prevOneHopNeighbors []*Drone
	neighborSeq         []int

	// twoHopNeighbors 键为一跳邻居的序号，值为经由它可达的两跳邻居。
	twoHopNeighbors map[int][]*Drone

	// --- 外部协作者 ---
	depot   *Depot
	swarm   []*Drone
	routing RoutingAlgorithm
	cfg     *config.Config
	metrics *Metrics
	rnd     *rand.Rand
	tracer  *trace.Recorder
}

// NewDrone 创建一架无人机，初始位置为路径首个航点。
// rnd 为本副本共享的随机流，电量衰减与随机路由都从它取数。
func NewDrone(index int, path []Point, depot *Depot, cfg *config.Config, m *Metrics, rnd *rand.Rand, tracer *trace.Recorder) (*Drone, error) {
	if len(path) == 0 {
		return nil, fmt.Errorf("无人机 %d 的巡逻路径为空", index)
	}
	d := &Drone{
		Entity:                NewEntity(path[0]),
		Index:                 index,
		Speed:                 cfg.DroneSpeed,
		SensingRange:          cfg.DroneSenRange,
		CommunicationRange:    cfg.DroneComRange,
		bufferMaxSize:         cfg.DroneMaxBufferSize,
		ResidualEnergy:        cfg.DroneMaxEnergy,
		path:                  path,
		tightestEventDeadline: math.NaN(),
		helloInterval:         1,
		distT1:                make([]float64, cfg.NDrones),
		distT2:                make([]float64, cfg.NDrones),
		t1:                    make([]float64, cfg.NDrones),
		t2:                    make([]float64, cfg.NDrones),
		neighborSeq:           make([]int, cfg.NDrones),
		twoHopNeighbors:       make(map[int][]*Drone),
		depot:                 depot,
		cfg:                   cfg,
		metrics:               m,
		rnd:                   rnd,
		tracer:                tracer,
	}
	for i := range cfg.NDrones {
		d.distT1[i] = config.DistanceSentinel
		d.distT2[i] = config.DistanceSentinel
		d.neighborSeq[i] = -1
	}

	algo, err := NewRoutingAlgorithm(cfg.RoutingAlgorithm, d)
	if err != nil {
		return nil, err
	}
	d.routing = algo
	return d, nil
}

// SetSwarm 注入编队名册。过期反馈广播要扫它把结局送到每个路由实例。
func (d *Drone) SetSwarm(drones []*Drone) {
	d.swarm = drones
}

// RoutingAlgorithmInstance 本机的路由策略实例。
func (d *Drone) RoutingAlgorithmInstance() RoutingAlgorithm {
	return d.routing
}

// ===================================================================
//                           移动状态机
// ===================================================================

// Move 推进一个时间步的移动。正常状态沿航点巡逻，
// MoveRouting 置位时飞向仓库，转向结束后先折返离开任务的位置。
func (d *Drone) Move(dt float64) error {
	if d.MoveRouting || d.comeBackToMission {
		d.metrics.TimeOnActiveRouting++
	}

	if d.MoveRouting {
		if !d.lastMoveRouting {
			// 首次进入转向，先记下任务中断点以便回归
			d.lastMissionCoords = d.Coords
		}
		if err := d.moveToDepot(dt); err != nil {
			return err
		}
	} else {
		if d.lastMoveRouting {
			d.comeBackToMission = true
		}
		if err := d.moveToMission(dt); err != nil {
			return err
		}
		d.metrics.TimeOnMission++
	}

	d.lastMoveRouting = d.MoveRouting
	return nil
}

func (d *Drone) moveToMission(dt float64) error {
	if d.currentWaypoint >= len(d.path)-1 {
		d.currentWaypoint = -1
	}

	p0 := d.Coords
	var p1 Point
	if d.comeBackToMission {
		p1 = d.lastMissionCoords
	} else {
		p1 = d.path[d.currentWaypoint+1]
	}

	allDistance := EuclideanDistance(p0, p1)
	distance := dt * d.Speed
	if allDistance == 0 || distance == 0 {
		d.arriveAt(p1)
		return nil
	}

	t := distance / allDistance
	switch {
	case t >= 1:
		d.arriveAt(p1)
	case t <= 0:
		return fmt.Errorf("无人机 %d 任务移动比例 %f 非法: %w", d.Index, t, ErrInvalidMoveRatio)
	default:
		d.Coords = lerp(p0, p1, t)
	}
	return nil
}

// arriveAt 处理到达: 返航到达则清返航标志，巡逻到达则推进航点。
func (d *Drone) arriveAt(p1 Point) {
	if d.comeBackToMission {
		d.comeBackToMission = false
		d.Coords = p1
	} else {
		d.currentWaypoint++
		d.Coords = d.path[d.currentWaypoint]
	}
}

func (d *Drone) moveToDepot(dt float64) error {
	p0 := d.Coords
	p1 := d.depot.Coords

	allDistance := EuclideanDistance(p0, p1)
	if allDistance == 0 {
		d.MoveRouting = false
		return nil
	}

	t := dt * d.Speed / allDistance
	switch {
	case t >= 1:
		d.Coords = p1
	case t <= 0:
		return fmt.Errorf("无人机 %d 转向移动比例 %f 非法: %w", d.Index, t, ErrInvalidMoveRatio)
	default:
		d.Coords = lerp(p0, p1, t)
	}
	return nil
}

// NextTarget 无人机当前正在飞向的点。
func (d *Drone) NextTarget() Point {
	if d.MoveRouting {
		return d.depot.Coords
	}
	if d.comeBackToMission {
		return d.lastMissionCoords
	}
	if d.currentWaypoint >= len(d.path)-1 {
		return d.path[0]
	}
	return d.path[d.currentWaypoint+1]
}

// ===================================================================
//                     邻居发现与自适应 hello 间隔
// ===================================================================

// CalcDistances 把本步到各邻居的距离记为 t2 采样。
func (d *Drone) CalcDistances(neighbors []*Drone, curStep int) {
	for _, nb := range neighbors {
		d.distT2[nb.Index] = EuclideanDistance(d.Coords, nb.Coords)
		d.t2[nb.Index] = float64(curStep)
	}
}

// UpdateHelloInterval 由两份距离采样估计每条链路还能维持多久，
// 取最大值作为链路保持计时，再据此调整 hello 发送间隔。
// 邻居正在靠近时用接近速度外推出界时间，远离或无历史时
// 退化为 距离/自身速度 的保守估计。
func (d *Drone) UpdateHelloInterval(neighbors []*Drone, curStep int) {
	if len(neighbors) == 0 {
		return
	}

	d.CalcDistances(neighbors, curStep)

	linkDuration := make([]float64, len(neighbors))
	for i, nb := range neighbors {
		idx := nb.Index
		delta := d.distT2[idx] - d.distT1[idx]
		elapsed := d.t2[idx] - d.t1[idx]
		if delta < 0 && elapsed > 0 {
			closingSpeed := delta / elapsed
			linkDuration[i] = math.Abs(d.CommunicationRange-d.distT2[idx]) / math.Abs(closingSpeed)
		} else {
			linkDuration[i] = d.distT2[idx] / d.Speed
		}
	}

	d.linkHoldingTimer = NanMax(linkDuration...)

	interval := math.Ceil(config.Tau * d.linkHoldingTimer)
	if math.IsNaN(interval) || interval < 1 {
		interval = 1
	}
	d.helloInterval = interval

	copy(d.t1, d.t2)
	copy(d.distT1, d.distT2)
}

// HelloInterval 当前的 hello 发送间隔 (步)。
func (d *Drone) HelloInterval() float64 {
	return d.helloInterval
}

// LinkHoldingTimer 最近一次估计的链路保持时间。
func (d *Drone) LinkHoldingTimer() float64 {
	return d.linkHoldingTimer
}

// HelloIsDue 本步是否应当广播 hello 信标。
func (d *Drone) HelloIsDue(curStep int) bool {
	return float64(curStep) >= d.nextHelloStep
}

// ScheduleNextHello 按当前间隔排定下一次信标。
func (d *Drone) ScheduleNextHello(curStep int) {
	d.nextHelloStep = float64(curStep) + d.helloInterval
}

// BuildHelloPacket 组装一个信标并把本机序列号加一。
// 两个邻居表字段都取本步快照，不随本机后续更新;
// 其中两跳表只随信标传输，接收方不读取。
func (d *Drone) BuildHelloPacket(curStep int) *HelloPacket {
	hp := &HelloPacket{
		Packet:           newPacket(curStep, nil, d.cfg),
		Sender:           d,
		Position:         d.Coords,
		Speed:            d.Speed,
		NextTarget:       d.NextTarget(),
		LinkHoldingTimer: d.linkHoldingTimer,
		SequenceNumber:   d.sequenceNumber,
		OneHopNeighbors:  slices.Clone(d.oneHopNeighbors),
		TwoHopNeighbors:  maps.Clone(d.twoHopNeighbors),
	}
	d.sequenceNumber++
	return hp
}

// AcceptHello 处理收到的信标: 登记发送方为一跳邻居，
// 发送方通告的一跳邻居即本机经由它的两跳邻居。
// 序列号不大于已见值的过期信标被丢弃。
func (d *Drone) AcceptHello(hp *HelloPacket) {
	src := hp.Sender
	if src == nil || src.Index == d.Index {
		return
	}
	if hp.SequenceNumber <= d.neighborSeq[src.Index] {
		return
	}
	d.neighborSeq[src.Index] = hp.SequenceNumber

	if !containsDrone(d.oneHopNeighbors, src) {
		d.oneHopNeighbors = append(d.oneHopNeighbors, src)
	}
	d.twoHopNeighbors[src.Index] = hp.OneHopNeighbors
}

// PruneNeighborTables 清掉已经飞出通信范围的邻居表项，
// 并对上一步还在、这一步已失联的链路记一条断链轨迹。
func (d *Drone) PruneNeighborTables(curStep int) {
	kept := d.oneHopNeighbors[:0]
	for _, nb := range d.oneHopNeighbors {
		if EuclideanDistance(d.Coords, nb.Coords) <= d.CommunicationRange {
			kept = append(kept, nb)
		} else {
			delete(d.twoHopNeighbors, nb.Index)
		}
	}
	d.oneHopNeighbors = kept

	for _, prev := range d.prevOneHopNeighbors {
		if !containsDrone(d.oneHopNeighbors, prev) {
			d.tracer.LinkBroken(d.Index, prev.Index, curStep)
		}
	}
	d.prevOneHopNeighbors = slices.Clone(d.oneHopNeighbors)
}

// OneHopNeighbors 当前已知的一跳邻居。邻居表是缓存而非权威成员关系。
func (d *Drone) OneHopNeighbors() []*Drone {
	return d.oneHopNeighbors
}

// TwoHopNeighbors 当前已知的两跳邻居表。
func (d *Drone) TwoHopNeighbors() map[int][]*Drone {
	return d.twoHopNeighbors
}

func containsDrone(list []*Drone, target *Drone) bool {
	for _, d := range list {
		if d.Index == target.Index {
			return true
		}
	}
	return false
}

// ===================================================================
//                       感知、缓冲与电量
// ===================================================================

// FeelEvent 在机体坐标处感知一个事件并把数据包放入缓冲区。
// 正在转向或返航的无人机顾不上感知，事件计入错过指标。
func (d *Drone) FeelEvent(curStep int) {
	ev := NewEvent(d.Coords, curStep, d.cfg, d.metrics)
	pck := ev.AsPacket(curStep, d)
	if !d.MoveRouting && !d.comeBackToMission {
		d.buffer = append(d.buffer, pck)
		d.metrics.AllDataPackets++
		d.tracer.PacketGenerated(d.Index, pck.Identifier, ev.Identifier, curStep)
	} else {
		d.metrics.RegisterEventNotListened(ev)
		d.tracer.EventMissed(d.Index, ev.Identifier, curStep)
	}
}

// UpdatePackets 一趟扫描把过期数据包清出缓冲区，
// 同时重算缓冲区内最紧迫的事件截止时间。
// 每清掉一个过期包，若当前策略参与学习，就把一条负反馈
// 广播给编队里每一个路由实例: 同一事件的数据包可能被复制到了
// 多架机上，每架都独立做过转发决策，都需要被修正。
// 清理后缓冲区若已空，解除转向状态。
func (d *Drone) UpdatePackets(curStep int) {
	kept := make([]*DataPacket, 0, len(d.buffer))
	d.tightestEventDeadline = math.NaN()

	for _, pck := range d.buffer {
		if !pck.IsExpired(curStep) {
			kept = append(kept, pck)
			if pck.EventRef != nil {
				d.tightestEventDeadline = NanMin(d.tightestEventDeadline, float64(pck.EventRef.Deadline))
			}
			continue
		}

		d.tracer.PacketExpired(d.Index, pck.Identifier, pck.EventRef.Identifier, curStep)
		if d.cfg.RoutingAlgorithm.IsLearning() {
			for _, other := range d.swarm {
				other.routing.Feedback(d, pck.EventRef.Identifier, d.cfg.EventDuration, -1)
			}
		}
	}

	d.buffer = kept
	if len(d.buffer) == 0 {
		d.MoveRouting = false
	}
}

// PacketIsExpiring 是否存在再不送就要过期的数据包。
// 判据: 以当前速度飞到仓库的耗时落在最紧迫截止时间前的容差窗口内。
// 外部策略可以用它决定是否强制转向，本机只暴露谓词。
func (d *Drone) PacketIsExpiring(curStep int) bool {
	timeToDepot := d.DistanceFromDepot / d.Speed
	eventTimeToDead := (d.tightestEventDeadline - float64(curStep)) * d.cfg.TimeStepDuration
	return eventTimeToDead-config.ExpiringTolerance < timeToDepot && timeToDepot <= eventTimeToDead
}

// TightestEventDeadline 缓冲区内最紧迫的事件截止时间，空时为 NaN。
func (d *Drone) TightestEventDeadline() float64 {
	return d.tightestEventDeadline
}

// IsFull 缓冲区是否已满。插入路径不设防护，调用方必须先查本方法。
func (d *Drone) IsFull() bool {
	return d.BufferLength() == d.bufferMaxSize
}

// IsKnownPacket 缓冲区里是否已有关联同一事件的数据包。
func (d *Drone) IsKnownPacket(pck *DataPacket) bool {
	for _, own := range d.buffer {
		if own.SameEvent(&pck.Packet) {
			return true
		}
	}
	return false
}

// AcceptPackets 接收另一架无人机递来的数据包，按事件去重。
// 这里沿用不查容量的历史行为: 原持有方稍后会清掉自己的副本，
// 重复通告由事件去重挡住。
func (d *Drone) AcceptPackets(packets []*DataPacket) {
	for _, pck := range packets {
		if !d.IsKnownPacket(pck) {
			d.buffer = append(d.buffer, pck)
		}
	}
}

// EmptyBuffer 清空缓冲区。
func (d *Drone) EmptyBuffer() {
	d.buffer = nil
}

// AllPackets 缓冲区内的全部数据包。
func (d *Drone) AllPackets() []*DataPacket {
	return d.buffer
}

// BufferLength 缓冲区内数据包数量。
func (d *Drone) BufferLength() int {
	return len(d.buffer)
}

// RemovePackets 按身份从缓冲区移除给定数据包。
func (d *Drone) RemovePackets(packets []*DataPacket) {
	for _, pck := range packets {
		for i, own := range d.buffer {
			if own.Identifier == pck.Identifier {
				d.buffer = append(d.buffer[:i], d.buffer[i+1:]...)
				break
			}
		}
	}
}

// Routing 刷新到仓库的距离后把本步的转发决策交给路由策略。
func (d *Drone) Routing(drones []*Drone, depot *Depot, curStep int) {
	d.DistanceFromDepot = EuclideanDistance(d.depot.Coords, d.Coords)
	d.routing.Routing(depot, drones, curStep)
}

// UpdateBattery 电量每步按均匀分布随机衰减，只减不增，扣穿归零。
func (d *Drone) UpdateBattery(curStep int) {
	drain := d.rnd.Float64() * (d.cfg.DroneMaxEnergy / float64(d.cfg.LenSimulation))
	d.ResidualEnergy -= drain
	if d.ResidualEnergy < 0 {
		d.ResidualEnergy = 0
	}
}

// DroneRawStats Excel自动统计需要以下两个函数
type DroneRawStats struct {
	Index             int
	BufferLength      int
	ResidualEnergy    float64
	DistanceFromDepot float64
	HelloInterval     float64
	SequenceNumber    int
	OneHopNeighbors   int
	MoveRouting       bool
}

func (d *Drone) GetRawStats() DroneRawStats {
	return DroneRawStats{
		Index:             d.Index,
		BufferLength:      d.BufferLength(),
		ResidualEnergy:    d.ResidualEnergy,
		DistanceFromDepot: d.DistanceFromDepot,
		HelloInterval:     d.helloInterval,
		SequenceNumber:    d.sequenceNumber,
		OneHopNeighbors:   len(d.oneHopNeighbors),
		MoveRouting:       d.MoveRouting,
	}
}
