// C:/workspace/go/DroNET-Go/config/config.go
package config

import (
	"fmt"
)

// RoutingKind 标识一种可插拔的路由策略。
type RoutingKind string

const (
	RoutingQTAR RoutingKind = "QTAR" // 基于 Q 表的强化学习路由
	RoutingGEO  RoutingKind = "GEO"  // 地理贪心路由 (基线)
	RoutingRND  RoutingKind = "RND"  // 随机路由 (基线)
)

// IsLearning 报告该策略是否参与反馈学习。
// 基线策略 (GEO/RND) 不接收送达/过期反馈广播。
func (k RoutingKind) IsLearning() bool {
	switch k {
	case RoutingGEO, RoutingRND:
		return false
	default:
		return true
	}
}

// ===================================================================
//                           协议固定常量
// ===================================================================

const (
	// Tau Hello 间隔系数: hello_interval = ceil(tau * link_holding_timer)。
	Tau = 0.5

	// ExpiringTolerance 判定"包即将过期"的容差窗口 (秒)。
	ExpiringTolerance = 5.0

	// DistanceSentinel 邻居距离采样的初始哨兵值。
	// 取值须大于通信范围内可能出现的任何真实距离。
	DistanceSentinel = 2030.0

	// QTAR 奖励的三项权重: 时延、速度、剩余电量。
	QTARWeightDelay  = 0.7
	QTARWeightSpeed  = 0.2
	QTARWeightEnergy = 0.1
)

// ===================================================================
//                           模拟参数
// ===================================================================

// Config 汇总一次模拟所需的全部参数。
// 模拟核心只读取注入的 Config 副本，不读取任何运行期全局变量，
// 以便多副本参数扫描时各副本完全隔离。
type Config struct {
	// Seed 随机数种子。同一种子下模拟结果可完全复现。
	Seed int64

	// NDrones 参与模拟的无人机数量。
	NDrones int

	// EnvWidth / EnvHeight 兴趣区域的尺寸 (米)。
	EnvWidth  float64
	EnvHeight float64

	// LenSimulation 模拟总步数。
	LenSimulation int

	// TimeStepDuration 每个时间步对应的物理时长 (秒)。
	TimeStepDuration float64

	// EventDuration 事件自产生起的生存期 (步)。
	// 超过该期限后事件不再值得上报，相关数据包随之作废。
	EventDuration int

	// EventGenerationInterval 每隔多少步触发一轮事件感知。
	EventGenerationInterval int

	// EventGenerationProb 每轮感知中单架无人机感知到事件的概率。
	EventGenerationProb float64

	// PacketsMaxTTL 数据包允许经过的最大跳数。
	// 注意: 跳数只被记录并用于路由决策，过期判定始终以事件截止时间为准。
	PacketsMaxTTL int

	// DroneMaxBufferSize 单机缓冲区容量 (包数)。
	DroneMaxBufferSize int

	// DroneMaxEnergy 满电电量。电量每步随机衰减，永不回升。
	DroneMaxEnergy float64

	// DroneSpeed 无人机巡航速度 (米/秒)。
	DroneSpeed float64

	// DroneSenRange 感知半径 (米)。当前事件在机体坐标处被感知。
	DroneSenRange float64

	// DroneComRange 机间通信半径 (米)。
	DroneComRange float64

	// DepotComRange 仓库接收半径 (米)。进入该半径的无人机可卸载数据包。
	DepotComRange float64

	// DepotX / DepotY 仓库坐标。
	DepotX float64
	DepotY float64

	// RoutingAlgorithm 本次模拟采用的路由策略。
	RoutingAlgorithm RoutingKind

	// RoutingIfExpiring 为 true 时，携带即将过期数据包的无人机
	// 会中断巡逻任务，径直飞向仓库抢救数据。
	RoutingIfExpiring bool

	// WaypointsPerPath 随机巡逻路径的航点数量。
	WaypointsPerPath int
}

// Default 返回一组与论文场景对应的默认参数。
func Default() Config {
	return Config{
		Seed:                    42,
		NDrones:                 10,
		EnvWidth:                1500,
		EnvHeight:               1500,
		LenSimulation:           24000,
		TimeStepDuration:        0.15,
		EventDuration:           2000,
		EventGenerationInterval: 65,
		EventGenerationProb:     0.8,
		PacketsMaxTTL:           64,
		DroneMaxBufferSize:      500000,
		DroneMaxEnergy:          100000,
		DroneSpeed:              8,
		DroneSenRange:           0,
		DroneComRange:           200,
		DepotComRange:           200,
		DepotX:                  750,
		DepotY:                  0,
		RoutingAlgorithm:        RoutingQTAR,
		RoutingIfExpiring:       true,
		WaypointsPerPath:        10,
	}
}

// Validate 校验参数组合是否可以开始一次模拟。
func (c *Config) Validate() error {
	if c.NDrones <= 0 {
		return fmt.Errorf("无人机数量必须为正, 得到 %d", c.NDrones)
	}
	if c.LenSimulation <= 0 {
		return fmt.Errorf("模拟步数必须为正, 得到 %d", c.LenSimulation)
	}
	if c.TimeStepDuration <= 0 {
		return fmt.Errorf("时间步长必须为正, 得到 %f", c.TimeStepDuration)
	}
	if c.EventDuration <= 0 {
		return fmt.Errorf("事件生存期必须为正, 得到 %d", c.EventDuration)
	}
	if c.PacketsMaxTTL <= 0 {
		return fmt.Errorf("最大跳数必须为正, 得到 %d", c.PacketsMaxTTL)
	}
	if c.DroneSpeed <= 0 {
		return fmt.Errorf("无人机速度必须为正, 得到 %f", c.DroneSpeed)
	}
	if c.DroneMaxBufferSize <= 0 {
		return fmt.Errorf("缓冲区容量必须为正, 得到 %d", c.DroneMaxBufferSize)
	}
	if c.EnvWidth <= 0 || c.EnvHeight <= 0 {
		return fmt.Errorf("地图尺寸必须为正, 得到 %.0fx%.0f", c.EnvWidth, c.EnvHeight)
	}
	if c.WaypointsPerPath < 2 {
		return fmt.Errorf("巡逻路径至少需要 2 个航点, 得到 %d", c.WaypointsPerPath)
	}
	switch c.RoutingAlgorithm {
	case RoutingQTAR, RoutingGEO, RoutingRND:
	default:
		return fmt.Errorf("未知的路由策略 %q", c.RoutingAlgorithm)
	}
	return nil
}
