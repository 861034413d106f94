// C:/workspace/go/DroNET-Go/collector/collector.go
package collector

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	deepcopy "github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"

	"github.com/davegabe/DroNET-hw2/simulation"
)

// DataCollector 按固定步数间隔把模拟状态逐行写入 Excel 工作簿。
// 每次采集都先对指标做一次深拷贝快照，区间增量在冻结的快照之间
// 计算，不受模拟继续推进的影响。
type DataCollector struct {
	filename string
	interval int

	f          *excelize.File
	droneRow   int
	networkRow int

	// lastSnap 上一次采集时冻结的指标快照。
	lastSnap *simulation.Metrics
}

const (
	droneSheet   = "Drone_Stats"
	networkSheet = "Network_Stats"
	summarySheet = "Summary"
)

// NewDataCollector 创建一个数据收集器，每 intervalSteps 步采集一次。
func NewDataCollector(intervalSteps int) *DataCollector {
	// 1. 创建一个带时间戳的基础文件名
	baseFilename := fmt.Sprintf("simulation_results_%s.xlsx", time.Now().Format("20060102_150405"))

	// 2. 使用 filepath.Join 将 "report" 目录和基础文件名安全地拼接成完整路径
	fullPath := filepath.Join("report", baseFilename)

	f := excelize.NewFile()
	f.NewSheet(droneSheet)
	f.NewSheet(networkSheet)
	f.NewSheet(summarySheet)
	f.DeleteSheet("Sheet1")

	headersDrone := []string{"时间步", "无人机号", "缓冲包数", "剩余电量", "距仓库距离 (m)", "Hello间隔 (步)", "信标序号", "一跳邻居数", "是否转向"}
	_ = f.SetSheetRow(droneSheet, "A1", &headersDrone)

	headersNetwork := []string{"时间步", "产生事件数 (区间)", "送达记录数 (区间)", "送达事件数 (累计)", "送达率 (%)", "平均送达时延 (步)", "错过事件数 (累计)"}
	_ = f.SetSheetRow(networkSheet, "A1", &headersNetwork)

	return &DataCollector{
		filename:   fullPath,
		interval:   intervalSteps,
		f:          f,
		droneRow:   2,
		networkRow: 2,
	}
}

// OnStep 挂到模拟器的每步回调上，按间隔触发采集。
func (dc *DataCollector) OnStep(s *simulation.Simulator, step int) {
	if dc.interval <= 0 || (step+1)%dc.interval != 0 {
		return
	}
	dc.collect(s, step)
}

func (dc *DataCollector) collect(s *simulation.Simulator, step int) {
	var snap simulation.Metrics
	if err := deepcopy.Copy(&snap, s.Metrics()); err != nil {
		log.Printf("❌ 指标快照失败: %v", err)
		return
	}

	// --- 收集并写入所有无人机的数据 ---
	for _, d := range s.Drones() {
		stats := d.GetRawStats()
		rowData := []interface{}{
			step,
			stats.Index,
			stats.BufferLength,
			stats.ResidualEnergy,
			stats.DistanceFromDepot,
			stats.HelloInterval,
			stats.SequenceNumber,
			stats.OneHopNeighbors,
			stats.MoveRouting,
		}
		_ = dc.f.SetSheetRow(droneSheet, fmt.Sprintf("A%d", dc.droneRow), &rowData)
		dc.droneRow++
	}

	// --- 收集并写入网络级数据 (区间增量基于上一份快照) ---
	eventsDelta := len(snap.Events)
	deliveriesDelta := len(snap.Deliveries)
	if dc.lastSnap != nil {
		eventsDelta -= len(dc.lastSnap.Events)
		deliveriesDelta -= len(dc.lastSnap.Deliveries)
	}

	netRowData := []interface{}{
		step,
		eventsDelta,
		deliveriesDelta,
		snap.DeliveredEvents(),
		snap.DeliveryRatio() * 100,
		snap.MeanDeliveryDelay(),
		len(snap.EventsNotListened),
	}
	_ = dc.f.SetSheetRow(networkSheet, fmt.Sprintf("A%d", dc.networkRow), &netRowData)
	dc.networkRow++

	dc.lastSnap = &snap
}

// Save 写入汇总页并把工作簿落盘。
func (dc *DataCollector) Save(m *simulation.Metrics) error {
	defer func() {
		if err := dc.f.Close(); err != nil {
			log.Printf("❌ 关闭Excel文件时出错: %v", err)
		}
	}()

	stats := m.GetRawStats()
	summaryRows := [][]interface{}{
		{"产生事件数", stats.Events},
		{"错过事件数", stats.EventsNotListened},
		{"生成数据包数", stats.GeneratedPackets},
		{"入缓冲数据包数", stats.AllDataPackets},
		{"送达记录数 (含重复)", stats.Deliveries},
		{"送达事件数 (去重)", stats.DeliveredEvents},
		{"送达率 (%)", stats.DeliveryRatio * 100},
		{"平均送达时延 (步)", stats.MeanDeliveryDelay},
		{"巡逻任务总步数", stats.TimeOnMission},
		{"转向/返航总步数", stats.TimeOnActiveRouting},
	}
	for i, row := range summaryRows {
		_ = dc.f.SetSheetRow(summarySheet, fmt.Sprintf("A%d", i+1), &row)
	}

	// 3. 在保存文件之前，确保目标目录存在
	reportDir := filepath.Dir(dc.filename)
	if err := os.MkdirAll(reportDir, 0755); err != nil {
		log.Printf("❌ 错误: 无法创建报告目录 '%s': %v", reportDir, err)
	}

	if err := dc.f.SaveAs(dc.filename); err != nil {
		log.Printf("❌ 错误: 无法保存 Excel 文件: %v", err)
		return err
	}
	log.Printf("✅ 模拟数据已成功保存到 %s", dc.filename)
	return nil
}
