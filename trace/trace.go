// C:/workspace/go/DroNET-Go/trace/trace.go
package trace

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Recorder 把模拟中的协议事件逐条写入 logfmt 格式的轨迹文件，
// 供 trace-report 工具离线统计。nil Recorder 表示关闭轨迹记录，
// 所有方法对 nil 接收者都是空操作。
type Recorder struct {
	log  *logrus.Logger
	file *os.File
}

// NewRecorder 创建一个写入 path 的轨迹记录器。
func NewRecorder(path string) (*Recorder, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	logger := logrus.New()
	logger.SetOutput(file)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
	})

	return &Recorder{log: logger, file: file}, nil
}

// Close 关闭底层轨迹文件。
func (r *Recorder) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// PacketGenerated 无人机感知到事件并把对应数据包放入了缓冲区。
func (r *Recorder) PacketGenerated(droneIdx int, packetID, eventID uuid.UUID, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "packet_generated",
		"drone":    droneIdx,
		"packet":   packetID,
		"event_id": eventID,
		"step":     step,
	}).Info()
}

// EventMissed 无人机因正在执行转向/返航而错过了一个事件。
func (r *Recorder) EventMissed(droneIdx int, eventID uuid.UUID, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "event_missed",
		"drone":    droneIdx,
		"event_id": eventID,
		"step":     step,
	}).Info()
}

// PacketRelayed 数据包从一架无人机复制转发到另一架。
func (r *Recorder) PacketRelayed(fromIdx, toIdx int, packetID uuid.UUID, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":  "packet_relayed",
		"drone":  fromIdx,
		"relay":  toIdx,
		"packet": packetID,
		"step":   step,
	}).Info()
}

// PacketDelivered 数据包被卸载到仓库。
func (r *Recorder) PacketDelivered(droneIdx int, packetID, eventID uuid.UUID, delay, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "packet_delivered",
		"drone":    droneIdx,
		"packet":   packetID,
		"event_id": eventID,
		"delay":    delay,
		"step":     step,
	}).Info()
}

// PacketExpired 数据包因事件截止时间到达而被清出缓冲区。
func (r *Recorder) PacketExpired(droneIdx int, packetID, eventID uuid.UUID, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "packet_expired",
		"drone":    droneIdx,
		"packet":   packetID,
		"event_id": eventID,
		"step":     step,
	}).Info()
}

// FeedbackApplied 某个路由实例消费了一条送达/过期反馈并更新了价值表。
func (r *Recorder) FeedbackApplied(droneIdx, action int, eventID uuid.UUID, delay, outcome int, value float64) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "feedback_applied",
		"drone":    droneIdx,
		"action":   action,
		"event_id": eventID,
		"delay":    delay,
		"outcome":  outcome,
		"value":    value,
	}).Info()
}

// LinkBroken 上一步还在通信范围内的邻居这一步已经失联。
func (r *Recorder) LinkBroken(droneIdx, peerIdx, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event": "link_broken",
		"drone": droneIdx,
		"peer":  peerIdx,
		"step":  step,
	}).Info()
}

// DiversionStarted 无人机放下巡逻任务，转向仓库抢救即将过期的数据包。
func (r *Recorder) DiversionStarted(droneIdx, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event": "diversion_started",
		"drone": droneIdx,
		"step":  step,
	}).Info()
}

// HelloSent 无人机广播了一个 hello 信标。
func (r *Recorder) HelloSent(droneIdx, seq int, interval float64, step int) {
	if r == nil {
		return
	}
	r.log.WithFields(logrus.Fields{
		"event":    "hello_sent",
		"drone":    droneIdx,
		"seq":      seq,
		"interval": interval,
		"step":     step,
	}).Info()
}
