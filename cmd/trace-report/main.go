// C:/workspace/go/DroNET-Go/cmd/trace-report/main.go
package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/kr/logfmt"
)

// report 离线统计一份协议轨迹文件。
type report struct {
	lines       int
	eventCounts map[string]int

	generatedEvents map[string]bool
	deliveredEvents map[string]bool

	// firstDelay 每个事件首次送达的时延 (步)。
	firstDelay map[string]int
}

func newReport() *report {
	return &report{
		eventCounts:     make(map[string]int),
		generatedEvents: make(map[string]bool),
		deliveredEvents: make(map[string]bool),
		firstDelay:      make(map[string]int),
	}
}

func (r *report) consume(line []byte) error {
	fields := make(map[string]string)
	err := logfmt.Unmarshal(line, logfmt.HandlerFunc(func(key, val []byte) error {
		fields[string(key)] = string(val)
		return nil
	}))
	if err != nil {
		return err
	}

	name := fields["event"]
	if name == "" {
		return nil
	}
	r.lines++
	r.eventCounts[name]++

	eventID := fields["event_id"]
	switch name {
	case "packet_generated", "event_missed":
		r.generatedEvents[eventID] = true
	case "packet_delivered":
		r.generatedEvents[eventID] = true
		r.deliveredEvents[eventID] = true
		delay, err := strconv.Atoi(fields["delay"])
		if err != nil {
			return fmt.Errorf("送达记录的时延字段非法: %w", err)
		}
		if old, ok := r.firstDelay[eventID]; !ok || delay < old {
			r.firstDelay[eventID] = delay
		}
	}
	return nil
}

func (r *report) meanFirstDelay() float64 {
	if len(r.firstDelay) == 0 {
		return 0
	}
	total := 0
	for _, delay := range r.firstDelay {
		total += delay
	}
	return float64(total) / float64(len(r.firstDelay))
}

func (r *report) print() {
	fmt.Printf("--- 轨迹统计 ---\n")
	fmt.Printf("  - 有效轨迹行数: %d\n", r.lines)
	for _, name := range []string{
		"hello_sent", "link_broken", "packet_generated", "event_missed",
		"packet_relayed", "packet_delivered", "packet_expired",
		"diversion_started", "feedback_applied",
	} {
		fmt.Printf("  - %s: %d\n", name, r.eventCounts[name])
	}
	fmt.Printf("  - 观测到的事件数: %d\n", len(r.generatedEvents))
	fmt.Printf("  - 送达事件数 (去重): %d\n", len(r.deliveredEvents))
	if len(r.generatedEvents) > 0 {
		ratio := float64(len(r.deliveredEvents)) / float64(len(r.generatedEvents)) * 100
		fmt.Printf("  - 送达率: %.2f%%\n", ratio)
	}
	fmt.Printf("  - 平均首达时延: %.1f 步\n", r.meanFirstDelay())
	fmt.Printf("------------------\n")
}

func main() {
	path := flag.String("trace", "", "协议轨迹文件路径")
	flag.Parse()
	if *path == "" {
		log.Fatalf("❌ 必须通过 -trace 指定轨迹文件")
	}

	file, err := os.Open(*path)
	if err != nil {
		log.Fatalf("❌ 无法打开轨迹文件: %v", err)
	}
	defer file.Close()

	rep := newReport()
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if err := rep.consume(scanner.Bytes()); err != nil {
			log.Fatalf("❌ 轨迹解析失败: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("❌ 读取轨迹文件失败: %v", err)
	}

	rep.print()
}
