// C:/workspace/go/DroNET-Go/main.go
package main

import (
	"flag"
	"log"
	"net/http"
	"strings"

	"github.com/davegabe/DroNET-hw2/collector"
	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/simulation"
	"github.com/davegabe/DroNET-hw2/trace"
	"github.com/davegabe/DroNET-hw2/viz"
)

func main() {
	cfg := config.Default()

	algorithm := flag.String("algorithm", string(cfg.RoutingAlgorithm), "路由算法 (QTAR/GEO/RND)")
	drones := flag.Int("drones", cfg.NDrones, "无人机数量")
	steps := flag.Int("steps", cfg.LenSimulation, "模拟步数")
	seed := flag.Int64("seed", cfg.Seed, "随机种子")
	tracePath := flag.String("trace", "", "协议轨迹文件路径 (留空关闭)")
	vizAddr := flag.String("viz", "", "可视化 WebSocket 监听地址, 如 :8080 (留空关闭)")
	reportInterval := flag.Int("report-interval", 500, "Excel 采集间隔 (步), 0 关闭")
	flag.Parse()

	cfg.RoutingAlgorithm = config.RoutingKind(strings.ToUpper(*algorithm))
	cfg.NDrones = *drones
	cfg.LenSimulation = *steps
	cfg.Seed = *seed

	log.Println("=============================================")
	log.Println("========  DroNET Swarm Simulation  ==========")
	log.Println("=============================================")
	log.Printf("加载配置: 算法 %s, 无人机 %d 架, 步数 %d, 种子 %d",
		cfg.RoutingAlgorithm, cfg.NDrones, cfg.LenSimulation, cfg.Seed)
	log.Printf("加载配置: 区域 %.0fx%.0f m, 通信半径 %.0f m, 仓库位于 (%.0f, %.0f)",
		cfg.EnvWidth, cfg.EnvHeight, cfg.DroneComRange, cfg.DepotX, cfg.DepotY)
	log.Println("=============================================")

	// --- 1. 可选的协议轨迹记录器 ---
	var tracer *trace.Recorder
	if *tracePath != "" {
		var err error
		tracer, err = trace.NewRecorder(*tracePath)
		if err != nil {
			log.Fatalf("❌ 无法创建轨迹文件: %v", err)
		}
		defer tracer.Close()
		log.Printf("🗒️ 协议轨迹将写入 %s", *tracePath)
	}

	// --- 2. 组装模拟器 ---
	sim, err := simulation.NewSimulator(cfg, tracer)
	if err != nil {
		log.Fatalf("❌ 模拟器组装失败: %v", err)
	}

	// --- 3. 可选的数据收集器与可视化服务 ---
	var dc *collector.DataCollector
	if *reportInterval > 0 {
		dc = collector.NewDataCollector(*reportInterval)
	}

	var hub *viz.Hub
	if *vizAddr != "" {
		hub = viz.NewHub()
		go hub.Run()
		http.HandleFunc("/ws", hub.ServeWs)
		go func() {
			log.Printf("📡 可视化服务监听于 ws://%s/ws", *vizAddr)
			if err := http.ListenAndServe(*vizAddr, nil); err != nil {
				log.Printf("⚠️ 可视化服务退出: %v", err)
			}
		}()
	}

	sim.SetOnStepEnd(func(s *simulation.Simulator, step int) {
		if dc != nil {
			dc.OnStep(s, step)
		}
		if hub != nil {
			hub.BroadcastState(viz.Snapshot(s, step))
		}
	})

	// --- 4. 运行模拟 ---
	if err := sim.Run(); err != nil {
		log.Fatalf("❌ 模拟中止: %v", err)
	}

	// --- 5. 结束并保存 ---
	if dc != nil {
		if err := dc.Save(sim.Metrics()); err != nil {
			log.Fatalf("❌ 报表保存失败: %v", err)
		}
	}

	log.Println("=============================================")
	log.Println("===========  SIMULATION FINISHED  ===========")
	log.Println("=============================================")
}
