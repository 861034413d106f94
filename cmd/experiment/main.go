// C:/workspace/go/DroNET-Go/cmd/experiment/main.go
package main

import (
	"flag"
	"log"
	"strings"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/experiment"
)

func main() {
	plan := experiment.DefaultConfig()
	cfg := config.Default()

	algorithms := flag.String("algorithms", "QTAR,GEO,RND", "参与对比的算法, 逗号分隔")
	trials := flag.Int("trials", plan.Trials, "每种算法的副本数")
	baseSeed := flag.Int64("base-seed", plan.BaseSeed, "副本 i 使用种子 base-seed+i")
	parallelism := flag.Int("parallelism", plan.Parallelism, "并行副本上限")
	drones := flag.Int("drones", cfg.NDrones, "无人机数量")
	steps := flag.Int("steps", cfg.LenSimulation, "每个副本的模拟步数")
	out := flag.String("out", "report/comparison.xlsx", "对比结果输出路径 (留空不保存)")
	flag.Parse()

	plan.Algorithms = plan.Algorithms[:0]
	for _, name := range strings.Split(*algorithms, ",") {
		plan.Algorithms = append(plan.Algorithms, config.RoutingKind(strings.ToUpper(strings.TrimSpace(name))))
	}
	plan.Trials = *trials
	plan.BaseSeed = *baseSeed
	plan.Parallelism = *parallelism
	cfg.NDrones = *drones
	cfg.LenSimulation = *steps

	runner := experiment.NewRunner(cfg, plan)
	results, err := runner.Run()
	if err != nil {
		log.Fatalf("❌ 实验失败: %v", err)
	}

	log.Println("=============================================")
	log.Println("=============  实验结果汇总  ================")
	for _, res := range results {
		log.Printf("📊 %s: 送达率 %.2f%% (±%.4f), 平均时延 %.1f 步 [%d 副本]",
			res.Algorithm, res.MeanDeliveryRatio*100, res.StdDeliveryRatio, res.MeanDeliveryDelay, res.Trials)
	}
	log.Println("=============================================")

	if *out != "" {
		if err := experiment.SaveComparison(results, *out); err != nil {
			log.Fatalf("❌ 保存对比结果失败: %v", err)
		}
	}
}
