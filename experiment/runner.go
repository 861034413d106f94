// C:/workspace/go/DroNET-Go/experiment/runner.go
package experiment

import (
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sync"

	deepcopy "github.com/tiendc/go-deepcopy"
	"github.com/xuri/excelize/v2"

	"github.com/davegabe/DroNET-hw2/config"
	"github.com/davegabe/DroNET-hw2/simulation"
)

// Config 一次对比实验的计划: 哪些算法、各跑几个副本、种子怎么排。
type Config struct {
	Algorithms []config.RoutingKind

	// Trials 每种算法的副本数。副本 i 使用种子 BaseSeed+i，
	// 因此不同算法的第 i 个副本面对完全相同的随机场景。
	Trials   int
	BaseSeed int64

	// Parallelism 同时运行的模拟副本上限。
	Parallelism int
}

func DefaultConfig() Config {
	return Config{
		Algorithms:  []config.RoutingKind{config.RoutingQTAR, config.RoutingGEO, config.RoutingRND},
		Trials:      5,
		BaseSeed:    42,
		Parallelism: 4,
	}
}

// Result 一种算法在全部副本上的汇总表现。
type Result struct {
	Algorithm         config.RoutingKind
	Trials            int
	MeanDeliveryRatio float64
	StdDeliveryRatio  float64
	MeanDeliveryDelay float64
}

// Runner 并行跑完 算法 x 副本 的全部组合并汇总结果。
type Runner struct {
	base config.Config
	plan Config
}

func NewRunner(base config.Config, plan Config) *Runner {
	return &Runner{base: base, plan: plan}
}

type trialOutcome struct {
	algo  config.RoutingKind
	ratio float64
	delay float64
	err   error
}

// Run 执行实验计划。每个副本在独立 goroutine 中运行一个完全隔离的
// 模拟器实例，parallelism 由信号量约束。并行副本的过程日志会交错。
// 任何副本失败都会使整个实验失败。
func (r *Runner) Run() ([]Result, error) {
	total := len(r.plan.Algorithms) * r.plan.Trials
	log.Printf("🔄 对比实验启动: %d 种算法 x %d 副本 = %d 次模拟, 并行度 %d",
		len(r.plan.Algorithms), r.plan.Trials, total, r.plan.Parallelism)

	outcomes := make(chan trialOutcome, total)
	sem := make(chan struct{}, r.plan.Parallelism)
	var wg sync.WaitGroup

	for _, algo := range r.plan.Algorithms {
		for trial := 0; trial < r.plan.Trials; trial++ {
			wg.Add(1)
			go func(algo config.RoutingKind, trial int) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()

				var cfg config.Config
				if err := deepcopy.Copy(&cfg, &r.base); err != nil {
					outcomes <- trialOutcome{algo: algo, err: fmt.Errorf("克隆副本配置失败: %w", err)}
					return
				}
				cfg.RoutingAlgorithm = algo
				cfg.Seed = r.plan.BaseSeed + int64(trial)

				sim, err := simulation.NewSimulator(cfg, nil)
				if err != nil {
					outcomes <- trialOutcome{algo: algo, err: err}
					return
				}
				if err := sim.Run(); err != nil {
					outcomes <- trialOutcome{algo: algo, err: err}
					return
				}

				m := sim.Metrics()
				outcomes <- trialOutcome{
					algo:  algo,
					ratio: m.DeliveryRatio(),
					delay: m.MeanDeliveryDelay(),
				}
			}(algo, trial)
		}
	}

	wg.Wait()
	close(outcomes)

	ratios := make(map[config.RoutingKind][]float64)
	delays := make(map[config.RoutingKind][]float64)
	for out := range outcomes {
		if out.err != nil {
			return nil, fmt.Errorf("算法 %s 的副本运行失败: %w", out.algo, out.err)
		}
		ratios[out.algo] = append(ratios[out.algo], out.ratio)
		delays[out.algo] = append(delays[out.algo], out.delay)
	}

	results := make([]Result, 0, len(r.plan.Algorithms))
	for _, algo := range r.plan.Algorithms {
		results = append(results, Result{
			Algorithm:         algo,
			Trials:            len(ratios[algo]),
			MeanDeliveryRatio: mean(ratios[algo]),
			StdDeliveryRatio:  std(ratios[algo]),
			MeanDeliveryDelay: mean(delays[algo]),
		})
	}

	log.Printf("✅ 对比实验完成, 共 %d 次模拟", total)
	return results, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total / float64(len(values))
}

func std(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// SaveComparison 把实验结果写成一张 Excel 对比表。
func SaveComparison(results []Result, path string) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			log.Printf("❌ 关闭Excel文件时出错: %v", err)
		}
	}()

	sheet := "Comparison"
	f.NewSheet(sheet)
	f.DeleteSheet("Sheet1")

	headers := []string{"算法", "副本数", "平均送达率 (%)", "送达率标准差", "平均送达时延 (步)"}
	_ = f.SetSheetRow(sheet, "A1", &headers)
	for i, res := range results {
		row := []interface{}{
			string(res.Algorithm),
			res.Trials,
			res.MeanDeliveryRatio * 100,
			res.StdDeliveryRatio,
			res.MeanDeliveryDelay,
		}
		_ = f.SetSheetRow(sheet, fmt.Sprintf("A%d", i+2), &row)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Printf("❌ 错误: 无法创建报告目录 '%s': %v", dir, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		log.Printf("❌ 错误: 无法保存 Excel 文件: %v", err)
		return err
	}
	log.Printf("✅ 对比结果已保存到 %s", path)
	return nil
}
