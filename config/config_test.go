// C:/workspace/go/DroNET-Go/config/config_test.go
package config

import (
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置应当通过校验: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"零架无人机", func(c *Config) { c.NDrones = 0 }},
		{"零步模拟", func(c *Config) { c.LenSimulation = 0 }},
		{"非正时间步长", func(c *Config) { c.TimeStepDuration = 0 }},
		{"非正事件生存期", func(c *Config) { c.EventDuration = -1 }},
		{"非正最大跳数", func(c *Config) { c.PacketsMaxTTL = 0 }},
		{"非正速度", func(c *Config) { c.DroneSpeed = 0 }},
		{"非正缓冲区", func(c *Config) { c.DroneMaxBufferSize = 0 }},
		{"非正地图尺寸", func(c *Config) { c.EnvWidth = 0 }},
		{"单航点路径", func(c *Config) { c.WaypointsPerPath = 1 }},
		{"未知路由策略", func(c *Config) { c.RoutingAlgorithm = RoutingKind("DIJKSTRA") }},
	}
	for _, tc := range cases {
		cfg := Default()
		tc.mutate(&cfg)
		if err := cfg.Validate(); err == nil {
			t.Errorf("%s: 期望校验失败", tc.name)
		}
	}
}

func TestIsLearning(t *testing.T) {
	// 只有基线策略不参与反馈学习
	if !RoutingQTAR.IsLearning() {
		t.Errorf("QTAR 应为学习型策略")
	}
	if RoutingGEO.IsLearning() {
		t.Errorf("GEO 不应为学习型策略")
	}
	if RoutingRND.IsLearning() {
		t.Errorf("RND 不应为学习型策略")
	}
}
