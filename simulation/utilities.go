// C:/workspace/go/DroNET-Go/simulation/utilities.go
package simulation

import "math"

// Point 地图上的一个坐标点 (米)。
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// EuclideanDistance 返回两点间的欧氏距离。
func EuclideanDistance(a, b Point) float64 {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// lerp 返回 p0 与 p1 之间比例为 t 的插值点。
func lerp(p0, p1 Point, t float64) Point {
	return Point{
		X: (1-t)*p0.X + t*p1.X,
		Y: (1-t)*p0.Y + t*p1.Y,
	}
}

// NanMin 返回两数中较小者，NaN 视为"无值"而被另一方覆盖。
// 两者皆为 NaN 时返回 NaN。
func NanMin(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case a < b:
		return a
	default:
		return b
	}
}

// NanMax 返回一组数中的最大值，忽略 NaN。全为 NaN 或为空时返回 NaN。
func NanMax(values ...float64) float64 {
	result := math.NaN()
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if math.IsNaN(result) || v > result {
			result = v
		}
	}
	return result
}

// TwoHopSpeed 估计数据包经由 oneHop 再到 twoHop 的两跳接力
// 朝仓库推进的速度。中间继路点在整体推进量中相消，
// 推进量即本机与两跳邻居到仓库距离之差，摊到两次传输的时长上。
func TwoHopSpeed(self, oneHop, twoHop *Drone, stepDuration float64) float64 {
	depot := self.depot.Coords
	gain := EuclideanDistance(self.Coords, depot) - EuclideanDistance(twoHop.Coords, depot)
	return gain / (2 * stepDuration)
}

// ComputeRequiredSpeed 返回 neighbor 在数据包剩余跳数预算内
// 把包送达仓库所需的最低速度。预算耗尽时返回 +Inf，
// 即不存在足够快的接力。
func ComputeRequiredSpeed(neighbor *Drone, remainingTTL int, stepDuration float64) float64 {
	if remainingTTL <= 0 {
		return math.Inf(1)
	}
	return EuclideanDistance(neighbor.Coords, neighbor.depot.Coords) / (float64(remainingTTL) * stepDuration)
}
