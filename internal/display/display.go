// Package display 健康数据的展示字符串
package display

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// HeartRate "72 bpm"
func HeartRate(v float64) string {
	return fmt.Sprintf("%d bpm", int64(v))
}

// Steps "8,234"
func Steps(v float64) string {
	return humanize.Comma(int64(v))
}

// ActiveEnergy "350 kcal"，不加千分位
func ActiveEnergy(v float64) string {
	return fmt.Sprintf("%d kcal", int64(v))
}

// Score "82/100"
func Score(score, max int) string {
	return fmt.Sprintf("%d/%d", score, max)
}
