package healthdata

import (
	"context"
	"fmt"
)

// Quantity 可读取的每日累计健康数据类型
type Quantity string

const (
	QuantitySteps        Quantity = "steps"
	QuantityHeartRate    Quantity = "heart_rate"
	QuantityActiveEnergy Quantity = "active_energy"
)

// Quantities 所有支持的数据类型
var Quantities = []Quantity{QuantitySteps, QuantityHeartRate, QuantityActiveEnergy}

// ParseQuantity 解析数据类型
func ParseQuantity(s string) (Quantity, error) {
	for _, q := range Quantities {
		if string(q) == s {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown health quantity: %q", s)
}

// Provider 健康数据来源（当天从零点到现在的累计值）
type Provider interface {
	DailySum(ctx context.Context, q Quantity) (float64, error)
}
