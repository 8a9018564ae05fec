package taxonomy

import (
	"math"

	"healthindex/internal/domain"
)

// DefaultWeight 未知编码的权重
const DefaultWeight = 0.05

// WeightForCode 按编码返回固定权重（纯函数，未知编码返回 DefaultWeight）
func WeightForCode(code domain.BiomarkerCode) float64 {
	switch code {
	case domain.CodeBMI, domain.CodeGLUC, domain.CodeHDL:
		return 0.15
	case domain.CodeWHR, domain.CodeRHR:
		return 0.10
	case domain.CodeSTEPS, domain.CodeACTIVE:
		return 0.20
	case domain.CodeDIET:
		return 0.10
	default:
		return DefaultWeight
	}
}

// KnownCodes 返回权重表中有显式权重的编码
func KnownCodes() []domain.BiomarkerCode {
	return []domain.BiomarkerCode{
		domain.CodeBMI, domain.CodeWHR, domain.CodeRHR,
		domain.CodeGLUC, domain.CodeHDL,
		domain.CodeSTEPS, domain.CodeACTIVE, domain.CodeDIET,
	}
}

// WeightTable 为给定的定义计算 code -> weight
func WeightTable(defs []*domain.BiomarkerDefinition) map[domain.BiomarkerCode]float64 {
	table := make(map[domain.BiomarkerCode]float64, len(defs))
	for _, d := range defs {
		table[d.Code] = WeightForCode(d.Code)
	}
	return table
}

// TotalWeight 权重之和
func TotalWeight(weights []*domain.ScoreWeight) float64 {
	var total float64
	for _, w := range weights {
		total += w.Weight
	}
	return total
}

// SumIsUnit 权重之和是否为 1（只用于告警，不强制）
func SumIsUnit(total float64) bool {
	return math.Abs(total-1) < 1e-9
}
