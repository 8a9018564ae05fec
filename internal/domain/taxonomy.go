package domain

import (
	"fmt"
	"time"
)

// CategoryName 生物标志物分类名称
type CategoryName string

const (
	CategoryPhysical CategoryName = "Physical"
	CategoryBlood    CategoryName = "Blood"
	CategoryWellness CategoryName = "Wellness"
)

// BiomarkerCode 生物标志物编码（全局唯一）
type BiomarkerCode string

const (
	CodeBMI    BiomarkerCode = "BMI"
	CodeWHR    BiomarkerCode = "WHR"
	CodeRHR    BiomarkerCode = "RHR"
	CodeGLUC   BiomarkerCode = "GLUC"
	CodeHDL    BiomarkerCode = "HDL"
	CodeSTEPS  BiomarkerCode = "STEPS"
	CodeACTIVE BiomarkerCode = "ACTIVE"
	CodeDIET   BiomarkerCode = "DIET"
)

// BiomarkerCategory 分类（对应 biomarker_categories 表）
type BiomarkerCategory struct {
	CategoryID  string       `json:"category_id"`
	Name        CategoryName `json:"name"` // UNIQUE
	Description string       `json:"description"`
	CreatedAt   time.Time    `json:"created_at"`
}

// NormalRange 正常值范围，Min <= Max
type NormalRange struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Validate 校验范围有序
func (r NormalRange) Validate() error {
	if r.Min > r.Max {
		return fmt.Errorf("normal range min %v greater than max %v", r.Min, r.Max)
	}
	return nil
}

// Contains 判断值是否落在闭区间内
func (r NormalRange) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// BiomarkerDefinition 生物标志物定义（对应 biomarker_definitions 表）
// 每个定义只属于一个分类
type BiomarkerDefinition struct {
	BiomarkerID string        `json:"biomarker_id"`
	CategoryID  string        `json:"category_id"`
	Code        BiomarkerCode `json:"code"` // UNIQUE
	DisplayName string        `json:"display_name"`
	Unit        string        `json:"unit"`
	// IsDependent 数值是否依赖其它计算值（如 BMI 依赖身高体重）
	IsDependent bool        `json:"is_dependent"`
	NormalRange NormalRange `json:"normal_range"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Validate 校验定义本身的不变量
func (d *BiomarkerDefinition) Validate() error {
	if d.Code == "" {
		return fmt.Errorf("biomarker code is required")
	}
	if d.CategoryID == "" {
		return fmt.Errorf("biomarker %s has no category", d.Code)
	}
	if err := d.NormalRange.Validate(); err != nil {
		return fmt.Errorf("biomarker %s: %w", d.Code, err)
	}
	return nil
}

// ScoreWeight 评分权重（与 BiomarkerDefinition 一对一）
type ScoreWeight struct {
	WeightID    string    `json:"weight_id"`
	BiomarkerID string    `json:"biomarker_id"` // UNIQUE
	Weight      float64   `json:"weight"`       // [0,1]
	CreatedAt   time.Time `json:"created_at"`
}

// Validate 校验权重范围
func (w *ScoreWeight) Validate() error {
	if w.BiomarkerID == "" {
		return fmt.Errorf("score weight has no biomarker")
	}
	if w.Weight < 0 || w.Weight > 1 {
		return fmt.Errorf("score weight %v out of range [0,1]", w.Weight)
	}
	return nil
}

// DataSource 数据来源（对应 data_sources 表）
type DataSource struct {
	SourceID     string    `json:"source_id"`
	Name         string    `json:"name"` // UNIQUE
	Organization string    `json:"organization"`
	Description  string    `json:"description"`
	CreatedAt    time.Time `json:"created_at"`
}
