package taxonomy

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	"healthindex/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

// CategorySpec 目录中的分类定义
type CategorySpec struct {
	Name        domain.CategoryName `yaml:"name"`
	Description string              `yaml:"description"`
}

// DataSourceSpec 目录中的数据来源定义
type DataSourceSpec struct {
	Name         string `yaml:"name"`
	Organization string `yaml:"organization"`
	Description  string `yaml:"description"`
}

// BiomarkerSpec 目录中的生物标志物定义，通过分类名称关联分类
type BiomarkerSpec struct {
	Category    domain.CategoryName  `yaml:"category"`
	Code        domain.BiomarkerCode `yaml:"code"`
	DisplayName string               `yaml:"display_name"`
	Unit        string               `yaml:"unit"`
	IsDependent bool                 `yaml:"is_dependent"`
	NormalRange domain.NormalRange   `yaml:"normal_range"`
}

// Catalog 种子数据目录
type Catalog struct {
	Categories  []CategorySpec   `yaml:"categories"`
	DataSources []DataSourceSpec `yaml:"data_sources"`
	Biomarkers  []BiomarkerSpec  `yaml:"biomarkers"`
}

// DefaultCatalog 返回内置目录（三个分类、四个数据来源、八个生物标志物）
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalogFile 从 YAML 文件加载目录
func LoadCatalogFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog 解析 YAML 目录（拒绝未知字段）
// 注意：不做引用校验，分类缺失由 Seeder 在查找时报错
func ParseCatalog(data []byte) (*Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return &c, nil
}

// Validate 校验目录的唯一性和范围约束
func (c *Catalog) Validate() error {
	categories := make(map[domain.CategoryName]struct{}, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Name == "" {
			return fmt.Errorf("category name is required")
		}
		if _, dup := categories[cat.Name]; dup {
			return fmt.Errorf("duplicate category name: %s", cat.Name)
		}
		categories[cat.Name] = struct{}{}
	}

	sources := make(map[string]struct{}, len(c.DataSources))
	for _, src := range c.DataSources {
		if src.Name == "" {
			return fmt.Errorf("data source name is required")
		}
		if _, dup := sources[src.Name]; dup {
			return fmt.Errorf("duplicate data source name: %s", src.Name)
		}
		sources[src.Name] = struct{}{}
	}

	codes := make(map[domain.BiomarkerCode]struct{}, len(c.Biomarkers))
	for _, b := range c.Biomarkers {
		if b.Code == "" {
			return fmt.Errorf("biomarker code is required")
		}
		if _, dup := codes[b.Code]; dup {
			return fmt.Errorf("duplicate biomarker code: %s", b.Code)
		}
		codes[b.Code] = struct{}{}
		if _, ok := categories[b.Category]; !ok {
			return fmt.Errorf("biomarker %s references unknown category %q", b.Code, b.Category)
		}
		if err := b.NormalRange.Validate(); err != nil {
			return fmt.Errorf("biomarker %s: %w", b.Code, err)
		}
	}
	return nil
}
