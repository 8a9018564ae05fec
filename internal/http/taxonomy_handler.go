package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"healthindex/internal/domain"
	"healthindex/internal/taxonomy"

	"go.uber.org/zap"
)

// TaxonomyReader 提供完整目录视图（缓存优先）
type TaxonomyReader interface {
	View(ctx context.Context) (*taxonomy.View, error)
}

// WeightEntry 权重表条目
type WeightEntry struct {
	Code   domain.BiomarkerCode `json:"code"`
	Weight float64              `json:"weight"`
}

// WeightLookup 单个 code 的权重查询结果
type WeightLookup struct {
	Code    domain.BiomarkerCode `json:"code"`
	Weight  float64              `json:"weight"`
	Default bool                 `json:"default"`
}

type TaxonomyHandler struct {
	reader TaxonomyReader
	logger *zap.Logger
}

func NewTaxonomyHandler(reader TaxonomyReader, logger *zap.Logger) *TaxonomyHandler {
	return &TaxonomyHandler{reader: reader, logger: logger}
}

func (h *TaxonomyHandler) loadView(w http.ResponseWriter, r *http.Request) (*taxonomy.View, bool) {
	view, err := h.reader.View(r.Context())
	if err != nil {
		h.logger.Error("Failed to load taxonomy", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to load taxonomy"))
		return nil, false
	}
	return view, true
}

// GetTaxonomy GET /api/v1/taxonomy
func (h *TaxonomyHandler) GetTaxonomy(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(view))
}

// ListCategories GET /api/v1/taxonomy/categories
func (h *TaxonomyHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	out := make([]domain.BiomarkerCategory, 0, len(view.Categories))
	for _, c := range view.Categories {
		out = append(out, c.BiomarkerCategory)
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// ListCategoryBiomarkers GET /api/v1/taxonomy/categories/{name}/biomarkers
func (h *TaxonomyHandler) ListCategoryBiomarkers(w http.ResponseWriter, r *http.Request, name string) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	c, found := view.Category(domain.CategoryName(name))
	if !found {
		writeJSON(w, http.StatusOK, Fail(fmt.Sprintf("category %s not found", name)))
		return
	}
	writeJSON(w, http.StatusOK, Ok(c.Biomarkers))
}

// ListBiomarkers GET /api/v1/taxonomy/biomarkers
func (h *TaxonomyHandler) ListBiomarkers(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	out := []taxonomy.BiomarkerView{}
	for _, c := range view.Categories {
		out = append(out, c.Biomarkers...)
	}
	writeJSON(w, http.StatusOK, Ok(out))
}

// ListDataSources GET /api/v1/taxonomy/data-sources
func (h *TaxonomyHandler) ListDataSources(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, Ok(view.DataSources))
}

// ListWeights GET /api/v1/taxonomy/weights
func (h *TaxonomyHandler) ListWeights(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	entries := []WeightEntry{}
	for _, c := range view.Categories {
		for _, b := range c.Biomarkers {
			entries = append(entries, WeightEntry{Code: b.Code, Weight: b.Weight})
		}
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":        entries,
		"total_weight": view.TotalWeight,
		"sums_to_one":  taxonomy.SumIsUnit(view.TotalWeight),
	}))
}

// GetWeight GET /api/v1/taxonomy/weights/{code}
// 纯查表，不访问存储；未知 code 返回默认权重
func (h *TaxonomyHandler) GetWeight(w http.ResponseWriter, r *http.Request, code string) {
	c := domain.BiomarkerCode(code)
	known := slices.Contains(taxonomy.KnownCodes(), c)
	writeJSON(w, http.StatusOK, Ok(WeightLookup{
		Code:    c,
		Weight:  taxonomy.WeightForCode(c),
		Default: !known,
	}))
}

// Export GET /api/v1/taxonomy/export
func (h *TaxonomyHandler) Export(w http.ResponseWriter, r *http.Request) {
	view, ok := h.loadView(w, r)
	if !ok {
		return
	}
	data, err := GenerateTaxonomyWorkbook(view)
	if err != nil {
		h.logger.Error("Failed to generate taxonomy workbook", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("failed to generate workbook"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=biomarker-taxonomy.xlsx")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
