package json

import (
	"encoding/json"
	"io"
	"math"

	"zbench/pkg/contract"
)

// Options: JSON 格式化器的可选配置。
type Options struct {
	Indent bool `json:"indent"`
}

// Formatter 输出单个 JSON 文档。
type Formatter struct {
	indent bool
}

// New 创建 JSON 格式化器。
func New(opts *Options) *Formatter {
	return &Formatter{indent: opts != nil && opts.Indent}
}

type row struct {
	Strategy contract.Strategy `json:"strategy"`
	Count    int               `json:"count"`
	Total    int               `json:"total"`
	// Ratio 为 null 表示基线或不可计算（非有限值）。
	Ratio *float64 `json:"ratio"`
}

type doc struct {
	Files        int   `json:"files"`
	Measurements []row `json:"measurements"`
}

// Format 写出 {"files":N,"measurements":[...]}，末尾带换行。
func (f *Formatter) Format(w io.Writer, rep contract.Report) error {
	d := doc{Files: rep.Files, Measurements: make([]row, 0, len(rep.Measurements))}
	for _, m := range rep.Measurements {
		r := row{Strategy: m.Strategy, Count: m.Summary.Count, Total: m.Summary.Total}
		if m.HasRatio && !math.IsInf(m.Ratio, 0) && !math.IsNaN(m.Ratio) {
			v := math.Round(m.Ratio*1e4) / 1e4
			r.Ratio = &v
		}
		d.Measurements = append(d.Measurements, r)
	}
	enc := json.NewEncoder(w)
	if f.indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(d)
}

var _ contract.Formatter = (*Formatter)(nil)
