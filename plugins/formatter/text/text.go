package text

import (
	"bufio"
	"fmt"
	"io"

	"zbench/pkg/contract"
)

// Options: 文本格式化器的可选配置。
type Options struct {
	// Precision: 比率小数位数；0 取默认 2。
	Precision int `json:"precision"`
}

// Formatter 逐行输出 "label: ratio {count: N, total: M}"。
type Formatter struct {
	prec int
}

// New 创建文本格式化器。
func New(opts *Options) (*Formatter, error) {
	f := &Formatter{prec: 2}
	if opts != nil {
		if opts.Precision < 0 || opts.Precision > 12 {
			return nil, fmt.Errorf("%w: formatter.text: precision out of range: %d", contract.ErrConfig, opts.Precision)
		}
		if opts.Precision > 0 {
			f.prec = opts.Precision
		}
	}
	return f, nil
}

// Format 基线行不带比率。
func (f *Formatter) Format(w io.Writer, rep contract.Report) error {
	bw := bufio.NewWriter(w)
	for _, m := range rep.Measurements {
		if m.HasRatio {
			fmt.Fprintf(bw, "%s: %.*f {count: %d, total: %d}\n", m.Strategy, f.prec, m.Ratio, m.Summary.Count, m.Summary.Total)
		} else {
			fmt.Fprintf(bw, "%s: {count: %d, total: %d}\n", m.Strategy, m.Summary.Count, m.Summary.Total)
		}
	}
	return bw.Flush()
}

var _ contract.Formatter = (*Formatter)(nil)
