package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"zbench/pkg/contract"
)

// Options: 表格格式化器的可选配置。
type Options struct {
	// HumanBytes: 追加一列人类可读的字节数（KiB/MiB）。
	HumanBytes bool `json:"human_bytes"`
	// Boxed: 带边框渲染。
	Boxed bool `json:"boxed"`
}

// Formatter 使用 pterm 渲染四行度量表。
type Formatter struct {
	human bool
	boxed bool
}

// New 创建表格格式化器。
func New(opts *Options) *Formatter {
	f := &Formatter{}
	if opts != nil {
		f.human = opts.HumanBytes
		f.boxed = opts.Boxed
	}
	return f
}

// Format 渲染到字符串后一次写出（不依赖 pterm 的全局输出）。
func (f *Formatter) Format(w io.Writer, rep contract.Report) error {
	header := []string{"strategy", "ratio", "count", "total"}
	if f.human {
		header = append(header, "size")
	}
	data := pterm.TableData{header}
	for _, m := range rep.Measurements {
		ratio := "-"
		if m.HasRatio {
			ratio = strconv.FormatFloat(m.Ratio, 'f', 2, 64)
		}
		row := []string{string(m.Strategy), ratio, strconv.Itoa(m.Summary.Count), strconv.Itoa(m.Summary.Total)}
		if f.human {
			row = append(row, humanize.IBytes(uint64(m.Summary.Total)))
		}
		data = append(data, row)
	}
	s, err := pterm.DefaultTable.
		WithHasHeader().
		WithHeaderRowSeparator("-").
		WithBoxed(f.boxed).
		WithData(data).
		Srender()
	if err != nil {
		return fmt.Errorf("render table: %w", err)
	}
	if _, err := io.WriteString(w, s+"\n"); err != nil {
		return err
	}
	return nil
}

var _ contract.Formatter = (*Formatter)(nil)
