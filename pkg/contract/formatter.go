package contract

import "io"

// Formatter: 将 Report 渲染为人类可读输出。
// 约束：仅做展示；不修改 Report；基线行不输出比率。
type Formatter interface {
	Format(w io.Writer, rep Report) error
}
