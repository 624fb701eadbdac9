package diag

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"zbench/pkg/contract"
)

// Code 是最小错误分类代码。
// 仅用于日志/指标汇总，与退出码解耦。
type Code string

const (
	CodeUnknown   Code = "unknown"
	CodeInput     Code = "input"
	CodeCodec     Code = "codec"
	CodeConfig    Code = "config"
	CodeInvariant Code = "invariant"
	CodeCancel    Code = "cancel"
	CodeIO        Code = "io"
)

// Classify 将错误归为最小分类。
// 仅依赖哨兵错误与标准库错误类型，不做字符串匹配。
func Classify(err error) Code {
	if err == nil {
		return CodeUnknown
	}
	// 取消/超时优先
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return CodeCancel
	}
	switch {
	case errors.Is(err, contract.ErrConfig):
		return CodeConfig
	case errors.Is(err, contract.ErrCodec):
		return CodeCodec
	case errors.Is(err, contract.ErrInvariantViolation):
		return CodeInvariant
	case errors.Is(err, contract.ErrInput):
		return CodeInput
	}
	var perr *fs.PathError
	if errors.As(err, &perr) || errors.Is(err, os.ErrClosed) {
		return CodeIO
	}
	return CodeUnknown
}
