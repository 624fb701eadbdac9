package contract

import (
	"errors"
	"fmt"
)

// 最小错误分类。任一类别均为致命错误：不重试、不降级为警告。
var (
	// ErrInput: 输入源不可读，或不是合法的按行文本。
	ErrInput = errors.New("input error")
	// ErrCodec: 压缩或字典训练失败（如非法 level、语料过小无法训练）。
	ErrCodec = errors.New("codec error")
	// ErrConfig: 配置非法（如 block_size/dict_size 非正）。
	ErrConfig = errors.New("config error")
	// ErrInvariantViolation: 领域不变量违例（通用哨兵）。
	ErrInvariantViolation = errors.New("invariant violation")
)

// Unit: 策略失败时出错的单元类型。
type Unit string

const (
	UnitSample     Unit = "sample"
	UnitBlock      Unit = "block"
	UnitDictionary Unit = "dictionary"
	UnitCodec      Unit = "codec"
)

// StrategyError 标识失败的策略与样本/块序号。
// Index 为 -1 表示策略级失败（构造编码器、训练字典）。
type StrategyError struct {
	Strategy Strategy
	Unit     Unit
	Index    int
	Err      error
}

func (e *StrategyError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("%s: %s: %v", e.Strategy, e.Unit, e.Err)
	}
	return fmt.Sprintf("%s: %s %d: %v", e.Strategy, e.Unit, e.Index, e.Err)
}

func (e *StrategyError) Unwrap() error { return e.Err }
