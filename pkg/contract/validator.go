package contract

import "fmt"

// reportOrder: Report 中度量的固定顺序。
var reportOrder = [...]Strategy{StrategyUncompressed, StrategyNaive, StrategyBlock, StrategyDict}

// CheckReport 校验 Report 的结构性不变量（纯函数，无 I/O）：
// - 恰好四项度量，顺序为 uncompressed, naive, block, dict；
// - 仅基线无比率；
// - naive/dict 与基线的 Count 一致（逐样本一次记录）；
// - block 的 Count 不超过基线 Count，且非空语料至少一个块。
func CheckReport(rep Report) error {
	if len(rep.Measurements) != len(reportOrder) {
		return fmt.Errorf("%w: expect %d measurements, got %d", ErrInvariantViolation, len(reportOrder), len(rep.Measurements))
	}
	for i, m := range rep.Measurements {
		if m.Strategy != reportOrder[i] {
			return fmt.Errorf("%w: measurement %d is %q, expect %q", ErrInvariantViolation, i, m.Strategy, reportOrder[i])
		}
		if m.HasRatio == (m.Strategy == StrategyUncompressed) {
			return fmt.Errorf("%w: %s ratio presence mismatch", ErrInvariantViolation, m.Strategy)
		}
		if m.Summary.Count < 0 || m.Summary.Total < 0 {
			return fmt.Errorf("%w: %s summary negative", ErrInvariantViolation, m.Strategy)
		}
	}
	base := rep.Measurements[0].Summary
	if n := rep.Measurements[1].Summary.Count; n != base.Count {
		return fmt.Errorf("%w: naive count %d != samples %d", ErrInvariantViolation, n, base.Count)
	}
	if n := rep.Measurements[3].Summary.Count; n != base.Count {
		return fmt.Errorf("%w: dict count %d != samples %d", ErrInvariantViolation, n, base.Count)
	}
	blocks := rep.Measurements[2].Summary.Count
	if blocks > base.Count || (base.Count > 0 && blocks == 0) {
		return fmt.Errorf("%w: block count %d out of range for %d samples", ErrInvariantViolation, blocks, base.Count)
	}
	return nil
}
