package bench

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"zbench/internal/diag"
	"zbench/pkg/contract"
)

// Runner 执行三种压缩策略。各方法互不共享状态：每次调用都新建 Compressor、
// 累积器与 memo，并返回独立的 Summary。语料只读。
type Runner struct {
	Codec          contract.Codec
	Trainer        contract.Trainer
	NewAccumulator contract.AccumulatorFactory

	Level     int
	BlockSize int
	DictSize  int
	// MemoSize: 每个策略的样本缓存条目数；0 关闭。
	MemoSize int

	Logger *diag.Logger
}

// Uncompressed 计算基线：每个样本记录一次原始长度。
func Uncompressed(corpus contract.Corpus) contract.Summary {
	var s contract.Summary
	for _, sample := range corpus {
		s.Record(len(sample))
	}
	return s
}

// Naive 逐样本独立压缩（无共享上下文）。
func (r *Runner) Naive(ctx context.Context, corpus contract.Corpus) (contract.Summary, error) {
	c, err := r.Codec.New(r.Level)
	if err != nil {
		return contract.Summary{}, &contract.StrategyError{Strategy: contract.StrategyNaive, Unit: contract.UnitCodec, Index: -1, Err: err}
	}
	defer c.Close()
	return r.perSample(ctx, contract.StrategyNaive, c, corpus)
}

// Block 将样本累积为定容块后逐块压缩；每个冲刷出的块恰好记录一次。
func (r *Runner) Block(ctx context.Context, corpus contract.Corpus) (contract.Summary, error) {
	var sum contract.Summary
	c, err := r.Codec.New(r.Level)
	if err != nil {
		return sum, &contract.StrategyError{Strategy: contract.StrategyBlock, Unit: contract.UnitCodec, Index: -1, Err: err}
	}
	defer c.Close()
	acc, err := r.NewAccumulator(r.BlockSize)
	if err != nil {
		return sum, &contract.StrategyError{Strategy: contract.StrategyBlock, Unit: contract.UnitBlock, Index: -1, Err: err}
	}

	term := diag.GetTerminal()
	blocks := 0
	compress := func(b contract.Block) error {
		out, err := c.Compress(b)
		if err != nil {
			return &contract.StrategyError{Strategy: contract.StrategyBlock, Unit: contract.UnitBlock, Index: blocks, Err: err}
		}
		sum.Record(len(out))
		diag.AddCompressed(string(contract.StrategyBlock), len(out))
		blocks++
		return nil
	}
	for i, s := range corpus {
		if err := ctx.Err(); err != nil {
			return contract.Summary{}, err
		}
		if b, ok := acc.Offer(s); ok {
			if err := compress(b); err != nil {
				return contract.Summary{}, err
			}
		}
		term.StrategyProgress(i + 1)
	}
	if b, ok := acc.Drain(); ok {
		if err := compress(b); err != nil {
			return contract.Summary{}, err
		}
	}
	return sum, nil
}

// Dict 在整个语料上训练一次字典，随后以绑定字典的 Compressor 逐样本压缩。
func (r *Runner) Dict(ctx context.Context, corpus contract.Corpus) (contract.Summary, error) {
	t0 := time.Now()
	dict, err := r.Trainer.Train(corpus.Bytes(), r.DictSize)
	if err != nil {
		return contract.Summary{}, &contract.StrategyError{Strategy: contract.StrategyDict, Unit: contract.UnitDictionary, Index: -1, Err: err}
	}
	r.Logger.Debug("trainer", "dictionary trained", map[string]string{
		"target": strconv.Itoa(r.DictSize),
		"size":   strconv.Itoa(len(dict)),
		"dur_ms": strconv.FormatInt(time.Since(t0).Milliseconds(), 10),
	})
	c, err := r.Codec.NewWithDict(r.Level, dict)
	if err != nil {
		return contract.Summary{}, &contract.StrategyError{Strategy: contract.StrategyDict, Unit: contract.UnitCodec, Index: -1, Err: err}
	}
	defer c.Close()
	return r.perSample(ctx, contract.StrategyDict, c, corpus)
}

// perSample 逐样本压缩并记录长度；naive 与 dict 共用。
func (r *Runner) perSample(ctx context.Context, st contract.Strategy, c contract.Compressor, corpus contract.Corpus) (contract.Summary, error) {
	var sum contract.Summary
	m, err := newMemo(r.MemoSize, st)
	if err != nil {
		return sum, &contract.StrategyError{Strategy: st, Unit: contract.UnitCodec, Index: -1, Err: err}
	}
	term := diag.GetTerminal()
	for i, s := range corpus {
		if err := ctx.Err(); err != nil {
			return contract.Summary{}, err
		}
		n, ok := m.get(s)
		if !ok {
			out, err := c.Compress(s)
			if err != nil {
				return contract.Summary{}, &contract.StrategyError{Strategy: st, Unit: contract.UnitSample, Index: i, Err: err}
			}
			n = len(out)
			m.put(s, n)
		}
		sum.Record(n)
		diag.AddCompressed(string(st), n)
		term.StrategyProgress(i + 1)
	}
	if h := m.Hits(); h > 0 {
		r.Logger.Debug("bench", fmt.Sprintf("%s memo hits", st), map[string]string{"hits": strconv.Itoa(h)})
	}
	return sum, nil
}
