package bench

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"zbench/internal/diag"
	"zbench/pkg/contract"
)

// - 单协程顺序执行：加载语料 → 基线 → naive → block → dict。
// - 首错即止：任一策略失败立即返回，不产出部分报告。
// - 语料在加载完成后只读；每个策略持有独立的 Summary。

// Components 聚合运行所需的原子组件。
type Components struct {
	Reader         contract.Reader
	Splitter       contract.Splitter
	NewAccumulator contract.AccumulatorFactory
	Codec          contract.Codec
	Trainer        contract.Trainer
}

// Settings 运行期配置（最小必要）。
type Settings struct {
	Inputs    []string
	Level     int
	BlockSize int
	DictSize  int
	MemoSize  int
	// CodecName 仅用于终端提示。
	CodecName string
}

// Run 执行完整基准并返回四项度量（顺序：uncompressed, naive, block, dict）。
func Run(ctx context.Context, comp Components, set Settings, logger *diag.Logger) (contract.Report, error) {
	if err := sanity(comp, set); err != nil {
		return contract.Report{}, fmt.Errorf("sanity: %w", err)
	}
	runStart := time.Now()
	term := diag.GetTerminal()
	term.RunStart(set.CodecName, set.Level)
	ok := false
	defer func() { term.RunFinish(ok, time.Since(runStart)) }()

	corpus, files, err := LoadCorpus(ctx, comp.Reader, comp.Splitter, set.Inputs, logger)
	if err != nil {
		return contract.Report{}, err
	}
	term.CorpusLoaded(files, len(corpus), corpus.Size())

	base := Uncompressed(corpus)
	rep := contract.Report{Files: files, Measurements: make([]contract.Measurement, 0, 4)}
	rep.Measurements = append(rep.Measurements, contract.Measurement{Strategy: contract.StrategyUncompressed, Summary: base})

	r := &Runner{
		Codec:          comp.Codec,
		Trainer:        comp.Trainer,
		NewAccumulator: comp.NewAccumulator,
		Level:          set.Level,
		BlockSize:      set.BlockSize,
		DictSize:       set.DictSize,
		MemoSize:       set.MemoSize,
		Logger:         logger,
	}
	steps := []struct {
		st  contract.Strategy
		run func(context.Context, contract.Corpus) (contract.Summary, error)
	}{
		{contract.StrategyNaive, r.Naive},
		{contract.StrategyBlock, r.Block},
		{contract.StrategyDict, r.Dict},
	}
	for _, step := range steps {
		sum, err := runStrategy(ctx, step.st, step.run, corpus, base, logger)
		if err != nil {
			return contract.Report{}, err
		}
		rep.Measurements = append(rep.Measurements, contract.Measurement{
			Strategy: step.st,
			Summary:  sum,
			Ratio:    sum.Ratio(base),
			HasRatio: true,
		})
	}
	if err := contract.CheckReport(rep); err != nil {
		fail(logger, "bench", "report check failed", nil, "", err)
		return contract.Report{}, err
	}
	logger.Debug("metrics", "snapshot", diag.SnapshotKV())
	ok = true
	return rep, nil
}

// runStrategy 包裹单个策略：日志、指标与终端提示。
func runStrategy(ctx context.Context, st contract.Strategy, run func(context.Context, contract.Corpus) (contract.Summary, error),
	corpus contract.Corpus, base contract.Summary, logger *diag.Logger) (contract.Summary, error) {
	term := diag.GetTerminal()
	term.StrategyStart(string(st), len(corpus))
	timer := logger.StartWith("bench", "strategy", string(st), nil)
	t0 := time.Now()
	sum, err := run(ctx, corpus)
	dur := time.Since(t0)
	diag.ObserveDuration("bench", string(st), dur.Milliseconds())
	if err != nil {
		fail(logger, "bench", "strategy failed: "+err.Error(), &t0, string(st), err)
		term.StrategyFinish(false, 0, dur)
		return contract.Summary{}, err
	}
	ratio := sum.Ratio(base)
	timer.Finish("strategy", int64(sum.Count), map[string]string{
		"total": strconv.Itoa(sum.Total),
		"ratio": strconv.FormatFloat(ratio, 'f', 2, 64),
	})
	diag.IncOp("bench", string(st), "success")
	term.StrategyFinish(true, ratio, dur)
	return sum, nil
}

// LoadCorpus 读取全部输入并按行拆分，按 Reader 的顺序拼接为语料。
// 返回语料与文件数。
func LoadCorpus(ctx context.Context, rd contract.Reader, sp contract.Splitter, inputs []string, logger *diag.Logger) (contract.Corpus, int, error) {
	rtimer := logger.Start("reader", "iterate")
	var corpus contract.Corpus
	files := 0
	err := rd.Iterate(ctx, inputs, func(fid contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		samples, err := sp.Split(ctx, fid, rc)
		if err != nil {
			fail(logger, "splitter", "split failed", nil, "", err)
			return fmt.Errorf("splitter split: %w", err)
		}
		logger.Debug("splitter", "split", map[string]string{"file_id": string(fid), "samples": strconv.Itoa(len(samples))})
		corpus = append(corpus, samples...)
		files++
		return nil
	})
	if err != nil {
		fail(logger, "reader", "iterate failed", rtimer.Since(), "", err)
		return nil, 0, fmt.Errorf("reader iterate: %w", err)
	}
	rtimer.Finish("iterate", int64(len(corpus)), map[string]string{"files": strconv.Itoa(files)})
	diag.IncOp("reader", "finish", "success")
	return corpus, files, nil
}

// fail 记录错误事件与指标。
func fail(logger *diag.Logger, comp, msg string, since *time.Time, strategy string, err error) {
	code := diag.Classify(err)
	logger.ErrorWith(comp, string(code), msg, since, strategy, nil)
	diag.IncOp(comp, "error", "error")
	if code != diag.CodeUnknown {
		diag.IncError(comp, string(code))
	}
}

func sanity(c Components, s Settings) error {
	if c.Reader == nil || c.Splitter == nil || c.NewAccumulator == nil || c.Codec == nil || c.Trainer == nil {
		return fmt.Errorf("%w: bench: missing components", contract.ErrConfig)
	}
	if s.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be > 0", contract.ErrConfig)
	}
	if s.DictSize <= 0 {
		return fmt.Errorf("%w: dict_size must be > 0", contract.ErrConfig)
	}
	if s.MemoSize < 0 {
		return fmt.Errorf("%w: memo_size must be >= 0", contract.ErrConfig)
	}
	return nil
}
