package contract

// Accumulator: 将样本累积为不超过容量的 Block。
// 约束：
//  1. 缓冲非空且 len(buf)+len(sample) > 容量 时，先冲刷当前缓冲再追加样本；
//  2. 空缓冲无条件接收样本（单个超大样本不拆分，独立成块）；
//  3. 冲刷出的 Block 为副本，后续 Offer 不影响其内容；
//  4. 最后一个样本之后必须恰好调用一次 Drain，避免丢失尾块。
type Accumulator interface {
	Offer(sample Sample) (Block, bool)
	Drain() (Block, bool)
	Len() int
}

// AccumulatorFactory 按容量构造新的 Accumulator（每个策略运行一个）。
type AccumulatorFactory func(capacity int) (Accumulator, error)
