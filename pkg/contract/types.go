package contract

// FileID: 逻辑输入源ID（通常为路径，需规范化，跨平台一致）。
type FileID string

// Sample: 原子输入样本（输入中的一行，不含行尾换行符）。
// 约束：加载后只读；由 Corpus 持有，生命周期覆盖整个运行。
type Sample []byte

// Corpus: 有序样本集合。顺序影响 Block 组成，但不影响比率正确性。
// 加载完成后不可变；各策略只读共享。
type Corpus []Sample

// Bytes 返回样本的 [][]byte 视图（共享底层数组，不复制内容）。
func (c Corpus) Bytes() [][]byte {
	out := make([][]byte, len(c))
	for i, s := range c {
		out[i] = s
	}
	return out
}

// Size 返回全部样本的字节总数。
func (c Corpus) Size() int {
	n := 0
	for _, s := range c {
		n += len(s)
	}
	return n
}

// Block: 连续未冲刷样本的拼接，作为一个整体压缩。
// 约束：len(Block) <= 容量；唯一例外是仅含单个超大样本的 Block（不拆分）。
type Block []byte

// Dictionary: 基于整个 Corpus 训练得到的不透明字节串；只读，字典策略内共享。
type Dictionary []byte

// Strategy: 度量标签。
type Strategy string

const (
	StrategyUncompressed Strategy = "uncompressed"
	StrategyNaive        Strategy = "naive"
	StrategyBlock        Strategy = "block"
	StrategyDict         Strategy = "dict"
)

// Measurement: 单个策略的汇总结果。
// 基线（uncompressed）不计算自身比率：HasRatio=false。
type Measurement struct {
	Strategy Strategy `json:"strategy"`
	Summary  Summary  `json:"summary"`
	Ratio    float64  `json:"ratio,omitempty"`
	HasRatio bool     `json:"has_ratio"`
}

// Report: 一次运行的完整度量（固定顺序：uncompressed, naive, block, dict）。
type Report struct {
	Files        int           `json:"files"`
	Measurements []Measurement `json:"measurements"`
}
