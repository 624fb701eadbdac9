package block

import (
	"fmt"

	"zbench/pkg/contract"
)

// Options 为块累积器的可选配置（最小必要）。
type Options struct {
	// Prealloc: 是否按容量预分配缓冲区。默认 true；显式 false 时按需增长。
	// 单个超大样本仍可使缓冲区超过容量（不拆分）。
	Prealloc *bool `json:"prealloc,omitempty"`
}

// Accumulator 将样本累积为不超过容量的块。
// 状态仅有“累积中”：冲刷是一次转移，产出完整块后回到空缓冲的累积态。
type Accumulator struct {
	buf      []byte
	capacity int
}

// New 创建容量为 capacity 字节的累积器；capacity 必须为正。
func New(capacity int, opts *Options) (*Accumulator, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: block capacity must be > 0, got %d", contract.ErrConfig, capacity)
	}
	a := &Accumulator{capacity: capacity}
	if opts == nil || opts.Prealloc == nil || *opts.Prealloc {
		a.buf = make([]byte, 0, capacity)
	}
	return a, nil
}

// Offer 先冲刷后追加：若缓冲非空且追加后超过容量，则先产出当前缓冲为完整块并清空，
// 再把样本无条件追加到缓冲。空缓冲从不冲刷，因此超大样本独立成块、不被拆分。
// 返回本次调用冲刷出的块（若有）。
func (a *Accumulator) Offer(sample contract.Sample) (contract.Block, bool) {
	var out contract.Block
	flushed := false
	if len(a.buf) > 0 && len(a.buf)+len(sample) > a.capacity {
		out = a.flush()
		flushed = true
	}
	a.buf = append(a.buf, sample...)
	return out, flushed
}

// Drain 产出剩余的尾块；缓冲为空时返回 false。最后一个样本之后恰好调用一次。
func (a *Accumulator) Drain() (contract.Block, bool) {
	if len(a.buf) == 0 {
		return nil, false
	}
	return a.flush(), true
}

// Len 返回当前缓冲的字节数。
func (a *Accumulator) Len() int { return len(a.buf) }

// Capacity 返回构造时的容量。
func (a *Accumulator) Capacity() int { return a.capacity }

// flush 复制缓冲内容为独立块，并清空（复用）缓冲。
func (a *Accumulator) flush() contract.Block {
	out := make(contract.Block, len(a.buf))
	copy(out, a.buf)
	a.buf = a.buf[:0]
	return out
}

var _ contract.Accumulator = (*Accumulator)(nil)
