package bench

import (
	"bytes"
	"fmt"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"

	"zbench/internal/diag"
	"zbench/pkg/contract"
)

// memo 缓存逐样本压缩长度：同一 Compressor 对相同字节的输出长度确定，
// 命中与否不影响汇总结果。键为 xxhash，取值时按字节校验避免碰撞误命中。
// nil *memo 表示关闭缓存。
type memo struct {
	cache    *lru.Cache[uint64, memoEntry]
	strategy string
	hits     int
}

type memoEntry struct {
	sample contract.Sample // 共享语料底层数组（语料只读）
	size   int
}

func newMemo(size int, strategy contract.Strategy) (*memo, error) {
	if size <= 0 {
		return nil, nil
	}
	c, err := lru.New[uint64, memoEntry](size)
	if err != nil {
		return nil, fmt.Errorf("%w: memo: %w", contract.ErrConfig, err)
	}
	return &memo{cache: c, strategy: string(strategy)}, nil
}

func (m *memo) get(s contract.Sample) (int, bool) {
	if m == nil {
		return 0, false
	}
	e, ok := m.cache.Get(xxhash.Sum64(s))
	if !ok || !bytes.Equal(e.sample, s) {
		return 0, false
	}
	m.hits++
	diag.IncMemoHit(m.strategy)
	return e.size, true
}

func (m *memo) put(s contract.Sample, size int) {
	if m == nil {
		return
	}
	m.cache.Add(xxhash.Sum64(s), memoEntry{sample: s, size: size})
}

// Hits 返回命中次数（nil 为 0）。
func (m *memo) Hits() int {
	if m == nil {
		return 0
	}
	return m.hits
}
