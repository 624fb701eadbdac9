// Package zdict 使用 libzstd 的 ZDICT 训练器（github.com/valyala/gozstd）从样本集训练字典。
package zdict

import (
	"fmt"

	"github.com/valyala/gozstd"

	"zbench/pkg/contract"
)

// MinDictSize 为 ZDICT 可训练的最小字典尺寸。
const MinDictSize = 256

// MinContentSize: 样本总字节数下限；不足时 gozstd 会以伪样本补齐。
const MinContentSize = 256

// DefaultMinSamples: fastCover 以 0.75 切分训练集，至少需要 5 个训练样本。
const DefaultMinSamples = 7

// Options 为训练器的可选配置。
type Options struct {
	// MinSamples: 训练所需的最少样本数（含空样本）。<=0 时采用默认 7。
	MinSamples int `json:"min_samples"`
}

// Trainer 封装 gozstd.BuildDict。
type Trainer struct {
	minSamples int
}

// New 创建 Trainer。
func New(opts *Options) *Trainer {
	n := DefaultMinSamples
	if opts != nil && opts.MinSamples > 0 {
		n = opts.MinSamples
	}
	return &Trainer{minSamples: n}
}

// Train 在全部样本上训练目标大小为 size 的字典。
// 语料过小、size 过小或训练失败均返回包裹 ErrCodec 的错误。
func (t *Trainer) Train(samples [][]byte, size int) (contract.Dictionary, error) {
	if err := t.check(samples, size); err != nil {
		return nil, err
	}
	dict := gozstd.BuildDict(samples, size)
	if len(dict) == 0 {
		return nil, fmt.Errorf("%w: dictionary training failed for %d samples (size %d)", contract.ErrCodec, len(samples), size)
	}
	return contract.Dictionary(dict), nil
}

// check 在训练前拒绝过小的字典尺寸与退化语料。
func (t *Trainer) check(samples [][]byte, size int) error {
	if size < MinDictSize {
		return fmt.Errorf("%w: dictionary size %d below minimum %d", contract.ErrCodec, size, MinDictSize)
	}
	if len(samples) < t.minSamples {
		return fmt.Errorf("%w: %d samples, need at least %d to train a dictionary", contract.ErrCodec, len(samples), t.minSamples)
	}
	total := 0
	for _, s := range samples {
		total += len(s)
	}
	if total < MinContentSize {
		return fmt.Errorf("%w: corpus holds %d bytes, need at least %d to train a dictionary", contract.ErrCodec, total, MinContentSize)
	}
	return nil
}

var _ contract.Trainer = (*Trainer)(nil)
