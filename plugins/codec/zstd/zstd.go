// Package zstd 基于 github.com/klauspost/compress/zstd 提供逐次独立的块压缩能力。
package zstd

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"zbench/pkg/contract"
)

// MaxLevel 为 zstd 最大压缩等级。
const MaxLevel = 22

// Options 为编码器的可选配置。
type Options struct {
	// Checksum: 是否写入帧校验和。默认 false（与 libzstd 默认一致）。
	Checksum bool `json:"checksum"`
	// WindowSize: 窗口大小（字节，2 的幂）。0 表示随 level 默认。
	WindowSize int `json:"window_size"`
}

// Codec 按 level 构造 zstd Compressor。
type Codec struct {
	checksum bool
	window   int
}

// New 创建 Codec。
func New(opts *Options) *Codec {
	c := &Codec{}
	if opts != nil {
		c.checksum = opts.Checksum
		c.window = opts.WindowSize
	}
	return c
}

// New 构造无字典的 Compressor。
func (c *Codec) New(level int) (contract.Compressor, error) {
	return c.build(level, nil)
}

// NewWithDict 构造绑定字典的 Compressor；字典须为 zstd 格式（含魔数与熵表）。
func (c *Codec) NewWithDict(level int, dict contract.Dictionary) (contract.Compressor, error) {
	if len(dict) == 0 {
		return nil, fmt.Errorf("%w: empty dictionary", contract.ErrCodec)
	}
	return c.build(level, dict)
}

func (c *Codec) build(level int, dict []byte) (contract.Compressor, error) {
	opts := []zstd.EOption{
		zstd.WithEncoderLevel(encoderLevel(level)),
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderCRC(c.checksum),
		// 空输入也产出完整帧，与 libzstd 的 bulk 压缩一致。
		zstd.WithZeroFrames(true),
	}
	if c.window > 0 {
		opts = append(opts, zstd.WithWindowSize(c.window))
	}
	if dict != nil {
		opts = append(opts, zstd.WithEncoderDict(dict))
	}
	enc, err := zstd.NewWriter(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: new encoder: %v", contract.ErrCodec, err)
	}
	return &Compressor{enc: enc}, nil
}

// encoderLevel 将 zstd 数值等级映射为编码器等级；0 为默认等级。
// 与 libzstd 一致：负数（快速等级）取最快档，超过 MaxLevel 取最高档。
func encoderLevel(level int) zstd.EncoderLevel {
	if level == 0 {
		return zstd.SpeedDefault
	}
	return zstd.EncoderLevelFromZstd(level)
}

// Compressor 包装单个 zstd.Encoder；每次 Compress 为一个独立帧，不共享上下文。
type Compressor struct {
	enc *zstd.Encoder
}

// Compress 压缩 src 为一个完整 zstd 帧。
func (c *Compressor) Compress(src []byte) ([]byte, error) {
	if c == nil || c.enc == nil {
		return nil, fmt.Errorf("%w: compressor closed", contract.ErrCodec)
	}
	return c.enc.EncodeAll(src, make([]byte, 0, len(src)/2+16)), nil
}

// Close 释放编码器资源；重复调用安全。
func (c *Compressor) Close() error {
	if c == nil || c.enc == nil {
		return nil
	}
	err := c.enc.Close()
	c.enc = nil
	return err
}

var (
	_ contract.Codec      = (*Codec)(nil)
	_ contract.Compressor = (*Compressor)(nil)
)
