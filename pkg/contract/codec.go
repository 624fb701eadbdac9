package contract

// Compressor: 压缩能力（不透明）。
// 约束：同一实例的 Compress 调用之间不共享上下文；输入非法时返回包裹 ErrCodec 的错误。
type Compressor interface {
	Compress(src []byte) ([]byte, error)
	Close() error
}

// Codec: 按 level 构造 Compressor；level=0 表示编解码器默认值。
// NewWithDict 构造绑定字典的 Compressor（字典在其生命周期内只读）。
type Codec interface {
	New(level int) (Compressor, error)
	NewWithDict(level int, dict Dictionary) (Compressor, error)
}

// Trainer: 基于样本集训练目标大小的字典。失败返回包裹 ErrCodec 的错误。
type Trainer interface {
	Train(samples [][]byte, size int) (Dictionary, error)
}
