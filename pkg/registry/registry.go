package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"zbench/pkg/contract"
	bblk "zbench/plugins/batcher/block"
	czstd "zbench/plugins/codec/zstd"
	fjson "zbench/plugins/formatter/json"
	ftbl "zbench/plugins/formatter/table"
	ftxt "zbench/plugins/formatter/text"
	rfs "zbench/plugins/reader/filesystem"
	slines "zbench/plugins/splitter/lines"
	tzd "zbench/plugins/trainer/zdict"
)

// strictUnmarshal: 使用 DisallowUnknownFields 严格解码，拒绝未知字段。
// 解码失败统一归类为配置错误。
func strictUnmarshal(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		// 保持零值（默认选项）
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: options: %w", contract.ErrConfig, err)
	}
	return nil
}

// NewReader 工厂签名：接收原样 JSON Options。
type NewReader func(raw json.RawMessage) (contract.Reader, error)

// NewSplitter 工厂签名：接收原样 JSON Options。
type NewSplitter func(raw json.RawMessage) (contract.Splitter, error)

// NewBatcher 工厂签名：返回按容量构造累积器的工厂（容量来自顶层配置）。
type NewBatcher func(raw json.RawMessage) (contract.AccumulatorFactory, error)

// NewCodec 工厂签名：接收原样 JSON Options。
type NewCodec func(raw json.RawMessage) (contract.Codec, error)

// NewTrainer 工厂签名：接收原样 JSON Options。
type NewTrainer func(raw json.RawMessage) (contract.Trainer, error)

// NewFormatter 工厂签名：接收原样 JSON Options。
type NewFormatter func(raw json.RawMessage) (contract.Formatter, error)

// Reader 工厂注册表（显式、零反射）。
var Reader = map[string]NewReader{
	// fs: 文件系统/STDIN Reader
	"fs": func(raw json.RawMessage) (contract.Reader, error) {
		var opts rfs.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return rfs.New(&opts)
	},
}

// Splitter 工厂注册表。
var Splitter = map[string]NewSplitter{
	// lines: 按行拆分
	"lines": func(raw json.RawMessage) (contract.Splitter, error) {
		var opts slines.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return slines.New(&opts)
	},
}

// Batcher 工厂注册表。
var Batcher = map[string]NewBatcher{
	// block: 先冲刷后追加的定容累积器
	"block": func(raw json.RawMessage) (contract.AccumulatorFactory, error) {
		var opts bblk.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return func(capacity int) (contract.Accumulator, error) {
			return bblk.New(capacity, &opts)
		}, nil
	},
}

// Codec 工厂注册表。
var Codec = map[string]NewCodec{
	"zstd": func(raw json.RawMessage) (contract.Codec, error) {
		var opts czstd.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return czstd.New(&opts), nil
	},
}

// Trainer 工厂注册表。
var Trainer = map[string]NewTrainer{
	// zdict: libzstd ZDICT 训练
	"zdict": func(raw json.RawMessage) (contract.Trainer, error) {
		var opts tzd.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return tzd.New(&opts), nil
	},
}

// Formatter 工厂注册表。
var Formatter = map[string]NewFormatter{
	"text": func(raw json.RawMessage) (contract.Formatter, error) {
		var opts ftxt.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ftxt.New(&opts)
	},
	"table": func(raw json.RawMessage) (contract.Formatter, error) {
		var opts ftbl.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return ftbl.New(&opts), nil
	},
	"json": func(raw json.RawMessage) (contract.Formatter, error) {
		var opts fjson.Options
		if err := strictUnmarshal(raw, &opts); err != nil {
			return nil, err
		}
		return fjson.New(&opts), nil
	},
}
