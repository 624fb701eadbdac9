package config

import (
	"encoding/json"
	"math"
)

// Unset 标记整数字段“未提供”，使 Merge 能区分未覆盖与显式 0（level=0、memo_size=0 均有语义）。
const Unset = math.MinInt32

// Config: 运行期只读配置（一次解析，运行期不变）。
// JSON 使用 snake_case；未知字段在解析期失败。
type Config struct {
	Inputs []string `json:"inputs"`
	// Level: 压缩等级；0 为编解码器默认。
	Level int `json:"level"`
	// BlockSize: 块容量（字节）。
	BlockSize int `json:"block_size"`
	// DictSize: 字典目标大小（字节）。
	DictSize int `json:"dict_size"`
	// MemoSize: 每个策略的样本缓存条目数；0 关闭。
	MemoSize int     `json:"memo_size"`
	Logging  Logging `json:"logging"`

	// 组件名选择（空则使用默认名）。
	Components Components `json:"components"`

	// 各组件 Options 子树，原样 JSON 传入工厂。
	Options Options `json:"options"`
}

// Logging: 日志等级与目录。Dir 为 nil 表示未设置；指向空串表示写 stderr。
type Logging struct {
	Level string  `json:"level"`
	Dir   *string `json:"dir"`
}

// Components: 组件名选择（注册表中的实现名）。
type Components struct {
	Reader    string `json:"reader"`
	Splitter  string `json:"splitter"`
	Batcher   string `json:"batcher"`
	Codec     string `json:"codec"`
	Trainer   string `json:"trainer"`
	Formatter string `json:"formatter"`
}

// Options: 各组件的原样 JSON Options。
type Options struct {
	Reader    json.RawMessage `json:"reader"`
	Splitter  json.RawMessage `json:"splitter"`
	Batcher   json.RawMessage `json:"batcher"`
	Codec     json.RawMessage `json:"codec"`
	Trainer   json.RawMessage `json:"trainer"`
	Formatter json.RawMessage `json:"formatter"`
}

// LogDir 返回生效的日志目录（"" 表示 stderr）。
func (l Logging) LogDir() string {
	if l.Dir == nil {
		return ""
	}
	return *l.Dir
}

// Overlay 返回所有整数字段为 Unset 的空覆盖层。
func Overlay() Config {
	return Config{Level: Unset, BlockSize: Unset, DictSize: Unset, MemoSize: Unset}
}
