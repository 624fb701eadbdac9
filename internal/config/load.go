package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"

	"zbench/pkg/contract"
)

// EnvPrefix 为环境变量前缀。
const EnvPrefix = "ZBENCH_"

// Defaults 返回带有默认值的 Config 雏形（inputs 无默认）。
func Defaults() Config {
	dir := "logs"
	return Config{
		Level:     0,
		BlockSize: 1 << 20,
		DictSize:  1024,
		MemoSize:  4096,
		Logging:   Logging{Level: "info", Dir: &dir},
		Components: Components{
			Reader:    "fs",
			Splitter:  "lines",
			Batcher:   "block",
			Codec:     "zstd",
			Trainer:   "zdict",
			Formatter: "text",
		},
	}
}

// LoadJSON 从文件路径或原始 JSON 解析 Config（严格拒绝未知字段）。
// 未出现的整数键保持 Unset。
func LoadJSON(path string, raw []byte) (Config, error) {
	cfg := Overlay()
	var r io.Reader
	switch {
	case len(raw) > 0:
		r = bytes.NewReader(raw)
	case path != "":
		f, err := os.Open(path)
		if err != nil {
			return cfg, fmt.Errorf("%w: %w", contract.ErrConfig, err)
		}
		defer f.Close()
		r = f
	default:
		return cfg, fmt.Errorf("%w: no config source provided", contract.ErrConfig)
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("%w: %w", contract.ErrConfig, err)
	}
	return cfg, nil
}

// Merge 按优先级合并（后者覆盖前者）。
// 仅标量/字符串/原样 JSON 为“替换”；不做深度合并。
func Merge(base, over Config) Config {
	out := base
	if len(over.Inputs) > 0 {
		out.Inputs = cloneStrings(over.Inputs)
	}
	if over.Level != Unset {
		out.Level = over.Level
	}
	if over.BlockSize != Unset {
		out.BlockSize = over.BlockSize
	}
	if over.DictSize != Unset {
		out.DictSize = over.DictSize
	}
	if over.MemoSize != Unset {
		out.MemoSize = over.MemoSize
	}
	if lv := strings.TrimSpace(over.Logging.Level); lv != "" {
		out.Logging.Level = lv
	}
	if over.Logging.Dir != nil {
		d := *over.Logging.Dir
		out.Logging.Dir = &d
	}

	// 组件名（空不覆盖）
	out.Components.Reader = pick(out.Components.Reader, over.Components.Reader)
	out.Components.Splitter = pick(out.Components.Splitter, over.Components.Splitter)
	out.Components.Batcher = pick(out.Components.Batcher, over.Components.Batcher)
	out.Components.Codec = pick(out.Components.Codec, over.Components.Codec)
	out.Components.Trainer = pick(out.Components.Trainer, over.Components.Trainer)
	out.Components.Formatter = pick(out.Components.Formatter, over.Components.Formatter)

	// Options（完整替换对应键）
	out.Options.Reader = pickRaw(out.Options.Reader, over.Options.Reader)
	out.Options.Splitter = pickRaw(out.Options.Splitter, over.Options.Splitter)
	out.Options.Batcher = pickRaw(out.Options.Batcher, over.Options.Batcher)
	out.Options.Codec = pickRaw(out.Options.Codec, over.Options.Codec)
	out.Options.Trainer = pickRaw(out.Options.Trainer, over.Options.Trainer)
	out.Options.Formatter = pickRaw(out.Options.Formatter, over.Options.Formatter)
	return out
}

// EnvOverlay 从环境变量构建一个 Config 覆盖（仅解析有限键集合）。
// 前缀 ZBENCH_；支持 INPUTS, LEVEL, BLOCK_SIZE, DICT_SIZE, MEMO_SIZE,
// LOG_LEVEL, LOG_DIR, FORMAT, COMPONENTS_*, OPTIONS_*_JSON。
// 同一键出现多次时后者生效；数值非法返回 ErrConfig。
func EnvOverlay(environ []string) (Config, error) {
	over := Overlay()
	for _, kv := range environ {
		if !strings.HasPrefix(kv, EnvPrefix) {
			continue
		}
		eq := strings.IndexByte(kv, '=')
		if eq <= len(EnvPrefix) {
			continue
		}
		key := kv[len(EnvPrefix):eq]
		val := kv[eq+1:]
		var err error
		switch key {
		case "INPUTS":
			if val != "" {
				over.Inputs = splitComma(val)
			}
		case "LEVEL":
			over.Level, err = atoi(val)
		case "BLOCK_SIZE":
			over.BlockSize, err = ParseSize(val)
		case "DICT_SIZE":
			over.DictSize, err = ParseSize(val)
		case "MEMO_SIZE":
			over.MemoSize, err = atoi(val)
		case "LOG_LEVEL":
			over.Logging.Level = strings.TrimSpace(val)
		case "LOG_DIR":
			d := strings.TrimSpace(val)
			over.Logging.Dir = &d
		case "FORMAT", "COMPONENTS_FORMATTER":
			over.Components.Formatter = strings.TrimSpace(val)
		case "COMPONENTS_READER":
			over.Components.Reader = strings.TrimSpace(val)
		case "COMPONENTS_SPLITTER":
			over.Components.Splitter = strings.TrimSpace(val)
		case "COMPONENTS_BATCHER":
			over.Components.Batcher = strings.TrimSpace(val)
		case "COMPONENTS_CODEC":
			over.Components.Codec = strings.TrimSpace(val)
		case "COMPONENTS_TRAINER":
			over.Components.Trainer = strings.TrimSpace(val)
		default:
			// OPTIONS_<COMP>_JSON：原样 JSON；空值视为未设置
			if strings.HasPrefix(key, "OPTIONS_") && strings.HasSuffix(key, "_JSON") && strings.TrimSpace(val) != "" {
				comp := strings.TrimSuffix(strings.TrimPrefix(key, "OPTIONS_"), "_JSON")
				if !setOption(&over.Options, strings.ToLower(comp), json.RawMessage(val)) {
					return over, fmt.Errorf("%w: env %s%s: unknown component", contract.ErrConfig, EnvPrefix, key)
				}
			}
			// 其他键（CONFIG_FILE 等）由调用方处理
		}
		if err != nil {
			return over, fmt.Errorf("%w: env %s%s: %w", contract.ErrConfig, EnvPrefix, key, err)
		}
	}
	return over, nil
}

// DotEnv 读取 .env 文件并返回 "K=V" 列表（不修改进程环境）。
// 文件不存在时返回 nil。调用方将其置于 os.Environ() 之前，使真实环境优先。
func DotEnv(path string) ([]string, error) {
	m, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %s: %w", contract.ErrConfig, path, err)
	}
	out := make([]string, 0, len(m))
	for k, v := range m {
		out = append(out, k+"="+v)
	}
	return out, nil
}

// ParseSize 解析字节数：纯整数或带单位（"64k"、"1MiB"、"1 MB"）。
func ParseSize(s string) (int, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, err
	}
	if n > uint64(math.MaxInt32) {
		return 0, fmt.Errorf("size %q too large", s)
	}
	return int(n), nil
}

func setOption(o *Options, comp string, raw json.RawMessage) bool {
	switch comp {
	case "reader":
		o.Reader = raw
	case "splitter":
		o.Splitter = raw
	case "batcher":
		o.Batcher = raw
	case "codec":
		o.Codec = raw
	case "trainer":
		o.Trainer = raw
	case "formatter":
		o.Formatter = raw
	default:
		return false
	}
	return true
}

func pick(cur, over string) string {
	if t := strings.TrimSpace(over); t != "" {
		return t
	}
	return cur
}

func pickRaw(cur, over json.RawMessage) json.RawMessage {
	if len(over) > 0 {
		return cloneRaw(over)
	}
	return cur
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneRaw(in json.RawMessage) json.RawMessage {
	if len(in) == 0 {
		return nil
	}
	out := make([]byte, len(in))
	copy(out, in)
	return out
}

func splitComma(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
