package config

import (
	"encoding/json"
	"fmt"
	"strings"
)

// DefaultTemplateConfig 返回一个“可运行”的默认配置模板：
// - 默认输入为 STDIN（"-"）；
// - 组件名采用仓库内置实现；
// - 选项给出全部键与中性默认值。
func DefaultTemplateConfig() Config {
	cfg := Defaults()
	cfg.Inputs = []string{"-"}
	cfg.Options.Reader = json.RawMessage(`{
  "buf_size": 65536,
  "exclude_dir_names": [".git", "node_modules", "vendor"],
  "include": []
}`)
	cfg.Options.Splitter = json.RawMessage(`{
  "max_line_bytes": 67108864,
  "allow_binary": false
}`)
	cfg.Options.Batcher = json.RawMessage(`{
  "prealloc": true
}`)
	cfg.Options.Codec = json.RawMessage(`{
  "checksum": false,
  "window_size": 0
}`)
	cfg.Options.Trainer = json.RawMessage(`{
  "min_samples": 7
}`)
	cfg.Options.Formatter = json.RawMessage(`{}`)
	return cfg
}

// DefaultTemplateEnv 返回 .env 模板（全部注释掉，取消注释即生效）。
func DefaultTemplateEnv() string {
	d := Defaults()
	var b strings.Builder
	b.WriteString("# zbench environment overrides (ENV > config.json)\n")
	lines := []struct{ k, v string }{
		{"INPUTS", "data/a.txt,data/b.txt"},
		{"LEVEL", fmt.Sprint(d.Level)},
		{"BLOCK_SIZE", "1MiB"},
		{"DICT_SIZE", fmt.Sprint(d.DictSize)},
		{"MEMO_SIZE", fmt.Sprint(d.MemoSize)},
		{"LOG_LEVEL", d.Logging.Level},
		{"LOG_DIR", d.Logging.LogDir()},
		{"FORMAT", d.Components.Formatter},
		{"OPTIONS_SPLITTER_JSON", `{"allow_binary":true}`},
	}
	for _, l := range lines {
		fmt.Fprintf(&b, "# %s%s=%s\n", EnvPrefix, l.k, l.v)
	}
	return b.String()
}
