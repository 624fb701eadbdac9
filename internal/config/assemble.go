package config

import (
	"fmt"
	"strings"

	"zbench/internal/bench"
	"zbench/internal/diag"
	"zbench/pkg/contract"
	"zbench/pkg/registry"
)

// Validate 对最小必要边界做静态校验；错误均包裹 ErrConfig。
func Validate(cfg Config) error {
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("%w: inputs empty", contract.ErrConfig)
	}
	// 输入路径不得为空字符串；"-" 不能与其他根混用
	dash := false
	for _, r := range cfg.Inputs {
		if strings.TrimSpace(r) == "" {
			return fmt.Errorf("%w: input path cannot be empty", contract.ErrConfig)
		}
		if strings.TrimSpace(r) == "-" {
			dash = true
		}
	}
	if dash && len(cfg.Inputs) > 1 {
		return fmt.Errorf("%w: '-' cannot be mixed with other roots", contract.ErrConfig)
	}
	if cfg.Level == Unset {
		return fmt.Errorf("%w: level not set", contract.ErrConfig)
	}
	if cfg.BlockSize <= 0 {
		return fmt.Errorf("%w: block_size must be > 0", contract.ErrConfig)
	}
	if cfg.DictSize <= 0 {
		return fmt.Errorf("%w: dict_size must be > 0", contract.ErrConfig)
	}
	if cfg.MemoSize < 0 {
		return fmt.Errorf("%w: memo_size must be >= 0", contract.ErrConfig)
	}
	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: logging.level %q", contract.ErrConfig, cfg.Logging.Level)
	}
	// 组件名若为空，使用默认名（由 Defaults() 提供）。此处只要最终有值即可。
	d := Defaults().Components
	if name := effName(cfg.Components.Reader, d.Reader); registry.Reader[name] == nil {
		return fmt.Errorf("%w: reader %q not registered", contract.ErrConfig, name)
	}
	if name := effName(cfg.Components.Splitter, d.Splitter); registry.Splitter[name] == nil {
		return fmt.Errorf("%w: splitter %q not registered", contract.ErrConfig, name)
	}
	if name := effName(cfg.Components.Batcher, d.Batcher); registry.Batcher[name] == nil {
		return fmt.Errorf("%w: batcher %q not registered", contract.ErrConfig, name)
	}
	if name := effName(cfg.Components.Codec, d.Codec); registry.Codec[name] == nil {
		return fmt.Errorf("%w: codec %q not registered", contract.ErrConfig, name)
	}
	if name := effName(cfg.Components.Trainer, d.Trainer); registry.Trainer[name] == nil {
		return fmt.Errorf("%w: trainer %q not registered", contract.ErrConfig, name)
	}
	if name := effName(cfg.Components.Formatter, d.Formatter); registry.Formatter[name] == nil {
		return fmt.Errorf("%w: formatter %q not registered", contract.ErrConfig, name)
	}
	return nil
}

// Assemble 构造 Components、Settings 与 Formatter。
// 严格 Options 解析在 registry（工厂）层进行；此处只传 raw JSON。
func Assemble(cfg Config) (bench.Components, bench.Settings, contract.Formatter, error) {
	fail := func(comp string, err error) (bench.Components, bench.Settings, contract.Formatter, error) {
		return bench.Components{}, bench.Settings{}, nil, fmt.Errorf("%s: %w", comp, err)
	}
	if err := Validate(cfg); err != nil {
		return bench.Components{}, bench.Settings{}, nil, err
	}

	d := Defaults().Components
	r, err := registry.Reader[effName(cfg.Components.Reader, d.Reader)](cfg.Options.Reader)
	if err != nil {
		return fail("reader", err)
	}
	s, err := registry.Splitter[effName(cfg.Components.Splitter, d.Splitter)](cfg.Options.Splitter)
	if err != nil {
		return fail("splitter", err)
	}
	mk, err := registry.Batcher[effName(cfg.Components.Batcher, d.Batcher)](cfg.Options.Batcher)
	if err != nil {
		return fail("batcher", err)
	}
	codecName := effName(cfg.Components.Codec, d.Codec)
	c, err := registry.Codec[codecName](cfg.Options.Codec)
	if err != nil {
		return fail("codec", err)
	}
	tr, err := registry.Trainer[effName(cfg.Components.Trainer, d.Trainer)](cfg.Options.Trainer)
	if err != nil {
		return fail("trainer", err)
	}
	f, err := registry.Formatter[effName(cfg.Components.Formatter, d.Formatter)](cfg.Options.Formatter)
	if err != nil {
		return fail("formatter", err)
	}

	comp := bench.Components{
		Reader:         r,
		Splitter:       s,
		NewAccumulator: mk,
		Codec:          c,
		Trainer:        tr,
	}
	set := bench.Settings{
		Inputs:    cloneStrings(cfg.Inputs),
		Level:     cfg.Level,
		BlockSize: cfg.BlockSize,
		DictSize:  cfg.DictSize,
		MemoSize:  cfg.MemoSize,
		CodecName: codecName,
	}
	return comp, set, f, nil
}

// NewLogger 按配置构造日志器。
func NewLogger(cfg Config, corrID string) *diag.Logger {
	return diag.NewLogger(corrID, cfg.Logging.Level, cfg.Logging.LogDir())
}

func effName(got, def string) string {
	if got == "" {
		return def
	}
	return got
}
