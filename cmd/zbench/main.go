package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	cfgpkg "zbench/internal/config"
	"zbench/internal/bench"
	"zbench/internal/diag"
	"zbench/pkg/contract"
)

var benchRun = bench.Run

// 退出码：0 成功；3 配置/装配错误；1 运行期错误（输入、编解码）。
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 3
)

func main() {
	os.Exit(execute(os.Args[1:], os.Environ(), os.Stdout, os.Stderr))
}

// exitError 携带退出码；消息已写到 stderr 时 err 可为 nil。
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type cliFlags struct {
	config    string
	inputs    []string
	level     int
	blockSize string
	dictSize  string
	memoSize  int
	format    string
	logLevel  string
	logDir    string
	status    bool
	initDir   string
}

// execute 解析参数并运行，返回退出码。environ 为进程环境（测试可注入）。
func execute(args, environ []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(environ, stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.Execute()
	if err == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	// 旗标解析等 cobra 层错误
	fmt.Fprintf(stderr, "参数错误: %v\n", err)
	return exitConfig
}

func newRootCmd(environ []string, stdout, stderr io.Writer) *cobra.Command {
	var f cliFlags
	cmd := &cobra.Command{
		Use:   "zbench [flags] [inputs...]",
		Short: "Compare naive, block and dictionary compression ratios over a line corpus",
		Long: `zbench reads newline-delimited samples from files, directories or STDIN ("-")
and reports the compression ratio of per-sample, block and dictionary compression
against the uncompressed baseline.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, f, args, environ, stdout, stderr)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "", "配置文件路径（JSON）；缺省读取 ./config.json（若存在）")
	fl.StringArrayVarP(&f.inputs, "input", "i", nil, "输入文件/目录（可重复；\"-\" 表示 STDIN）")
	fl.IntVar(&f.level, "level", 0, "压缩等级（0 为编解码器默认，1..22）")
	fl.StringVar(&f.blockSize, "block-size", "", "块容量，如 1048576、1MiB、64k")
	fl.StringVar(&f.dictSize, "dict-size", "", "字典目标大小，如 1024、4KiB")
	fl.IntVar(&f.memoSize, "memo-size", 0, "每个策略的样本缓存条目数（0 关闭）")
	fl.StringVarP(&f.format, "format", "f", "", "输出格式：text|table|json")
	fl.StringVar(&f.logLevel, "log-level", "", "日志等级：debug|info|warn|error")
	fl.StringVar(&f.logDir, "log-dir", "", "日志目录（空串写 stderr）")
	fl.BoolVar(&f.status, "status", true, "终端状态提示（stderr）。TTY 动态刷新；非 TTY 打点输出")
	fl.StringVar(&f.initDir, "init-config", "", "在指定目录生成 config.json 与 .env 模板（已存在则跳过）；不带值时为当前目录")
	fl.Lookup("init-config").NoOptDefVal = "."
	return cmd
}

func run(cmd *cobra.Command, f cliFlags, args, environ []string, stdout, stderr io.Writer) error {
	start := time.Now()
	corrID := uuid.NewString()

	if dir := strings.TrimSpace(f.initDir); dir != "" {
		if err := initConfig(dir, stdout); err != nil {
			fmt.Fprintf(stderr, "生成默认配置失败: %v\n", err)
			return &exitError{code: exitConfig, err: err}
		}
		return nil
	}

	// .env 置于真实环境之前：EnvOverlay 后者覆盖前者，真实环境优先
	dot, err := cfgpkg.DotEnv(".env")
	if err != nil {
		fmt.Fprintf(stderr, ".env 解析失败: %v\n", err)
		return &exitError{code: exitConfig, err: err}
	}
	environ = append(dot, environ...)

	cfg, err := resolveConfig(cmd, f, args, environ)
	if err != nil {
		fmt.Fprintf(stderr, "配置解析失败: %v\n", err)
		return &exitError{code: exitConfig, err: err}
	}
	if err := cfgpkg.Validate(cfg); err != nil {
		fmt.Fprintf(stderr, "配置校验失败: %v\n", err)
		dumpConfig(stderr, cfg)
		return &exitError{code: exitConfig, err: err}
	}

	logger := cfgpkg.NewLogger(cfg, corrID)
	defer logger.Close()

	comp, set, formatter, err := cfgpkg.Assemble(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "装配失败: %v\n", err)
		logger.Error("main", string(diag.Classify(err)), "assemble failed", &start)
		return &exitError{code: exitConfig, err: err}
	}
	logger.Debug("config", "effective", map[string]string{
		"inputs_count": fmt.Sprint(len(cfg.Inputs)),
		"level":        fmt.Sprint(cfg.Level),
		"block_size":   fmt.Sprint(cfg.BlockSize),
		"dict_size":    fmt.Sprint(cfg.DictSize),
		"memo_size":    fmt.Sprint(cfg.MemoSize),
		"codec":        set.CodecName,
		"formatter":    cfg.Components.Formatter,
	})

	// 终端信息提示（非日志）
	diag.SetTerminal(diag.NewTerminal(stderr, f.status))
	defer diag.SetTerminal(nil)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := logger.Start("main", "run")
	rep, err := benchRun(ctx, comp, set, logger)
	if err != nil {
		code := diag.Classify(err)
		logger.Error("main", string(code), "first error", &start)
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintf(stderr, "运行失败: %v\n", err)
		}
		return &exitError{code: exitCode(err), err: err}
	}
	if err := formatter.Format(stdout, rep); err != nil {
		logger.Error("formatter", string(diag.Classify(err)), "format failed", &start)
		fmt.Fprintf(stderr, "输出失败: %v\n", err)
		return &exitError{code: exitRuntime, err: err}
	}
	t.Finish("run", int64(rep.Measurements[0].Summary.Count), nil)
	diag.IncOp("main", "finish", "success")
	diag.ObserveDuration("main", "finish", time.Since(start).Milliseconds())
	return nil
}

// resolveConfig 按 CLI > ENV(.env) > JSON > 默认值 合并配置。
func resolveConfig(cmd *cobra.Command, f cliFlags, args, environ []string) (cfgpkg.Config, error) {
	cfg := cfgpkg.Defaults()

	// JSON 配置（文件或 ENV: ZBENCH_CONFIG_JSON）
	var cfgJSON []byte
	if s := lookupEnv(environ, "ZBENCH_CONFIG_JSON"); s != "" {
		cfgJSON = []byte(s)
	}
	path := f.config
	if path == "" {
		path = lookupEnv(environ, "ZBENCH_CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" || len(cfgJSON) > 0 {
		base, err := cfgpkg.LoadJSON(path, cfgJSON)
		if err != nil {
			return cfg, err
		}
		cfg = cfgpkg.Merge(cfg, base)
	}

	overEnv, err := cfgpkg.EnvOverlay(environ)
	if err != nil {
		return cfg, err
	}
	cfg = cfgpkg.Merge(cfg, overEnv)

	// CLI 覆盖：仅显式设置的旗标生效
	over := cfgpkg.Overlay()
	fl := cmd.Flags()
	inputs := append(append([]string(nil), f.inputs...), args...)
	if len(inputs) > 0 {
		over.Inputs = inputs
	}
	if fl.Changed("level") {
		over.Level = f.level
	}
	if fl.Changed("block-size") {
		if over.BlockSize, err = cfgpkg.ParseSize(f.blockSize); err != nil {
			return cfg, fmt.Errorf("%w: --block-size: %w", contract.ErrConfig, err)
		}
	}
	if fl.Changed("dict-size") {
		if over.DictSize, err = cfgpkg.ParseSize(f.dictSize); err != nil {
			return cfg, fmt.Errorf("%w: --dict-size: %w", contract.ErrConfig, err)
		}
	}
	if fl.Changed("memo-size") {
		over.MemoSize = f.memoSize
	}
	over.Components.Formatter = f.format
	over.Logging.Level = f.logLevel
	if fl.Changed("log-dir") {
		d := f.logDir
		over.Logging.Dir = &d
	}
	return cfgpkg.Merge(cfg, over), nil
}

func exitCode(err error) int {
	if errors.Is(err, contract.ErrConfig) {
		return exitConfig
	}
	return exitRuntime
}

// lookupEnv 返回 environ 中 key 的最后一个取值。
func lookupEnv(environ []string, key string) string {
	val := ""
	for _, kv := range environ {
		if strings.HasPrefix(kv, key+"=") {
			val = kv[len(key)+1:]
		}
	}
	return val
}

func dumpConfig(w io.Writer, c cfgpkg.Config) {
	b, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(w, "有效配置:\n%s\n", b)
}

// initConfig 在 dir 下生成 config.json 与 .env 模板；已存在的文件跳过，不覆盖。
func initConfig(dir string, out io.Writer) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(cfgpkg.DefaultTemplateConfig(), "", "  ")
	if err != nil {
		return err
	}
	files := []struct {
		name string
		data []byte
	}{
		{"config.json", append(b, '\n')},
		{".env", []byte(cfgpkg.DefaultTemplateEnv())},
	}
	for _, f := range files {
		p := filepath.Join(dir, f.name)
		wrote, err := writeExclusive(p, f.data)
		if err != nil {
			return err
		}
		if wrote {
			fmt.Fprintf(out, "已生成 %s\n", p)
		} else {
			fmt.Fprintf(out, "已存在，跳过 %s\n", p)
		}
	}
	return nil
}

// writeExclusive 仅在文件不存在时写入。
func writeExclusive(path string, data []byte) (bool, error) {
	fh, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return false, nil
		}
		return false, err
	}
	defer fh.Close()
	if _, err := fh.Write(data); err != nil {
		return false, err
	}
	return true, nil
}
