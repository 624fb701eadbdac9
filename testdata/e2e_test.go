package testdata

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	cfgpkg "zbench/internal/config"
	"zbench/internal/bench"
	"zbench/internal/diag"
	"zbench/pkg/contract"
)

// loadBasic 读取 config/basic.json 并叠加到默认值；输入路径相对本目录。
func loadBasic(t *testing.T) cfgpkg.Config {
	t.Helper()
	over, err := cfgpkg.LoadJSON(filepath.Join("config", "basic.json"), nil)
	require.NoError(t, err)
	cfg := cfgpkg.Merge(cfgpkg.Defaults(), over)
	cfg.Inputs = []string{"files"}
	cfg.Logging.Level = "error"
	require.NoError(t, cfgpkg.Validate(cfg))
	return cfg
}

func runBench(t *testing.T, cfg cfgpkg.Config) (contract.Report, contract.Formatter, error) {
	t.Helper()
	comp, set, f, err := cfgpkg.Assemble(cfg)
	require.NoError(t, err)
	rep, err := bench.Run(context.Background(), comp, set, diag.NewNop())
	return rep, f, err
}

// expectedBaseline 独立统计样本数与字节数：按 \n 切分、去掉行尾 \r、保留未终止的末行。
func expectedBaseline(t *testing.T, paths ...string) contract.Summary {
	t.Helper()
	var s contract.Summary
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		if len(b) == 0 {
			continue
		}
		lines := strings.Split(string(b), "\n")
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
		for _, l := range lines {
			s.Record(len(strings.TrimSuffix(l, "\r")))
		}
	}
	return s
}

func TestE2EBasicConfig(t *testing.T) {
	cfg := loadBasic(t)
	rep, f, err := runBench(t, cfg)
	require.NoError(t, err)
	require.NoError(t, contract.CheckReport(rep))

	assert.Equal(t, 3, rep.Files, "vendor 目录被排除")
	want := expectedBaseline(t,
		filepath.Join("files", "access.log"),
		filepath.Join("files", "app", "events.jsonl"),
		filepath.Join("files", "app", "notes.txt"),
	)
	base := rep.Measurements[0]
	assert.Equal(t, contract.StrategyUncompressed, base.Strategy)
	assert.Equal(t, want, base.Summary)
	assert.Equal(t, 705, base.Summary.Count)

	naive, block, dict := rep.Measurements[1], rep.Measurements[2], rep.Measurements[3]
	assert.Equal(t, base.Summary.Count, naive.Summary.Count)
	assert.Equal(t, base.Summary.Count, dict.Summary.Count)
	assert.Equal(t, 2, block.Summary.Count, "64KiB 块容量")
	assert.Greater(t, naive.Ratio, 1.0)
	assert.GreaterOrEqual(t, block.Ratio, naive.Ratio)
	assert.Greater(t, dict.Ratio, naive.Ratio)

	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)
	var out bytes.Buffer
	require.NoError(t, f.Format(&out, rep))
	for _, label := range []string{"uncompressed", "naive", "block", "dict"} {
		assert.Contains(t, out.String(), label)
	}
	assert.Contains(t, out.String(), "KiB")
}

func TestE2EDeterministicAndMemo(t *testing.T) {
	cfg := loadBasic(t)
	first, _, err := runBench(t, cfg)
	require.NoError(t, err)
	again, _, err := runBench(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, again)

	cfg.MemoSize = 0
	noMemo, _, err := runBench(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, first, noMemo, "缓存不改变结果")
}

func TestE2EIncludeAndJSON(t *testing.T) {
	cfg := loadBasic(t)
	cfg.Options.Reader = json.RawMessage(`{"exclude_dir_names":["vendor"],"include":["*.log"]}`)
	cfg.Components.Formatter = "json"
	cfg.Options.Formatter = json.RawMessage(`{"indent":true}`)
	rep, f, err := runBench(t, cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Files)
	assert.Equal(t, expectedBaseline(t, filepath.Join("files", "access.log")), rep.Measurements[0].Summary)

	var out bytes.Buffer
	require.NoError(t, f.Format(&out, rep))
	var doc struct {
		Files        int `json:"files"`
		Measurements []struct {
			Strategy string   `json:"strategy"`
			Ratio    *float64 `json:"ratio"`
		} `json:"measurements"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &doc))
	assert.Equal(t, 1, doc.Files)
	require.Len(t, doc.Measurements, 4)
	assert.Nil(t, doc.Measurements[0].Ratio)
	assert.NotNil(t, doc.Measurements[3].Ratio)
}

func TestE2EMultipleRoots(t *testing.T) {
	cfg := loadBasic(t)
	comp, _, _, err := cfgpkg.Assemble(cfg)
	require.NoError(t, err)
	roots := []string{filepath.Join("files", "app", "notes.txt"), filepath.Join("files", "vendor")}
	corpus, files, err := bench.LoadCorpus(context.Background(), comp.Reader, comp.Splitter, roots, diag.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, files, "显式 root 不受排除规则影响")
	require.Len(t, corpus, 55)
	assert.Equal(t, "deploy started", string(corpus[0]))
	assert.Empty(t, corpus[1])
	assert.Equal(t, "rollback window closed", string(corpus[4]))
	assert.Equal(t, "vendored line 0", string(corpus[5]))
}

func TestE2EErrors(t *testing.T) {
	cfg := loadBasic(t)
	cfg.Inputs = []string{filepath.Join("files", "missing.log")}
	_, _, err := runBench(t, cfg)
	assert.ErrorIs(t, err, contract.ErrInput)

	cfg = loadBasic(t)
	cfg.Options.Codec = json.RawMessage(`{"window_size":1000}`)
	_, _, err = runBench(t, cfg)
	var se *contract.StrategyError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, contract.StrategyNaive, se.Strategy)
	assert.Equal(t, -1, se.Index)
	assert.ErrorIs(t, err, contract.ErrCodec)

	cfg = loadBasic(t)
	cfg.DictSize = 16
	_, _, err = runBench(t, cfg)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, contract.StrategyDict, se.Strategy)
	assert.Equal(t, contract.UnitDictionary, se.Unit)
}
