package table

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zbench/pkg/contract"
)

func report() contract.Report {
	return contract.Report{Files: 1, Measurements: []contract.Measurement{
		{Strategy: contract.StrategyUncompressed, Summary: contract.Summary{Count: 3, Total: 4096}},
		{Strategy: contract.StrategyNaive, Summary: contract.Summary{Count: 3, Total: 2048}, Ratio: 2, HasRatio: true},
		{Strategy: contract.StrategyBlock, Summary: contract.Summary{Count: 1, Total: 1024}, Ratio: 4, HasRatio: true},
		{Strategy: contract.StrategyDict, Summary: contract.Summary{Count: 3, Total: 1638}, Ratio: 2.5006, HasRatio: true},
	}}
}

func TestFormatTable(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer
	require.NoError(t, New(nil).Format(&buf, report()))
	out := buf.String()

	assert.True(t, strings.HasPrefix(strings.TrimSpace(out), "strategy"))
	assert.Contains(t, lineOf(t, out, "naive"), "2.00")
	assert.Contains(t, lineOf(t, out, "block"), "4.00")
	assert.Contains(t, lineOf(t, out, "dict"), "2.50")
	assert.NotContains(t, lineOf(t, out, "uncompressed"), ".")
	assert.NotContains(t, out, "KiB")
}

// lineOf 返回首个包含 label 的行。
func lineOf(t *testing.T, out, label string) string {
	t.Helper()
	for _, l := range strings.Split(out, "\n") {
		if strings.Contains(l, label) {
			return l
		}
	}
	t.Fatalf("no line for %q in:\n%s", label, out)
	return ""
}

func TestFormatTableHumanBytes(t *testing.T) {
	pterm.DisableStyling()
	t.Cleanup(pterm.EnableStyling)

	var buf bytes.Buffer
	require.NoError(t, New(&Options{HumanBytes: true}).Format(&buf, report()))
	assert.Contains(t, buf.String(), "size")
	assert.Contains(t, buf.String(), "4.0 KiB")
	assert.Contains(t, buf.String(), "1.0 KiB")
}
