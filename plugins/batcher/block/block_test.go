package block

import (
	"bytes"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zbench/pkg/contract"
)

// feed 依次 Offer 全部样本并在末尾 Drain，返回按产出顺序排列的块。
func feed(t *testing.T, capacity int, samples []string) []string {
	t.Helper()
	acc, err := New(capacity, nil)
	require.NoError(t, err)
	var out []string
	for _, s := range samples {
		if b, ok := acc.Offer(contract.Sample(s)); ok {
			out = append(out, string(b))
		}
	}
	if b, ok := acc.Drain(); ok {
		out = append(out, string(b))
	}
	return out
}

// UT-BLK-01: 恰好触界的冲刷时机
func TestOfferExactBoundary(t *testing.T) {
	acc, err := New(5, nil)
	require.NoError(t, err)

	_, ok := acc.Offer(contract.Sample("ab"))
	assert.False(t, ok)
	assert.Equal(t, 2, acc.Len())

	_, ok = acc.Offer(contract.Sample("cd")) // 2+2=4 <= 5
	assert.False(t, ok)
	assert.Equal(t, 4, acc.Len())

	b, ok := acc.Offer(contract.Sample("ef")) // 4+2=6 > 5
	require.True(t, ok)
	assert.Equal(t, "abcd", string(b))
	assert.Equal(t, 2, acc.Len())

	b, ok = acc.Drain()
	require.True(t, ok)
	assert.Equal(t, "ef", string(b))
	assert.Equal(t, 0, acc.Len())

	_, ok = acc.Drain()
	assert.False(t, ok, "空缓冲 Drain 不应产出")
}

// UT-BLK-02: 单个超大样本不拆分，独立成块
func TestOfferOversizedSample(t *testing.T) {
	big := strings.Repeat("b", 13)
	acc, err := New(10, nil)
	require.NoError(t, err)

	_, ok := acc.Offer(contract.Sample("a"))
	assert.False(t, ok)

	b, ok := acc.Offer(contract.Sample(big)) // 1+13 > 10
	require.True(t, ok)
	assert.Equal(t, "a", string(b))

	b, ok = acc.Drain()
	require.True(t, ok)
	assert.Equal(t, big, string(b))
}

// 空缓冲时即使样本超过容量也不冲刷
func TestOfferOversizedIntoEmpty(t *testing.T) {
	big := strings.Repeat("x", 20)
	assert.Equal(t, []string{big, big, "y"}, feed(t, 10, []string{big, big, "y"}))
}

// 恰好等于容量的累计长度不触发冲刷
func TestOfferFillsToCapacity(t *testing.T) {
	assert.Equal(t, []string{"abcde", "f"}, feed(t, 5, []string{"abc", "de", "f"}))
}

// 空样本：不改变缓冲，也不会单独成块
func TestOfferEmptySamples(t *testing.T) {
	assert.Nil(t, feed(t, 4, []string{"", "", ""}))
	assert.Equal(t, []string{"ab"}, feed(t, 4, []string{"", "ab", ""}))
}

// 冲刷产出副本：后续 Offer 复用缓冲不影响已产出块
func TestFlushReturnsCopy(t *testing.T) {
	acc, err := New(4, nil)
	require.NoError(t, err)
	acc.Offer(contract.Sample("abcd"))
	first, ok := acc.Offer(contract.Sample("wxyz"))
	require.True(t, ok)
	acc.Offer(contract.Sample("1234"))
	assert.Equal(t, "abcd", string(first))
}

func TestNewBadCapacity(t *testing.T) {
	for _, c := range []int{0, -1} {
		_, err := New(c, nil)
		assert.ErrorIs(t, err, contract.ErrConfig)
	}
}

func TestPreallocOption(t *testing.T) {
	off := false
	acc, err := New(1<<20, &Options{Prealloc: &off})
	require.NoError(t, err)
	assert.Equal(t, 0, cap(acc.buf))
	assert.Equal(t, 1<<20, acc.Capacity())

	acc, err = New(64, nil)
	require.NoError(t, err)
	assert.Equal(t, 64, cap(acc.buf))
}

func randomSamples(r *rand.Rand, n, maxLen int) []string {
	out := make([]string, n)
	for i := range out {
		b := make([]byte, r.Intn(maxLen+1))
		for j := range b {
			b[j] = byte('a' + r.Intn(26))
		}
		out[i] = string(b)
	}
	return out
}

// 性质测试：守恒、容量上界、确定性
func TestAccumulatorProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		capacity := 1 + r.Intn(64)
		samples := randomSamples(r, r.Intn(200), 80)

		blocks := feed(t, capacity, samples)
		again := feed(t, capacity, samples)
		require.Equal(t, blocks, again, "两个独立实例应产出相同序列")

		assert.Equal(t, strings.Join(samples, ""), strings.Join(blocks, ""), "守恒：不丢不重")

		for _, b := range blocks {
			require.NotEmpty(t, b)
			if len(b) > capacity {
				// 仅允许单个超大样本独立成块
				assert.Contains(t, samples, b, "capacity=%d 超限块必须是单个样本", capacity)
			}
		}
	}
}

// 回归：冲刷后缓冲被复用而非重新分配
func TestBufferReused(t *testing.T) {
	acc, err := New(8, nil)
	require.NoError(t, err)
	acc.Offer(contract.Sample("12345678"))
	before := acc.buf[:1]
	acc.Offer(contract.Sample("9"))
	assert.True(t, bytes.Equal(before, []byte("9")), "清空后应复用同一底层数组")
}
