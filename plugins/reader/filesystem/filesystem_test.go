package filesystem

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zbench/pkg/contract"
)

// collect 遍历 roots 并返回 (FileID, 内容) 序列。
func collect(t *testing.T, r *FileSystem, roots []string) ([]string, []string, error) {
	t.Helper()
	var ids, bodies []string
	err := r.Iterate(context.Background(), roots, func(id contract.FileID, rc io.ReadCloser) error {
		defer rc.Close()
		b, err := io.ReadAll(rc)
		if err != nil {
			return err
		}
		ids = append(ids, string(id))
		bodies = append(bodies, string(b))
		return nil
	})
	return ids, bodies, err
}

func mustNew(t *testing.T, opts *Options) *FileSystem {
	t.Helper()
	r, err := New(opts)
	require.NoError(t, err)
	return r
}

// TestIterateSingleFile 读取单文件
func TestIterateSingleFile(t *testing.T) {
	fp := filepath.Join(t.TempDir(), "a.txt")
	require.NoError(t, os.WriteFile(fp, []byte("hello\nworld\n"), 0o644))
	ids, bodies, err := collect(t, mustNew(t, nil), []string{fp})
	require.NoError(t, err)
	assert.Equal(t, []string{string(contract.NormalizeFileID(fp))}, ids)
	assert.Equal(t, []string{"hello\nworld\n"}, bodies)
}

// TestIterateDirOrder 目录内先子目录后文件，均按字典序
func TestIterateDirOrder(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("b"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "c.txt"), []byte("c"), 0o644))

	_, bodies, err := collect(t, mustNew(t, nil), []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, bodies)
}

// TestExcludeDir 跳过目录（大小写不敏感）
func TestExcludeDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "keep.txt"), []byte("k"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "Skip"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Skip", "bad.txt"), []byte("b"), 0o644))

	ids, _, err := collect(t, mustNew(t, &Options{ExcludeDirNames: []string{"skip", ""}}), []string{dir})
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Contains(t, ids[0], "keep.txt")
}

// TestInclude 目录递归时按基名过滤
func TestInclude(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.log", "b.txt", "c.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0o644))
	}
	r := mustNew(t, &Options{Include: []string{"*.log"}})
	_, bodies, err := collect(t, r, []string{dir})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.log", "c.log"}, bodies)

	// 单文件 root 不受过滤影响
	_, bodies, err = collect(t, r, []string{filepath.Join(dir, "b.txt")})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.txt"}, bodies)
}

func TestIncludeBadPattern(t *testing.T) {
	_, err := New(&Options{Include: []string{"[a-"}})
	assert.ErrorIs(t, err, contract.ErrConfig)
}

// TestIterateMissing 不存在的路径归类为输入错误
func TestIterateMissing(t *testing.T) {
	_, _, err := collect(t, mustNew(t, nil), []string{filepath.Join(t.TempDir(), "nope.txt")})
	require.Error(t, err)
	assert.ErrorIs(t, err, contract.ErrInput)
	var perr *os.PathError
	assert.True(t, errors.As(err, &perr), "保留底层 PathError")
}

// TestIterateDashMix 混用 '-' 返回错误
func TestIterateDashMix(t *testing.T) {
	err := mustNew(t, nil).Iterate(context.Background(), []string{"-", "a"}, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.ErrorIs(t, err, contract.ErrInput)
}

func withStdin(t *testing.T, data string) {
	t.Helper()
	old := os.Stdin
	pr, pw, err := os.Pipe()
	require.NoError(t, err)
	os.Stdin = pr
	t.Cleanup(func() { os.Stdin = old; pr.Close() })
	go func() {
		pw.Write([]byte(data))
		pw.Close()
	}()
}

// TestIterateStdin roots 为空或为 '-' 时读取 STDIN
func TestIterateStdin(t *testing.T) {
	for _, roots := range [][]string{nil, {"-"}} {
		withStdin(t, "x\ny")
		ids, bodies, err := collect(t, mustNew(t, nil), roots)
		require.NoError(t, err)
		assert.Equal(t, []string{"stdin"}, ids)
		assert.Equal(t, []string{"x\ny"}, bodies)
	}
}

// TestYieldErrorStops yield 返回错误时停止遍历并原样返回
func TestYieldErrorStops(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b"), []byte("b"), 0o644))
	stop := errors.New("stop")
	calls := 0
	err := mustNew(t, nil).Iterate(context.Background(), []string{dir}, func(contract.FileID, io.ReadCloser) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestIterateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := mustNew(t, nil).Iterate(ctx, []string{t.TempDir()}, func(contract.FileID, io.ReadCloser) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
