package lines

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"zbench/pkg/contract"
)

// DefaultMaxLineBytes 单行上限默认值（64 MiB）。
const DefaultMaxLineBytes = 64 << 20

// Options 为行拆分器的可选配置。
type Options struct {
	// MaxLineBytes: 单行最大字节数；0 取默认值。
	MaxLineBytes int `json:"max_line_bytes"`
	// AllowBinary: 为 true 时不做 UTF-8 校验。
	AllowBinary bool `json:"allow_binary"`
}

// Splitter 按行拆分输入流。
type Splitter struct {
	maxLine     int
	allowBinary bool
}

// New 创建行拆分器；MaxLineBytes 为负视为配置错误。
func New(opts *Options) (*Splitter, error) {
	s := &Splitter{maxLine: DefaultMaxLineBytes}
	if opts == nil {
		return s, nil
	}
	if opts.MaxLineBytes < 0 {
		return nil, fmt.Errorf("%w: splitter.lines: max_line_bytes must be >= 0", contract.ErrConfig)
	}
	if opts.MaxLineBytes > 0 {
		s.maxLine = opts.MaxLineBytes
	}
	s.allowBinary = opts.AllowBinary
	return s, nil
}

// Split 读取 r 的全部行。空行同样是样本；空输入返回零个样本。
func (s *Splitter) Split(ctx context.Context, fileID contract.FileID, r io.Reader) ([]contract.Sample, error) {
	sc := bufio.NewScanner(r)
	// 缓冲需容纳行尾的 "\r\n"
	limit := s.maxLine + 2
	initial := 64 << 10
	if initial > limit {
		initial = limit
	}
	sc.Buffer(make([]byte, 0, initial), limit)

	var out []contract.Sample
	line := 0
	for sc.Scan() {
		line++
		if line%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		tok := sc.Bytes()
		if len(tok) > s.maxLine {
			return nil, lineErr(fileID, line, fmt.Errorf("line too long: %d > %d", len(tok), s.maxLine))
		}
		if !s.allowBinary && !utf8.Valid(tok) {
			return nil, lineErr(fileID, line, errors.New("invalid UTF-8"))
		}
		// Bytes 指向扫描器内部缓冲，需复制
		out = append(out, contract.Sample(append([]byte(nil), tok...)))
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, lineErr(fileID, line+1, fmt.Errorf("line too long: > %d", s.maxLine))
		}
		return nil, fmt.Errorf("%w: %s: %w", contract.ErrInput, fileID, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func lineErr(fileID contract.FileID, line int, err error) error {
	return fmt.Errorf("%w: %s:%d: %w", contract.ErrInput, fileID, line, err)
}
