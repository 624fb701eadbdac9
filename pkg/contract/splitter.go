package contract

import (
	"context"
	"io"
)

// Splitter: 将单个输入流拆分为有序 Sample 序列（每行一个，含空行）。
// 约束：
// 1) 不跨文件合并；
// 2) 去除行尾 "\n" 与可选的 "\r"，末行无换行时仍保留；
// 3) 不做其他归一或清洗；
// 4) 无内部并发、幂等。
type Splitter interface {
	Split(ctx context.Context, fileID FileID, r io.Reader) ([]Sample, error)
}
