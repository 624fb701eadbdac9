package block

import (
	"fmt"
	"testing"

	"zbench/pkg/contract"
)

// BenchmarkOffer 基准测试 Offer/Drain，不同容量下的表现。
func BenchmarkOffer(b *testing.B) {
	samples := makeSamples(5000)
	for _, capacity := range []int{64, 4096, 1 << 20} {
		b.Run(fmt.Sprintf("cap=%d", capacity), func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				acc, err := New(capacity, nil)
				if err != nil {
					b.Fatalf("构造失败: %v", err)
				}
				for _, s := range samples {
					acc.Offer(s)
				}
				acc.Drain()
			}
		})
	}
}

func makeSamples(n int) contract.Corpus {
	c := make(contract.Corpus, n)
	for i := range c {
		c[i] = contract.Sample(fmt.Sprintf("GET /api/v1/items/%d HTTP/1.1 200", i))
	}
	return c
}
