package contract

// Summary: 尺寸汇总（观测次数 + 字节总数）。
// 每个策略独立持有一个实例，仅由 Record 修改。
type Summary struct {
	Count int `json:"count"`
	Total int `json:"total"`
}

// Record 追加一次观测。调用方保证 size >= 0。
func (s *Summary) Record(size int) {
	s.Count++
	s.Total += size
}

// Ratio 返回 baseline.Total / s.Total（浮点除法）。
// s.Total == 0 时按 IEEE 语义得到 +Inf 或 NaN，调用方不应遇到该情形。
func (s Summary) Ratio(baseline Summary) float64 {
	return float64(baseline.Total) / float64(s.Total)
}
