package diag

import (
	"sort"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// 进程内指标，注册于私有 registry（不暴露 HTTP）：
// - zbench_op_total{comp,stage,result}
// - zbench_error_total{comp,code}
// - zbench_op_duration_ms{comp,stage}
// - zbench_compressed_bytes_total{strategy}
// - zbench_memo_hits_total{strategy}
var (
	registry = prometheus.NewRegistry()

	opTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zbench_op_total",
		Help: "Operations by component, stage and result.",
	}, []string{"comp", "stage", "result"})

	errorTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zbench_error_total",
		Help: "Errors by component and classified code.",
	}, []string{"comp", "code"})

	opDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "zbench_op_duration_ms",
		Help:    "Stage duration in milliseconds.",
		Buckets: prometheus.ExponentialBuckets(1, 4, 10),
	}, []string{"comp", "stage"})

	compressedBytes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zbench_compressed_bytes_total",
		Help: "Compressed output bytes by strategy.",
	}, []string{"strategy"})

	memoHits = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "zbench_memo_hits_total",
		Help: "Per-sample memo hits by strategy.",
	}, []string{"strategy"})
)

func init() {
	registry.MustRegister(opTotal, errorTotal, opDuration, compressedBytes, memoHits)
}

// Registry 返回私有指标注册表（测试与调试导出用）。
func Registry() *prometheus.Registry { return registry }

// IncOp 累加操作计数（result=success|error）。
func IncOp(comp, stage, result string) {
	opTotal.WithLabelValues(comp, stage, result).Inc()
}

// IncError 按分类累加错误计数。
func IncError(comp, code string) {
	errorTotal.WithLabelValues(comp, code).Inc()
}

// ObserveDuration 记录阶段耗时（毫秒）。
func ObserveDuration(comp, stage string, durMS int64) {
	opDuration.WithLabelValues(comp, stage).Observe(float64(durMS))
}

// AddCompressed 累加某策略的压缩输出字节数。
func AddCompressed(strategy string, n int) {
	compressedBytes.WithLabelValues(strategy).Add(float64(n))
}

// IncMemoHit 累加某策略的样本缓存命中次数。
func IncMemoHit(strategy string) {
	memoHits.WithLabelValues(strategy).Inc()
}

// Snapshot 将当前指标展平为 "name{k=v,...}" → 值；直方图输出 _count 与 _sum。
func Snapshot() (map[string]float64, error) {
	mfs, err := registry.Gather()
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, mf := range mfs {
		name := mf.GetName()
		for _, m := range mf.GetMetric() {
			key := name + labelString(m.GetLabel())
			switch mf.GetType() {
			case dto.MetricType_COUNTER:
				out[key] = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				out[key] = m.GetGauge().GetValue()
			case dto.MetricType_HISTOGRAM:
				h := m.GetHistogram()
				out[name+"_count"+labelString(m.GetLabel())] = float64(h.GetSampleCount())
				out[name+"_sum"+labelString(m.GetLabel())] = h.GetSampleSum()
			}
		}
	}
	return out, nil
}

func labelString(lps []*dto.LabelPair) string {
	if len(lps) == 0 {
		return ""
	}
	parts := make([]string, 0, len(lps))
	for _, lp := range lps {
		parts = append(parts, lp.GetName()+"="+lp.GetValue())
	}
	sort.Strings(parts)
	return "{" + strings.Join(parts, ",") + "}"
}

// SnapshotKV 将 Snapshot 格式化为字符串映射（供 debug 日志）。
func SnapshotKV() map[string]string {
	snap, err := Snapshot()
	if err != nil {
		return map[string]string{"error": err.Error()}
	}
	kv := make(map[string]string, len(snap))
	for k, v := range snap {
		kv[k] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return kv
}
