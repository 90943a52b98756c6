package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "ops_panel"

var (
	// HTTPRequests 按路由模板、方法、状态码统计请求数
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP 请求总数",
	}, []string{"method", "route", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP 请求耗时",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	// EntryTransitions 生产记录状态流转，kind 为 excavator/hauling/crusher_feed/crusher_output
	EntryTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "production_entry_transitions_total",
		Help:      "生产记录状态流转次数",
	}, []string{"kind", "action"})

	TollPaymentTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "toll_payment_transitions_total",
		Help:      "过路费支付状态流转次数",
	}, []string{"to"})

	// DepreciationRunResults 月度折旧每个档案的处理结果：created/skipped/failed
	DepreciationRunResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "depreciation_run_results_total",
		Help:      "月度折旧运行结果",
	}, []string{"result"})

	ScheduledJobRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "scheduled_job_runs_total",
		Help:      "定时任务执行次数",
	}, []string{"job", "outcome"})
)
