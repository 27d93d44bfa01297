package perf

import (
	"expvar"
	"net/http"

	"github.com/encodeous/metric"
)

var (
	DispatchLatency = metric.NewHistogram("1m1s")

	SentProbes    = metric.NewCounter("10s1s")
	RecvProbes    = metric.NewCounter("10s1s")
	SentResponses = metric.NewCounter("10s1s")
	RecvResponses = metric.NewCounter("10s1s")

	TimedOutProbes     = metric.NewCounter("1m1s")
	NacksReceived      = metric.NewCounter("1m1s")
	ValidationFailures = metric.NewCounter("1m1s")
)

func init() {
	http.Handle("/debug/metrics", metric.Handler(metric.Exposed))
	expvar.Publish("rayon:SentProbes/s", SentProbes)
	expvar.Publish("rayon:RecvProbes/s", RecvProbes)
	expvar.Publish("rayon:SentResponses/s", SentResponses)
	expvar.Publish("rayon:RecvResponses/s", RecvResponses)
	expvar.Publish("rayon:TimedOutProbes", TimedOutProbes)
	expvar.Publish("rayon:NacksReceived", NacksReceived)
	expvar.Publish("rayon:ValidationFailures", ValidationFailures)
	expvar.Publish("rayon:DispatchLatency (µs)", DispatchLatency)
}
