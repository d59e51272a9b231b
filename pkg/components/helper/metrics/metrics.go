/*
 * Copyright 2025 InfAI (CC SES)
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	models_operation "github.com/qavs/qavs-mod-manager/pkg/models/operation"
)

const namespace = "qavs"

type Metrics struct {
	registry           *prometheus.Registry
	requestsTotal      *prometheus.CounterVec
	requestDuration    *prometheus.HistogramVec
	operationsStarted  *prometheus.CounterVec
	operationsFinished *prometheus.CounterVec
	operationDuration  *prometheus.HistogramVec
	operationsActive   *prometheus.GaugeVec
	mods               *prometheus.GaugeVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		operationsStarted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_started_total",
				Help:      "Total number of started operations",
			},
			[]string{"kind"},
		),
		operationsFinished: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "operations_finished_total",
				Help:      "Total number of finished operations by outcome",
			},
			[]string{"kind", "status"},
		),
		operationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "operation_duration_seconds",
				Help:      "Duration of operations from start to completion",
				Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
			},
			[]string{"kind"},
		),
		operationsActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "operations_active",
				Help:      "Number of operations not yet finished",
			},
			[]string{"kind"},
		),
		mods: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "mods",
				Help:      "Number of known mods of the current app",
			},
			[]string{"library", "installed"},
		),
	}
}

func (m *Metrics) OperationStarted(kind string) {
	m.operationsStarted.WithLabelValues(kind).Inc()
	m.operationsActive.WithLabelValues(kind).Inc()
}

func (m *Metrics) OperationFinished(op models_operation.Operation) {
	m.operationsActive.WithLabelValues(op.Kind).Dec()
	m.operationsFinished.WithLabelValues(op.Kind, OperationStatus(op)).Inc()
	if op.Started != nil && op.Completed != nil {
		m.operationDuration.WithLabelValues(op.Kind).Observe(op.Completed.Sub(*op.Started).Seconds())
	}
}

// SetMods sets the mod gauge, counts are keyed by library and installed flag.
func (m *Metrics) SetMods(counts map[[2]bool]int) {
	m.mods.Reset()
	for k, n := range counts {
		m.mods.WithLabelValues(strconv.FormatBool(k[0]), strconv.FormatBool(k[1])).Set(float64(n))
	}
}

// Middleware records request counts and latencies, the route template is used as path label.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(gc *gin.Context) {
		start := time.Now()
		gc.Next()
		p := gc.FullPath()
		if p == "" {
			p = "unmatched"
		}
		m.requestsTotal.WithLabelValues(gc.Request.Method, p, strconv.Itoa(gc.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(gc.Request.Method, p).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func OperationStatus(op models_operation.Operation) string {
	switch {
	case op.IsError:
		return "error"
	case op.IsCanceled:
		return "canceled"
	case op.IsDone:
		return "done"
	default:
		return "active"
	}
}
