// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"sync"

	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "wbnry_staking"

// InitializePrometheusMetrics creates a new instance of the Prometheus service and
// sets the implementation as the default metrics services
func InitializePrometheusMetrics() {
	// don't allow for reset
	if _, ok := metrics.(*prometheusMetrics); !ok {
		metrics = newPrometheusMetrics(prometheus.DefaultRegisterer, prometheus.DefaultGatherer)
	}
}

type prometheusMetrics struct {
	registerer prometheus.Registerer
	gatherer   prometheus.Gatherer

	counters      sync.Map
	counterVecs   sync.Map
	gauges        sync.Map
	gaugeVecs     sync.Map
	histogramVecs sync.Map
}

func newPrometheusMetrics(registerer prometheus.Registerer, gatherer prometheus.Gatherer) Metrics {
	return &prometheusMetrics{
		registerer: registerer,
		gatherer:   gatherer,
	}
}

func (o *prometheusMetrics) GetOrCreateCountMeter(name string) CountMeter {
	if item, ok := o.counters.Load(name); ok {
		return item.(CountMeter)
	}
	meter, _ := o.counters.LoadOrStore(name, o.newCountMeter(name))
	return meter.(CountMeter)
}

func (o *prometheusMetrics) GetOrCreateCountVecMeter(name string, labels []string) CountVecMeter {
	if item, ok := o.counterVecs.Load(name); ok {
		return item.(CountVecMeter)
	}
	meter, _ := o.counterVecs.LoadOrStore(name, o.newCountVecMeter(name, labels))
	return meter.(CountVecMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeMeter(name string) GaugeMeter {
	if item, ok := o.gauges.Load(name); ok {
		return item.(GaugeMeter)
	}
	meter, _ := o.gauges.LoadOrStore(name, o.newGaugeMeter(name))
	return meter.(GaugeMeter)
}

func (o *prometheusMetrics) GetOrCreateGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	if item, ok := o.gaugeVecs.Load(name); ok {
		return item.(GaugeVecMeter)
	}
	meter, _ := o.gaugeVecs.LoadOrStore(name, o.newGaugeVecMeter(name, labels))
	return meter.(GaugeVecMeter)
}

func (o *prometheusMetrics) GetOrCreateHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	if item, ok := o.histogramVecs.Load(name); ok {
		return item.(HistogramVecMeter)
	}
	meter, _ := o.histogramVecs.LoadOrStore(name, o.newHistogramVecMeter(name, labels, buckets))
	return meter.(HistogramVecMeter)
}

// WriteText gathers the registry and encodes it in text format.
func (o *prometheusMetrics) WriteText(w io.Writer) error {
	families, err := o.gatherer.Gather()
	if err != nil {
		return errors.Wrap(err, "gather metrics")
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return errors.Wrap(err, "encode metrics")
		}
	}
	return nil
}

func (o *prometheusMetrics) register(c prometheus.Collector) {
	if err := o.registerer.Register(c); err != nil {
		log.Warn("unable to register metric", "err", err)
	}
}

func (o *prometheusMetrics) newCountMeter(name string) CountMeter {
	meter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		},
	)
	o.register(meter)
	return &promCountMeter{counter: meter}
}

func (o *prometheusMetrics) newCountVecMeter(name string, labels []string) CountVecMeter {
	meter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
		},
		labels,
	)
	o.register(meter)
	return &promCountVecMeter{counter: meter}
}

func (o *prometheusMetrics) newGaugeMeter(name string) GaugeMeter {
	meter := prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		},
	)
	o.register(meter)
	return &promGaugeMeter{gauge: meter}
}

func (o *prometheusMetrics) newGaugeVecMeter(name string, labels []string) GaugeVecMeter {
	meter := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      name,
		},
		labels,
	)
	o.register(meter)
	return &promGaugeVecMeter{gauge: meter}
}

func (o *prometheusMetrics) newHistogramVecMeter(name string, labels []string, buckets []int64) HistogramVecMeter {
	var floatBuckets []float64
	for _, bucket := range buckets {
		floatBuckets = append(floatBuckets, float64(bucket))
	}

	meter := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Buckets:   floatBuckets,
		},
		labels,
	)
	o.register(meter)
	return &promHistogramVecMeter{histogram: meter}
}

type promCountMeter struct {
	counter prometheus.Counter
}

func (c *promCountMeter) Add(i int64) {
	c.counter.Add(float64(i))
}

type promCountVecMeter struct {
	counter *prometheus.CounterVec
}

func (c *promCountVecMeter) AddWithLabel(i int64, labels map[string]string) {
	c.counter.With(labels).Add(float64(i))
}

type promGaugeMeter struct {
	gauge prometheus.Gauge
}

func (c *promGaugeMeter) Add(i int64) {
	c.gauge.Add(float64(i))
}

func (c *promGaugeMeter) Set(i int64) {
	c.gauge.Set(float64(i))
}

type promGaugeVecMeter struct {
	gauge *prometheus.GaugeVec
}

func (c *promGaugeVecMeter) SetWithLabel(i int64, labels map[string]string) {
	c.gauge.With(labels).Set(float64(i))
}

type promHistogramVecMeter struct {
	histogram *prometheus.HistogramVec
}

func (c *promHistogramVecMeter) ObserveWithLabels(i int64, labels map[string]string) {
	c.histogram.With(labels).Observe(float64(i))
}
