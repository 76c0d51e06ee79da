// internal/metrics/collector.go
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tamzrod/apstorage-modbus/internal/codec"
	"github.com/tamzrod/apstorage-modbus/internal/poller"
	"github.com/tamzrod/apstorage-modbus/internal/register"
	"github.com/tamzrod/apstorage-modbus/internal/status"
)

const namespace = "apstorage"

// Collector exports poll outcomes and register values.
// It is a poller.Recorder for cycle counters and a writer.Writer for
// per-register gauges.
type Collector struct {
	cat    *register.Catalog
	health func() status.Health

	reg *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	readFailures  *prometheus.CounterVec
	writes        *prometheus.CounterVec

	values      *prometheus.GaugeVec
	alarms      *prometheus.GaugeVec
	available   prometheus.Gauge
	version     prometheus.Gauge
	lastSuccess prometheus.Gauge
	state       prometheus.Gauge
	failures    prometheus.Gauge
}

// New registers all metrics on a private registry. health may be nil.
func New(device string, cat *register.Catalog, health func() status.Health) *Collector {
	labels := prometheus.Labels{"device": device}

	c := &Collector{
		cat:    cat,
		health: health,
		reg:    prometheus.NewRegistry(),

		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "poll_cycles_total",
			Help: "Completed poll cycles by result.", ConstLabels: labels,
		}, []string{"result"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "poll_cycle_duration_seconds",
			Help: "Wall time of one poll cycle.", ConstLabels: labels,
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		readFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "register_read_failures_total",
			Help: "Failed register reads.", ConstLabels: labels,
		}, []string{"address"}),
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "register_writes_total",
			Help: "Register writes by result.", ConstLabels: labels,
		}, []string{"address", "result"}),

		values: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "register_value",
			Help: "Decoded register value. Enums export the raw code, bitfields the raw word.", ConstLabels: labels,
		}, []string{"address", "name", "unit"}),
		alarms: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "alarm_active",
			Help: "1 when the alarm bit is set.", ConstLabels: labels,
		}, []string{"address", "alarm"}),
		available: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "available",
			Help: "1 when the last snapshot succeeded.", ConstLabels: labels,
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "snapshot_version",
			Help: "Version of the last published snapshot.", ConstLabels: labels,
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_success_timestamp_seconds",
			Help: "Unix time of the last successful cycle.", ConstLabels: labels,
		}),
		state: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "poller_state",
			Help: "Poller state: 0 uninitialized, 1 connected, 2 polling, 3 idle, 4 failed.", ConstLabels: labels,
		}),
		failures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "consecutive_failures",
			Help: "Fatal cycles since the last good one.", ConstLabels: labels,
		}),
	}

	c.reg.MustRegister(
		c.cycles, c.cycleDuration, c.readFailures, c.writes,
		c.values, c.alarms, c.available, c.version, c.lastSuccess, c.state, c.failures,
	)
	return c
}

// Handler serves this collector's registry.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and for adding process collectors.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// ---- poller.Recorder ----

func (c *Collector) CycleCompleted(ok bool, d time.Duration) {
	result := "ok"
	if !ok {
		result = "failed"
	}
	c.cycles.WithLabelValues(result).Inc()
	c.cycleDuration.Observe(d.Seconds())
}

func (c *Collector) ReadFailed(addr uint16) {
	c.readFailures.WithLabelValues(addrLabel(addr)).Inc()
}

func (c *Collector) WriteCompleted(addr uint16, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.writes.WithLabelValues(addrLabel(addr), result).Inc()
}

// ---- writer.Writer ----

// Write refreshes gauges from snap. Registers absent from snap are
// removed so stale readings are not exported.
func (c *Collector) Write(snap poller.Snapshot) error {
	c.version.Set(float64(snap.Version))
	if snap.LastUpdateSucceeded {
		c.available.Set(1)
	} else {
		c.available.Set(0)
	}

	for _, def := range c.cat.All() {
		addr := addrLabel(def.Address)
		v, ok := snap.Value(def.Address)

		if def.Type != register.String {
			if ok {
				c.values.WithLabelValues(addr, def.Name, def.Unit).Set(gaugeValue(v))
			} else {
				c.values.DeleteLabelValues(addr, def.Name, def.Unit)
			}
		}

		bits, mapped := c.cat.AlarmBits(def.Address)
		if !mapped {
			continue
		}
		for bit, name := range bits {
			if !ok {
				c.alarms.DeleteLabelValues(addr, name)
				continue
			}
			set := 0.0
			if v.Bits()&(1<<bit) != 0 {
				set = 1
			}
			c.alarms.WithLabelValues(addr, name).Set(set)
		}
	}

	if c.health != nil {
		h := c.health()
		c.state.Set(float64(h.State))
		c.failures.Set(float64(h.ConsecutiveFailures))
		if !h.LastSuccess.IsZero() {
			c.lastSuccess.Set(float64(h.LastSuccess.UnixNano()) / 1e9)
		}
	}
	return nil
}

func gaugeValue(v codec.Value) float64 {
	switch v.Type {
	case register.Enum16, register.Bitfield32:
		return float64(v.Raw)
	default:
		return v.Number
	}
}

func addrLabel(addr uint16) string {
	return strconv.Itoa(int(addr))
}
