// Package metrics exports render loop counters to Prometheus.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"touchdrive/hal"
	"touchdrive/input"
	"touchdrive/runloop"
)

const namespace = "touchdrive"

// Collector holds the loop metrics in its own registry.
type Collector struct {
	reg *prometheus.Registry

	cycles       prometheus.Counter
	cycleSeconds prometheus.Histogram
	pointer      *prometheus.CounterVec
	batches      prometheus.Counter
	batchRows    prometheus.Histogram
	pixels       prometheus.Counter
	faults       *prometheus.CounterVec
	heapInuse    prometheus.Gauge
	angle        prometheus.Gauge
}

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Completed render loop cycles.",
		}),
		cycleSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "Cycle duration including the pacing delay.",
			Buckets:   []float64{.01, .02, .025, .03, .04, .05, .075, .1, .25},
		}),
		pointer: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pointer_events_total",
			Help:      "Pointer events read from the touch controller.",
		}, []string{"state"}),
		batches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_writes_total",
			Help:      "Batched writes issued to the panel.",
		}),
		batchRows: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "panel_write_rows",
			Help:      "Rows per panel write.",
			Buckets:   prometheus.LinearBuckets(1, 2, 8),
		}),
		pixels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "panel_pixels_total",
			Help:      "Pixels written to the panel.",
		}),
		faults: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "faults_total",
			Help:      "Faults that ended the render loop.",
		}, []string{"kind"}),
		heapInuse: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "heap_inuse_bytes",
			Help:      "Heap in use at the last memory snapshot.",
		}),
		angle: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "animation_angle_degrees",
			Help:      "Current indicator angle.",
		}),
	}
	c.reg.MustRegister(c.cycles, c.cycleSeconds, c.pointer, c.batches, c.batchRows,
		c.pixels, c.faults, c.heapInuse, c.angle)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Hooks returns loop hooks that feed the collector.
func (c *Collector) Hooks() runloop.Hooks {
	return runloop.Hooks{
		OnCycle: func(ci runloop.CycleInfo) {
			c.cycles.Inc()
			c.cycleSeconds.Observe(ci.Elapsed.Seconds())
			c.angle.Set(float64(ci.Animation.Angle))
		},
		OnPointer: func(ev input.PointerEvent) {
			c.pointer.WithLabelValues(ev.State.String()).Inc()
		},
		OnFault: func(_ uint64, err error) {
			c.faults.WithLabelValues(faultKind(err)).Inc()
		},
		OnDiagnostics: func(d runloop.Diagnostics) {
			c.heapInuse.Set(float64(d.HeapInuse))
		},
	}
}

// ObserveBatch records one panel write. It fits flush.WithBatchHook.
func (c *Collector) ObserveBatch(r hal.Region) {
	c.batches.Inc()
	c.batchRows.Observe(float64(r.Height()))
	c.pixels.Add(float64(r.Area()))
}

func faultKind(err error) string {
	var bf *hal.BusFault
	var pf *hal.PanelFault
	switch {
	case errors.As(err, &bf):
		return "bus"
	case errors.As(err, &pf):
		return "panel"
	default:
		return "other"
	}
}

// Router serves /metrics and /healthz.
func (c *Collector) Router() http.Handler {
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok\n"))
	})
	return r
}

// Serve runs the metrics HTTP server on addr until ctx is done.
func (c *Collector) Serve(ctx context.Context, addr string, log *slog.Logger) error {
	srv := &http.Server{Addr: addr, Handler: c.Router(), ReadHeaderTimeout: 5 * time.Second}
	errc := make(chan error, 1)
	go func() {
		log.Info("metrics listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
