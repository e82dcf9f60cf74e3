package telemetry

import (
	"context"
	stderrors "errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	vterrors "github.com/vango-dev/vtree/internal/errors"
	"github.com/vango-dev/vtree/pkg/reconcile"
)

const defaultTracerName = "vtree"

// Config configures an Observer.
type Config struct {
	// Namespace is the metrics namespace (default: "vtree").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the pass duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry receives the metrics.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// Tracer is used for pass spans.
	// Default: otel.Tracer("vtree")
	Tracer trace.Tracer
}

// Option configures an Observer.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracer sets the tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Config) {
		c.Tracer = tracer
	}
}

func defaultConfig() Config {
	return Config{
		Namespace: "vtree",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Observer records reconciliation passes.
type Observer struct {
	passes    *prometheus.CounterVec
	errors    *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	mutations *prometheus.CounterVec
	created   *prometheus.CounterVec
	tracer    trace.Tracer
}

var _ reconcile.Observer = (*Observer)(nil)

// New creates an Observer and registers its metrics. It panics if the
// metrics are already registered with the registry.
func New(opts ...Option) *Observer {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Tracer == nil {
		cfg.Tracer = otel.Tracer(defaultTracerName)
	}
	factory := promauto.With(cfg.Registry)

	return &Observer{
		passes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "passes_total",
			Help:        "Total number of reconciliation passes",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "status"}),

		errors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "pass_errors_total",
			Help:        "Total number of failed passes by error code",
			ConstLabels: cfg.ConstLabels,
		}, []string{"kind", "code"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "pass_duration_seconds",
			Help:        "Reconciliation pass duration in seconds",
			ConstLabels: cfg.ConstLabels,
			Buckets:     cfg.Buckets,
		}, []string{"kind"}),

		mutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "mutations_total",
			Help:        "Total number of surface mutations applied",
			ConstLabels: cfg.ConstLabels,
		}, []string{"op"}),

		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "nodes_created_total",
			Help:        "Total number of surface nodes created",
			ConstLabels: cfg.ConstLabels,
		}, []string{"node"}),

		tracer: cfg.Tracer,
	}
}

// BeginPass implements reconcile.Observer.
func (o *Observer) BeginPass(ctx context.Context, kind reconcile.PassKind) context.Context {
	ctx, _ = o.tracer.Start(ctx, "vtree."+string(kind),
		trace.WithAttributes(attribute.String("vtree.pass", string(kind))))
	return ctx
}

// EndPass implements reconcile.Observer.
func (o *Observer) EndPass(ctx context.Context, p reconcile.Pass) {
	kind := string(p.Kind)
	status := "ok"
	if p.Err != nil {
		status = "error"
		o.errors.WithLabelValues(kind, errorCode(p.Err)).Inc()
	}
	o.passes.WithLabelValues(kind, status).Inc()
	o.duration.WithLabelValues(kind).Observe(p.Duration.Seconds())

	s := p.Stats
	for op, n := range map[string]int{
		"append":      s.Appended,
		"remove":      s.Removed,
		"replace":     s.Replaced,
		"set_prop":    s.PropsSet,
		"remove_prop": s.PropsRemoved,
		"listener":    s.Listeners,
	} {
		if n > 0 {
			o.mutations.WithLabelValues(op).Add(float64(n))
		}
	}
	if s.ElementsCreated > 0 {
		o.created.WithLabelValues("element").Add(float64(s.ElementsCreated))
	}
	if s.TextsCreated > 0 {
		o.created.WithLabelValues("text").Add(float64(s.TextsCreated))
	}

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(
		attribute.Int("vtree.mutations", s.Mutations()),
		attribute.Int("vtree.replaced", s.Replaced),
		attribute.Int("vtree.expansions", s.Expansions),
	)
	if p.Err != nil {
		span.RecordError(p.Err)
		span.SetStatus(codes.Error, p.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

func errorCode(err error) string {
	var e *vterrors.Error
	if stderrors.As(err, &e) && e.Code != "" {
		return e.Code
	}
	return "unknown"
}
