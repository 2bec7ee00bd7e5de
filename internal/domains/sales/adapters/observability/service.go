package observability

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/DewinU/backend-DSI/internal/domains/sales/application/types"
	salesports "github.com/DewinU/backend-DSI/internal/domains/sales/ports"
)

const tracerName = "github.com/DewinU/backend-DSI/internal/domains/sales/adapters/observability/service"

// Service decorates the sales service with tracing, logging, and metrics.
type Service struct {
	inner   salesports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core sales service.
func New(inner salesports.Service, opts ...Option) salesports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) CreateSale(ctx context.Context, input types.CreateSaleInput) (*types.SaleProjection, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CreateSale",
		trace.WithAttributes(attribute.Int("sale.items", len(input.Items))))
	defer span.End()

	s.logInfo(ctx, "creating sale", slog.Int("sale.items", len(input.Items)))
	result, err := s.inner.CreateSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create sale", slog.Int("sale.items", len(input.Items)))
	}
	s.metrics.recordCreated(ctx, result)
	s.logInfo(ctx, "sale created",
		slog.Int64("sale.id", result.Sale.ID),
		slog.String("sale.reference", result.Sale.Reference),
		slog.String("sale.total", result.Sale.Total.String()))
	return result, nil
}

func (s *Service) CancelSale(ctx context.Context, input types.CancelSaleInput) (*types.SaleProjection, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.CancelSale",
		trace.WithAttributes(attribute.Int64("sale.id", input.ID)))
	defer span.End()

	s.logInfo(ctx, "cancelling sale", slog.Int64("sale.id", input.ID))
	result, err := s.inner.CancelSale(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to cancel sale", slog.Int64("sale.id", input.ID))
	}
	s.metrics.recordCancelled(ctx)
	s.logInfo(ctx, "sale cancelled", slog.Int64("sale.id", result.Sale.ID))
	return result, nil
}

func (s *Service) GetSaleByID(ctx context.Context, input types.SaleIdentifier) (*types.SaleProjection, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.GetSaleByID", trace.WithAttributes(attribute.Int64("sale.id", input.ID)))
	defer span.End()

	result, err := s.inner.GetSaleByID(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to load sale", slog.Int64("sale.id", input.ID))
	}
	return result, nil
}

func (s *Service) ListSales(ctx context.Context) ([]*types.SaleProjection, error) {
	ctx, span := s.tracer.Start(ctx, "SalesService.ListSales")
	defer span.End()

	result, err := s.inner.ListSales(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list sales")
	}
	span.SetAttributes(attribute.Int("sales.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	if s.logger != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
		s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	}
	return err
}

type serviceMetrics struct {
	salesCreated   metric.Int64Counter
	salesCancelled metric.Int64Counter
	saleTotals     metric.Float64Histogram
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	salesCreated, _ := m.Int64Counter("sales.service.sales_created", metric.WithDescription("Number of sales created"))
	salesCancelled, _ := m.Int64Counter("sales.service.sales_cancelled", metric.WithDescription("Number of sales cancelled"))
	saleTotals, _ := m.Float64Histogram("sales.service.sale_total", metric.WithDescription("Distribution of sale grand totals"))
	return serviceMetrics{salesCreated: salesCreated, salesCancelled: salesCancelled, saleTotals: saleTotals}
}

func (m serviceMetrics) recordCreated(ctx context.Context, projection *types.SaleProjection) {
	if m.salesCreated != nil {
		m.salesCreated.Add(ctx, 1)
	}
	if m.saleTotals != nil && projection != nil && projection.Sale != nil {
		total, _ := projection.Sale.Total.Float64()
		m.saleTotals.Record(ctx, total)
	}
}

func (m serviceMetrics) recordCancelled(ctx context.Context) {
	if m.salesCancelled != nil {
		m.salesCancelled.Add(ctx, 1)
	}
}

var _ salesports.Service = (*Service)(nil)
