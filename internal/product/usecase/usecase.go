// Package usecase runs product operations inside a unit of work.
//
// Every operation follows the same order: writes through the unit, commit,
// dispatch the product's queued events, clear the queue. Anything that fails
// before commit rolls the unit back. Dispatch happens after the entity is
// durable, so dispatch failures are logged and counted rather than returned.
package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"productverification/internal/product/events"
	"productverification/internal/product/lock"
	"productverification/internal/product/metrics"
	"productverification/internal/product/models"
	"productverification/internal/product/policy"
	"productverification/internal/product/service"
	"productverification/internal/product/store/uow"
	id "productverification/pkg/domain"
	dErrors "productverification/pkg/domain-errors"
	"productverification/pkg/platform/sentinel"
	"productverification/pkg/requestcontext"
)

// Products exposes the product use cases.
type Products struct {
	factory            uow.Factory
	dispatcher         events.Dispatcher
	policy             service.Evaluator
	locker             lock.Locker
	boundaryValidation bool
	logger             *slog.Logger
	metrics            *metrics.Metrics
	tracer             trace.Tracer
}

type Option func(*Products)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Products) {
		p.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Products) {
		p.metrics = m
	}
}

// WithLocker serializes Verify per product id.
func WithLocker(l lock.Locker) Option {
	return func(p *Products) {
		p.locker = l
	}
}

// WithPolicy replaces the default verification policy.
func WithPolicy(e service.Evaluator) Option {
	return func(p *Products) {
		p.policy = e
	}
}

// WithBoundaryValidation toggles the price/stock checks Create applies before
// building a product. Enabled by default.
func WithBoundaryValidation(enabled bool) Option {
	return func(p *Products) {
		p.boundaryValidation = enabled
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Products) {
		p.tracer = t
	}
}

// New constructs the use cases over a unit-of-work factory and a dispatcher.
func New(factory uow.Factory, dispatcher events.Dispatcher, opts ...Option) *Products {
	p := &Products{
		factory:            factory,
		dispatcher:         dispatcher,
		policy:             policy.New(),
		boundaryValidation: true,
		logger:             slog.Default(),
		tracer:             otel.Tracer("productverification/usecase"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Create validates the boundary fields, creates a pending product and
// publishes its creation event.
func (u *Products) Create(ctx context.Context, cmd service.CreateProductCommand) (p *models.Product, err error) {
	ctx, finish := u.begin(ctx, "create")
	defer func() { finish(err) }()

	if u.boundaryValidation {
		if err := validateCreate(cmd); err != nil {
			return nil, err
		}
	}

	unit, err := u.factory.Begin(ctx)
	if err != nil {
		return nil, persistence(err, "failed to begin unit of work")
	}
	defer u.rollback(ctx, unit)

	p, err = u.service(unit).CreateProduct(ctx, cmd)
	if err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, persistence(err, "failed to commit product")
	}
	u.metrics.IncrementCreated()

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("product.id", p.ID.String()))
	u.publish(ctx, p)
	return p, nil
}

// Verify evaluates a pending product and moves it to active or rejected.
func (u *Products) Verify(ctx context.Context, productID id.ProductID) (p *models.Product, err error) {
	ctx, finish := u.begin(ctx, "verify", attribute.String("product.id", productID.String()))
	defer func() { finish(err) }()

	if u.locker != nil {
		release, err := u.locker.Lock(ctx, productID.String())
		if err != nil {
			u.metrics.IncrementLockUnavailable()
			if ctx.Err() != nil {
				return nil, dErrors.Wrap(err, dErrors.CodeTimeout, "timed out waiting for verification lock")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to acquire verification lock")
		}
		defer release()
	}

	unit, err := u.factory.Begin(ctx)
	if err != nil {
		return nil, persistence(err, "failed to begin unit of work")
	}
	defer u.rollback(ctx, unit)

	svc := u.service(unit)
	p, err = svc.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := svc.VerifyProduct(ctx, p); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, persistence(err, "failed to commit verification")
	}
	u.metrics.IncrementVerified(p.Status.String())

	trace.SpanFromContext(ctx).SetAttributes(attribute.String("product.status", p.Status.String()))
	u.publish(ctx, p)
	return p, nil
}

// Get loads a product by id.
func (u *Products) Get(ctx context.Context, productID id.ProductID) (p *models.Product, err error) {
	ctx, finish := u.begin(ctx, "get", attribute.String("product.id", productID.String()))
	defer func() { finish(err) }()

	unit, err := u.factory.Begin(ctx)
	if err != nil {
		return nil, persistence(err, "failed to begin unit of work")
	}
	defer u.rollback(ctx, unit)

	return u.service(unit).GetProduct(ctx, productID)
}

// GetVerification loads the latest verification record of a product.
func (u *Products) GetVerification(ctx context.Context, productID id.ProductID) (rec *models.VerificationRecord, err error) {
	ctx, finish := u.begin(ctx, "get_verification", attribute.String("product.id", productID.String()))
	defer func() { finish(err) }()

	unit, err := u.factory.Begin(ctx)
	if err != nil {
		return nil, persistence(err, "failed to begin unit of work")
	}
	defer u.rollback(ctx, unit)

	return u.service(unit).GetVerification(ctx, productID)
}

func (u *Products) service(unit uow.UnitOfWork) *service.Service {
	return service.New(unit.Products(), unit.Verifications(), u.policy,
		service.WithLogger(u.logger),
	)
}

// begin opens a span and returns a func that closes it and records the duration.
func (u *Products) begin(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	start := time.Now()
	ctx, span := u.tracer.Start(ctx, "product."+name, trace.WithAttributes(attrs...))
	if reqID := requestcontext.RequestID(ctx); reqID != "" {
		span.SetAttributes(attribute.String("request.id", reqID))
	}
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(dErrors.CodeOf(err)))
		}
		span.End()
		u.metrics.ObserveUseCase(name, start, err)
	}
}

// publish dispatches the queued events in order and then clears the queue.
// A failed event is logged and counted on its own; later events still go out.
func (u *Products) publish(ctx context.Context, p *models.Product) {
	for _, e := range p.DomainEvents() {
		if err := u.dispatcher.Dispatch(ctx, e); err != nil {
			u.metrics.IncrementDispatchFailure(e.EventName())
			u.logger.ErrorContext(ctx, "failed to dispatch product event",
				"product_id", p.ID,
				"event", e.EventName(),
				"event_id", e.EventID(),
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}
	p.ClearDomainEvents()
}

func (u *Products) rollback(ctx context.Context, unit uow.UnitOfWork) {
	if err := unit.Rollback(context.WithoutCancel(ctx)); err != nil {
		u.logger.WarnContext(ctx, "rollback failed", "error", err)
	}
}

func validateCreate(cmd service.CreateProductCommand) error {
	if !(cmd.Price > 0) {
		return dErrors.New(dErrors.CodeValidation, "price must be greater than 0")
	}
	if cmd.StockQuantity < 0 {
		return dErrors.New(dErrors.CodeValidation, "stock_quantity must be >= 0")
	}
	return nil
}

// persistence keeps coded errors and classifies raw store errors.
func persistence(err error, msg string) error {
	var coded *dErrors.Error
	if errors.As(err, &coded) {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.Wrap(err, dErrors.CodeConflict, "product was modified concurrently")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, msg)
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
