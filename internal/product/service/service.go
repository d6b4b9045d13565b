package service

import (
	"context"
	"errors"
	"log/slog"

	"productverification/internal/product/models"
	id "productverification/pkg/domain"
	dErrors "productverification/pkg/domain-errors"
	"productverification/pkg/platform/sentinel"
	"productverification/pkg/requestcontext"
)

// ProductStore persists the canonical product record.
// FindByID returns sentinel.ErrNotFound when absent. Update succeeds only when
// the stored version equals p.Version; on success it advances p.Version, on a
// lost race it returns sentinel.ErrConflict.
type ProductStore interface {
	Save(ctx context.Context, p *models.Product) error
	FindByID(ctx context.Context, productID id.ProductID) (*models.Product, error)
	Update(ctx context.Context, p *models.Product) error
}

// VerificationStore persists the verification audit trail. Writes are not
// covered by the entity transaction. FindByProductID returns the latest record
// or sentinel.ErrNotFound.
type VerificationStore interface {
	SaveVerification(ctx context.Context, record *models.VerificationRecord) error
	FindByProductID(ctx context.Context, productID id.ProductID) (*models.VerificationRecord, error)
}

// Evaluator decides whether a product's fields allow activation.
type Evaluator interface {
	Evaluate(f models.Fields) models.VerificationResult
}

// CreateProductCommand carries the fields of a new product.
type CreateProductCommand struct {
	Name          string
	Price         float64
	Currency      string
	Category      string
	StockQuantity int
	Assets        []string
}

func (c CreateProductCommand) fields() models.Fields {
	return models.Fields{
		Name:          c.Name,
		Price:         c.Price,
		Currency:      c.Currency,
		Category:      c.Category,
		StockQuantity: c.StockQuantity,
		Assets:        c.Assets,
	}
}

// Service orchestrates product creation and verification over two stores.
// It never commits; the caller's unit of work owns the transaction.
type Service struct {
	products      ProductStore
	verifications VerificationStore
	policy        Evaluator
	newID         func() id.ProductID
	logger        *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithIDGenerator overrides product id generation.
func WithIDGenerator(fn func() id.ProductID) Option {
	return func(s *Service) {
		s.newID = fn
	}
}

// New constructs a Service.
func New(products ProductStore, verifications VerificationStore, policy Evaluator, opts ...Option) *Service {
	s := &Service{
		products:      products,
		verifications: verifications,
		policy:        policy,
		newID:         id.NewProductID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateProduct builds a pending product, queues its creation event and saves it.
func (s *Service) CreateProduct(ctx context.Context, cmd CreateProductCommand) (*models.Product, error) {
	now := requestcontext.Now(ctx)
	p := models.NewProduct(s.newID(), cmd.fields(), now)
	p.AddDomainEvent(models.NewProductCreatedPendingVerification(p, now))

	if err := s.products.Save(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, "product already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save product")
	}
	return p, nil
}

// VerifyProduct runs the policy, applies the terminal transition, writes the
// audit record, then updates the product and queues the completion event.
// Invalid transitions (e.g. verifying twice) are returned unchanged.
func (s *Service) VerifyProduct(ctx context.Context, p *models.Product) error {
	now := requestcontext.Now(ctx)
	result := s.policy.Evaluate(p.Fields())

	var err error
	if result.Passed {
		err = p.TransitionToActive(now)
	} else {
		err = p.TransitionToRejected(now)
	}
	if err != nil {
		return err
	}

	record := &models.VerificationRecord{
		ProductID:  p.ID,
		Checks:     result.Checks,
		Reasons:    result.Reasons,
		VerifiedAt: now,
	}
	if err := s.verifications.SaveVerification(ctx, record); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification record")
	}

	if err := s.products.Update(ctx, p); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.warn(ctx, "concurrent verification detected", "product_id", p.ID)
			return dErrors.Wrap(err, dErrors.CodeConflict, "product was modified concurrently")
		}
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.Wrap(err, dErrors.CodeNotFound, "product not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update product")
	}

	p.AddDomainEvent(models.NewProductVerificationCompleted(p, result.Reasons, now))
	return nil
}

// GetProduct loads a product by id.
func (s *Service) GetProduct(ctx context.Context, productID id.ProductID) (*models.Product, error) {
	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "product not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load product")
	}
	return p, nil
}

// GetVerification loads the latest audit record for a product.
func (s *Service) GetVerification(ctx context.Context, productID id.ProductID) (*models.VerificationRecord, error) {
	rec, err := s.verifications.FindByProductID(ctx, productID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "verification not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification")
	}
	return rec, nil
}

func (s *Service) warn(ctx context.Context, msg string, args ...any) {
	if s.logger == nil {
		return
	}
	s.logger.WarnContext(ctx, msg, args...)
}
