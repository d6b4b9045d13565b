package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"productverification/internal/product/models"
	"productverification/internal/product/service"
	id "productverification/pkg/domain"
	dErrors "productverification/pkg/domain-errors"
	"productverification/pkg/platform/httputil"
	"productverification/pkg/requestcontext"
)

// Service defines the product operations exposed over HTTP.
type Service interface {
	Create(ctx context.Context, cmd service.CreateProductCommand) (*models.Product, error)
	Verify(ctx context.Context, productID id.ProductID) (*models.Product, error)
	Get(ctx context.Context, productID id.ProductID) (*models.Product, error)
	GetVerification(ctx context.Context, productID id.ProductID) (*models.VerificationRecord, error)
}

// Handler handles product endpoints.
type Handler struct {
	products Service
	logger   *slog.Logger
}

// New creates a new product Handler.
func New(products Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{products: products, logger: logger}
}

// Register registers the product routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/api/v1/products", func(r chi.Router) {
		r.Post("/", h.handleCreate)
		r.Post("/{id}/verify", h.handleVerify)
		r.Get("/{id}", h.handleGet)
		r.Get("/{id}/verification", h.handleGetVerification)
	})
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateProductRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		h.logger.WarnContext(ctx, "invalid create product request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	p, err := h.products.Create(ctx, req.Command())
	if err != nil {
		h.fail(ctx, w, "create product", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, toProductResponse(p))
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.products.Verify(ctx, productID)
	if err != nil {
		h.fail(ctx, w, "verify product", err, "product_id", productID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerifyResponse(p))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	p, err := h.products.Get(ctx, productID)
	if err != nil {
		h.fail(ctx, w, "get product", err, "product_id", productID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toProductResponse(p))
}

func (h *Handler) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	productID, ok := h.productID(w, r)
	if !ok {
		return
	}

	rec, err := h.products.GetVerification(ctx, productID)
	if err != nil {
		h.fail(ctx, w, "get verification", err, "product_id", productID)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toVerificationResponse(rec))
}

func (h *Handler) productID(w http.ResponseWriter, r *http.Request) (id.ProductID, bool) {
	productID, err := id.ParseProductID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return "", false
	}
	return productID, true
}

// fail logs expected outcomes at warn and everything else at error, then
// writes the error envelope.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, op string, err error, args ...any) {
	args = append(args, "request_id", requestcontext.RequestID(ctx), "error", err)
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeValidation, dErrors.CodeInvalidStateTransition,
		dErrors.CodeBadRequest, dErrors.CodeInvalidInput, dErrors.CodeConflict:
		h.logger.WarnContext(ctx, op+" rejected", args...)
	default:
		h.logger.ErrorContext(ctx, op+" failed", args...)
	}
	httputil.WriteError(w, err)
}
