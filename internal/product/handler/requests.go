package handler

import (
	"time"

	"productverification/internal/product/models"
	"productverification/internal/product/service"
)

// CreateProductRequest is the body of POST /api/v1/products.
type CreateProductRequest struct {
	Name          string   `json:"name"`
	Price         float64  `json:"price"`
	Currency      string   `json:"currency"`
	Category      string   `json:"category"`
	StockQuantity int      `json:"stock_quantity"`
	Assets        []string `json:"assets"`
}

func (r CreateProductRequest) Command() service.CreateProductCommand {
	assets := r.Assets
	if assets == nil {
		assets = []string{}
	}
	return service.CreateProductCommand{
		Name:          r.Name,
		Price:         r.Price,
		Currency:      r.Currency,
		Category:      r.Category,
		StockQuantity: r.StockQuantity,
		Assets:        assets,
	}
}

type ProductResponse struct {
	ProductID     string    `json:"product_id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Category      string    `json:"category"`
	StockQuantity int       `json:"stock_quantity"`
	Assets        []string  `json:"assets"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toProductResponse(p *models.Product) ProductResponse {
	assets := p.Assets
	if assets == nil {
		assets = []string{}
	}
	return ProductResponse{
		ProductID:     p.ID.String(),
		Name:          p.Name,
		Price:         p.Price,
		Currency:      p.Currency,
		Category:      p.Category,
		StockQuantity: p.StockQuantity,
		Assets:        assets,
		Status:        p.Status.String(),
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

const (
	messageVerified = "Product verified and activated"
	messageRejected = "Product verification failed"
)

type VerifyResponse struct {
	ProductID string `json:"product_id"`
	Status    string `json:"status"`
	Message   string `json:"message"`
}

func toVerifyResponse(p *models.Product) VerifyResponse {
	msg := messageRejected
	if p.Status == models.StatusActive {
		msg = messageVerified
	}
	return VerifyResponse{ProductID: p.ID.String(), Status: p.Status.String(), Message: msg}
}

type VerificationResponse struct {
	ProductID  string          `json:"product_id"`
	Checks     map[string]bool `json:"checks"`
	Reasons    []string        `json:"reasons"`
	VerifiedAt time.Time       `json:"verified_at"`
}

func toVerificationResponse(rec *models.VerificationRecord) VerificationResponse {
	reasons := rec.Reasons
	if reasons == nil {
		reasons = []string{}
	}
	return VerificationResponse{
		ProductID:  rec.ProductID.String(),
		Checks:     rec.Checks,
		Reasons:    reasons,
		VerifiedAt: rec.VerifiedAt,
	}
}
