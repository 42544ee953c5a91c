package handler

import "github.com/ronagung/wedding-registry/internal/core/domain"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// successResponse is the envelope for successful responses.
type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Auth ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginData struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Message string    `json:"message"`
	Data    loginData `json:"data"`
}

type meResponse struct {
	Message string          `json:"message"`
	Data    domain.Identity `json:"data"`
}

// --- Gifts ---

type createGiftRequest struct {
	Name     string `json:"name"      validate:"required,max=200"`
	Category string `json:"category"  validate:"max=100"`
	Price    int64  `json:"price"     validate:"gte=0"`
	ImageURL string `json:"image_url" validate:"omitempty,url"`
	LinkURL  string `json:"link_url"  validate:"omitempty,url"`
}

type setPurchasedRequest struct {
	IsPurchased *bool `json:"is_purchased" validate:"required"`
}

type giftListResponse struct {
	Message string         `json:"message"`
	Data    []*domain.Gift `json:"data"`
}

type createGiftResponse struct {
	Message string       `json:"message"`
	Data    *domain.Gift `json:"data"`
	ID      int64        `json:"id"`
}

type changesResponse struct {
	Message string `json:"message"`
	Changes int64  `json:"changes"`
}
