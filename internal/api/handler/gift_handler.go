package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/ronagung/wedding-registry/internal/api/metrics"
	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// GiftHandler handles HTTP requests for the gift registry.
type GiftHandler struct {
	service ports.GiftService
}

func NewGiftHandler(service ports.GiftService) *GiftHandler {
	return &GiftHandler{service: service}
}

// List handles GET /api/gifts.
//
// @Summary      List gifts
// @Tags         gifts
// @Produce      json
// @Success      200  {object}  giftListResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/gifts [get]
func (h *GiftHandler) List(c echo.Context) error {
	gifts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	if gifts == nil {
		gifts = []*domain.Gift{}
	}
	return c.JSON(http.StatusOK, giftListResponse{Message: "success", Data: gifts})
}

// Create handles POST /api/gifts.
//
// @Summary      Add a gift
// @Tags         gifts
// @Accept       json
// @Produce      json
// @Param        body  body      createGiftRequest  true  "Gift"
// @Success      201   {object}  createGiftResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/gifts [post]
func (h *GiftHandler) Create(c echo.Context) error {
	var req createGiftRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	gift, err := h.service.Create(c.Request().Context(), ports.CreateGiftInput{
		Name:     req.Name,
		Category: req.Category,
		Price:    req.Price,
		ImageURL: req.ImageURL,
		LinkURL:  req.LinkURL,
	})
	if err != nil {
		return err
	}

	metrics.GiftMutationsTotal.WithLabelValues("create").Inc()
	return c.JSON(http.StatusCreated, createGiftResponse{Message: "success", Data: gift, ID: gift.ID})
}

// SetPurchased handles PATCH /api/gifts/:id/purchased.
//
// @Summary      Mark a gift as purchased or available
// @Tags         gifts
// @Accept       json
// @Produce      json
// @Param        id    path      int                  true  "Gift ID"
// @Param        body  body      setPurchasedRequest  true  "Purchased flag"
// @Success      200   {object}  changesResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /api/gifts/{id}/purchased [patch]
func (h *GiftHandler) SetPurchased(c echo.Context) error {
	id, err := giftID(c)
	if err != nil {
		return err
	}

	var req setPurchasedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	changes, err := h.service.SetPurchased(c.Request().Context(), id, *req.IsPurchased)
	if err != nil {
		return err
	}

	op := "unpurchased"
	if *req.IsPurchased {
		op = "purchased"
	}
	metrics.GiftMutationsTotal.WithLabelValues(op).Inc()
	return c.JSON(http.StatusOK, changesResponse{Message: "updated", Changes: changes})
}

// Delete handles DELETE /api/gifts/:id.
//
// @Summary      Remove a gift
// @Tags         gifts
// @Produce      json
// @Param        id   path      int  true  "Gift ID"
// @Success      200  {object}  changesResponse
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /api/gifts/{id} [delete]
func (h *GiftHandler) Delete(c echo.Context) error {
	id, err := giftID(c)
	if err != nil {
		return err
	}

	changes, err := h.service.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}

	metrics.GiftMutationsTotal.WithLabelValues("delete").Inc()
	return c.JSON(http.StatusOK, changesResponse{Message: "deleted", Changes: changes})
}

func giftID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, &domain.ValidationError{Fields: []string{"id"}, Reason: "id must be a positive integer"}
	}
	return id, nil
}
