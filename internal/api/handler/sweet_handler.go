package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sweetshop/inventory-system/internal/api/metrics"
	"github.com/sweetshop/inventory-system/internal/core/domain"
	"github.com/sweetshop/inventory-system/internal/core/ports"
)

// SweetHandler handles HTTP requests for catalog and inventory operations.
type SweetHandler struct {
	service   ports.SweetService
	movements ports.MovementService
}

func NewSweetHandler(service ports.SweetService, movements ports.MovementService) *SweetHandler {
	return &SweetHandler{service: service, movements: movements}
}

// List handles GET /items.
//
// @Summary      List catalog items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  sweetResponse
// @Router       /items [get]
func (h *SweetHandler) List(c echo.Context) error {
	sweets, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetViews(sweets))
}

// Search handles GET /items/search. All filters are independently optional.
//
// @Summary      Search catalog items
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        name      query  string  false  "Case-insensitive substring match on name"
// @Param        category  query  string  false  "Case-insensitive substring match on category"
// @Param        minPrice  query  number  false  "Inclusive lower price bound"
// @Param        maxPrice  query  number  false  "Inclusive upper price bound"
// @Success      200  {array}  sweetResponse
// @Router       /items/search [get]
func (h *SweetHandler) Search(c echo.Context) error {
	filter := ports.SearchFilter{
		Name:     c.QueryParam("name"),
		Category: c.QueryParam("category"),
	}

	if raw := c.QueryParam("minPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "minPrice must be a number"})
		}
		filter.MinPrice = &v
	}
	if raw := c.QueryParam("maxPrice"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "maxPrice must be a number"})
		}
		filter.MaxPrice = &v
	}

	sweets, err := h.service.Search(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetViews(sweets))
}

// Get handles GET /items/:id.
//
// @Summary      Get a catalog item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  sweetResponse
// @Failure      404  {object}  errorResponse
// @Router       /items/{id} [get]
func (h *SweetHandler) Get(c echo.Context) error {
	sweet, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetView(sweet))
}

// Create handles POST /items (admin).
//
// @Summary      Create a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createSweetRequest  true  "Item details"
// @Success      201   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Router       /items [post]
func (h *SweetHandler) Create(c echo.Context) error {
	var req createSweetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	}

	sweet, err := h.service.Create(c.Request().Context(), ports.CreateSweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, sweetView(sweet))
}

// Update handles PUT /items/:id (admin). Only fields present in the body change.
//
// @Summary      Update a catalog item
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Item id"
// @Param        body  body      updateSweetRequest  true  "Fields to update"
// @Success      200   {object}  sweetResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /items/{id} [put]
func (h *SweetHandler) Update(c echo.Context) error {
	var req updateSweetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	sweet, err := h.service.Update(c.Request().Context(), c.Param("id"), ports.UpdateSweetInput{
		Name:        req.Name,
		Category:    req.Category,
		Price:       req.Price,
		Quantity:    req.Quantity,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sweetView(sweet))
}

// Delete handles DELETE /items/:id (admin).
//
// @Summary      Delete a catalog item
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Item id"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /items/{id} [delete]
func (h *SweetHandler) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "sweet deleted successfully"})
}

// Purchase handles POST /items/:id/purchase. A missing quantity means 1.
//
// @Summary      Purchase an item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true   "Item id"
// @Param        body  body      purchaseRequest  false  "Purchase quantity"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /items/{id}/purchase [post]
func (h *SweetHandler) Purchase(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req purchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	sweet, err := h.service.Purchase(c.Request().Context(), c.Param("id"), qty, user.Email)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			metrics.PurchaseErrorsTotal.WithLabelValues("insufficient_stock").Inc()
		case errors.Is(err, domain.ErrInvalidQuantity):
			metrics.PurchaseErrorsTotal.WithLabelValues("invalid_quantity").Inc()
		case errors.Is(err, domain.ErrSweetNotFound):
			metrics.PurchaseErrorsTotal.WithLabelValues("not_found").Inc()
		}
		return err
	}

	metrics.PurchasesTotal.WithLabelValues(sweet.Category).Inc()
	return c.JSON(http.StatusOK, sweetView(sweet))
}

// Restock handles POST /items/:id/restock (admin). Quantity is required.
//
// @Summary      Restock an item
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string          true  "Item id"
// @Param        body  body      restockRequest  true  "Restock quantity"
// @Success      200   {object}  sweetResponse
// @Failure      400   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /items/{id}/restock [post]
func (h *SweetHandler) Restock(c echo.Context) error {
	user, err := currentUser(c)
	if err != nil {
		return err
	}

	var req restockRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	sweet, err := h.service.Restock(c.Request().Context(), c.Param("id"), req.Quantity, user.Email)
	if err != nil {
		return err
	}

	metrics.RestocksTotal.Inc()
	return c.JSON(http.StatusOK, sweetView(sweet))
}

// Movements handles GET /items/:id/movements (admin): the recent stock audit
// trail for one item, newest first.
//
// @Summary      List stock movements for an item
// @Tags         inventory
// @Produce      json
// @Security     BearerAuth
// @Param        id     path   string  true   "Item id"
// @Param        limit  query  int     false  "Max records (default 50)"
// @Success      200  {array}  movementResponse
// @Failure      403  {object} errorResponse
// @Router       /items/{id}/movements [get]
func (h *SweetHandler) Movements(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 0 {
			return c.JSON(http.StatusBadRequest, errorResponse{Error: "limit must be a non-negative integer"})
		}
		limit = v
	}

	movements, err := h.movements.ListBySweet(c.Request().Context(), c.Param("id"), limit)
	if err != nil {
		return err
	}

	out := make([]movementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, movementResponse{
			SweetID:      m.SweetID,
			Kind:         string(m.Kind),
			Quantity:     m.Quantity,
			ResultingQty: m.ResultingQty,
			Actor:        m.Actor,
			Timestamp:    m.Timestamp,
		})
	}
	return c.JSON(http.StatusOK, out)
}
