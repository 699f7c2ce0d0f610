package handler

import (
	"log/slog"
	"net/http"

	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/response"
	domainerrors "warden/internal/domain/errors"
	"warden/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// ItemHandlerParams holds dependencies for ItemHandler, injected by Fx.
type ItemHandlerParams struct {
	fx.In

	ItemUC usecase.ItemUsecase
	Logger *slog.Logger
}

// ItemHandler serves the owned item collection.
type ItemHandler struct {
	itemUC usecase.ItemUsecase
	logger *slog.Logger
}

// NewItemHandler is the constructor for ItemHandler.
func NewItemHandler(params ItemHandlerParams) *ItemHandler {
	return &ItemHandler{
		itemUC: params.ItemUC,
		logger: params.Logger,
	}
}

// parseID reads the :id path parameter. An id that cannot exist is reported as not found.
func parseID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrNotFound
	}

	return id, nil
}

// ListItems pages through all items.
func (h *ItemHandler) ListItems(c echo.Context) error {
	var input usecase.ListInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid paging parameters")
	}

	items, err := h.itemUC.List(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newItemResponses(items))
}

// GetItem returns one item.
func (h *ItemHandler) GetItem(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	item, err := h.itemUC.Get(c.Request().Context(), id)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newItemResponse(item))
}

// CreateItem stores a new item owned by the caller.
func (h *ItemHandler) CreateItem(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input usecase.ItemInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid item input")
	}

	item, err := h.itemUC.Create(c.Request().Context(), principal, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, newItemResponse(item))
}

// UpdateItem replaces the mutable fields of an item.
func (h *ItemHandler) UpdateItem(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	var input usecase.ItemInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid item input")
	}

	item, err := h.itemUC.Update(c.Request().Context(), principal, id, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newItemResponse(item))
}

// DeleteItem removes an item.
func (h *ItemHandler) DeleteItem(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.itemUC.Delete(c.Request().Context(), principal, id); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"id": id.String()})
}
