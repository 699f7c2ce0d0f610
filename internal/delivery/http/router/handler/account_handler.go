package handler

import (
	"log/slog"
	"net/http"

	"warden/internal/delivery/http/middleware"
	"warden/internal/delivery/http/response"
	"warden/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// AccountHandlerParams holds dependencies for AccountHandler, injected by Fx.
type AccountHandlerParams struct {
	fx.In

	AccountUC usecase.AccountUsecase
	Logger    *slog.Logger
}

// AccountHandler serves the caller's profile and account administration.
type AccountHandler struct {
	accountUC usecase.AccountUsecase
	logger    *slog.Logger
}

// NewAccountHandler is the constructor for AccountHandler.
func NewAccountHandler(params AccountHandlerParams) *AccountHandler {
	return &AccountHandler{
		accountUC: params.AccountUC,
		logger:    params.Logger,
	}
}

// GetProfile returns the authenticated account.
func (h *AccountHandler) GetProfile(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	account, err := h.accountUC.GetProfile(c.Request().Context(), principal.AccountID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account))
}

// UpdateProfile edits the authenticated account's display name.
func (h *AccountHandler) UpdateProfile(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	var input usecase.UpdateProfileInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid profile input")
	}

	account, err := h.accountUC.UpdateProfile(c.Request().Context(), principal.AccountID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account))
}

// ListAccounts pages through all accounts.
func (h *AccountHandler) ListAccounts(c echo.Context) error {
	var input usecase.ListInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid paging parameters")
	}

	accounts, err := h.accountUC.ListAccounts(c.Request().Context(), input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponses(accounts))
}

// ChangeRole promotes or demotes an account.
func (h *AccountHandler) ChangeRole(c echo.Context) error {
	principal, err := middleware.GetPrincipal(c)
	if err != nil {
		return err
	}

	accountID, err := parseID(c)
	if err != nil {
		return err
	}

	var input usecase.ChangeRoleInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "Invalid role input")
	}

	account, err := h.accountUC.ChangeRole(c.Request().Context(), principal, accountID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newAccountResponse(account))
}
