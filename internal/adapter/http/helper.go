package http

import (
	"errors"
	"net/http"
	"strings"

	"policylend/internal/domain/access"
	"policylend/internal/domain/ledger"
	"policylend/internal/domain/loan"
	"policylend/internal/domain/policy"
	"policylend/internal/domain/risk"
	"policylend/internal/domain/vault"
	policyuc "policylend/internal/usecase/policy"
	riskuc "policylend/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

// callerID extracts the already-verified caller identity set by the signing
// layer in front of this service.
func callerID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get("Ax-Caller-Id"))
}

// respondError maps domain errors onto HTTP codes: not-found → 404,
// capability → 403, state/resource conflicts → 409, risk rejection → 422,
// anything validation-shaped → 400, everything else → 500.
func respondError(c echo.Context, err error) error {
	var code int
	switch {
	case errors.Is(err, loan.ErrNotFound),
		errors.Is(err, policy.ErrNotFound),
		errors.Is(err, vault.ErrNoCollateral),
		errors.Is(err, ledger.ErrUnknownToken),
		errors.Is(err, risk.ErrUnknownCollateral):
		code = http.StatusNotFound
	case errors.Is(err, access.ErrUnauthorized),
		errors.Is(err, policy.ErrNotOwner):
		code = http.StatusForbidden
	case errors.Is(err, loan.ErrInvalidState),
		errors.Is(err, loan.ErrOverRepayment),
		errors.Is(err, loan.ErrNotYetDefaulted),
		errors.Is(err, loan.ErrCollateralUnavailable),
		errors.Is(err, vault.ErrAlreadyDeposited),
		errors.Is(err, ledger.ErrTokenExists),
		errors.Is(err, ledger.ErrInsufficientBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, policy.ErrNotTransferable),
		errors.Is(err, risk.ErrParametersNotSet):
		code = http.StatusConflict
	case errors.Is(err, loan.ErrRiskRejected):
		code = http.StatusUnprocessableEntity
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrAmountOutOfBounds),
		errors.Is(err, policy.ErrInvalidExpiry),
		errors.Is(err, policyuc.ErrInvalidInput),
		errors.Is(err, risk.ErrInvalidParameters),
		errors.Is(err, riskuc.ErrInvalidRequest):
		code = http.StatusBadRequest
	default:
		code = http.StatusInternalServerError
		return c.JSON(code, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(code, ErrorResponse{Error: err.Error()})
}

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
