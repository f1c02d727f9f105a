package http

import (
	"net/http"

	domainLedger "policylend/internal/domain/ledger"
	"policylend/internal/usecase/ledger"

	"github.com/labstack/echo/v4"
)

type LedgerHandler struct{ uc *ledger.Service }

func NewLedgerHandler(uc *ledger.Service) *LedgerHandler { return &LedgerHandler{uc: uc} }

type addTokenReq struct {
	Symbol        string `json:"symbol"          validate:"required"`
	Decimals      int    `json:"decimals"        validate:"required,gt=0"`
	MinLoanAmount int64  `json:"min_loan_amount" validate:"gte=0"`
	MaxLoanAmount int64  `json:"max_loan_amount" validate:"required,gt=0"`
}

func (h *LedgerHandler) AddToken(c echo.Context) error {
	var req addTokenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	t, err := h.uc.AddToken(c.Request().Context(), callerID(c), domainLedger.Token{
		Symbol:        req.Symbol,
		Decimals:      req.Decimals,
		MinLoanAmount: req.MinLoanAmount,
		MaxLoanAmount: req.MaxLoanAmount,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

type mintReq struct {
	Account string `json:"account" validate:"required,hex32"`
	Amount  int64  `json:"amount"  validate:"required,gt=0"`
}

func (h *LedgerHandler) MintTokens(c echo.Context) error {
	var req mintReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Mint(c.Request().Context(), callerID(c), req.Account, c.Param("symbol"), req.Amount); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type transferReq struct {
	To     string `json:"to"     validate:"required,hex32"`
	Amount int64  `json:"amount" validate:"required,gt=0"`
}

func (h *LedgerHandler) Transfer(c echo.Context) error {
	var req transferReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Transfer(c.Request().Context(), callerID(c), req.To, c.Param("symbol"), req.Amount); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type approveReq struct {
	Spender string `json:"spender" validate:"required,hex32"`
	Amount  int64  `json:"amount"  validate:"gte=0"`
}

func (h *LedgerHandler) Approve(c echo.Context) error {
	var req approveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	if err := h.uc.Approve(c.Request().Context(), callerID(c), req.Spender, c.Param("symbol"), req.Amount); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *LedgerHandler) GetBalance(c echo.Context) error {
	amount, err := h.uc.BalanceOf(c.Request().Context(), c.Param("account"), c.Param("symbol"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"balance": amount})
}
