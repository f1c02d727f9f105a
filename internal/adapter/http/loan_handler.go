package http

import (
	"net/http"

	"policylend/internal/usecase/loan"

	"github.com/labstack/echo/v4"
)

type LoanHandler struct{ uc *loan.Usecase }

func NewLoanHandler(uc *loan.Usecase) *LoanHandler { return &LoanHandler{uc: uc} }

type requestLoanReq struct {
	PolicyID     string `json:"policy_id"     validate:"required,hex32"`
	Amount       int64  `json:"amount"        validate:"required,gt=0"`
	DurationSecs int64  `json:"duration_secs" validate:"required,gt=0"`
	Token        string `json:"token"         validate:"required"`
}

func (h *LoanHandler) RequestLoan(c echo.Context) error {
	var req requestLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Request(c.Request().Context(), loan.RequestLoanInput{
		Borrower:     callerID(c),
		PolicyID:     req.PolicyID,
		Amount:       req.Amount,
		DurationSecs: req.DurationSecs,
		Token:        req.Token,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *LoanHandler) ActivateLoan(c echo.Context) error {
	dto, err := h.uc.Activate(c.Request().Context(), callerID(c), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

type repayLoanReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
}

func (h *LoanHandler) RepayLoan(c echo.Context) error {
	var req repayLoanReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	dto, err := h.uc.Repay(c.Request().Context(), callerID(c), c.Param("loan_id"), req.Amount)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) LiquidateLoan(c echo.Context) error {
	dto, err := h.uc.Liquidate(c.Request().Context(), callerID(c), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) MarkDefaulted(c echo.Context) error {
	dto, err := h.uc.MarkDefaulted(c.Request().Context(), callerID(c), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetLoan(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *LoanHandler) GetTotalRepayment(c echo.Context) error {
	amount, err := h.uc.TotalRepayment(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]int64{"total_repayment": amount})
}

func (h *LoanHandler) ListBorrowerLoans(c echo.Context) error {
	loans, err := h.uc.ListByBorrower(c.Request().Context(), c.Param("borrower_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *LoanHandler) GetCollateralInfo(c echo.Context) error {
	info, err := h.uc.CollateralInfo(c.Request().Context(), c.Param("loan_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, info)
}
