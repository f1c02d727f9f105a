package http

import (
	"net/http"

	domainRisk "policylend/internal/domain/risk"
	"policylend/internal/usecase/risk"

	"github.com/labstack/echo/v4"
)

type RiskHandler struct{ uc *risk.Engine }

func NewRiskHandler(uc *risk.Engine) *RiskHandler { return &RiskHandler{uc: uc} }

type setRiskParamsReq struct {
	CollateralClass         string `json:"collateral_class"          validate:"required"`
	MaxLTVBps               int64  `json:"max_ltv_bps"               validate:"required,gt=0,bps"`
	LiquidationThresholdBps int64  `json:"liquidation_threshold_bps" validate:"required,gt=0,bps"`
	BaseInterestRateBps     int64  `json:"base_interest_rate_bps"    validate:"gte=0"`
}

func (h *RiskHandler) SetRiskParameters(c echo.Context) error {
	var req setRiskParamsReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.SetParameters(c.Request().Context(), callerID(c), domainRisk.Parameters{
		CollateralClass:         req.CollateralClass,
		MaxLTVBps:               req.MaxLTVBps,
		LiquidationThresholdBps: req.LiquidationThresholdBps,
		BaseInterestRateBps:     req.BaseInterestRateBps,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

type assessRiskReq struct {
	PolicyID     string `json:"policy_id"     validate:"required,hex32"`
	Amount       int64  `json:"amount"        validate:"required,gt=0"`
	DurationSecs int64  `json:"duration_secs" validate:"required,gt=0"`
	Token        string `json:"token"         validate:"required"`
}

func (h *RiskHandler) AssessRisk(c echo.Context) error {
	var req assessRiskReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	a, err := h.uc.Assess(c.Request().Context(), risk.AssessInput{
		Borrower:     callerID(c),
		PolicyID:     req.PolicyID,
		Amount:       req.Amount,
		DurationSecs: req.DurationSecs,
		Token:        req.Token,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, a)
}
