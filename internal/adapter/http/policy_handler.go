package http

import (
	"net/http"

	domainPolicy "policylend/internal/domain/policy"
	"policylend/internal/usecase/policy"

	"github.com/labstack/echo/v4"
)

type PolicyHandler struct{ uc *policy.Registry }

func NewPolicyHandler(uc *policy.Registry) *PolicyHandler { return &PolicyHandler{uc: uc} }

type mintPolicyReq struct {
	Owner           string `json:"owner"            validate:"required,hex32"`
	PolicyNumber    string `json:"policy_number"    validate:"required"`
	Issuer          string `json:"issuer"           validate:"required"`
	CollateralClass string `json:"collateral_class" validate:"required"`
	Valuation       int64  `json:"valuation"        validate:"gte=0"`
	ExpiryDate      int64  `json:"expiry_date"      validate:"required,gt=0"`
	DocumentHash    string `json:"document_hash"    validate:"required"`
}

func (h *PolicyHandler) MintPolicy(c echo.Context) error {
	var req mintPolicyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.Mint(c.Request().Context(), callerID(c), policy.MintInput{
		Owner:           req.Owner,
		PolicyNumber:    req.PolicyNumber,
		Issuer:          req.Issuer,
		CollateralClass: req.CollateralClass,
		Valuation:       req.Valuation,
		ExpiryDate:      req.ExpiryDate,
		DocumentHash:    req.DocumentHash,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *PolicyHandler) GetPolicy(c echo.Context) error {
	p, err := h.uc.Get(c.Request().Context(), c.Param("policy_id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type transferPolicyReq struct {
	From string `json:"from" validate:"required,hex32"`
	To   string `json:"to"   validate:"required,hex32"`
}

func (h *PolicyHandler) TransferPolicy(c echo.Context) error {
	var req transferPolicyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}
	p, err := h.uc.Transfer(c.Request().Context(), callerID(c), c.Param("policy_id"), req.From, req.To)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Oracle push endpoints, keyed by policy number.

type oracleValuationReq struct {
	Valuation int64 `json:"valuation" validate:"gte=0"`
}

func (h *PolicyHandler) SetPolicyValuation(c echo.Context) error {
	var req oracleValuationReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	err := h.uc.SetValuationByNumber(c.Request().Context(), callerID(c), c.Param("policy_number"), req.Valuation)
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type oracleExpiryReq struct {
	ExpiryDate int64 `json:"expiry_date" validate:"required,gt=0"`
}

func (h *PolicyHandler) SetPolicyExpiryDate(c echo.Context) error {
	var req oracleExpiryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	err := h.uc.SetExpiryDateByNumber(c.Request().Context(), callerID(c), c.Param("policy_number"), req.ExpiryDate)
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type oracleStatusReq struct {
	Status string `json:"status" validate:"required"`
}

func (h *PolicyHandler) SetPolicyStatus(c echo.Context) error {
	var req oracleStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	err := h.uc.SetStatusByNumber(c.Request().Context(), callerID(c), c.Param("policy_number"), domainPolicy.Status(req.Status))
	if err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
