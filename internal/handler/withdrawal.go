package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/middleware"
	"launcx-order-api/internal/service"
	"launcx-order-api/internal/utils"
)

type WithdrawalHandler struct {
	Svc *service.WithdrawalService
}

func NewWithdrawalHandler() *WithdrawalHandler {
	return &WithdrawalHandler{Svc: service.NewWithdrawalService()}
}

// Create handles POST /api/v1/withdrawals.
func (h *WithdrawalHandler) Create(c *gin.Context) {
	partner := middleware.PartnerFrom(c)
	if partner == nil {
		c.JSON(http.StatusUnauthorized, utils.Error(constant.CodeUnauthorized))
		return
	}

	var req dto.CreateWithdrawalReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.Svc.Create(c.Request.Context(), partner, req)
	if err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(resp))
}

// Banks handles GET /api/v1/banks.
func (h *WithdrawalHandler) Banks(c *gin.Context) {
	partner := middleware.PartnerFrom(c)
	if partner == nil {
		c.JSON(http.StatusUnauthorized, utils.Error(constant.CodeUnauthorized))
		return
	}
	banks, err := h.Svc.ListBanks(c.Request.Context(), partner, c.Query("provider"))
	if err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(banks))
}
