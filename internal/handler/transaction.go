// Package handler binds the HTTP surface to the service layer.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"launcx-order-api/internal/config"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dto"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/middleware"
	"launcx-order-api/internal/service"
	"launcx-order-api/internal/utils"
)

type TransactionHandler struct {
	Svc *service.TransactionService
}

func NewTransactionHandler(pub event.Publisher) *TransactionHandler {
	return &TransactionHandler{Svc: service.NewTransactionService(pub)}
}

// bindError renders the first validation failure of a bad request body.
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		c.JSON(http.StatusBadRequest, utils.ErrorMsg(constant.CodeInvalidParams,
			fe.Field()+": "+utils.ValidationMsg(fe)))
		return
	}
	c.JSON(http.StatusBadRequest, utils.Error(constant.CodeInvalidParams))
}

// respondBizError maps a service error onto the envelope.
func respondBizError(c *gin.Context, err error) {
	var biz *constant.BizError
	if errors.As(err, &biz) {
		status := http.StatusBadRequest
		switch biz.Code() {
		case constant.CodeOrderNotFound:
			status = http.StatusNotFound
		case constant.CodeUnauthorized, constant.CodeSignatureError:
			status = http.StatusUnauthorized
		case constant.CodeSystemError, constant.CodeDatabaseError, constant.CodeUpstreamError:
			status = http.StatusInternalServerError
		}
		c.JSON(status, utils.ErrorMsg(biz.Code(), biz.Error()))
		return
	}
	c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
}

// Create handles POST /api/v1/transactions. flow=redirect answers 303 with
// the checkout URL in Location; the default embed flow returns the envelope.
func (h *TransactionHandler) Create(c *gin.Context) {
	partner := middleware.PartnerFrom(c)
	if partner == nil {
		c.JSON(http.StatusUnauthorized, utils.Error(constant.CodeUnauthorized))
		return
	}

	var req dto.CreateTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	resp, err := h.Svc.Create(c.Request.Context(), partner, req)
	if err != nil {
		respondBizError(c, err)
		return
	}

	if req.Flow == "redirect" {
		c.Redirect(http.StatusSeeOther, resp.CheckoutURL)
		return
	}
	c.JSON(http.StatusCreated, utils.Success(resp))
}

// QR handles GET /api/v1/payment/:id/qr. Orders on providers that host their
// own QR image are proxied through here so the provider's signed URL never
// reaches the client; orders with an inline QR string return it directly.
func (h *TransactionHandler) QR(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, utils.Error(constant.CodeOrderNotFound))
		return
	}
	order, err := h.Svc.OrderDao.GetOrderByID(id)
	if err != nil {
		respondBizError(c, err)
		return
	}
	if order == nil {
		c.JSON(http.StatusNotFound, utils.Error(constant.CodeOrderNotFound))
		return
	}

	if order.ProviderCheckoutURL != nil && *order.ProviderCheckoutURL != "" {
		ctx, cancel := context.WithTimeout(c.Request.Context(), config.ProviderTimeout())
		defer cancel()
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, *order.ProviderCheckoutURL, nil)
		if err != nil {
			c.JSON(http.StatusInternalServerError, utils.Error(constant.CodeSystemError))
			return
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			c.JSON(http.StatusBadGateway, utils.Error(constant.CodeUpstreamError))
			return
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil || resp.StatusCode < 200 || resp.StatusCode > 299 {
			c.JSON(http.StatusBadGateway, utils.Error(constant.CodeUpstreamError))
			return
		}
		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.Data(http.StatusOK, contentType, body)
		return
	}
	if order.QRPayload != nil && *order.QRPayload != "" {
		c.String(http.StatusOK, *order.QRPayload)
		return
	}
	c.JSON(http.StatusNotFound, utils.Error(constant.CodeOrderNotFound))
}
