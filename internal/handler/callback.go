package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/callback"
	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/event"
	"launcx-order-api/internal/utils"
)

// CallbackHandler terminates provider webhooks. Bodies are read raw because
// every signature scheme is byte-sensitive.
type CallbackHandler struct {
	Ingestor *callback.Ingestor
}

func NewCallbackHandler(pub event.Publisher) *CallbackHandler {
	return &CallbackHandler{Ingestor: callback.NewIngestor(pub)}
}

func rawBody(c *gin.Context) ([]byte, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil || len(body) == 0 {
		c.JSON(http.StatusBadRequest, utils.Error(constant.CodeInvalidParams))
		return nil, false
	}
	return body, true
}

// Hilogate handles POST /api/v1/transactions/callback.
func (h *CallbackHandler) Hilogate(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}
	err := h.Ingestor.ProcessHilogate(c.Request.URL.Path, body, c.GetHeader("X-Signature"))
	if err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

// OY handles POST /api/v1/transaction/callback/oy.
func (h *CallbackHandler) OY(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}
	if err := h.Ingestor.ProcessOY(body); err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

// Gidi handles POST /api/v1/transaction/callback/gidi.
func (h *CallbackHandler) Gidi(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}
	if err := h.Ingestor.ProcessGidi(body); err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}

// Withdrawal handles POST /api/v1/withdrawals/callback.
func (h *CallbackHandler) Withdrawal(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}
	err := h.Ingestor.ProcessWithdrawal(c.Request.URL.Path, body, c.GetHeader("X-Signature"))
	if err != nil {
		respondBizError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.Success(nil))
}
