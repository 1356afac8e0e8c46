package middleware

import (
	"bytes"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"launcx-order-api/internal/constant"
	"launcx-order-api/internal/dao"
	mainmodel "launcx-order-api/internal/model/main"
	"launcx-order-api/internal/utils"
)

const (
	// PartnerKey is the gin context key the authenticated partner lives under.
	PartnerKey = "partner"

	// Requests older than this are rejected to blunt signature replay.
	timestampWindow = 5 * time.Minute
)

// PartnerAuth authenticates partner API calls: X-API-Key identifies the
// partner, X-Signature is HMAC-SHA256 over "<timestamp>.<raw body>" keyed by
// the partner's apiSecret, X-Timestamp is unix milliseconds.
func PartnerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader("X-API-Key")
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Error(constant.CodeUnauthorized))
			return
		}
		partner, err := dao.NewMainDao().GetPartnerByAPIKey(apiKey)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, utils.Error(constant.CodeDatabaseError))
			return
		}
		if partner == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Error(constant.CodeUnauthorized))
			return
		}
		if partner.Status != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, utils.Error(constant.CodePartnerDisabled))
			return
		}

		tsStr := c.GetHeader("X-Timestamp")
		sig := c.GetHeader("X-Signature")
		if tsStr == "" || sig == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Error(constant.CodeSignatureError))
			return
		}
		tsMs, err := strconv.ParseInt(tsStr, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Error(constant.CodeSignatureError))
			return
		}
		ts := time.UnixMilli(tsMs)
		if d := time.Since(ts); d > timestampWindow || d < -timestampWindow {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.ErrorMsg(constant.CodeSignatureError, "timestamp outside allowed window"))
			return
		}

		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, utils.Error(constant.CodeInvalidParams))
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(body))

		signed := append([]byte(tsStr+"."), body...)
		if !utils.VerifyPartnerSignature(signed, partner.ApiSecret, sig) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, utils.Error(constant.CodeSignatureError))
			return
		}

		c.Set(PartnerKey, partner)
		c.Next()
	}
}

// PartnerFrom pulls the authenticated partner out of the gin context.
func PartnerFrom(c *gin.Context) *mainmodel.PartnerClient {
	v, ok := c.Get(PartnerKey)
	if !ok {
		return nil
	}
	p, _ := v.(*mainmodel.PartnerClient)
	return p
}
