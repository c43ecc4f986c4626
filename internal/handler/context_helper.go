package handler

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/training-attendance-api/internal/middleware"
	"github.com/noah-isme/training-attendance-api/internal/models"
	appErrors "github.com/noah-isme/training-attendance-api/pkg/errors"
	"github.com/noah-isme/training-attendance-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	return middleware.Claims(c)
}

// bindJSON decodes the body into dest, answering 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return false
	}
	return true
}

func noticesMeta(c *gin.Context, notices []models.LoadNotice) map[string]interface{} {
	var extra map[string]interface{}
	if len(notices) > 0 {
		extra = map[string]interface{}{"notices": notices}
	}
	return middleware.ExtractMeta(c, extra)
}

func wantsCSV(c *gin.Context) bool {
	return strings.EqualFold(c.Query("format"), "csv")
}
