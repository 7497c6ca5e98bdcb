package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type paymentRequest struct {
	Name          string `json:"name" binding:"required,max=5"`
	PaymentMethod string `json:"payment_method" binding:"omitempty,payment_method"`
}

func TestSetupValidator_PaymentMethodAndFieldNames(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var req paymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.String(http.StatusBadRequest, ValidationMessage(err))
			return
		}
		c.Status(http.StatusOK)
	})

	cases := []struct {
		body string
		code int
		msg  string
	}{
		{`{"name":"ana","payment_method":"pix"}`, http.StatusOK, ""},
		{`{"name":"ana"}`, http.StatusOK, ""},
		{`{"name":"ana","payment_method":"BARTER"}`, http.StatusBadRequest, "payment_method: must be one of CASH"},
		{`{"payment_method":"CASH"}`, http.StatusBadRequest, "name: is required"},
		{`{"name":"too long name"}`, http.StatusBadRequest, "name: must have at most 5 characters"},
		{`{"name":`, http.StatusBadRequest, "invalid request body"},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, tc.code, w.Code, tc.body)
		if tc.msg != "" {
			assert.Contains(t, w.Body.String(), tc.msg, tc.body)
		}
	}
}
