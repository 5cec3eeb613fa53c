package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func TestRespondError_Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, http.StatusBadRequest, "missing_retailer", errors.New("retailer query parameter is required"))

	require.Equal(t, http.StatusBadRequest, w.Code)
	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "missing_retailer", envelope.Error.Code)
	require.Equal(t, "retailer query parameter is required", envelope.Error.Message)
}

func TestRespondError_NilError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	RespondError(c, http.StatusInternalServerError, "boom", nil)

	var envelope ErrorEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.Equal(t, "unknown error", envelope.Error.Message)
}

func TestHealthCheck_OK(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HealthCheck(c)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", w.Body.String())
}

func TestReportErrorStatus_Mapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid month", errors.New(`invalid month "2026-13" (expected YYYY-MM)`), http.StatusBadRequest},
		{"not found", errors.New("report abc not found"), http.StatusNotFound},
		{"already published", errors.New("report abc is already published"), http.StatusConflict},
		{"unapproved insight", errors.New("cannot publish: insight_panel insight for domain overview is pending, not approved"), http.StatusConflict},
		{"other", errors.New("connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, reportErrorStatus(tc.err), tc.name)
	}
}
