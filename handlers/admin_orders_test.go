package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amberlane-studio/amberlane-backend-go/handlers"
)

func postJSON(t *testing.T, handler echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("507f1f77bcf86cd799439011")
	require.NoError(t, handler(c))
	return rec
}

func TestRemoveOrder_RequiresExactConfirmation(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"confirmation":"Remove"}`,
		`{"confirmation":"REMOVE"}`,
		`{"confirmation":"yes"}`,
	} {
		rec := postJSON(t, handlers.RemoveOrder, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Contains(t, rec.Body.String(), "remove")
	}
}

func TestEditTax_RejectsMissingAndNegative(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"tax":-0.01}`,
		`{"tax":-5}`,
	} {
		rec := postJSON(t, handlers.EditTax, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestEditCustomItem_RejectsIncompleteRequests(t *testing.T) {
	for _, body := range []string{
		`{}`,
		`{"itemIndex":0}`,
		`{"price":45}`,
		`{"itemIndex":0,"price":-1}`,
	} {
		rec := postJSON(t, handlers.EditCustomItem, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}
