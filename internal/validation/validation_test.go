package validation

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestOrderRequest_Valid(t *testing.T) {
	v := New()

	for _, req := range []OrderRequest{
		{UserID: "u1", Products: []string{"p1", "p2"}, CreatedAt: time.Now()},
		{UserID: "u1"},
		{UserID: "u1", Products: []string{}},
		{UserID: "u1", Products: []string{""}},
		{UserID: "   "},
	} {
		if err := v.Struct(req); err != nil {
			t.Fatalf("expected valid %+v, got error: %v", req, err)
		}
	}
}

func TestOrderRequest_MissingUser(t *testing.T) {
	v := New()

	if err := v.Struct(OrderRequest{Products: []string{"p1"}}); err == nil {
		t.Fatal("expected validation error for missing userId, got nil")
	}
}

func TestOrderRequest_ToOrder(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	o := OrderRequest{CreatedAt: ts, UserID: "u1", Products: []string{"a"}}.ToOrder()
	if o.ID != "" || o.UserID != "u1" || !o.CreatedAt.Equal(ts) || len(o.Products) != 1 {
		t.Fatalf("unexpected order %+v", o)
	}
}

func newJSONContext(body string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/orders/x", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, rec
}

func TestBind_SkipsValidation(t *testing.T) {
	c, rec := newJSONContext(`{}`)

	var req OrderRequest
	if err := Bind(c, &req); err != nil {
		t.Fatalf("expected empty object to bind, got %v (%d)", err, rec.Code)
	}
	if req.UserID != "" || req.Products != nil {
		t.Fatalf("expected zero request, got %+v", req)
	}
}

func TestBind_MalformedJSON(t *testing.T) {
	c, rec := newJSONContext(`{"userId":`)

	var req OrderRequest
	if err := Bind(c, &req); err == nil {
		t.Fatal("expected bind error")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "invalid_request_body") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}

func TestBindAndValidate_MissingUser(t *testing.T) {
	c, rec := newJSONContext(`{"products":["a"]}`)

	var req OrderRequest
	if err := BindAndValidate(c, &req, New()); err == nil {
		t.Fatal("expected validation error")
	}
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), "validation_failed") {
		t.Fatalf("unexpected response %d %s", rec.Code, rec.Body.String())
	}
}
