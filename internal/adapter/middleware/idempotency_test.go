package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

const (
	testCaller = "bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb"
	testReqID  = "9b2d7f3a-1c4e-4a5b-8f6d-0e1a2b3c4d5e"
)

func newIdempServer(t *testing.T) (*echo.Echo, *redis.Client, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	calls := 0
	e := echo.New()
	e.Use(IdempotencyMiddleware(rdb, time.Hour))
	e.POST("/loans/:loan_id/activate", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusCreated, map[string]any{
			"loan_id": c.Param("loan_id"),
			"call":    calls,
		})
	})
	e.GET("/loans/:loan_id", func(c echo.Context) error {
		calls++
		return c.JSON(http.StatusOK, map[string]string{"loan_id": c.Param("loan_id")})
	})
	return e, rdb, &calls
}

func doRequest(e *echo.Echo, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func axHeaders() map[string]string {
	return map[string]string{
		"Ax-Request-Id": testReqID,
		"Ax-Request-At": strconv.FormatInt(time.Now().Unix(), 10),
		"Ax-Caller-Id":  testCaller,
	}
}

func TestIdempotencyReplaysCompletedResponse(t *testing.T) {
	e, _, calls := newIdempServer(t)
	headers := axHeaders()

	first := doRequest(e, http.MethodPost, "/loans/loan-1/activate", `{"x":1}`, headers)
	if first.Code != http.StatusCreated {
		t.Fatalf("first: status = %d, body %s", first.Code, first.Body.String())
	}
	if *calls != 1 {
		t.Fatalf("handler calls = %d, want 1", *calls)
	}

	second := doRequest(e, http.MethodPost, "/loans/loan-1/activate", `{"x":1}`, headers)
	if second.Code != http.StatusCreated {
		t.Fatalf("replay: status = %d, want recorded 201", second.Code)
	}
	if *calls != 1 {
		t.Errorf("handler calls = %d, replay must not re-run the transition", *calls)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("replayed body %q differs from original %q", second.Body.String(), first.Body.String())
	}
}

func TestIdempotencyRejectsReusedIDWithDifferentBody(t *testing.T) {
	e, _, _ := newIdempServer(t)
	headers := axHeaders()

	if rec := doRequest(e, http.MethodPost, "/loans/loan-1/activate", `{"x":1}`, headers); rec.Code != http.StatusCreated {
		t.Fatalf("first: status = %d", rec.Code)
	}
	rec := doRequest(e, http.MethodPost, "/loans/loan-1/activate", `{"x":2}`, headers)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 for reused id with new body", rec.Code)
	}
}

func TestIdempotencyInProgressConflict(t *testing.T) {
	e, rdb, _ := newIdempServer(t)
	headers := axHeaders()

	body := `{"x":1}`
	key := buildKey(http.MethodPost, "/loans/:loan_id/activate", testCaller, testReqID)
	entry := idempEntry{
		InProgress: true,
		BodySHA256: bodyHash([]byte(body)),
		RequestID:  testReqID,
		CreatedAt:  nowUTC(),
	}
	ok, err := provisionalSet(context.Background(), rdb, key, entry)
	if err != nil || !ok {
		t.Fatalf("seed provisional lock: ok=%v err=%v", ok, err)
	}

	rec := doRequest(e, http.MethodPost, "/loans/loan-1/activate", body, headers)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409 while in progress", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "in progress") {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestIdempotencyHeaderValidation(t *testing.T) {
	e, _, calls := newIdempServer(t)

	tests := []struct {
		name   string
		mutate func(map[string]string)
	}{
		{"missing request id", func(h map[string]string) { delete(h, "Ax-Request-Id") }},
		{"malformed request id", func(h map[string]string) { h["Ax-Request-Id"] = "not!valid" }},
		{"missing caller id", func(h map[string]string) { delete(h, "Ax-Caller-Id") }},
		{"malformed caller id", func(h map[string]string) { h["Ax-Caller-Id"] = "UPPERCASE" }},
		{"missing request at", func(h map[string]string) { delete(h, "Ax-Request-At") }},
		{"skewed request at", func(h map[string]string) {
			h["Ax-Request-At"] = fmt.Sprintf("%d", time.Now().Add(-time.Hour).Unix())
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			headers := axHeaders()
			tt.mutate(headers)
			rec := doRequest(e, http.MethodPost, "/loans/loan-1/activate", `{}`, headers)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
		})
	}
	if *calls != 0 {
		t.Errorf("handler calls = %d, invalid headers must not reach the handler", *calls)
	}
}

func TestIdempotencySkipsReads(t *testing.T) {
	e, _, calls := newIdempServer(t)

	// no Ax headers at all
	rec := doRequest(e, http.MethodGet, "/loans/loan-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	rec = doRequest(e, http.MethodGet, "/loans/loan-1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat status = %d, want 200", rec.Code)
	}
	if *calls != 2 {
		t.Errorf("handler calls = %d, reads must not be deduplicated", *calls)
	}
}
