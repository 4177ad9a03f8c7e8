package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/simp-lee/logger"

	"github.com/simp-lee/parkdash/internal/domain"
)

// recordedRequest captures what the fake backend received.
type recordedRequest struct {
	Method string
	Path   string
	Query  map[string]string
	Auth   string
	ReqID  string
	Body   string
}

func newTestServer(t *testing.T, handler func(w http.ResponseWriter, r *http.Request)) (*Client, *[]recordedRequest) {
	t.Helper()
	var got []recordedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		q := map[string]string{}
		for k := range r.URL.Query() {
			q[k] = r.URL.Query().Get(k)
		}
		got = append(got, recordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  q,
			Auth:   r.Header.Get("Authorization"),
			ReqID:  r.Header.Get("X-Request-ID"),
			Body:   string(body),
		})
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c, err := New(Options{BaseURL: srv.URL + "/api/v1", Timeout: 2 * time.Second})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c, &got
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RejectsBadBaseURL(t *testing.T) {
	for _, raw := range []string{"", "  ", "ftp://example.com", "://bad"} {
		if _, err := New(Options{BaseURL: raw}); err == nil {
			t.Errorf("New(%q) expected error", raw)
		}
	}
}

func TestSlotsList_QueryParametersAndNormalization(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"data":       []map[string]any{{"id": "s1", "parkingSlotNumber": "A-1", "parkingSlotSize": "SMALL", "parkingSlotStatus": "AVAILABLE"}},
			"totalItems": 21,
			"page":       3,
			"limit":      10,
			"totalPages": 99,
		})
	})

	env, err := c.WithToken("tok").Slots().List(context.Background(), domain.PageRequest{
		PageIndex: 2,
		PageSize:  10,
		Search:    "A-",
		Filters:   map[string]string{FilterSlotStatus: "AVAILABLE", FilterSlotSize: "", "ignored": "x"},
	})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}

	req := (*got)[0]
	if req.Method != http.MethodGet || req.Path != "/api/v1/parkingSlots" {
		t.Errorf("request = %s %s", req.Method, req.Path)
	}
	if req.Auth != "Bearer tok" {
		t.Errorf("Authorization = %q", req.Auth)
	}
	wantQuery := map[string]string{"page": "3", "limit": "10", "search": "A-", "slotStatus": "AVAILABLE"}
	if len(req.Query) != len(wantQuery) {
		t.Errorf("query = %v; want %v", req.Query, wantQuery)
	}
	for k, v := range wantQuery {
		if req.Query[k] != v {
			t.Errorf("query[%s] = %q; want %q", k, req.Query[k], v)
		}
	}

	if env.TotalPages != 3 {
		t.Errorf("TotalPages = %d; want recomputed 3", env.TotalPages)
	}
	if env.TotalCount != 21 || env.Page != 3 || env.PageSize != 10 || len(env.Items) != 1 {
		t.Errorf("envelope = %+v", env)
	}
	if env.Items[0].ParkingSlotStatus != domain.SlotAvailable {
		t.Errorf("item = %+v", env.Items[0])
	}
}

func TestList_EmptySearchOmitted(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": nil, "totalItems": 0})
	})

	env, err := c.Users().List(context.Background(), domain.PageRequest{PageSize: 10})
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if _, ok := (*got)[0].Query["search"]; ok {
		t.Error("empty search must not be sent")
	}
	if (*got)[0].Auth != "" {
		t.Error("client without token must not send Authorization")
	}
	if env.Items == nil || len(env.Items) != 0 {
		t.Errorf("Items = %#v; want empty non-nil slice", env.Items)
	}
	if env.TotalCount != 0 || env.TotalPages != 0 || env.Page != 1 || env.PageSize != 10 {
		t.Errorf("envelope = %+v", env)
	}
}

func TestNormalizeList(t *testing.T) {
	req := domain.PageRequest{PageIndex: 0, PageSize: 2}

	env := normalizeList(listResponse[int]{Data: []int{1, 2, 3}, TotalItems: 3}, req)
	if len(env.Items) != 2 {
		t.Errorf("items beyond page size must be truncated, got %v", env.Items)
	}
	if env.TotalPages != 2 {
		t.Errorf("TotalPages = %d; want 2", env.TotalPages)
	}

	env = normalizeList(listResponse[int]{Data: []int{1}, TotalItems: -4}, req)
	if env.TotalCount != 1 {
		t.Errorf("TotalCount = %d; want clamped to item count", env.TotalCount)
	}

	env = normalizeList(listResponse[int]{}, domain.PageRequest{})
	if env.PageSize <= 0 {
		t.Errorf("PageSize = %d; must stay positive", env.PageSize)
	}
}

func TestGet_NotFound(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]any{"message": "Vehicle not found"})
	})

	_, err := c.Vehicles().Get(context.Background(), "missing")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFound, got %v", err)
	}
	if err.Error() != "Vehicle not found" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestDelete_NotFoundIsNotIdempotent(t *testing.T) {
	deleted := map[string]bool{}
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimPrefix(r.URL.Path, "/api/v1/parkingSlots/")
		if deleted[id] {
			writeJSON(w, http.StatusNotFound, map[string]any{"message": "Slot not found"})
			return
		}
		deleted[id] = true
		w.WriteHeader(http.StatusNoContent)
	})

	if err := c.Slots().Delete(context.Background(), "s1"); err != nil {
		t.Fatalf("first delete error: %v", err)
	}
	if err := c.Slots().Delete(context.Background(), "s1"); !domain.IsNotFound(err) {
		t.Fatalf("second delete: expected NotFound, got %v", err)
	}
}

func TestErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    any
		check   func(error) bool
		wantMsg string
	}{
		{"unauthorized", http.StatusUnauthorized, map[string]any{"message": "jwt expired"}, domain.IsUnauthorized, "jwt expired"},
		{"rejected with message", http.StatusConflict, map[string]any{"message": "Slot is not available"}, domain.IsServerRejected, "Slot is not available"},
		{"rejected with error field", http.StatusBadRequest, map[string]any{"error": "bad status"}, domain.IsServerRejected, "bad status"},
		{"rejected without body", http.StatusInternalServerError, nil, domain.IsServerRejected, ""},
		{"forbidden is rejected", http.StatusForbidden, map[string]any{"message": "Admins only"}, domain.IsServerRejected, "Admins only"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if tt.body == nil {
					w.WriteHeader(tt.status)
					return
				}
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Orders().UpdateStatus(context.Background(), "o1", domain.OrderCompleted)
			if !tt.check(err) {
				t.Fatalf("unexpected classification: %v", err)
			}
			var appErr *domain.AppError
			if !errors.As(err, &appErr) || appErr.Message != tt.wantMsg {
				t.Errorf("message = %q; want %q", appErr.Message, tt.wantMsg)
			}
		})
	}
}

func TestServerRejected_FieldErrors(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "Validation failed",
			"errors":  []map[string]string{{"field": "email", "message": "Email already in use"}},
		})
	})

	_, err := c.Users().Create(context.Background(), domain.CreateUserInput{Email: "a@b.c"})
	if !domain.IsServerRejected(err) {
		t.Fatalf("expected ServerRejected, got %v", err)
	}
	if got := domain.FieldErrors(err)["email"]; got != "Email already in use" {
		t.Errorf("field error = %q", got)
	}
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(Options{BaseURL: base, Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	_, err = c.Parkings().List(context.Background(), domain.PageRequest{PageSize: 10})
	if !domain.IsNetworkFailure(err) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
}

func TestUndecodableBodyIsNetworkFailure(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("<html>gateway</html>"))
	})
	_, err := c.Parkings().Get(context.Background(), "p1")
	if !domain.IsNetworkFailure(err) {
		t.Fatalf("expected NetworkFailure, got %v", err)
	}
}

func TestCreateMany_AcceptsBothShapes(t *testing.T) {
	for name, body := range map[string]any{
		"wrapped": map[string]any{"data": []map[string]any{{"id": "a"}, {"id": "b"}}},
		"bare":    []map[string]any{{"id": "a"}, {"id": "b"}},
	} {
		t.Run(name, func(t *testing.T) {
			c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, http.StatusCreated, body)
			})
			slots, err := c.Slots().CreateMany(context.Background(), domain.BulkCreateSlotsInput{NumberOfSlots: 2, SlotSize: domain.SlotMedium})
			if err != nil {
				t.Fatalf("CreateMany() error: %v", err)
			}
			if len(slots) != 2 || slots[1].ID != "b" {
				t.Errorf("slots = %+v", slots)
			}
			req := (*got)[0]
			if req.Path != "/api/v1/parkingSlots/many" || !strings.Contains(req.Body, `"numberOfSlots":2`) {
				t.Errorf("request = %+v", req)
			}
		})
	}
}

func TestOrders_CreateAndStatusPaths(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "/user/") {
			writeJSON(w, http.StatusOK, map[string]any{"data": []map[string]any{{"id": "o1"}}, "totalItems": 1, "page": 1, "limit": 10})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"id": "o1", "parkingSlotOrderStatus": "PENDING"}})
	})
	ctx := context.Background()

	order, err := c.Orders().Create(ctx, domain.CreateOrderInput{SlotID: "s1", VehiclePlateNumber: "RAD123A"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if order.ParkingSlotOrderStatus != domain.OrderPending {
		t.Errorf("status = %q", order.ParkingSlotOrderStatus)
	}
	if _, err := c.Orders().UpdateStatus(ctx, "o1", domain.OrderApproved); err != nil {
		t.Fatalf("UpdateStatus() error: %v", err)
	}
	if _, err := c.Orders().ListByUser(ctx, "u1", domain.PageRequest{PageSize: 10}); err != nil {
		t.Fatalf("ListByUser() error: %v", err)
	}

	reqs := *got
	if reqs[0].Body != `{"slotId":"s1","vehiclePlateNumber":"RAD123A"}` {
		t.Errorf("create body = %s", reqs[0].Body)
	}
	if reqs[1].Method != http.MethodPatch || reqs[1].Path != "/api/v1/parkingSlot-orders/o1/status" || reqs[1].Body != `{"status":"APPROVED"}` {
		t.Errorf("status request = %+v", reqs[1])
	}
	if reqs[2].Path != "/api/v1/parkingSlot-orders/user/u1" {
		t.Errorf("list by user path = %s", reqs[2].Path)
	}
}

func TestAuth_Login(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{
			"token": "jwt",
			"user":  map[string]any{"id": "u1", "email": "a@b.c", "role": "ADMIN"},
		}})
	})

	res, err := c.Auth().Login(context.Background(), domain.Credentials{Email: "a@b.c", Password: "secret"})
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if res.Token != "jwt" || !res.User.IsAdmin() {
		t.Errorf("result = %+v", res)
	}
	if (*got)[0].Path != "/api/v1/auth/login" {
		t.Errorf("path = %s", (*got)[0].Path)
	}
}

func TestAuth_ResetPasswordSendsOnlyPassword(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": nil})
	})
	err := c.Auth().ResetPassword(context.Background(), "abc", domain.ResetPasswordInput{Password: "newpassword", ConfirmPassword: "newpassword"})
	if err != nil {
		t.Fatalf("ResetPassword() error: %v", err)
	}
	req := (*got)[0]
	if req.Path != "/api/v1/auth/reset-password/abc" || req.Body != `{"password":"newpassword"}` {
		t.Errorf("request = %+v", req)
	}
}

func TestRequireID(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	if _, err := c.Slots().Get(context.Background(), ""); !domain.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if len(*got) != 0 {
		t.Error("no request should be sent for an empty id")
	}
}

func TestClient_ForwardsRequestID(t *testing.T) {
	c, got := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"data": []any{}, "totalItems": 0})
	})

	ctx := logger.WithContextAttrs(context.Background(), slog.String("request_id", "req-42"))
	if _, err := c.Users().List(ctx, domain.PageRequest{PageSize: 10}); err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if (*got)[0].ReqID != "req-42" {
		t.Errorf("X-Request-ID = %q", (*got)[0].ReqID)
	}
}

func TestReachable(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if !c.Reachable(context.Background()) {
		t.Error("a 404 still means the host answered")
	}

	down, err := New(Options{BaseURL: "http://127.0.0.1:1/api", Timeout: time.Second})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if down.Reachable(context.Background()) {
		t.Error("closed port reported reachable")
	}
}
