package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/angelmondragon/farmcart/api/middleware"
	"github.com/angelmondragon/farmcart/internal/cart"
	"github.com/angelmondragon/farmcart/internal/orders"
	"github.com/angelmondragon/farmcart/internal/session"
	"github.com/angelmondragon/farmcart/internal/users"
	"github.com/angelmondragon/farmcart/pkg/config"
	"github.com/angelmondragon/farmcart/pkg/enums"
	pkgerrors "github.com/angelmondragon/farmcart/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type stubAuthService struct {
	user *users.UserDTO
	err  error
}

func (s stubAuthService) Register(context.Context, string, string) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s stubAuthService) Login(context.Context, string, string) (*users.UserDTO, error) {
	return s.user, s.err
}

func (s stubAuthService) Resolve(context.Context, int64) (*users.UserDTO, error) {
	return s.user, s.err
}

type stubSessions struct {
	stored  *session.Snapshot
	lang    enums.Language
	logouts int
	setErr  error
}

func (s *stubSessions) StoreSession(_ context.Context, snap session.Snapshot) { s.stored = &snap }
func (s *stubSessions) Logout(context.Context)                                { s.logouts++ }
func (s *stubSessions) Language(context.Context) enums.Language {
	if s.lang == "" {
		return enums.DefaultLanguage
	}
	return s.lang
}
func (s *stubSessions) SetLanguage(_ context.Context, lang enums.Language) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.lang = lang
	return nil
}

type stubOrders struct {
	placed   []orders.LineItem
	total    decimal.Decimal
	placeOK  bool
	order    *orders.OrderDTO
	orderErr error
}

func (s *stubOrders) PlaceOrder(_ context.Context, _ int64, items []orders.LineItem, total decimal.Decimal) bool {
	s.placed = items
	s.total = total
	return s.placeOK
}

func (s *stubOrders) Checkout(context.Context, int64) (*orders.OrderDTO, error) {
	return s.order, s.orderErr
}

func (s *stubOrders) GetOrders(context.Context, int64) []orders.OrderDTO { return []orders.OrderDTO{} }

func (s *stubOrders) GetOrder(context.Context, int64, int64) (*orders.OrderDTO, error) {
	return s.order, s.orderErr
}

type stubCart struct {
	added   []cart.Product
	updates map[string]int
}

func (s *stubCart) AddToCart(_ context.Context, _ int64, p cart.Product) {
	s.added = append(s.added, p)
}
func (s *stubCart) GetCartItems(context.Context, int64) []cart.ItemDTO { return []cart.ItemDTO{} }
func (s *stubCart) UpdateQuantity(_ context.Context, _ int64, productID string, qty int) {
	if s.updates == nil {
		s.updates = map[string]int{}
	}
	s.updates[productID] = qty
}
func (s *stubCart) RemoveFromCart(context.Context, int64, string) {}
func (s *stubCart) Summary(context.Context, int64) cart.SummaryDTO {
	return cart.Summarize(nil)
}

type stubPinger struct{ err error }

func (s stubPinger) Ping(context.Context) error { return s.err }

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	envelope := struct {
		Data json.RawMessage `json:"data"`
	}{}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func signedIn(r *http.Request) *http.Request {
	return r.WithContext(middleware.WithUser(r.Context(), 7, "alice"))
}

func TestHealthReady(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "dev"}}

	rec := httptest.NewRecorder()
	HealthReady(cfg, nil, stubPinger{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if rec.Header().Get(envHeader) != "dev" {
		t.Fatalf("missing env header")
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, nil, stubPinger{err: errors.New("disk gone")}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestAuthRegisterCreatedAndStoresSession(t *testing.T) {
	sessions := &stubSessions{}
	handler := AuthRegister(stubAuthService{user: &users.UserDTO{ID: 1, Username: "alice"}}, sessions, nil)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"alice","password":"pw1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var user users.UserDTO
	decodeEnvelope(t, rec, &user)
	if user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if sessions.stored == nil || sessions.stored.ID != 1 || sessions.stored.Username != "alice" {
		t.Fatalf("expected session stored, got %+v", sessions.stored)
	}
}

func TestAuthRegisterDuplicate(t *testing.T) {
	sessions := &stubSessions{}
	handler := AuthRegister(stubAuthService{err: pkgerrors.New(pkgerrors.CodeDuplicateUser, "username already taken")}, sessions, nil)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"alice","password":"pw1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
	if sessions.stored != nil {
		t.Fatal("failed registration must not store a session")
	}
}

func TestAuthRegisterAcceptsLongUsername(t *testing.T) {
	sessions := &stubSessions{}
	long := strings.Repeat("a", 200)
	handler := AuthRegister(stubAuthService{user: &users.UserDTO{ID: 2, Username: long}}, sessions, nil)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"`+long+`","password":"pw1"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestAuthRegisterRejectsMissingPassword(t *testing.T) {
	handler := AuthRegister(stubAuthService{}, &stubSessions{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBufferString(`{"username":"alice"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAuthLoginStoresSession(t *testing.T) {
	sessions := &stubSessions{}
	handler := AuthLogin(stubAuthService{user: &users.UserDTO{ID: 3, Username: "bob"}}, sessions, nil)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"bob","password":"pw2"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if sessions.stored == nil || sessions.stored.ID != 3 || sessions.stored.Username != "bob" {
		t.Fatalf("expected session stored, got %+v", sessions.stored)
	}
}

func TestAuthLoginInvalidCredentialsLeavesSession(t *testing.T) {
	sessions := &stubSessions{}
	handler := AuthLogin(stubAuthService{err: pkgerrors.New(pkgerrors.CodeInvalidCredentials, "invalid username or password")}, sessions, nil)
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBufferString(`{"username":"bob","password":"nope"}`))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if sessions.stored != nil {
		t.Fatal("failed login must not store a session")
	}
}

func TestAuthLogout(t *testing.T) {
	sessions := &stubSessions{}
	rec := httptest.NewRecorder()
	AuthLogout(sessions, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/logout", nil))
	if rec.Code != http.StatusOK || sessions.logouts != 1 {
		t.Fatalf("expected logout, got %d / %d", rec.Code, sessions.logouts)
	}
}

func TestSessionCurrent(t *testing.T) {
	rec := httptest.NewRecorder()
	SessionCurrent().ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodGet, "/session", nil)))

	var snap session.Snapshot
	decodeEnvelope(t, rec, &snap)
	if snap.ID != 7 || snap.Username != "alice" {
		t.Fatalf("unexpected snapshot %+v", snap)
	}
}

func TestLanguageSetAndGet(t *testing.T) {
	sessions := &stubSessions{}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/settings/language", bytes.NewBufferString(`{"language":" TA "}`))
	LanguageSet(sessions, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if sessions.lang != enums.LanguageTamil {
		t.Fatalf("expected ta stored, got %q", sessions.lang)
	}

	rec = httptest.NewRecorder()
	LanguageGet(sessions, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/settings/language", nil))
	var resp languageResponse
	decodeEnvelope(t, rec, &resp)
	if resp.Language != enums.LanguageTamil || len(resp.Available) != 4 {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestLanguageSetRejectsUnknown(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/settings/language", bytes.NewBufferString(`{"language":"fr"}`))
	LanguageSet(&stubSessions{}, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestCartAddItemRequiresProductID(t *testing.T) {
	svc := &stubCart{}
	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(`{"name":"Tomatoes"}`)))
	CartAddItem(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if len(svc.added) != 0 {
		t.Fatal("invalid product reached the ledger")
	}
}

func TestCartAddItemKeepsProductIDAsSent(t *testing.T) {
	svc := &stubCart{}
	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPost, "/cart/items", bytes.NewBufferString(`{"id":" p1 ","name":"Tomatoes","price":"₹100"}`)))
	CartAddItem(svc, nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.added) != 1 || svc.added[0].ID != " p1 " {
		t.Fatalf("expected id forwarded untouched, got %+v", svc.added)
	}
}

func TestCartUpdateItemPassesZero(t *testing.T) {
	svc := &stubCart{}
	r := chi.NewRouter()
	r.Put("/cart/items/{productId}", CartUpdateItem(svc, nil))

	rec := httptest.NewRecorder()
	req := signedIn(httptest.NewRequest(http.MethodPut, "/cart/items/p1", bytes.NewBufferString(`{"quantity":0}`)))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if qty, ok := svc.updates["p1"]; !ok || qty != 0 {
		t.Fatalf("expected quantity 0 forwarded, got %v", svc.updates)
	}

	rec = httptest.NewRecorder()
	req = signedIn(httptest.NewRequest(http.MethodPut, "/cart/items/p1", bytes.NewBufferString(`{}`)))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing quantity, got %d", rec.Code)
	}
}

func TestOrdersPlaceComputesTotal(t *testing.T) {
	svc := &stubOrders{placeOK: true}
	body := `{"products":[{"id":"p1","name":"Tomatoes","price":"₹100","quantity":2},{"id":"p2","name":"Onions","price":"₹50","quantity":1}]}`
	rec := httptest.NewRecorder()
	OrdersPlace(svc, nil).ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	if !svc.total.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected computed total 250, got %s", svc.total)
	}
	if len(svc.placed) != 2 {
		t.Fatalf("expected 2 line items, got %d", len(svc.placed))
	}
}

func TestOrdersPlaceRejectsEmptyAndFailures(t *testing.T) {
	svc := &stubOrders{}
	rec := httptest.NewRecorder()
	OrdersPlace(svc, nil).ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(`{"products":[]}`))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty order, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body := `{"products":[{"id":"p1","price":"₹10","quantity":0}]}`
	OrdersPlace(svc, nil).ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero quantity, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	body = `{"products":[{"id":"p1","price":"₹10","quantity":1}],"total_amount":"10.00"}`
	OrdersPlace(svc, nil).ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodPost, "/orders", bytes.NewBufferString(body))))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when the recorder fails, got %d", rec.Code)
	}
}

func TestOrderGetNotFound(t *testing.T) {
	svc := &stubOrders{orderErr: pkgerrors.New(pkgerrors.CodeNotFound, "order not found")}
	r := chi.NewRouter()
	r.Get("/orders/{orderId}", OrderGet(svc, nil))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodGet, "/orders/9", nil)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, signedIn(httptest.NewRequest(http.MethodGet, "/orders/abc", nil)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
