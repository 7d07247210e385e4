package router

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"foodshare/internal/adapter/api"
	"foodshare/internal/adapter/api/handler"
	"foodshare/internal/adapter/api/middleware"
	"foodshare/internal/adapter/repository"
	"foodshare/internal/infrastructure/identity"
	"foodshare/internal/infrastructure/scheduler"
	ws "foodshare/internal/infrastructure/websocket"
	"foodshare/internal/usecase"
)

type stubStorage struct {
	folder string
}

func (s *stubStorage) UploadFile(ctx context.Context, file io.Reader, contentType, folder string, isPublic bool) (string, error) {
	s.folder = folder
	return "https://storage.googleapis.com/foodshare-test/public/" + folder + "/photo.png", nil
}

func (s *stubStorage) DeleteFile(ctx context.Context, fileURL string) error {
	return nil
}

type blockAll struct{}

func (blockAll) Allow(key, action string) (bool, time.Duration) {
	return false, 42 * time.Second
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type testServer struct {
	t        *testing.T
	e        *echo.Echo
	resolver *identity.JWTResolver
	storage  *stubStorage
}

func newTestServer(t *testing.T, limiter middleware.Limiter) *testServer {
	t.Helper()

	stores := repository.NewMemoryStores()
	resolver := identity.NewJWTResolver("router-test-secret-0123456789", "foodshare-test")
	storage := &stubStorage{}
	wsManager := ws.NewManager()

	uc := handler.UseCases{
		Profiles: usecase.NewProfileUseCase(stores.Profiles),
		Listings: usecase.NewListingUseCase(stores.Listings, stores.Profiles, stores.Transactor, scheduler.New(), usecase.ListingOptions{}),
		Claims:   usecase.NewClaimUseCase(stores.Claims, stores.Listings, stores.Profiles, stores.Transactor, nil, usecase.DefaultClaimPolicy()),
		Messages: usecase.NewMessageUseCase(stores.Messages, stores.Claims, stores.Profiles, wsManager, nil),
		Reports:  usecase.NewReportUseCase(stores.Reports, stores.Listings, stores.Profiles, nil),
		Photos:   usecase.NewPhotoUseCase(storage, stores.Profiles),
	}

	e := echo.New()
	e.Validator = api.NewValidator()
	Setup(e, handler.Setup(uc, wsManager, resolver), middleware.NewAuthMiddleware(resolver), limiter)

	return &testServer{t: t, e: e, resolver: resolver, storage: storage}
}

func (s *testServer) token(uid string) string {
	s.t.Helper()
	token, err := s.resolver.Issue(uid, uid+"@example.com", time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body interface{}) (int, envelope) {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return s.serve(req, token)
}

func (s *testServer) serve(req *http.Request, token string) (int, envelope) {
	s.t.Helper()

	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (s *testServer) createProfile(uid, role string) string {
	s.t.Helper()
	token := s.token(uid)
	code, env := s.do(http.MethodPost, "/v1/profile", token, map[string]string{
		"display_name": "User " + uid,
		"role":         role,
		"zip_code":     "94110",
	})
	require.Equal(s.t, http.StatusCreated, code, env.Error)
	return token
}

func listingBody(total int) map[string]interface{} {
	start := time.Now().Add(time.Hour).UTC()
	return map[string]interface{}{
		"title":               "Vegetable soup",
		"description":         "Two pots left over from lunch service",
		"category":            "prepared_food",
		"total_quantity":      total,
		"unit":                "servings",
		"pickup_window_start": start.Format(time.RFC3339),
		"pickup_window_end":   start.Add(2 * time.Hour).Format(time.RFC3339),
		"address":             "500 Valencia St",
		"zip_code":            "94110",
	}
}

type listingJSON struct {
	ID                string `json:"id"`
	Status            string `json:"status"`
	Quantity          string `json:"quantity"`
	TotalQuantity     int    `json:"total_quantity"`
	AvailableQuantity int    `json:"available_quantity"`
	Unit              string `json:"unit"`
	Donor             *struct {
		Name string `json:"name"`
	} `json:"donor"`
}

type claimJSON struct {
	ID              string `json:"id"`
	Status          string `json:"status"`
	QuantityClaimed int    `json:"quantity_claimed"`
}

func decode[T any](t *testing.T, env envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v), string(env.Data))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Server is running")
}

func TestCurrentUser(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/v1/me", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	// an invalid token on an optional route is treated as anonymous
	code, env = s.do(http.MethodGet, "/v1/me", "not-a-jwt", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "null", string(env.Data))

	token := s.createProfile("donor-1", "donor")
	code, env = s.do(http.MethodGet, "/v1/me", token, nil)
	require.Equal(t, http.StatusOK, code)

	profile := decode[map[string]interface{}](t, env)
	assert.Equal(t, "User donor-1", profile["display_name"])
	assert.Equal(t, "donor-1@example.com", profile["email"])
	assert.Equal(t, "donor", profile["role"])
}

func TestProfileRoutes(t *testing.T) {
	s := newTestServer(t, nil)

	t.Run("requires token", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/profile", "", map[string]string{"role": "donor", "zip_code": "94110"})
		assert.Equal(t, http.StatusUnauthorized, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "UNAUTHORIZED", env.Error.Code)
	})

	t.Run("rejects bad token", func(t *testing.T) {
		code, _ := s.do(http.MethodPost, "/v1/profile", "garbage", map[string]string{"role": "donor", "zip_code": "94110"})
		assert.Equal(t, http.StatusUnauthorized, code)
	})

	t.Run("validates role", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/profile", s.token("someone"), map[string]string{
			"display_name": "Someone",
			"role":         "admin",
			"zip_code":     "94110",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
		assert.Equal(t, "role must be one of: donor receiver", env.Error.Message)
	})

	t.Run("requires a name or organization", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/profile", s.token("someone"), map[string]string{
			"role":     "receiver",
			"zip_code": "94110",
		})
		assert.Equal(t, http.StatusBadRequest, code)
		require.NotNil(t, env.Error)
		assert.Equal(t, "display_name is required when organization is empty", env.Error.Message)
	})

	t.Run("create then conflict then patch", func(t *testing.T) {
		token := s.createProfile("receiver-1", "receiver")

		code, env := s.do(http.MethodPost, "/v1/profile", token, map[string]string{
			"display_name": "Again",
			"role":         "receiver",
			"zip_code":     "94110",
		})
		assert.Equal(t, http.StatusConflict, code)
		assert.Equal(t, "CONFLICT", env.Error.Code)

		code, env = s.do(http.MethodPatch, "/v1/profile", token, map[string]string{
			"organization": "Mission Food Pantry",
		})
		require.Equal(t, http.StatusOK, code)
		profile := decode[map[string]interface{}](t, env)
		assert.Equal(t, "Mission Food Pantry", profile["organization"])
		assert.Equal(t, "User receiver-1", profile["display_name"])
	})
}

func TestListingRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	donor := s.createProfile("donor-1", "donor")
	receiver := s.createProfile("receiver-1", "receiver")

	t.Run("receiver cannot list", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/listings", receiver, listingBody(3))
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)
	})

	t.Run("pickup window must be ordered", func(t *testing.T) {
		body := listingBody(3)
		body["pickup_window_end"], body["pickup_window_start"] = body["pickup_window_start"], body["pickup_window_end"]

		code, env := s.do(http.MethodPost, "/v1/listings", donor, body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "pickup_window_end must be after pickup_window_start", env.Error.Message)
	})

	t.Run("address is required", func(t *testing.T) {
		body := listingBody(3)
		delete(body, "address")

		code, env := s.do(http.MethodPost, "/v1/listings", donor, body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "address is required", env.Error.Message)
	})

	t.Run("legacy free-text quantity", func(t *testing.T) {
		body := listingBody(0)
		delete(body, "total_quantity")
		delete(body, "unit")
		body["quantity"] = "10 servings"

		code, env := s.do(http.MethodPost, "/v1/listings", donor, body)
		require.Equal(t, http.StatusCreated, code, env.Error)
		listing := decode[listingJSON](t, env)
		assert.Equal(t, 10, listing.TotalQuantity)
		assert.Equal(t, 10, listing.AvailableQuantity)
		assert.Equal(t, "servings", listing.Unit)
		assert.Equal(t, "10 servings", listing.Quantity)
	})

	t.Run("quantity required", func(t *testing.T) {
		body := listingBody(0)
		delete(body, "total_quantity")

		code, env := s.do(http.MethodPost, "/v1/listings", donor, body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)
	})

	code, env := s.do(http.MethodPost, "/v1/listings", donor, listingBody(4))
	require.Equal(t, http.StatusCreated, code, env.Error)
	created := decode[listingJSON](t, env)
	assert.Equal(t, "active", created.Status)
	assert.Equal(t, "4 servings", created.Quantity)

	t.Run("browse by zip and category", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/v1/listings?zip=94110&category=prepared_food", "", nil)
		require.Equal(t, http.StatusOK, code)
		listings := decode[[]listingJSON](t, env)
		require.Len(t, listings, 2)
		for _, l := range listings {
			require.NotNil(t, l.Donor)
			assert.Equal(t, "User donor-1", l.Donor.Name)
		}

		code, env = s.do(http.MethodGet, "/v1/listings?zip=94110&category=produce", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, decode[[]listingJSON](t, env))

		code, env = s.do(http.MethodGet, "/v1/listings?zip=10001", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, decode[[]listingJSON](t, env))
	})

	t.Run("mine", func(t *testing.T) {
		code, env := s.do(http.MethodGet, "/v1/listings/mine", donor, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Len(t, decode[[]listingJSON](t, env), 2)

		code, env = s.do(http.MethodGet, "/v1/listings/mine", "", nil)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, decode[[]listingJSON](t, env))
	})

	t.Run("update shifts availability", func(t *testing.T) {
		code, env := s.do(http.MethodPut, "/v1/listings/"+created.ID, donor, listingBody(6))
		require.Equal(t, http.StatusOK, code, env.Error)
		updated := decode[listingJSON](t, env)
		assert.Equal(t, 6, updated.TotalQuantity)
		assert.Equal(t, 6, updated.AvailableQuantity)

		code, _ = s.do(http.MethodPut, "/v1/listings/"+created.ID, receiver, listingBody(6))
		assert.Equal(t, http.StatusForbidden, code)
	})

	t.Run("delete", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/listings", donor, listingBody(1))
		require.Equal(t, http.StatusCreated, code)
		doomed := decode[listingJSON](t, env)

		code, env = s.do(http.MethodDelete, "/v1/listings/"+doomed.ID, s.token("no-profile"), nil)
		assert.Equal(t, http.StatusForbidden, code)
		assert.Equal(t, "FORBIDDEN", env.Error.Code)

		code, _ = s.do(http.MethodDelete, "/v1/listings/"+doomed.ID, donor, nil)
		assert.Equal(t, http.StatusOK, code)

		code, env = s.do(http.MethodDelete, "/v1/listings/"+doomed.ID, donor, nil)
		assert.Equal(t, http.StatusNotFound, code)
		assert.Equal(t, "NOT_FOUND", env.Error.Code)
	})
}

func TestClaimLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	donor := s.createProfile("donor-1", "donor")
	receiver := s.createProfile("receiver-1", "receiver")
	other := s.createProfile("receiver-2", "receiver")

	code, env := s.do(http.MethodPost, "/v1/listings", donor, listingBody(3))
	require.Equal(t, http.StatusCreated, code)
	listing := decode[listingJSON](t, env)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/claims", receiver, map[string]interface{}{
		"quantity": 2,
		"message":  "I can pick up at 5",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	claim := decode[claimJSON](t, env)
	assert.Equal(t, "pending", claim.Status)
	assert.Equal(t, 2, claim.QuantityClaimed)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/claims", receiver, map[string]interface{}{"quantity": 1})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "CONFLICT", env.Error.Code)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/claims", other, map[string]interface{}{"quantity": 5})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Only 1 servings available", env.Error.Message)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/claims", other, map[string]interface{}{"quantity": -1})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = s.do(http.MethodGet, "/v1/claims/incoming", donor, nil)
	require.Equal(t, http.StatusOK, code)
	incoming := decode[[]map[string]interface{}](t, env)
	require.Len(t, incoming, 1)
	assert.Equal(t, map[string]interface{}{"name": "User receiver-1"}, incoming[0]["receiver"])

	code, env = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/respond", donor, map[string]string{"decision": "maybe"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "decision must be one of: accepted rejected", env.Error.Message)

	code, _ = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/respond", receiver, map[string]string{"decision": "accepted"})
	assert.Equal(t, http.StatusForbidden, code)

	code, env = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/complete", donor, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "INVALID_STATE", env.Error.Code)

	code, env = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/respond", donor, map[string]string{"decision": "accepted"})
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "accepted", decode[claimJSON](t, env).Status)

	t.Run("messages", func(t *testing.T) {
		code, env := s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/messages", receiver, map[string]string{"content": "On my way"})
		require.Equal(t, http.StatusCreated, code, env.Error)

		code, _ = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/messages", other, map[string]string{"content": "Hello?"})
		assert.Equal(t, http.StatusForbidden, code)

		code, env = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/messages", donor, map[string]string{"content": ""})
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "content is required", env.Error.Message)

		code, env = s.do(http.MethodGet, "/v1/claims/"+claim.ID+"/messages", donor, nil)
		require.Equal(t, http.StatusOK, code)
		messages := decode[[]map[string]interface{}](t, env)
		require.Len(t, messages, 1)
		assert.Equal(t, "On my way", messages[0]["content"])

		code, env = s.do(http.MethodGet, "/v1/claims/"+claim.ID+"/messages", other, nil)
		require.Equal(t, http.StatusOK, code)
		assert.Empty(t, decode[[]map[string]interface{}](t, env))
	})

	code, env = s.do(http.MethodPost, "/v1/claims/"+claim.ID+"/complete", receiver, nil)
	require.Equal(t, http.StatusOK, code, env.Error)
	assert.Equal(t, "completed", decode[claimJSON](t, env).Status)

	code, env = s.do(http.MethodGet, "/v1/listings/mine", donor, nil)
	require.Equal(t, http.StatusOK, code)
	mine := decode[[]listingJSON](t, env)
	require.Len(t, mine, 1)
	assert.Equal(t, "completed", mine[0].Status)

	code, env = s.do(http.MethodGet, "/v1/claims/mine", receiver, nil)
	require.Equal(t, http.StatusOK, code)
	myClaims := decode[[]map[string]interface{}](t, env)
	require.Len(t, myClaims, 1)
	assert.Equal(t, "completed", myClaims[0]["status"])
}

func TestReportRoutes(t *testing.T) {
	s := newTestServer(t, nil)
	donor := s.createProfile("donor-1", "donor")
	receiver := s.createProfile("receiver-1", "receiver")

	code, env := s.do(http.MethodPost, "/v1/listings", donor, listingBody(2))
	require.Equal(t, http.StatusCreated, code)
	listing := decode[listingJSON](t, env)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/reports", receiver, map[string]string{"reason": "rude"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "VALIDATION_ERROR", env.Error.Code)

	code, env = s.do(http.MethodPost, "/v1/listings/missing/reports", receiver, map[string]string{"reason": "spam"})
	assert.Equal(t, http.StatusNotFound, code)

	code, env = s.do(http.MethodPost, "/v1/listings/"+listing.ID+"/reports", receiver, map[string]string{
		"reason":      "expired",
		"description": "Pickup window passed",
	})
	require.Equal(t, http.StatusCreated, code, env.Error)
	report := decode[map[string]interface{}](t, env)
	assert.Equal(t, "pending", report["status"])

	code, env = s.do(http.MethodGet, "/v1/reports", receiver, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]interface{}](t, env), 1)

	code, env = s.do(http.MethodGet, "/v1/reports", "", nil)
	require.Equal(t, http.StatusOK, code)
	assert.Empty(t, decode[[]map[string]interface{}](t, env))
}

func TestUploadListingPhoto(t *testing.T) {
	s := newTestServer(t, nil)
	donor := s.createProfile("donor-1", "donor")
	receiver := s.createProfile("receiver-1", "receiver")

	upload := func(token string) (int, envelope) {
		var body bytes.Buffer
		w := multipart.NewWriter(&body)
		part, err := w.CreateFormFile("photo", "soup.png")
		require.NoError(t, err)
		_, err = part.Write(append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 64)...))
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/v1/uploads/listing-photo", &body)
		req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
		return s.serve(req, token)
	}

	code, env := upload(donor)
	require.Equal(t, http.StatusCreated, code, env.Error)
	result := decode[map[string]string](t, env)
	assert.Contains(t, result["photo_ref"], "https://storage.googleapis.com/foodshare-test/public/listings/")
	assert.Contains(t, s.storage.folder, "listings/")

	code, _ = upload(receiver)
	assert.Equal(t, http.StatusForbidden, code)

	code, _ = upload("")
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestWebSocketRequiresToken(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/v1/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	code, _ = s.do(http.MethodGet, "/v1/ws?token=forged", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestUnknownRoute(t *testing.T) {
	s := newTestServer(t, nil)

	code, env := s.do(http.MethodGet, "/v1/nothing-here", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestIPRateLimit(t *testing.T) {
	s := newTestServer(t, blockAll{})

	req := httptest.NewRequest(http.MethodGet, "/v1/listings", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "42", rec.Header().Get("Retry-After"))

	// health stays outside the throttled group
	code, _ := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
}
