package httpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/csentein/P6-Sentein-Clement/internal/adapter/metrics"
	"github.com/csentein/P6-Sentein-Clement/internal/app"
	"github.com/csentein/P6-Sentein-Clement/internal/auth"
	"github.com/csentein/P6-Sentein-Clement/internal/domain"
	"github.com/csentein/P6-Sentein-Clement/internal/platform/config"
	"github.com/csentein/P6-Sentein-Clement/internal/rating"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type mockAppService struct {
	listItemsFn  func(ctx context.Context) ([]*domain.Item, error)
	getItemFn    func(ctx context.Context, itemID uuid.UUID) (*domain.Item, error)
	createItemFn func(ctx context.Context, ownerID string, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error)
	updateItemFn func(ctx context.Context, callerID string, itemID uuid.UUID, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error)
	deleteItemFn func(ctx context.Context, callerID string, itemID uuid.UUID) error
	voteFn       func(ctx context.Context, itemID uuid.UUID, userID string, intent domain.VoteIntent) (*rating.Result, error)
	signupFn     func(ctx context.Context, email, password string) (*domain.Account, error)
	loginFn      func(ctx context.Context, clientKey, email, password string) (*app.LoginResult, error)
}

var errNotImplemented = errors.New("not implemented")

func (m *mockAppService) ListItems(ctx context.Context) ([]*domain.Item, error) {
	if m.listItemsFn != nil {
		return m.listItemsFn(ctx)
	}
	return nil, nil
}

func (m *mockAppService) GetItem(ctx context.Context, itemID uuid.UUID) (*domain.Item, error) {
	if m.getItemFn != nil {
		return m.getItemFn(ctx, itemID)
	}
	return nil, domain.ErrItemNotFound
}

func (m *mockAppService) CreateItem(ctx context.Context, ownerID string, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error) {
	if m.createItemFn != nil {
		return m.createItemFn(ctx, ownerID, details, image, imageBaseURL)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) UpdateItem(ctx context.Context, callerID string, itemID uuid.UUID, details domain.ItemDetails, image *domain.Upload, imageBaseURL string) (*domain.Item, error) {
	if m.updateItemFn != nil {
		return m.updateItemFn(ctx, callerID, itemID, details, image, imageBaseURL)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) DeleteItem(ctx context.Context, callerID string, itemID uuid.UUID) error {
	if m.deleteItemFn != nil {
		return m.deleteItemFn(ctx, callerID, itemID)
	}
	return errNotImplemented
}

func (m *mockAppService) Vote(ctx context.Context, itemID uuid.UUID, userID string, intent domain.VoteIntent) (*rating.Result, error) {
	if m.voteFn != nil {
		return m.voteFn(ctx, itemID, userID, intent)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Signup(ctx context.Context, email, password string) (*domain.Account, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, email, password)
	}
	return nil, errNotImplemented
}

func (m *mockAppService) Login(ctx context.Context, clientKey, email, password string) (*app.LoginResult, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, clientKey, email, password)
	}
	return nil, errNotImplemented
}

// stubVerifier accepts exactly the tokens it knows.
type stubVerifier map[string]string

func (v stubVerifier) Verify(token string) (string, error) {
	if subject, ok := v[token]; ok {
		return subject, nil
	}
	return "", auth.ErrInvalidCredential
}

// --- Test helpers ---

const (
	testUser      = "user-1"
	testToken     = "token-user-1"
	otherUser     = "user-2"
	otherToken    = "token-user-2"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:             "development",
		Port:               "0",
		ImageDir:           t.TempDir(),
		MaxUploadBytes:     1 << 20,
		CORSAllowOrigin:    "*",
		LoginRatePerSecond: 100,
		LoginRateBurst:     100,
	}
}

func newTestServer(t *testing.T, svc appService, opts ...func(*config.Config)) *Server {
	t.Helper()

	cfg := testConfig(t)
	for _, opt := range opts {
		opt(cfg)
	}

	reg := prometheus.NewRegistry()
	guard := auth.NewGuard(stubVerifier{testToken: testUser, otherToken: otherUser})
	return NewServer(cfg, svc, guard, reg, metrics.NewAuthMetrics(reg), nil)
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func authed(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

// multipartRequest builds an item form. An empty imageName omits the file.
func multipartRequest(t *testing.T, method, target string, item any, imageName, imageType string) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	raw, err := json.Marshal(item)
	require.NoError(t, err)
	require.NoError(t, w.WriteField("item", string(raw)))

	if imageName != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="image"; filename="`+imageName+`"`)
		h.Set("Content-Type", imageType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write([]byte("fake-image"))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func readAll(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}
