package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaglab/apiserver/internal/auth"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/storage"
	"github.com/diaglab/apiserver/types"
)

// memObjectStorage is an in-memory storage.ObjectStorage.
type memObjectStorage struct {
	objects map[string][]byte
}

func newMemObjectStorage() *memObjectStorage {
	return &memObjectStorage{objects: map[string][]byte{}}
}

func (m *memObjectStorage) EnsureBucket(ctx context.Context) error { return nil }

func (m *memObjectStorage) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memObjectStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s not found", key)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memObjectStorage) Delete(ctx context.Context, key string) error {
	delete(m.objects, key)
	return nil
}

func (m *memObjectStorage) Bucket() string { return "test-bucket" }

type resultFixture struct {
	router   chi.Router
	repo     *fakeResultRepo
	users    *fakeUserRepo
	objects  *memObjectStorage
	notifier *fakeNotifier
	tokens   *auth.TokenService
}

func newResultFixture() *resultFixture {
	repo := newFakeResultRepo()
	users := newFakeUserRepo()
	objects := newMemObjectStorage()
	notifier := &fakeNotifier{}
	tokens := newTokenService()
	userService := services.NewUserService(users)
	resultService := services.NewResultService(repo, storage.NewStorage(objects), notifier)

	router := chi.NewRouter()
	router.Route("/result", func(r chi.Router) {
		ResultRouter(r, resultService, RequireAuth(tokens), RequireAdmin(userService))
	})
	return &resultFixture{router: router, repo: repo, users: users, objects: objects, notifier: notifier, tokens: tokens}
}

func (fx *resultFixture) adminToken(t *testing.T) string {
	t.Helper()
	seedUser(t, fx.users, "admin@x.com", "admin")
	return issueToken(t, fx.tokens, "admin@x.com")
}

func multipartReport(t *testing.T, filename string, content []byte) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(formFieldReport, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestResultCreatePublishesEvent(t *testing.T) {
	fx := newResultFixture()

	payload := types.Result{Email: "a@x.com", TestName: "CBC", Summary: "all clear"}
	rec := doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, payload))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, fx.notifier.published, 1)
	assert.Equal(t, services.ChannelResultReady, fx.notifier.published[0].Channel)
	assert.Equal(t, "a@x.com", fx.notifier.published[0].Attrs["email"])
}

func TestResultCreateRequiresEmail(t *testing.T) {
	fx := newResultFixture()

	rec := doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{TestName: "CBC"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResultListByEmail(t *testing.T) {
	fx := newResultFixture()
	doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{Email: "a@x.com", TestName: "CBC"}))
	doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{Email: "b@x.com", TestName: "CBC"}))

	rec := doRequest(fx.router, http.MethodGet, "/result/a@x.com", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]types.Result](t, rec), 1)
}

func TestReportUploadAndDownload(t *testing.T) {
	fx := newResultFixture()
	admin := fx.adminToken(t)

	created := decodeBody[types.Result](t, doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{Email: "a@x.com", TestName: "CBC"})))

	content := []byte("%PDF-1.7 report body")
	body, contentType := multipartReport(t, "report.pdf", content)

	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/result/%d/report", created.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+admin)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	updated := decodeBody[types.Result](t, rec)
	require.NotEmpty(t, updated.ReportKey)
	assert.True(t, strings.HasPrefix(updated.ReportKey, "reports/"))
	assert.True(t, strings.HasSuffix(updated.ReportKey, ".pdf"))

	download := doRequest(fx.router, http.MethodGet, fmt.Sprintf("/result/%d/report", created.ID), "", nil)
	require.Equal(t, http.StatusOK, download.Code)
	assert.Equal(t, content, download.Body.Bytes())
}

func TestReportUploadRequiresAdmin(t *testing.T) {
	fx := newResultFixture()
	seedUser(t, fx.users, "a@x.com", "user")
	user := issueToken(t, fx.tokens, "a@x.com")

	created := decodeBody[types.Result](t, doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{Email: "a@x.com"})))

	body, contentType := multipartReport(t, "report.pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/result/%d/report", created.ID), body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+user)
	rec := httptest.NewRecorder()
	fx.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestReportDownloadWithoutUpload(t *testing.T) {
	fx := newResultFixture()

	created := decodeBody[types.Result](t, doRequest(fx.router, http.MethodPost, "/result/", "", jsonBody(t, types.Result{Email: "a@x.com"})))

	rec := doRequest(fx.router, http.MethodGet, fmt.Sprintf("/result/%d/report", created.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportDownloadUnknownResult(t *testing.T) {
	fx := newResultFixture()

	rec := doRequest(fx.router, http.MethodGet, "/result/99/report", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
