package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaglab/apiserver/internal/auth"
)

func TestIssueToken(t *testing.T) {
	tokens := newTokenService()
	handler := NewAuthHandler(tokens)

	fx := newUserFixture()
	fx.router.Post("/jwt", handler.IssueToken)

	rec := doRequest(fx.router, http.MethodPost, "/jwt", "", jsonBody(t, auth.Identity{Email: "a@x.com", Name: "Alice"}))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeBody[TokenResponse](t, rec)
	require.NotEmpty(t, resp.Token)

	identity, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", identity.Email)
}

func TestIssueTokenRequiresEmail(t *testing.T) {
	handler := NewAuthHandler(newTokenService())

	fx := newUserFixture()
	fx.router.Post("/jwt", handler.IssueToken)

	rec := doRequest(fx.router, http.MethodPost, "/jwt", "", jsonBody(t, auth.Identity{Name: "Nameless"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "email is required", decodeBody[ErrorResponse](t, rec).Error)
}

func TestRequireAuthRejectsMissingToken(t *testing.T) {
	fx := newUserFixture()

	rec := doRequest(fx.router, http.MethodGet, "/user/", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "unauthorized", decodeBody[ErrorResponse](t, rec).Error)
}

func TestRequireAuthRejectsGarbageToken(t *testing.T) {
	fx := newUserFixture()

	rec := doRequest(fx.router, http.MethodGet, "/user/", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthRejectsForeignSecret(t *testing.T) {
	fx := newUserFixture()
	foreign := auth.NewTokenService("some-other-secret")
	token := issueToken(t, foreign, "a@x.com")

	rec := doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminForbidsPlainUser(t *testing.T) {
	fx := newUserFixture()
	seedUser(t, fx.repo, "a@x.com", "user")
	token := issueToken(t, fx.tokens, "a@x.com")

	rec := doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "admin access required", decodeBody[ErrorResponse](t, rec).Error)
}

func TestRequireAdminForbidsUnknownUser(t *testing.T) {
	fx := newUserFixture()
	token := issueToken(t, fx.tokens, "ghost@x.com")

	rec := doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

// The token itself carries no role: the same token is refused before
// the role flip and accepted after, because the role is read from
// storage on every gated request.
func TestRequireAdminReflectsRoleChange(t *testing.T) {
	fx := newUserFixture()
	user := seedUser(t, fx.repo, "a@x.com", "user")
	token := issueToken(t, fx.tokens, "a@x.com")

	rec := doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	require.NoError(t, fx.repo.SetRole(t.Context(), user.ID, "admin"))

	rec = doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// Role comparison is exact; "Admin" is not an admin.
func TestRequireAdminIsCaseSensitive(t *testing.T) {
	fx := newUserFixture()
	seedUser(t, fx.repo, "a@x.com", "Admin")
	token := issueToken(t, fx.tokens, "a@x.com")

	rec := doRequest(fx.router, http.MethodGet, "/user/", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
