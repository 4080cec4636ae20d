package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diaglab/apiserver/internal/auth"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/types"
)

type reservationFixture struct {
	router   chi.Router
	repo     *fakeReservationRepo
	users    *fakeUserRepo
	notifier *fakeNotifier
	tokens   *auth.TokenService
}

func newReservationFixture() *reservationFixture {
	repo := newFakeReservationRepo()
	users := newFakeUserRepo()
	notifier := &fakeNotifier{}
	tokens := newTokenService()
	userService := services.NewUserService(users)
	reservationService := services.NewReservationService(repo, notifier)

	router := chi.NewRouter()
	router.Route("/reservation", func(r chi.Router) {
		ReservationRouter(r, reservationService, nil, RequireAuth(tokens), RequireAdmin(userService))
	})
	return &reservationFixture{router: router, repo: repo, users: users, notifier: notifier, tokens: tokens}
}

// The reservation is booked for the token's email even when the body
// claims a different one.
func TestReservationCreateUsesTokenEmail(t *testing.T) {
	fx := newReservationFixture()
	seedUser(t, fx.users, "a@x.com", "user")
	token := issueToken(t, fx.tokens, "a@x.com")

	payload := types.Reservation{Email: "someone-else@x.com", TestName: "CBC", TestID: 1, Fee: 19.99}
	rec := doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, payload))
	require.Equal(t, http.StatusCreated, rec.Code)

	created := decodeBody[types.Reservation](t, rec)
	assert.Equal(t, "a@x.com", created.Email)
	assert.Equal(t, "CBC", created.TestName)
}

func TestReservationCreatePublishesEvent(t *testing.T) {
	fx := newReservationFixture()
	token := issueToken(t, fx.tokens, "a@x.com")

	rec := doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{TestName: "CBC"}))
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Len(t, fx.notifier.published, 1)
	msg := fx.notifier.published[0]
	assert.Equal(t, services.ChannelReservationCreated, msg.Channel)
	assert.Equal(t, "a@x.com", msg.Attrs["email"])

	var event types.Reservation
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "CBC", event.TestName)
}

func TestReservationCreateRequiresAuth(t *testing.T) {
	fx := newReservationFixture()

	rec := doRequest(fx.router, http.MethodPost, "/reservation/", "", jsonBody(t, types.Reservation{TestName: "CBC"}))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, fx.notifier.published)
}

func TestReservationCreateRequiresTestName(t *testing.T) {
	fx := newReservationFixture()
	token := issueToken(t, fx.tokens, "a@x.com")

	rec := doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReservationListByEmail(t *testing.T) {
	fx := newReservationFixture()
	token := issueToken(t, fx.tokens, "a@x.com")

	doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{TestName: "CBC"}))
	doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{TestName: "Lipid"}))

	other := issueToken(t, fx.tokens, "b@x.com")
	doRequest(fx.router, http.MethodPost, "/reservation/", other, jsonBody(t, types.Reservation{TestName: "CBC"}))

	rec := doRequest(fx.router, http.MethodGet, "/reservation/a@x.com", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]types.Reservation](t, rec), 2)
}

func TestReservationListByTestNameRequiresAdmin(t *testing.T) {
	fx := newReservationFixture()
	seedUser(t, fx.users, "admin@x.com", "admin")
	seedUser(t, fx.users, "a@x.com", "user")
	user := issueToken(t, fx.tokens, "a@x.com")
	admin := issueToken(t, fx.tokens, "admin@x.com")

	doRequest(fx.router, http.MethodPost, "/reservation/", user, jsonBody(t, types.Reservation{TestName: "CBC"}))

	rec := doRequest(fx.router, http.MethodGet, "/reservation/forAdmin/CBC", user, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = doRequest(fx.router, http.MethodGet, "/reservation/forAdmin/CBC", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]types.Reservation](t, rec), 1)
}

func TestReservationGetForResult(t *testing.T) {
	fx := newReservationFixture()
	token := issueToken(t, fx.tokens, "a@x.com")

	created := decodeBody[types.Reservation](t, doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{TestName: "CBC"})))

	rec := doRequest(fx.router, http.MethodGet, fmt.Sprintf("/reservation/forResult/%d", created.ID), "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decodeBody[types.Reservation](t, rec).ID)

	rec = doRequest(fx.router, http.MethodGet, "/reservation/forResult/999", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReservationDelete(t *testing.T) {
	fx := newReservationFixture()
	token := issueToken(t, fx.tokens, "a@x.com")

	created := decodeBody[types.Reservation](t, doRequest(fx.router, http.MethodPost, "/reservation/", token, jsonBody(t, types.Reservation{TestName: "CBC"})))
	target := fmt.Sprintf("/reservation/%d", created.ID)

	rec := doRequest(fx.router, http.MethodDelete, target, token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(fx.router, http.MethodDelete, target, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
