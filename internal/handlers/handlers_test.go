package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"sort"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/diaglab/apiserver/internal/auth"
	"github.com/diaglab/apiserver/internal/services"
	"github.com/diaglab/apiserver/internal/store"
	"github.com/diaglab/apiserver/types"
)

// Shared in-memory fakes for the repository interfaces. IDs are
// assigned sequentially starting at 1.

type fakeUserRepo struct {
	nextID int
	users  map[int]types.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: map[int]types.User{}}
}

func (f *fakeUserRepo) List(ctx context.Context) ([]types.User, error) {
	out := make([]types.User, 0, len(f.users))
	for _, u := range f.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	u, ok := f.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (types.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	if existing, err := f.GetByEmail(ctx, user.Email); err == nil {
		return existing, nil
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id int, user types.User) error {
	existing, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	existing.Name = user.Name
	existing.BloodGroup = user.BloodGroup
	existing.District = user.District
	existing.Upazila = user.Upazila
	existing.Photo = user.Photo
	f.users[id] = existing
	return nil
}

func (f *fakeUserRepo) SetRole(ctx context.Context, id int, role string) error {
	existing, ok := f.users[id]
	if !ok {
		return store.ErrNotFound
	}
	existing.Role = role
	f.users[id] = existing
	return nil
}

type fakeBannerRepo struct {
	nextID  int
	banners map[int]types.Banner
}

func newFakeBannerRepo() *fakeBannerRepo {
	return &fakeBannerRepo{nextID: 1, banners: map[int]types.Banner{}}
}

func (f *fakeBannerRepo) List(ctx context.Context) ([]types.Banner, error) {
	out := make([]types.Banner, 0, len(f.banners))
	for _, b := range f.banners {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeBannerRepo) GetActive(ctx context.Context) (types.Banner, error) {
	for _, b := range f.banners {
		if b.IsActive {
			return b, nil
		}
	}
	return types.Banner{}, store.ErrNotFound
}

func (f *fakeBannerRepo) Create(ctx context.Context, banner types.Banner) (types.Banner, error) {
	banner.ID = f.nextID
	f.nextID++
	f.banners[banner.ID] = banner
	return banner, nil
}

func (f *fakeBannerRepo) Activate(ctx context.Context, id int) error {
	if _, ok := f.banners[id]; !ok {
		return store.ErrNotFound
	}
	for bid, b := range f.banners {
		b.IsActive = bid == id
		f.banners[bid] = b
	}
	return nil
}

func (f *fakeBannerRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.banners[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.banners, id)
	return nil
}

type fakeLabTestRepo struct {
	nextID int
	tests  map[int]types.LabTest
}

func newFakeLabTestRepo() *fakeLabTestRepo {
	return &fakeLabTestRepo{nextID: 1, tests: map[int]types.LabTest{}}
}

func (f *fakeLabTestRepo) List(ctx context.Context) ([]types.LabTest, error) {
	out := make([]types.LabTest, 0, len(f.tests))
	for _, t := range f.tests {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeLabTestRepo) Get(ctx context.Context, id int) (types.LabTest, error) {
	t, ok := f.tests[id]
	if !ok {
		return types.LabTest{}, store.ErrNotFound
	}
	return t, nil
}

func (f *fakeLabTestRepo) Create(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	test.ID = f.nextID
	f.nextID++
	f.tests[test.ID] = test
	return test, nil
}

func (f *fakeLabTestRepo) Update(ctx context.Context, test types.LabTest) (types.LabTest, error) {
	if _, ok := f.tests[test.ID]; !ok {
		return types.LabTest{}, store.ErrNotFound
	}
	f.tests[test.ID] = test
	return test, nil
}

func (f *fakeLabTestRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.tests[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.tests, id)
	return nil
}

func (f *fakeLabTestRepo) BookSlot(ctx context.Context, id int) error {
	t, ok := f.tests[id]
	if !ok {
		return store.ErrNotFound
	}
	if t.Slots <= 0 {
		return store.ErrNoSlots
	}
	t.Slots--
	f.tests[id] = t
	return nil
}

type fakeReservationRepo struct {
	nextID       int
	reservations map[int]types.Reservation
}

func newFakeReservationRepo() *fakeReservationRepo {
	return &fakeReservationRepo{nextID: 1, reservations: map[int]types.Reservation{}}
}

func (f *fakeReservationRepo) List(ctx context.Context) ([]types.Reservation, error) {
	out := make([]types.Reservation, 0, len(f.reservations))
	for _, r := range f.reservations {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReservationRepo) ListByEmail(ctx context.Context, email string) ([]types.Reservation, error) {
	var out []types.Reservation
	for _, r := range f.reservations {
		if r.Email == email {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReservationRepo) ListByTestName(ctx context.Context, testName string) ([]types.Reservation, error) {
	var out []types.Reservation
	for _, r := range f.reservations {
		if r.TestName == testName {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeReservationRepo) Get(ctx context.Context, id int) (types.Reservation, error) {
	r, ok := f.reservations[id]
	if !ok {
		return types.Reservation{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeReservationRepo) Create(ctx context.Context, reservation types.Reservation) (types.Reservation, error) {
	reservation.ID = f.nextID
	f.nextID++
	f.reservations[reservation.ID] = reservation
	return reservation, nil
}

func (f *fakeReservationRepo) Delete(ctx context.Context, id int) error {
	if _, ok := f.reservations[id]; !ok {
		return store.ErrNotFound
	}
	delete(f.reservations, id)
	return nil
}

type fakeResultRepo struct {
	nextID  int
	results map[int]types.Result
}

func newFakeResultRepo() *fakeResultRepo {
	return &fakeResultRepo{nextID: 1, results: map[int]types.Result{}}
}

func (f *fakeResultRepo) List(ctx context.Context) ([]types.Result, error) {
	out := make([]types.Result, 0, len(f.results))
	for _, r := range f.results {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeResultRepo) ListByEmail(ctx context.Context, email string) ([]types.Result, error) {
	var out []types.Result
	for _, r := range f.results {
		if r.Email == email {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeResultRepo) Get(ctx context.Context, id int) (types.Result, error) {
	r, ok := f.results[id]
	if !ok {
		return types.Result{}, store.ErrNotFound
	}
	return r, nil
}

func (f *fakeResultRepo) Create(ctx context.Context, result types.Result) (types.Result, error) {
	result.ID = f.nextID
	f.nextID++
	f.results[result.ID] = result
	return result, nil
}

func (f *fakeResultRepo) SetReportKey(ctx context.Context, id int, key string) error {
	r, ok := f.results[id]
	if !ok {
		return store.ErrNotFound
	}
	r.ReportKey = key
	f.results[id] = r
	return nil
}

type fakePaymentRepo struct {
	nextID   int
	payments map[int]types.Payment
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{nextID: 1, payments: map[int]types.Payment{}}
}

func (f *fakePaymentRepo) ListByEmail(ctx context.Context, email string) ([]types.Payment, error) {
	var out []types.Payment
	for _, p := range f.payments {
		if p.Email == email {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePaymentRepo) Create(ctx context.Context, payment types.Payment) (types.Payment, error) {
	payment.ID = f.nextID
	f.nextID++
	f.payments[payment.ID] = payment
	return payment, nil
}

// fakeNotifier records published messages.
type fakeNotifier struct {
	published []publishedMessage
}

type publishedMessage struct {
	Channel string
	Data    []byte
	Attrs   map[string]string
}

func (f *fakeNotifier) Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error) {
	f.published = append(f.published, publishedMessage{Channel: channel, Data: data, Attrs: attrs})
	return "msg-1", nil
}

// Test helpers.

const testSecret = "handler-test-secret"

func newTokenService() *auth.TokenService {
	return auth.NewTokenService(testSecret)
}

func issueToken(t *testing.T, tokens *auth.TokenService, email string) string {
	t.Helper()
	token, err := tokens.Issue(auth.Identity{Email: email})
	require.NoError(t, err)
	return token
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, role string) types.User {
	t.Helper()
	user, err := repo.Create(context.Background(), types.User{Email: email, Role: role})
	require.NoError(t, err)
	return user
}

func jsonBody(t *testing.T, value any) io.Reader {
	t.Helper()
	data, err := json.Marshal(value)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func doRequest(router chi.Router, method, target, token string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

// userFixture wires a user router backed by fakes with real auth
// middleware on top.
type userFixture struct {
	router chi.Router
	repo   *fakeUserRepo
	tokens *auth.TokenService
}

func newUserFixture() *userFixture {
	repo := newFakeUserRepo()
	tokens := newTokenService()
	userService := services.NewUserService(repo)

	router := chi.NewRouter()
	router.Route("/user", func(r chi.Router) {
		UserRouter(r, userService, RequireAuth(tokens), RequireAdmin(userService))
	})
	return &userFixture{router: router, repo: repo, tokens: tokens}
}
