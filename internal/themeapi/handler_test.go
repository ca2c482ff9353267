// internal/themeapi/handler_test.go
//
// HTTP-level tests: tenant scoping, the error taxonomy on the wire, and
// the always-200 /effective read.  fakeStore is a minimal in-memory
// theme.Store so the mutator's sequences run for real.

package themeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanizio/atrium/internal/business"
	"github.com/yanizio/atrium/internal/tenant"
	"github.com/yanizio/atrium/internal/theme"
)

//
// fakeStore
//

type fakeStore struct {
	rows   map[uint64]*theme.Row
	nextID uint64
}

func newFakeStore() *fakeStore {
	return &fakeStore{rows: make(map[uint64]*theme.Row), nextID: 1}
}

func (f *fakeStore) ByID(_ context.Context, id uint64) (*theme.Row, error) {
	if r, ok := f.rows[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, theme.ErrNotFound
}

func (f *fakeStore) ByBusiness(_ context.Context, businessID uint64) ([]theme.Row, error) {
	var out []theme.Row
	for _, r := range f.rows {
		if r.BusinessID == businessID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeStore) Active(_ context.Context, businessID uint64) (*theme.Row, error) {
	for _, r := range f.rows {
		if r.BusinessID == businessID && r.IsActive {
			cp := *r
			return &cp, nil
		}
	}
	return nil, theme.ErrNotFound
}

func (f *fakeStore) Default(_ context.Context, businessID uint64) (*theme.Row, error) {
	for _, r := range f.rows {
		if r.BusinessID == businessID && r.IsDefault {
			cp := *r
			return &cp, nil
		}
	}
	return nil, theme.ErrNotFound
}

func (f *fakeStore) Insert(_ context.Context, row *theme.Row) (*theme.Row, error) {
	cp := *row
	cp.ID = f.nextID
	f.nextID++
	f.rows[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (f *fakeStore) Update(_ context.Context, id uint64, patch theme.Patch) (*theme.Row, error) {
	r, ok := f.rows[id]
	if !ok {
		return nil, theme.ErrNotFound
	}
	if patch.Name != nil {
		r.Name = *patch.Name
	}
	if patch.IsActive != nil {
		r.IsActive = *patch.IsActive
	}
	if patch.IsDefault != nil {
		r.IsDefault = *patch.IsDefault
	}
	cp := *r
	return &cp, nil
}

func (f *fakeStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rows[id]; !ok {
		return theme.ErrNotFound
	}
	delete(f.rows, id)
	return nil
}

func (f *fakeStore) ClearActive(_ context.Context, businessID uint64) error {
	for _, r := range f.rows {
		if r.BusinessID == businessID {
			r.IsActive = false
		}
	}
	return nil
}

func (f *fakeStore) ClearDefault(_ context.Context, businessID uint64) error {
	for _, r := range f.rows {
		if r.BusinessID == businessID {
			r.IsDefault = false
		}
	}
	return nil
}

type noLegacy struct{}

func (noLegacy) LegacySettings(context.Context, uint64) (*theme.Legacy, error) {
	return nil, theme.ErrNotFound
}

//
// Helpers
//

func newTestHandler(store *fakeStore) http.Handler {
	return New(store, theme.NewMutator(store), theme.NewResolver(store, noLegacy{})).Routes()
}

func withBusiness(req *http.Request, id uint64) *http.Request {
	return req.WithContext(tenant.WithBusiness(req.Context(), &business.Record{ID: id}))
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

//
// Tests
//

func TestCreateAndList(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store)

	body := `{"name":"Summer","makeActive":true,"tokens":{"colors":{"primary":"#101010"}}}`
	rr := do(h, withBusiness(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body)), 1))
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body)
	}

	rr = do(h, withBusiness(httptest.NewRequest(http.MethodGet, "/", nil), 1))
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var out []themeResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || !out[0].IsActive || out[0].Tokens.Colors.Primary != "#101010" {
		t.Fatalf("list = %+v", out)
	}
}

func TestCreateWithoutTenantIs404(t *testing.T) {
	h := newTestHandler(newFakeStore())

	rr := do(h, httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`)))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
}

func TestCreateValidation(t *testing.T) {
	h := newTestHandler(newFakeStore())

	rr := do(h, withBusiness(httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`)), 1))
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 for missing name", rr.Code)
	}
}

func TestEffectiveWithoutTenantServesFallback(t *testing.T) {
	h := newTestHandler(newFakeStore())

	rr := do(h, httptest.NewRequest(http.MethodGet, "/effective", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	var got theme.Canonical
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got != theme.Fallback() {
		t.Fatalf("effective = %+v, want global fallback", got)
	}
}

func TestDeleteDefaultThemeIs409(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store)

	row, err := theme.NewMutator(store).Create(context.Background(), 1, "D",
		theme.Canonical{}, false, true)
	if err != nil {
		t.Fatal(err)
	}

	rr := do(h, withBusiness(httptest.NewRequest(http.MethodDelete, "/1", nil), 1))
	if rr.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rr.Code)
	}
	var payload map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload["code"] != "invalid_operation" {
		t.Fatalf("code = %q, want invalid_operation", payload["code"])
	}
	if _, err := store.ByID(context.Background(), row.ID); err != nil {
		t.Fatal("default theme was deleted despite rejection")
	}
}

func TestForeignThemeIs404(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store)

	if _, err := theme.NewMutator(store).Create(context.Background(), 2, "theirs",
		theme.Canonical{}, false, false); err != nil {
		t.Fatal(err)
	}

	rr := do(h, withBusiness(httptest.NewRequest(http.MethodPost, "/1/activate", nil), 1))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 for another business's theme", rr.Code)
	}
}

func TestActivateEndpoint(t *testing.T) {
	store := newFakeStore()
	h := newTestHandler(store)
	mut := theme.NewMutator(store)
	ctx := context.Background()

	a, _ := mut.Create(ctx, 1, "A", theme.Canonical{}, true, false)
	b, _ := mut.Create(ctx, 1, "B", theme.Canonical{}, false, false)

	rr := do(h, withBusiness(httptest.NewRequest(http.MethodPost, "/2/activate", nil), 1))
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rr.Code, rr.Body)
	}

	if got, _ := store.ByID(ctx, a.ID); got.IsActive {
		t.Error("previous active theme still flagged")
	}
	if got, _ := store.ByID(ctx, b.ID); !got.IsActive {
		t.Error("target not active")
	}
}
