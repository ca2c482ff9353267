// internal/tenant/middleware_test.go

package tenant

import (
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/yanizio/atrium/internal/business"
)

func TestPathSegments(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/", nil},
		{"", nil},
		{"/acme", []string{"acme"}},
		{"/acme/book", []string{"acme", "book"}},
		{"/acme/book/", []string{"acme", "book"}},
	}
	for _, tc := range cases {
		if got := PathSegments(tc.path); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("PathSegments(%q) = %v, want %v", tc.path, got, tc.want)
		}
	}
}

func TestMiddlewareAttachesBusiness(t *testing.T) {
	dir := &stubDirectory{slugs: map[string]*business.Record{"acme": bizRec(9, "acme")}}
	c := NewCache(5*time.Minute, time.Hour)
	defer c.Close()
	r := NewResolver(c, dir, nil, "platform.example")

	var got *business.Record
	next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		got, _ = FromContext(req.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/acme/book", nil)
	rr := httptest.NewRecorder()
	Middleware(r)(next).ServeHTTP(rr, req)

	if got == nil || got.ID != 9 {
		t.Fatalf("context business = %+v, want business 9", got)
	}
}

func TestMiddlewareContinuesWithoutTenant(t *testing.T) {
	dir := &stubDirectory{}
	c := NewCache(5*time.Minute, time.Hour)
	defer c.Close()
	r := NewResolver(c, dir, nil, "platform.example")

	next := http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if _, ok := FromContext(req.Context()); ok {
			t.Fatal("unexpected business in context")
		}
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/unknown", nil)
	rr := httptest.NewRecorder()
	Middleware(r)(next).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (no-tenant request must not abort)", rr.Code)
	}
}
