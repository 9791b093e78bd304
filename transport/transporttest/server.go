package transporttest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"

	ustrings "github.com/restbound/restbound/internal/util/strings"
)

// NewServer serves a Stub's seeded data over the routes the REST transport
// expects: GET /{plural_snake_resource}/{id} and
// GET /{plural_snake_resource}/{id}/{field}. Unseeded data answers 404.
// The caller owns the returned server and must Close it.
func NewServer(stub *Stub) *httptest.Server {
	r := chi.NewRouter()

	r.Get("/{resource}/{id}", func(w http.ResponseWriter, req *http.Request) {
		resource, ok := stub.resourceByRoute(chi.URLParam(req, "resource"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "unknown resource")
			return
		}
		record, ok := stub.lookupResource(resource, chi.URLParam(req, "id"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, record)
	})

	r.Get("/{resource}/{id}/{field}", func(w http.ResponseWriter, req *http.Request) {
		resource, ok := stub.resourceByRoute(chi.URLParam(req, "resource"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "unknown resource")
			return
		}
		records, ok := stub.lookupCollection(resource, chi.URLParam(req, "id"), chi.URLParam(req, "field"))
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		writeJSON(w, http.StatusOK, records)
	})

	return httptest.NewServer(r)
}

// resourceByRoute reverses the plural snake_case route segment back to the
// seeded resource name
func (s *Stub) resourceByRoute(route string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for name := range s.resources {
		if ustrings.Pluralize(ustrings.ToSnakeCase(name)) == route {
			return name, true
		}
	}
	for key := range s.collections {
		name := strings.SplitN(key, "/", 2)[0]
		if ustrings.Pluralize(ustrings.ToSnakeCase(name)) == route {
			return name, true
		}
	}
	return "", false
}

func (s *Stub) lookupResource(resource, id string) (map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.resources[resource][id]
	return record, ok
}

func (s *Stub) lookupCollection(ownerResource, ownerID, field string) ([]map[string]any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, ok := s.collections[collectionKey(ownerResource, ownerID, field)]
	return records, ok
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
