package chroma

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
)

const collectionsPath = "/api/v2/tenants/{tenant}/databases/{database}/collections"

type addRequest struct {
	IDs        []string         `json:"ids"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
	Embeddings [][]float32      `json:"embeddings"`
}

type fakeCollection struct {
	id       string
	name     string
	metadata map[string]any
	adds     []addRequest
	count    int
}

// fakeChroma serves the subset of the Chroma v2 HTTP API the store uses.
type fakeChroma struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection
	byID        map[string]*fakeCollection
	nextID      int
}

func newFakeChroma(t *testing.T) (*fakeChroma, *httptest.Server) {
	t.Helper()
	f := &fakeChroma{
		collections: make(map[string]*fakeCollection),
		byID:        make(map[string]*fakeCollection),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/pre-flight-checks", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"max_batch_size": 1000})
	})
	mux.HandleFunc("POST "+collectionsPath, f.createCollection)
	mux.HandleFunc("GET "+collectionsPath+"/{name}", f.getCollection)
	mux.HandleFunc("DELETE "+collectionsPath+"/{name}", f.deleteCollection)
	mux.HandleFunc("POST "+collectionsPath+"/{id}/add", f.add)
	mux.HandleFunc("GET "+collectionsPath+"/{id}/count", f.countRecords)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeChroma) collection(name string) *fakeCollection {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[name]
}

func (f *fakeChroma) createCollection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string         `json:"name"`
		GetOrCreate bool           `json:"get_or_create"`
		Metadata    map[string]any `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidArgumentError", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[req.Name]
	if ok && !req.GetOrCreate {
		writeError(w, http.StatusConflict, "UniqueConstraintError", fmt.Sprintf("Collection %s already exists", req.Name))
		return
	}
	if !ok {
		f.nextID++
		c = &fakeCollection{
			id:       fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID),
			name:     req.Name,
			metadata: req.Metadata,
		}
		f.collections[c.name] = c
		f.byID[c.id] = c
	}
	writeJSON(w, http.StatusOK, c.model(r))
}

func (f *fakeChroma) getCollection(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFoundError", fmt.Sprintf("Collection %s does not exist.", r.PathValue("name")))
		return
	}
	writeJSON(w, http.StatusOK, c.model(r))
}

func (f *fakeChroma) deleteCollection(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.collections[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFoundError", fmt.Sprintf("Collection %s does not exist.", r.PathValue("name")))
		return
	}
	delete(f.collections, c.name)
	delete(f.byID, c.id)
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (f *fakeChroma) add(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidArgumentError", err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFoundError", "collection does not exist")
		return
	}
	if len(req.Embeddings) != len(req.IDs) {
		writeError(w, http.StatusBadRequest, "InvalidArgumentError", "embeddings required for every id")
		return
	}
	c.adds = append(c.adds, req)
	c.count += len(req.IDs)
	writeJSON(w, http.StatusCreated, true)
}

func (f *fakeChroma) countRecords(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[r.PathValue("id")]
	if !ok {
		writeError(w, http.StatusNotFound, "NotFoundError", "collection does not exist")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(strconv.Itoa(c.count)))
}

func (c *fakeCollection) model(r *http.Request) map[string]any {
	return map[string]any{
		"id":       c.id,
		"name":     c.name,
		"metadata": c.metadata,
		"tenant":   r.PathValue("tenant"),
		"database": r.PathValue("database"),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, kind, msg string) {
	writeJSON(w, status, map[string]string{"error": kind, "message": msg})
}
