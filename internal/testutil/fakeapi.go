// Package testutil provides an in-memory REST backend for tests.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/erp/adminpanel/internal/infrastructure/api"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// FakeAPI serves /users and /products from memory and counts every request
// by method and concrete path, e.g. "GET /users/3".
type FakeAPI struct {
	Server *httptest.Server

	mu       sync.Mutex
	data     map[string]map[int64]map[string]any
	nextID   map[string]int64
	calls    map[string]int
	failures map[string]int
	gates    map[string]chan struct{}
}

// NewFakeAPI starts a fake backend that is shut down when t ends
func NewFakeAPI(t testing.TB) *FakeAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &FakeAPI{
		data:     map[string]map[int64]map[string]any{"users": {}, "products": {}},
		nextID:   map[string]int64{"users": 1, "products": 1},
		calls:    map[string]int{},
		failures: map[string]int{},
		gates:    map[string]chan struct{}{},
	}

	r := gin.New()
	r.Use(f.count)
	for _, collection := range []string{"users", "products"} {
		g := r.Group("/" + collection)
		g.GET("", f.list(collection))
		g.POST("", f.create(collection))
		g.GET("/:id", f.get(collection))
		g.PUT("/:id", f.update(collection))
		g.DELETE("/:id", f.remove(collection))
	}

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Close)
	return f
}

// URL returns the base URL of the fake backend
func (f *FakeAPI) URL() string {
	return f.Server.URL
}

// Client returns an api.Client pointed at the fake backend
func (f *FakeAPI) Client(t testing.TB, opts ...api.Option) *api.Client {
	t.Helper()
	c, err := api.NewClient(f.URL(), opts...)
	require.NoError(t, err)
	return c
}

// Close releases any blocked requests and stops the server
func (f *FakeAPI) Close() {
	f.mu.Lock()
	for key, gate := range f.gates {
		close(gate)
		delete(f.gates, key)
	}
	f.mu.Unlock()
	f.Server.Close()
}

// Seed stores records in collection ("users" or "products"). Records are
// marshaled to JSON and must carry an "id".
func (f *FakeAPI) Seed(t testing.TB, collection string, records ...any) {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, rec := range records {
		data, err := json.Marshal(rec)
		require.NoError(t, err)
		var m map[string]any
		require.NoError(t, json.Unmarshal(data, &m))
		idf, ok := m["id"].(float64)
		require.True(t, ok, "seeded record has no numeric id")
		id := int64(idf)
		m["id"] = id
		f.data[collection][id] = m
		if id >= f.nextID[collection] {
			f.nextID[collection] = id + 1
		}
	}
}

// Calls returns how many requests hit method and path
func (f *FakeAPI) Calls(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[method+" "+path]
}

// TotalCalls returns the number of requests served so far
func (f *FakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes every request counter
func (f *FakeAPI) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = map[string]int{}
}

// FailNext makes the next request to method and path answer status
func (f *FakeAPI) FailNext(method, path string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[method+" "+path] = status
}

// Block holds requests to method and path until the returned function is called
func (f *FakeAPI) Block(method, path string) (release func()) {
	gate := make(chan struct{})
	key := method + " " + path
	f.mu.Lock()
	f.gates[key] = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			if f.gates[key] == gate {
				delete(f.gates, key)
				close(gate)
			}
			f.mu.Unlock()
		})
	}
}

func (f *FakeAPI) count(c *gin.Context) {
	key := c.Request.Method + " " + c.Request.URL.Path

	f.mu.Lock()
	f.calls[key]++
	status, fail := f.failures[key]
	delete(f.failures, key)
	gate := f.gates[key]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-c.Request.Context().Done():
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
	}
	if fail {
		c.AbortWithStatusJSON(status, gin.H{"error": http.StatusText(status)})
		return
	}
	c.Next()
}

func (f *FakeAPI) list(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		f.mu.Lock()
		defer f.mu.Unlock()

		ids := make([]int64, 0, len(f.data[collection]))
		for id := range f.data[collection] {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		out := make([]map[string]any, 0, len(ids))
		for _, id := range ids {
			out = append(out, f.data[collection][id])
		}
		c.JSON(http.StatusOK, out)
	}
}

func (f *FakeAPI) get(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		rec, found := f.data[collection][id]
		if !found {
			c.JSON(http.StatusNotFound, gin.H{})
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

func (f *FakeAPI) create(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		id := f.nextID[collection]
		f.nextID[collection]++
		body["id"] = id
		f.data[collection][id] = body
		c.JSON(http.StatusCreated, body)
	}
}

func (f *FakeAPI) update(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var body map[string]any
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		if _, found := f.data[collection][id]; !found {
			c.JSON(http.StatusNotFound, gin.H{})
			return
		}
		body["id"] = id
		f.data[collection][id] = body
		c.JSON(http.StatusOK, body)
	}
}

func (f *FakeAPI) remove(collection string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		if _, found := f.data[collection][id]; !found {
			c.JSON(http.StatusNotFound, gin.H{})
			return
		}
		delete(f.data[collection], id)
		c.JSON(http.StatusOK, gin.H{})
	}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{})
		return 0, false
	}
	return id, true
}
