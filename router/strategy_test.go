package router

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var strategyRoutes = []Route{
	{Method: http.MethodGet, Path: "/pets", OperationID: "listPets"},
	{Method: http.MethodPost, Path: "/pets", OperationID: "createPet"},
	{Method: http.MethodGet, Path: "/pets/{petId}", OperationID: "getPet"},
	{Method: http.MethodDelete, Path: "/pets/{petId}", OperationID: "deletePet"},
}

// echoDispatch writes the routed operation and its path parameter.
var echoDispatch = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	m, ok := routeFrom(r.Context())
	if !ok {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("X-Template", MatchedPath(r))
	_, _ = w.Write([]byte(m.route.OperationID + ":" + PathParam(r, "petId")))
})

func TestStrategies(t *testing.T) {
	strategies := map[string]Strategy{
		"stdlib": StdlibRouter{},
		"chi":    ChiRouter{},
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			h, err := s.Build(strategyRoutes, echoDispatch, http.NotFoundHandler())
			require.NoError(t, err)

			tests := []struct {
				method   string
				path     string
				body     string
				template string
			}{
				{http.MethodGet, "/pets", "listPets:", "/pets"},
				{http.MethodPost, "/pets", "createPet:", "/pets"},
				{http.MethodGet, "/pets/12", "getPet:12", "/pets/{petId}"},
				{http.MethodDelete, "/pets/12", "deletePet:12", "/pets/{petId}"},
			}
			for _, tt := range tests {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
				assert.Equal(t, http.StatusOK, rec.Code, "%s %s", tt.method, tt.path)
				assert.Equal(t, tt.body, rec.Body.String())
				assert.Equal(t, tt.template, rec.Header().Get("X-Template"))
			}
		})

		t.Run(name+" not found", func(t *testing.T) {
			h, err := s.Build(strategyRoutes, echoDispatch, http.NotFoundHandler())
			require.NoError(t, err)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/owners", nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
		})

		t.Run(name+" method not allowed", func(t *testing.T) {
			h, err := s.Build(strategyRoutes, echoDispatch, http.NotFoundHandler())
			require.NoError(t, err)
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/pets/3", nil))
			assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
			assert.Equal(t, "DELETE, GET", rec.Header().Get("Allow"))
		})
	}
}

func TestStrategies_EscapedParams(t *testing.T) {
	strategies := map[string]Strategy{
		"stdlib": StdlibRouter{},
		"chi":    ChiRouter{},
	}
	tests := []struct {
		path string
		want string
	}{
		{"/pets/a%2Fb", "getPet:a/b"},
		{"/pets/two%20words", "getPet:two words"},
		{"/pets/plain", "getPet:plain"},
	}
	for name, s := range strategies {
		t.Run(name, func(t *testing.T) {
			h, err := s.Build(strategyRoutes, echoDispatch, http.NotFoundHandler())
			require.NoError(t, err)
			for _, tt := range tests {
				rec := httptest.NewRecorder()
				h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
				assert.Equal(t, http.StatusOK, rec.Code, tt.path)
				assert.Equal(t, tt.want, rec.Body.String(), tt.path)
			}
		})
	}
}

func TestStrategies_InvalidTemplate(t *testing.T) {
	routes := append(slices.Clone(strategyRoutes), Route{Method: http.MethodGet, Path: "/bad/{id", OperationID: "bad"})
	for name, s := range map[string]Strategy{"stdlib": StdlibRouter{}, "chi": ChiRouter{}} {
		t.Run(name, func(t *testing.T) {
			h, err := s.Build(routes, echoDispatch, http.NotFoundHandler())
			assert.Nil(t, h)
			assert.ErrorContains(t, err, "unclosed placeholder")
		})
	}
}

func TestChiRouter_SharedMux(t *testing.T) {
	mux := chi.NewRouter()
	mux.Get("/status", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("up"))
	})

	h, err := ChiRouter{Mux: mux}.Build(strategyRoutes, echoDispatch, http.NotFoundHandler())
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	assert.Equal(t, "up", rec.Body.String())

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/pets/5", nil))
	assert.Equal(t, "getPet:5", rec.Body.String())
}

func TestWithRoute(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/pets/9", nil)
	assert.Empty(t, MatchedPath(req))

	ctx := WithRoute(req.Context(), Route{Method: http.MethodGet, Path: "/pets/{petId}", OperationID: "getPet"}, map[string]string{"petId": "9"})
	req = req.WithContext(ctx)
	assert.Equal(t, "/pets/{petId}", MatchedPath(req))
	assert.Equal(t, "9", PathParam(req, "petId"))

	m, ok := routeFrom(ctx)
	require.True(t, ok)
	assert.Equal(t, "getPet", m.route.OperationID)
}
