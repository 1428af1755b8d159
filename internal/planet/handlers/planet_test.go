package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"planets-api/internal/planet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupServer(t *testing.T) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store, err := planet.NewMemoryStore(logger)
	require.NoError(t, err)

	mux := http.NewServeMux()
	NewPlanetHandler(planet.NewService(store, logger), logger).Register(mux)
	return mux
}

func do(t *testing.T, h http.Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		payload, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, target, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodePlanet(t *testing.T, rec *httptest.ResponseRecorder) planet.Planet {
	t.Helper()

	var p planet.Planet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}

func decodePlanets(t *testing.T, rec *httptest.ResponseRecorder) []planet.Planet {
	t.Helper()

	var planets []planet.Planet
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &planets))
	return planets
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body["message"]
}

func createPlanet(t *testing.T, h http.Handler, name, description string, moon int) planet.Planet {
	t.Helper()

	rec := do(t, h, http.MethodPost, "/planets", map[string]interface{}{
		"name":        name,
		"moon":        moon,
		"description": description,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodePlanet(t, rec)
}

func TestCreateAndGetRoundTrip(t *testing.T) {
	h := setupServer(t)

	created := createPlanet(t, h, "Mars", "the red planet", 2)
	assert.Positive(t, created.ID)

	rec := do(t, h, http.MethodGet, fmt.Sprintf("/planets/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		fmt.Sprintf(`{"id": %d, "name": "Mars", "description": "the red planet", "moon": 2}`, created.ID),
		rec.Body.String(),
	)
}

func TestCreateResponseShape(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodPost, "/planets", `{"name": "Venus", "moon": 0, "description": "cloudy", "extra": true}`)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id": 1, "name": "Venus", "moon": 0, "description": "cloudy"}`, rec.Body.String())
}

func TestCreateMissingField(t *testing.T) {
	h := setupServer(t)

	for name, body := range map[string]string{
		"missing name":        `{"moon": 1, "description": "x"}`,
		"missing moon":        `{"name": "x", "description": "x"}`,
		"missing description": `{"name": "x", "moon": 1}`,
		"null name":           `{"name": null, "moon": 1, "description": "x"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/planets", body)
			assert.Equal(t, http.StatusInternalServerError, rec.Code)
		})
	}

	rec := do(t, h, http.MethodGet, "/planets", nil)
	assert.Empty(t, decodePlanets(t, rec))
}

func TestCreateMalformedBody(t *testing.T) {
	h := setupServer(t)

	for name, body := range map[string]string{
		"not json":        `name=Mars`,
		"moon not int":    `{"name": "Mars", "moon": "two", "description": "red"}`,
		"array body":      `[{"name": "Mars"}]`,
		"truncated input": `{"name": "Mars",`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/planets", body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "invalid JSON in request body", decodeMessage(t, rec))
		})
	}
}

func TestDeleteThenGet(t *testing.T) {
	h := setupServer(t)
	created := createPlanet(t, h, "Pluto", "demoted", 5)
	target := fmt.Sprintf("/planets/%d", created.ID)

	rec := do(t, h, http.MethodDelete, target, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = do(t, h, http.MethodGet, target, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, fmt.Sprintf("%d not found", created.ID), decodeMessage(t, rec))
}

func TestDeleteValidation(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodDelete, "/planets/xyz", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "planet xyz invalid", decodeMessage(t, rec))

	rec = do(t, h, http.MethodDelete, "/planets/12", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "12 not found", decodeMessage(t, rec))
}

func seedMoons(t *testing.T, h http.Handler) {
	t.Helper()

	createPlanet(t, h, "Mercury", "inner rocky", 0)
	createPlanet(t, h, "Earth", "inner rocky, wet", 1)
	createPlanet(t, h, "Mars", "inner rocky, red", 2)
	createPlanet(t, h, "Zeta", "outer ice", 3)
}

func TestListFilterByMoonOperator(t *testing.T) {
	h := setupServer(t)
	seedMoons(t, h)

	tests := []struct {
		query string
		moons []int
	}{
		{"/planets?moon=2&moon_param=gte", []int{2, 3}},
		{"/planets?moon=2&moon_param=gt", []int{3}},
		{"/planets?moon=2&moon_param=lt", []int{0, 1}},
		{"/planets?moon=2&moon_param=lte", []int{0, 1, 2}},
		{"/planets?moon=2&moon_param=eq", []int{2}},
		{"/planets?moon=2", []int{2}},
		{"/planets?moon=2&moon_param=bogus", []int{2}},
		{"/planets?moon=2&moon_operator=gt", []int{2}},
		{"/planets?moon_param=gt", []int{0, 1, 2, 3}},
		{"/planets?moon=0", []int{0}},
		{"/planets?moon=", []int{0, 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var moons []int
			for _, p := range decodePlanets(t, rec) {
				moons = append(moons, p.Moon)
			}
			assert.Equal(t, tt.moons, moons)
		})
	}
}

func TestListInvalidMoon(t *testing.T) {
	h := setupServer(t)
	seedMoons(t, h)

	rec := do(t, h, http.MethodGet, "/planets?moon=two&moon_param=gt", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"message": "Invalid moon parameter"}`, rec.Body.String())
}

func TestListDescriptionFilter(t *testing.T) {
	h := setupServer(t)
	seedMoons(t, h)

	rec := do(t, h, http.MethodGet, "/planets?description=rocky&moon=1&moon_param=gte", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var found []string
	for _, p := range decodePlanets(t, rec) {
		found = append(found, p.Name)
	}
	assert.Equal(t, []string{"Earth", "Mars"}, found)
}

func TestListSorting(t *testing.T) {
	h := setupServer(t)
	createPlanet(t, h, "Mars", "red", 2)
	createPlanet(t, h, "Earth", "blue", 1)
	createPlanet(t, h, "Jupiter", "giant", 95)

	tests := []struct {
		query string
		names []string
	}{
		{"/planets", []string{"Mars", "Earth", "Jupiter"}},
		{"/planets?sort=id", []string{"Mars", "Earth", "Jupiter"}},
		{"/planets?sort=unknown", []string{"Mars", "Earth", "Jupiter"}},
		{"/planets?sort=name", []string{"Earth", "Jupiter", "Mars"}},
		{"/planets?sort=name_desc", []string{"Mars", "Jupiter", "Earth"}},
		{"/planets?sort=moon", []string{"Earth", "Mars", "Jupiter"}},
		{"/planets?sort=moon_desc", []string{"Jupiter", "Mars", "Earth"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.query, nil)
			require.Equal(t, http.StatusOK, rec.Code)

			var got []string
			for _, p := range decodePlanets(t, rec) {
				got = append(got, p.Name)
			}
			assert.Equal(t, tt.names, got)
		})
	}
}

func TestListMoonDescIsNonIncreasing(t *testing.T) {
	h := setupServer(t)
	for i, moon := range []int{3, 0, 146, 2, 2, 16} {
		createPlanet(t, h, fmt.Sprintf("P%d", i), "body", moon)
	}

	rec := do(t, h, http.MethodGet, "/planets?sort=moon_desc", nil)
	planets := decodePlanets(t, rec)
	require.Len(t, planets, 6)
	for i := 1; i < len(planets); i++ {
		assert.GreaterOrEqual(t, planets[i-1].Moon, planets[i].Moon)
	}
}

func TestListEmpty(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodGet, "/planets?description=nothing", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestGetInvalidAndMissing(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodGet, "/planets/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeMessage(t, rec), "abc")
	assert.Equal(t, "planet abc invalid", decodeMessage(t, rec))

	rec = do(t, h, http.MethodGet, "/planets/999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, decodeMessage(t, rec), "999999")
	assert.Equal(t, "999999 not found", decodeMessage(t, rec))
}

func TestHugeIDsAreNotFound(t *testing.T) {
	h := setupServer(t)
	createPlanet(t, h, "Earth", "home", 1)

	rec := do(t, h, http.MethodGet, "/planets/99999999999999999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "99999999999999999999 not found", decodeMessage(t, rec))

	rec = do(t, h, http.MethodGet, "/planets/2147483648", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodDelete, "/planets/99999999999999999999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodPut, "/planets/99999999999999999999", map[string]interface{}{"name": "x", "description": "y", "moon": 0})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Planet 99999999999999999999 not found", decodeMessage(t, rec))
}

func TestListHugeMoon(t *testing.T) {
	h := setupServer(t)
	createPlanet(t, h, "Earth", "home", 1)

	rec := do(t, h, http.MethodGet, "/planets?moon=99999999999999999999&moon_param=lt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodePlanets(t, rec), 1)

	rec = do(t, h, http.MethodGet, "/planets?moon=3000000000&moon_param=gt", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodePlanets(t, rec))
}

func TestUpdateReplacesAllFields(t *testing.T) {
	h := setupServer(t)
	created := createPlanet(t, h, "Pluto", "ninth planet", 1)
	target := fmt.Sprintf("/planets/%d", created.ID)

	rec := do(t, h, http.MethodPut, target, map[string]interface{}{
		"name":        "134340 Pluto",
		"description": "dwarf planet",
		"moon":        5,
	})
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	rec = do(t, h, http.MethodGet, target, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, planet.Planet{ID: created.ID, Name: "134340 Pluto", Description: "dwarf planet", Moon: 5}, decodePlanet(t, rec))
}

func TestUpdateValidation(t *testing.T) {
	h := setupServer(t)
	createPlanet(t, h, "Earth", "home", 1)
	body := map[string]interface{}{"name": "x", "description": "y", "moon": 0}

	rec := do(t, h, http.MethodPut, "/planets/abc", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Planet id abc invalid", decodeMessage(t, rec))

	rec = do(t, h, http.MethodPut, "/planets/404", body)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Planet 404 not found", decodeMessage(t, rec))
}

func TestUpdateChecksIDBeforeBody(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodPut, "/planets/7", `{"name": "no moon or description"}`)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Planet 7 not found", decodeMessage(t, rec))
}

func TestUpdateMissingField(t *testing.T) {
	h := setupServer(t)
	created := createPlanet(t, h, "Earth", "home", 1)
	target := fmt.Sprintf("/planets/%d", created.ID)

	rec := do(t, h, http.MethodPut, target, `{"name": "Terra", "description": "home"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = do(t, h, http.MethodGet, target, nil)
	assert.Equal(t, created, decodePlanet(t, rec))
}

func TestUnsupportedMethod(t *testing.T) {
	h := setupServer(t)

	rec := do(t, h, http.MethodPatch, "/planets/1", `{}`)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
