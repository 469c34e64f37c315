package fpl

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetJSONReturnsBodyVerbatim(t *testing.T) {
	t.Parallel()

	payload := `{"events":[],"teams":[{"id":1,"name":"Arsenal"}]}`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bootstrap-static/", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, 0)
	raw, err := c.Bootstrap(context.Background())
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(raw))
}

func TestGetJSONNon2xxIsHardFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, 0)
	_, err := c.Fixtures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "maintenance")
}

func TestGetJSONRejectsNonJSONBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, 0)
	_, err := c.GetJSON(context.Background(), "/bootstrap-static/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid JSON")
}

func TestPlayerHistoryDecodesHistoryArray(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/element-summary/42/", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"fixtures": []interface{}{},
			"history": []map[string]interface{}{
				{"round": 1, "total_points": 9},
				{"round": 2, "total_points": 2},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, 0)
	history, err := c.PlayerHistory(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, float64(1), history[0]["round"])
}

func TestElementIDs(t *testing.T) {
	t.Parallel()

	bootstrap := json.RawMessage(`{"elements":[{"id":3,"web_name":"x"},{"id":1},{"id":7}]}`)
	ids, err := ElementIDs(bootstrap)
	require.NoError(t, err)
	assert.Equal(t, []int{3, 1, 7}, ids)
}

func TestElementIDsBadPayload(t *testing.T) {
	t.Parallel()

	_, err := ElementIDs(json.RawMessage(`[1,2,3]`))
	require.Error(t, err)
}
