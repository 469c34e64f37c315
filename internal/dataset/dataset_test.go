package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pitchdata/pitchdata/internal/provider/fpl"
	"github.com/pitchdata/pitchdata/internal/provider/understat"
)

func TestBuildCombinedTagsAndOrders(t *testing.T) {
	t.Parallel()

	fetchOne := func(ctx context.Context, entity int) ([]map[string]interface{}, error) {
		switch entity {
		case 1:
			return []map[string]interface{}{
				{"round": 1, "total_points": "9"},
				{"round": 2, "total_points": "2"},
			}, nil
		case 2:
			return []map[string]interface{}{
				{"round": 1, "total_points": 6},
			}, nil
		}
		return nil, fmt.Errorf("unexpected entity %d", entity)
	}

	table, err := BuildCombined(context.Background(), []int{1, 2}, fetchOne, 0, "element", []string{"round", "total_points"})
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	// Rows arrive in fan-out order, each tagged with its entity.
	assert.Equal(t, 1, table.Rows[0]["element"])
	assert.Equal(t, 1, table.Rows[1]["element"])
	assert.Equal(t, 2, table.Rows[2]["element"])
	assert.Equal(t, float64(2), table.Rows[1]["round"])
	assert.Equal(t, float64(9), table.Rows[0]["total_points"])
}

func TestBuildCombinedFailureAbortsWholeBuild(t *testing.T) {
	t.Parallel()

	calls := 0
	fetchOne := func(ctx context.Context, entity int) ([]map[string]interface{}, error) {
		calls++
		if entity == 2 {
			return nil, errors.New("upstream exploded")
		}
		return []map[string]interface{}{{"round": 1}}, nil
	}

	table, err := BuildCombined(context.Background(), []int{1, 2, 3}, fetchOne, 0, "element", nil)
	require.Error(t, err)
	assert.Nil(t, table)
	assert.Contains(t, err.Error(), "entity 2")
	// The failing entity is the last one fetched; nothing after it runs.
	assert.Equal(t, 2, calls)
}

func TestBuildCombinedEmptyEntities(t *testing.T) {
	t.Parallel()

	table, err := BuildCombined(context.Background(), nil, func(ctx context.Context, entity int) ([]map[string]interface{}, error) {
		t.Fatal("fetchOne must not be called")
		return nil, nil
	}, 0, "element", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestBuildCombinedHonorsContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := BuildCombined(ctx, []int{1}, func(ctx context.Context, entity int) ([]map[string]interface{}, error) {
		return nil, nil
	}, 0, "element", nil)
	require.Error(t, err)
}

func TestFPLPlayerGameweeksEndToEnd(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bootstrap-static/":
			w.Write([]byte(`{"elements":[{"id":10},{"id":20},{"id":30}]}`))
		case "/element-summary/10/":
			w.Write([]byte(`{"history":[{"round":1,"ict_index":"5.1"},{"round":2,"ict_index":"n/a"}]}`))
		case "/element-summary/20/":
			w.Write([]byte(`{"history":[{"round":1,"ict_index":"3.2"}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := fpl.NewClient(nil, srv.URL, 0)
	table, err := FPLPlayerGameweeks(context.Background(), c, 2, 0)
	require.NoError(t, err)
	require.Equal(t, 3, table.Len())

	assert.Equal(t, 10, table.Rows[0]["element"])
	assert.Equal(t, 10, table.Rows[1]["element"])
	assert.Equal(t, 20, table.Rows[2]["element"])
	assert.Equal(t, 5.1, table.Rows[0]["ict_index"])
	assert.Nil(t, table.Rows[1]["ict_index"])
}

func TestUnderstatMatchesFlattensNestedObjects(t *testing.T) {
	t.Parallel()

	matches := `[{"id":"101","isResult":true,` +
		`"xG":{"h":"1.25","a":"0.75"},` +
		`"forecast":{"w":"0.5","d":"0.3","l":"0.2"},` +
		`"h":{"title":"Arsenal"}}]`
	page := fmt.Sprintf("<html><body><script>var matchesData = %s;</script></body></html>", matches)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c := understat.NewClient(nil, srv.URL, "", 0, nil)
	table, err := UnderstatMatches(context.Background(), c, "EPL", 2023)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())

	row := table.Rows[0]
	assert.Equal(t, 1.25, row["xG_home"])
	assert.Equal(t, 0.75, row["xG_away"])
	assert.Equal(t, 0.5, row["forecast_win"])
	assert.Equal(t, 0.3, row["forecast_draw"])
	assert.Equal(t, 0.2, row["forecast_lose"])
	// Nested team object is not numeric and passes through.
	assert.Equal(t, map[string]interface{}{"title": "Arsenal"}, row["h"])
}

func TestUnderstatPlayersEmptySeasonYieldsEmptyTable(t *testing.T) {
	t.Parallel()

	page := "<html><body><script>var playersData = JSON.parse('\\x5B\\x5D');</script></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(page))
	}))
	defer srv.Close()

	c := understat.NewClient(nil, srv.URL, "", 0, nil)
	table, err := UnderstatPlayers(context.Background(), c, "EPL", 2023)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}

func TestServiceBuildUnknownResource(t *testing.T) {
	t.Parallel()

	svc := &Service{}
	_, err := svc.Build(context.Background(), "nonsense", Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown resource")
}

func TestServiceResultMarshalRawPassthrough(t *testing.T) {
	t.Parallel()

	raw := json.RawMessage(`{"events":[1,2]}`)
	data, err := json.Marshal(Result{Raw: raw})
	require.NoError(t, err)
	assert.JSONEq(t, string(raw), string(data))
}

func TestResourcesStableOrder(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{
		"fpl_bootstrap",
		"fpl_fixtures",
		"fpl_histories",
		"understat_players",
		"understat_matches",
	}, Resources())
}
