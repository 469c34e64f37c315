package understat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testUserAgent = "pitchdata-test/1.0"

func leaguePageHTML(scripts ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>EPL</title></head><body><div>table</div>")
	for _, s := range scripts {
		fmt.Fprintf(&b, "<script>%s</script>", s)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newTestServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, testUserAgent, r.Header.Get("User-Agent"))
		assert.Equal(t, "/league/EPL/2023", r.URL.Path)
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(html))
	}))
}

func TestLeagueVarExtractsEmbeddedPayload(t *testing.T) {
	t.Parallel()

	html := leaguePageHTML(
		"var teamsData = JSON.parse('\\x7B\\x7D');",
		"var playersData = JSON.parse('\\x5B\\x7B\\x22id\\x22:\\x221\\x22\\x7D\\x5D');",
	)
	srv := newTestServer(t, html)
	defer srv.Close()

	c := NewClient(nil, srv.URL, testUserAgent, 0, nil)
	v, err := c.LeagueVar(context.Background(), "EPL", 2023, PlayersMarker, "playersData")
	require.NoError(t, err)
	require.Equal(t, []interface{}{map[string]interface{}{"id": "1"}}, v)
}

func TestLeagueVarMissingMarkerScript(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, leaguePageHTML("var somethingElse = [1];"))
	defer srv.Close()

	c := NewClient(nil, srv.URL, testUserAgent, 0, nil)
	_, err := c.LeagueVar(context.Background(), "EPL", 2023, PlayersMarker, "playersData")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPayloadNotLocated))
}

func TestLeagueVarMarkerPresentButNoAssignment(t *testing.T) {
	t.Parallel()

	// The marker appears in a comment, but nothing assigns the variable.
	srv := newTestServer(t, leaguePageHTML("// playersData moved elsewhere"))
	defer srv.Close()

	c := NewClient(nil, srv.URL, testUserAgent, 0, nil)
	_, err := c.LeagueVar(context.Background(), "EPL", 2023, PlayersMarker, "playersData")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrPayloadNotLocated))
}

func TestLeagueVarEmptyArrayIsNotAFailure(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, leaguePageHTML("var playersData = JSON.parse('\\x5B\\x5D');"))
	defer srv.Close()

	c := NewClient(nil, srv.URL, testUserAgent, 0, nil)
	v, err := c.LeagueVar(context.Background(), "EPL", 2023, PlayersMarker, "playersData")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{}, v)
}

func TestLeaguePageNon2xx(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(nil, srv.URL, testUserAgent, 0, nil)
	_, err := c.LeaguePage(context.Background(), "EPL", 2023)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestFindScriptPicksMatchingBlock(t *testing.T) {
	t.Parallel()

	html := leaguePageHTML("var a = 1;", "var matchesData = [2];", "var b = 3;")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)

	script, err := FindScript(doc, MatchesMarker)
	require.NoError(t, err)
	assert.Contains(t, script, "matchesData")
	assert.NotContains(t, script, "var a")
}
