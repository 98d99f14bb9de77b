package kinopoisk

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"movie-recommendation-backend/internal/models"
)

// fixedRand always returns the same value, pinning page and sort selection.
type fixedRand struct{ n int }

func (f fixedRand) Intn(n int) int {
	if f.n >= n {
		return n - 1
	}
	return f.n
}

func soloScenario() models.Scenario {
	return models.Scenario{
		WithWhom: "Один",
		WhenTime: "Пятничный вечер",
		Purpose:  "Порефлексировать",
	}
}

func discoverJSON(n int) string {
	docs := ""
	for i := 1; i <= n; i++ {
		if i > 1 {
			docs += ","
		}
		docs += fmt.Sprintf(`{"id":%d,"name":"Фильм %d","year":2015,"rating":{"kp":7.8},"votes":{"kp":5000},"genres":[{"name":"драма"}]}`, i, i)
	}
	return fmt.Sprintf(`{"docs":[%s],"total":%d,"page":1,"pages":1}`, docs, n)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", srv.URL, 30, fixedRand{n: 0})
}

func TestDiscoverSendsAPIKeyAndQuery(t *testing.T) {
	var got url.Values
	var header string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		header = r.Header.Get("X-API-KEY")
		fmt.Fprint(w, discoverJSON(2))
	})

	genres := models.GenresForScenario("Один")
	movies, err := client.Discover(context.Background(), genres, soloScenario())
	require.NoError(t, err)
	require.Len(t, movies, 2)

	assert.Equal(t, "test-key", header)
	assert.Equal(t, "30", got.Get("limit"))
	assert.Equal(t, "1", got.Get("page"))
	assert.Equal(t, []string{"drama", "biography"}, got["genres.name"])
	assert.Contains(t, got["selectFields"], "votes")

	// default branch: rating floor, recent-year window, a random sort
	assert.Equal(t, "6.5-10", got.Get("rating.kp"))
	now := time.Now().Year()
	assert.Equal(t, fmt.Sprintf("%d-%d", now-15, now), got.Get("year"))
	assert.Equal(t, "rating.kp", got.Get("sortField"))
	assert.Equal(t, "-1", got.Get("sortType"))
}

func TestDiscoverRandomPageStaysInRange(t *testing.T) {
	for _, n := range []int{0, 1, 4} {
		var got url.Values
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = r.URL.Query()
			fmt.Fprint(w, discoverJSON(1))
		}))
		client := NewClient("test-key", srv.URL, 30, fixedRand{n: n})

		_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("%d", n+1), got.Get("page"))
		srv.Close()
	}
}

func TestDiscoverCultQuery(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		fmt.Fprint(w, discoverJSON(1))
	})

	scenario := soloScenario()
	scenario.ShowOnly = models.ShowOnlyCult
	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), scenario)
	require.NoError(t, err)

	assert.Equal(t, "7.5-10", got.Get("rating.kp"))
	assert.Equal(t, "votes.kp", got.Get("sortField"))
	assert.Equal(t, "-1", got.Get("sortType"))
	assert.Empty(t, got.Get("year"))
}

func TestDiscoverObscureQuery(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		fmt.Fprint(w, discoverJSON(1))
	})

	scenario := soloScenario()
	scenario.ShowOnly = models.ShowOnlyObscure
	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), scenario)
	require.NoError(t, err)

	assert.Equal(t, "6-8", got.Get("rating.kp"))
	assert.Equal(t, "100-10000", got.Get("votes.kp"))
}

func TestDiscoverArthouseOverridesGenres(t *testing.T) {
	var got url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		fmt.Fprint(w, discoverJSON(1))
	})

	scenario := soloScenario()
	scenario.ShowOnly = models.ShowOnlyArthouse
	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), scenario)
	require.NoError(t, err)

	assert.Equal(t, []string{"arthouse", "documentary"}, got["genres.name"])
	assert.Equal(t, "year", got.Get("sortField"))
}

func TestDiscoverMissingAPIKey(t *testing.T) {
	client := NewClient("", "http://localhost", 30, fixedRand{})

	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
	assert.True(t, IsKind(err, KindUnauthorized))
}

func TestDiscoverClassifiesStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		kind   Kind
	}{
		{http.StatusUnauthorized, KindUnauthorized},
		{http.StatusForbidden, KindUnauthorized},
		{http.StatusTooManyRequests, KindRateLimited},
		{http.StatusInternalServerError, KindUpstream},
		{http.StatusBadGateway, KindUpstream},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%d", tt.status), func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
			require.Error(t, err)
			assert.True(t, IsKind(err, tt.kind), "status %d should map to %s", tt.status, tt.kind)

			var apiErr *Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestDiscoverUnreachableHost(t *testing.T) {
	client := NewClient("test-key", "http://127.0.0.1:1", 30, fixedRand{})

	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
	assert.True(t, IsKind(err, KindUnavailable))
}

func TestDiscoverEmptyDocs(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"docs":[],"total":0,"page":1,"pages":0}`)
	})

	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestDiscoverMalformedBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>gateway error</html>")
	})

	_, err := client.Discover(context.Background(), models.GenresForScenario("Один"), soloScenario())
	assert.True(t, IsKind(err, KindUpstream))
}
