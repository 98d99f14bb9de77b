package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"movie-recommendation-backend/internal/models"
)

const requestTimeout = 15 * time.Second

// maxRandomPage bounds the random page selector used to diversify repeated
// identical requests.
const maxRandomPage = 5

// yearSpan is the width of the default release-year window.
const yearSpan = 15

// Rand supplies the randomness used for page and sort selection. *rand.Rand
// satisfies it; tests substitute a deterministic source.
type Rand interface {
	Intn(n int) int
}

// Client queries the Kinopoisk movie catalog. One request per Discover call,
// no retries, no caching.
type Client struct {
	apiKey  string
	baseURL string
	limit   int
	http    *http.Client
	rng     Rand
}

// NewClient creates a new catalog client.
func NewClient(apiKey, baseURL string, limit int, rng Rand) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		limit:   limit,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		rng: rng,
	}
}

// ---- Catalog response types (internal wire shapes) ----

type discoverResponse struct {
	Docs  []Movie `json:"docs"`
	Total int     `json:"total"`
	Page  int     `json:"page"`
	Pages int     `json:"pages"`
}

// Movie is a raw catalog record. The pipeline only reads it.
type Movie struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	AlternativeName string  `json:"alternativeName"`
	EnName          string  `json:"enName"`
	Year            int     `json:"year"`
	Description     string  `json:"description"`
	Rating          Rating  `json:"rating"`
	Votes           Votes   `json:"votes"`
	Poster          Poster  `json:"poster"`
	Genres          []Genre `json:"genres"`
}

// Rating holds the catalog's numeric sub-scores.
type Rating struct {
	KP float64 `json:"kp"`
}

// Votes holds the catalog's vote counts.
type Votes struct {
	KP int `json:"kp"`
}

// Poster is a poster reference.
type Poster struct {
	URL string `json:"url"`
}

// Genre is a genre tag on a catalog record.
type Genre struct {
	Name string `json:"name"`
}

// ---- Client methods ----

// Discover issues one catalog query for candidates matching the genre set,
// with rating/vote/year bounds, page and sort derived from show_only. An
// empty result is reported as ErrNoResults; failures are classified into
// *Error kinds. The caller decides whether to fall back.
func (c *Client) Discover(ctx context.Context, genres models.GenreSet, scenario models.Scenario) ([]Movie, error) {
	if c.apiKey == "" {
		return nil, &Error{Kind: KindUnauthorized, Err: fmt.Errorf("catalog API key is not configured")}
	}

	params := c.buildQuery(genres, scenario)
	reqURL := c.baseURL + "/movie?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindUpstream, Err: err}
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	slog.Debug("fetching catalog candidates", "genres", genres.CatalogTags, "show_only", scenario.ShowOnly)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindUnavailable, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("%s", body)
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Err: err}
		case resp.StatusCode == http.StatusTooManyRequests:
			return nil, &Error{Kind: KindRateLimited, Status: resp.StatusCode, Err: err}
		default:
			return nil, &Error{Kind: KindUpstream, Status: resp.StatusCode, Err: err}
		}
	}

	var result discoverResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &Error{Kind: KindUpstream, Status: resp.StatusCode, Err: fmt.Errorf("failed to decode discover response: %w", err)}
	}

	if len(result.Docs) == 0 {
		return nil, ErrNoResults
	}

	slog.Debug("catalog returned candidates", "count", len(result.Docs), "total", result.Total)
	return result.Docs, nil
}

// buildQuery constructs the discover parameters. The random page and, for
// requests without show_only, the random sort exist to diversify repeated
// identical requests.
func (c *Client) buildQuery(genres models.GenreSet, scenario models.Scenario) url.Values {
	params := url.Values{}
	for _, f := range []string{"id", "name", "alternativeName", "enName", "year", "rating", "poster", "genres", "description", "votes"} {
		params.Add("selectFields", f)
	}
	params.Set("limit", strconv.Itoa(c.limit))
	params.Set("page", strconv.Itoa(c.rng.Intn(maxRandomPage)+1))

	tags := genres.CatalogTags

	switch scenario.ShowOnly {
	case models.ShowOnlyCult:
		params.Set("rating.kp", "7.5-10")
		params.Set("sortField", "votes.kp")
		params.Set("sortType", "-1")
	case models.ShowOnlyObscure:
		params.Set("rating.kp", "6-8")
		params.Set("votes.kp", "100-10000")
	case models.ShowOnlyArthouse:
		tags = []string{"arthouse", "documentary"}
		params.Set("sortField", "year")
		params.Set("sortType", "-1")
	default:
		now := time.Now().Year()
		params.Set("rating.kp", "6.5-10")
		params.Set("year", fmt.Sprintf("%d-%d", now-yearSpan, now))
		sorts := []struct{ field, dir string }{
			{"rating.kp", "-1"},
			{"votes.kp", "-1"},
			{"year", "-1"},
			{"year", "1"},
		}
		s := sorts[c.rng.Intn(len(sorts))]
		params.Set("sortField", s.field)
		params.Set("sortType", s.dir)
	}

	for _, t := range tags {
		params.Add("genres.name", t)
	}

	return params
}
