package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/kinopoisk"
	"movie-recommendation-backend/internal/models"
	"movie-recommendation-backend/internal/random"
)

type fakeCatalog struct {
	movies []kinopoisk.Movie
	err    error
	calls  int
}

func (f *fakeCatalog) Discover(ctx context.Context, genres models.GenreSet, scenario models.Scenario) ([]kinopoisk.Movie, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.movies, nil
}

type mockHistory struct {
	mock.Mock
	saved chan models.HistoryEntry
}

func newMockHistory() *mockHistory {
	return &mockHistory{saved: make(chan models.HistoryEntry, 1)}
}

func (m *mockHistory) SaveRequest(ctx context.Context, entry models.HistoryEntry) error {
	args := m.Called(ctx, entry)
	m.saved <- entry
	return args.Error(0)
}

func (m *mockHistory) GetHistory(userID string, limit int) ([]models.HistoryEntry, error) {
	args := m.Called(userID, limit)
	return args.Get(0).([]models.HistoryEntry), args.Error(1)
}

func (m *mockHistory) GetStats(periodDays int) (*models.ServiceStats, error) {
	args := m.Called(periodDays)
	return args.Get(0).(*models.ServiceStats), args.Error(1)
}

func testMovies(n int) []kinopoisk.Movie {
	out := make([]kinopoisk.Movie, n)
	for i := range out {
		out[i] = kinopoisk.Movie{
			ID:          i + 1,
			Name:        fmt.Sprintf("Фильм %d", i+1),
			Year:        2010 + i,
			Description: "Обычное описание",
			Rating:      kinopoisk.Rating{KP: 7.8},
			Votes:       kinopoisk.Votes{KP: 50000},
			Poster:      kinopoisk.Poster{URL: "https://example.com/p.jpg"},
			Genres:      []kinopoisk.Genre{{Name: "драма"}},
		}
	}
	return out
}

func soloScenario() models.Scenario {
	return models.Scenario{
		WithWhom: "Один",
		WhenTime: "Пятничный вечер",
		Purpose:  "Порефлексировать",
	}
}

func newTestService(catalog Catalog, history HistoryStore) *RecommendationService {
	return NewRecommendationService(catalog, history, nil, config.PolicyStrict, rand.New(rand.NewSource(42)))
}

func awaitSave(t *testing.T, h *mockHistory) models.HistoryEntry {
	t.Helper()
	select {
	case entry := <-h.saved:
		return entry
	case <-time.After(2 * time.Second):
		t.Fatal("history entry was not recorded")
		return models.HistoryEntry{}
	}
}

func TestRecommendSuccess(t *testing.T) {
	catalog := &fakeCatalog{movies: testMovies(15)}
	history := newMockHistory()
	history.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(catalog, history)
	resp, err := svc.Recommend(context.Background(), soloScenario(), "anonymous")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.Len(t, resp.Recommendations, models.MaxRecommendations)
	assert.Equal(t, 15, resp.Total)
	assert.Equal(t, models.SourceKinopoisk, resp.Metadata.Source)
	assert.Equal(t, []string{"драма", "биография"}, resp.Metadata.Genres)

	entry := awaitSave(t, history)
	assert.Equal(t, "anonymous", entry.UserID)
	assert.Equal(t, "Один", entry.WithWhom)
	assert.Equal(t, 10, entry.MoviesCount)
}

func TestRecommendFewerCandidatesThanCap(t *testing.T) {
	catalog := &fakeCatalog{movies: testMovies(3)}
	history := newMockHistory()
	history.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(catalog, history)
	resp, err := svc.Recommend(context.Background(), soloScenario(), "7")
	require.NoError(t, err)

	assert.Len(t, resp.Recommendations, 3)
	assert.Equal(t, 3, resp.Total)

	entry := awaitSave(t, history)
	assert.Equal(t, "7", entry.UserID)
	assert.Equal(t, 3, entry.MoviesCount)
}

func TestRecommendInvalidScenario(t *testing.T) {
	catalog := &fakeCatalog{movies: testMovies(5)}
	svc := newTestService(catalog, newMockHistory())

	_, err := svc.Recommend(context.Background(), models.Scenario{}, "anonymous")

	var missing *models.MissingFieldsError
	require.ErrorAs(t, err, &missing)
	assert.Zero(t, catalog.calls, "catalog must not be queried for invalid scenarios")
}

func TestRecommendStrictPolicySurfacesCatalogErrors(t *testing.T) {
	catalogErr := &kinopoisk.Error{Kind: kinopoisk.KindUnavailable, Err: errors.New("connection refused")}
	svc := newTestService(&fakeCatalog{err: catalogErr}, newMockHistory())

	_, err := svc.Recommend(context.Background(), soloScenario(), "anonymous")
	assert.True(t, kinopoisk.IsKind(err, kinopoisk.KindUnavailable))
}

func TestRecommendNoResultsPassesThrough(t *testing.T) {
	svc := newTestService(&fakeCatalog{err: kinopoisk.ErrNoResults}, newMockHistory())

	_, err := svc.Recommend(context.Background(), soloScenario(), "anonymous")
	assert.ErrorIs(t, err, kinopoisk.ErrNoResults)
}

func TestRecommendFallbackPolicySubstitutesData(t *testing.T) {
	catalogErr := &kinopoisk.Error{Kind: kinopoisk.KindRateLimited, Err: errors.New("too many requests")}
	history := newMockHistory()
	history.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)

	svc := NewRecommendationService(&fakeCatalog{err: catalogErr}, history, nil, config.PolicyFallback, rand.New(rand.NewSource(42)))
	resp, err := svc.Recommend(context.Background(), soloScenario(), "anonymous")
	require.NoError(t, err)

	assert.Equal(t, models.SourceFallback, resp.Metadata.Source)
	assert.NotEmpty(t, resp.Recommendations)
	awaitSave(t, history)
}

func TestRecommendFallbackSurvivesEveryFilter(t *testing.T) {
	catalogErr := &kinopoisk.Error{Kind: kinopoisk.KindUnavailable, Err: errors.New("down")}

	for _, showOnly := range models.ValidShowOnly {
		t.Run(showOnly, func(t *testing.T) {
			history := newMockHistory()
			history.On("SaveRequest", mock.Anything, mock.Anything).Return(nil)

			svc := NewRecommendationService(&fakeCatalog{err: catalogErr}, history, nil, config.PolicyFallback, rand.New(rand.NewSource(42)))

			scenario := soloScenario()
			scenario.ShowOnly = showOnly
			resp, err := svc.Recommend(context.Background(), scenario, "anonymous")
			require.NoError(t, err)
			assert.NotEmpty(t, resp.Recommendations)
			awaitSave(t, history)
		})
	}
}

func TestRecommendAllFilteredOut(t *testing.T) {
	movies := testMovies(4)
	for i := range movies {
		movies[i].Rating.KP = 6.0 // below the cult threshold
	}
	svc := newTestService(&fakeCatalog{movies: movies}, newMockHistory())

	scenario := soloScenario()
	scenario.ShowOnly = models.ShowOnlyCult
	_, err := svc.Recommend(context.Background(), scenario, "anonymous")
	assert.ErrorIs(t, err, ErrNoMatchAfterFilter)
}

// nopHistory discards writes; used where history content is irrelevant.
type nopHistory struct{}

func (nopHistory) SaveRequest(ctx context.Context, entry models.HistoryEntry) error { return nil }
func (nopHistory) GetHistory(userID string, limit int) ([]models.HistoryEntry, error) {
	return nil, nil
}
func (nopHistory) GetStats(periodDays int) (*models.ServiceStats, error) {
	return &models.ServiceStats{}, nil
}

func TestRecommendConcurrentRequests(t *testing.T) {
	docs := ""
	for i := 1; i <= 12; i++ {
		if i > 1 {
			docs += ","
		}
		docs += fmt.Sprintf(`{"id":%d,"name":"Фильм %d","year":2015,"rating":{"kp":7.8},"votes":{"kp":5000},"genres":[{"name":"драма"}]}`, i, i)
	}
	payload := fmt.Sprintf(`{"docs":[%s],"total":12,"page":1,"pages":1}`, docs)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, payload)
	}))
	defer srv.Close()

	// One random source shared by the catalog client (page/sort selection)
	// and the shuffler, hit from many request goroutines at once.
	rng := random.NewLocked(1)
	catalog := kinopoisk.NewClient("test-key", srv.URL, 30, rng)
	svc := NewRecommendationService(catalog, nopHistory{}, nil, config.PolicyStrict, rng)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				resp, err := svc.Recommend(context.Background(), soloScenario(), "anonymous")
				if assert.NoError(t, err) {
					assert.Len(t, resp.Recommendations, models.MaxRecommendations)
				}
			}
		}()
	}
	wg.Wait()
}

func TestFilterMoviesCultThreshold(t *testing.T) {
	movies := []kinopoisk.Movie{
		{ID: 1, Rating: kinopoisk.Rating{KP: 7.4}},
		{ID: 2, Rating: kinopoisk.Rating{KP: 7.5}},
		{ID: 3, Rating: kinopoisk.Rating{KP: 7.6}},
	}

	out := filterMovies(movies, models.ShowOnlyCult)
	require.Len(t, out, 1)
	assert.Equal(t, 3, out[0].ID)
}

func TestFilterMoviesObscure(t *testing.T) {
	movies := []kinopoisk.Movie{
		{ID: 1, Votes: kinopoisk.Votes{KP: 9999}},
		{ID: 2, Votes: kinopoisk.Votes{KP: 10000}},
		{ID: 3, Votes: kinopoisk.Votes{KP: 0}},
	}

	out := filterMovies(movies, models.ShowOnlyObscure)
	require.Len(t, out, 2)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, 3, out[1].ID)
}

func TestFilterMoviesArthouse(t *testing.T) {
	movies := []kinopoisk.Movie{
		{ID: 1, Genres: []kinopoisk.Genre{{Name: "артхаус"}}, Votes: kinopoisk.Votes{KP: 900000}},
		{ID: 2, Genres: []kinopoisk.Genre{{Name: "Documentary Film"}}},
		{ID: 3, Genres: []kinopoisk.Genre{{Name: "драма"}}, Votes: kinopoisk.Votes{KP: 4000}, Rating: kinopoisk.Rating{KP: 7.5}},
		{ID: 4, Genres: []kinopoisk.Genre{{Name: "драма"}}, Votes: kinopoisk.Votes{KP: 4000}, Rating: kinopoisk.Rating{KP: 6.5}},
		{ID: 5, Genres: []kinopoisk.Genre{{Name: "драма"}}, Votes: kinopoisk.Votes{KP: 800000}, Rating: kinopoisk.Rating{KP: 9.0}},
	}

	out := filterMovies(movies, models.ShowOnlyArthouse)
	require.Len(t, out, 3)
	assert.Equal(t, 1, out[0].ID)
	assert.Equal(t, 2, out[1].ID)
	assert.Equal(t, 3, out[2].ID)
}

func TestFilterMoviesNoFilterPassesThrough(t *testing.T) {
	movies := testMovies(5)
	assert.Equal(t, movies, filterMovies(movies, ""))
}

func TestShuffleMoviesDoesNotMutateInput(t *testing.T) {
	movies := testMovies(8)
	original := make([]kinopoisk.Movie, len(movies))
	copy(original, movies)

	shuffleMovies(movies, rand.New(rand.NewSource(1)))
	assert.Equal(t, original, movies)
}

func TestShuffleMoviesPreservesElements(t *testing.T) {
	movies := testMovies(8)
	out := shuffleMovies(movies, rand.New(rand.NewSource(1)))

	require.Len(t, out, len(movies))
	seen := make(map[int]bool)
	for _, m := range out {
		seen[m.ID] = true
	}
	assert.Len(t, seen, len(movies))
}

func TestShuffleMoviesIsUnbiased(t *testing.T) {
	// With 3 elements there are 6 permutations; over many runs each should
	// appear at a roughly equal rate.
	movies := testMovies(3)
	rng := rand.New(rand.NewSource(7))

	const runs = 6000
	counts := make(map[string]int)
	for i := 0; i < runs; i++ {
		out := shuffleMovies(movies, rng)
		key := fmt.Sprintf("%d%d%d", out[0].ID, out[1].ID, out[2].ID)
		counts[key]++
	}

	require.Len(t, counts, 6)
	for perm, n := range counts {
		assert.InDelta(t, runs/6, n, runs/6*0.2, "permutation %s is over- or under-represented", perm)
	}
}

func TestPresentMovieTitleFallbacks(t *testing.T) {
	tests := []struct {
		name  string
		movie kinopoisk.Movie
		title string
	}{
		{"native name wins", kinopoisk.Movie{Name: "Сталкер", AlternativeName: "Stalker"}, "Сталкер"},
		{"alternative name", kinopoisk.Movie{AlternativeName: "Stalker", EnName: "The Stalker"}, "Stalker"},
		{"english name", kinopoisk.Movie{EnName: "The Stalker"}, "The Stalker"},
		{"no title at all", kinopoisk.Movie{}, models.Untitled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.title, presentMovie(tt.movie).Title)
		})
	}
}

func TestPresentMovieDefaults(t *testing.T) {
	got := presentMovie(kinopoisk.Movie{ID: 9, Name: "Фильм"})

	assert.Equal(t, models.PosterPlaceholder, got.Poster)
	assert.Equal(t, models.NoDescription, got.Description)
	assert.Nil(t, got.Rating, "zero rating must be omitted")
	assert.Empty(t, got.Genres)
}

func TestPresentMovieRoundsRating(t *testing.T) {
	got := presentMovie(kinopoisk.Movie{Rating: kinopoisk.Rating{KP: 7.846}})
	require.NotNil(t, got.Rating)
	assert.Equal(t, 7.8, *got.Rating)
}

func TestTruncateDescription(t *testing.T) {
	long := strings.Repeat("ж", 250)
	got := truncateDescription(long)

	runes := []rune(got)
	assert.Len(t, runes, models.DescriptionLimit+3)
	assert.True(t, strings.HasSuffix(got, "..."))

	exact := strings.Repeat("ж", models.DescriptionLimit)
	assert.Equal(t, exact, truncateDescription(exact))
	assert.Equal(t, "короткое", truncateDescription("короткое"))
}

func TestHistoryClampsLimit(t *testing.T) {
	history := newMockHistory()
	history.On("GetHistory", "42", 10).Return([]models.HistoryEntry{}, nil)

	svc := newTestService(&fakeCatalog{}, history)
	_, err := svc.History("42", -3)
	require.NoError(t, err)

	_, err = svc.History("42", 500)
	require.NoError(t, err)

	history.AssertNumberOfCalls(t, "GetHistory", 2)
}

func TestStatsClampsPeriod(t *testing.T) {
	history := newMockHistory()
	history.On("GetStats", 30).Return(&models.ServiceStats{TotalRequests: 12}, nil)

	svc := newTestService(&fakeCatalog{}, history)
	stats, err := svc.Stats(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 12, stats.TotalRequests)
}

func TestOptionsListsEverything(t *testing.T) {
	svc := newTestService(&fakeCatalog{}, newMockHistory())
	opts := svc.Options()

	assert.True(t, opts.Success)
	assert.Len(t, opts.Options, 4)
	assert.Len(t, opts.GenreMap, 6)
}
