package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"movie-recommendation-backend/internal/config"
	"movie-recommendation-backend/internal/kinopoisk"
	"movie-recommendation-backend/internal/models"
)

const (
	statsCacheTTL  = 5 * time.Minute
	historyTimeout = 5 * time.Second
)

// ErrNoMatchAfterFilter marks a fetch that yielded candidates, all of which
// the show_only filter rejected. Distinct from kinopoisk.ErrNoResults.
var ErrNoMatchAfterFilter = errors.New("no movies matched the requested filters")

// Catalog is the external movie source consulted for candidates.
type Catalog interface {
	Discover(ctx context.Context, genres models.GenreSet, scenario models.Scenario) ([]kinopoisk.Movie, error)
}

// HistoryStore persists and reads recommendation request history.
type HistoryStore interface {
	SaveRequest(ctx context.Context, entry models.HistoryEntry) error
	GetHistory(userID string, limit int) ([]models.HistoryEntry, error)
	GetStats(periodDays int) (*models.ServiceStats, error)
}

// Rand supplies the randomness for shuffling. *rand.Rand satisfies it.
type Rand interface {
	Intn(n int) int
}

// RecommendationService runs the recommendation pipeline: validate the
// scenario, map it to genres, fetch candidates, filter, shuffle, present,
// and record history without blocking the response.
type RecommendationService struct {
	catalog Catalog
	history HistoryStore
	rdb     *redis.Client
	policy  string
	rng     Rand
}

// NewRecommendationService creates a new RecommendationService. rdb may be
// nil; the stats cache is then skipped.
func NewRecommendationService(catalog Catalog, history HistoryStore, rdb *redis.Client, policy string, rng Rand) *RecommendationService {
	return &RecommendationService{
		catalog: catalog,
		history: history,
		rdb:     rdb,
		policy:  policy,
		rng:     rng,
	}
}

// Recommend executes the pipeline for one scenario. userID is "anonymous"
// for unauthenticated requests.
func (s *RecommendationService) Recommend(ctx context.Context, scenario models.Scenario, userID string) (*models.RecommendationResponse, error) {
	if err := scenario.Validate(); err != nil {
		return nil, err
	}

	genres := models.GenresForScenario(scenario.WithWhom)
	source := models.SourceKinopoisk

	candidates, err := s.catalog.Discover(ctx, genres, scenario)
	if err != nil {
		if s.policy == config.PolicyFallback {
			slog.Warn("catalog fetch failed, using fallback data", "error", err)
			candidates = fallbackMovies()
			source = models.SourceFallback
		} else {
			return nil, err
		}
	}

	filtered := filterMovies(candidates, scenario.ShowOnly)
	if len(filtered) == 0 {
		return nil, ErrNoMatchAfterFilter
	}

	shuffled := shuffleMovies(filtered, s.rng)
	presented := presentMovies(shuffled)

	recommendations := presented
	if len(recommendations) > models.MaxRecommendations {
		recommendations = recommendations[:models.MaxRecommendations]
	}

	resp := &models.RecommendationResponse{
		Success:         true,
		Scenario:        scenario,
		Recommendations: recommendations,
		Total:           len(filtered),
		Metadata: models.RecommendationMetadata{
			Source: source,
			Genres: genres.Tags,
		},
	}

	// Best-effort history write, decoupled from the response.
	go s.recordHistory(scenario, userID, len(recommendations))

	return resp, nil
}

// recordHistory persists the request shape and result count. Failures are
// logged and never surface to the caller.
func (s *RecommendationService) recordHistory(scenario models.Scenario, userID string, count int) {
	ctx, cancel := context.WithTimeout(context.Background(), historyTimeout)
	defer cancel()

	entry := models.HistoryEntry{
		UserID:      userID,
		WithWhom:    scenario.WithWhom,
		WhenTime:    scenario.WhenTime,
		Purpose:     scenario.Purpose,
		ShowOnly:    scenario.ShowOnly,
		MoviesCount: count,
	}
	if err := s.history.SaveRequest(ctx, entry); err != nil {
		slog.Error("failed to save recommendation history", "user_id", userID, "error", err)
	}
}

// Options returns the accepted scenario values and the genre mapping.
func (s *RecommendationService) Options() models.OptionsResponse {
	return models.OptionsResponse{
		Success:  true,
		Options:  models.ValidOptions(),
		GenreMap: models.GenreMap(),
	}
}

// History returns the most recent requests for a user.
func (s *RecommendationService) History(userID string, limit int) ([]models.HistoryEntry, error) {
	if limit < 1 || limit > 100 {
		limit = 10
	}
	entries, err := s.history.GetHistory(userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	return entries, nil
}

// Stats returns aggregate counters over the given period, cached briefly.
func (s *RecommendationService) Stats(ctx context.Context, periodDays int) (*models.ServiceStats, error) {
	if periodDays < 1 || periodDays > 365 {
		periodDays = 30
	}

	cacheKey := fmt.Sprintf("stats:%d", periodDays)
	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var stats models.ServiceStats
			if json.Unmarshal([]byte(cached), &stats) == nil {
				slog.Debug("stats cache hit", "key", cacheKey)
				return &stats, nil
			}
		}
	}

	stats, err := s.history.GetStats(periodDays)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if s.rdb != nil {
		if data, err := json.Marshal(stats); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, data, statsCacheTTL).Err(); err != nil {
				slog.Error("failed to cache stats", "key", cacheKey, "error", err)
			}
		}
	}

	return stats, nil
}

// ---- Pipeline stages ----

// filterMovies applies the show_only post-fetch predicates. Absent show_only
// is a pass-through.
func filterMovies(movies []kinopoisk.Movie, showOnly string) []kinopoisk.Movie {
	switch showOnly {
	case models.ShowOnlyCult:
		var out []kinopoisk.Movie
		for _, m := range movies {
			if m.Rating.KP > 7.5 {
				out = append(out, m)
			}
		}
		return out
	case models.ShowOnlyObscure:
		var out []kinopoisk.Movie
		for _, m := range movies {
			if m.Votes.KP == 0 || m.Votes.KP < 10000 {
				out = append(out, m)
			}
		}
		return out
	case models.ShowOnlyArthouse:
		var out []kinopoisk.Movie
		for _, m := range movies {
			if hasArthouseMarker(m.Genres) || (m.Votes.KP < 5000 && m.Rating.KP > 7.0) {
				out = append(out, m)
			}
		}
		return out
	default:
		return movies
	}
}

func hasArthouseMarker(genres []kinopoisk.Genre) bool {
	for _, g := range genres {
		name := strings.ToLower(g.Name)
		if strings.Contains(name, "артхаус") || strings.Contains(name, "документальный") ||
			strings.Contains(name, "arthouse") || strings.Contains(name, "documentary") {
			return true
		}
	}
	return false
}

// shuffleMovies returns an unbiased random permutation of movies. The input
// slice is never mutated.
func shuffleMovies(movies []kinopoisk.Movie, rng Rand) []kinopoisk.Movie {
	out := make([]kinopoisk.Movie, len(movies))
	copy(out, movies)
	for i := len(out) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// presentMovies maps raw catalog records to the public movie shape.
func presentMovies(movies []kinopoisk.Movie) []models.Movie {
	out := make([]models.Movie, 0, len(movies))
	for _, m := range movies {
		out = append(out, presentMovie(m))
	}
	return out
}

func presentMovie(m kinopoisk.Movie) models.Movie {
	title := m.Name
	if title == "" {
		title = m.AlternativeName
	}
	if title == "" {
		title = m.EnName
	}
	if title == "" {
		title = models.Untitled
	}

	original := m.AlternativeName
	if original == "" {
		original = m.EnName
	}

	var rating *float64
	if m.Rating.KP > 0 {
		r := math.Round(m.Rating.KP*10) / 10
		rating = &r
	}

	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Name)
	}

	poster := m.Poster.URL
	if poster == "" {
		poster = models.PosterPlaceholder
	}

	return models.Movie{
		ID:            m.ID,
		Title:         title,
		OriginalTitle: original,
		Year:          m.Year,
		Rating:        rating,
		Genres:        genres,
		Poster:        poster,
		Description:   truncateDescription(m.Description),
	}
}

func truncateDescription(desc string) string {
	if desc == "" {
		return models.NoDescription
	}
	runes := []rune(desc)
	if len(runes) <= models.DescriptionLimit {
		return desc
	}
	return string(runes[:models.DescriptionLimit]) + "..."
}
