package models

import "time"

const (
	// PosterPlaceholder substitutes a missing poster reference.
	PosterPlaceholder = "https://via.placeholder.com/300x450?text=No+Poster"
	// NoDescription substitutes a missing movie description.
	NoDescription = "Описание отсутствует"
	// Untitled substitutes a movie with no usable title.
	Untitled = "Без названия"

	// DescriptionLimit is the maximum length of a presented description.
	DescriptionLimit = 200
	// MaxRecommendations caps the recommendation list after shuffling.
	MaxRecommendations = 10
)

// Recommendation sources reported in response metadata.
const (
	SourceKinopoisk = "kinopoisk_api"
	SourceFallback  = "fallback_data"
)

// Movie is the public movie shape returned in recommendations.
type Movie struct {
	ID            int      `json:"id"`
	Title         string   `json:"title"`
	OriginalTitle string   `json:"originalTitle"`
	Year          int      `json:"year"`
	Rating        *float64 `json:"rating,omitempty"`
	Genres        []string `json:"genres"`
	Poster        string   `json:"poster"`
	Description   string   `json:"description"`
}

// RecommendationMetadata describes how a recommendation list was produced.
type RecommendationMetadata struct {
	Source string   `json:"source"`
	Genres []string `json:"genres"`
}

// RecommendationResponse is the successful recommendation payload.
type RecommendationResponse struct {
	Success         bool                   `json:"success"`
	Scenario        Scenario               `json:"scenario"`
	Recommendations []Movie                `json:"recommendations"`
	Total           int                    `json:"total"`
	Metadata        RecommendationMetadata `json:"metadata"`
}

// OptionsResponse lists the accepted scenario values and the genre mapping.
type OptionsResponse struct {
	Success  bool                `json:"success"`
	Options  map[string][]string `json:"options"`
	GenreMap map[string][]string `json:"genre_map"`
}

// HistoryEntry is one persisted recommendation request.
type HistoryEntry struct {
	ID          int       `json:"id"`
	UserID      string    `json:"-"`
	WithWhom    string    `json:"with_whom"`
	WhenTime    string    `json:"when_time"`
	Purpose     string    `json:"purpose"`
	ShowOnly    string    `json:"show_only,omitempty"`
	MoviesCount int       `json:"movies_count"`
	CreatedAt   time.Time `json:"created_at"`
}

// ServiceStats aggregates recommendation history counters.
type ServiceStats struct {
	TotalRequests          int     `json:"total_requests"`
	UniqueUsers            int     `json:"unique_users"`
	TotalMoviesRecommended int     `json:"total_movies_recommended"`
	AvgMoviesPerRequest    float64 `json:"avg_movies_per_request"`
	RecentRequests         int     `json:"recent_requests"`
	RecentUsers            int     `json:"recent_users"`
	MostPopularScenario    string  `json:"most_popular_scenario"`
	LastUpdated            string  `json:"last_updated"`
}
