package models

// GenreSet pairs the display genre tags for a scenario with the latin slugs
// the catalog query uses.
type GenreSet struct {
	Tags        []string `json:"tags"`
	CatalogTags []string `json:"catalog_tags"`
}

// defaultGenre is used when with_whom is not in the mapping table.
const defaultGenre = "драма"

// genreMap is the fixed scenario-to-genres mapping.
var genreMap = map[string][]string{
	"Один":                        {"драма", "биография"},
	"С партнером (романтика)":     {"мелодрама", "комедия"},
	"С партнером (экшн)":          {"боевик", "триллер"},
	"С детьми":                    {"мультфильм", "семейный"},
	"С друзьями (чтобы обсудить)": {"фантастика", "детектив"},
	"С друзьями (фоном)":          {"комедия", "приключения"},
}

// catalogSlugs translates display tags into the catalog's query form.
// Tags without a translation pass through unchanged.
var catalogSlugs = map[string]string{
	"драма":          "drama",
	"биография":      "biography",
	"мелодрама":      "melodrama",
	"комедия":        "comedy",
	"боевик":         "action",
	"триллер":        "thriller",
	"мультфильм":     "cartoon",
	"семейный":       "family",
	"фантастика":     "sci-fi",
	"детектив":       "detective",
	"приключения":    "adventure",
	"артхаус":        "arthouse",
	"документальный": "documentary",
}

// GenresForScenario maps a with_whom value to its genre set. Unknown values
// degrade to the single-genre default rather than failing.
func GenresForScenario(withWhom string) GenreSet {
	tags, ok := genreMap[withWhom]
	if !ok {
		tags = []string{defaultGenre}
	}
	catalog := make([]string, len(tags))
	for i, t := range tags {
		catalog[i] = CatalogSlug(t)
	}
	return GenreSet{Tags: tags, CatalogTags: catalog}
}

// GenreMap returns a copy of the scenario-to-genres table for the options
// endpoint.
func GenreMap() map[string][]string {
	out := make(map[string][]string, len(genreMap))
	for k, v := range genreMap {
		tags := make([]string, len(v))
		copy(tags, v)
		out[k] = tags
	}
	return out
}

// CatalogSlug returns the catalog query form of a display tag.
func CatalogSlug(tag string) string {
	if slug, ok := catalogSlugs[tag]; ok {
		return slug
	}
	return tag
}
