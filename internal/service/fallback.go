package service

import "movie-recommendation-backend/internal/kinopoisk"

// fallbackMovies returns the built-in candidate list substituted for the
// catalog under the fallback policy. The set deliberately spans the mapped
// genres and both high- and low-vote titles so every show_only filter keeps
// at least one entry.
func fallbackMovies() []kinopoisk.Movie {
	return []kinopoisk.Movie{
		{
			ID:              535341,
			Name:            "1+1",
			AlternativeName: "Intouchables",
			Year:            2011,
			Rating:          kinopoisk.Rating{KP: 8.8},
			Votes:           kinopoisk.Votes{KP: 1500000},
			Poster:          kinopoisk.Poster{URL: "https://st.kp.yandex.net/images/film_big/535341.jpg"},
			Genres:          []kinopoisk.Genre{{Name: "драма"}, {Name: "комедия"}, {Name: "биография"}},
			Description:     "Пострадав в результате несчастного случая, богатый аристократ Филипп нанимает в помощники человека, который менее всего подходит для этой работы.",
		},
		{
			ID:              326,
			Name:            "Побег из Шоушенка",
			AlternativeName: "The Shawshank Redemption",
			Year:            1994,
			Rating:          kinopoisk.Rating{KP: 9.1},
			Votes:           kinopoisk.Votes{KP: 950000},
			Poster:          kinopoisk.Poster{URL: "https://st.kp.yandex.net/images/film_big/326.jpg"},
			Genres:          []kinopoisk.Genre{{Name: "драма"}},
			Description:     "Бухгалтер Энди Дюфрейн обвинён в убийстве собственной жены и её любовника. Оказавшись в тюрьме под названием Шоушенк, он сталкивается с жестокостью и беззаконием.",
		},
		{
			ID:              258687,
			Name:            "Интерстеллар",
			AlternativeName: "Interstellar",
			Year:            2014,
			Rating:          kinopoisk.Rating{KP: 8.6},
			Votes:           kinopoisk.Votes{KP: 850000},
			Poster:          kinopoisk.Poster{URL: "https://st.kp.yandex.net/images/film_big/258687.jpg"},
			Genres:          []kinopoisk.Genre{{Name: "фантастика"}, {Name: "драма"}, {Name: "приключения"}},
			Description:     "Когда засуха, пыльные бури и вымирание растений приводят человечество к продовольственному кризису, коллектив исследователей отправляется сквозь червоточину в путешествие.",
		},
		{
			ID:              2360,
			Name:            "Король Лев",
			AlternativeName: "The Lion King",
			Year:            1994,
			Rating:          kinopoisk.Rating{KP: 8.8},
			Votes:           kinopoisk.Votes{KP: 650000},
			Poster:          kinopoisk.Poster{URL: "https://st.kp.yandex.net/images/film_big/2360.jpg"},
			Genres:          []kinopoisk.Genre{{Name: "мультфильм"}, {Name: "драма"}, {Name: "семейный"}},
			Description:     "Львенок Симба бросает вызов дяде-злодею, который предал его отца и захватил власть в королевстве.",
		},
		{
			ID:              342,
			Name:            "Криминальное чтиво",
			AlternativeName: "Pulp Fiction",
			Year:            1994,
			Rating:          kinopoisk.Rating{KP: 8.6},
			Votes:           kinopoisk.Votes{KP: 700000},
			Poster:          kinopoisk.Poster{URL: "https://st.kp.yandex.net/images/film_big/342.jpg"},
			Genres:          []kinopoisk.Genre{{Name: "криминал"}, {Name: "драма"}},
			Description:     "Двое бандитов Винсент Вега и Джулс Винфилд ведут философские беседы в перерывах между разборками и решением проблем с должниками криминального босса Марселласа Уоллеса.",
		},
		{
			ID:              252156,
			Name:            "Человек с Земли",
			AlternativeName: "The Man from Earth",
			Year:            2007,
			Rating:          kinopoisk.Rating{KP: 7.9},
			Votes:           kinopoisk.Votes{KP: 4200},
			Poster:          kinopoisk.Poster{},
			Genres:          []kinopoisk.Genre{{Name: "фантастика"}, {Name: "драма"}, {Name: "детектив"}},
			Description:     "Прощальная вечеринка профессора Джона Олдмана превращается в допрос, когда он признается коллегам, что живет на Земле уже четырнадцать тысяч лет.",
		},
		{
			ID:              707891,
			Name:            "Акт убийства",
			AlternativeName: "The Act of Killing",
			Year:            2012,
			Rating:          kinopoisk.Rating{KP: 7.6},
			Votes:           kinopoisk.Votes{KP: 3100},
			Poster:          kinopoisk.Poster{},
			Genres:          []kinopoisk.Genre{{Name: "документальный"}},
			Description:     "Бывшие индонезийские эскадроны смерти реконструируют свои преступления в жанрах любимых ими голливудских фильмов.",
		},
	}
}
