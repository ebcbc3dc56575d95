package tmdb

import "github.com/reelparty/reelparty/internal/models"

// fallbackCatalog is served whenever TMDB is unreachable or unconfigured.
// Big enough to fill a full game pool.
var fallbackCatalog = []models.Movie{
	{ID: "m1", Title: "In the Mood for Love", ImageURL: "https://image.tmdb.org/t/p/w1280/iYypPT4bhqXfq1b6EnmxvRt6b2Y.jpg", ReleaseYear: "2000", Rating: 8.1, Duration: 99},
	{ID: "m2", Title: "Scenes from a Marriage", ImageURL: "https://image.tmdb.org/t/p/w1280/ArKEdvJesIktFX8OAhcdKAOLl6I.jpg", ReleaseYear: "1974", Rating: 8.1, Duration: 169},
	{ID: "m3", Title: "Yi Yi", ImageURL: "https://image.tmdb.org/t/p/w1280/mR8dSQZI8X6Z1NClJhFrtJp636z.jpg", ReleaseYear: "2000", Rating: 7.9, Duration: 174},
	{ID: "m4", Title: "The Zone of Interest", ImageURL: "https://image.tmdb.org/t/p/w1280/hUu9zyZmDd8VZegKi1iK1Vk0RYS.jpg", ReleaseYear: "2023", Rating: 7, Duration: 105},
	{ID: "m5", Title: "A Taxi Driver", ImageURL: "https://image.tmdb.org/t/p/w1280/iXVaWbxmyPk4KZGZk5GGDGFieMX.jpg", ReleaseYear: "2017", Rating: 8.1, Duration: 138},
	{ID: "m6", Title: "The Worst Person in the World", ImageURL: "https://image.tmdb.org/t/p/w1280/1NxGNQchGBTHXJ6RShLY1IlZqWn.jpg", ReleaseYear: "2021", Rating: 7.5, Duration: 128},
	{ID: "m7", Title: "Roman Holiday", ImageURL: "https://image.tmdb.org/t/p/w1280/8lI9dmz1RH20FAqltkGelY1v4BE.jpg", ReleaseYear: "1953", Rating: 7.9, Duration: 119},
	{ID: "m8", Title: "Past Lives", ImageURL: "https://image.tmdb.org/t/p/w1280/rzO71VFu7CpJMfF5TQNMj0d1lSV.jpg", ReleaseYear: "2023", Rating: 7.7, Duration: 106},
	{ID: "m9", Title: "Moonrise Kingdom", ImageURL: "https://image.tmdb.org/t/p/w1280/y4SXcbNl6CEF2t36icuzuBioj7K.jpg", ReleaseYear: "2012", Rating: 7.7, Duration: 94},
	{ID: "m10", Title: "The Elephant Man", ImageURL: "https://image.tmdb.org/t/p/w1280/rk2lKgEtjF9HO9N2UFMRc2cMGdj.jpg", ReleaseYear: "1980", Rating: 8, Duration: 124},
	{ID: "m11", Title: "Notting Hill", ImageURL: "https://image.tmdb.org/t/p/w1280/k7cwPG5sVmCumxKZCukyu3SbyjG.jpg", ReleaseYear: "1999", Rating: 7.3, Duration: 124},
	{ID: "m12", Title: "Fallen Leaves", ImageURL: "https://image.tmdb.org/t/p/w1280/9ayYOpeqHhxfHHUoyt3kXzznECO.jpg", ReleaseYear: "2023", Rating: 7.2, Duration: 81},
	{ID: "m13", Title: "Knives Out", ImageURL: "https://image.tmdb.org/t/p/w1280/pThyQovXQrw2m0s9x82twj48Jq4.jpg", ReleaseYear: "2019", Rating: 7.8, Duration: 131},
	{ID: "m14", Title: "Eternal Sunshine of the Spotless Mind", ImageURL: "https://image.tmdb.org/t/p/w1280/5MwkWH9tYHv3mV9OdYTMR5qreIz.jpg", ReleaseYear: "2004", Rating: 8.1, Duration: 108},
	{ID: "m15", Title: "There Will Be Blood", ImageURL: "https://image.tmdb.org/t/p/w1280/nuZDiX8okojcwkStdaMjA9LUQAT.jpg", ReleaseYear: "2007", Rating: 8.1, Duration: 158},
	{ID: "m16", Title: "The Grand Budapest Hotel", ImageURL: "https://image.tmdb.org/t/p/w1280/eWdyYQreja6JGCzqHWXpWHDrrPo.jpg", ReleaseYear: "2014", Rating: 8, Duration: 100},
	{ID: "m17", Title: "Memories of Murder", ImageURL: "https://image.tmdb.org/t/p/w1280/jcgUjx1QcupGzjntTVlnQ15lHqy.jpg", ReleaseYear: "2003", Rating: 8.1, Duration: 131},
	{ID: "m18", Title: "The Tale of The Princess Kaguya", ImageURL: "https://image.tmdb.org/t/p/w1280/mWRQNlWXYYfd2z4FRm99MsgHgiA.jpg", ReleaseYear: "2013", Rating: 8.1, Duration: 137},
	{ID: "m19", Title: "Princess Mononoke", ImageURL: "https://image.tmdb.org/t/p/w1280/cMYCDADoLKLbB83g4WnJegaZimC.jpg", ReleaseYear: "1997", Rating: 8.3, Duration: 134},
	{ID: "m20", Title: "The Triplets of Belleville", ImageURL: "https://image.tmdb.org/t/p/w1280/enw6C4fDw88g0nOQgIJXjgH3NHi.jpg", ReleaseYear: "2003", Rating: 7.4, Duration: 80},
	{ID: "m21", Title: "Sound of Metal", ImageURL: "https://image.tmdb.org/t/p/w1280/3178oOJKKPDeQ2legWQvMPpllv.jpg", ReleaseYear: "2020", Rating: 7.7, Duration: 120},
	{ID: "m22", Title: "Soul", ImageURL: "https://image.tmdb.org/t/p/w1280/hm58Jw4Lw8OIeECIq5qyPYhAeRJ.jpg", ReleaseYear: "2020", Rating: 8.1, Duration: 101},
	{ID: "m23", Title: "District 9", ImageURL: "https://image.tmdb.org/t/p/w1280/kYkK0KIBygtYQzBpjMgQyya4Re7.jpg", ReleaseYear: "2009", Rating: 7.4, Duration: 112},
	{ID: "m24", Title: "The Prince of Egypt", ImageURL: "https://image.tmdb.org/t/p/w1280/2xUjYwL6Ol7TLJPPKs7sYW5PWLX.jpg", ReleaseYear: "1998", Rating: 7.3, Duration: 99},
	{ID: "m25", Title: "Whiplash", ImageURL: "https://image.tmdb.org/t/p/w1280/7fn624j5lj3xTme2SgiLCeuedmO.jpg", ReleaseYear: "2014", Rating: 8.4, Duration: 107},
}

// Fallback returns up to count movies from the static catalog. Always
// non-empty for count >= 1.
func Fallback(count int) []models.Movie {
	if count > len(fallbackCatalog) || count <= 0 {
		count = len(fallbackCatalog)
	}
	return fallbackCatalog[:count]
}
