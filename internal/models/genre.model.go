package models

import "fmt"

// Genre identifies a daily-game category. Values are Deezer genre ids so
// catalog lookups and chart requests can use them directly. ALL is the
// "any genre" sentinel.
type Genre int

const (
	GenreAll     Genre = 0
	GenreFrench  Genre = 52
	GenreCountry Genre = 84
	GenreRap     Genre = 116
	GenrePop     Genre = 132
	GenreRock    Genre = 152
	GenreBlues   Genre = 153
	GenreRNB     Genre = 165
	GenreSoul    Genre = 169
	GenreMetal   Genre = 464
	GenreFolk    Genre = 466
)

var Genres = []Genre{
	GenreAll,
	GenreFrench,
	GenreCountry,
	GenreRap,
	GenrePop,
	GenreRock,
	GenreBlues,
	GenreRNB,
	GenreSoul,
	GenreMetal,
	GenreFolk,
}

var genreNames = map[Genre]string{
	GenreAll:     "All",
	GenreFrench:  "French",
	GenreCountry: "Country",
	GenreRap:     "Rap",
	GenrePop:     "Pop",
	GenreRock:    "Rock",
	GenreBlues:   "Blues",
	GenreRNB:     "R&B",
	GenreSoul:    "Soul",
	GenreMetal:   "Metal",
	GenreFolk:    "Folk",
}

func (g Genre) String() string {
	if name, ok := genreNames[g]; ok {
		return name
	}
	return fmt.Sprintf("Genre(%d)", int(g))
}

func (g Genre) Valid() bool {
	_, ok := genreNames[g]
	return ok
}
