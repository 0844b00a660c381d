package intent

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kalambet/csvchat/internal/dataset"
)

const moviesHelp = "Sorry, I couldn't understand your query. Try asking about genre, year, director, or rating."

const (
	noGenre    = "No movies found in this genre."
	noYear     = "No movies found in this year."
	noDirector = "No movies found by this director."
	noRating   = "No movies found matching this rating criteria."
)

var (
	yearRe     = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	directorRe = regexp.MustCompile(`directed by (\w+\s*\w*)`)
	ratingRe   = regexp.MustCompile(`rating (>|<|>=|<=) (\d+\.?\d*)`)
)

// movieRules builds the catalog rules in dispatch order: genre, year,
// director, rating. The director rule fires on "director" and also on
// "directed by", so "movies directed by nolan" reaches it even though the
// word "director" is absent.
func movieRules(t *dataset.Table) []Rule {
	genres := t.UniqueValues(dataset.Genre)
	genreRe := literals(genres)
	canonical := make(map[string]string, len(genres))
	for _, g := range genres {
		if _, ok := canonical[strings.ToLower(g)]; !ok {
			canonical[strings.ToLower(g)] = g
		}
	}

	return []Rule{
		{
			Intent:   GenreFilter,
			Triggers: []string{"genre"},
			Extract: func(text string) (Params, bool) {
				if genreRe == nil {
					return Params{}, false
				}
				g, ok := canonical[strings.ToLower(genreRe.FindString(text))]
				return Params{Key: g}, ok
			},
			Handle: func(p Params) Result {
				return movieRows(GenreFilter, t.FilterEquals(dataset.Genre, p.Key), noGenre)
			},
			Missing: noGenre,
		},
		{
			Intent:   YearFilter,
			Triggers: []string{"year"},
			Extract: func(text string) (Params, bool) {
				v, ok := capture(yearRe, text)
				if !ok {
					return Params{}, false
				}
				n, err := strconv.Atoi(v)
				return Params{Key: v, Number: float64(n)}, err == nil
			},
			Handle: func(p Params) Result {
				return movieRows(YearFilter, t.FilterNumber(dataset.Year, dataset.OpEqual, p.Number), noYear)
			},
			Missing: noYear,
		},
		{
			Intent:   DirectorFilter,
			Triggers: []string{"director", "directed by"},
			Extract: func(text string) (Params, bool) {
				v, ok := capture(directorRe, text)
				v = strings.TrimSpace(v)
				return Params{Key: v}, ok && v != ""
			},
			Handle: func(p Params) Result {
				return movieRows(DirectorFilter, t.FilterContains(dataset.Director, p.Key), noDirector)
			},
			Missing: noDirector,
		},
		{
			Intent:   RatingFilter,
			Triggers: []string{"rating"},
			Extract: func(text string) (Params, bool) {
				m := ratingRe.FindStringSubmatch(text)
				if m == nil {
					return Params{}, false
				}
				v, err := strconv.ParseFloat(m[2], 64)
				if err != nil {
					return Params{}, false
				}
				return Params{Op: m[1], Number: v}, true
			},
			Handle: func(p Params) Result {
				op, err := dataset.ParseOp(p.Op)
				if err != nil {
					return notFound(RatingFilter, noRating)
				}
				return movieRows(RatingFilter, t.FilterNumber(dataset.Rating, op, p.Number), noRating)
			},
			Missing: noRating,
		},
	}
}

func movieRows(in Intent, rows *dataset.Table, empty string) Result {
	if rows.Len() == 0 {
		return notFound(in, empty)
	}
	return Result{
		Intent:  in,
		Kind:    KindTable,
		Message: fmt.Sprintf("Found %d movie(s):", rows.Len()),
		Table:   rows,
		Data:    map[string]any{"movies": rows.Records()},
	}
}
