package intent

import (
	"errors"
	"fmt"
	"sort"

	"github.com/kalambet/csvchat/internal/dataset"
)

// ErrUnknownProfile is returned by LookupProfile for an unregistered name.
var ErrUnknownProfile = errors.New("unknown profile")

// MetaField names a column exposed through Interpreter.Metadata.
type MetaField struct {
	Key    string
	Column dataset.Column
}

// Profile is one deployment shape: the columns it reads, the rules it
// answers with and the help text shown for unrecognized queries.
type Profile struct {
	Name     string
	Schema   dataset.Schema
	Help     string
	Metadata []MetaField

	rules func(t *dataset.Table) []Rule
}

func (p Profile) required() []dataset.Column {
	var cols []dataset.Column
	for _, f := range p.Schema {
		if !f.Optional {
			cols = append(cols, f.Column)
		}
	}
	return cols
}

// Agri answers lookups and sales aggregates over zone/region/crop/division
// sales records.
var Agri = Profile{
	Name: "agri",
	Schema: dataset.Schema{
		{Column: dataset.Zone, Header: "ZO"},
		{Column: dataset.Region, Header: "RO"},
		{Column: dataset.Crop, Header: "Crop"},
		{Column: dataset.Division, Header: "Divisions"},
		{Column: dataset.Estimated, Header: "CME", Kind: dataset.Number},
		{Column: dataset.Value, Header: "YTDPV", Kind: dataset.Number, Optional: true},
	},
	Help: agriHelp,
	Metadata: []MetaField{
		{Key: "zones", Column: dataset.Zone},
		{Key: "crops", Column: dataset.Crop},
		{Key: "divisions", Column: dataset.Division},
	},
	rules: agriRules,
}

// Movies answers genre, year, director and rating filters over a film
// catalog.
var Movies = Profile{
	Name: "movies",
	Schema: dataset.Schema{
		{Column: dataset.Title, Header: "title"},
		{Column: dataset.Genre, Header: "genre"},
		{Column: dataset.Year, Header: "year", Kind: dataset.Number},
		{Column: dataset.Director, Header: "director"},
		{Column: dataset.Rating, Header: "rating", Kind: dataset.Number},
	},
	Help: moviesHelp,
	Metadata: []MetaField{
		{Key: "genres", Column: dataset.Genre},
		{Key: "directors", Column: dataset.Director},
	},
	rules: movieRules,
}

var profiles = map[string]Profile{
	Agri.Name:   Agri,
	Movies.Name: Movies,
}

// LookupProfile returns the registered profile called name.
func LookupProfile(name string) (Profile, error) {
	p, ok := profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q (known: %v)", ErrUnknownProfile, name, ProfileNames())
	}
	return p, nil
}

// ProfileNames lists the registered profiles, sorted.
func ProfileNames() []string {
	names := make([]string, 0, len(profiles))
	for n := range profiles {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
