// Package intent maps free-text queries to dataset operations through an
// ordered cascade of keyword rules.
package intent

import (
	"strings"

	"github.com/kalambet/csvchat/internal/render"
)

// Intent names the query category a rule handles.
type Intent string

const (
	ZoneCrops        Intent = "zone_crops"
	RegionsInZone    Intent = "regions_in_zone"
	CropSummary      Intent = "crop_summary"
	DivisionCrops    Intent = "division_crops"
	TotalSales       Intent = "total_sales"
	SalesByCrop      Intent = "sales_by_crop"
	SalesByZone      Intent = "sales_by_zone"
	TopCrops         Intent = "top_crops"
	CropDistribution Intent = "crop_distribution"
	GenreFilter      Intent = "genre_filter"
	YearFilter       Intent = "year_filter"
	DirectorFilter   Intent = "director_filter"
	RatingFilter     Intent = "rating_filter"
	Unrecognized     Intent = "unrecognized"
)

// Params carries what a rule's extractor pulled out of the query.
type Params struct {
	Key    string
	Op     string
	Number float64
}

// Rule is one step of the cascade. A rule fires when any trigger phrase is a
// substring of the lower-cased query, or when Match reports true. Once a rule
// fires no later rule is tried.
type Rule struct {
	Intent   Intent
	Triggers []string
	Match    func(text string) bool

	// Extract pulls parameters from the lower-cased query. Nil means the
	// rule takes none. A false return yields the Missing message.
	Extract func(text string) (Params, bool)
	Handle  func(p Params) Result
	Missing string
}

func (r Rule) fires(text string) bool {
	for _, t := range r.Triggers {
		if strings.Contains(text, t) {
			return true
		}
	}
	return r.Match != nil && r.Match(text)
}

// Kind classifies a Result for display.
type Kind string

const (
	KindText         Kind = "text"
	KindList         Kind = "list"
	KindTable        Kind = "table"
	KindNotFound     Kind = "not_found"
	KindUnrecognized Kind = "unrecognized"
)

// Result is the outcome of one query. Every non-fatal condition, including
// no matching rows and unrecognized input, is a Result rather than an error.
type Result struct {
	Intent  Intent
	Kind    Kind
	Message string
	Values  []string
	Table   render.Tabular
	Data    map[string]any
}

// String renders the full display text.
func (r Result) String() string {
	switch r.Kind {
	case KindList:
		return render.Lines(r.Message, r.Values)
	case KindTable:
		if r.Table == nil {
			return r.Message
		}
		return r.Message + "\n" + render.Table(r.Table)
	}
	return r.Message
}

// Response is the text for API clients, which receive tabular rows as
// structured data alongside it.
func (r Result) Response() string {
	if r.Kind == KindTable && r.Data != nil {
		return r.Message
	}
	return r.String()
}

// Handled reports whether a rule fired for the query.
func (r Result) Handled() bool { return r.Kind != KindUnrecognized }

func notFound(in Intent, msg string) Result {
	return Result{Intent: in, Kind: KindNotFound, Message: msg}
}
