package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kalambet/csvchat/internal/dataset"
	"github.com/kalambet/csvchat/internal/render"
)

const agriHelp = "I couldn't understand your query. Try asking about:\n" +
	"1. Crops in a specific zone (e.g., 'Show all crops in INDORE zone')\n" +
	"2. Regions in a zone (e.g., 'List regions in HYDERABAD')\n" +
	"3. Specific crop data (e.g., 'Show data for CORN crop')\n" +
	"4. Division information (e.g., 'What is sold in TRADE division')\n" +
	"5. Sales figures (e.g., 'total sales', 'sales by crop', 'sales by zone')\n" +
	"6. Rankings (e.g., 'top performing crops', 'crop distribution')"

const topCropsLimit = 5

var (
	zoneRe     = regexp.MustCompile(`in (\w+) zone`)
	divisionRe = regexp.MustCompile(`in (\w+) division`)

	// regionRe takes the first "in X" anywhere in the query, so "regions for
	// INDORE in detail" looks up DETAIL. Kept as is; see DESIGN.md.
	regionRe = regexp.MustCompile(`in (\w+)`)
)

// agriRules orders the multi-word sales phrases ahead of the single-word
// lookups so that "sales by zone" and "crop distribution" stay reachable.
func agriRules(t *dataset.Table) []Rule {
	crops := t.UniqueValues(dataset.Crop)
	cropRe := literals(crops)
	lowerCrops := make([]string, len(crops))
	for i, c := range crops {
		lowerCrops[i] = strings.ToLower(c)
	}

	return []Rule{
		{
			Intent:   TotalSales,
			Triggers: []string{"total sales"},
			Handle:   func(Params) Result { return totalSales(t) },
		},
		{
			Intent:   SalesByCrop,
			Triggers: []string{"sales by crop"},
			Handle: func(Params) Result {
				return salesBy(t, SalesByCrop, dataset.Crop, "crop_sales", "Here are the sales figures by crop:")
			},
		},
		{
			Intent:   SalesByZone,
			Triggers: []string{"sales by zone"},
			Handle: func(Params) Result {
				return salesBy(t, SalesByZone, dataset.Zone, "zone_sales", "Here are the sales figures by zone:")
			},
		},
		{
			Intent:   TopCrops,
			Triggers: []string{"top performing crops"},
			Handle:   func(Params) Result { return topCrops(t) },
		},
		{
			Intent:   CropDistribution,
			Triggers: []string{"crop distribution"},
			Handle:   func(Params) Result { return cropDistribution(t) },
		},
		{
			Intent:   ZoneCrops,
			Triggers: []string{"zone"},
			Extract:  upperCapture(zoneRe),
			Handle:   func(p Params) Result { return zoneCrops(t, p.Key) },
			Missing:  "No data found for the requested zone.",
		},
		{
			Intent:   RegionsInZone,
			Triggers: []string{"region"},
			Extract:  upperCapture(regionRe),
			Handle:   func(p Params) Result { return regionsInZone(t, p.Key) },
			Missing:  "No data found for the requested region.",
		},
		{
			Intent:   CropSummary,
			Triggers: []string{"crop"},
			Match: func(text string) bool {
				for _, c := range lowerCrops {
					if strings.Contains(text, c) {
						return true
					}
				}
				return false
			},
			Extract: func(text string) (Params, bool) {
				if cropRe == nil {
					return Params{}, false
				}
				m := cropRe.FindString(text)
				if m == "" {
					return Params{}, false
				}
				return Params{Key: strings.ToUpper(m)}, true
			},
			Handle:  func(p Params) Result { return cropSummary(t, p.Key) },
			Missing: "No data found for the requested crop.",
		},
		{
			Intent:   DivisionCrops,
			Triggers: []string{"division"},
			Extract:  upperCapture(divisionRe),
			Handle:   func(p Params) Result { return divisionCrops(t, p.Key) },
			Missing:  "No data found for the requested division.",
		},
	}
}

func upperCapture(re *regexp.Regexp) func(string) (Params, bool) {
	return func(text string) (Params, bool) {
		v, ok := capture(re, text)
		return Params{Key: strings.ToUpper(v)}, ok
	}
}

func zoneCrops(t *dataset.Table, zone string) Result {
	crops := t.FilterEquals(dataset.Zone, zone).UniqueValues(dataset.Crop)
	if len(crops) == 0 {
		return notFound(ZoneCrops, fmt.Sprintf("No data found for %s zone.", zone))
	}
	return Result{
		Intent:  ZoneCrops,
		Kind:    KindList,
		Message: fmt.Sprintf("Crops in %s zone:", zone),
		Values:  crops,
		Data:    map[string]any{"zone": zone, "crops": crops},
	}
}

func regionsInZone(t *dataset.Table, zone string) Result {
	regions := t.FilterEquals(dataset.Zone, zone).UniqueValues(dataset.Region)
	if len(regions) == 0 {
		return notFound(RegionsInZone, fmt.Sprintf("No regions found for %s.", zone))
	}
	return Result{
		Intent:  RegionsInZone,
		Kind:    KindList,
		Message: fmt.Sprintf("Regions in %s:", zone),
		Values:  regions,
		Data:    map[string]any{"zone": zone, "regions": regions},
	}
}

func cropSummary(t *dataset.Table, crop string) Result {
	rows := t.FilterEquals(dataset.Crop, crop)
	if rows.Len() == 0 {
		return notFound(CropSummary, fmt.Sprintf("No data found for %s.", crop))
	}
	g := rows.GroupAggregate(
		[]dataset.Column{dataset.Zone, dataset.Region},
		[]dataset.Aggregate{dataset.Sum(dataset.Estimated), dataset.Sum(dataset.Value)},
	)
	return Result{
		Intent:  CropSummary,
		Kind:    KindTable,
		Message: fmt.Sprintf("Data for %s:", crop),
		Table:   g,
		Data:    map[string]any{"crop": crop, "summary": g.Records()},
	}
}

func divisionCrops(t *dataset.Table, division string) Result {
	crops := t.FilterEquals(dataset.Division, division).UniqueValues(dataset.Crop)
	if len(crops) == 0 {
		return notFound(DivisionCrops, fmt.Sprintf("No data found for %s division.", division))
	}
	return Result{
		Intent:  DivisionCrops,
		Kind:    KindList,
		Message: fmt.Sprintf("Crops in %s division:", division),
		Values:  crops,
		Data:    map[string]any{"division": division, "crops": crops},
	}
}

func totalSales(t *dataset.Table) Result {
	est, val := t.Sum(dataset.Estimated), t.Sum(dataset.Value)
	return Result{
		Intent: TotalSales,
		Kind:   KindText,
		Message: fmt.Sprintf("The total estimated sales are %s and total value is %s",
			render.Amount(est), render.Amount(val)),
		Data: map[string]any{"total_estimated": est, "total_value": val},
	}
}

func salesBy(t *dataset.Table, in Intent, by dataset.Column, key, msg string) Result {
	g := t.GroupAggregate(
		[]dataset.Column{by},
		[]dataset.Aggregate{dataset.Sum(dataset.Estimated), dataset.Sum(dataset.Value)},
	).SortBy(0, true)
	return Result{
		Intent:  in,
		Kind:    KindTable,
		Message: msg,
		Table:   g,
		Data:    map[string]any{key: g.Records()},
	}
}

func topCrops(t *dataset.Table) Result {
	g := t.GroupAggregate(
		[]dataset.Column{dataset.Crop},
		[]dataset.Aggregate{dataset.Sum(dataset.Estimated)},
	).TopN(0, topCropsLimit)
	return Result{
		Intent:  TopCrops,
		Kind:    KindTable,
		Message: fmt.Sprintf("Here are the top %d performing crops based on estimated sales:", topCropsLimit),
		Table:   g,
		Data:    map[string]any{"top_crops": g.Records()},
	}
}

func cropDistribution(t *dataset.Table) Result {
	g := t.GroupAggregate(
		[]dataset.Column{dataset.Zone, dataset.Crop},
		[]dataset.Aggregate{dataset.Count()},
	).SortBy(0, true)
	return Result{
		Intent:  CropDistribution,
		Kind:    KindTable,
		Message: "Here's the distribution of crops across zones:",
		Table:   g,
		Data:    map[string]any{"distribution": g.Records()},
	}
}
