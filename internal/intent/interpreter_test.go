package intent

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kalambet/csvchat/internal/dataset"
)

const salesCSV = `ZO,RO,Crop,Divisions,CME,YTDPV
INDORE,BHOPAL,CORN,TRADE,100,50
INDORE,UJJAIN,SOYBEAN,TRADE,200,80
INDORE,BHOPAL,CORN,TRADE,50,20
HYDERABAD,WARANGAL,PADDY,SEEDS,300,120
HYDERABAD,KARIMNAGAR,CORN,SEEDS,150,60
INDORE,UJJAIN,VEGETABLES,VEG,200,30
`

func newInterpreter(t *testing.T, p Profile, csv string) *Interpreter {
	t.Helper()
	tbl, err := dataset.ReadCSV(strings.NewReader(csv), ',', p.Schema)
	require.NoError(t, err)
	in, err := New(tbl, p)
	require.NoError(t, err)
	return in
}

func agri(t *testing.T) *Interpreter { return newInterpreter(t, Agri, salesCSV) }

func TestInterpret_ZoneCrops(t *testing.T) {
	in := agri(t)

	tests := []struct {
		zone string
		want []string
	}{
		{"INDORE", []string{"CORN", "SOYBEAN", "VEGETABLES"}},
		{"HYDERABAD", []string{"PADDY", "CORN"}},
	}
	for _, tt := range tests {
		t.Run(tt.zone, func(t *testing.T) {
			res := in.Interpret("show all crops in " + tt.zone + " zone")
			assert.Equal(t, ZoneCrops, res.Intent)
			assert.Equal(t, KindList, res.Kind)
			assert.Equal(t, tt.want, res.Values)
			assert.Equal(t, "Crops in "+tt.zone+" zone:\n"+strings.Join(tt.want, "\n"), res.String())
		})
	}
}

func TestInterpret_ZoneCrops_LowerCaseInput(t *testing.T) {
	res := agri(t).Interpret("Show all crops in indore zone")
	assert.Equal(t, []string{"CORN", "SOYBEAN", "VEGETABLES"}, res.Values)
}

func TestInterpret_UnknownZone(t *testing.T) {
	res := agri(t).Interpret("show all crops in PUNE zone")
	assert.Equal(t, ZoneCrops, res.Intent)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "No data found for PUNE zone.", res.String())
	assert.True(t, res.Handled())
}

func TestInterpret_ZoneWinsOverCrop(t *testing.T) {
	res := agri(t).Interpret("show crops in INDORE zone")
	assert.Equal(t, ZoneCrops, res.Intent)

	// "corn" is a known crop, but the zone trigger comes first.
	res = agri(t).Interpret("corn in HYDERABAD zone")
	assert.Equal(t, ZoneCrops, res.Intent)
	assert.Equal(t, []string{"PADDY", "CORN"}, res.Values)
}

func TestInterpret_ZoneTriggerWithoutPattern(t *testing.T) {
	// The zone trigger fires but the pattern does not; no fallback to crop.
	res := agri(t).Interpret("which zone grows corn")
	assert.Equal(t, ZoneCrops, res.Intent)
	assert.Equal(t, KindNotFound, res.Kind)
	assert.Equal(t, "No data found for the requested zone.", res.Message)
}

func TestInterpret_RegionsInZone(t *testing.T) {
	res := agri(t).Interpret("List regions in HYDERABAD")
	assert.Equal(t, RegionsInZone, res.Intent)
	assert.Equal(t, "Regions in HYDERABAD:\nWARANGAL\nKARIMNAGAR", res.String())
}

func TestInterpret_RegionLoosePattern(t *testing.T) {
	// The region pattern takes the first "in X" in the query.
	res := agri(t).Interpret("regions for INDORE in detail")
	assert.Equal(t, RegionsInZone, res.Intent)
	assert.Equal(t, "No regions found for DETAIL.", res.String())
}

func TestInterpret_CropSummary(t *testing.T) {
	res := agri(t).Interpret("Show data for CORN crop")
	require.Equal(t, CropSummary, res.Intent)
	require.Equal(t, KindTable, res.Kind)

	want := "Data for CORN:\n" +
		"ZO         RO          CME  YTDPV\n" +
		"INDORE     BHOPAL      150  70\n" +
		"HYDERABAD  KARIMNAGAR  150  60"
	assert.Equal(t, want, res.String())
	assert.Equal(t, "Data for CORN:", res.Response())
}

func TestInterpret_CropNameWithoutCropWord(t *testing.T) {
	res := agri(t).Interpret("Find all VEGETABLES")
	assert.Equal(t, CropSummary, res.Intent)
	assert.Equal(t, KindTable, res.Kind)
	assert.Equal(t, "Data for VEGETABLES:", res.Message)
}

func TestInterpret_CropTriggerUnknownCrop(t *testing.T) {
	res := agri(t).Interpret("show crops in TRADE division")
	assert.Equal(t, CropSummary, res.Intent, "crop trigger precedes division")
	assert.Equal(t, KindNotFound, res.Kind)
}

func TestInterpret_DivisionCrops(t *testing.T) {
	res := agri(t).Interpret("what is sold in TRADE division")
	assert.Equal(t, DivisionCrops, res.Intent)
	assert.Equal(t, "Crops in TRADE division:\nCORN\nSOYBEAN", res.String())

	res = agri(t).Interpret("what is sold in RETAIL division")
	assert.Equal(t, "No data found for RETAIL division.", res.String())
}

func TestInterpret_TotalSales(t *testing.T) {
	res := agri(t).Interpret("What are the total sales?")
	assert.Equal(t, TotalSales, res.Intent)
	assert.Equal(t, "The total estimated sales are 1,000.00 and total value is 360.00", res.Response())
	assert.Equal(t, 1000.0, res.Data["total_estimated"])
	assert.Equal(t, 360.0, res.Data["total_value"])
}

func TestInterpret_SalesByCrop(t *testing.T) {
	res := agri(t).Interpret("show sales by crop")
	require.Equal(t, SalesByCrop, res.Intent)
	assert.Equal(t, "Here are the sales figures by crop:", res.Response())

	recs, ok := res.Data["crop_sales"].([]map[string]any)
	require.True(t, ok)
	var crops []string
	for _, r := range recs {
		crops = append(crops, r["Crop"].(string))
	}
	// CORN and PADDY tie at 300, SOYBEAN and VEGETABLES at 200; first-seen order wins.
	assert.Equal(t, []string{"CORN", "PADDY", "SOYBEAN", "VEGETABLES"}, crops)
	assert.Equal(t, 300.0, recs[0]["CME"])
	assert.Equal(t, 130.0, recs[0]["YTDPV"])
}

func TestInterpret_SalesByZone(t *testing.T) {
	res := agri(t).Interpret("sales by zone please")
	require.Equal(t, SalesByZone, res.Intent)

	want := "Here are the sales figures by zone:\n" +
		"ZO         CME  YTDPV\n" +
		"INDORE     550  180\n" +
		"HYDERABAD  450  180"
	assert.Equal(t, want, res.String())
}

func TestInterpret_DecimalSums(t *testing.T) {
	csv := `ZO,RO,Crop,Divisions,CME,YTDPV
INDORE,BHOPAL,CORN,TRADE,100.1,0.1
INDORE,BHOPAL,CORN,TRADE,50.2,0.2
`
	in := newInterpreter(t, Agri, csv)

	assert.Equal(t, "Data for CORN:\n"+
		"ZO      RO      CME    YTDPV\n"+
		"INDORE  BHOPAL  150.3  0.3", in.Interpret("show data for corn crop").String())
	assert.Equal(t, "Here are the sales figures by zone:\n"+
		"ZO      CME    YTDPV\n"+
		"INDORE  150.3  0.3", in.Interpret("sales by zone").String())
}

func TestInterpret_TopCrops(t *testing.T) {
	res := agri(t).Interpret("top performing crops")
	require.Equal(t, TopCrops, res.Intent)
	recs := res.Data["top_crops"].([]map[string]any)
	require.Len(t, recs, 4)
	assert.Equal(t, "CORN", recs[0]["Crop"])
	assert.Equal(t, "VEGETABLES", recs[3]["Crop"])
}

func TestInterpret_CropDistribution(t *testing.T) {
	res := agri(t).Interpret("crop distribution")
	require.Equal(t, CropDistribution, res.Intent)
	recs := res.Data["distribution"].([]map[string]any)
	require.Len(t, recs, 5)
	assert.Equal(t, map[string]any{"ZO": "INDORE", "Crop": "CORN", "count": 2}, recs[0])
	assert.Equal(t, "SOYBEAN", recs[1]["Crop"])
}

func TestInterpret_Unrecognized(t *testing.T) {
	res := agri(t).Interpret("what is the weather")
	assert.Equal(t, Unrecognized, res.Intent)
	assert.False(t, res.Handled())
	assert.Equal(t, agriHelp, res.String())

	assert.Equal(t, agriHelp, agri(t).Interpret("").String())
}

func TestInterpret_Deterministic(t *testing.T) {
	in := agri(t)
	for _, q := range []string{"sales by crop", "show data for corn", "crop distribution", "total sales"} {
		assert.Equal(t, in.Interpret(q).String(), in.Interpret(q).String(), q)
	}
}

func TestInterpret_ConcurrentReaders(t *testing.T) {
	in := agri(t)
	queries := []string{
		"show all crops in INDORE zone",
		"show regions in HYDERABAD zone",
		"show data for corn crop",
		"what is sold in TRADE division",
		"total sales",
		"sales by crop",
		"sales by zone",
		"top performing crops",
		"crop distribution",
		"what is the weather",
	}
	want := make(map[string]string, len(queries))
	for _, q := range queries {
		want[q] = in.Interpret(q).String()
	}

	var wg sync.WaitGroup
	errs := make(chan string, 8*len(queries))
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range queries {
				q := queries[(i+w)%len(queries)]
				if got := in.Interpret(q).String(); got != want[q] {
					errs <- q
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for q := range errs {
		t.Errorf("concurrent answer for %q differs from sequential answer", q)
	}
}

func TestRules_AgriOrder(t *testing.T) {
	assert.Equal(t, []Intent{
		TotalSales, SalesByCrop, SalesByZone, TopCrops, CropDistribution,
		ZoneCrops, RegionsInZone, CropSummary, DivisionCrops,
	}, agri(t).Rules())
}

func TestMetadata_Agri(t *testing.T) {
	md := agri(t).Metadata()
	assert.Equal(t, []string{"INDORE", "HYDERABAD"}, md["zones"])
	assert.Equal(t, []string{"CORN", "SOYBEAN", "PADDY", "VEGETABLES"}, md["crops"])
	assert.Equal(t, []string{"TRADE", "SEEDS", "VEG"}, md["divisions"])
}

func TestNew_ProfileMismatch(t *testing.T) {
	tbl, err := dataset.ReadCSV(strings.NewReader(salesCSV), ',', Agri.Schema)
	require.NoError(t, err)

	_, err = New(tbl, Movies)
	assert.ErrorIs(t, err, dataset.ErrMissingColumns)
}

func TestLookupProfile(t *testing.T) {
	p, err := LookupProfile("movies")
	require.NoError(t, err)
	assert.Equal(t, "movies", p.Name)

	_, err = LookupProfile("weather")
	assert.ErrorIs(t, err, ErrUnknownProfile)
	assert.Equal(t, []string{"agri", "movies"}, ProfileNames())
}
