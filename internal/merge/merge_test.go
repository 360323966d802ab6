package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbital-group/meteor-cli/internal/model"
)

func coord(v float64) *float64 { return &v }

func TestMerge_CoordinatesWinRegardlessOfOrder(t *testing.T) {
	bare := model.CatalogRecord{Name: "Hoba"}
	located := model.CatalogRecord{Name: "Hoba", Lat: coord(-19.58), Long: coord(17.92)}

	forward := Merge([]model.CatalogRecord{bare}, []model.CatalogRecord{located})
	reverse := Merge([]model.CatalogRecord{located}, []model.CatalogRecord{bare})

	require.Len(t, forward.Records, 1)
	require.Len(t, reverse.Records, 1)
	assert.Equal(t, forward.Records, reverse.Records)
	require.NotNil(t, forward.Records[0].Lat)
	assert.InDelta(t, -19.58, *forward.Records[0].Lat, 0.001)
}

func TestMerge_SurvivorshipDiscardsLosersFields(t *testing.T) {
	// The winner's missing id is NOT filled from the loser: whole-record
	// survivorship, an accepted lossy tradeoff.
	withID := model.CatalogRecord{Name: "Hoba", ID: model.ResolvedID(57165)}
	withCoords := model.CatalogRecord{Name: "Hoba", Lat: coord(-19.58), Long: coord(17.92)}

	res := Merge([]model.CatalogRecord{withID}, []model.CatalogRecord{withCoords})

	require.Len(t, res.Records, 1)
	assert.True(t, res.Records[0].HasCoordinates())
	assert.False(t, res.Records[0].ID.Resolved())
}

func TestMerge_ResolvedIDBreaksCoordinateTies(t *testing.T) {
	a := model.CatalogRecord{Name: "Allende"}
	b := model.CatalogRecord{Name: "Allende", ID: model.ResolvedID(2278)}

	res := Merge([]model.CatalogRecord{a}, []model.CatalogRecord{b})
	require.Len(t, res.Records, 1)
	assert.Equal(t, int64(2278), res.Records[0].ID.Int64())
}

func TestMerge_NameMatchIsCaseInsensitive(t *testing.T) {
	res := Merge(
		[]model.CatalogRecord{{Name: "ALLENDE"}},
		[]model.CatalogRecord{{Name: "Allende", ID: model.ResolvedID(2278)}},
	)
	require.Len(t, res.Records, 1)
	assert.Equal(t, 1, res.Duplicates)
}

func TestMerge_DistinctNamesAllSurvive(t *testing.T) {
	res := Merge(
		[]model.CatalogRecord{{Name: "Hoba"}, {Name: "Allende"}},
		[]model.CatalogRecord{{Name: "Chelyabinsk"}},
	)
	assert.Len(t, res.Records, 3)
	assert.Equal(t, 0, res.Duplicates)

	// Output order is deterministic (sorted by comparison key).
	assert.Equal(t, "Allende", res.Records[0].Name)
	assert.Equal(t, "Chelyabinsk", res.Records[1].Name)
	assert.Equal(t, "Hoba", res.Records[2].Name)
}

func TestMerge_Deterministic(t *testing.T) {
	base := []model.CatalogRecord{
		{Name: "Hoba"},
		{Name: "hoba", ID: model.ResolvedID(57165)},
	}
	first := Merge(base, nil)
	second := Merge(base, nil)
	assert.Equal(t, first.Records, second.Records)
}

func TestMerge_EmptyInputs(t *testing.T) {
	res := Merge(nil, nil)
	assert.Empty(t, res.Records)

	res = Merge(nil, []model.CatalogRecord{{Name: "Hoba"}})
	assert.Len(t, res.Records, 1)
}

func TestMerge_ScenarioHoba(t *testing.T) {
	// Merging {Hoba, lat:null} with {Hoba, lat:-19.58} keeps the
	// coordinate-bearing record whichever side it came from.
	res := Merge(
		[]model.CatalogRecord{{Name: "Hoba"}},
		[]model.CatalogRecord{{Name: "Hoba", Lat: coord(-19.58), Long: coord(17.92)}},
	)
	require.Len(t, res.Records, 1)
	require.NotNil(t, res.Records[0].Lat)
	assert.InDelta(t, -19.58, *res.Records[0].Lat, 0.001)
}
