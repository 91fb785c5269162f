package helper

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BeerMap-App/internal/domain/model"
)

func munichSpec() model.GridSpec {
	return model.GridSpec{MinLat: 48.0, MaxLat: 48.3, MinLng: 11.3, MaxLng: 11.8, CellSizeMeters: 1000}
}

func TestHaversineDistanceKm(t *testing.T) {
	assert.InDelta(t, 0, HaversineDistanceKm(48.137, 11.5753, 48.137, 11.5753), 1e-9)
	// 緯度1度 = 6371 * π / 180 km
	assert.InDelta(t, 111.19493, HaversineDistanceKm(48, 11, 49, 11), 1e-4)
	// ミュンヘン - ベルリン 約504km
	assert.InDelta(t, 504, HaversineDistanceKm(48.1370, 11.5753, 52.5200, 13.4050), 3)
}

func TestMetersToDeg(t *testing.T) {
	assert.InDelta(t, 1.0, MetersToDegLat(111320), 1e-12)
	assert.InDelta(t, 2.0, MetersToDegLng(111320, 60), 1e-9)
	assert.InDelta(t, 1.0, MetersToDegLng(111320, 0), 1e-12)

	polar := MetersToDegLng(1000, 90)
	assert.False(t, math.IsInf(polar, 0))
	assert.False(t, math.IsNaN(polar))
}

func TestEnumerateGrid(t *testing.T) {
	spec := munichSpec()
	rows, cols, cells := EnumerateGrid(spec)

	assert.Equal(t, 33, rows)
	assert.Equal(t, 37, cols)
	require.Len(t, cells, rows*cols)

	// 行優先、行0が最南端
	assert.Equal(t, 0, cells[0].Row)
	assert.Equal(t, 1, cells[1].Col)
	assert.Equal(t, 1, cells[cols].Row)
	assert.Less(t, cells[0].CenterLat, cells[len(cells)-1].CenterLat)
	assert.InDelta(t, spec.MinLat+MetersToDegLat(500), cells[0].CenterLat, 1e-12)

	// 経度方向の間隔は行ごとの緯度で変わる
	southSpacing := cells[1].CenterLng - cells[0].CenterLng
	last := (rows - 1) * cols
	northSpacing := cells[last+1].CenterLng - cells[last].CenterLng
	assert.Greater(t, northSpacing, southSpacing)
}

func TestEnumerateGrid_SmallerThanOneCell(t *testing.T) {
	spec := model.GridSpec{MinLat: 48, MaxLat: 48.001, MinLng: 11, MaxLng: 11.001, CellSizeMeters: 1000}
	rows, cols, cells := EnumerateGrid(spec)
	assert.Equal(t, 0, rows)
	assert.Equal(t, 0, cols)
	assert.Empty(t, cells)
}

func TestEnumerateGrid_InvalidSpecPanics(t *testing.T) {
	invalid := []model.GridSpec{
		{MinLat: 48, MaxLat: 48, MinLng: 11, MaxLng: 12, CellSizeMeters: 100},
		{MinLat: 48, MaxLat: 49, MinLng: 12, MaxLng: 11, CellSizeMeters: 100},
		{MinLat: 48, MaxLat: 49, MinLng: 11, MaxLng: 12, CellSizeMeters: 0},
	}
	for _, spec := range invalid {
		assert.Panics(t, func() { EnumerateGrid(spec) })
	}
}

func TestCellIndexAt_RoundTrip(t *testing.T) {
	spec := munichSpec()
	rows, cols, cells := EnumerateGrid(spec)
	for _, cell := range cells {
		row, col, ok := CellIndexAt(spec, rows, cols, cell.CenterLat, cell.CenterLng)
		require.True(t, ok)
		assert.Equal(t, cell.Row, row)
		assert.Equal(t, cell.Col, col)

		lat, lng := CellCenter(spec, cell.Row, cell.Col)
		assert.Equal(t, cell.CenterLat, lat)
		assert.Equal(t, cell.CenterLng, lng)
	}

	_, _, ok := CellIndexAt(spec, rows, cols, 47.9, 11.5)
	assert.False(t, ok)
	_, _, ok = CellIndexAt(spec, rows, cols, 48.1, 12.5)
	assert.False(t, ok)
}

func TestPadBoundKm(t *testing.T) {
	bound := munichSpec().Bound()
	padded := PadBoundKm(bound, 20)

	assert.True(t, padded.Contains(bound.Min))
	assert.True(t, padded.Contains(bound.Max))
	assert.InDelta(t, bound.Min.Lat()-KmToDegLat(20), padded.Min.Lat(), 1e-12)
	assert.Equal(t, bound, PadBoundKm(bound, 0))

	// 20km 北の点は広げた範囲に入る
	north := orb.Point{11.5, 48.3 + 19.0/111.19}
	assert.True(t, padded.Contains(north))
}

func TestGridSpecForViewport(t *testing.T) {
	viewport := orb.Bound{Min: orb.Point{11.3, 48.0}, Max: orb.Point{11.8, 48.3}}

	spec := GridSpecForViewport(viewport, 250, 0.1, 500)
	rows, cols := GridDimensions(spec)
	assert.LessOrEqual(t, rows*cols, 500)
	assert.Greater(t, spec.CellSizeMeters, 250.0)
	assert.InDelta(t, 0, math.Mod(spec.CellSizeMeters, 250), 1e-9)
	assert.InDelta(t, 48.0-0.03, spec.MinLat, 1e-9)
	assert.InDelta(t, 11.8+0.05, spec.MaxLng, 1e-9)

	uncapped := GridSpecForViewport(viewport, 250, 0, 0)
	assert.Equal(t, 250.0, uncapped.CellSizeMeters)
	assert.Equal(t, 48.0, uncapped.MinLat)
}

func TestPlaceKey(t *testing.T) {
	assert.Equal(t, "48.14:11.58", PlaceKey(48.13701, 11.57532, 2))
	assert.Equal(t, "48.137:11.575", PlaceKey(48.13701, 11.57532, 3))
	assert.Equal(t, "0.00:0.00", PlaceKey(-0.001, 0.0001, 2))
	assert.Equal(t, PlaceKey(48.13702, 11.57531, 3), PlaceKey(48.13704, 11.57529, 3))
}

func TestKmToDeg_CoversHaversineCircle(t *testing.T) {
	const radiusKm = 20.0
	lat, lng := 48.137, 11.5753

	// 真北・真東に半径ちょうどの点が、換算した幅の内側に収まる
	dLat := KmToDegLat(radiusKm)
	assert.InDelta(t, radiusKm, HaversineDistanceKm(lat, lng, lat+dLat, lng), 1e-9)

	dLng := KmToDegLng(radiusKm, lat)
	sameLat := 2 * math.Asin(math.Sin(radiusKm/2/earthRadiusKm)/math.Cos(lat*math.Pi/180)) * 180 / math.Pi
	assert.GreaterOrEqual(t, dLng, sameLat)
	assert.LessOrEqual(t, HaversineDistanceKm(lat, lng, lat, lng+sameLat), radiusKm+1e-9)

	assert.Equal(t, 180.0, KmToDegLng(radiusKm, 90))
	assert.Equal(t, 180.0, KmToDegLng(20000, 0))
}

func TestCellCountExceeds(t *testing.T) {
	spec := model.GridSpec{MinLat: 48, MaxLat: 49, MinLng: 11, MaxLng: 12, CellSizeMeters: 1000}
	assert.False(t, CellCountExceeds(spec, 100000))
	assert.True(t, CellCountExceeds(spec, 1000))

	for _, cs := range []float64{1e-300, 3e-7} {
		spec.CellSizeMeters = cs
		assert.True(t, CellCountExceeds(spec, 40000))
		assert.Panics(t, func() { GridDimensions(spec) })
	}
}
