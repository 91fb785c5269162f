package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
)

var smallSpec = model.GridSpec{MinLat: 48.10, MaxLat: 48.13, MinLng: 11.50, MaxLng: 11.55, CellSizeMeters: 1000}

// resultFromGrid ラベル配列から DominanceResult を組み立てる（南の行から順に指定）
func resultFromGrid(spec model.GridSpec, rows ...string) *model.DominanceResult {
	labels := parseGrid(rows...)
	cols := len(rows[0])
	result := &model.DominanceResult{Rows: len(rows), Cols: cols, GridSpec: spec}
	for i, l := range labels {
		c := model.CellResult{Row: i / cols, Col: i % cols, Winner: l}
		if l != "" {
			c.TotalWeight = 2
			c.WinnerWeight = 2
			c.Margin = 1
		}
		result.Cells = append(result.Cells, c)
	}
	return result
}

func TestExtractRegions_SingleLabelGrid(t *testing.T) {
	result := resultFromGrid(smallSpec, "AAA", "AAA", "AAA")
	for i := range result.Cells {
		c := &result.Cells[i]
		c.TotalWeight = float64(i + 1)
		c.Margin = 0.1 * float64(i%3+1)
		if i < 5 {
			c.RunnerUp = "B"
		} else {
			c.RunnerUp = "C"
		}
	}

	regions := ExtractRegions(result)

	require.Len(t, regions, 1)
	r := regions[0]
	assert.Equal(t, "A_0_0", r.ID)
	assert.Equal(t, "A", r.Label)
	assert.Equal(t, 9, r.CellCount)
	assert.Equal(t, model.BoundingBox{MinRow: 0, MaxRow: 2, MinCol: 0, MaxCol: 2}, r.BoundingBox)
	assert.InDelta(t, 0.2, r.AvgMargin, 1e-12)
	assert.InDelta(t, 45.0, r.TotalVotes, 1e-12)
	assert.Equal(t, "B", r.DominantRunnerUp)

	lat, lng := helper.CellCenter(smallSpec, 1, 1)
	assert.InDelta(t, lat, r.CentroidLat, 1e-9)
	assert.InDelta(t, lng, r.CentroidLng, 1e-9)
}

func TestExtractRegions_SortedByCellCount(t *testing.T) {
	result := resultFromGrid(smallSpec, "ABB", "BBB", "BBA")

	regions := ExtractRegions(result)

	require.Len(t, regions, 3)
	assert.Equal(t, "B_0_0", regions[0].ID)
	assert.Equal(t, 7, regions[0].CellCount)
	assert.Equal(t, "A_0_0", regions[1].ID)
	assert.Equal(t, "A_2_2", regions[2].ID)
	assert.Empty(t, regions[1].DominantRunnerUp)
}

func TestExtractRegions_SkipsEmptyCells(t *testing.T) {
	result := resultFromGrid(smallSpec, "A.A", "...", "A.A")

	regions := ExtractRegions(result)

	require.Len(t, regions, 4)
	total := 0
	for _, r := range regions {
		assert.Equal(t, 1, r.CellCount)
		total += r.CellCount
	}
	assert.Equal(t, 4, total)
}

func TestExtractRegions_EmptyResult(t *testing.T) {
	assert.Empty(t, ExtractRegions(nil))
	assert.Empty(t, ExtractRegions(&model.DominanceResult{GridSpec: smallSpec}))
}

func TestFindRegionForCell(t *testing.T) {
	result := resultFromGrid(smallSpec, "ABB", "BBB", "BB.")
	regions := ExtractRegions(result)

	region := FindRegionForCell(1, 1, regions, result)
	require.NotNil(t, region)
	assert.Equal(t, "B", region.Label)

	region = FindRegionForCell(0, 0, regions, result)
	require.NotNil(t, region)
	assert.Equal(t, "A_0_0", region.ID)

	assert.Nil(t, FindRegionForCell(2, 2, regions, result))
	assert.Nil(t, FindRegionForCell(5, 5, regions, result))
}
