package service

import (
	"fmt"
	"sort"

	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
)

// ExtractRegions 後処理済みの勝者グリッドを4近傍で連結成分に分け、領域ごとの統計を求める
// 結果はセル数の降順（同数の場合は行優先の発見順）
func ExtractRegions(result *model.DominanceResult) []model.Region {
	if result == nil || result.Rows <= 0 || result.Cols <= 0 {
		return []model.Region{}
	}

	rows, cols := result.Rows, result.Cols
	labels := result.WinnerGrid()
	cells := make([]*model.CellResult, rows*cols)
	for i := range result.Cells {
		c := &result.Cells[i]
		if c.Row >= 0 && c.Col >= 0 && c.Row < rows && c.Col < cols {
			cells[c.Row*cols+c.Col] = c
		}
	}

	visited := make([]bool, rows*cols)
	stack := make([]int, 0, 64)
	regions := make([]model.Region, 0)

	for start := range labels {
		if visited[start] || labels[start] == "" {
			continue
		}

		label := labels[start]
		bbox := model.BoundingBox{MinRow: rows, MinCol: cols, MaxRow: -1, MaxCol: -1}
		var count int
		var sumRow, sumCol, sumMargin, sumWeight float64
		runnerUps := make(labelTally, 0, 4)

		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			row, col := idx/cols, idx%cols
			count++
			sumRow += float64(row)
			sumCol += float64(col)
			bbox.MinRow = min(bbox.MinRow, row)
			bbox.MaxRow = max(bbox.MaxRow, row)
			bbox.MinCol = min(bbox.MinCol, col)
			bbox.MaxCol = max(bbox.MaxCol, col)
			if c := cells[idx]; c != nil {
				sumMargin += c.Margin
				sumWeight += c.TotalWeight
				if c.RunnerUp != "" {
					runnerUps = runnerUps.add(c.RunnerUp)
				}
			}

			forEachNeighbor4(idx, rows, cols, func(n int) {
				if !visited[n] && labels[n] == label {
					visited[n] = true
					stack = append(stack, n)
				}
			})
		}

		lat, lng := helper.FractionalCellCenter(result.GridSpec, sumRow/float64(count), sumCol/float64(count))
		dominantRunnerUp, _ := runnerUps.best()
		regions = append(regions, model.Region{
			ID:               fmt.Sprintf("%s_%d_%d", label, bbox.MinRow, bbox.MinCol),
			Label:            label,
			CellCount:        count,
			CentroidLat:      lat,
			CentroidLng:      lng,
			BoundingBox:      bbox,
			AvgMargin:        sumMargin / float64(count),
			TotalVotes:       sumWeight,
			DominantRunnerUp: dominantRunnerUp,
		})
	}

	sort.SliceStable(regions, func(i, j int) bool {
		return regions[i].CellCount > regions[j].CellCount
	})
	return regions
}

// FindRegionForCell セルの勝者ラベルと一致し、外接矩形がセルを含む領域を返す
// 連結成分の厳密な所属判定ではなく外接矩形での近似なので、入り組んだ同ラベル領域では別の領域を返しうる
func FindRegionForCell(row, col int, regions []model.Region, result *model.DominanceResult) *model.Region {
	cell := result.CellAt(row, col)
	if !cell.HasWinner() {
		return nil
	}
	for i := range regions {
		if regions[i].Label == cell.Winner && regions[i].BoundingBox.Contains(row, col) {
			return &regions[i]
		}
	}
	return nil
}
