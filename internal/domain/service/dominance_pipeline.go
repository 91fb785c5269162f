package service

import (
	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
)

// RunDominancePipeline 集計 → 平滑化 → 小島統合 を順に実行して結果を返す
// 入力は読み取り専用のスナップショットとして扱う。グリッド定義が不正な場合は panic する
func RunDominancePipeline(req *model.DominanceRequest) *model.DominanceResult {
	req.GridSpec.MustValidate()

	rows, cols, cells := helper.EnumerateGrid(req.GridSpec)
	results := ComputeDominance(cells, req.Votes, req.RadiusKm)

	result := &model.DominanceResult{
		Rows:     rows,
		Cols:     cols,
		Cells:    results,
		GridSpec: req.GridSpec,
	}
	if rows <= 0 || cols <= 0 {
		return result
	}

	labels := result.WinnerGrid()
	SmoothWinnerGrid(labels, rows, cols, req.Smoothing())
	MergeSmallIslands(labels, rows, cols, req.MergeSize())

	// 上書きするのは勝者ラベルのみ。重み・マージンは集計時の値のまま残す
	for i := range result.Cells {
		c := &result.Cells[i]
		c.Winner = labels[c.Row*cols+c.Col]
	}
	return result
}
