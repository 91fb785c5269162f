package service

import (
	"math"
	"sort"

	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
)

// 合計重みがこの値未満の場合、マージンは 1.0（決着済み）として扱う
const nearZeroWeight = 0.001

const prefilterPad = 1 + 1e-9

// labelIndex ラベル（ビールID）を辞書順の連番に対応付ける
// 同点時は辞書順で小さいラベルを優先するため、集計もこの順序で走査する
type labelIndex struct {
	labels []string
	index  map[string]int
}

func newLabelIndex(votes []model.WeightedVote) *labelIndex {
	seen := make(map[string]struct{})
	for i := range votes {
		seen[votes[i].BeerID] = struct{}{}
	}
	labels := make([]string, 0, len(seen))
	for label := range seen {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	index := make(map[string]int, len(labels))
	for i, label := range labels {
		index[label] = i
	}
	return &labelIndex{labels: labels, index: index}
}

// ComputeDominance 各セルについてラベルごとの重みを集計し、勝者・次点・マージンを求める
// 前段で最大半径による矩形フィルタをかけ、通過した投票だけ Haversine 距離で判定する
func ComputeDominance(cells []model.GridCell, votes []model.WeightedVote, radiusKm float64) []model.CellResult {
	results := make([]model.CellResult, len(cells))
	if len(votes) == 0 {
		for i, cell := range cells {
			results[i] = model.CellResult{Row: cell.Row, Col: cell.Col}
		}
		return results
	}

	labels := newLabelIndex(votes)
	voteLabel := make([]int, len(votes))
	voteRadius := make([]float64, len(votes))
	maxRadiusKm := radiusKm
	for i := range votes {
		voteLabel[i] = labels.index[votes[i].BeerID]
		voteRadius[i] = votes[i].EffectiveRadiusKm(radiusKm)
		if voteRadius[i] > maxRadiusKm {
			maxRadiusKm = voteRadius[i]
		}
	}

	// 丸め誤差で境界上の投票を落とさないよう、わずかに広げる
	maxRadiusDegLat := helper.KmToDegLat(maxRadiusKm) * prefilterPad
	maxRadiusDegLng := helper.KmToDegLng(maxRadiusKm, prefilterLat(cells)) * prefilterPad

	weights := make([]float64, len(labels.labels))
	present := make([]bool, len(labels.labels))

	for i, cell := range cells {
		for j := range weights {
			weights[j] = 0
			present[j] = false
		}

		for v := range votes {
			vote := &votes[v]
			if math.Abs(vote.Lat-cell.CenterLat) > maxRadiusDegLat || math.Abs(vote.Lng-cell.CenterLng) > maxRadiusDegLng {
				continue
			}
			if helper.HaversineDistanceKm(vote.Lat, vote.Lng, cell.CenterLat, cell.CenterLng) > voteRadius[v] {
				continue
			}
			weights[voteLabel[v]] += vote.Weight
			present[voteLabel[v]] = true
		}

		results[i] = summarizeCell(cell, labels.labels, weights, present)
	}
	return results
}

// prefilterLat 経度方向のフィルタ幅を決める緯度
// 半径円の経度方向の広がりは高緯度ほど大きいので、最も高緯度のセルに合わせる
func prefilterLat(cells []model.GridCell) float64 {
	maxAbs := 0.0
	for i := range cells {
		if a := math.Abs(cells[i].CenterLat); a > maxAbs {
			maxAbs = a
		}
	}
	return math.Min(maxAbs, 90)
}

// summarizeCell ラベル別重みから勝者・次点・マージンを確定する
func summarizeCell(cell model.GridCell, labels []string, weights []float64, present []bool) model.CellResult {
	result := model.CellResult{Row: cell.Row, Col: cell.Col}

	winner, runnerUp := -1, -1
	total := 0.0
	for i := range labels {
		if !present[i] {
			continue
		}
		w := weights[i]
		total += w
		if result.PerLabelWeight == nil {
			result.PerLabelWeight = make(map[string]float64)
		}
		result.PerLabelWeight[labels[i]] = w

		switch {
		case winner < 0 || w > weights[winner]:
			runnerUp = winner
			winner = i
		case runnerUp < 0 || w > weights[runnerUp]:
			runnerUp = i
		}
	}

	result.TotalWeight = total
	if total == 0 || winner < 0 {
		return result
	}

	result.Winner = labels[winner]
	result.WinnerWeight = weights[winner]
	if runnerUp >= 0 {
		result.RunnerUp = labels[runnerUp]
		result.RunnerUpWeight = weights[runnerUp]
	}
	result.Margin = cellMargin(result.WinnerWeight, result.RunnerUpWeight, total)
	return result
}

// cellMargin 勝者と次点の差を合計重みで正規化する（[0, 1] に収める）
func cellMargin(winnerWeight, runnerUpWeight, total float64) float64 {
	if total < nearZeroWeight {
		return 1.0
	}
	m := (winnerWeight - runnerUpWeight) / total
	if m < 0 {
		return 0
	}
	if m > 1 {
		return 1
	}
	return m
}
