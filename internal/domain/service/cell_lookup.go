package service

import (
	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
)

// FindCellAt 地点を含むセルの結果を返す。グリッド外や結果に含まれない場合は nil
func FindCellAt(lat, lng float64, result *model.DominanceResult) *model.CellResult {
	if result == nil {
		return nil
	}
	row, col, ok := helper.CellIndexAt(result.GridSpec, result.Rows, result.Cols, lat, lng)
	if !ok {
		return nil
	}
	return result.CellAt(row, col)
}

// ContestedCell 接戦セルとその中心座標・距離
type ContestedCell struct {
	Cell       *model.CellResult
	CenterLat  float64
	CenterLng  float64
	DistanceKm float64
}

// FindClosestContested 指定地点から最も近い接戦セル（勝者ありかつ margin <= maxMargin）を探す
// 見つからない場合は nil
func FindClosestContested(lat, lng float64, result *model.DominanceResult, maxMargin float64) *ContestedCell {
	if result == nil {
		return nil
	}

	var best *ContestedCell
	for i := range result.Cells {
		c := &result.Cells[i]
		if !c.HasWinner() || c.TotalWeight <= 0 || c.Margin > maxMargin {
			continue
		}
		cLat, cLng := helper.CellCenter(result.GridSpec, c.Row, c.Col)
		d := helper.HaversineDistanceKm(lat, lng, cLat, cLng)
		if best == nil || d < best.DistanceKm {
			best = &ContestedCell{Cell: c, CenterLat: cLat, CenterLng: cLng, DistanceKm: d}
		}
	}
	return best
}
