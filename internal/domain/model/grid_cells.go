package model

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GridSpec 緯度経度の矩形範囲と一辺のセルサイズ（メートル）で表すグリッド定義
// 行数・列数は保持せず、必要な時に helper.GridDimensions で導出する
type GridSpec struct {
	MinLat         float64 `json:"min_lat"`
	MaxLat         float64 `json:"max_lat"`
	MinLng         float64 `json:"min_lng"`
	MaxLng         float64 `json:"max_lng"`
	CellSizeMeters float64 `json:"cell_size_meters"`
}

// Validate グリッド定義の前提条件を検証する
func (s GridSpec) Validate() error {
	if !(s.MinLat < s.MaxLat) {
		return fmt.Errorf("%w: min_lat(%f) は max_lat(%f) より小さい必要があります", ErrInvalidGridSpec, s.MinLat, s.MaxLat)
	}
	if !(s.MinLng < s.MaxLng) {
		return fmt.Errorf("%w: min_lng(%f) は max_lng(%f) より小さい必要があります", ErrInvalidGridSpec, s.MinLng, s.MaxLng)
	}
	if !(s.CellSizeMeters > 0) || math.IsInf(s.CellSizeMeters, 1) {
		return fmt.Errorf("%w: cell_size_meters(%f) は正の値である必要があります", ErrInvalidGridSpec, s.CellSizeMeters)
	}
	return nil
}

// MustValidate 前提条件違反は呼び出し側のバグとして panic する
func (s GridSpec) MustValidate() {
	if err := s.Validate(); err != nil {
		panic(err)
	}
}

// CenterLat 範囲中心の緯度
func (s GridSpec) CenterLat() float64 {
	return (s.MinLat + s.MaxLat) / 2
}

// Bound グリッド範囲を orb.Bound として取得
func (s GridSpec) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{s.MinLng, s.MinLat},
		Max: orb.Point{s.MaxLng, s.MaxLat},
	}
}

// GridSpecFromBound orb.Bound とセルサイズから GridSpec を作成
func GridSpecFromBound(bound orb.Bound, cellSizeMeters float64) GridSpec {
	return GridSpec{
		MinLat:         bound.Min.Lat(),
		MaxLat:         bound.Max.Lat(),
		MinLng:         bound.Min.Lon(),
		MaxLng:         bound.Max.Lon(),
		CellSizeMeters: cellSizeMeters,
	}
}

// GridCell グリッドの1セル。行0が最南端で、北に行くほど行番号が増える
type GridCell struct {
	Row       int     `json:"row"`
	Col       int     `json:"col"`
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}
