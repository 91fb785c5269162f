package model

import (
	"fmt"

	"github.com/paulmach/orb"
)

// DominanceRequest 支配グリッド計算のリクエスト
// Viewport を指定した場合、GridSpec は cell_size_meters だけが使われ、範囲は Viewport から導出される
// SmoothingIterations / MergeIslandSize が未指定(nil)の場合はサーバー設定のデフォルト値を使う
type DominanceRequest struct {
	Votes               []WeightedVote `json:"votes"`
	GridSpec            GridSpec       `json:"grid_spec"`
	Viewport            *Viewport      `json:"viewport,omitempty"`
	RadiusKm            float64        `json:"radius_km"`
	SmoothingIterations *int           `json:"smoothing_iterations,omitempty"`
	MergeIslandSize     *int           `json:"merge_island_size,omitempty"`
}

// Smoothing 平滑化の反復回数（未指定は0）
func (r *DominanceRequest) Smoothing() int {
	if r.SmoothingIterations == nil {
		return 0
	}
	return *r.SmoothingIterations
}

// MergeSize 小島統合の最小サイズ（未指定は0）
func (r *DominanceRequest) MergeSize() int {
	if r.MergeIslandSize == nil {
		return 0
	}
	return *r.MergeIslandSize
}

// Viewport 地図の表示範囲。BufferRatio の割合だけ周囲に広げてグリッドを作る
type Viewport struct {
	MinLat      float64 `json:"min_lat"`
	MaxLat      float64 `json:"max_lat"`
	MinLng      float64 `json:"min_lng"`
	MaxLng      float64 `json:"max_lng"`
	BufferRatio float64 `json:"buffer_ratio"`
}

// Bound 表示範囲を orb.Bound として取得
func (v Viewport) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{v.MinLng, v.MinLat},
		Max: orb.Point{v.MaxLng, v.MaxLat},
	}
}

// Validate 表示範囲の検証
func (v Viewport) Validate() error {
	if !(v.MinLat < v.MaxLat) || !(v.MinLng < v.MaxLng) {
		return fmt.Errorf("%w: viewport の範囲が不正です", ErrInvalidGridSpec)
	}
	if v.MinLat < -90 || v.MaxLat > 90 || v.MinLng < -180 || v.MaxLng > 180 {
		return fmt.Errorf("%w: viewport が緯度経度の範囲外です", ErrInvalidGridSpec)
	}
	if !(v.BufferRatio >= 0) {
		return fmt.Errorf("%w: buffer_ratio は0以上である必要があります", ErrInvalidRequest)
	}
	return nil
}

// DominanceResponse 計算結果のレスポンス
type DominanceResponse struct {
	ComputationID string       `json:"computation_id"`
	Rows          int          `json:"rows"`
	Cols          int          `json:"cols"`
	Cells         []CellResult `json:"cells"`
	GridSpec      GridSpec     `json:"grid_spec"`
	Regions       []Region     `json:"regions"`
	VoteCount     int          `json:"vote_count"`
}

// CellLookupRequest 地点からセルと所属領域を引くリクエスト
type CellLookupRequest struct {
	DominanceRequest
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CellLookupResponse 地点検索のレスポンス。該当なしの場合 Cell / Region は null
type CellLookupResponse struct {
	ComputationID string      `json:"computation_id"`
	Cell          *CellResult `json:"cell"`
	Region        *Region     `json:"region"`
}

// ContestedAreaRequest 最寄りの接戦エリアを探すリクエスト
type ContestedAreaRequest struct {
	DominanceRequest
	Lat       float64  `json:"lat"`
	Lng       float64  `json:"lng"`
	MaxMargin *float64 `json:"max_margin,omitempty"` // 未指定ならデフォルト値を使用
}

// ContestedAreaResponse 接戦エリア検索のレスポンス
type ContestedAreaResponse struct {
	ComputationID string      `json:"computation_id"`
	Cell          *CellResult `json:"cell"`
	Region        *Region     `json:"region"`
	CenterLat     float64     `json:"center_lat"`
	CenterLng     float64     `json:"center_lng"`
	DistanceKm    float64     `json:"distance_km"`
}
