package helper

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"

	"BeerMap-App/internal/domain/model"
)

const (
	earthRadiusKm = 6371.0
	metersPerDeg  = 111320.0
	// 極付近で cos(lat) が 0 に潰れないための下限
	minCosLat = 1e-6
	// 1度あたりの大円距離 (km)。HaversineDistanceKm と同じ球で換算する
	kmPerDegSphere = earthRadiusKm * math.Pi / 180
	// 1回の計算で列挙できるセル数の絶対上限
	maxGridCells = 1 << 31
)

// HaversineDistanceKm は2地点間の大円距離を計算する (km)
func HaversineDistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	rLat1 := lat1 * math.Pi / 180
	rLat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// MetersToDegLat メートルを緯度方向の度数に変換
func MetersToDegLat(m float64) float64 {
	return m / metersPerDeg
}

// MetersToDegLng メートルを指定緯度での経度方向の度数に変換
func MetersToDegLng(m, lat float64) float64 {
	cosLat := math.Cos(lat * math.Pi / 180)
	if cosLat < minCosLat {
		cosLat = minCosLat
	}
	return m / (metersPerDeg * cosLat)
}

// GridDimensionsFloat 行数・列数を丸める前の実数で求める
// セルサイズが極端に小さい場合は非常に大きな値や +Inf になりうるので、int にする前に上限と比較すること
func GridDimensionsFloat(spec model.GridSpec) (rows, cols float64) {
	spec.MustValidate()
	degLat := MetersToDegLat(spec.CellSizeMeters)
	degLng := MetersToDegLng(spec.CellSizeMeters, spec.CenterLat())
	rows = math.Floor((spec.MaxLat - spec.MinLat) / degLat)
	cols = math.Floor((spec.MaxLng - spec.MinLng) / degLng)
	return rows, cols
}

// CellCountExceeds セル総数が maxCells を超えるか（有限でない場合も超過扱い）
func CellCountExceeds(spec model.GridSpec, maxCells int) bool {
	rows, cols := GridDimensionsFloat(spec)
	if math.IsInf(rows, 0) || math.IsNaN(rows) || math.IsInf(cols, 0) || math.IsNaN(cols) {
		return true
	}
	return rows*cols > float64(maxCells)
}

// GridDimensions グリッドの行数・列数を導出する
// 列数は範囲中心の緯度で一度だけ計算し、全行で共通にする
// 行列数が int に収まらないグリッドは ErrInvalidGridSpec で panic する
func GridDimensions(spec model.GridSpec) (rows, cols int) {
	fRows, fCols := GridDimensionsFloat(spec)
	if fRows*fCols > maxGridCells || math.IsNaN(fRows*fCols) {
		panic(fmt.Errorf("%w: セル数 %g x %g は扱えません", model.ErrInvalidGridSpec, fRows, fCols))
	}
	return int(fRows), int(fCols)
}

// rowCenterLat 行中心の緯度
func rowCenterLat(spec model.GridSpec, row float64) float64 {
	return spec.MinLat + (row+0.5)*MetersToDegLat(spec.CellSizeMeters)
}

// CellCenter セル中心の緯度経度を取得する
// 経度方向の間隔はその行自身の緯度で計算する
func CellCenter(spec model.GridSpec, row, col int) (lat, lng float64) {
	lat = rowCenterLat(spec, float64(row))
	lng = spec.MinLng + (float64(col)+0.5)*MetersToDegLng(spec.CellSizeMeters, lat)
	return lat, lng
}

// FractionalCellCenter 小数の行列座標（重心など）を緯度経度に戻す
func FractionalCellCenter(spec model.GridSpec, row, col float64) (lat, lng float64) {
	lat = rowCenterLat(spec, row)
	lng = spec.MinLng + (col+0.5)*MetersToDegLng(spec.CellSizeMeters, lat)
	return lat, lng
}

// EnumerateGrid グリッド定義から全セルを行優先で列挙する
func EnumerateGrid(spec model.GridSpec) (rows, cols int, cells []model.GridCell) {
	rows, cols = GridDimensions(spec)
	if rows <= 0 || cols <= 0 {
		return rows, cols, []model.GridCell{}
	}

	cells = make([]model.GridCell, 0, rows*cols)
	for row := 0; row < rows; row++ {
		lat := rowCenterLat(spec, float64(row))
		degLng := MetersToDegLng(spec.CellSizeMeters, lat)
		for col := 0; col < cols; col++ {
			cells = append(cells, model.GridCell{
				Row:       row,
				Col:       col,
				CenterLat: lat,
				CenterLng: spec.MinLng + (float64(col)+0.5)*degLng,
			})
		}
	}
	return rows, cols, cells
}

// CellIndexAt 任意の地点を含むセルの行列を求める（EnumerateGrid の逆変換）
func CellIndexAt(spec model.GridSpec, rows, cols int, lat, lng float64) (row, col int, ok bool) {
	if spec.Validate() != nil {
		return 0, 0, false
	}
	fRow := math.Floor((lat - spec.MinLat) / MetersToDegLat(spec.CellSizeMeters))
	if fRow < 0 || fRow >= float64(rows) {
		return 0, 0, false
	}
	row = int(fRow)
	degLng := MetersToDegLng(spec.CellSizeMeters, rowCenterLat(spec, float64(row)))
	fCol := math.Floor((lng - spec.MinLng) / degLng)
	if fCol < 0 || fCol >= float64(cols) {
		return 0, 0, false
	}
	return row, int(fCol), true
}

// KmToDegLat 大円距離 km が緯度方向に占める度数
// 子午線方向の距離が最短なので、半径 km の円の緯度方向の広がりはこの値以下になる
func KmToDegLat(km float64) float64 {
	return km / kmPerDegSphere
}

// KmToDegLng 緯度 lat を中心とする半径 km の円が経度方向に占める最大の度数
// 円が極を含む場合は 180 を返す
func KmToDegLng(km, lat float64) float64 {
	cosLat := math.Cos(lat * math.Pi / 180)
	s := math.Sin(km/earthRadiusKm) / math.Max(cosLat, minCosLat)
	if km/earthRadiusKm >= math.Pi/2 || s >= 1 {
		return 180
	}
	return math.Asin(s) * 180 / math.Pi
}

// PadBoundKm 境界ボックスを指定距離(km)だけ全方向に広げる
// 経度方向は範囲内で最も高緯度の側に合わせて広げる
func PadBoundKm(bound orb.Bound, km float64) orb.Bound {
	if km <= 0 {
		return bound
	}
	dLat := KmToDegLat(km)
	maxAbsLat := math.Min(math.Max(math.Abs(bound.Min.Lat()), math.Abs(bound.Max.Lat())), 90)
	dLng := KmToDegLng(km, maxAbsLat)
	return orb.Bound{
		Min: orb.Point{bound.Min.Lon() - dLng, math.Max(bound.Min.Lat()-dLat, -90)},
		Max: orb.Point{bound.Max.Lon() + dLng, math.Min(bound.Max.Lat()+dLat, 90)},
	}
}

// GridSpecForViewport 表示範囲からグリッド定義を作成する
// bufferRatio の割合だけ範囲を広げ、セル数が maxCells 以下になるまでセルサイズを倍にしていく
func GridSpecForViewport(viewport orb.Bound, cellSizeMeters, bufferRatio float64, maxCells int) model.GridSpec {
	if bufferRatio > 0 {
		dLng := (viewport.Max.Lon() - viewport.Min.Lon()) * bufferRatio
		dLat := (viewport.Max.Lat() - viewport.Min.Lat()) * bufferRatio
		viewport = orb.Bound{
			Min: orb.Point{math.Max(viewport.Min.Lon()-dLng, -180), math.Max(viewport.Min.Lat()-dLat, -90)},
			Max: orb.Point{math.Min(viewport.Max.Lon()+dLng, 180), math.Min(viewport.Max.Lat()+dLat, 90)},
		}
	}

	spec := model.GridSpecFromBound(viewport, cellSizeMeters)
	if maxCells <= 0 {
		return spec
	}
	for CellCountExceeds(spec, maxCells) {
		spec.CellSizeMeters *= 2
	}
	return spec
}

// PlaceKey GPS座標を丸めた粗い地点キーを作成する（レート制限などで利用）
func PlaceKey(lat, lng float64, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	f := math.Pow(10, float64(decimals))
	rLat := math.Round(lat*f) / f
	rLng := math.Round(lng*f) / f
	// -0 を避ける
	if rLat == 0 {
		rLat = 0
	}
	if rLng == 0 {
		rLng = 0
	}
	return fmt.Sprintf("%.*f:%.*f", decimals, rLat, decimals, rLng)
}
