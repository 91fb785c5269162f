package model

// WeightedVote 影響源となる重み付き投票（チェックイン・ホーム投票など）
// 重みの算出（ホームブースト、チームブースト、デュエル補正）は外部で済ませた状態で渡される
type WeightedVote struct {
	ID       string  `json:"id" db:"id"`
	Lat      float64 `json:"lat" db:"lat"`
	Lng      float64 `json:"lng" db:"lng"`
	BeerID   string  `json:"beer_id" db:"beer_id"` // 競合するラベル
	Weight   float64 `json:"weight" db:"weight"`
	RadiusKm float64 `json:"radius_km" db:"radius_km"` // 0以下ならリクエストの radius_km を使用
	Source   string  `json:"source" db:"source"`       // "home", "checkin", "duel" など
}

// EffectiveRadiusKm 投票ごとの有効半径を取得
func (v *WeightedVote) EffectiveRadiusKm(defaultRadiusKm float64) float64 {
	if v.RadiusKm > 0 {
		return v.RadiusKm
	}
	return defaultRadiusKm
}
