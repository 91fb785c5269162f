package repository

import (
	"sort"
	"strconv"

	"github.com/paulmach/orb"

	"BeerMap-App/internal/domain/model"
)

// votesTable 重み付き投票のテーブル / コレクション名
const votesTable = "weighted_votes"

// BoundRange orb.Bound を検索条件用の緯度経度範囲に分解する
type BoundRange struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

// NewBoundRange orb.Bound から BoundRange を作成
func NewBoundRange(bound orb.Bound) BoundRange {
	return BoundRange{
		MinLat: bound.Min.Lat(),
		MaxLat: bound.Max.Lat(),
		MinLng: bound.Min.Lon(),
		MaxLng: bound.Max.Lon(),
	}
}

// formatCoord PostgREST のフィルタ値として座標を文字列化
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FilterVotesInBound 境界ボックス内の投票だけを残す（境界上も含む）
func FilterVotesInBound(votes []model.WeightedVote, bound orb.Bound) []model.WeightedVote {
	filtered := make([]model.WeightedVote, 0, len(votes))
	for _, v := range votes {
		if bound.Contains(orb.Point{v.Lng, v.Lat}) {
			filtered = append(filtered, v)
		}
	}
	return filtered
}

// SortVotesByID 取得元によらず同じ順序になるよう ID 順に並べる
func SortVotesByID(votes []model.WeightedVote) {
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].ID < votes[j].ID
	})
}
