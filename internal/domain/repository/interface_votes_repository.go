package repository

import (
	"context"

	"github.com/paulmach/orb"

	"BeerMap-App/internal/domain/model"
)

// VotesRepository 計算に使う重み付き投票のスナップショットを取得する
type VotesRepository interface {
	GetVotesInBounds(ctx context.Context, bound orb.Bound) ([]model.WeightedVote, error)
}
