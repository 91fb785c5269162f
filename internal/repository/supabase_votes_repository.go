package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/supabase-community/postgrest-go"

	"BeerMap-App/internal/domain/model"
	"BeerMap-App/internal/domain/repository"
	"BeerMap-App/internal/infrastructure/database"
	"BeerMap-App/internal/logging"
)

type SupabaseVotesRepository struct {
	client *database.SupabaseClient
}

func NewSupabaseVotesRepository(client *database.SupabaseClient) repository.VotesRepository {
	return &SupabaseVotesRepository{
		client: client,
	}
}

// supabasePageSize 1リクエストで取得する最大行数
// PostgREST 側の max-rows がこれより小さくても、空ページが返るまで読み進める
const supabasePageSize = 1000

// supabaseMaxPages 1スナップショットで読むページ数の上限
const supabaseMaxPages = 200

// GetVotesInBounds 境界ボックス内の投票を PostgREST 経由でページ単位に取得する
func (r *SupabaseVotesRepository) GetVotesInBounds(ctx context.Context, bound orb.Bound) ([]model.WeightedVote, error) {
	br := NewBoundRange(bound)
	votes, err := fetchVotePages(ctx, supabasePageSize, supabaseMaxPages, func(from, to int) ([]byte, error) {
		data, _, err := r.client.GetClient().From(votesTable).
			Select("id,lat,lng,beer_id,weight,radius_km,source", "", false).
			Gte("lat", formatCoord(br.MinLat)).
			Lte("lat", formatCoord(br.MaxLat)).
			Gte("lng", formatCoord(br.MinLng)).
			Lte("lng", formatCoord(br.MaxLng)).
			Order("id", &postgrest.OrderOpts{Ascending: true}).
			Range(from, to, "").
			Execute()
		return data, err
	})
	if err != nil {
		return nil, err
	}
	SortVotesByID(votes)
	return votes, nil
}

// fetchVotePages offset を進めながら空ページが返るまで取得する
// 上限ページ数に達した場合は打ち切ってログに残す
func fetchVotePages(ctx context.Context, pageSize, maxPages int, fetch func(from, to int) ([]byte, error)) ([]model.WeightedVote, error) {
	votes := make([]model.WeightedVote, 0)
	offset := 0
	for page := 0; page < maxPages; page++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("投票データの取得を中断: %w", err)
		}
		data, err := fetch(offset, offset+pageSize-1)
		if err != nil {
			return nil, fmt.Errorf("投票データの取得失敗 (offset=%d): %w", offset, err)
		}
		batch, err := decodeSupabaseVotes(data)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			return votes, nil
		}
		votes = append(votes, batch...)
		offset += len(batch)
	}
	logging.Log.Warnf("⚠️ 投票データが %d ページ(%d件)に達したため以降を打ち切りました", maxPages, len(votes))
	return votes, nil
}

// decodeSupabaseVotes PostgREST のレスポンスを投票一覧に変換
func decodeSupabaseVotes(data []byte) ([]model.WeightedVote, error) {
	var votes []model.WeightedVote
	if err := json.Unmarshal(data, &votes); err != nil {
		return nil, fmt.Errorf("投票データのJSONアンマーシャル失敗: %w", err)
	}
	if votes == nil {
		votes = []model.WeightedVote{}
	}
	return votes, nil
}
