package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/paulmach/orb"

	"BeerMap-App/internal/domain/model"
	"BeerMap-App/internal/domain/repository"
	"BeerMap-App/internal/infrastructure/database"
)

type PostgresVotesRepository struct {
	client *database.PostgreSQLClient
}

func NewPostgresVotesRepository(client *database.PostgreSQLClient) repository.VotesRepository {
	return &PostgresVotesRepository{
		client: client,
	}
}

// VoteResult SELECT結果を受け取るための構造体
type VoteResult struct {
	ID       string
	Lat      float64
	Lng      float64
	BeerID   string
	Weight   float64
	RadiusKm sql.NullFloat64
	Source   sql.NullString
}

// ToWeightedVote VoteResultをmodel.WeightedVoteに変換
func (vr *VoteResult) ToWeightedVote() model.WeightedVote {
	vote := model.WeightedVote{
		ID:     vr.ID,
		Lat:    vr.Lat,
		Lng:    vr.Lng,
		BeerID: vr.BeerID,
		Weight: vr.Weight,
	}
	if vr.RadiusKm.Valid {
		vote.RadiusKm = vr.RadiusKm.Float64
	}
	if vr.Source.Valid {
		vote.Source = vr.Source.String
	}
	return vote
}

// GetVotesInBounds 境界ボックス内の投票を取得する
func (r *PostgresVotesRepository) GetVotesInBounds(ctx context.Context, bound orb.Bound) ([]model.WeightedVote, error) {
	br := NewBoundRange(bound)
	query := `
		SELECT id, lat, lng, beer_id, weight, radius_km, source
		FROM ` + votesTable + `
		WHERE lat BETWEEN $1 AND $2
		  AND lng BETWEEN $3 AND $4
		ORDER BY id
	`

	rows, err := r.client.DB.QueryContext(ctx, query, br.MinLat, br.MaxLat, br.MinLng, br.MaxLng)
	if err != nil {
		return nil, fmt.Errorf("投票データの取得失敗: %w", err)
	}
	defer rows.Close()

	votes := make([]model.WeightedVote, 0)
	for rows.Next() {
		var result VoteResult
		if err := rows.Scan(&result.ID, &result.Lat, &result.Lng, &result.BeerID,
			&result.Weight, &result.RadiusKm, &result.Source); err != nil {
			return nil, fmt.Errorf("投票データスキャンエラー: %w", err)
		}
		votes = append(votes, result.ToWeightedVote())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("投票データの読み込み失敗: %w", err)
	}

	return votes, nil
}
