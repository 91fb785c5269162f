package repository

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/paulmach/orb"

	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
	"BeerMap-App/internal/domain/repository"
	"BeerMap-App/internal/logging"
)

// FirestoreVotesRepository Firestoreに保存されたチェックイン投票を読むリポジトリ
type FirestoreVotesRepository struct {
	client *firestore.Client
}

// NewFirestoreVotesRepository 新しいFirestoreVotesRepositoryインスタンスを作成
func NewFirestoreVotesRepository(client *firestore.Client) repository.VotesRepository {
	return &FirestoreVotesRepository{
		client: client,
	}
}

// FirestoreVote Firestoreドキュメントの構造
type FirestoreVote struct {
	Lat      float64 `firestore:"lat"`
	Lng      float64 `firestore:"lng"`
	BeerID   string  `firestore:"beer_id"`
	Weight   float64 `firestore:"weight"`
	RadiusKm float64 `firestore:"radius_km"`
	Source   string  `firestore:"source"`
	UserID   string  `firestore:"user_id"`
}

// checkinPlaceDecimals 同一地点とみなす座標の丸め桁数（約100m）
const checkinPlaceDecimals = 3

// checkin ドキュメントIDと内容の組
type checkin struct {
	id   string
	vote FirestoreVote
}

// dedupeCheckins 同じユーザーが同じ地点で同じビールに繰り返したチェックインを1件にまとめる
// 残すのは重みが最大のもの（同じ重みならID順で先のもの）。user_id のないドキュメントはまとめない
func dedupeCheckins(checkins []checkin) []model.WeightedVote {
	kept := make(map[string]int, len(checkins))
	votes := make([]model.WeightedVote, 0, len(checkins))
	for _, c := range checkins {
		vote := c.vote.ToWeightedVote(c.id)
		if c.vote.UserID == "" {
			votes = append(votes, vote)
			continue
		}

		key := c.vote.UserID + "|" + c.vote.BeerID + "|" + helper.PlaceKey(c.vote.Lat, c.vote.Lng, checkinPlaceDecimals)
		idx, ok := kept[key]
		if !ok {
			kept[key] = len(votes)
			votes = append(votes, vote)
			continue
		}
		prev := votes[idx]
		if vote.Weight > prev.Weight || (vote.Weight == prev.Weight && vote.ID < prev.ID) {
			votes[idx] = vote
		}
	}
	return votes
}

// ToWeightedVote ドキュメントIDを付けて model.WeightedVote に変換
func (fv *FirestoreVote) ToWeightedVote(id string) model.WeightedVote {
	return model.WeightedVote{
		ID:       id,
		Lat:      fv.Lat,
		Lng:      fv.Lng,
		BeerID:   fv.BeerID,
		Weight:   fv.Weight,
		RadiusKm: fv.RadiusKm,
		Source:   fv.Source,
	}
}

// GetVotesInBounds 緯度で範囲検索し、経度はアプリ側で絞り込む
// Firestore は範囲条件を1フィールドにしか掛けられないため
func (r *FirestoreVotesRepository) GetVotesInBounds(ctx context.Context, bound orb.Bound) ([]model.WeightedVote, error) {
	br := NewBoundRange(bound)
	docs, err := r.client.Collection(votesTable).
		Where("lat", ">=", br.MinLat).
		Where("lat", "<=", br.MaxLat).
		Documents(ctx).
		GetAll()
	if err != nil {
		return nil, fmt.Errorf("投票データの取得に失敗しました: %w", err)
	}

	checkins := make([]checkin, 0, len(docs))
	for _, doc := range docs {
		var fv FirestoreVote
		if err := doc.DataTo(&fv); err != nil {
			logging.Log.Warnf("⚠️ 投票ドキュメント %s の変換に失敗、スキップ: %v", doc.Ref.ID, err)
			continue
		}
		checkins = append(checkins, checkin{id: doc.Ref.ID, vote: fv})
	}

	votes := FilterVotesInBound(dedupeCheckins(checkins), bound)
	if removed := len(checkins) - len(votes); removed > 0 {
		logging.Log.Debugf("🔁 重複・範囲外のチェックイン %d 件を除外", removed)
	}
	SortVotesByID(votes)
	return votes, nil
}
