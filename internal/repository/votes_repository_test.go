package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"BeerMap-App/internal/domain/model"
)

func TestVoteResult_ToWeightedVote(t *testing.T) {
	tests := []struct {
		name     string
		result   VoteResult
		expected model.WeightedVote
	}{
		{
			name: "全カラムあり",
			result: VoteResult{
				ID: "v1", Lat: 48.137, Lng: 11.575, BeerID: "augustiner", Weight: 2,
				RadiusKm: sql.NullFloat64{Float64: 5, Valid: true},
				Source:   sql.NullString{String: "checkin", Valid: true},
			},
			expected: model.WeightedVote{ID: "v1", Lat: 48.137, Lng: 11.575, BeerID: "augustiner", Weight: 2, RadiusKm: 5, Source: "checkin"},
		},
		{
			name:     "NULL カラムはゼロ値",
			result:   VoteResult{ID: "v2", Lat: 48.1, Lng: 11.5, BeerID: "paulaner", Weight: 1},
			expected: model.WeightedVote{ID: "v2", Lat: 48.1, Lng: 11.5, BeerID: "paulaner", Weight: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.result.ToWeightedVote())
		})
	}
}

func TestNewBoundRange(t *testing.T) {
	br := NewBoundRange(orb.Bound{Min: orb.Point{11.3, 48.0}, Max: orb.Point{11.8, 48.3}})

	assert.Equal(t, BoundRange{MinLat: 48.0, MaxLat: 48.3, MinLng: 11.3, MaxLng: 11.8}, br)
	assert.Equal(t, "11.3", formatCoord(br.MinLng))
	assert.Equal(t, "48", formatCoord(br.MinLat))
}

func TestFilterVotesInBound(t *testing.T) {
	bound := orb.Bound{Min: orb.Point{11.5, 48.1}, Max: orb.Point{11.6, 48.2}}
	votes := []model.WeightedVote{
		{ID: "in", Lat: 48.15, Lng: 11.55},
		{ID: "edge", Lat: 48.2, Lng: 11.6},
		{ID: "east", Lat: 48.15, Lng: 11.7},
		{ID: "south", Lat: 48.0, Lng: 11.55},
	}

	filtered := FilterVotesInBound(votes, bound)

	require.Len(t, filtered, 2)
	assert.Equal(t, "in", filtered[0].ID)
	assert.Equal(t, "edge", filtered[1].ID)
}

func TestSortVotesByID(t *testing.T) {
	votes := []model.WeightedVote{{ID: "c"}, {ID: "a"}, {ID: "b"}}

	SortVotesByID(votes)

	assert.Equal(t, "a", votes[0].ID)
	assert.Equal(t, "b", votes[1].ID)
	assert.Equal(t, "c", votes[2].ID)
}

func TestDecodeSupabaseVotes(t *testing.T) {
	data := []byte(`[
		{"id": "2", "lat": 48.14, "lng": 11.58, "beer_id": "paulaner", "weight": 2, "radius_km": null, "source": "home"},
		{"id": "1", "lat": 48.12, "lng": 11.52, "beer_id": "augustiner", "weight": 3, "radius_km": 4, "source": null}
	]`)

	votes, err := decodeSupabaseVotes(data)

	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "paulaner", votes[0].BeerID)
	assert.Zero(t, votes[0].RadiusKm)
	assert.Equal(t, 4.0, votes[1].RadiusKm)
	assert.Empty(t, votes[1].Source)

	votes, err = decodeSupabaseVotes([]byte(`null`))
	require.NoError(t, err)
	assert.NotNil(t, votes)
	assert.Empty(t, votes)

	_, err = decodeSupabaseVotes([]byte(`{"message": "bad"}`))
	assert.Error(t, err)
}

func TestFirestoreVote_ToWeightedVote(t *testing.T) {
	fv := FirestoreVote{Lat: 48.13, Lng: 11.56, BeerID: "spaten", Weight: 1.5, RadiusKm: 3, Source: "duel"}

	vote := fv.ToWeightedVote("doc-1")

	assert.Equal(t, model.WeightedVote{ID: "doc-1", Lat: 48.13, Lng: 11.56, BeerID: "spaten", Weight: 1.5, RadiusKm: 3, Source: "duel"}, vote)
}

func TestDedupeCheckins(t *testing.T) {
	checkins := []checkin{
		{id: "c1", vote: FirestoreVote{Lat: 48.13701, Lng: 11.57531, BeerID: "augustiner", Weight: 1, UserID: "u1"}},
		// 同じユーザー・同じビール・約10m先 → まとめて重い方を残す
		{id: "c2", vote: FirestoreVote{Lat: 48.13709, Lng: 11.57539, BeerID: "augustiner", Weight: 2, UserID: "u1"}},
		// 別のビール
		{id: "c3", vote: FirestoreVote{Lat: 48.13701, Lng: 11.57531, BeerID: "paulaner", Weight: 1, UserID: "u1"}},
		// 別のユーザー
		{id: "c4", vote: FirestoreVote{Lat: 48.13701, Lng: 11.57531, BeerID: "augustiner", Weight: 1, UserID: "u2"}},
		// 別の地点
		{id: "c5", vote: FirestoreVote{Lat: 48.1500, Lng: 11.5800, BeerID: "augustiner", Weight: 1, UserID: "u1"}},
		// user_id なしはまとめない
		{id: "c6", vote: FirestoreVote{Lat: 48.13701, Lng: 11.57531, BeerID: "augustiner", Weight: 1}},
		{id: "c7", vote: FirestoreVote{Lat: 48.13701, Lng: 11.57531, BeerID: "augustiner", Weight: 1}},
	}

	votes := dedupeCheckins(checkins)

	ids := make([]string, 0, len(votes))
	for _, v := range votes {
		ids = append(ids, v.ID)
	}
	assert.Equal(t, []string{"c2", "c3", "c4", "c5", "c6", "c7"}, ids)
	assert.Equal(t, 2.0, votes[0].Weight)
}

func TestDedupeCheckins_EqualWeightKeepsSmallerID(t *testing.T) {
	checkins := []checkin{
		{id: "b", vote: FirestoreVote{Lat: 48.1, Lng: 11.5, BeerID: "spaten", Weight: 1, UserID: "u1"}},
		{id: "a", vote: FirestoreVote{Lat: 48.1, Lng: 11.5, BeerID: "spaten", Weight: 1, UserID: "u1"}},
	}

	votes := dedupeCheckins(checkins)

	require.Len(t, votes, 1)
	assert.Equal(t, "a", votes[0].ID)
}

func TestFetchVotePages(t *testing.T) {
	// サーバー側の上限で1ページ2件までしか返らない想定
	rows := []string{
		`{"id": "1", "lat": 48.1, "lng": 11.5, "beer_id": "a", "weight": 1}`,
		`{"id": "2", "lat": 48.1, "lng": 11.5, "beer_id": "a", "weight": 1}`,
		`{"id": "3", "lat": 48.1, "lng": 11.5, "beer_id": "b", "weight": 1}`,
		`{"id": "4", "lat": 48.1, "lng": 11.5, "beer_id": "b", "weight": 1}`,
		`{"id": "5", "lat": 48.1, "lng": 11.5, "beer_id": "c", "weight": 1}`,
	}
	var requested [][2]int
	fetch := func(from, to int) ([]byte, error) {
		requested = append(requested, [2]int{from, to})
		end := min(from+2, len(rows))
		if from >= len(rows) {
			return []byte(`[]`), nil
		}
		return []byte("[" + strings.Join(rows[from:end], ",") + "]"), nil
	}

	votes, err := fetchVotePages(context.Background(), 3, 10, fetch)

	require.NoError(t, err)
	require.Len(t, votes, 5)
	assert.Equal(t, "5", votes[4].ID)
	assert.Equal(t, [][2]int{{0, 2}, {2, 4}, {4, 6}, {5, 7}}, requested)
}

func TestFetchVotePages_StopsAtMaxPages(t *testing.T) {
	calls := 0
	fetch := func(from, to int) ([]byte, error) {
		calls++
		return []byte(`[{"id": "x", "lat": 48.1, "lng": 11.5, "beer_id": "a", "weight": 1}]`), nil
	}

	votes, err := fetchVotePages(context.Background(), 1, 3, fetch)

	require.NoError(t, err)
	assert.Len(t, votes, 3)
	assert.Equal(t, 3, calls)
}

func TestFetchVotePages_Errors(t *testing.T) {
	fetchErr := errors.New("503 Service Unavailable")
	_, err := fetchVotePages(context.Background(), 10, 5, func(from, to int) ([]byte, error) {
		return nil, fetchErr
	})
	assert.ErrorIs(t, err, fetchErr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = fetchVotePages(ctx, 10, 5, func(from, to int) ([]byte, error) {
		return []byte(`[]`), nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
