package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"BeerMap-App/internal/config"
	"BeerMap-App/internal/domain/helper"
	"BeerMap-App/internal/domain/model"
	"BeerMap-App/internal/domain/repository"
	"BeerMap-App/internal/domain/service"
	"BeerMap-App/internal/logging"
	"BeerMap-App/internal/metrics"
)

type DominanceUseCase interface {
	// Compute 支配グリッドを計算し、領域抽出まで行った結果を返す
	Compute(ctx context.Context, req *model.DominanceRequest) (*model.DominanceResponse, error)

	// LookupCell 地点を含むセルとその領域を返す
	LookupCell(ctx context.Context, req *model.CellLookupRequest) (*model.CellLookupResponse, error)

	// ClosestContested 地点から最も近い接戦セルを返す
	ClosestContested(ctx context.Context, req *model.ContestedAreaRequest) (*model.ContestedAreaResponse, error)
}

// dominanceUseCaseImpl はDominanceUseCaseの実装
type dominanceUseCaseImpl struct {
	votesRepo repository.VotesRepository
	cfg       config.DominanceConfig
	// 同時に走る計算の数を制限するセマフォ
	workers chan struct{}
	// 実際に計算を行う関数（テストで差し替える）
	pipeline func(*model.DominanceRequest) *model.DominanceResult
}

// NewDominanceUseCase 新しいDominanceUseCaseインスタンスを作成
// votesRepo が nil の場合はリクエストに含まれる投票だけを使う
func NewDominanceUseCase(votesRepo repository.VotesRepository, cfg config.DominanceConfig) DominanceUseCase {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	return &dominanceUseCaseImpl{
		votesRepo: votesRepo,
		cfg:       cfg,
		workers:   make(chan struct{}, workers),
		pipeline:  service.RunDominancePipeline,
	}
}

// computation 1回分の計算結果
type computation struct {
	id      string
	result  *model.DominanceResult
	regions []model.Region
	votes   int
}

// Compute 支配グリッドを計算する
func (u *dominanceUseCaseImpl) Compute(ctx context.Context, req *model.DominanceRequest) (*model.DominanceResponse, error) {
	comp, err := u.run(ctx, req)
	if err != nil {
		return nil, err
	}
	return &model.DominanceResponse{
		ComputationID: comp.id,
		Rows:          comp.result.Rows,
		Cols:          comp.result.Cols,
		Cells:         comp.result.Cells,
		GridSpec:      comp.result.GridSpec,
		Regions:       comp.regions,
		VoteCount:     comp.votes,
	}, nil
}

// LookupCell 地点を含むセルとその領域を返す
func (u *dominanceUseCaseImpl) LookupCell(ctx context.Context, req *model.CellLookupRequest) (*model.CellLookupResponse, error) {
	if err := validatePoint(req.Lat, req.Lng); err != nil {
		return nil, err
	}
	comp, err := u.run(ctx, &req.DominanceRequest)
	if err != nil {
		return nil, err
	}

	resp := &model.CellLookupResponse{ComputationID: comp.id}
	resp.Cell = service.FindCellAt(req.Lat, req.Lng, comp.result)
	if resp.Cell != nil {
		resp.Region = service.FindRegionForCell(resp.Cell.Row, resp.Cell.Col, comp.regions, comp.result)
	}
	return resp, nil
}

// ClosestContested 地点から最も近い接戦セルを返す
func (u *dominanceUseCaseImpl) ClosestContested(ctx context.Context, req *model.ContestedAreaRequest) (*model.ContestedAreaResponse, error) {
	if err := validatePoint(req.Lat, req.Lng); err != nil {
		return nil, err
	}
	maxMargin := u.cfg.ContestedMaxMargin
	if req.MaxMargin != nil {
		if *req.MaxMargin < 0 {
			return nil, fmt.Errorf("%w: max_margin は0以上である必要があります", model.ErrInvalidRequest)
		}
		maxMargin = *req.MaxMargin
	}
	comp, err := u.run(ctx, &req.DominanceRequest)
	if err != nil {
		return nil, err
	}

	resp := &model.ContestedAreaResponse{ComputationID: comp.id}
	contested := service.FindClosestContested(req.Lat, req.Lng, comp.result, maxMargin)
	if contested == nil {
		return resp, nil
	}
	resp.Cell = contested.Cell
	resp.CenterLat = contested.CenterLat
	resp.CenterLng = contested.CenterLng
	resp.DistanceKm = contested.DistanceKm
	resp.Region = service.FindRegionForCell(contested.Cell.Row, contested.Cell.Col, comp.regions, comp.result)
	return resp, nil
}

// run リクエストを検証・補完し、ワーカー上でパイプラインを実行する
func (u *dominanceUseCaseImpl) run(ctx context.Context, req *model.DominanceRequest) (*computation, error) {
	prepared, err := u.prepare(req)
	if err != nil {
		metrics.ComputationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	if len(prepared.Votes) == 0 && u.votesRepo != nil {
		bound := helper.PadBoundKm(prepared.GridSpec.Bound(), prepared.RadiusKm)
		votes, err := u.votesRepo.GetVotesInBounds(ctx, bound)
		if err != nil {
			metrics.ComputationsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("投票スナップショットの取得に失敗: %w", err)
		}
		prepared.Votes = votes
	}

	id := uuid.New().String()
	logging.Log.Infof("🍺 支配グリッド計算開始 (ID: %s, 投票: %d件)", id, len(prepared.Votes))

	if u.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.cfg.Timeout)
		defer cancel()
	}

	// ワーカー枠を確保
	select {
	case u.workers <- struct{}{}:
	case <-ctx.Done():
		metrics.ComputationsTotal.WithLabelValues("busy").Inc()
		return nil, fmt.Errorf("%w: %v", model.ErrComputationBusy, ctx.Err())
	}

	type outcome struct {
		comp *computation
		err  error
	}
	done := make(chan outcome, 1)
	start := time.Now()

	go func() {
		defer func() { <-u.workers }()
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{err: panicToError(r)}
			}
		}()

		result := u.pipeline(prepared)
		regions := service.ExtractRegions(result)
		done <- outcome{comp: &computation{id: id, result: result, regions: regions, votes: len(prepared.Votes)}}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			status := "error"
			if errors.Is(out.err, model.ErrInvalidGridSpec) {
				status = "invalid"
			}
			metrics.ComputationsTotal.WithLabelValues(status).Inc()
			return nil, out.err
		}
		elapsed := time.Since(start)
		metrics.ComputationsTotal.WithLabelValues("ok").Inc()
		metrics.ComputationDurationMs.Observe(float64(elapsed.Milliseconds()))
		metrics.CellsComputed.Observe(float64(len(out.comp.result.Cells)))
		metrics.VotesPerComputation.Observe(float64(out.comp.votes))
		metrics.RegionsPerComputation.Observe(float64(len(out.comp.regions)))
		logging.Log.Infof("✅ 支配グリッド計算完了 (ID: %s, %dx%d, 領域: %d, %v)",
			id, out.comp.result.Rows, out.comp.result.Cols, len(out.comp.regions), elapsed)
		return out.comp, nil
	case <-ctx.Done():
		// 計算自体は止められないので、結果は破棄される
		metrics.ComputationsTotal.WithLabelValues("timeout").Inc()
		logging.Log.Warnf("⚠️ 支配グリッド計算がタイムアウト、結果を破棄 (ID: %s): %v", id, ctx.Err())
		return nil, fmt.Errorf("支配グリッド計算が完了しませんでした: %w", ctx.Err())
	}
}

// prepare デフォルト値を補い、計算前に弾ける入力エラーを検出する
// 呼び出し元の投票スライスは変更しない
func (u *dominanceUseCaseImpl) prepare(req *model.DominanceRequest) (*model.DominanceRequest, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: リクエストが空です", model.ErrInvalidRequest)
	}
	if req.SmoothingIterations != nil && *req.SmoothingIterations < 0 {
		return nil, fmt.Errorf("%w: smoothing_iterations は0以上である必要があります", model.ErrInvalidRequest)
	}
	if req.MergeIslandSize != nil && *req.MergeIslandSize < 0 {
		return nil, fmt.Errorf("%w: merge_island_size は0以上である必要があります", model.ErrInvalidRequest)
	}

	prepared := *req
	if prepared.Viewport != nil {
		spec, err := u.specForViewport(*prepared.Viewport, prepared.GridSpec.CellSizeMeters)
		if err != nil {
			return nil, err
		}
		prepared.GridSpec = spec
		prepared.Viewport = nil
	}
	if err := prepared.GridSpec.Validate(); err != nil {
		return nil, err
	}

	if prepared.RadiusKm <= 0 {
		prepared.RadiusKm = u.cfg.DefaultRadiusKm
	}
	if prepared.SmoothingIterations == nil {
		smoothing := u.cfg.SmoothingIterations
		prepared.SmoothingIterations = &smoothing
	}
	if prepared.MergeIslandSize == nil {
		mergeSize := u.cfg.MergeIslandSize
		prepared.MergeIslandSize = &mergeSize
	}

	maxCells := u.cfg.MaxCells
	if maxCells <= 0 {
		maxCells = math.MaxInt32
	}
	if helper.CellCountExceeds(prepared.GridSpec, maxCells) {
		rows, cols := helper.GridDimensionsFloat(prepared.GridSpec)
		return nil, fmt.Errorf("%w: %gx%g (上限 %d)", model.ErrTooManyCells, rows, cols, maxCells)
	}
	return &prepared, nil
}

// specForViewport 表示範囲からセル数上限に収まるグリッド定義を作る
func (u *dominanceUseCaseImpl) specForViewport(viewport model.Viewport, cellSizeMeters float64) (model.GridSpec, error) {
	if err := viewport.Validate(); err != nil {
		return model.GridSpec{}, err
	}
	if !(cellSizeMeters > 0) || math.IsInf(cellSizeMeters, 0) {
		return model.GridSpec{}, fmt.Errorf("%w: cell_size_meters(%f) は正の値である必要があります", model.ErrInvalidGridSpec, cellSizeMeters)
	}
	maxCells := u.cfg.MaxCells
	if maxCells <= 0 {
		maxCells = math.MaxInt32
	}
	return helper.GridSpecForViewport(viewport.Bound(), cellSizeMeters, viewport.BufferRatio, maxCells), nil
}

// validatePoint 緯度経度の範囲チェック
func validatePoint(lat, lng float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("%w: 緯度は-90から90の範囲で指定してください", model.ErrInvalidRequest)
	}
	if lng < -180 || lng > 180 {
		return fmt.Errorf("%w: 経度は-180から180の範囲で指定してください", model.ErrInvalidRequest)
	}
	return nil
}

// panicToError パイプライン内の panic をエラーに変換する
// グリッド定義の前提条件違反だけを入力エラーとし、それ以外は内部エラーとして記録する
func panicToError(r any) error {
	if err, ok := r.(error); ok && errors.Is(err, model.ErrInvalidGridSpec) {
		return err
	}
	logging.Log.Errorf("❌ 支配グリッド計算中に panic が発生: %v", r)
	return fmt.Errorf("%w: %v", model.ErrInternal, r)
}
