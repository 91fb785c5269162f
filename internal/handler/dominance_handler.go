package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"BeerMap-App/internal/domain/model"
	"BeerMap-App/internal/logging"
	"BeerMap-App/internal/usecase"
)

// DominanceHandler は支配グリッドAPIのハンドラー
type DominanceHandler struct {
	dominanceUseCase usecase.DominanceUseCase
}

// NewDominanceHandler は新しいDominanceHandlerインスタンスを作成
func NewDominanceHandler(dominanceUseCase usecase.DominanceUseCase) *DominanceHandler {
	return &DominanceHandler{
		dominanceUseCase: dominanceUseCase,
	}
}

// RegisterRoutes ルーティングを登録する
func (h *DominanceHandler) RegisterRoutes(r gin.IRouter) {
	g := r.Group("/dominance")
	g.POST("", h.PostDominance)
	g.POST("/lookup", h.PostCellLookup)
	g.POST("/contested", h.PostContestedArea)
}

// PostDominance は支配グリッドを計算するエンドポイント
// POST /dominance
func (h *DominanceHandler) PostDominance(c *gin.Context) {
	var req model.DominanceRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.dominanceUseCase.Compute(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "支配グリッドの計算に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PostCellLookup は地点を含むセルと領域を返すエンドポイント
// POST /dominance/lookup
func (h *DominanceHandler) PostCellLookup(c *gin.Context) {
	var req model.CellLookupRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.dominanceUseCase.LookupCell(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "セルの検索に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// PostContestedArea は最寄りの接戦エリアを返すエンドポイント
// POST /dominance/contested
func (h *DominanceHandler) PostContestedArea(c *gin.Context) {
	var req model.ContestedAreaRequest
	if !bindJSON(c, &req) {
		return
	}

	response, err := h.dominanceUseCase.ClosestContested(c.Request.Context(), &req)
	if err != nil {
		respondError(c, "接戦エリアの検索に失敗しました", err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// bindJSON リクエストボディをバインドし、失敗時は400を返す
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "リクエストの形式が正しくありません",
			"details": err.Error(),
		})
		return false
	}
	return true
}

// respondError エラー種別に応じたステータスコードで返す
func respondError(c *gin.Context, message string, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		logging.Log.Errorf("❌ %s: %v", message, err)
	} else {
		logging.Log.Warnf("⚠️ %s: %v", message, err)
	}
	c.JSON(status, gin.H{
		"error":   message,
		"details": err.Error(),
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, model.ErrInvalidGridSpec), errors.Is(err, model.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrTooManyCells):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrComputationBusy):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
