package model

import "errors"

var (
	// ErrInvalidGridSpec グリッド定義の前提条件違反
	ErrInvalidGridSpec = errors.New("グリッド定義が不正です")
	// ErrInvalidRequest リクエストパラメータ不正
	ErrInvalidRequest = errors.New("リクエストが不正です")
	// ErrTooManyCells セル数が上限を超えている
	ErrTooManyCells = errors.New("セル数が上限を超えています")
	// ErrComputationBusy 計算ワーカーが空かなかった
	ErrComputationBusy = errors.New("計算ワーカーが混雑しています")
	// ErrInternal 計算中の想定外の失敗
	ErrInternal = errors.New("内部エラーが発生しました")
)
