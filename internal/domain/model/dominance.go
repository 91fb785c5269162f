package model

// CellResult セルごとの集計結果
// Winner / RunnerUp が空文字列の場合は該当ラベルなしを表す
type CellResult struct {
	Row            int                `json:"row"`
	Col            int                `json:"col"`
	Winner         string             `json:"winner,omitempty"`
	WinnerWeight   float64            `json:"winner_weight"`
	TotalWeight    float64            `json:"total_weight"`
	PerLabelWeight map[string]float64 `json:"per_label_weight,omitempty"`
	RunnerUp       string             `json:"runner_up,omitempty"`
	RunnerUpWeight float64            `json:"runner_up_weight"`
	Margin         float64            `json:"margin"`
}

// HasWinner 勝者ラベルが存在するか
func (c *CellResult) HasWinner() bool {
	return c != nil && c.Winner != ""
}

// DominanceResult グリッド全体の計算結果
// Cells は通常 row*cols+col の順で全セルを持つが、疎な集合でも CellAt で参照できる
type DominanceResult struct {
	Rows     int          `json:"rows"`
	Cols     int          `json:"cols"`
	Cells    []CellResult `json:"cells"`
	GridSpec GridSpec     `json:"grid_spec"`
}

// CellAt 指定セルの結果を取得する。範囲外や存在しない場合は nil
func (r *DominanceResult) CellAt(row, col int) *CellResult {
	if r == nil || row < 0 || col < 0 || row >= r.Rows || col >= r.Cols {
		return nil
	}
	idx := row*r.Cols + col
	if idx < len(r.Cells) && r.Cells[idx].Row == row && r.Cells[idx].Col == col {
		return &r.Cells[idx]
	}
	for i := range r.Cells {
		if r.Cells[i].Row == row && r.Cells[i].Col == col {
			return &r.Cells[i]
		}
	}
	return nil
}

// WinnerGrid 行優先の勝者ラベル配列を作成する（欠損セルは空文字列）
func (r *DominanceResult) WinnerGrid() []string {
	labels := make([]string, r.Rows*r.Cols)
	for i := range r.Cells {
		c := &r.Cells[i]
		if c.Row < 0 || c.Col < 0 || c.Row >= r.Rows || c.Col >= r.Cols {
			continue
		}
		labels[c.Row*r.Cols+c.Col] = c.Winner
	}
	return labels
}

// BoundingBox 行列インデックスでの外接矩形
type BoundingBox struct {
	MinRow int `json:"min_row"`
	MaxRow int `json:"max_row"`
	MinCol int `json:"min_col"`
	MaxCol int `json:"max_col"`
}

// Contains 外接矩形が (row, col) を含むか
func (b BoundingBox) Contains(row, col int) bool {
	return row >= b.MinRow && row <= b.MaxRow && col >= b.MinCol && col <= b.MaxCol
}

// Region 同じ勝者ラベルを持つ4近傍連結セルの集合
// ID はラベルと外接矩形の左下座標から決まるため、再計算をまたいだ同一性は保証しない
type Region struct {
	ID               string      `json:"id"`
	Label            string      `json:"label"`
	CellCount        int         `json:"cell_count"`
	CentroidLat      float64     `json:"centroid_lat"`
	CentroidLng      float64     `json:"centroid_lng"`
	BoundingBox      BoundingBox `json:"bounding_box"`
	AvgMargin        float64     `json:"avg_margin"`
	TotalVotes       float64     `json:"total_votes"`
	DominantRunnerUp string      `json:"dominant_runner_up,omitempty"`
}
