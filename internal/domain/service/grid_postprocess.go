package service

// labelCount 近傍集計用のラベルと出現数
type labelCount struct {
	label string
	count int
}

// labelTally 少数ラベルの出現数を挿入順で数える小さな集計器
type labelTally []labelCount

func (t labelTally) add(label string) labelTally {
	for i := range t {
		if t[i].label == label {
			t[i].count++
			return t
		}
	}
	return append(t, labelCount{label: label, count: 1})
}

// best 最多ラベルを返す。同数の場合は辞書順で小さいラベル
func (t labelTally) best() (string, bool) {
	if len(t) == 0 {
		return "", false
	}
	b := t[0]
	for _, lc := range t[1:] {
		if lc.count > b.count || (lc.count == b.count && lc.label < b.label) {
			b = lc
		}
	}
	return b.label, true
}

// SmoothWinnerGrid 8近傍＋自セルの多数決で勝者ラベルを平滑化する（labels をその場で更新）
// 空文字列のセルは空のまま。各ラウンドは前ラウンドの確定状態だけを読む
func SmoothWinnerGrid(labels []string, rows, cols, iterations int) {
	if iterations <= 0 || rows <= 0 || cols <= 0 {
		return
	}

	cur := make([]string, len(labels))
	copy(cur, labels)
	next := make([]string, len(labels))
	tally := make(labelTally, 0, 9)

	for it := 0; it < iterations; it++ {
		for row := 0; row < rows; row++ {
			for col := 0; col < cols; col++ {
				idx := row*cols + col
				if cur[idx] == "" {
					next[idx] = ""
					continue
				}

				tally = tally[:0]
				for dr := -1; dr <= 1; dr++ {
					r := row + dr
					if r < 0 || r >= rows {
						continue
					}
					for dc := -1; dc <= 1; dc++ {
						c := col + dc
						if c < 0 || c >= cols {
							continue
						}
						if l := cur[r*cols+c]; l != "" {
							tally = tally.add(l)
						}
					}
				}
				next[idx], _ = tally.best()
			}
		}
		cur, next = next, cur
	}

	copy(labels, cur)
}

// MergeSmallIslands minSize 未満の4近傍連結領域を、隣接する別ラベルのうち最も多く接しているものに吸収させる
// 隣接ラベルがない（空セルに囲まれている）領域はそのまま残す
func MergeSmallIslands(labels []string, rows, cols, minSize int) {
	if minSize <= 1 || rows <= 0 || cols <= 0 {
		return
	}

	visited := make([]bool, rows*cols)
	stack := make([]int, 0, 64)
	component := make([]int, 0, 64)
	tally := make(labelTally, 0, 4)

	for start := range labels[:rows*cols] {
		if visited[start] || labels[start] == "" {
			continue
		}

		label := labels[start]
		component = component[:0]
		stack = append(stack[:0], start)
		visited[start] = true
		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			component = append(component, idx)
			forEachNeighbor4(idx, rows, cols, func(n int) {
				if !visited[n] && labels[n] == label {
					visited[n] = true
					stack = append(stack, n)
				}
			})
		}

		if len(component) >= minSize {
			continue
		}

		tally = tally[:0]
		for _, idx := range component {
			forEachNeighbor4(idx, rows, cols, func(n int) {
				if l := labels[n]; l != "" && l != label {
					tally = tally.add(l)
				}
			})
		}
		replacement, ok := tally.best()
		if !ok {
			continue
		}
		for _, idx := range component {
			labels[idx] = replacement
		}
	}
}

// forEachNeighbor4 上下左右の隣接セルのインデックスを列挙する
func forEachNeighbor4(idx, rows, cols int, fn func(n int)) {
	row, col := idx/cols, idx%cols
	if row > 0 {
		fn(idx - cols)
	}
	if row < rows-1 {
		fn(idx + cols)
	}
	if col > 0 {
		fn(idx - 1)
	}
	if col < cols-1 {
		fn(idx + 1)
	}
}
