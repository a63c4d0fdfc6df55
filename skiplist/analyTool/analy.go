package analyTool

import (
	"fmt"
	"io"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/olekukonko/tablewriter"

	"github.com/Hakuto4838/SkipDict.git/skiplist"
)

type StepMap map[skiplist.K]int

// FindStep 計算從 head 搜尋到 key 的前驅所走的總步數和各層步數
// 同層往右一步、往下一層都算一步
func FindStep(sl skiplist.Analyable, key skiplist.K) (step int, level []int) {
	cur := sl.GetHead()
	if cur == nil {
		return 0, []int{}
	}

	_, height := sl.Stats()
	stepsPerLevel := make([]int, height)
	totalSteps := 0

	// 從最高層開始搜尋
	for h := height - 1; h >= 0; h-- {
		levelSteps := 0
		for {
			nextNode := cur.GetNextAt(int32(h))
			if nextNode == nil || nextNode.GetKey() > key {
				break
			}
			cur = nextNode
			levelSteps++
		}
		stepsPerLevel[h] = levelSteps
		totalSteps += levelSteps
		if h > 0 {
			totalSteps++ // 向下移動
		}
	}

	return totalSteps, stepsPerLevel
}

// AnalyzeStep 根據 map 提供的 key 出現機率計算平均搜尋步數，不在表中的 key 不計
func AnalyzeStep(sl skiplist.Analyable, keys map[skiplist.K]float64) (float64, StepMap) {
	if len(keys) == 0 {
		return 0.0, nil
	}

	step := StepMap{}
	var totalExpectedSteps float64
	var totalProbability float64

	for key, prob := range keys {
		if prob <= 0 || !sl.Contains(key) {
			continue
		}
		s, _ := FindStep(sl, key)
		step[key] = s
		totalExpectedSteps += float64(s) * prob
		totalProbability += prob
	}

	if totalProbability > 0 {
		return totalExpectedSteps / totalProbability, step
	}
	return 0.0, step
}

// CountLevel 計算每層的真實節點數，index 0 為 level 0
func CountLevel(sl skiplist.Analyable) []int {
	_, height := sl.Stats()
	levelCounts := make([]int, height)

	head := sl.GetHead()
	if head == nil {
		return levelCounts
	}
	for cur := head.GetNextAt(0); cur != nil; cur = cur.GetNextAt(0) {
		// 該節點存在於 level 0 到 GetLevel() 的所有層
		for i := 0; i <= int(cur.GetLevel()) && i < height; i++ {
			levelCounts[i]++
		}
	}
	return levelCounts
}

// CheckStruct 檢查 skip list 的結構：level 0 有序、數量正確，
// 且每一層恰好串起所有高度到達該層的 tower
func CheckStruct(sl skiplist.Analyable) error {
	length, height := sl.Stats()
	head := sl.GetHead()
	if head == nil {
		return errors.New("nil head")
	}

	var base []skiplist.Nodelike
	for cur := head.GetNextAt(0); cur != nil; cur = cur.GetNextAt(0) {
		if n := len(base); n > 0 && base[n-1].GetKey() > cur.GetKey() {
			return errors.Newf("level 0 out of order: %d before %d", base[n-1].GetKey(), cur.GetKey())
		}
		if lv := int(cur.GetLevel()); lv >= height {
			return errors.Newf("node %d level %d exceeds height %d", cur.GetKey(), lv, height)
		}
		base = append(base, cur)
	}
	if len(base) != length {
		return errors.Newf("level 0 holds %d nodes, length is %d", len(base), length)
	}

	for h := 1; h < height; h++ {
		i := 0
		for cur := head.GetNextAt(int32(h)); cur != nil; cur = cur.GetNextAt(int32(h)) {
			for i < len(base) && int(base[i].GetLevel()) < h {
				i++
			}
			if i == len(base) || base[i] != cur {
				return errors.Newf("level %d: unexpected node %d", h, cur.GetKey())
			}
			i++
		}
		for ; i < len(base); i++ {
			if int(base[i].GetLevel()) >= h {
				return errors.Newf("level %d: node %d is not linked", h, base[i].GetKey())
			}
		}
	}
	return nil
}

// RenderLevels 以表格輸出 skip list 的結構，最多 maxLevel+1 層、maxNodes 個 key
func RenderLevels(w io.Writer, sl skiplist.Analyable, maxLevel, maxNodes int) {
	_, height := sl.Stats()
	maxLevel = min(maxLevel, height-1)

	head := sl.GetHead()
	if head == nil {
		fmt.Fprintln(w, "Skip list 為空")
		return
	}

	var nodes []skiplist.Nodelike
	for cur := head.GetNextAt(0); cur != nil && len(nodes) < maxNodes; cur = cur.GetNextAt(0) {
		nodes = append(nodes, cur)
	}

	table := tablewriter.NewWriter(w)
	header := make([]string, 0, len(nodes)+1)
	header = append(header, "level")
	for i := range nodes {
		header = append(header, fmt.Sprintf("#%d", i))
	}
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetAutoWrapText(false)

	for h := maxLevel; h >= 0; h-- {
		row := make([]string, 0, len(nodes)+1)
		row = append(row, fmt.Sprintf("%d", h))
		for _, nd := range nodes {
			if int(nd.GetLevel()) >= h {
				row = append(row, fmt.Sprintf("%d", nd.GetKey()))
			} else {
				row = append(row, "")
			}
		}
		table.Append(row)
	}
	table.Render()
}

// Render 依 key 排序輸出每個 key 的搜尋步數
func (mp StepMap) Render(w io.Writer) {
	keys := make([]skiplist.K, 0, len(mp))
	for k := range mp {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Steps"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, k := range keys {
		table.Append([]string{fmt.Sprintf("%d", k), fmt.Sprintf("%d", mp[k])})
	}
	table.Render()
}
