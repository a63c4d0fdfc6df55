package quad

import (
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/google/go-cmp/cmp"
)

func newIntList(seed uint64) *SkipList[int, int] {
	return New[int, int](math.MinInt, math.MaxInt, WithSeed(seed))
}

func keysOf[K any, V any](entries []Entry[K, V]) []K {
	out := make([]K, len(entries))
	for i, e := range entries {
		out[i] = e.Key()
	}
	return out
}

func valuesOf[K any, V any](entries []Entry[K, V]) []V {
	out := make([]V, len(entries))
	for i, e := range entries {
		out[i] = e.Value()
	}
	return out
}

// checkGrid 檢查每層的順序、tower 的上下連結，以及 arena 的節點數
func checkGrid[K any, V any](t *testing.T, sl *SkipList[K, V]) {
	t.Helper()
	a := sl.arena

	lefts := sl.leftSentinels()
	if len(lefts) != sl.Height() {
		t.Fatalf("sentinel levels = %d, height = %d", len(lefts), sl.Height())
	}

	nodes := 0
	for i, left := range lefts {
		level := len(lefts) - 1 - i
		p := left
		for {
			nodes++
			nd := a.at(p)
			if nd.next == nilRef {
				if !nd.sentinel {
					t.Fatalf("level %d ends on a non-sentinel node", level)
				}
				break
			}
			nx := a.at(nd.next)
			if nx.prev != p {
				t.Fatalf("level %d: broken prev link", level)
			}
			if !nd.sentinel && !nx.sentinel && sl.compare(nd.entry.key, nx.entry.key) > 0 {
				t.Fatalf("level %d out of order: %v before %v", level, nd.entry.key, nx.entry.key)
			}
			if level > 0 {
				if nd.below == nilRef {
					t.Fatalf("level %d: node %v has no below", level, nd.entry.key)
				}
				below := a.at(nd.below)
				if below.above != p || sl.compare(below.entry.key, nd.entry.key) != 0 {
					t.Fatalf("level %d: tower of %v is not contiguous", level, nd.entry.key)
				}
			} else if nd.below != nilRef {
				t.Fatalf("level 0 node %v has a below link", nd.entry.key)
			}
			p = nd.next
		}
	}

	if live := a.live(); live != nodes {
		t.Fatalf("arena live nodes = %d, reachable = %d", live, nodes)
	}
}

func TestNewSkipList(t *testing.T) {
	sl := newIntList(1)

	if !sl.IsEmpty() || sl.Len() != 0 {
		t.Errorf("new list: IsEmpty() = %v, Len() = %d", sl.IsEmpty(), sl.Len())
	}
	if sl.Height() != 2 {
		t.Errorf("Height() = %d, want 2", sl.Height())
	}
	if got := sl.Entries(); len(got) != 0 {
		t.Errorf("Entries() = %v, want empty", got)
	}

	// 空表時 Find 落在 minKey 的 sentinel
	if e := sl.Find(5); e.Key() != math.MinInt {
		t.Errorf("Find(5) on empty list = %v, want minKey sentinel", e)
	}
	checkGrid(t, sl)
}

func TestInsertDuplicates(t *testing.T) {
	sl := newIntList(42)
	sl.Insert(5, 100)
	sl.Insert(1, 200)
	sl.Insert(5, 300)
	sl.Insert(3, 400)

	entries := sl.Entries()
	if diff := cmp.Diff([]int{1, 3, 5, 5}, keysOf(entries)); diff != "" {
		t.Errorf("Entries() keys mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{200, 400, 100, 300}, valuesOf(entries)); diff != "" {
		t.Errorf("Entries() values mismatch (-want +got):\n%s", diff)
	}

	all := sl.FindAll(5)
	if len(all) != 2 {
		t.Fatalf("FindAll(5) returned %d entries, want 2", len(all))
	}
	// 最後插入的在前
	if diff := cmp.Diff([]int{300, 100}, valuesOf(all)); diff != "" {
		t.Errorf("FindAll(5) values mismatch (-want +got):\n%s", diff)
	}

	if got := sl.FindAll(4); len(got) != 0 {
		t.Errorf("FindAll(4) = %v, want empty", got)
	}
	if got := sl.FindAll(0); len(got) != 0 {
		t.Errorf("FindAll(0) = %v, want empty", got)
	}
	checkGrid(t, sl)
}

func TestFindPredecessor(t *testing.T) {
	sl := newIntList(7)
	for _, k := range []int{30, 10, 20} {
		sl.Insert(k, k*10)
	}

	tests := []struct {
		name string
		key  int
		want int
	}{
		{"exact", 20, 20},
		{"between", 25, 20},
		{"last", 30, 30},
		{"beyond last", 99, 30},
		{"below first", 5, math.MinInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sl.Find(tt.key).Key(); got != tt.want {
				t.Errorf("Find(%d).Key() = %d, want %d", tt.key, got, tt.want)
			}
		})
	}

	if v, ok := sl.Get(10); !ok || v != 100 {
		t.Errorf("Get(10) = (%d, %v), want (100, true)", v, ok)
	}
	if _, ok := sl.Get(15); ok {
		t.Error("Get(15) found a value, want miss")
	}
	if sl.Contains(5) || !sl.Contains(30) {
		t.Error("Contains() mismatch")
	}
}

func TestEntriesSortedAndStable(t *testing.T) {
	sl := newIntList(3)
	r := rand.New(rand.NewPCG(99, 0))

	const n = 2000
	for i := 0; i < n; i++ {
		sl.Insert(r.IntN(100), i)
	}

	entries := sl.Entries()
	if len(entries) != n {
		t.Fatalf("len(Entries()) = %d, want %d", len(entries), n)
	}
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if prev.Key() > cur.Key() {
			t.Fatalf("entries[%d] key %d > entries[%d] key %d", i-1, prev.Key(), i, cur.Key())
		}
		if prev.Key() == cur.Key() && prev.Value() > cur.Value() {
			t.Fatalf("duplicate key %d lost insertion order: %d before %d", cur.Key(), prev.Value(), cur.Value())
		}
	}
	checkGrid(t, sl)
}

func TestEntriesIsSnapshot(t *testing.T) {
	sl := newIntList(5)
	e := sl.Insert(1, 1)
	sl.Insert(2, 2)

	snap := sl.Entries()
	if _, err := sl.Remove(e); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	sl.Insert(0, 0)

	if diff := cmp.Diff([]int{1, 2}, keysOf(snap)); diff != "" {
		t.Errorf("snapshot changed after mutation (-want +got):\n%s", diff)
	}
}

func TestLengthAndHeight(t *testing.T) {
	sl := newIntList(11)
	r := rand.New(rand.NewPCG(11, 0))

	var live []Entry[int, int]
	lastHeight := sl.Height()
	inserts, removes := 0, 0

	for i := 0; i < 5000; i++ {
		if len(live) > 0 && r.IntN(3) == 0 {
			idx := r.IntN(len(live))
			if _, err := sl.Remove(live[idx]); err != nil {
				t.Fatalf("Remove(%v) error: %v", live[idx], err)
			}
			// 重複 key 時實際移除的未必是同一個 entry，但 key 相同，因此以 key 計數即可
			live[idx] = live[len(live)-1]
			live = live[:len(live)-1]
			removes++
		} else {
			live = append(live, sl.Insert(r.IntN(500), i))
			inserts++
		}

		if sl.Len() != inserts-removes {
			t.Fatalf("Len() = %d, want %d", sl.Len(), inserts-removes)
		}
		if sl.Height() < lastHeight {
			t.Fatalf("Height() dropped from %d to %d", lastHeight, sl.Height())
		}
		lastHeight = sl.Height()
	}
	checkGrid(t, sl)
}

func TestRemoveStaleEntry(t *testing.T) {
	sl := newIntList(2)
	e := sl.Insert(8, 80)
	sl.Insert(9, 90)

	got, err := sl.Remove(e)
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if got.Key() != 8 || got.Value() != 80 {
		t.Errorf("Remove() = %v, want <8, 80>", got)
	}

	before := sl.Entries()
	height := sl.Height()

	_, err = sl.Remove(e)
	if !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("second Remove() error = %v, want ErrInvalidEntry", err)
	}
	if sl.Len() != 1 || sl.Height() != height {
		t.Errorf("failed Remove changed the list: Len() = %d, Height() = %d", sl.Len(), sl.Height())
	}
	if diff := cmp.Diff(keysOf(before), keysOf(sl.Entries())); diff != "" {
		t.Errorf("failed Remove changed entries (-want +got):\n%s", diff)
	}

	// minKey sentinel 不是真實 entry
	if _, err := sl.Remove(sl.Find(1)); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("Remove(sentinel) error = %v, want ErrInvalidEntry", err)
	}
	checkGrid(t, sl)
}

// Remove 以 key 重新搜尋，遇到重複 key 時拆掉的是最後插入的那一個
func TestRemoveDuplicateKey(t *testing.T) {
	sl := newIntList(4)
	first := sl.Insert(5, 1)
	sl.Insert(5, 2)

	got, err := sl.Remove(first)
	if err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if got.Key() != 5 {
		t.Fatalf("Remove() key = %d, want 5", got.Key())
	}
	// 搜尋落在同 key 的最後一個，所以拆掉的是後插入的那個
	if got.Value() != 2 {
		t.Errorf("Remove() value = %d, want 2", got.Value())
	}

	left := sl.FindAll(5)
	if len(left) != 1 {
		t.Fatalf("FindAll(5) after one Remove = %v, want one entry", left)
	}
	if left[0].Value() == got.Value() {
		t.Errorf("remaining entry %v equals the removed one", left[0])
	}
	checkGrid(t, sl)
}

func TestRoundTrip(t *testing.T) {
	sl := newIntList(21)
	const n = 1000

	entries := make([]Entry[int, int], 0, n)
	for i := 0; i < n; i++ {
		entries = append(entries, sl.Insert(i%250, i))
	}
	grown := sl.Height()

	for _, e := range entries {
		if _, err := sl.Remove(e); err != nil {
			t.Fatalf("Remove(%v) error: %v", e, err)
		}
	}

	if !sl.IsEmpty() || sl.Len() != 0 {
		t.Errorf("after removing everything: IsEmpty() = %v, Len() = %d", sl.IsEmpty(), sl.Len())
	}
	if got := sl.Entries(); len(got) != 0 {
		t.Errorf("Entries() = %v, want empty", got)
	}
	if sl.Height() != grown {
		t.Errorf("Height() = %d after removals, want %d", sl.Height(), grown)
	}
	for level, size := range sl.LevelSizes() {
		if size != 0 {
			t.Errorf("level %d still holds %d nodes", level, size)
		}
	}
	checkGrid(t, sl)
}

func TestArenaReusesSlots(t *testing.T) {
	sl := newIntList(8)
	for i := 0; i < 200; i++ {
		sl.Insert(i, i)
	}
	for _, e := range sl.Entries() {
		if _, err := sl.Remove(e); err != nil {
			t.Fatalf("Remove() error: %v", err)
		}
	}
	allocated := len(sl.arena.nodes)

	// 空位用完之前不會再 append
	for i := 0; i < 200; i++ {
		sl.Insert(i, i)
	}
	if want := max(allocated, sl.arena.live()); len(sl.arena.nodes) != want {
		t.Errorf("arena holds %d slots, want %d", len(sl.arena.nodes), want)
	}
	checkGrid(t, sl)
}

func TestCustomComparator(t *testing.T) {
	desc := func(a, b string) int { return strings.Compare(b, a) }
	sl := NewWithComparator[string, int]("\xff", "", desc, WithSeed(9))

	for i, k := range []string{"b", "d", "a", "c", "b"} {
		sl.Insert(k, i)
	}

	if diff := cmp.Diff([]string{"d", "c", "b", "b", "a"}, keysOf(sl.Entries())); diff != "" {
		t.Errorf("Entries() keys mismatch (-want +got):\n%s", diff)
	}
	if got := sl.Find("bb").Key(); got != "c" {
		t.Errorf(`Find("bb").Key() = %q, want "c"`, got)
	}
	if got := len(sl.FindAll("b")); got != 2 {
		t.Errorf(`len(FindAll("b")) = %d, want 2`, got)
	}
	checkGrid(t, sl)
}

func TestSeedDeterminism(t *testing.T) {
	build := func(opt Option) *SkipList[int, int] {
		sl := New[int, int](math.MinInt, math.MaxInt, opt)
		for i := 0; i < 2000; i++ {
			sl.Insert(i%700, i)
		}
		return sl
	}

	a := build(WithSeed(77))
	b := build(WithSeed(77))
	if a.Height() != b.Height() {
		t.Errorf("Height() = %d vs %d with the same seed", a.Height(), b.Height())
	}
	if diff := cmp.Diff(a.LevelSizes(), b.LevelSizes()); diff != "" {
		t.Errorf("LevelSizes() differ with the same seed (-a +b):\n%s", diff)
	}
	if diff := cmp.Diff(valuesOf(a.Entries()), valuesOf(b.Entries())); diff != "" {
		t.Errorf("Entries() differ with the same seed (-a +b):\n%s", diff)
	}

	// WithRand 給同樣的來源時結果一致
	r := build(WithRand(rand.New(rand.NewPCG(77, 0))))
	if diff := cmp.Diff(a.LevelSizes(), r.LevelSizes()); diff != "" {
		t.Errorf("LevelSizes() differ between WithSeed and WithRand (-seed +rand):\n%s", diff)
	}

	c := build(WithSeed(78))
	if cmp.Equal(a.LevelSizes(), c.LevelSizes()) {
		t.Errorf("LevelSizes() = %v for seeds 77 and 78, want different structures", a.LevelSizes())
	}
}

// comparator 無法比較某個 key 時會 panic，此時表不能被改動
func TestComparatorPanicLeavesListUnchanged(t *testing.T) {
	const bad = 13
	compare := func(a, b int) int {
		if a == bad || b == bad {
			panic("cannot compare 13")
		}
		switch {
		case a < b:
			return -1
		case a > b:
			return 1
		}
		return 0
	}
	sl := NewWithComparator[int, int](math.MinInt, math.MaxInt, compare, WithSeed(5))
	for i := 0; i < 100; i++ {
		if i != bad {
			sl.Insert(i, i)
		}
	}

	length, height, live := sl.Len(), sl.Height(), sl.arena.live()
	before := sl.Entries()

	mustPanic := func(name string, fn func()) {
		t.Helper()
		defer func() {
			if recover() == nil {
				t.Errorf("%s did not panic", name)
			}
		}()
		fn()
	}
	mustPanic("Insert(13)", func() { sl.Insert(bad, 1) })
	mustPanic("Remove(13)", func() { sl.Remove(Entry[int, int]{key: bad}) })

	if sl.Len() != length || sl.Height() != height || sl.arena.live() != live {
		t.Errorf("after panics: Len() = %d, Height() = %d, live = %d; want %d, %d, %d",
			sl.Len(), sl.Height(), sl.arena.live(), length, height, live)
	}
	if diff := cmp.Diff(valuesOf(before), valuesOf(sl.Entries())); diff != "" {
		t.Errorf("Entries() changed after panics (-want +got):\n%s", diff)
	}
	checkGrid(t, sl)
}

func TestLevelSizes(t *testing.T) {
	sl := newIntList(13)
	for i := 0; i < 4096; i++ {
		sl.Insert(i, i)
	}

	sizes := sl.LevelSizes()
	if len(sizes) != sl.Height() {
		t.Fatalf("len(LevelSizes()) = %d, want %d", len(sizes), sl.Height())
	}
	if sizes[0] != sl.Len() {
		t.Errorf("LevelSizes()[0] = %d, want %d", sizes[0], sl.Len())
	}
	for i := 1; i < len(sizes); i++ {
		if sizes[i] > sizes[i-1] {
			t.Errorf("level %d has %d nodes, more than level %d (%d)", i, sizes[i], i-1, sizes[i-1])
		}
	}
	// 期望每層約為下一層的一半
	if half := float64(sizes[1]) / float64(sizes[0]); half < 0.4 || half > 0.6 {
		t.Errorf("level 1 / level 0 = %.3f, want about 0.5", half)
	}
}

func TestHeightGrowsLogarithmically(t *testing.T) {
	const (
		n      = 1024
		trials = 30
	)
	total := 0
	for seed := uint64(0); seed < trials; seed++ {
		sl := newIntList(seed)
		for i := 0; i < n; i++ {
			sl.Insert(i, i)
		}
		total += sl.Height()
	}

	avg := float64(total) / trials
	want := math.Ceil(math.Log2(n))
	if avg < want-3 || avg > want+5 {
		t.Errorf("average height = %.2f over %d trials, want about %.0f", avg, trials, want)
	}
	t.Logf("n=%d average height %.2f", n, avg)
}

func TestTowerView(t *testing.T) {
	sl := newIntList(31)
	for _, k := range []int{4, 2, 6, 2} {
		sl.Insert(k, k)
	}

	head := sl.Head()
	if !head.Valid() || !head.IsSentinel() {
		t.Fatal("Head() should be a valid sentinel tower")
	}
	if head.Top() != sl.Height()-1 {
		t.Errorf("Head().Top() = %d, want %d", head.Top(), sl.Height()-1)
	}

	var keys []int
	for tw := head.NextAt(0); tw.Valid(); tw = tw.NextAt(0) {
		keys = append(keys, tw.Entry().Key())
		if tw.Top() >= sl.Height() {
			t.Errorf("tower %d top %d exceeds height %d", tw.Entry().Key(), tw.Top(), sl.Height())
		}
	}
	if diff := cmp.Diff([]int{2, 2, 4, 6}, keys); diff != "" {
		t.Errorf("level 0 walk mismatch (-want +got):\n%s", diff)
	}

	if tw := head.NextAt(sl.Height()); tw.Valid() {
		t.Error("NextAt above the top level should be invalid")
	}
}

func TestRemoveKeyReleasesTower(t *testing.T) {
	sl := newIntList(21)
	for i := 0; i < 300; i++ {
		sl.Insert(i, i)
	}
	for i := 299; i >= 0; i -= 2 {
		if _, err := sl.RemoveKey(i); err != nil {
			t.Fatalf("RemoveKey(%d) error: %v", i, err)
		}
	}
	checkGrid(t, sl)

	for i := 0; i < 300; i += 2 {
		if _, err := sl.RemoveKey(i); err != nil {
			t.Fatalf("RemoveKey(%d) error: %v", i, err)
		}
	}
	if _, err := sl.RemoveKey(0); !errors.Is(err, ErrInvalidEntry) {
		t.Errorf("RemoveKey(0) on empty list error = %v, want ErrInvalidEntry", err)
	}
	// 只剩每層的一對 sentinel
	if live := sl.arena.live(); live != 2*sl.Height() {
		t.Errorf("arena live = %d, want %d", live, 2*sl.Height())
	}
	checkGrid(t, sl)
}
