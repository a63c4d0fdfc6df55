// Package quad 實作以四向連結（prev/next/above/below）節點組成的 skip list 字典。
//
// 每一層是一條以兩個 sentinel 包夾的雙向串列，同一個 key 在各層的節點以 above/below
// 串成一座 tower。插入時以公平硬幣決定是否往上層複製，不做任何確定性的平衡。
// 允許重複 key，重複的 entry 依插入順序相鄰排列。
//
// SkipList 不是 concurrent-safe，共用時需由呼叫端自行互斥。
package quad

import (
	"cmp"
	"math/rand/v2"

	"github.com/cockroachdb/errors"
)

const probability = 0.5

// Comparator 比較兩個 key：a < b 回傳負數，相等回傳 0，a > b 回傳正數
type Comparator[K any] func(a, b K) int

type config struct {
	rng      *rand.Rand
	capacity int
}

// Option 設定 SkipList 的建構參數
type Option func(*config)

// WithSeed 以固定種子建立升層用的亂數來源，方便重現結構
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewPCG(seed, 0))
	}
}

// WithRand 直接指定升層用的亂數來源
func WithRand(rng *rand.Rand) Option {
	return func(c *config) {
		if rng != nil {
			c.rng = rng
		}
	}
}

// WithCapacity 預先配置可容納 n 個節點的 arena
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

type SkipList[K any, V any] struct {
	compare Comparator[K]
	rng     *rand.Rand
	arena   *arena[K, V]

	minKey, maxKey K
	head, tail     ref // 最上層的左、右 sentinel

	length int
	height int
}

// New 以 key 型別的自然順序建立 SkipList。
// minKey 與 maxKey 必須分別小於、大於之後插入的每一個 key，這點不會在執行期檢查。
func New[K cmp.Ordered, V any](minKey, maxKey K, opts ...Option) *SkipList[K, V] {
	return NewWithComparator[K, V](minKey, maxKey, cmp.Compare[K], opts...)
}

// NewWithComparator 以自訂的 compare 建立 SkipList，compare 為 nil 時 panic
func NewWithComparator[K any, V any](minKey, maxKey K, compare Comparator[K], opts ...Option) *SkipList[K, V] {
	if compare == nil {
		panic("quad: nil comparator")
	}

	c := &config{capacity: 64}
	for _, opt := range opts {
		opt(c)
	}
	if c.rng == nil {
		c.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	sl := &SkipList[K, V]{
		compare: compare,
		rng:     c.rng,
		arena:   newArena[K, V](c.capacity),
		minKey:  minKey,
		maxKey:  maxKey,
		height:  1,
	}

	// level 0 的 -inf / +inf，再疊一層空的
	sl.head = sl.insertAfterAbove(nilRef, nilRef, Entry[K, V]{key: minKey}, true)
	sl.tail = sl.insertAfterAbove(sl.head, nilRef, Entry[K, V]{key: maxKey}, true)
	sl.grow()

	return sl
}

func (sl *SkipList[K, V]) flip() bool {
	return sl.rng.Float64() < probability
}

// Insert 一定成功，相同 key 會接在既有的最後一個之後
func (sl *SkipList[K, V]) Insert(key K, value V) Entry[K, V] {
	e := Entry[K, V]{key: key, value: value}

	p := sl.search(key)
	q := sl.insertAfterAbove(p, nilRef, e, false)

	for level := 1; sl.flip(); level++ {
		if level >= sl.height {
			sl.grow()
		}

		// 往左找到第一個有上層節點的位置（sentinel 必定有）
		for sl.arena.at(p).above == nilRef {
			p = sl.arena.at(p).prev
		}
		p = sl.arena.at(p).above
		q = sl.insertAfterAbove(p, q, e, false)
	}

	sl.length++
	return e
}

// Remove 依 e 的 key 重新搜尋並移除整座 tower。
// 有重複 key 時移除的是同 key 中最後插入的那一個，未必是 e 本身；回傳值為實際移除的 entry。
// key 不存在時回傳 ErrInvalidEntry，結構不變。
func (sl *SkipList[K, V]) Remove(e Entry[K, V]) (Entry[K, V], error) {
	return sl.RemoveKey(e.key)
}

// RemoveKey 移除 key 最後插入的 entry，語意同 Remove
func (sl *SkipList[K, V]) RemoveKey(key K) (Entry[K, V], error) {
	p := sl.search(key)
	nd := sl.arena.at(p)
	if nd.sentinel || sl.compare(key, nd.entry.key) != 0 {
		return Entry[K, V]{}, errors.Wrapf(ErrInvalidEntry, "key %v", key)
	}
	removed := nd.entry

	// 先整座拆下再釋放，unlink 不會碰到已釋放的格子
	var tower []ref
	for ; p != nilRef; p = sl.arena.at(p).above {
		tower = append(tower, p)
	}
	for _, r := range tower {
		sl.unlink(r)
	}
	for _, r := range tower {
		sl.arena.release(r)
	}

	sl.length--
	return removed, nil
}

// Find 回傳 key 小於等於 key 的最後一個 entry，沒有時回傳 minKey 的 sentinel entry。
// 呼叫端需自行比對回傳的 key 是否相等。
func (sl *SkipList[K, V]) Find(key K) Entry[K, V] {
	return sl.arena.at(sl.search(key)).entry
}

// FindAll 回傳所有 key 相等的 entry，最後插入的在前
func (sl *SkipList[K, V]) FindAll(key K) []Entry[K, V] {
	var out []Entry[K, V]
	for p := sl.search(key); p != nilRef; p = sl.arena.at(p).prev {
		nd := sl.arena.at(p)
		if nd.sentinel || sl.compare(key, nd.entry.key) != 0 {
			break
		}
		out = append(out, nd.entry)
	}
	return out
}

// Get 回傳 key 最後插入的 value
func (sl *SkipList[K, V]) Get(key K) (V, bool) {
	nd := sl.arena.at(sl.search(key))
	if nd.sentinel || sl.compare(key, nd.entry.key) != 0 {
		var zero V
		return zero, false
	}
	return nd.entry.value, true
}

func (sl *SkipList[K, V]) Contains(key K) bool {
	_, ok := sl.Get(key)
	return ok
}

// Entries 依 key 由小到大回傳所有 entry，每次呼叫都是新的 slice
func (sl *SkipList[K, V]) Entries() []Entry[K, V] {
	out := make([]Entry[K, V], 0, sl.length)
	for p := sl.arena.at(sl.base()).next; p != nilRef; p = sl.arena.at(p).next {
		nd := sl.arena.at(p)
		if nd.sentinel {
			break
		}
		out = append(out, nd.entry)
	}
	return out
}

func (sl *SkipList[K, V]) IsEmpty() bool {
	return sl.length == 0
}

// Len 回傳 level 0 上真實 entry 的數量
func (sl *SkipList[K, V]) Len() int {
	return sl.length
}

// Height 回傳目前的層數，只增不減
func (sl *SkipList[K, V]) Height() int {
	return sl.height
}

// LevelSizes 回傳每層真實節點數，index 0 為 level 0
func (sl *SkipList[K, V]) LevelSizes() []int {
	lefts := sl.leftSentinels()
	sizes := make([]int, len(lefts))
	for i, left := range lefts {
		level := len(lefts) - 1 - i
		for p := sl.arena.at(left).next; !sl.arena.at(p).sentinel; p = sl.arena.at(p).next {
			sizes[level]++
		}
	}
	return sizes
}
