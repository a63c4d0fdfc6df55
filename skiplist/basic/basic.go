package basic

import (
	"math"
	"math/rand"

	"github.com/Hakuto4838/SkipDict.git/skiplist"
)

const (
	maxLevel    = 32
	probability = 0.5
)

type basicNode struct {
	key   skiplist.K
	value skiplist.V
	next  []*basicNode
}

// BasicSkipList 是以 forward 陣列實作、允許重複 key 的傳統 skip list，作為比較基準
type BasicSkipList struct {
	head  *basicNode
	level int32
	rand  *rand.Rand
	size  int32
}

func NewBasicSkipList(seed int64) *BasicSkipList {
	return &BasicSkipList{
		head:  newNode(math.MinInt64, 0, maxLevel),
		level: 0,
		rand:  rand.New(rand.NewSource(seed)),
		size:  0,
	}
}

func newNode(key skiplist.K, value skiplist.V, level int32) *basicNode {
	return &basicNode{
		key:   key,
		value: value,
		next:  make([]*basicNode, level+1),
	}
}

// findLast 回傳 key 最後插入的節點
func (sl *BasicSkipList) findLast(key skiplist.K) *basicNode {
	cur := sl.head
	for h := sl.level; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key <= key {
			cur = cur.next[h]
		}
	}
	if cur != sl.head && cur.key == key {
		return cur
	}
	return nil
}

func (sl *BasicSkipList) randomLevel() int32 {
	lvl := 0
	for sl.rand.Float64() < probability && lvl < maxLevel {
		lvl++
	}
	return int32(lvl)
}

// Put 新增一筆，相同 key 接在最後一個之後
func (sl *BasicSkipList) Put(key skiplist.K, value skiplist.V) {
	lvl := sl.randomLevel()
	cur := newNode(key, value, lvl)
	sl.level = max(sl.level, lvl)

	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h].key <= key {
			curr = curr.next[h]
		}
		if h <= lvl {
			cur.next[h] = curr.next[h]
			curr.next[h] = cur
		}
	}
	sl.size++
}

func (sl *BasicSkipList) Get(key skiplist.K) (skiplist.V, bool) {
	cur := sl.findLast(key)
	if cur != nil {
		return cur.value, true
	}
	return 0, false
}

func (sl *BasicSkipList) Contains(key skiplist.K) bool {
	return sl.findLast(key) != nil
}

// Delete 移除 key 最後插入的那一筆
func (sl *BasicSkipList) Delete(key skiplist.K) bool {
	target := sl.findLast(key)
	if target == nil {
		return false
	}

	curr := sl.head
	for h := sl.level; h >= 0; h-- {
		for curr.next[h] != nil && curr.next[h] != target && curr.next[h].key <= key {
			curr = curr.next[h]
		}
		if curr.next[h] == target {
			curr.next[h] = target.next[h]
		}
	}
	sl.size--
	return true
}

// GetAll 回傳 key 的所有 value，最後插入的在前
func (sl *BasicSkipList) GetAll(key skiplist.K) []skiplist.V {
	cur := sl.head
	for h := sl.level; h >= 0; h-- {
		for cur.next[h] != nil && cur.next[h].key < key {
			cur = cur.next[h]
		}
	}

	var out []skiplist.V
	for n := cur.next[0]; n != nil && n.key == key; n = n.next[0] {
		out = append(out, n.value)
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

func (sl *BasicSkipList) Len() int {
	return int(sl.size)
}

func (sl *BasicSkipList) GetHead() skiplist.Nodelike {
	return sl.head
}

func (sl *BasicSkipList) Stats() (int, int) {
	return int(sl.size), int(sl.level) + 1
}

func (nd *basicNode) GetKey() skiplist.K {
	return nd.key
}

func (nd *basicNode) GetValue() skiplist.V {
	return nd.value
}

func (nd *basicNode) GetLevel() int32 {
	return int32(len(nd.next) - 1)
}

func (nd *basicNode) GetNextAt(level int32) skiplist.Nodelike {
	if level < 0 || level >= int32(len(nd.next)) {
		return nil
	}
	if nd.next[level] == nil {
		return nil
	}
	return nd.next[level]
}
