// Package quadmap 把 quad.SkipList 包成 skiplist.Analyable，供 benchmark 與分析工具使用。
package quadmap

import (
	"encoding/binary"
	"math"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/Hakuto4838/SkipDict.git/skiplist"
	"github.com/Hakuto4838/SkipDict.git/skiplist/quad"
)

const falsePositiveRate = 0.01

// Map 的 key 必須落在 (math.MinInt64, math.MaxInt64) 之間，兩端保留給 sentinel。
// filter 只增不減：移除後的 key 仍可能通過 filter，這時再走一次搜尋即可。
type Map struct {
	sl     *quad.SkipList[skiplist.K, skiplist.V]
	filter *bloom.BloomFilter
}

// New 建立 Map，expected 為預估的 key 數量，用來決定 filter 的大小
func New(seed uint64, expected uint) *Map {
	if expected == 0 {
		expected = 1024
	}
	return &Map{
		sl: quad.New[skiplist.K, skiplist.V](math.MinInt64, math.MaxInt64,
			quad.WithSeed(seed), quad.WithCapacity(int(expected)*2)),
		filter: bloom.NewWithEstimates(expected, falsePositiveRate),
	}
}

func keyBytes(key skiplist.K) []byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(key))
	return b[:]
}

// List 回傳底層的 skip list
func (m *Map) List() *quad.SkipList[skiplist.K, skiplist.V] {
	return m.sl
}

func (m *Map) Put(key skiplist.K, value skiplist.V) {
	m.sl.Insert(key, value)
	m.filter.Add(keyBytes(key))
}

func (m *Map) Get(key skiplist.K) (skiplist.V, bool) {
	if !m.filter.Test(keyBytes(key)) {
		return 0, false
	}
	return m.sl.Get(key)
}

func (m *Map) Contains(key skiplist.K) bool {
	_, ok := m.Get(key)
	return ok
}

func (m *Map) Delete(key skiplist.K) bool {
	if !m.filter.Test(keyBytes(key)) {
		return false
	}
	_, err := m.sl.RemoveKey(key)
	return err == nil
}

// GetAll 回傳 key 的所有 value，最後插入的在前
func (m *Map) GetAll(key skiplist.K) []skiplist.V {
	if !m.filter.Test(keyBytes(key)) {
		return nil
	}
	entries := m.sl.FindAll(key)
	if len(entries) == 0 {
		return nil
	}
	out := make([]skiplist.V, len(entries))
	for i, e := range entries {
		out[i] = e.Value()
	}
	return out
}

func (m *Map) Len() int {
	return m.sl.Len()
}

func (m *Map) Stats() (int, int) {
	return m.sl.Len(), m.sl.Height()
}

func (m *Map) GetHead() skiplist.Nodelike {
	return towerNode{m.sl.Head()}
}

// towerNode 實作 Nodelike 介面
type towerNode struct {
	t quad.Tower[skiplist.K, skiplist.V]
}

func (n towerNode) GetKey() skiplist.K {
	return n.t.Entry().Key()
}

func (n towerNode) GetValue() skiplist.V {
	return n.t.Entry().Value()
}

func (n towerNode) GetLevel() int32 {
	return int32(n.t.Top())
}

func (n towerNode) GetNextAt(level int32) skiplist.Nodelike {
	next := n.t.NextAt(int(level))
	if !next.Valid() {
		return nil
	}
	return towerNode{next}
}
