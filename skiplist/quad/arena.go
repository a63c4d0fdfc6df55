package quad

import "github.com/RoaringBitmap/roaring"

// ref 是 arena 內節點的 handle，只在同一個 arena 的生命週期內有效
type ref int32

const nilRef ref = -1

// node 是二維網格中的一格：prev/next 為同層鄰居，above/below 為同一 key 的上下層
type node[K any, V any] struct {
	entry    Entry[K, V]
	sentinel bool
	prev     ref
	next     ref
	above    ref
	below    ref
}

// arena 持有所有節點，釋放的位置記在 free 中，配置時優先重用最小的空位
type arena[K any, V any] struct {
	nodes []node[K, V]
	free  *roaring.Bitmap
}

func newArena[K any, V any](capacity int) *arena[K, V] {
	return &arena[K, V]{
		nodes: make([]node[K, V], 0, capacity),
		free:  roaring.New(),
	}
}

func (a *arena[K, V]) alloc(e Entry[K, V], sentinel bool) ref {
	nd := node[K, V]{
		entry:    e,
		sentinel: sentinel,
		prev:     nilRef,
		next:     nilRef,
		above:    nilRef,
		below:    nilRef,
	}
	if !a.free.IsEmpty() {
		slot := a.free.Minimum()
		a.free.Remove(slot)
		a.nodes[slot] = nd
		return ref(slot)
	}
	a.nodes = append(a.nodes, nd)
	return ref(len(a.nodes) - 1)
}

func (a *arena[K, V]) release(r ref) {
	a.nodes[r] = node[K, V]{prev: nilRef, next: nilRef, above: nilRef, below: nilRef}
	a.free.Add(uint32(r))
}

// at 回傳的指標在下一次 alloc 前有效
func (a *arena[K, V]) at(r ref) *node[K, V] {
	return &a.nodes[r]
}

// live 回傳目前使用中的節點數（含 sentinel）
func (a *arena[K, V]) live() int {
	return len(a.nodes) - int(a.free.GetCardinality())
}
