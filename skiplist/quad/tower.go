package quad

// Tower 是某個 key 在 level 0 節點的唯讀檢視，供結構分析使用
type Tower[K any, V any] struct {
	sl   *SkipList[K, V]
	base ref
}

// Head 回傳 level 0 左 sentinel 所在的 tower，其高度等於整個結構的高度
func (sl *SkipList[K, V]) Head() Tower[K, V] {
	return Tower[K, V]{sl: sl, base: sl.base()}
}

func (t Tower[K, V]) Valid() bool {
	return t.sl != nil && t.base != nilRef
}

func (t Tower[K, V]) Entry() Entry[K, V] {
	return t.sl.arena.at(t.base).entry
}

func (t Tower[K, V]) IsSentinel() bool {
	return t.sl.arena.at(t.base).sentinel
}

// Top 回傳 tower 最高一層的 index
func (t Tower[K, V]) Top() int {
	top := 0
	for p := t.sl.arena.at(t.base).above; p != nilRef; p = t.sl.arena.at(p).above {
		top++
	}
	return top
}

// NextAt 沿著第 level 層往右走一步，回傳下一個真實 key 的 tower。
// tower 沒有那一層，或右邊已是 sentinel 時回傳無效的 Tower。
func (t Tower[K, V]) NextAt(level int) Tower[K, V] {
	if !t.Valid() || level < 0 {
		return Tower[K, V]{}
	}
	a := t.sl.arena

	p := t.base
	for i := 0; i < level; i++ {
		p = a.at(p).above
		if p == nilRef {
			return Tower[K, V]{}
		}
	}

	nx := a.at(p).next
	if nx == nilRef || a.at(nx).sentinel {
		return Tower[K, V]{}
	}
	for a.at(nx).below != nilRef {
		nx = a.at(nx).below
	}
	return Tower[K, V]{sl: t.sl, base: nx}
}
