package quad

// search 從左上角的 sentinel 往右、往下走，回傳 level 0 上 key 小於等於 key 的最後一個節點
// 相同 key 會落在最後一個；若沒有更小的 key，回傳左 sentinel
func (sl *SkipList[K, V]) search(key K) ref {
	p := sl.head
	for {
		for {
			nx := sl.arena.at(p).next
			n := sl.arena.at(nx)
			if n.sentinel || sl.compare(key, n.entry.key) < 0 {
				break
			}
			p = nx
		}

		below := sl.arena.at(p).below
		if below == nilRef {
			return p
		}
		p = below
	}
}
