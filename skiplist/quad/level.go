package quad

// insertAfterAbove 在同層 p 之後、下層 q 之上建立新節點並接好四個方向的連結
// p 或 q 為 nilRef 時略過該方向
func (sl *SkipList[K, V]) insertAfterAbove(p, q ref, e Entry[K, V], sentinel bool) ref {
	r := sl.arena.alloc(e, sentinel)
	nd := sl.arena.at(r)

	if p != nilRef {
		pn := sl.arena.at(p)
		if pn.next != nilRef {
			nd.next = pn.next
			sl.arena.at(pn.next).prev = r
		}
		nd.prev = p
		pn.next = r
	}

	if q != nilRef {
		nd.below = q
		sl.arena.at(q).above = r
	}
	return r
}

// unlink 把 r 從所在層拆下，並清空它自己的連結
func (sl *SkipList[K, V]) unlink(r ref) {
	nd := sl.arena.at(r)
	prev, next := nd.prev, nd.next

	sl.arena.at(prev).next = next
	sl.arena.at(next).prev = prev
	if nd.below != nilRef {
		sl.arena.at(nd.below).above = nilRef
	}

	nd.prev, nd.next, nd.above, nd.below = nilRef, nilRef, nilRef, nilRef
}

// grow 在最上層之上再疊一對 sentinel
func (sl *SkipList[K, V]) grow() {
	left := sl.insertAfterAbove(nilRef, sl.head, Entry[K, V]{key: sl.minKey}, true)
	right := sl.insertAfterAbove(left, sl.tail, Entry[K, V]{key: sl.maxKey}, true)
	sl.head, sl.tail = left, right
	sl.height++
}

// leftSentinels 由上而下回傳每一層的左 sentinel
func (sl *SkipList[K, V]) leftSentinels() []ref {
	out := make([]ref, 0, sl.height)
	for p := sl.head; p != nilRef; p = sl.arena.at(p).below {
		out = append(out, p)
	}
	return out
}

// base 回傳 level 0 的左 sentinel
func (sl *SkipList[K, V]) base() ref {
	p := sl.head
	for sl.arena.at(p).below != nilRef {
		p = sl.arena.at(p).below
	}
	return p
}
