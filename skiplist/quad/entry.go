package quad

import "fmt"

// Entry 是一組不可變的 (key, value)
type Entry[K any, V any] struct {
	key   K
	value V
}

func (e Entry[K, V]) Key() K {
	return e.key
}

func (e Entry[K, V]) Value() V {
	return e.value
}

func (e Entry[K, V]) String() string {
	return fmt.Sprintf("<%v, %v>", e.key, e.value)
}
