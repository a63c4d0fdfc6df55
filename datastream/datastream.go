package datastream

import "github.com/Hakuto4838/SkipDict.git/skiplist"

// OperationType 表示操作種類
type OperationType uint8

const (
	OpInsert OperationType = iota
	OpFind
	OpFindAll
	OpRemove
)

func (t OperationType) String() string {
	switch t {
	case OpInsert:
		return "Insert"
	case OpFind:
		return "Find"
	case OpFindAll:
		return "FindAll"
	case OpRemove:
		return "Remove"
	default:
		return "Unknown"
	}
}

func (t OperationType) valid() bool {
	return t <= OpRemove
}

// Operation 表示一筆操作
type Operation struct {
	Type OperationType
	Key  skiplist.K
}

// SequenceModel 以既有的 Operation 序列提供順序重播
type SequenceModel struct {
	ops []Operation
	pos int
}

// NewSequenceModelFromOps 由外部供給的操作序列建立模型
func NewSequenceModelFromOps(ops []Operation) *SequenceModel {
	cp := make([]Operation, len(ops))
	copy(cp, ops)
	return &SequenceModel{ops: cp}
}

// Next 回傳下一筆操作，若結束則回傳零值與 false
func (m *SequenceModel) Next() (Operation, bool) {
	if m.pos >= len(m.ops) {
		return Operation{}, false
	}
	op := m.ops[m.pos]
	m.pos++
	return op, true
}

// NextN 回傳接下來 n 筆（或直到結束）的操作
func (m *SequenceModel) NextN(n int) []Operation {
	if n <= 0 || m.pos >= len(m.ops) {
		return nil
	}
	end := min(m.pos+n, len(m.ops))
	out := make([]Operation, end-m.pos)
	copy(out, m.ops[m.pos:end])
	m.pos = end
	return out
}

// Reset 游標重置到起點
func (m *SequenceModel) Reset() { m.pos = 0 }

// Replay 把剩下的操作依序套用到 sl，回傳各種操作的次數
func (m *SequenceModel) Replay(sl skiplist.SkipList, weight func(skiplist.K) skiplist.V) map[OperationType]int {
	counts := make(map[OperationType]int, 4)
	for {
		op, ok := m.Next()
		if !ok {
			return counts
		}
		Apply(sl, op, weight)
		counts[op.Type]++
	}
}

type allGetter interface {
	GetAll(key skiplist.K) []skiplist.V
}

// Apply 對 sl 執行單一操作；sl 沒有 GetAll 時 FindAll 退化為 Get
func Apply(sl skiplist.SkipList, op Operation, weight func(skiplist.K) skiplist.V) {
	switch op.Type {
	case OpInsert:
		var v skiplist.V
		if weight != nil {
			v = weight(op.Key)
		}
		sl.Put(op.Key, v)
	case OpFind:
		sl.Get(op.Key)
	case OpFindAll:
		if g, ok := sl.(allGetter); ok {
			g.GetAll(op.Key)
		} else {
			sl.Get(op.Key)
		}
	case OpRemove:
		sl.Delete(op.Key)
	}
}
