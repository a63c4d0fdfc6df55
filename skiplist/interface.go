package skiplist

type K = int64
type V = float64

// SkipList 是 benchmark 與分析工具使用的共同介面，允許重複 key
type SkipList interface {
	Contains(key K) bool
	// Get 回傳 key 最後插入的 value
	Get(key K) (V, bool)
	// Put 一律新增一筆，不覆蓋既有的 key
	Put(key K, value V)
	// Delete 移除 key 的一筆，不存在時回傳 false
	Delete(key K) bool
	Len() int
	GetHead() Nodelike
}

// Analyable 提供分析功能的介面
type Analyable interface {
	SkipList
	// Stats 回傳真實 entry 數與層數
	Stats() (length int, height int)
}

// Nodelike 以 tower 為單位檢視節點，GetLevel 為 tower 最高一層的 index
type Nodelike interface {
	GetKey() K
	GetValue() V
	GetLevel() int32
	GetNextAt(level int32) Nodelike
}
