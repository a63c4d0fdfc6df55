package datastream

import (
	"math"
	randv2 "math/rand/v2"
	"sort"

	"github.com/bits-and-blooms/bitset"
	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/SkipDict.git/skiplist"
)

// WorkloadConfig 描述要產生的操作序列
//   - N: key 數量
//   - S, V: Zipf 參數。S = 0 時使用均勻分布；否則需滿足 S > 1、V >= 1
//   - K: 操作數量
//   - DupRatio: 已出現過的 key 再插入一筆重複的機率
//   - RemoveRatio: 已出現過的 key 被移除的機率（表中至少有一筆時才會移除，否則改為插入）
//   - FindAllRatio: 已出現過的 key 做 FindAll 的機率，其餘為 Find
//   - SimpleKey: key 使用 0..N-1，否則為不重複的隨機 uint32
type WorkloadConfig struct {
	N            int
	S, V         float64
	Seed         uint64
	K            int
	DupRatio     float64
	RemoveRatio  float64
	FindAllRatio float64
	SimpleKey    bool
}

// DefaultWorkload 回傳預設的 Zipf 工作負載
func DefaultWorkload() WorkloadConfig {
	return WorkloadConfig{
		N:            1000,
		S:            1.07,
		V:            1.0,
		Seed:         42,
		K:            100000,
		DupRatio:     0.05,
		RemoveRatio:  0.1,
		FindAllRatio: 0.1,
	}
}

func (c WorkloadConfig) Validate() error {
	if c.N <= 0 {
		return errors.Newf("invalid n: %d", c.N)
	}
	if c.K < 0 {
		return errors.Newf("invalid k: %d", c.K)
	}
	if c.S != 0.0 && (c.S <= 1.0 || c.V < 1.0) {
		return errors.Newf("invalid zipf params: s=%v must >1, v=%v must >=1", c.S, c.V)
	}
	for name, r := range map[string]float64{"dup": c.DupRatio, "remove": c.RemoveRatio, "findAll": c.FindAllRatio} {
		if r < 0.0 || r > 1.0 {
			return errors.Newf("%s ratio (%v) must be between 0.0 and 1.0", name, r)
		}
	}
	if sum := c.DupRatio + c.RemoveRatio + c.FindAllRatio; sum > 1.0 {
		return errors.Newf("ratios sum to %v, must not exceed 1.0", sum)
	}
	return nil
}

// pick 決定已出現過的 key 要做的操作
func (c WorkloadConfig) pick(x float64, present bool) OperationType {
	switch {
	case x < c.DupRatio:
		return OpInsert
	case x < c.DupRatio+c.RemoveRatio:
		if present {
			return OpRemove
		}
		return OpInsert
	case x < c.DupRatio+c.RemoveRatio+c.FindAllRatio:
		return OpFindAll
	default:
		return OpFind
	}
}

// Generate 依設定產生操作序列與 key 的機率分布
// key 第一次出現一定是 Insert，之後依比例決定操作
func Generate(cfg WorkloadConfig) (*BenchFile, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := randv2.New(randv2.NewPCG(cfg.Seed, 0))
	rankToKey := rankKeys(r, cfg.N, cfg.SimpleKey)
	weights := rankWeights(cfg.N, cfg.S, cfg.V)

	var nextRank func() int
	if cfg.S == 0.0 {
		nextRank = func() int { return r.IntN(cfg.N) }
	} else {
		zipf := randv2.NewZipf(r, cfg.S, cfg.V, uint64(cfg.N-1))
		nextRank = func() int { return int(zipf.Uint64()) }
	}

	seen := bitset.New(uint(cfg.N))
	live := make([]int, cfg.N)
	ops := make([]Operation, 0, cfg.K)

	for i := 0; i < cfg.K; i++ {
		rank := nextRank()
		op := OpInsert
		if seen.Test(uint(rank)) {
			op = cfg.pick(r.Float64(), live[rank] > 0)
		}
		seen.Set(uint(rank))

		switch op {
		case OpInsert:
			live[rank]++
		case OpRemove:
			live[rank]--
		}
		ops = append(ops, Operation{Type: op, Key: rankToKey[rank]})
	}

	dist := make(map[skiplist.K]float64, cfg.N)
	for rank, key := range rankToKey {
		dist[key] = weights[rank]
	}
	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// rankKeys 建立 rank -> key 的隨機對應（不重複）
func rankKeys(r *randv2.Rand, n int, simpleKey bool) []skiplist.K {
	rankToKey := make([]skiplist.K, n)
	if simpleKey {
		for i := 0; i < n; i++ {
			rankToKey[i] = skiplist.K(i)
		}
		r.Shuffle(n, func(i, j int) { rankToKey[i], rankToKey[j] = rankToKey[j], rankToKey[i] })
		return rankToKey
	}

	check := make(map[skiplist.K]struct{}, n)
	for i := 0; i < n; i++ {
		genKey := skiplist.K(r.Uint32())
		for _, ok := check[genKey]; ok; _, ok = check[genKey] {
			genKey = skiplist.K(r.Uint32())
		}
		rankToKey[i] = genKey
		check[genKey] = struct{}{}
	}
	return rankToKey
}

// rankWeights 計算每個 rank 的理論機率並正規化，s = 0 時為均勻分布
func rankWeights(n int, s, v float64) []float64 {
	weights := make([]float64, n)
	if s == 0.0 {
		for i := range weights {
			weights[i] = 1.0 / float64(n)
		}
		return weights
	}

	var sumW float64
	for i := 0; i < n; i++ {
		w := 1.0 / math.Pow(v+float64(i), s)
		weights[i] = w
		sumW += w
	}
	for i := range weights {
		weights[i] /= sumW
	}
	return weights
}

// EntropyFromDist 計算分布的熵（單位：bit），忽略 <= 0 的值
func EntropyFromDist(dist map[skiplist.K]float64) float64 {
	h := 0.0
	for _, p := range dist {
		if p > 0 {
			h -= p * math.Log2(p)
		}
	}
	return h
}

// sortedKeys 回傳升冪排序的 key
func sortedKeys(dist map[skiplist.K]float64) []skiplist.K {
	keys := make([]skiplist.K, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
