package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/Hakuto4838/SkipDict.git/datastream"
	"github.com/Hakuto4838/SkipDict.git/skiplist"
	"github.com/Hakuto4838/SkipDict.git/skiplist/analyTool"
	"github.com/Hakuto4838/SkipDict.git/skiplist/basic"
	"github.com/Hakuto4838/SkipDict.git/skiplist/quadmap"
)

func testOne(name string, sl skiplist.Analyable, dist map[skiplist.K]float64, levels, nodes int) {
	fmt.Printf("=== %s ===\n", name)
	length, height := sl.Stats()
	fmt.Printf("len: %d, height: %d, per level: %v\n", length, height, analyTool.CountLevel(sl))

	if err := analyTool.CheckStruct(sl); err != nil {
		fmt.Printf("structure: BROKEN (%v)\n", err)
	} else {
		fmt.Println("structure: ok")
	}

	score, _ := analyTool.AnalyzeStep(sl, dist)
	fmt.Printf("score: %.6f\n\n", score)
	analyTool.RenderLevels(os.Stdout, sl, levels, nodes)
	fmt.Println()
}

func main() {
	var seed int64
	var levels, nodes int
	cfg := datastream.DefaultWorkload()
	cfg.N = 60
	cfg.K = 600
	cfg.SimpleKey = true

	flag.IntVar(&cfg.N, "n", cfg.N, "number of keys")
	flag.IntVar(&cfg.K, "k", cfg.K, "number of operations")
	flag.Float64Var(&cfg.S, "a", cfg.S, "Zipf parameter s (0 = uniform)")
	flag.Int64Var(&seed, "seed", 42, "seed for generator and structures")
	flag.IntVar(&levels, "levels", 8, "max levels to print")
	flag.IntVar(&nodes, "nodes", 35, "max keys to print")
	flag.Parse()

	cfg.Seed = uint64(seed)
	bf, err := datastream.Generate(cfg)
	if err != nil {
		log.Fatalf("generate workload: %v", err)
	}
	fmt.Printf("ops: %d, entropy: %.6f\n\n", len(bf.Ops), bf.Entropy())

	quadSL := quadmap.New(uint64(seed), uint(cfg.N))
	counts := bf.ToSequenceModel().Replay(quadSL, bf.Weight)
	fmt.Printf("replayed: %v\n", counts)
	testOne("quad", quadSL, bf.Dist, levels, nodes)

	basicSL := basic.NewBasicSkipList(seed)
	bf.ToSequenceModel().Replay(basicSL, bf.Weight)
	testOne("basic", basicSL, bf.Dist, levels, nodes)
}
