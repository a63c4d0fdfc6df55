package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/Hakuto4838/SkipDict.git/datastream"
	"github.com/Hakuto4838/SkipDict.git/skiplist"
	"github.com/Hakuto4838/SkipDict.git/skiplist/analyTool"
	"github.com/Hakuto4838/SkipDict.git/skiplist/basic"
	"github.com/Hakuto4838/SkipDict.git/skiplist/quadmap"
)

var allImpls = []string{"quad", "basic"}

func main() {
	// Input: either provide -file, -dir, or provide -out and generation params
	var file string
	var dir string
	var out string
	var impls string
	var runs int
	var seed int64
	cfg := datastream.DefaultWorkload()

	flag.StringVar(&file, "file", "", "existing bench file (QDBENCH1 format)")
	flag.StringVar(&dir, "dir", "", "directory containing bench files to test (will test all .bin files)")
	flag.StringVar(&out, "out", "", "output path to write generated bench file")
	flag.IntVar(&cfg.N, "n", 0, "number of keys for the generator")
	flag.Float64Var(&cfg.S, "a", cfg.S, "Zipf parameter s (0 = uniform)")
	flag.Float64Var(&cfg.V, "b", cfg.V, "Zipf parameter v")
	flag.IntVar(&cfg.K, "k", 0, "number of operations to generate")
	flag.Float64Var(&cfg.DupRatio, "dupRatio", cfg.DupRatio, "ratio of duplicate inserts")
	flag.Float64Var(&cfg.RemoveRatio, "removeRatio", cfg.RemoveRatio, "ratio of remove operations")
	flag.Float64Var(&cfg.FindAllRatio, "findAllRatio", cfg.FindAllRatio, "ratio of findAll operations")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for generators/structures")
	flag.StringVar(&impls, "impl", "all", "implementations to run: all or comma list (quad,basic)")
	flag.IntVar(&runs, "runs", 5, "how many times to repeat each benchmark")
	flag.Parse()

	var benchPaths []string

	// 判斷模式: -dir 優先於 -file
	switch {
	case dir != "":
		files, err := collectBenchFilesFromDir(dir)
		if err != nil {
			log.Fatalf("scan directory %s: %v", dir, err)
		}
		if len(files) == 0 {
			log.Fatalf("no .bin files found in directory: %s", dir)
		}
		benchPaths = files
		fmt.Printf("Found %d bench files in directory: %s\n", len(benchPaths), dir)
	case file != "":
		benchPaths = []string{file}
	default:
		if out == "" {
			log.Fatalf("either -file, -dir, or -out with generation params (-n,-a,-b,-k,-seed) must be provided")
		}
		cfg.Seed = uint64(seed)
		bf, err := datastream.Generate(cfg)
		if err != nil {
			log.Fatalf("generate bench file: %v", err)
		}
		if err := datastream.WriteBenchFile(out, bf); err != nil {
			log.Fatalf("write bench file: %v", err)
		}
		fmt.Printf("generated bench_file: %s\n", out)
		benchPaths = []string{out}
	}
	if runs <= 0 {
		log.Fatalf("invalid -runs: %d", runs)
	}

	toRun := parseImpls(impls)
	fmt.Printf("implementations to test: %s\n", strings.Join(toRun, ","))
	fmt.Println(strings.Repeat("=", 80))

	if len(benchPaths) > 1 {
		runBatchBenchmark(benchPaths, toRun, runs, seed)
	} else {
		runBenchmark(benchPaths[0], toRun, runs, seed)
	}
}

// collectBenchFilesFromDir 收集指定目錄下所有 .bin 檔案
func collectBenchFilesFromDir(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".bin" {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	// 排序檔案名稱以確保順序一致
	sort.Strings(files)
	return files, nil
}

// runBatchBenchmark 對多個 benchmark 檔案執行測試並匯總統計
func runBatchBenchmark(benchPaths []string, toRun []string, runs int, seed int64) {
	fmt.Printf("Testing %d benchmark files...\n\n", len(benchPaths))

	type implStats struct {
		avgMsList  []float64
		minMsList  []float64
		maxMsList  []float64
		opsList    []int
		stepsList  []float64
		heightList []float64
		totalRuns  int
	}

	allStats := make(map[string]*implStats)
	for _, impl := range toRun {
		allStats[impl] = &implStats{}
	}

	for idx, benchPath := range benchPaths {
		fmt.Printf("[%d/%d] Testing: %s\n", idx+1, len(benchPaths), filepath.Base(benchPath))

		bf, err := datastream.ReadBenchFile(benchPath)
		if err != nil {
			log.Printf("  ERROR reading bench file: %v\n", err)
			continue
		}
		fmt.Printf("  ops: %d, entropy: %.6f\n", len(bf.Ops), bf.Entropy())

		for _, impl := range toRun {
			fmt.Printf("  - benchmarking %s...\n", impl)
			stats := benchmarkImpl(bf, impl, runs, seed)

			s := allStats[impl]
			s.avgMsList = append(s.avgMsList, stats.avgMs)
			s.minMsList = append(s.minMsList, stats.minMs)
			s.maxMsList = append(s.maxMsList, stats.maxMs)
			s.opsList = append(s.opsList, len(bf.Ops))
			s.heightList = append(s.heightList, float64(stats.height))
			if !math.IsNaN(stats.avgSteps) {
				s.stepsList = append(s.stepsList, stats.avgSteps)
			}
			s.totalRuns += runs
		}
		fmt.Println()
	}

	fmt.Println(strings.Repeat("=", 80))
	fmt.Println("AGGREGATE STATISTICS (across all benchmark files)")
	fmt.Println(strings.Repeat("=", 80))

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		stats := allStats[impl]
		if len(stats.avgMsList) == 0 {
			continue
		}

		totalOps := 0
		totalSec := 0.0
		for i, ops := range stats.opsList {
			totalOps += ops
			totalSec += stats.avgMsList[i] / 1000.0
		}

		steps := "N/A"
		if len(stats.stepsList) > 0 {
			steps = fmt.Sprintf("%.6f", average(stats.stepsList))
		}

		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", stats.totalRuns),
			fmt.Sprintf("%.3f", average(stats.avgMsList)),
			fmt.Sprintf("%.3f", minOf(stats.minMsList)),
			fmt.Sprintf("%.3f", maxOf(stats.maxMsList)),
			fmt.Sprintf("%.2f", float64(totalOps)/totalSec),
			fmt.Sprintf("%.2f", average(stats.heightList)),
			steps,
		})
	}

	renderTable([]string{"Impl", "Total Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Avg Ops/s", "Avg Height", "AvgSteps"}, rows)
}

// runBenchmark 執行單一 benchmark 檔案的測試
func runBenchmark(benchPath string, toRun []string, runs int, seed int64) {
	bf, err := datastream.ReadBenchFile(benchPath)
	if err != nil {
		log.Printf("ERROR reading bench file %s: %v", benchPath, err)
		return
	}

	fmt.Printf("bench_file: %s\n", benchPath)
	fmt.Printf("ops: %d\n", len(bf.Ops))
	fmt.Printf("entropy: %.6f\n", bf.Entropy())

	rows := make([][]string, 0, len(toRun))
	for _, impl := range toRun {
		fmt.Printf("benchmarking %s...\n", impl)
		stats := benchmarkImpl(bf, impl, runs, seed)
		thr := float64(len(bf.Ops)) / (stats.avgMs / 1000.0)
		steps := "N/A"
		if !math.IsNaN(stats.avgSteps) {
			steps = fmt.Sprintf("%.6f", stats.avgSteps)
		}
		rows = append(rows, []string{
			impl,
			fmt.Sprintf("%d", runs),
			fmt.Sprintf("%.3f", stats.avgMs),
			fmt.Sprintf("%.3f", stats.minMs),
			fmt.Sprintf("%.3f", stats.maxMs),
			fmt.Sprintf("%.2f", thr),
			fmt.Sprintf("%d", stats.length),
			fmt.Sprintf("%d", stats.height),
			steps,
		})
	}

	renderTable([]string{"Impl", "Runs", "Avg(ms)", "Min(ms)", "Max(ms)", "Ops/s", "Len", "Height", "AvgSteps"}, rows)
}

func renderTable(header []string, rows [][]string) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_CENTER)
	table.SetAutoWrapText(false)
	table.AppendBulk(rows)
	table.Render()
}

func average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func minOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = min(m, v)
	}
	return m
}

func maxOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		m = max(m, v)
	}
	return m
}

type benchStats struct {
	avgMs    float64
	minMs    float64
	maxMs    float64
	length   int
	height   int
	avgSteps float64 // 取最後一次執行的結構，無法分析時為 NaN
}

func benchmarkImpl(bf *datastream.BenchFile, impl string, runs int, seed int64) benchStats {
	durations := make([]float64, 0, runs)
	var last skiplist.SkipList
	for i := 0; i < runs; i++ {
		sl := newImpl(impl, seed+int64(i), len(bf.Dist))
		elapsed := runOpsAndTime(sl, bf)
		durations = append(durations, float64(elapsed.Microseconds())/1000.0)
		last = sl
	}
	sort.Float64s(durations)

	stats := benchStats{
		avgMs:    average(durations),
		minMs:    durations[0],
		maxMs:    durations[len(durations)-1],
		avgSteps: math.NaN(),
	}
	if analy, ok := last.(skiplist.Analyable); ok {
		stats.length, stats.height = analy.Stats()
		stats.avgSteps, _ = analyTool.AnalyzeStep(analy, bf.Dist)
		if err := analyTool.CheckStruct(analy); err != nil {
			log.Printf("%s: structure check failed: %v", impl, err)
		}
	}
	return stats
}

func newImpl(impl string, seed int64, keys int) skiplist.SkipList {
	switch impl {
	case "quad":
		return quadmap.New(uint64(seed), uint(keys))
	case "basic":
		return basic.NewBasicSkipList(seed)
	default:
		log.Fatalf("unknown -impl: %s", impl)
		return nil
	}
}

func runOpsAndTime(sl skiplist.SkipList, bf *datastream.BenchFile) time.Duration {
	start := time.Now()
	for _, op := range bf.Ops {
		datastream.Apply(sl, op, bf.Weight)
	}
	return time.Since(start)
}

func parseImpls(s string) []string {
	if s == "" || s == "all" {
		return allImpls
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	seen := map[string]bool{}
	for _, p := range parts {
		t := strings.TrimSpace(strings.ToLower(p))
		if t == "" || seen[t] {
			continue
		}
		switch t {
		case "quad", "basic":
			out = append(out, t)
			seen[t] = true
		}
	}
	if len(out) == 0 {
		return allImpls
	}
	return out
}
