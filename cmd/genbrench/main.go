package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Hakuto4838/SkipDict.git/datastream"
)

// parseScientificNotation 解析科學記號字串（如 "1e5"）為整數
func parseScientificNotation(s string) (int, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// formatScientific 將數字格式化為科學記號（用於檔名）
func formatScientific(n int) string {
	if n == 0 {
		return "0"
	}

	exp := 0
	divisor := 1
	for n/divisor >= 10 {
		divisor *= 10
		exp++
	}
	coefficient := float64(n) / float64(divisor)

	// 如果係數是整數，就不顯示小數
	if coefficient == float64(int(coefficient)) {
		return fmt.Sprintf("%de%d", int(coefficient), exp)
	}
	return fmt.Sprintf("%.1fe%d", coefficient, exp)
}

// formatDecimal 將浮點數格式化為不含小數點的字串（用於檔名），保留兩位小數
func formatDecimal(f float64) string {
	val := int(f * 100)
	switch {
	case val%100 == 0:
		return fmt.Sprintf("%d", val/100)
	case val%10 == 0:
		return fmt.Sprintf("%d_%d", val/100, (val%100)/10)
	default:
		return fmt.Sprintf("%d_%02d", val/100, val%100)
	}
}

func main() {
	var out string
	var path string
	var nStr string
	var kStr string
	var seed int64
	var nums int
	cfg := datastream.DefaultWorkload()

	flag.StringVar(&nStr, "n", "1e3", "number of keys (支援科學記號，如 1e5)")
	flag.Float64Var(&cfg.S, "a", cfg.S, "Zipf parameter s (設為 0 時使用均勻分布)")
	flag.Float64Var(&cfg.V, "b", cfg.V, "Zipf parameter v (當 a > 0 時有效)")
	flag.StringVar(&kStr, "k", "1e5", "number of operations to generate (支援科學記號，如 1e6)")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for the generator")
	flag.Float64Var(&cfg.DupRatio, "dupRatio", cfg.DupRatio, "ratio of duplicate inserts")
	flag.Float64Var(&cfg.RemoveRatio, "removeRatio", cfg.RemoveRatio, "ratio of remove operations")
	flag.Float64Var(&cfg.FindAllRatio, "findAllRatio", cfg.FindAllRatio, "ratio of findAll operations")
	flag.BoolVar(&cfg.SimpleKey, "simple", false, "keys 使用 0..n-1")
	flag.IntVar(&nums, "nums", 1, "number of files to generate")
	flag.StringVar(&out, "out", "", "output filename prefix (留空則自動生成)")
	flag.StringVar(&path, "path", ".", "output directory path (輸出目錄路徑)")
	flag.Parse()

	var err error
	if cfg.N, err = parseScientificNotation(nStr); err != nil {
		log.Fatalf("解析參數 n 錯誤: %v", err)
	}
	if cfg.K, err = parseScientificNotation(kStr); err != nil {
		log.Fatalf("解析參數 k 錯誤: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid workload: %v", err)
	}

	// 如果沒有指定輸出檔名，則根據參數自動生成
	if out == "" {
		out = fmt.Sprintf("bench_n%s_k%s_a%s_b%s_dup%s_rm%s_fa%s",
			formatScientific(cfg.N),
			formatScientific(cfg.K),
			formatDecimal(cfg.S),
			formatDecimal(cfg.V),
			formatDecimal(cfg.DupRatio),
			formatDecimal(cfg.RemoveRatio),
			formatDecimal(cfg.FindAllRatio))
	}

	if path != "." && path != "" {
		if err := os.MkdirAll(path, 0755); err != nil {
			log.Fatalf("建立輸出目錄失敗: %v", err)
		}
	}

	fmt.Printf("生成參數:\n")
	fmt.Printf("  n (keys): %d\n", cfg.N)
	fmt.Printf("  k (operations): %d\n", cfg.K)
	fmt.Printf("  a: %.2f\n", cfg.S)
	fmt.Printf("  b: %.2f\n", cfg.V)
	fmt.Printf("  dupRatio: %.2f\n", cfg.DupRatio)
	fmt.Printf("  removeRatio: %.2f\n", cfg.RemoveRatio)
	fmt.Printf("  findAllRatio: %.2f\n", cfg.FindAllRatio)
	fmt.Printf("  seed: %d\n", seed)
	fmt.Printf("  檔案數量: %d\n", nums)
	fmt.Printf("  輸出目錄: %s\n\n", path)

	for i := 0; i < nums; i++ {
		filename := fmt.Sprintf("%s.bin", out)
		if nums > 1 {
			filename = fmt.Sprintf("%s_%d.bin", out, i)
		}
		outfile := filepath.Join(path, filename)
		fmt.Printf("正在生成 %s...\n", outfile)

		cfg.Seed = uint64(seed + int64(i))
		bf, err := datastream.Generate(cfg)
		if err != nil {
			log.Fatalf("錯誤: %v", err)
		}
		if err := datastream.WriteBenchFile(outfile, bf); err != nil {
			log.Fatalf("錯誤: %v", err)
		}
		fmt.Printf("  ops: %d, entropy: %.6f\n", len(bf.Ops), bf.Entropy())
	}
	fmt.Println("完成!")
}
