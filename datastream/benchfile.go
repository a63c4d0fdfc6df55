package datastream

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"

	"github.com/Hakuto4838/SkipDict.git/skiplist"
)

// 檔案格式（LittleEndian）：
// [8]byte  Magic: "QDBENCH1"
// uint16   Version: 1
// uint16   Reserved: 0
// uint32   DistCount
// 重複 DistCount 次（key 升冪）：
//   int64   Key
//   float64 Weight
// uint64   OpCount
// 重複 OpCount 次：
//   uint8   OperationType (0=Insert,1=Find,2=FindAll,3=Remove)
//   int64   Key

var (
	benchMagic   = [8]byte{'Q', 'D', 'B', 'E', 'N', 'C', 'H', '1'}
	benchVersion = uint16(1)
)

// BenchFile 是一份 key 分布加上操作序列
type BenchFile struct {
	Dist map[skiplist.K]float64
	Ops  []Operation
}

// Entropy 回傳分布的熵
func (bf *BenchFile) Entropy() float64 {
	return EntropyFromDist(bf.Dist)
}

// Weight 回傳 key 在分布中的機率，插入時作為 value 使用
func (bf *BenchFile) Weight(key skiplist.K) skiplist.V {
	return skiplist.V(bf.Dist[key])
}

// ToSequenceModel 將 BenchFile 轉為可重播的 SequenceModel
func (bf *BenchFile) ToSequenceModel() *SequenceModel {
	if bf == nil {
		return NewSequenceModelFromOps(nil)
	}
	return NewSequenceModelFromOps(bf.Ops)
}

// WriteTo 以上述格式輸出
func (bf *BenchFile) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	bw := bufio.NewWriter(cw)
	le := binary.LittleEndian

	// Header
	if _, err := bw.Write(benchMagic[:]); err != nil {
		return cw.n, errors.Wrap(err, "write magic")
	}
	if err := binary.Write(bw, le, benchVersion); err != nil {
		return cw.n, errors.Wrap(err, "write version")
	}
	if err := binary.Write(bw, le, uint16(0)); err != nil { // reserved
		return cw.n, errors.Wrap(err, "write reserved")
	}

	// Distribution map（使用升冪 key 輸出，確保可重現）
	keys := sortedKeys(bf.Dist)
	if err := binary.Write(bw, le, uint32(len(keys))); err != nil {
		return cw.n, errors.Wrap(err, "write dist count")
	}
	for _, k := range keys {
		if err := binary.Write(bw, le, int64(k)); err != nil {
			return cw.n, errors.Wrap(err, "write dist key")
		}
		if err := binary.Write(bw, le, bf.Dist[k]); err != nil {
			return cw.n, errors.Wrap(err, "write dist weight")
		}
	}

	// Operations
	if err := binary.Write(bw, le, uint64(len(bf.Ops))); err != nil {
		return cw.n, errors.Wrap(err, "write op count")
	}
	for i, op := range bf.Ops {
		if err := binary.Write(bw, le, uint8(op.Type)); err != nil {
			return cw.n, errors.Wrapf(err, "write op %d", i)
		}
		if err := binary.Write(bw, le, int64(op.Key)); err != nil {
			return cw.n, errors.Wrapf(err, "write op %d", i)
		}
	}

	if err := bw.Flush(); err != nil {
		return cw.n, errors.Wrap(err, "flush")
	}
	return cw.n, nil
}

// WriteBenchFile 將 bf 寫入 filename
func WriteBenchFile(filename string, bf *BenchFile) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	if _, err := bf.WriteTo(file); err != nil {
		file.Close()
		return errors.Wrapf(err, "write %s", filename)
	}
	return file.Close()
}

// ReadBenchFrom 從 r 讀取一份 BenchFile
func ReadBenchFrom(r io.Reader) (*BenchFile, error) {
	br := bufio.NewReader(r)
	le := binary.LittleEndian

	var magic [8]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		return nil, errors.Wrap(err, "read magic")
	}
	if magic != benchMagic {
		return nil, errors.Newf("invalid magic: %q", magic)
	}
	var ver uint16
	if err := binary.Read(br, le, &ver); err != nil {
		return nil, errors.Wrap(err, "read version")
	}
	if ver != benchVersion {
		return nil, errors.Newf("unsupported version: %d", ver)
	}
	var reserved uint16
	if err := binary.Read(br, le, &reserved); err != nil {
		return nil, errors.Wrap(err, "read reserved")
	}

	// distribution
	var distCount uint32
	if err := binary.Read(br, le, &distCount); err != nil {
		return nil, errors.Wrap(err, "read dist count")
	}
	dist := make(map[skiplist.K]float64, min(distCount, 1<<20))
	for i := uint32(0); i < distCount; i++ {
		var key int64
		var weight float64
		if err := binary.Read(br, le, &key); err != nil {
			return nil, errors.Wrapf(err, "read dist entry %d", i)
		}
		if err := binary.Read(br, le, &weight); err != nil {
			return nil, errors.Wrapf(err, "read dist entry %d", i)
		}
		dist[skiplist.K(key)] = weight
	}

	// operations
	var opCount uint64
	if err := binary.Read(br, le, &opCount); err != nil {
		return nil, errors.Wrap(err, "read op count")
	}
	ops := make([]Operation, 0, min(opCount, 1<<20))
	for i := uint64(0); i < opCount; i++ {
		var t uint8
		var key int64
		if err := binary.Read(br, le, &t); err != nil {
			return nil, errors.Wrapf(err, "read op %d", i)
		}
		if err := binary.Read(br, le, &key); err != nil {
			return nil, errors.Wrapf(err, "read op %d", i)
		}
		if !OperationType(t).valid() {
			return nil, errors.Newf("op %d: unknown operation type %d", i, t)
		}
		ops = append(ops, Operation{Type: OperationType(t), Key: skiplist.K(key)})
	}

	return &BenchFile{Dist: dist, Ops: ops}, nil
}

// ReadBenchFile 讀取 bin 檔案，回傳分布與操作序列
func ReadBenchFile(filename string) (*BenchFile, error) {
	fd, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	bf, err := ReadBenchFrom(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}
	return bf, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
