// Copyright 2025 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package recorder 將產生出的變量批次落地成可重放的二進位串流。
//
// 串流格式：zstd 壓縮層包住連續的 length-prefixed blob frame，
// 每個 frame 為一個批次：
//
//	frame := uvarint(len) || tag(1B) || count(uvarint) || little-endian payload
//
// tag 區分 float64 批次與 uint32 批次。寫入端單寫者；
// 讀回端循序掃 frame 直到 EOF。
package recorder

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/klauspost/compress/zstd"

	"github.com/zintix-labs/randlab/corefmt"
	"github.com/zintix-labs/randlab/errs"
)

// 批次 payload 型別標記
const (
	TagFloat64 byte = 1
	TagUint32  byte = 2
)

// 單一 frame 的讀取上限（防止壞檔造成無界配置）
const maxFrameBytes uint64 = 1 << 28

// DrawRecorder 把變量批次寫進 zstd 串流。非併發安全：一個寫者。
type DrawRecorder struct {
	zw      *zstd.Encoder
	scratch []byte
	frames  int
	draws   int
}

// NewDrawRecorder 在 w 之上建立記錄器。呼叫端保留 w 的關閉責任；
// 記錄完成後必須呼叫 Close 沖出 zstd 尾塊，否則讀回會截斷。
func NewDrawRecorder(w io.Writer) (*DrawRecorder, error) {
	zw, err := zstd.NewWriter(w,
		zstd.WithEncoderLevel(zstd.SpeedFastest),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return nil, errs.Wrap(err, "new zstd writer failed")
	}
	return &DrawRecorder{zw: zw}, nil
}

// RecordFloats 落地一個 float64 批次。
func (r *DrawRecorder) RecordFloats(values []float64) error {
	r.grow(1 + binary.MaxVarintLen64 + 8*len(values))
	p := r.scratch[:0]
	p = append(p, TagFloat64)
	p = binary.AppendUvarint(p, uint64(len(values)))
	for _, v := range values {
		p = binary.LittleEndian.AppendUint64(p, math.Float64bits(v))
	}
	return r.emit(p, len(values))
}

// RecordUints 落地一個 uint32 批次（raw / poisson）。
func (r *DrawRecorder) RecordUints(values []uint32) error {
	r.grow(1 + binary.MaxVarintLen64 + 4*len(values))
	p := r.scratch[:0]
	p = append(p, TagUint32)
	p = binary.AppendUvarint(p, uint64(len(values)))
	for _, v := range values {
		p = binary.LittleEndian.AppendUint32(p, v)
	}
	return r.emit(p, len(values))
}

// Frames 回傳已寫入的批次數。
func (r *DrawRecorder) Frames() int { return r.frames }

// Draws 回傳已寫入的變量總數。
func (r *DrawRecorder) Draws() int { return r.draws }

// Close 沖出壓縮尾塊。之後的 Record 會失敗。
func (r *DrawRecorder) Close() error {
	if err := r.zw.Close(); err != nil {
		return errs.Wrap(err, "close zstd writer failed")
	}
	return nil
}

func (r *DrawRecorder) emit(payload []byte, n int) error {
	if err := corefmt.WriteBlobFrame(r.zw, payload); err != nil {
		return err
	}
	r.frames++
	r.draws += n
	return nil
}

func (r *DrawRecorder) grow(n int) {
	if cap(r.scratch) < n {
		r.scratch = make([]byte, 0, n)
	}
}

// ============================================================
// ** 讀回 **
// ============================================================

// Batch 為讀回的一個批次；Tag 決定哪個欄位有值。
type Batch struct {
	Tag    byte
	Floats []float64
	Uints  []uint32
}

// Replay 循序讀回串流中的所有批次，逐批呼叫 fn；fn 回傳錯誤即中止。
func Replay(src io.Reader, fn func(b Batch) error) error {
	zr, err := zstd.NewReader(src, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return errs.Wrap(err, "new zstd reader failed")
	}
	defer zr.Close()

	br := bufio.NewReader(zr)
	for {
		frame, err := corefmt.ReadBlobFrame(br, maxFrameBytes)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		b, err := decodeBatch(frame)
		if err != nil {
			return err
		}
		if err := fn(b); err != nil {
			return err
		}
	}
}

func decodeBatch(frame []byte) (Batch, error) {
	if len(frame) < 2 {
		return Batch{}, errs.NewWarn("decode batch failed: short frame")
	}
	tag := frame[0]
	count, size := binary.Uvarint(frame[1:])
	if size <= 0 {
		return Batch{}, errs.NewWarn("decode batch failed: invalid count")
	}
	// count 來自不可信輸入：先設上限再做乘法，
	// 否則 count*8 可被溢位繞過、騙過長度檢查後在 make 時炸掉
	if count > maxFrameBytes/4 {
		return Batch{}, errs.NewWarn("decode batch failed: count exceeds frame limit")
	}
	body := frame[1+size:]

	switch tag {
	case TagFloat64:
		if uint64(len(body)) != count*8 {
			return Batch{}, errs.NewWarn("decode batch failed: float payload size mismatch")
		}
		values := make([]float64, count)
		for i := range values {
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(body[i*8:]))
		}
		return Batch{Tag: tag, Floats: values}, nil

	case TagUint32:
		if uint64(len(body)) != count*4 {
			return Batch{}, errs.NewWarn("decode batch failed: uint payload size mismatch")
		}
		values := make([]uint32, count)
		for i := range values {
			values[i] = binary.LittleEndian.Uint32(body[i*4:])
		}
		return Batch{Tag: tag, Uints: values}, nil

	default:
		return Batch{}, errs.NewWarn("decode batch failed: unknown tag")
	}
}
