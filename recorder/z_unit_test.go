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

package recorder_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/klauspost/compress/zstd"

	"github.com/zintix-labs/randlab/corefmt"
	"github.com/zintix-labs/randlab/recorder"
)

func TestRecordReplayRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	rec, err := recorder.NewDrawRecorder(&buf)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	floats := []float64{0.25, 0.5, 0.75}
	uints := []uint32{1, 4294967087, 42}
	if err := rec.RecordFloats(floats); err != nil {
		t.Fatalf("record floats: %v", err)
	}
	if err := rec.RecordUints(uints); err != nil {
		t.Fatalf("record uints: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if rec.Frames() != 2 || rec.Draws() != 6 {
		t.Fatalf("frames/draws got %d/%d want 2/6", rec.Frames(), rec.Draws())
	}

	var got []recorder.Batch
	err = recorder.Replay(&buf, func(b recorder.Batch) error {
		got = append(got, b)
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("batch count got %d want 2", len(got))
	}
	if got[0].Tag != recorder.TagFloat64 || got[1].Tag != recorder.TagUint32 {
		t.Fatalf("tags got %d/%d", got[0].Tag, got[1].Tag)
	}
	for i, v := range floats {
		if got[0].Floats[i] != v {
			t.Fatalf("float %d got %g want %g", i, got[0].Floats[i], v)
		}
	}
	for i, v := range uints {
		if got[1].Uints[i] != v {
			t.Fatalf("uint %d got %d want %d", i, got[1].Uints[i], v)
		}
	}
}

func TestReplayEmptyStream(t *testing.T) {
	var buf bytes.Buffer
	rec, err := recorder.NewDrawRecorder(&buf)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	calls := 0
	err = recorder.Replay(&buf, func(recorder.Batch) error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if calls != 0 {
		t.Fatalf("empty stream produced %d batches", calls)
	}
}

func TestReplayManyFrames(t *testing.T) {
	var buf bytes.Buffer
	rec, err := recorder.NewDrawRecorder(&buf)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}
	const frames = 50
	for i := 0; i < frames; i++ {
		vals := []uint32{uint32(i), uint32(i * 2)}
		if err := rec.RecordUints(vals); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}
	if err := rec.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	i := 0
	err = recorder.Replay(&buf, func(b recorder.Batch) error {
		if b.Uints[0] != uint32(i) || b.Uints[1] != uint32(i*2) {
			t.Fatalf("frame %d got %v", i, b.Uints)
		}
		i++
		return nil
	})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if i != frames {
		t.Fatalf("replayed %d frames want %d", i, frames)
	}
}

func TestReplayRejectsOversizedCount(t *testing.T) {
	// 手工拼一個 count 溢位的惡意 frame：count*8 回繞後剛好等於 body 長度，
	// 長度檢查會被騙過；Replay 必須回錯誤而不是在配置時 panic。
	var buf bytes.Buffer
	zw, err := zstd.NewWriter(&buf, zstd.WithEncoderConcurrency(1))
	if err != nil {
		t.Fatalf("new zstd writer: %v", err)
	}
	payload := []byte{recorder.TagFloat64}
	payload = binary.AppendUvarint(payload, (1<<61)+1) // (count*8) mod 2^64 == 8
	payload = append(payload, make([]byte, 8)...)
	if err := corefmt.WriteBlobFrame(zw, payload); err != nil {
		t.Fatalf("write frame: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zstd: %v", err)
	}

	err = recorder.Replay(&buf, func(recorder.Batch) error {
		t.Fatalf("malicious frame produced a batch")
		return nil
	})
	if err == nil {
		t.Fatalf("oversized count accepted")
	}
}

func TestReplayRejectsGarbage(t *testing.T) {
	if err := recorder.Replay(bytes.NewReader([]byte("not a zstd stream")), func(recorder.Batch) error {
		return nil
	}); err == nil {
		t.Fatalf("garbage stream accepted")
	}
}
