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

// Package stats 對產生出的變量批次做彙總統計與分布驗證。
//
// 熱路徑只做累加（count/sum/sumSq/min/max/直方圖計數），
// 所有需要除法、開根號的整理都留到 Done() 一次算完。
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gonum.org/v1/gonum/stat/distuv"
)

var lang language.Tag = language.English

// 信賴區間
type CI struct {
	Lo float64 `json:"Lo"`
	Hi float64 `json:"Hi"`
}

// BatchReport 為一批（或多批連續）變量的統計報告。
//
// 使用方式：Collect 累積 → Done 整理 → StdOut / WriteWith 輸出。
type BatchReport struct {
	Summary *SummaryReport `json:"Summary"`
	Dist    *DistReport    `json:"Dist,omitempty"`

	hist   *Histogram
	sum    float64
	sumSq  float64
	isDone bool
}

type SummaryReport struct {
	Kind   string  `json:"Kind"` // uniform / normal / lognormal / poisson / raw
	Seed   uint64  `json:"Seed"`
	Offset uint64  `json:"Offset"`
	Lanes  int     `json:"Lanes"`
	Count  int     `json:"Count"`
	Mean   float64 `json:"Mean"`
	MeanCI CI      `json:"MeanCI"`
	Std    float64 `json:"Std"`
	Min    float64 `json:"Min"`
	Max    float64 `json:"Max"`
}

// DistReport 分桶落點統計
type DistReport struct {
	Labels []string  `json:"Labels"`
	Counts []int     `json:"Counts"`
	Freqs  []float64 `json:"Freqs"`
}

// NewBatchReport 建立報告；hist 可為 nil（只要彙總、不要分桶時）。
func NewBatchReport(kind string, seed uint64, offset uint64, lanes int, hist *Histogram) *BatchReport {
	r := &BatchReport{
		Summary: &SummaryReport{
			Kind:   kind,
			Seed:   seed,
			Offset: offset,
			Lanes:  lanes,
			Min:    math.Inf(1),
			Max:    math.Inf(-1),
		},
	}
	r.hist = hist
	return r
}

// Collect 累積一批 float64 變量。
func (r *BatchReport) Collect(values []float64) {
	for _, v := range values {
		r.observe(v)
	}
}

// CollectUints 累積一批計數值（Poisson / raw）。
func (r *BatchReport) CollectUints(values []uint32) {
	for _, v := range values {
		r.observe(float64(v))
	}
}

func (r *BatchReport) observe(v float64) {
	r.Summary.Count++
	r.sum += v
	r.sumSq += v * v
	if v < r.Summary.Min {
		r.Summary.Min = v
	}
	if v > r.Summary.Max {
		r.Summary.Max = v
	}
	if r.hist != nil {
		r.hist.Observe(v)
	}
}

// Done 將累積計數轉換為最終統計結果並鎖定 isDone 標記。
//
// 重複呼叫安全：第一次之後都是 no-op。
func (r *BatchReport) Done() {
	if r.isDone {
		return
	}
	n := float64(r.Summary.Count)
	if n > 0 {
		r.Summary.Mean = r.sum / n
	}
	if n > 1 {
		variance := (r.sumSq - r.sum*r.sum/n) / (n - 1)
		if variance < 0 {
			variance = 0
		}
		r.Summary.Std = math.Sqrt(variance)

		// 95% 平均數信賴區間（常態近似；分位數交給 distuv，不寫死 1.96）
		z := distuv.UnitNormal.Quantile(0.975)
		se := r.Summary.Std / math.Sqrt(n)
		r.Summary.MeanCI = CI{Lo: r.Summary.Mean - z*se, Hi: r.Summary.Mean + z*se}
	}
	if r.hist != nil {
		r.Dist = r.hist.Report()
	}
	r.isDone = true
}

func (r *BatchReport) WriteWith(w io.Writer, rep BatchReportRender) error {
	r.Done()
	return rep.Write(w, r)
}

func (r *BatchReport) StdOut(ut time.Duration) {
	r.Done()
	formatDuration(ut, r.Summary.Count)
	sk, sm := r.fmtBasic()
	str := fmtTable(r.Summary.Kind, sk, sm)
	fmt.Println(str)
}

// ============================================================
// ** 內部方法 **
// ============================================================

func formatDuration(d time.Duration, draws int) {
	p := message.NewPrinter(lang)
	if d < 0 {
		d = -d
	}
	sec := d.Seconds()
	if sec <= 0 {
		sec = 1e-9
	}
	dps := int(float64(draws) / sec)
	if sec < 60.0 {
		p.Printf("used: %.2f seconds\ndps : %d draws/sec\n", sec, dps)
		return
	}
	s := int(d.Seconds()) % 60
	m := int(d.Minutes()) % 60
	h := int(d.Hours())
	if h == 0 {
		p.Printf("used: %dm %ds\ndps : %d draws/sec\n", m, s, dps)
		return
	}
	p.Printf("used: %dh:%dm:%ds\ndps : %d draws/sec\n", h, m, s, dps)
}

// StdOut

func (r *BatchReport) fmtBasic() ([]string, map[string]string) {
	p := message.NewPrinter(lang)
	s := r.Summary
	basic := map[string]string{
		"Kind":        s.Kind,
		"Seed":        p.Sprintf("%d", s.Seed),
		"Offset":      p.Sprintf("%d", s.Offset),
		"Lanes":       p.Sprintf("%d", s.Lanes),
		"Total Draws": p.Sprintf("%d", s.Count),
		"Mean":        p.Sprintf("%.6f", s.Mean),
		"Mean 95% CI": p.Sprintf("[%.6f,%.6f]", s.MeanCI.Lo, s.MeanCI.Hi),
		"STD":         p.Sprintf("%.6f", s.Std),
		"Min":         p.Sprintf("%.6f", s.Min),
		"Max":         p.Sprintf("%.6f", s.Max),
	}
	keys := []string{"Kind", "Seed", "Offset", "Lanes", "Total Draws", "Mean", "Mean 95% CI", "STD", "Min", "Max"}
	return keys, basic
}

func fmtTable(title string, keys []string, msg map[string]string) string {
	p := message.NewPrinter(lang)
	maxKeyLen := 0
	maxValLen := 0
	for k, m := range msg {
		if w := runewidth.StringWidth(k); w > maxKeyLen {
			maxKeyLen = w
		}
		if w := runewidth.StringWidth(m); w > maxValLen {
			maxValLen = w
		}
	}
	maxKeyLen += 2
	maxValLen += 2

	divider := "+" + strings.Repeat("-", maxKeyLen) + "+" + strings.Repeat("-", maxValLen) + "+\n"
	top := "+" + strings.Repeat("-", maxKeyLen+1+maxValLen) + "+\n"

	totalInner := maxKeyLen + maxValLen + 1
	titleW := runewidth.StringWidth(title)

	left := (totalInner - titleW) / 2
	right := totalInner - titleW - left

	fmtStr := top
	fmtStr += p.Sprintf("|%s%s%s|\n", blank(left), title, blank(right))
	fmtStr += divider
	for _, k := range keys {
		fmtStr += p.Sprintf("| %s%s | %s%s |\n", k, blank(maxKeyLen-2-runewidth.StringWidth(k)), msg[k], blank(maxValLen-2-runewidth.StringWidth(msg[k])))
	}
	fmtStr += divider

	return fmtStr
}

func blank(w int) string {
	if w < 1 {
		return ""
	}
	return strings.Repeat(" ", w)
}
