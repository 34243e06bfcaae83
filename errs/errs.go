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

package errs

import (
	"errors"
	"fmt"
)

// ErrLevel : Error 分級，使最上層理解問題嚴重程度
type ErrLevel uint8

const (
	None ErrLevel = iota
	Fatal
	Warn
	Log
)

var errLvMap = map[ErrLevel]string{
	None:  "",
	Fatal: "fatal",
	Warn:  "warn",
	Log:   "log",
}

func ErrLv(errlv ErrLevel) string {
	if str, ok := errLvMap[errlv]; ok {
		return str
	}
	return ""
}

// Status : 錯誤分類，對應產生器核心的三類失敗情境。
//
// 分級（ErrLevel）描述「嚴重程度」，分類（Status）描述「失敗在哪個環節」：
//   - StatusAllocation: 引擎池記憶體保留失敗。建構期錯誤，產生器直接不可用。
//   - StatusLaunch:     平行派工無法排入佇列（佇列已關閉等）。池/快取狀態不變，呼叫端可自行決定是否重試。
//   - StatusInvalidParam: 參數不在合法定義域（例如 Poisson lambda 超界）。前一份快取保持不動。
//
// 核心內部沒有任何自動重試；重試策略（若有）屬於呼叫端。
type Status uint8

const (
	StatusNone Status = iota
	StatusAllocation
	StatusLaunch
	StatusInvalidParam
)

var statusMap = map[Status]string{
	StatusNone:         "",
	StatusAllocation:   "allocation_failed",
	StatusLaunch:       "launch_failure",
	StatusInvalidParam: "invalid_param",
}

func StatusName(s Status) string {
	if str, ok := statusMap[s]; ok {
		return str
	}
	return ""
}

// E 是統一的錯誤型別。
// Message 為經過樣板格式化後的主訊息；Extra 為呼叫端可追加的額外上下文；
// Cause 可串接下層錯誤（wrap）；ErrLv 表示嚴重程度；Code 表示失敗分類。
type E struct {
	Message string
	Extra   string
	Cause   error
	ErrLv   ErrLevel
	Code    Status
}

// Error 實作 error 介面並回傳格式化後的錯誤訊息。
func (e *E) Error() string {
	base := fmt.Sprintf("errlv=%s %s", ErrLv(e.ErrLv), e.Message)
	if e.Code != StatusNone {
		base = fmt.Sprintf("errlv=%s status=%s %s", ErrLv(e.ErrLv), StatusName(e.Code), e.Message)
	}
	if e.Extra != "" {
		base += " | extra: " + e.Extra
	}
	if e.Cause != nil {
		base += fmt.Sprintf(" (cause: %v)", e.Cause)
	}
	return base
}

// Unwrap 讓 errors.Is / errors.As 能夠向下展開。
func (e *E) Unwrap() error { return e.Cause }

// New 依錯誤分級與訊息建立錯誤
func New(errLv ErrLevel, msg string) *E {
	return &E{Message: msg, ErrLv: errLv}
}

func NewFatal(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal}
}

func NewWarn(msg string) *E {
	return &E{Message: msg, ErrLv: Warn}
}

func NewLog(msg string) *E {
	return &E{Message: msg, ErrLv: Log}
}

func Fatalf(format string, a ...any) *E {
	return NewFatal(fmt.Sprintf(format, a...))
}

func Warnf(format string, a ...any) *E {
	return NewWarn(fmt.Sprintf(format, a...))
}

// NewAllocation 建立池配置失敗錯誤（建構期，Fatal）。
func NewAllocation(msg string) *E {
	return &E{Message: msg, ErrLv: Fatal, Code: StatusAllocation}
}

// NewLaunch 建立派工失敗錯誤（呼叫期，Warn：核心狀態未變，呼叫端可善後）。
func NewLaunch(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Code: StatusLaunch}
}

// NewInvalidParam 建立參數超界錯誤（呼叫期，Warn：快取維持前一份）。
func NewInvalidParam(msg string) *E {
	return &E{Message: msg, ErrLv: Warn, Code: StatusInvalidParam}
}

// StatusOf 取出錯誤的失敗分類；非本包錯誤回傳 StatusNone。
func StatusOf(err error) Status {
	var e *E
	if errors.As(err, &e) {
		return e.Code
	}
	return StatusNone
}

// NewWithExtra 與 New 相同，但可附加額外上下文字串（不影響主訊息）。
func NewWithExtra(errLv ErrLevel, msg string, extra string) *E {
	e := New(errLv, msg)
	e.Extra = extra
	return e
}

// Wrap 使用給定的訊息包裝底層錯誤，建立一個 *E。
//
// ErrLevel / Status 規則：
//   - 若 cause 已經是 *E，則沿用其 ErrLv 與 Code（保持原本嚴重度與分類）。
//   - 若 cause 不是本包定義的 *E（多半是標準庫或三方依賴錯誤），則 ErrLv 一律視為 Fatal。
//
// 建議使用方式：
//   - 若你已判斷該錯誤是「可預期且可處理」的情境，請直接建立一個 *E
//     （使用 New / NewWithExtra 並自行指定 ErrLv），而不要對其呼叫 Wrap。
func Wrap(cause error, msg string) *E {
	var e *E
	errLv := Fatal
	code := StatusNone
	if errors.As(cause, &e) {
		errLv = e.ErrLv
		code = e.Code
	}
	r := New(errLv, msg)
	r.Cause = cause
	r.Code = code
	return r
}

// WrapWithExtra 使用給定的訊息與上下文包裝底層錯誤，建立一個 *E
//
// 規則與 Wrap 相同。
func WrapWithExtra(cause error, msg string, extra string) *E {
	r := Wrap(cause, msg)
	r.Extra = extra
	return r
}
