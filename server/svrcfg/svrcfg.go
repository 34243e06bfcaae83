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

package svrcfg

import (
	"log/slog"

	"github.com/zintix-labs/randlab/errs"
	"github.com/zintix-labs/randlab/server/logger"
)

// 資源上限預設值
const (
	DefaultLanes    = 8192      // 每個請求的 generator 池大小
	DefaultMaxDraws = 5_000_000 // 單一請求可要求的變量上限
	maxLanesCap     = 1 << 20
)

type SvrCfg struct {
	Log      *slog.Logger
	Lanes    int // 請求未指定 lanes 時的預設池容量
	MaxDraws int // 單一請求輸出量上限
}

func (sc *SvrCfg) Vaild() error {
	if sc.Log != nil {
		if ah, ok := sc.Log.Handler().(*logger.AsyncHandler); ok && !ah.Ready() {
			return errs.NewFatal("nil default log handler: async handler is nil")
		}
	} else {
		// 保持安靜、合法
		sc.Log, _ = logger.NewAsync(1024, logger.ModeDev)
	}

	// 1 <= Lanes <= maxLanesCap
	// for 資源管理
	if sc.Lanes < 1 {
		sc.Lanes = DefaultLanes
	}
	sc.Lanes = min(maxLanesCap, sc.Lanes)

	if sc.MaxDraws < 1 {
		sc.MaxDraws = DefaultMaxDraws
	}
	return nil
}
