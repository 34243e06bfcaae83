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

// Package randlab 是 MRG32k3a 產生器家族的「池/派工層（orchestration layer）」。
//
// 它負責把三個地基組裝起來，對外提供大批量的均勻/常態/對數常態/Poisson 變量：
//
//  1. 引擎池（EnginePool）：固定容量的每線道引擎狀態，一線道一條獨立子流。
//  2. 派工佇列（LaunchQueue）：單一提交佇列，所有平行協定依進佇順序執行，
//     對呼叫端非同步（Launch 排入即返回，不等完成）。
//  3. 分布轉換子（sdk/dist）：把引擎原始輸出變成有型別的結果。
//
// 核心思想是「固定線道池 + 跨步掃描」：
//   - 池的容量在建構時固定；輸出長度 n 千變萬化。
//   - 線道 i 負責輸出位置 i, i+stride, i+2*stride, ...（stride = 線道總數），
//     池比 n 小就多跑幾圈，池比 n 大多出的線道閒置。
//   - 每次掃描把線道狀態「載入→消耗→寫回」，下一次呼叫從上次停下的地方
//     繼續（statistical continuation），絕不重複、絕不跳過。
//
// 生命週期（懶初始化）：
//
//	Fresh → 池未初始化 →（第一次產生前）初始化協定 → 池就緒 →
//	[產生呼叫...] → SetSeed/SetOffset → 池未初始化 → ... → Destroy
//
// 換 seed/offset 只翻一個旗標，不重配置；初始化協定在下一次產生前才跑，
// 同一個 (seed, offset) 世代只跑一次。
//
// 典型使用情境：
//   - 模擬工作負載：建一個 Generator，連續要幾億顆變量，池狀態自動續流。
//   - 服務端（server/）與批量工具（cmd/run）都只是這個核心的薄殼。
//
// 注意：本層只管一個產生器家族（MRG32k3a），但池/掃描/快取的骨架就是
// 整個程式庫每個家族共用的樣板。
package randlab

const (
	// DefaultSeed 為預設種子；seed 給 0 時一律換成這個值（0 會讓部分
	// 遞迴退化，上游實作的慣例也是如此）。
	DefaultSeed uint64 = 12345

	// DefaultLanes 為預設池容量（線道數）。
	DefaultLanes = 256 * 1024
)
