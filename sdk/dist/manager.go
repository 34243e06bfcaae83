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

package dist

// PoissonManager 對「同一個 lambda 連續產生」的常見工作負載做單格快取。
//
// 建表成本遠高於單顆抽樣；模擬場景幾乎都是固定 lambda 連打，
// 所以同 lambda 的重複呼叫絕不能每次重建。
//
// 不變量：
//   - 快取最多一格；換新 lambda 就整格汰換。
//   - lambda 比對用「精確相等」。容忍誤差會讓重建行為依賴呼叫史，犧牲可重現性。
//   - 建表失敗時前一格完整保留（不會留下半殘狀態）。
//
// 併發語意：單一擁有者。只有 SetLambda 會變動狀態，產生期間唯讀。
type PoissonManager struct {
	table    *PoissonTable
	rebuilds int
}

// SetLambda 確保快取對應指定 lambda。
//
//   - 與現役表相同 → no-op，回傳 nil。
//   - 不同（或尚無表）→ 重建；失敗回傳 InvalidParam 且現役表不動。
func (m *PoissonManager) SetLambda(lambda float64) error {
	if m.table != nil && m.table.Lambda == lambda {
		return nil
	}
	t, err := BuildPoissonTable(lambda)
	if err != nil {
		return err
	}
	m.table = t
	m.rebuilds++
	return nil
}

// Functor 回傳現役表的轉換子。SetLambda 成功之前呼叫是使用錯誤。
func (m *PoissonManager) Functor() Poisson {
	return NewPoisson(m.table)
}

// Rebuilds 回傳累計建表次數（測試/觀測用：同 lambda 連打應恆為 1）。
func (m *PoissonManager) Rebuilds() int {
	return m.rebuilds
}
