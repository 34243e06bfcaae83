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

package randlab

import (
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/randlab/errs"
)

// LaunchQueue 是產生器的單一提交佇列（執行流）。
//
// 排程模型：
//   - 所有協定（初始化、1:1 掃描、配對掃描）都 Launch 進同一條佇列，
//     彼此依進佇順序執行：A 先進佇，A 的所有線道一定先於 B 的任何線道完成。
//   - Launch 在「排入成功」就返回，不等工作完成——對提交端是非同步的。
//   - 單一工作內部的線道平行由工作自己負責（見 kernel.go），佇列不管。
//
// 生命週期：
//   - Close 之後不再接受新工作（Launch 回傳 LaunchFailure）；
//     已排入的工作會被 drain 完才收攤，不會半路丟棄。
//   - 一旦排入就跑到完；沒有取消、沒有超時（與上游語意一致）。
type LaunchQueue struct {
	tasks     chan func()
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup

	launched  atomic.Int64 // 累計排入數
	completed atomic.Int64 // 累計完成數
}

// NewLaunchQueue 建立佇列並啟動背景 dispatcher。
// buf 控制佇列深度；深度滿時 Launch 會阻塞等位置（仍可能被 Close 打斷）。
func NewLaunchQueue(buf int) *LaunchQueue {
	if buf < 1 {
		buf = 16
	}
	q := &LaunchQueue{
		tasks: make(chan func(), buf),
		done:  make(chan struct{}),
	}
	q.wg.Add(1)
	go q.dispatch()
	return q
}

// dispatch 逐筆執行工作；收到 done 後 drain 到空才退出。
func (q *LaunchQueue) dispatch() {
	defer q.wg.Done()
	for {
		select {
		case fn := <-q.tasks:
			fn()
			q.completed.Add(1)
		case <-q.done:
			for {
				select {
				case fn := <-q.tasks:
					fn()
					q.completed.Add(1)
				default:
					return
				}
			}
		}
	}
}

// Launch 將一個協定排入佇列。
//
// 回傳 nil 表示「排程成功」（不代表執行完成）；佇列已關閉回傳 LaunchFailure，
// 此時佇列與池的狀態都未變動。
func (q *LaunchQueue) Launch(fn func()) error {
	select {
	case <-q.done:
		return errs.NewLaunch("launch queue closed")
	default:
	}
	select {
	case q.tasks <- fn:
		q.launched.Add(1)
		return nil
	case <-q.done:
		return errs.NewLaunch("launch queue closed")
	}
}

// Wait 阻塞直到「目前為止排入的所有工作」都執行完。
//
// 實作上就是排一個屏障工作進佇列：序列執行保證屏障跑到時，
// 之前的工作全部結束。佇列已關閉時回傳 LaunchFailure。
//
// 本核心自己不等完成；Wait 是給「要在別的執行脈絡讀結果」的呼叫端用的。
func (q *LaunchQueue) Wait() error {
	ch := make(chan struct{})
	if err := q.Launch(func() { close(ch) }); err != nil {
		return err
	}
	<-ch
	return nil
}

// Close 關閉佇列：拒絕新工作、drain 既有工作、等 dispatcher 收攤。
// 可重複呼叫。
func (q *LaunchQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
	q.wg.Wait()
}

// Closed 回報佇列是否已關閉。
func (q *LaunchQueue) Closed() bool {
	select {
	case <-q.done:
		return true
	default:
		return false
	}
}

// Launched 回傳累計排入的工作數（觀測用）。
func (q *LaunchQueue) Launched() int64 {
	return q.launched.Load()
}

// Completed 回傳累計完成的工作數（觀測用）。
func (q *LaunchQueue) Completed() int64 {
	return q.completed.Load()
}
