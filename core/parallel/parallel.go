// Package parallel は添字範囲を分割してゴルーチンで処理する小さなヘルパーを提供する
package parallel

import (
	"runtime"
	"sync"
)

// Parallelize は [0, items) を利用可能な CPU 数で分割し、各範囲 [start, end) に対して
// fn を並列に実行する。全ての呼び出しが終わるまで戻らない
//
// fn は互いに重ならない範囲で呼ばれるため、添字ごとの結果スロットに書き込むだけなら
// 同期は不要。
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}

	workers := runtime.GOMAXPROCS(0)
	if workers > items {
		workers = items
	}
	chunk := (items + workers - 1) / workers

	var wg sync.WaitGroup
	for start := 0; start < items; start += chunk {
		end := start + chunk
		if end > items {
			end = items
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			fn(s, e)
		}(start, end)
	}
	wg.Wait()
}

// ParallelizeWithThreshold は items が threshold を超える場合だけ並列に実行する
// それ以下では呼び出し元のゴルーチンで fn(0, items) を1回呼ぶ
func ParallelizeWithThreshold(items int, threshold int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	if items <= threshold {
		fn(0, items)
		return
	}
	Parallelize(items, fn)
}
