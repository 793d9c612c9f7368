// Package utils contains small shared helpers for splitting per-pixel work
// across goroutines.
package utils

import (
	"image"
	"runtime"
	"sync"

	goutils "go.viam.com/utils"
)

// ParallelFactor controls the max level of parallelization. This might be useful
// to set in tests where too much parallelism actually slows tests down in
// aggregate.
var ParallelFactor = runtime.GOMAXPROCS(0)

func init() {
	if ParallelFactor <= 0 {
		ParallelFactor = 1
	}
}

// ParallelRanges splits the index range [0, n) into one contiguous chunk per
// worker and runs work on each chunk in its own goroutine. It returns once all
// chunks are done. Chunks never overlap, so work may freely mutate per-index
// state without synchronization.
func ParallelRanges(n int, work func(from, to int)) {
	if n <= 0 {
		return
	}
	workers := ParallelFactor
	if workers > n {
		workers = n
	}
	chunk := n / workers

	var wait sync.WaitGroup
	wait.Add(workers)
	for i := 0; i < workers; i++ {
		from := i * chunk
		to := from + chunk
		if i == workers-1 {
			to = n
		}
		fromCopy, toCopy := from, to
		goutils.PanicCapturingGo(func() {
			defer wait.Done()
			work(fromCopy, toCopy)
		})
	}
	wait.Wait()
}

// ParallelForEachPixel loops through the image and calls f for each [x, y]
// position. Rows are partitioned across goroutines; f must only touch state
// belonging to its own pixel.
func ParallelForEachPixel(size image.Point, f func(x, y int)) {
	ParallelRanges(size.Y, func(fromY, toY int) {
		for y := fromY; y < toY; y++ {
			for x := 0; x < size.X; x++ {
				f(x, y)
			}
		}
	})
}
