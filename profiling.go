package main

import (
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"sync"
	"time"
)

// startCPUProfile records a CPU profile into path for at most window. The
// returned stop function is idempotent and safe to defer.
func startCPUProfile(path string, window time.Duration) (func(), error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("starting CPU profile: %w", err)
	}
	var once sync.Once
	stop := func() {
		once.Do(func() {
			pprof.StopCPUProfile()
			if err := f.Close(); err != nil {
				log.Printf("CPU profile %s: %v", path, err)
				return
			}
			log.Printf("CPU profile written to %s", path)
		})
	}
	if window > 0 {
		time.AfterFunc(window, stop)
	}
	return stop, nil
}

// writeHeapProfile snapshots live allocations into path after a GC.
func writeHeapProfile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		f.Close()
		return fmt.Errorf("writing heap profile: %w", err)
	}
	log.Printf("Heap profile written to %s", path)
	return f.Close()
}
