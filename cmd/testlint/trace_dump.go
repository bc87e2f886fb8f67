package main

import (
	"fmt"
	"os"

	"testlint/internal/trace"
)

// crashRing держит кольцевой буфер последнего setupTracing. Он нужен
// только аварийному дампу, поэтому очистка при штатном выходе не требуется.
var crashRing *trace.RingTracer

// dumpTraceOnPanic writes the ring buffer to stderr when the command
// panics, then re-panics so the usual crash report still appears.
func dumpTraceOnPanic() {
	r := recover()
	if r == nil {
		return
	}
	if crashRing != nil {
		fmt.Fprintln(os.Stderr, "panic: dumping trace ring buffer")
		if err := crashRing.Dump(os.Stderr, trace.FormatText); err != nil {
			fmt.Fprintf(os.Stderr, "trace: dump error: %v\n", err)
		}
	}
	panic(r)
}
