// fare computes pairwise fairness metrics for rankings.
//
// Usage:
//
//	fare score   --input <file> [--metric parity|equality|calibration|all]
//	fare audit   --input <file> --metric <m> [--window w] [--step s] [--plot]
//	fare report  --input <file> [--window w] [--step s] [--output text|json|yaml]
//	fare serve
//	fare example
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
