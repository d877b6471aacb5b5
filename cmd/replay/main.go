package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tactusdev/tactus/internal/replay"
)

// #region main

func main() {
	flag.Parse()
	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: replay fixture.json [fixture.json ...]")
		os.Exit(2)
	}

	failed := 0
	for _, path := range flag.Args() {
		f, err := replay.LoadFixture(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			failed++
			continue
		}
		res, err := replay.Replay(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", path, err)
			failed++
			continue
		}
		if res.Passed {
			fmt.Printf("PASS %s (%s)\n", path, res.Description)
			continue
		}
		failed++
		fmt.Printf("FAIL %s (%s)\n", path, res.Description)
		for _, m := range res.Mismatches {
			fmt.Printf("  %s[%d]: got %.10f, want %.10f\n", m.Key, m.Position, m.Got, m.Want)
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

// #endregion main
