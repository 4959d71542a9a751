// Command nfamatch loads an NFA dump and reports whether a file (or
// stdin) matches it end to end: no search, no partial match, no capture
// output, the whole input must be consumed and end in the accept state.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/coregx/bytenfa/bitsource"
	"github.com/coregx/bytenfa/nfadump"
	"github.com/coregx/bytenfa/scanner"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("nfamatch: ")

	nfaPath := flag.String("nfa", "", "path to an nfadump text file describing the automaton (required)")
	inputPath := flag.String("input", "-", "path to the input file, or - for stdin")
	forceInterp := flag.Bool("force-interp", false, "skip the JIT backend even when eligible")
	showDiag := flag.Bool("diagnostics", false, "print backend and CPU capability diagnostics before matching")
	flag.Parse()

	if *nfaPath == "" {
		log.Fatal("-nfa is required")
	}

	if err := run(*nfaPath, *inputPath, *forceInterp, *showDiag); err != nil {
		log.Fatal(err)
	}
}

func run(nfaPath, inputPath string, forceInterp, showDiag bool) error {
	nfaFile, err := os.Open(nfaPath)
	if err != nil {
		return fmt.Errorf("opening nfa dump: %w", err)
	}
	defer nfaFile.Close()

	n, err := nfadump.Read(nfaFile)
	if err != nil {
		return fmt.Errorf("parsing nfa dump: %w", err)
	}

	var opts scanner.Options
	if forceInterp {
		opts = scanner.Options{ForceInterpreter: true}
	} else {
		opts = scanner.DefaultOptions()
	}

	s, err := scanner.New(n, opts)
	if err != nil {
		return fmt.Errorf("building scanner: %w", err)
	}
	defer s.Close()

	if showDiag {
		d := s.Diagnostics()
		fmt.Fprintf(os.Stderr, "backend=%s goarch=%s hasAVX2=%v\n", d.Backend, d.GOARCH, d.HasAVX2)
	}

	var input io.Reader = os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer f.Close()
		input = f
	}

	ok, err := s.Match(context.Background(), bitsource.FromReader(input))
	if err != nil {
		return fmt.Errorf("matching: %w", err)
	}

	if ok {
		fmt.Println("match")
	} else {
		fmt.Println("no match")
		os.Exit(1)
	}
	return nil
}
