// Package nfadump renders an nfa.NFA as a small human-readable text
// format and parses it back, for debugging and for the file cmd/nfamatch
// loads through its -nfa flag. Not part of any matching hot path.
//
// Format, one line per record:
//
//	accept <id>
//	source <id>
//	state <id> [inverted] <lo>-<hi> <lo>-<hi> ... -> <id> <id> ...
//
// This uses a plain fmt.Sprintf-based text dump rather than a binary or
// JSON encoding, since the format's consumers are humans, cmd/nfamatch,
// and this package's own round-trip test.
package nfadump

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coregx/bytenfa/nfa"
)

// Write renders n to w in the format described in the package doc.
func Write(w io.Writer, n *nfa.NFA) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "accept %d\n", n.Accept); err != nil {
		return err
	}
	for _, src := range n.Sources {
		if _, err := fmt.Fprintf(bw, "source %d\n", src); err != nil {
			return err
		}
	}

	for i := range n.States {
		s := &n.States[i]
		var b strings.Builder
		fmt.Fprintf(&b, "state %d", s.ID)
		if s.Inverted {
			b.WriteString(" inverted")
		}
		for _, r := range s.Ranges {
			fmt.Fprintf(&b, " %d-%d", r.Lo, r.Hi)
		}
		if len(s.Next) > 0 {
			b.WriteString(" ->")
			for _, next := range s.Next {
				fmt.Fprintf(&b, " %d", next)
			}
		}
		b.WriteString("\n")
		if _, err := bw.WriteString(b.String()); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// Read parses the text format produced by Write, builds an NFA, and
// validates it.
func Read(r io.Reader) (*nfa.NFA, error) {
	scanner := bufio.NewScanner(r)

	var accept *nfa.StateID
	var sources []nfa.StateID
	b := nfa.NewBuilder()
	// highest StateID seen so far; states may arrive out of order is not
	// supported, they must be emitted/read in ascending ID order as Write
	// produces them.
	seen := -1

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "accept":
			id, err := parseStateID(fields[1])
			if err != nil {
				return nil, fmt.Errorf("nfadump: accept line: %w", err)
			}
			accept = &id

		case "source":
			id, err := parseStateID(fields[1])
			if err != nil {
				return nil, fmt.Errorf("nfadump: source line: %w", err)
			}
			sources = append(sources, id)

		case "state":
			id, err := parseStateID(fields[1])
			if err != nil {
				return nil, fmt.Errorf("nfadump: state line: %w", err)
			}
			if int(id) != seen+1 {
				return nil, fmt.Errorf("nfadump: state %d out of order (expected %d)", id, seen+1)
			}
			seen++
			b.AddState()

			rest := fields[2:]
			inverted := false
			if len(rest) > 0 && rest[0] == "inverted" {
				inverted = true
				rest = rest[1:]
			}

			var ranges []nfa.CharRange
			i := 0
			for ; i < len(rest) && rest[i] != "->"; i++ {
				lo, hi, err := parseRange(rest[i])
				if err != nil {
					return nil, fmt.Errorf("nfadump: state %d: %w", id, err)
				}
				ranges = append(ranges, nfa.CharRange{Lo: lo, Hi: hi})
			}
			b.SetRanges(id, inverted, ranges...)

			if i < len(rest) && rest[i] == "->" {
				for _, tok := range rest[i+1:] {
					to, err := parseStateID(tok)
					if err != nil {
						return nil, fmt.Errorf("nfadump: state %d transition: %w", id, err)
					}
					b.AddTransition(id, to)
				}
			}

		default:
			return nil, fmt.Errorf("nfadump: unrecognized line %q", line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if accept == nil {
		return nil, fmt.Errorf("nfadump: missing accept line")
	}

	return b.Build(*accept, sources...)
}

func parseStateID(s string) (nfa.StateID, error) {
	// bitSize 32 makes strconv itself reject oversized IDs with an error;
	// conv's narrowing helpers panic on overflow, which suits internal
	// invariants (see nfa.Builder.AddState) but not parsing of a file that
	// may be hand-edited or corrupt.
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return nfa.StateID(v), nil
}

func parseRange(s string) (lo, hi byte, err error) {
	parts := strings.SplitN(s, "-", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed range %q", s)
	}
	loV, err := strconv.ParseUint(parts[0], 10, 8)
	if err != nil {
		return 0, 0, err
	}
	hiV, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return 0, 0, err
	}
	return byte(loV), byte(hiV), nil
}
