// Package testkit holds checks shared by tests of several packages.
package testkit

import (
	"fmt"

	"fortio.org/safecast"

	"songsheet/internal/ast"
	"songsheet/internal/source"
)

// CheckSpanInvariants runs a minimal set of span invariants on a parsed song:
// 1) song.Span is non-empty and within file content bounds
// 2) every node span is well-formed, points at sf and lies inside song.Span
// 3) blocks of one body start in source order
func CheckSpanInvariants(song *ast.Song, sf *source.File) error {
	if song == nil || sf == nil {
		return fmt.Errorf("nil song or file")
	}

	// 1) song span sanity
	if song.Span.End <= song.Span.Start {
		return fmt.Errorf("song span is empty: %v", song.Span)
	}
	if song.Span.File != sf.ID {
		return fmt.Errorf("song span points to different file id: got=%d want=%d", song.Span.File, sf.ID)
	}
	lenContent, err := safecast.Conv[uint32](len(sf.Content))
	if err != nil {
		return fmt.Errorf("len content overflow: %w", err)
	}
	if song.Span.End > lenContent {
		return fmt.Errorf("song span end beyond content: %d > %d", song.Span.End, lenContent)
	}

	// 2) node spans within song span
	var walkErr error
	ast.Walk(song, func(n ast.Node) bool {
		if walkErr != nil {
			return false
		}
		sp, ok := SpanOf(n)
		if !ok {
			walkErr = fmt.Errorf("node %T has no span", n)
			return false
		}
		if sp.End < sp.Start {
			walkErr = fmt.Errorf("%T span is inverted: %v", n, sp)
			return false
		}
		if sp.File != sf.ID {
			walkErr = fmt.Errorf("%T span file mismatch: got=%d want=%d", n, sp.File, sf.ID)
			return false
		}
		if sp.Start < song.Span.Start || sp.End > song.Span.End {
			walkErr = fmt.Errorf("%T span %v is outside song span %v", n, sp, song.Span)
			return false
		}
		return true
	})
	if walkErr != nil {
		return walkErr
	}

	// 3) body order
	return checkBodyOrder(song.Body)
}

func checkBodyOrder(body []ast.Block) error {
	var prev source.Span
	for i, b := range body {
		sp, _ := SpanOf(b)
		if i > 0 && sp.Start < prev.End {
			return fmt.Errorf("block %d (%T) at %v overlaps previous block %v", i, b, sp, prev)
		}
		prev = sp
		if env, ok := b.(*ast.Environment); ok {
			if err := checkBodyOrder(env.Body); err != nil {
				return fmt.Errorf("in environment %s: %w", env.FullName(), err)
			}
		}
	}
	return nil
}

// SpanOf returns the source span of any tree node.
func SpanOf(n ast.Node) (source.Span, bool) {
	switch n := n.(type) {
	case *ast.Song:
		return n.Span, true
	case *ast.Environment:
		return n.Span, true
	case *ast.Command:
		return n.Span, true
	case *ast.KVOptions:
		return n.Span, true
	case *ast.KeyValue:
		return n.Span, true
	case *ast.TextRun:
		return n.Span, true
	case *ast.ChordList:
		return n.Span, true
	case *ast.RepeatedChord:
		return n.Span, true
	case *ast.GTab:
		return n.Span, true
	case *ast.Chord:
		return n.Span, true
	case ast.TextPart:
		return n.Location().Span, true
	}
	return source.Span{}, false
}
