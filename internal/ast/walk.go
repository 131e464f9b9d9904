package ast

// Walk visits n and its descendants depth-first in source order. If fn
// returns false the children of that node are skipped.
func Walk(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	switch n := n.(type) {
	case *Song:
		Walk(&n.Title, fn)
		if n.Options.Len() > 0 {
			Walk(&n.Options, fn)
		}
		walkBlocks(n.Body, fn)
	case *Environment:
		if n.Title != nil {
			Walk(n.Title, fn)
		}
		if n.Options != nil {
			Walk(n.Options, fn)
		}
		walkBlocks(n.Body, fn)
	case *Command:
		for i := range n.Args {
			Walk(&n.Args[i], fn)
		}
	case *KVOptions:
		for i := range n.Entries {
			Walk(&n.Entries[i], fn)
		}
	case *KeyValue:
		Walk(&n.Value, fn)
	case *TextRun:
		for _, part := range n.Parts {
			Walk(part, fn)
		}
	case *NestedCommand:
		for i := range n.Args {
			Walk(&n.Args[i], fn)
		}
	case *ChordList:
		for i := range n.Chords {
			Walk(&n.Chords[i], fn)
		}
	case *GTab:
		Walk(&n.Chord, fn)
	}
}

func walkBlocks(blocks []Block, fn func(Node) bool) {
	for _, b := range blocks {
		Walk(b, fn)
	}
}
