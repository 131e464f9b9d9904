package ast

import (
	"songsheet/internal/source"
)

// Node is any element of the document tree.
type Node interface {
	node()
}

// Block is one element of a song or environment body:
// *Environment, *Command, *TextRun or a ChordSpec variant.
type Block interface {
	Node
	block()
}

// Loc is the source location of a leaf: byte span plus the line/column
// of its first byte as counted by the lexer.
type Loc struct {
	Span source.Span
	Pos  source.LineCol
}

// Song is the root of every successful parse.
type Song struct {
	Title   TextRun
	Options KVOptions
	Body    []Block
	Span    source.Span
}

// Environment is a `\begin{name}...\end{name}` region.
type Environment struct {
	Name    string
	Starred bool // name carried a trailing '*', e.g. verse*
	Title   *TextRun
	Options *KVOptions
	Body    []Block
	Span    source.Span
}

// FullName returns the name as written, star included.
func (e *Environment) FullName() string {
	if e.Starred {
		return e.Name + "*"
	}
	return e.Name
}

// Args returns the optional title and options in source order.
func (e *Environment) Args() []Node {
	args := make([]Node, 0, 2)
	if e.Title != nil {
		args = append(args, e.Title)
	}
	if e.Options != nil {
		args = append(args, e.Options)
	}
	return args
}

// Command is a body-level `\name{...}` invocation.
type Command struct {
	Name string
	Args []TextRun
	Span source.Span
}

// KeyValue is one `key={value}` entry.
type KeyValue struct {
	Key   string
	Value TextRun
	Span  source.Span
}

// KVOptions keeps entries in declaration order; keys may repeat.
type KVOptions struct {
	Entries []KeyValue
	Span    source.Span
}

// Len returns the number of entries, duplicates included.
func (o *KVOptions) Len() int {
	if o == nil {
		return 0
	}
	return len(o.Entries)
}

// Lookup returns every value recorded for key, in declaration order.
func (o *KVOptions) Lookup(key string) []TextRun {
	if o == nil {
		return nil
	}
	var out []TextRun
	for _, kv := range o.Entries {
		if kv.Key == key {
			out = append(out, kv.Value)
		}
	}
	return out
}

// Keys returns the keys in declaration order, duplicates included.
func (o *KVOptions) Keys() []string {
	if o == nil {
		return nil
	}
	keys := make([]string, len(o.Entries))
	for i, kv := range o.Entries {
		keys[i] = kv.Key
	}
	return keys
}

func (*Song) node()        {}
func (*Environment) node() {}
func (*Command) node()     {}
func (*KVOptions) node()   {}
func (*KeyValue) node()    {}

func (*Environment) block() {}
func (*Command) block()     {}
