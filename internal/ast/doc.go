// Package ast holds the song document tree produced by the parser.
//
// Every polymorphic category is a sealed interface: Block, TextPart and
// ChordSpec can only be implemented inside this package, so a type switch
// over their variants is exhaustive. Nodes are plain pointers; the tree is
// built once by the parser and not mutated afterwards.
package ast
