package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"

	"songsheet/internal/ast"
	"songsheet/internal/source"
)

// NodeOutput is the format-neutral dump of one tree node, shared by the
// tree, JSON and msgpack renderers.
type NodeOutput struct {
	Type     string         `json:"type" msgpack:"type"`
	Name     string         `json:"name,omitempty" msgpack:"name,omitempty"`
	Text     string         `json:"text,omitempty" msgpack:"text,omitempty"`
	Line     uint32         `json:"line,omitempty" msgpack:"line,omitempty"`
	Col      uint32         `json:"col,omitempty" msgpack:"col,omitempty"`
	Span     source.Span    `json:"span" msgpack:"span"`
	Fields   map[string]any `json:"fields,omitempty" msgpack:"fields,omitempty"`
	Children []NodeOutput   `json:"children,omitempty" msgpack:"children,omitempty"`
}

type songDumper struct {
	fs      *source.FileSet
	repeats map[*ast.RepeatedChord]*ast.ChordList
}

// BuildSongOutput converts song into its dump form. fs may be nil, in
// which case line/column fields are left empty.
func BuildSongOutput(song *ast.Song, fs *source.FileSet) NodeOutput {
	d := songDumper{fs: fs, repeats: ast.ResolveRepeats(song)}
	out := d.node("Song", song.Span)
	out.Text = song.Title.String()
	title := d.textRun(&song.Title)
	title.Name = "title"
	out.Children = append(out.Children, title)
	if song.Options.Len() > 0 {
		out.Children = append(out.Children, d.options(&song.Options))
	}
	out.Children = append(out.Children, d.blocks(song.Body)...)
	return out
}

func (d songDumper) node(typ string, sp source.Span) NodeOutput {
	n := NodeOutput{Type: typ, Span: sp}
	if d.fs != nil && int(sp.File) < d.fs.Len() {
		start, _ := d.fs.Resolve(sp)
		n.Line, n.Col = start.Line, start.Col
	}
	return n
}

func (d songDumper) blocks(blocks []ast.Block) []NodeOutput {
	out := make([]NodeOutput, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, d.block(b))
	}
	return out
}

func (d songDumper) block(b ast.Block) NodeOutput {
	switch b := b.(type) {
	case *ast.Environment:
		n := d.node("Environment", b.Span)
		n.Name = b.FullName()
		if b.Starred {
			n.Fields = map[string]any{"starred": true}
		}
		if b.Title != nil {
			title := d.textRun(b.Title)
			title.Name = "title"
			n.Children = append(n.Children, title)
		}
		if b.Options != nil {
			n.Children = append(n.Children, d.options(b.Options))
		}
		n.Children = append(n.Children, d.blocks(b.Body)...)
		return n
	case *ast.Command:
		n := d.node("Command", b.Span)
		n.Name = b.Name
		for i := range b.Args {
			n.Children = append(n.Children, d.textRun(&b.Args[i]))
		}
		return n
	case *ast.TextRun:
		return d.textRun(b)
	case *ast.ChordList:
		n := d.node("ChordList", b.Span)
		n.Text = b.String()
		for _, ch := range b.Chords {
			c := d.node("Chord", ch.Span)
			c.Name = ch.Name
			n.Children = append(n.Children, c)
		}
		return n
	case *ast.RepeatedChord:
		n := d.node("RepeatedChord", b.Span)
		if target, ok := d.repeats[b]; ok {
			n.Text = target.String()
		}
		return n
	case *ast.GTab:
		n := d.node("GTab", b.Span)
		n.Name = b.Chord.Name
		n.Text = b.Tab.String()
		n.Fields = map[string]any{"strings": string(b.Tab.Strings[:])}
		if b.Tab.HasFret() {
			n.Fields["fret"] = b.Tab.Fret
		}
		if b.Tab.Fingering != nil {
			n.Fields["fingering"] = string(b.Tab.Fingering[:])
		}
		return n
	}
	return NodeOutput{Type: fmt.Sprintf("%T", b)}
}

func (d songDumper) options(o *ast.KVOptions) NodeOutput {
	n := d.node("Options", o.Span)
	for i := range o.Entries {
		kv := &o.Entries[i]
		entry := d.node("KeyValue", kv.Span)
		entry.Name = kv.Key
		entry.Text = kv.Value.String()
		entry.Children = []NodeOutput{d.textRun(&kv.Value)}
		n.Children = append(n.Children, entry)
	}
	return n
}

func (d songDumper) textRun(t *ast.TextRun) NodeOutput {
	n := d.node("TextRun", t.Span)
	n.Text = t.String()
	for _, part := range t.Parts {
		loc := part.Location()
		var p NodeOutput
		switch part := part.(type) {
		case ast.Word:
			p = d.node("Word", loc.Span)
			p.Text = part.Text
		case ast.Space:
			p = d.node("Space", loc.Span)
			p.Text = part.Text
		case ast.Punct:
			p = d.node("Punct", loc.Span)
			p.Text = part.Text
		case ast.Quote:
			p = d.node("Quote", loc.Span)
			p.Fields = map[string]any{"open": part.Open}
		case *ast.NestedCommand:
			p = d.node("NestedCommand", loc.Span)
			p.Name = part.Name
			for i := range part.Args {
				p.Children = append(p.Children, d.textRun(&part.Args[i]))
			}
		}
		n.Children = append(n.Children, p)
	}
	return n
}

// FormatSongJSON writes the song dump as indented JSON.
func FormatSongJSON(w io.Writer, song *ast.Song, fs *source.FileSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildSongOutput(song, fs))
}

// FormatSongMsgpack writes the song dump as a single msgpack value.
func FormatSongMsgpack(w io.Writer, song *ast.Song, fs *source.FileSet) error {
	enc := msgpack.NewEncoder(w)
	enc.SetSortMapKeys(true)
	return enc.Encode(BuildSongOutput(song, fs))
}

// FormatSongTree prints the song as an indented tree. Prose parts are
// folded into their run's text; nested commands stay visible.
func FormatSongTree(w io.Writer, song *ast.Song, fs *source.FileSet) error {
	root := BuildSongOutput(song, fs)
	if _, err := fmt.Fprintln(w, treeLabel(root)); err != nil {
		return err
	}
	return writeTreeChildren(w, treeChildren(root), "")
}

func treeChildren(n NodeOutput) []NodeOutput {
	if n.Type != "TextRun" {
		return n.Children
	}
	var out []NodeOutput
	for _, c := range n.Children {
		if c.Type == "NestedCommand" {
			out = append(out, c)
		}
	}
	return out
}

func writeTreeChildren(w io.Writer, children []NodeOutput, prefix string) error {
	for i, child := range children {
		marker, next := "├─ ", "│  "
		if i == len(children)-1 {
			marker, next = "└─ ", "   "
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, marker, treeLabel(child)); err != nil {
			return err
		}
		if err := writeTreeChildren(w, treeChildren(child), prefix+next); err != nil {
			return err
		}
	}
	return nil
}

func treeLabel(n NodeOutput) string {
	var b strings.Builder
	b.WriteString(n.Type)
	if n.Name != "" {
		b.WriteString(" " + n.Name)
	}
	switch n.Type {
	case "ChordList":
		b.WriteString(" [" + n.Text + "]")
	case "RepeatedChord":
		if n.Text != "" {
			b.WriteString(" -> [" + n.Text + "]")
		}
	case "KeyValue", "GTab":
		b.WriteString(" = " + fmt.Sprintf("%q", n.Text))
	case "Chord", "Options", "Environment", "Command", "NestedCommand":
	default:
		if n.Text != "" {
			b.WriteString(" " + fmt.Sprintf("%q", n.Text))
		}
	}
	if n.Line != 0 {
		fmt.Fprintf(&b, " (%d:%d)", n.Line, n.Col)
	}
	return b.String()
}
