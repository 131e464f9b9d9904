package ast

// ResolveRepeats maps every `^` marker in the song to the chord group it
// repeats: the closest ChordList preceding it in source order, across
// environment boundaries. Markers with no preceding group are absent from
// the result.
func ResolveRepeats(song *Song) map[*RepeatedChord]*ChordList {
	out := make(map[*RepeatedChord]*ChordList)
	var last *ChordList
	Walk(song, func(n Node) bool {
		switch n := n.(type) {
		case *ChordList:
			last = n
			return false
		case *RepeatedChord:
			if last != nil {
				out[n] = last
			}
		}
		return true
	})
	return out
}
