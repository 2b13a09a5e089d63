// Package chunk splits long input into word-bounded parts so each
// backend call stays under the size the upstream checkers handle well.
package chunk

// Part is one slice of the input plus the rune offset where it starts,
// so candidate offsets resolved against Part.Text can be re-based into
// the full document.
type Part struct {
	Text string
	Base int // rune offset of Text[0] in the original input
}

// MaxWords is the default word budget per part.
const MaxWords = 400

// Split slices s into parts of at most maxWords whitespace-separated
// words, breaking only at spaces or newlines. maxWords <= 0 means
// MaxWords. The concatenation of parts (with the separators that were
// dropped at the boundaries) always covers the whole input.
func Split(s string, maxWords int) []Part {
	if maxWords <= 0 {
		maxWords = MaxWords
	}

	runes := []rune(s)
	hint := len(runes)/(maxWords*6) + 1
	res := make([]Part, 0, hint)

	start, words := 0, 0
	for i, r := range runes {
		if r == ' ' || r == '\n' {
			words++
			if words == maxWords {
				res = append(res, Part{Text: string(runes[start:i]), Base: start})
				start, words = i+1, 0
			}
		}
	}
	// trailing part (never out of range because start <= len(runes))
	res = append(res, Part{Text: string(runes[start:]), Base: start})
	return res
}
