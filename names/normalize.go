// Package names canonicalizes Arabic display names into search keys.
package names

// Combining marks that carry no meaning for matching. They render as
// zero-width glyphs, so escapes are used instead of literals.
const (
	fatha   = 'َ'
	fathten = 'ً'
	kasra   = 'ِ'
	kasrten = 'ٍ'
	damma   = 'ُ'
	dammten = 'ٌ'
	shadda  = 'ّ'
)

// Normalize maps a display name to its canonical search key. The result is
// deterministic and stable: normalizing an already normalized name is a
// no-op. With autocomplete set, the trailing-yeh rule is applied to every
// yeh so that partially typed names match.
func Normalize(name string, autocomplete bool) string {
	in := []rune(name)
	out := make([]rune, 0, len(in))
	dals := []int{}

	for i := 0; i < len(in); i++ {
		switch in[i] {
		case 'أ', 'إ', 'آ':
			out = append(out, 'ا')
		case 'ة':
			out = append(out, 'ه')
		case 'ئ':
			out = append(out, 'ء')
		case 'ي':
			switch {
			case autocomplete:
				out = append(out, 'ى')
			case i == len(in)-1:
				out = append(out, 'ى')
			case in[i+1] == ' ':
				out = append(out, 'ى', ' ')
				i++
			default:
				out = append(out, 'ي')
			}
		case 'د':
			out = append(out, 'د')
			dals = append(dals, len(out)-1)
		case fatha, fathten, kasra, kasrten, damma, dammten, shadda:
			// dropped
		default:
			out = append(out, in[i])
		}
	}

	return string(fixAbdPrefixes(out, dals))
}

// fixAbdPrefixes runs the second pass over dal positions recorded during the
// first pass. Splits and joins shift later positions, hence the delta.
func fixAbdPrefixes(out []rune, dals []int) []rune {
	delta := 0
	for _, dal := range dals {
		i := dal + delta
		if i < 2 || out[i-2] != 'ع' || out[i-1] != 'ب' {
			continue
		}

		// عبد ربه is one name, rejoin it
		if runesFollow(out, i, ' ', 'ر', 'ب', 'ه') {
			out = deleteRune(out, i+1)
			delta--
			continue
		}

		// same for عبد الاه
		if runesFollow(out, i, ' ', 'ا', 'ل', 'ا', 'ه') {
			out = deleteRune(out, i+1)
			delta--
			continue
		}

		// عبدالاه stays joined. The only case where ال right after عبد
		// must not be split off.
		if runesFollow(out, i, 'ا', 'ل', 'ا', 'ه') {
			continue
		}

		// عبدالرحمن and alike become عبد الرحمن. The added space is fine
		// for autocomplete, the search layer trims it.
		if runesFollow(out, i, 'ا', 'ل') {
			out = insertRune(out, i+1, ' ')
			delta++
		}
	}
	return out
}

func runesFollow(out []rune, i int, want ...rune) bool {
	if i+len(want) >= len(out) {
		return false
	}
	for n, r := range want {
		if out[i+1+n] != r {
			return false
		}
	}
	return true
}

func deleteRune(out []rune, i int) []rune {
	return append(out[:i], out[i+1:]...)
}

func insertRune(out []rune, i int, r rune) []rune {
	out = append(out, 0)
	copy(out[i+1:], out[i:])
	out[i] = r
	return out
}
