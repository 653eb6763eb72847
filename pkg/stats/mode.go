package stats

import "sort"

// Moder picks the most frequent label of a group. ok is false for an empty
// group.
type Moder interface {
	Mode(values []string) (mode string, ok bool)
}

// FirstMode breaks frequency ties in favour of the label seen first.
type FirstMode struct{}

func (FirstMode) Mode(values []string) (string, bool) {
	freqs := Frequencies(Labels(values))
	if len(freqs) == 0 {
		return "", false
	}
	return freqs[0].Label, true
}

// Frequency is the count of one label.
type Frequency struct {
	Label string
	Count int
}

// Frequencies counts the non-missing labels of s, most frequent first. Equal
// counts keep first-seen order.
func Frequencies(s Sample) []Frequency {
	idx := map[string]int{}
	var out []Frequency
	for i := 0; i < s.Len(); i++ {
		v, ok := s.Get(i)
		if !ok {
			continue
		}
		if at, seen := idx[v]; seen {
			out[at].Count++
			continue
		}
		idx[v] = len(out)
		out = append(out, Frequency{Label: v, Count: 1})
	}
	Rank(out)
	return out
}

// Rank orders freqs most frequent first, keeping the existing order among
// equal counts.
func Rank(freqs []Frequency) {
	sort.SliceStable(freqs, func(i, j int) bool { return freqs[i].Count > freqs[j].Count })
}
