// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package docx

import (
	"fmt"
	"strconv"
	"strings"
)

// Substitution pairs a literal placeholder token with its value.
type Substitution struct {
	Token string
	Value any
}

// Substitutions is an ordered substitution map. Tokens are applied in slice
// order with plain substring matching, so a token that is a substring of a
// later token will clobber it. See Overlaps.
type Substitutions []Substitution

// Apply replaces every occurrence of each token in text.
func (s Substitutions) Apply(text string) string {
	for _, sub := range s {
		if sub.Token == "" {
			continue
		}
		text = strings.ReplaceAll(text, sub.Token, FormatValue(sub.Value))
	}
	return text
}

// FormatValue renders a substitution value as document text. Numbers use the
// shortest decimal form (5.0 becomes "5") and nil becomes the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case *float64:
		if x == nil {
			return ""
		}
		return formatFloat(*x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// Overlap names two tokens where Inner is a substring of Outer.
type Overlap struct {
	Inner string
	Outer string
}

// Overlaps reports token pairs where one token is contained in another.
// Such pairs make the result depend on substitution order.
func Overlaps(maps ...Substitutions) []Overlap {
	var tokens []string
	seen := make(map[string]bool)
	for _, m := range maps {
		for _, sub := range m {
			if sub.Token == "" || seen[sub.Token] {
				continue
			}
			seen[sub.Token] = true
			tokens = append(tokens, sub.Token)
		}
	}

	var out []Overlap
	for i, a := range tokens {
		for _, b := range tokens[i+1:] {
			switch {
			case strings.Contains(b, a):
				out = append(out, Overlap{Inner: a, Outer: b})
			case strings.Contains(a, b):
				out = append(out, Overlap{Inner: b, Outer: a})
			}
		}
	}
	return out
}

// replaceAcross replaces every occurrence of token in the concatenation of
// runs. A match spanning several runs is written into the run where it starts;
// the matched remainder is removed from the following runs. Replaced text is
// not rescanned. It returns the number of replacements.
func replaceAcross(runs []string, token, value string) int {
	if token == "" {
		return 0
	}
	n := 0
	pos := 0
	for {
		joined := strings.Join(runs, "")
		if pos > len(joined) {
			break
		}
		idx := strings.Index(joined[pos:], token)
		if idx < 0 {
			break
		}
		start := pos + idx
		end := start + len(token)

		a, offA := locateStart(runs, start)
		b, offB := locateEnd(runs, end)
		if a == b {
			runs[a] = runs[a][:offA] + value + runs[a][offB:]
		} else {
			runs[a] = runs[a][:offA] + value
			for k := a + 1; k < b; k++ {
				runs[k] = ""
			}
			runs[b] = runs[b][offB:]
		}
		pos = start + len(value)
		n++
	}
	return n
}

// locateStart returns the run holding byte i of the joined text and the offset
// within it.
func locateStart(runs []string, i int) (int, int) {
	cum := 0
	for k, r := range runs {
		if i < cum+len(r) {
			return k, i - cum
		}
		cum += len(r)
	}
	return len(runs) - 1, len(runs[len(runs)-1])
}

// locateEnd returns the run where a match ending at byte end (exclusive)
// finishes and the offset just past it.
func locateEnd(runs []string, end int) (int, int) {
	cum := 0
	for k, r := range runs {
		if end <= cum+len(r) && len(r) > 0 {
			return k, end - cum
		}
		cum += len(r)
	}
	return len(runs) - 1, len(runs[len(runs)-1])
}
