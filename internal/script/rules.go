package script

import (
	"context"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Rules is a table-driven transliterator and romanizer. It needs no network
// access and always gives the same answer for the same input.
type Rules struct{}

// NewRules returns the table-driven converter.
func NewRules() *Rules {
	return &Rules{}
}

// vowels are matched longest first.
var vowels = []struct {
	text    string
	order   int // after a consonant
	carrier int // on its own, written on the አ series
}{
	{"ie", 4, 4},
	{"ee", 2, 2},
	{"aa", 3, 3},
	{"oo", 1, 1},
	{"ou", 1, 1},
	{"e", 0, 5},
	{"u", 1, 1},
	{"i", 2, 2},
	{"a", 3, 0},
	{"o", 6, 6},
}

var consonants = []struct {
	text string
	base rune
}{
	{"sh", 0x1238},
	{"ch", 0x1278},
	{"ny", 0x1298},
	{"zh", 0x12E0},
	{"ts", 0x1338},
	{"kh", 0x12B8},
	{"ph", 0x1348},
	{"th", 0x1270},
	{"h", 0x1200},
	{"l", 0x1208},
	{"m", 0x1218},
	{"r", 0x1228},
	{"s", 0x1230},
	{"q", 0x1240},
	{"b", 0x1260},
	{"v", 0x1268},
	{"t", 0x1270},
	{"n", 0x1290},
	{"k", 0x12A8},
	{"c", 0x12A8},
	{"w", 0x12C8},
	{"z", 0x12D8},
	{"y", 0x12E8},
	{"d", 0x12F0},
	{"j", 0x1300},
	{"g", 0x1308},
	{"f", 0x1348},
	{"p", 0x1350},
}

const carrierBase = 0x12A0

var latinReplacer = strings.NewReplacer(
	"ä", "e",
	"é", "ie",
	"ē", "ie",
	"ə", "i",
	"x", "ks",
	"'", "",
	"’", "",
	"`", "",
)

func foldLatin(s string) (string, error) {
	s = latinReplacer.Replace(strings.ToLower(s))
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return "", fmt.Errorf("failed to fold diacritics: %w", err)
	}
	return folded, nil
}

func matchConsonant(s string) (rune, int) {
	for _, c := range consonants {
		if strings.HasPrefix(s, c.text) {
			return c.base, len(c.text)
		}
	}
	return 0, 0
}

func matchVowel(s string) (order, carrier, n int) {
	for _, v := range vowels {
		if strings.HasPrefix(s, v.text) {
			return v.order, v.carrier, len(v.text)
		}
	}
	return 0, 0, 0
}

// Transliterate renders a Latin string in Ethiopic script. Digits, spaces,
// punctuation and existing Ethiopic characters pass through unchanged.
func (r *Rules) Transliterate(_ context.Context, latin string) (string, error) {
	s, err := foldLatin(latin)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.Grow(len(s) * 2)

	for i := 0; i < len(s); {
		if base, n := matchConsonant(s[i:]); n > 0 {
			i += n
			if order, _, m := matchVowel(s[i:]); m > 0 {
				b.WriteRune(base + rune(order))
				i += m
				continue
			}
			// geminates are not written
			if next, _ := matchConsonant(s[i:]); next == base {
				continue
			}
			b.WriteRune(base + 5)
			continue
		}
		if _, carrier, m := matchVowel(s[i:]); m > 0 {
			b.WriteRune(carrierBase + rune(carrier))
			i += m
			continue
		}

		ch, size := utf8.DecodeRuneInString(s[i:])
		if isLetter(ch) {
			return "", fmt.Errorf("%w: %q in %q", ErrUnsupported, ch, latin)
		}
		b.WriteRune(ch)
		i += size
	}

	return b.String(), nil
}

// Romanize renders Ethiopic text in lowercase Latin script. The sixth order
// is read with "i" except at the end of a word or before another sixth order.
// Non-Ethiopic characters pass through unchanged.
func (r *Rules) Romanize(_ context.Context, text string) (string, error) {
	rs := []rune(text)

	var b strings.Builder
	b.Grow(len(text))

	for i, ch := range rs {
		if ch == unicode.ReplacementChar {
			return "", fmt.Errorf("%w: invalid UTF-8 in %q", ErrUnsupported, text)
		}
		if !IsEthiopic(ch) {
			b.WriteRune(ch)
			continue
		}
		if sym, ok := symbols[ch]; ok {
			b.WriteString(sym)
			continue
		}
		syl, ok := syllables[ch]
		if !ok {
			return "", fmt.Errorf("%w: %U in %q", ErrUnsupported, ch, text)
		}

		b.WriteString(syl.consonant)
		b.WriteString(vowelFor(syl, ch, nextSyllable(rs, i)))
	}

	return b.String(), nil
}

func nextSyllable(rs []rune, i int) *syllable {
	if i+1 >= len(rs) {
		return nil
	}
	if syl, ok := syllables[rs[i+1]]; ok {
		return &syl
	}
	return nil
}

func vowelFor(syl syllable, ch rune, next *syllable) string {
	carrier := syl.consonant == ""
	switch syl.order {
	case 0:
		if firstOrders[ch] {
			return "a"
		}
		return "e"
	case 1:
		return "u"
	case 2:
		return "i"
	case 3:
		return "a"
	case 4:
		return "e"
	case 5:
		if carrier {
			return "i"
		}
		if next == nil || next.order == 5 {
			return ""
		}
		return "i"
	case 6:
		return "o"
	default:
		if carrier {
			return "a"
		}
		return "wa"
	}
}
