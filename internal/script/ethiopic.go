// Package script converts between Latin text and the Ethiopic (Ge'ez) script
// used for Amharic.
package script

import (
	"context"
	"errors"
	"unicode"
)

// ErrUnsupported is returned when the input contains characters that have no
// mapping in the target script.
var ErrUnsupported = errors.New("unsupported character")

// Transliterator renders Latin text in Ethiopic script.
type Transliterator interface {
	Transliterate(ctx context.Context, latin string) (string, error)
}

// Romanizer renders Ethiopic text in Latin script.
type Romanizer interface {
	Romanize(ctx context.Context, text string) (string, error)
}

const (
	ethiopicFirst = 0x1200
	ethiopicLast  = 0x137F
)

// IsEthiopic reports whether r falls in the Ethiopic Unicode block.
func IsEthiopic(r rune) bool {
	return r >= ethiopicFirst && r <= ethiopicLast
}

// HasEthiopic reports whether s contains at least one Ethiopic character.
func HasEthiopic(s string) bool {
	for _, r := range s {
		if IsEthiopic(r) {
			return true
		}
	}
	return false
}

// syllable describes one Ethiopic letter: its consonant and vowel order
// (0 through 7, where 5 is the vowel-less sixth order).
type syllable struct {
	consonant string
	order     int
}

// series lists the regular consonant rows by their first code point.
// Rows marked laryngeal read their first order with "a".
var series = []struct {
	base      rune
	consonant string
	laryngeal bool
}{
	{0x1200, "h", true},
	{0x1208, "l", false},
	{0x1210, "h", true},
	{0x1218, "m", false},
	{0x1220, "s", false},
	{0x1228, "r", false},
	{0x1230, "s", false},
	{0x1238, "sh", false},
	{0x1240, "q", false},
	{0x1250, "q", false},
	{0x1260, "b", false},
	{0x1268, "v", false},
	{0x1270, "t", false},
	{0x1278, "ch", false},
	{0x1280, "h", true},
	{0x1290, "n", false},
	{0x1298, "ny", false},
	{0x12A0, "", true},
	{0x12A8, "k", false},
	{0x12B8, "h", false},
	{0x12C8, "w", false},
	{0x12D0, "", true},
	{0x12D8, "z", false},
	{0x12E0, "zh", false},
	{0x12E8, "y", false},
	{0x12F0, "d", false},
	{0x12F8, "d", false},
	{0x1300, "j", false},
	{0x1308, "g", false},
	{0x1318, "g", false},
	{0x1320, "t", false},
	{0x1328, "ch", false},
	{0x1330, "p", false},
	{0x1338, "ts", false},
	{0x1340, "ts", false},
	{0x1348, "f", false},
	{0x1350, "p", false},
}

// labialized rows only define the orders 0, 2, 3, 4 and 5.
var labialized = []struct {
	base      rune
	consonant string
}{
	{0x1248, "qw"},
	{0x1258, "qw"},
	{0x1288, "hw"},
	{0x12B0, "kw"},
	{0x12C0, "hw"},
	{0x1310, "gw"},
}

var (
	syllables   = map[rune]syllable{}
	firstOrders = map[rune]bool{}
	symbols     = map[rune]string{
		0x1360: "",
		0x1361: " ",
		0x1362: ".",
		0x1363: ",",
		0x1364: ";",
		0x1365: ":",
		0x1366: ":",
		0x1367: "?",
		0x1368: "",
		0x1358: "mya",
		0x1359: "rya",
		0x135A: "fya",
		0x135D: "",
		0x135E: "",
		0x135F: "",
		0x137B: "100",
		0x137C: "10000",
	}
)

func init() {
	for _, s := range series {
		for order := 0; order < 8; order++ {
			syllables[s.base+rune(order)] = syllable{consonant: s.consonant, order: order}
		}
		if s.laryngeal {
			firstOrders[s.base] = true
		}
	}
	// the pharyngeal row has no eighth form
	delete(syllables, 0x12D7)
	for _, s := range labialized {
		for _, order := range []int{0, 2, 3, 4, 5} {
			syllables[s.base+rune(order)] = syllable{consonant: s.consonant, order: order}
		}
	}
	digits := "123456789"
	for i, d := range digits {
		symbols[0x1369+rune(i)] = string(d)
		symbols[0x1372+rune(i)] = string(d) + "0"
	}
}

// isLetter reports whether r is a letter outside the Ethiopic block.
func isLetter(r rune) bool {
	return unicode.IsLetter(r) && !IsEthiopic(r)
}
