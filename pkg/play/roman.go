package play

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxNumber bounds parsed act and scene numbers so they fit the int32 columns
// they are stored in.
const MaxNumber = 1<<31 - 1

// canonicalRoman matches upper case numerals from I to MMMCMXCIX written in
// standard subtractive form. "IIII", "IC" and "VX" are rejected.
var canonicalRoman = regexp.MustCompile(`^M{0,3}(CM|CD|D?C{0,3})(XC|XL|L?X{0,3})(IX|IV|V?I{0,3})$`)

var romanValues = map[byte]int{
	'I': 1,
	'V': 5,
	'X': 10,
	'L': 50,
	'C': 100,
	'D': 500,
	'M': 1000,
}

// ParseRoman converts an upper case roman numeral to an integer.
func ParseRoman(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, fmt.Errorf("empty roman numeral")
	}
	if !canonicalRoman.MatchString(value) {
		return 0, fmt.Errorf("invalid roman numeral %q", value)
	}

	total := 0
	for i := 0; i < len(value); i++ {
		v := romanValues[value[i]]
		if i+1 < len(value) && v < romanValues[value[i+1]] {
			total -= v
		} else {
			total += v
		}
	}
	return total, nil
}

// ParseNumber accepts a non-negative decimal integer or a roman numeral. A
// trailing period ("II.") is ignored.
func ParseNumber(value string) (int, error) {
	value = strings.TrimSuffix(strings.TrimSpace(value), ".")
	if value == "" {
		return 0, fmt.Errorf("empty number")
	}
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 || n > MaxNumber {
			return 0, fmt.Errorf("number %d out of range", n)
		}
		return n, nil
	}
	return ParseRoman(value)
}
