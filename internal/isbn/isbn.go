// Package isbn derives canonical ISBN-10 values from user-supplied input.
package isbn

import (
	"errors"
	"strings"
)

// ErrNotDerivable is returned when no ISBN-10 can be derived from the input.
var ErrNotDerivable = errors.New("isbn: not derivable")

// Normalize converts any accepted ISBN representation into its canonical
// 10-character form. A 10-character input passes through unchanged; a
// 13-digit EAN with a 978/979 prefix is converted by recomputing the mod-11
// check digit over its 9-digit core. Anything else is not derivable.
func Normalize(raw string) (string, error) {
	cleaned := clean(raw)
	switch {
	case len(cleaned) == 10:
		return cleaned, nil
	case len(cleaned) == 13 && (strings.HasPrefix(cleaned, "978") || strings.HasPrefix(cleaned, "979")):
		return fromEAN(cleaned)
	default:
		return "", ErrNotDerivable
	}
}

// clean strips everything but digits and the check character X.
func clean(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == 'X' || r == 'x':
			b.WriteByte('X')
		}
	}
	return b.String()
}

func fromEAN(ean string) (string, error) {
	core := ean[3:12]
	sum := 0
	for i := 0; i < len(core); i++ {
		c := core[i]
		if c < '0' || c > '9' {
			return "", ErrNotDerivable
		}
		sum += int(c-'0') * (10 - i)
	}

	var check byte
	switch v := 11 - sum%11; v {
	case 10:
		check = 'X'
	case 11:
		check = '0'
	default:
		check = byte('0' + v)
	}
	return core + string(check), nil
}
