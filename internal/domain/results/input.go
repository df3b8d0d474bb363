package results

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/lims/lims/internal/domain/catalog"
)

// numericEntry is what the keystroke filter accepts for a numeric parameter:
// an optional < or > comparator, an optional sign, and up to three decimal
// places. The empty string and a bare "-" pass so an entry can be cleared or
// started with a sign.
var numericEntry = regexp.MustCompile(`^[<>]?-?\d*(\.\d{0,3})?$`)

// AcceptNumericInput reports whether raw is a permissible in-progress value
// for a numeric parameter. Rejected input is discarded and the previous value
// kept.
func AcceptNumericInput(raw string) bool {
	return numericEntry.MatchString(raw)
}

// coerceValue converts an entry-form string to its persisted form. Comparator
// prefixed values and decimals that end in a significant trailing zero are
// kept as strings so "<5" and "4.50" survive a round trip; everything else
// that parses as a number is stored numeric. Text-kind values always persist
// as strings.
func coerceValue(raw, kind string) interface{} {
	if kind != catalog.KindNumeric {
		return raw
	}
	if strings.HasPrefix(raw, "<") || strings.HasPrefix(raw, ">") {
		return raw
	}
	if strings.Contains(raw, ".") && strings.HasSuffix(raw, "0") {
		return raw
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return raw
	}
	return f
}
