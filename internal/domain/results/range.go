package results

import (
	"math"
	"strconv"
	"strings"

	"github.com/lims/lims/internal/domain/catalog"
)

// Day multipliers for the age-band key suffixes. A key without a recognised
// suffix is read as a plain day count.
const (
	daysPerYear  = 365
	daysPerMonth = 30
)

// bandInterval decodes a range-band key of the form "<lo>-<hi><unit>" into an
// inclusive interval in days. Malformed segments decode to NaN, which never
// satisfies a comparison, so a broken band simply never matches.
func bandInterval(key string) (lo, hi float64) {
	mult := 1.0
	k := strings.TrimSpace(key)
	if k != "" {
		switch k[len(k)-1] {
		case 'y', 'Y':
			mult = daysPerYear
			k = k[:len(k)-1]
		case 'm', 'M':
			mult = daysPerMonth
			k = k[:len(k)-1]
		case 'd', 'D':
			k = k[:len(k)-1]
		}
	}
	parts := strings.SplitN(k, "-", 2)
	if len(parts) != 2 {
		return math.NaN(), math.NaN()
	}
	return parseOrNaN(parts[0]) * mult, parseOrNaN(parts[1]) * mult
}

func parseOrNaN(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return math.NaN()
	}
	return f
}

// genderBucket maps a patient gender onto one of the two range buckets. Only
// "male" selects the male bucket; every other value reads the female ranges.
func genderBucket(gender string) string {
	if strings.EqualFold(gender, "male") {
		return "male"
	}
	return "female"
}

// ResolveRange picks the normal-range text for a parameter given the patient
// age in days and gender. The first band whose interval contains the age wins;
// if none match the last band's value is used; an empty band list yields "".
func ResolveRange(def *catalog.ParameterDefinition, ageDays int, gender string) string {
	bands := def.Ranges[genderBucket(gender)]
	if len(bands) == 0 {
		return ""
	}
	age := float64(ageDays)
	for _, b := range bands {
		lo, hi := bandInterval(b.Key)
		if age >= lo && age <= hi {
			return b.Value
		}
	}
	return bands[len(bands)-1].Value
}
