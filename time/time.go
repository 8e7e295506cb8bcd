// time.go
package time

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mensylisir/xmexec/common"
)

// ShortDur shortens the string representation of a time.Duration from d.String().
func ShortDur(d time.Duration) string {
	s := d.String()
	if d == 0 {
		return "0s"
	}
	if strings.HasSuffix(s, "m0s") {
		s = s[:len(s)-2]
	}
	if strings.HasSuffix(s, "h0m") {
		s = s[:len(s)-2]
	}
	return s
}

// formatDecimalNumber ensures specific padding for s, ms, µs units.
// For s, ms, µs: if fractional and naturally < 3 decimal places, pad to 3.
// Otherwise, use strconv.FormatFloat's default minimal representation.
func formatDecimalNumber(val float64, unitName string) string {
	sVal := strconv.FormatFloat(val, 'f', -1, 64)

	isTargetUnit := unitName == "s" || unitName == "ms" || unitName == "µs"

	if isTargetUnit {
		parts := strings.Split(sVal, ".")
		if len(parts) == 2 { // Has a decimal part
			integerPart := parts[0]
			decimalPart := parts[1]

			if len(decimalPart) < 3 {
				// Pad with zeros to ensure 3 decimal places
				decimalPart = decimalPart + strings.Repeat("0", 3-len(decimalPart))
				return integerPart + "." + decimalPart
			}
			return sVal
		}
		// No decimal part (e.g. "2" from 2.0): whole values stay "2s", not "2.000s".
		return sVal
	}
	return sVal
}

// ShortDurV2 provides a representation that omits zero intermediate units (e.g., 1h5s).
// For sub-second precision, it formats them as a decimal of the smallest displayed larger unit (s, ms, or µs).
// Does NOT convert hours to days/weeks.
func ShortDurV2(d time.Duration) string {
	if d == 0 {
		return "0s"
	}

	sign := ""
	if d < 0 {
		sign = "-"
		d = -d
	}

	var parts []string
	nanos := d.Nanoseconds()

	h := nanos / (common.NanosPerSecond * 3600)
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
		nanos %= (common.NanosPerSecond * 3600)
	}

	m := nanos / (common.NanosPerSecond * 60)
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
		nanos %= (common.NanosPerSecond * 60)
	}

	s := nanos / common.NanosPerSecond
	nanosSubS := nanos % common.NanosPerSecond

	if len(parts) == 0 { // No hours or minutes, format s, ms, µs, or ns
		if s > 0 {
			if nanosSubS == 0 {
				parts = append(parts, fmt.Sprintf("%ds", s))
			} else {
				floatVal := float64(s) + float64(nanosSubS)/float64(common.NanosPerSecond)
				parts = append(parts, formatDecimalNumber(floatVal, "s")+"s")
			}
		} else { // Pure sub-second
			ms := nanosSubS / common.NanosPerMillisecond
			nanosSubMs := nanosSubS % common.NanosPerMillisecond
			if ms > 0 {
				if nanosSubMs == 0 {
					parts = append(parts, fmt.Sprintf("%dms", ms))
				} else {
					floatVal := float64(ms) + float64(nanosSubMs)/float64(common.NanosPerMillisecond)
					parts = append(parts, formatDecimalNumber(floatVal, "ms")+"ms")
				}
			} else {
				us := nanosSubS / common.NanosPerMicrosecond
				nanosSubUs := nanosSubS % common.NanosPerMicrosecond
				if us > 0 {
					if nanosSubUs == 0 {
						parts = append(parts, fmt.Sprintf("%dµs", us))
					} else {
						floatVal := float64(us) + float64(nanosSubUs)/float64(common.NanosPerMicrosecond)
						parts = append(parts, formatDecimalNumber(floatVal, "µs")+"µs")
					}
				} else {
					parts = append(parts, fmt.Sprintf("%dns", nanosSubS))
				}
			}
		}
	} else if s > 0 || nanosSubS > 0 { // Hours or minutes were printed, add seconds part
		if nanosSubS == 0 {
			parts = append(parts, fmt.Sprintf("%ds", s))
		} else {
			floatVal := float64(s) + float64(nanosSubS)/float64(common.NanosPerSecond)
			parts = append(parts, formatDecimalNumber(floatVal, "s")+"s")
		}
	}
	// s==0 and nanosSubS==0 with parts present means perfectly Xh or Xm, no "0s" suffix.

	if len(parts) == 0 {
		return "0s" // Non-zero d always produces parts above; kept for safety.
	}
	return sign + strings.Join(parts, "")
}

// ParseDuration parses a duration string from configuration, returning def
// when s is empty. Unlike time.ParseDuration it trims surrounding whitespace.
func ParseDuration(s string, def time.Duration) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: %w", s, err)
	}
	return d, nil
}
