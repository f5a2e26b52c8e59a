package param

import (
	"fmt"
	"math"
)

// FormatDB renders a plain dB value with the given number of decimals.
func FormatDB(decimals int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f dB", decimals, v)
	}
}

// FormatGainDB renders a value stored as linear gain in decibels.
func FormatGainDB(decimals int) func(float64) string {
	return func(v float64) string {
		if v <= 0 {
			return "-inf dB"
		}
		return fmt.Sprintf("%.*f dB", decimals, 20*math.Log10(v))
	}
}

// FormatRatio renders a compression ratio as "n:1".
func FormatRatio(decimals int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f:1", decimals, v)
	}
}

// FormatSeconds renders a duration in seconds as milliseconds below one
// second and as seconds above.
func FormatSeconds() func(float64) string {
	return func(v float64) string {
		ms := v * 1000
		if ms >= 1000 {
			return fmt.Sprintf("%.2f s", v)
		}
		return fmt.Sprintf("%.2f ms", ms)
	}
}

// FormatPercent renders a [0, 1] fraction as a percentage.
func FormatPercent(decimals int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f%%", decimals, v*100)
	}
}

// FormatChoice renders a discrete selection by name. Out-of-range
// selections fall back to the numeric index.
func FormatChoice(names ...string) func(float64) string {
	return func(v float64) string {
		i := int(math.Round(v))
		if i < 0 || i >= len(names) {
			return fmt.Sprintf("%d", i)
		}
		return names[i]
	}
}
