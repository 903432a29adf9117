package render

import (
	"fmt"
	"strings"
)

var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// FormatDecimal renders v with at most decimals places, trimming trailing
// zeros.
func FormatDecimal(v float64, decimals int) string {
	s := fmt.Sprintf("%.*f", decimals, v)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-" {
		return "0"
	}
	return s
}

// FormatBytes renders v in IEC units.
func FormatBytes(v float64) string {
	i := 0
	for v >= 1024.0 && i < len(byteUnits)-1 {
		v /= 1024.0
		i++
	}
	return fmt.Sprintf("%s %s", FormatDecimal(v, 2), byteUnits[i])
}

// Sparkline renders values as a block-character mini graph. When there
// are more values than maxPoints they are sampled uniformly from the
// tail.
func Sparkline(values []float64, maxPoints int) string {
	if len(values) == 0 {
		return ""
	}
	if maxPoints > 0 && len(values) > maxPoints {
		step := len(values) / maxPoints
		if step < 1 {
			step = 1
		}
		var sampled []float64
		for i := len(values) - maxPoints*step; i < len(values); i += step {
			if i >= 0 {
				sampled = append(sampled, values[i])
			}
		}
		values = sampled
	}
	mn, mx := values[0], values[0]
	for _, v := range values {
		if v < mn {
			mn = v
		}
		if v > mx {
			mx = v
		}
	}
	var sb strings.Builder
	for _, v := range values {
		idx := 0
		if mx > mn {
			idx = int((v - mn) / (mx - mn) * float64(len(sparkBlocks)-1))
		}
		sb.WriteRune(sparkBlocks[idx])
	}
	return sb.String()
}
