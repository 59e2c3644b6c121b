package override

import (
	"strconv"
	"strings"
)

// ScaleDrawing multiplies the coordinate pairs of vector drawing commands
// by sx and sy. Command letters are kept; each command restarts the x/y
// alternation.
func ScaleDrawing(text string, sx, sy float64) string {
	fields := strings.Fields(text)
	x := true
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			x = true
			continue
		}
		if x {
			v *= sx
		} else {
			v *= sy
		}
		x = !x
		fields[i] = FormatFloat(v)
	}
	return strings.Join(fields, " ")
}
