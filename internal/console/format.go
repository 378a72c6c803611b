package console

import (
	"math"
	"strconv"
	"strings"
)

// FormatSalary renders a salary the way listings show it, e.g. "Rs 50,000".
// Fractions are kept to two places only when present.
func FormatSalary(salary float64) string {
	sign := ""
	if salary < 0 {
		sign = "-"
		salary = -salary
	}
	cents := int64(math.Round(salary * 100))
	whole, frac := cents/100, cents%100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "Rs " + sign + b.String()
	if frac != 0 {
		out += "." + leftPad(strconv.FormatInt(frac, 10), 2)
	}
	return out
}

func leftPad(s string, n int) string {
	for len(s) < n {
		s = "0" + s
	}
	return s
}
