package core

import "fmt"

// IntToStringFixedWidth converts an integer to a string of a specified width,
// left-padding with spaces if the number string is shorter than the width.
// Longer numbers are not truncated.
func IntToStringFixedWidth(num int, width int) string {
	return fmt.Sprintf("%*d", width, num)
}

// ClampUnit restricts v to the closed interval [0,1]
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
