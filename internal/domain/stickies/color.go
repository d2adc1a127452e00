package stickies

// ClassifyColor maps an RGB triple on the 0-255 scale to a palette name.
// The rules are checked in order; the last one is total.
func ClassifyColor(r, g, b int) Color {
	switch {
	case absDiff(r, g) <= 30 && absDiff(g, b) <= 30 && absDiff(r, b) <= 30:
		return ColorGray
	case r > 240 && g > 240 && b < 200:
		return ColorYellow
	case g-r > 30 && g-b > 30:
		return ColorGreen
	case b-r > 30 && b-g > 30:
		return ColorBlue
	case r-g > 20 && r-b > 20 && g > 150 && b > 150:
		return ColorPink
	case r > 150 && b > 150 && r-g > 20 && b-g > 20:
		return ColorPurple
	}

	switch {
	case r >= g && r >= b:
		return ColorPink
	case g >= b:
		return ColorGreen
	default:
		return ColorBlue
	}
}

// ClassifyColorUnit accepts channels in the 0-1 range.
func ClassifyColorUnit(r, g, b float64) Color {
	return ClassifyColor(unitToByte(r), unitToByte(g), unitToByte(b))
}

func unitToByte(v float64) int {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return int(v*255 + 0.5)
	}
}

func absDiff(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}
