package location

import "math"

// WrapLongitude maps lon into [-180,180)
func WrapLongitude(lon float64) float64 {
	return math.Mod(math.Mod(lon+180, 360)+360, 360) - 180
}

// WrapBearing maps bearing into [0,360)
func WrapBearing(bearing float64) float64 {
	return math.Mod(math.Mod(bearing, 360)+360, 360)
}
