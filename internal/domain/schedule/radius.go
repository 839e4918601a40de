package schedule

// Serving radius in kilometers.
const (
	PeakRadiusKm   = 3.0
	NormalRadiusKm = 5.0
)

// Peak windows, exclusive on both ends: 08:00-10:00, 13:00-14:00, 19:00-21:00.
var peakWindows = []Window{
	{OpensAt: Clock(7, 59, 59), ClosesAt: Clock(10, 0, 1)},
	{OpensAt: Clock(12, 59, 59), ClosesAt: Clock(14, 0, 1)},
	{OpensAt: Clock(18, 59, 59), ClosesAt: Clock(21, 0, 1)},
}

// IsPeak reports whether t falls in a peak-hour window.
func IsPeak(t TimeOfDay) bool {
	for _, w := range peakWindows {
		if w.IsOpen(t) {
			return true
		}
	}
	return false
}

// RadiusKm returns the serving radius in effect at t.
func RadiusKm(t TimeOfDay) float64 {
	if IsPeak(t) {
		return PeakRadiusKm
	}
	return NormalRadiusKm
}
