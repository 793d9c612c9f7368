package graycode

// selectTolerance picks the smallest error level whose cumulative pixel count
// reaches minPoints, walking levels from strictest upward. The unreliable
// bucket never participates. The returned count is the cumulative total at the
// chosen level, usable to presize the output; ok is false when even the
// loosest tracked level falls short.
func selectTolerance(levels []ErrorLevel, minPoints int) (ErrorLevel, int, bool) {
	var counts [ErrorLevelUnreliable]int
	for _, l := range levels {
		if l < ErrorLevelUnreliable {
			counts[l]++
		}
	}
	cumulative := 0
	for level, count := range counts {
		cumulative += count
		if cumulative >= minPoints {
			return ErrorLevel(level), cumulative, true
		}
	}
	return ErrorLevelUnreliable, cumulative, false
}
