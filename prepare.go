package pwxconv

// PrepareOptions controls how a workout is segmented before projection.
type PrepareOptions struct {
	// DropInvalidFixes removes dropout samples before segmenting.
	DropInvalidFixes bool
	LastPoint        LastPointMode
}

// PreparedWorkout is a workout split into laps. Workout holds a private copy of
// the samples the laps point into.
type PreparedWorkout struct {
	Workout Workout
	Laps    []Lap
	Dropped int
}

// PrepareWorkout checks boundary preconditions against the full workout, then
// filters and segments a copy of its samples. The caller's workout is left
// untouched.
func PrepareWorkout(w Workout, opts PrepareOptions) (PreparedWorkout, error) {
	if err := ValidateBoundaries(w); err != nil {
		return PreparedWorkout{}, err
	}

	work := w.Clone()
	dropped := 0
	if opts.DropInvalidFixes {
		work.Samples, dropped = DropInvalidFixes(work.Samples)
	}

	laps, err := SplitLaps(work.Samples, work.Boundaries, work.Summary, opts.LastPoint)
	if err != nil {
		return PreparedWorkout{}, err
	}
	return PreparedWorkout{Workout: work, Laps: laps, Dropped: dropped}, nil
}

// Report summarizes the prepared workout under the given 1-based index.
func (p PreparedWorkout) Report(index int) WorkoutReport {
	return WorkoutReport{
		Index:          index,
		Sport:          p.Workout.Sport,
		TargetSport:    MapSport(p.Workout.Sport),
		StartTime:      p.Workout.StartTime,
		Device:         p.Workout.Device.Name(),
		SampleCount:    len(p.Workout.Samples),
		DroppedSamples: p.Dropped,
		Laps:           ReportLaps(p.Laps),
	}
}
