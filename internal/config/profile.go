package config

import "time"

// LoadProfile defines the concurrency-over-time shape of a run.
type LoadProfile struct {
	Phases []Phase `yaml:"phases"`
}

// Phase is a single stage in the load profile. Actors sets a constant
// target for the stage; StartActors/EndActors ramp the target linearly
// across the stage's duration.
type Phase struct {
	Name        string        `yaml:"name"`
	Duration    time.Duration `yaml:"duration"`
	Actors      int           `yaml:"actors"`
	StartActors int           `yaml:"startActors"`
	EndActors   int           `yaml:"endActors"`
	RPS         int           `yaml:"rps"`
}

// TotalDuration returns the sum of all phase durations.
func (lp *LoadProfile) TotalDuration() time.Duration {
	var total time.Duration
	for _, p := range lp.Phases {
		total += p.Duration
	}
	return total
}

// ConstantProfile is a single steady phase: N actors for a fixed duration.
func ConstantProfile(actors int, duration time.Duration) *LoadProfile {
	return &LoadProfile{Phases: []Phase{
		{Name: "steady", Duration: duration, Actors: actors},
	}}
}

// Stage is a shorthand (duration, target) pair for building ramped profiles.
type Stage struct {
	Duration time.Duration
	Target   int
}

// RampedProfile builds a profile from ordered stages, ramping the actor
// count from each stage's starting population to its target.
func RampedProfile(stages ...Stage) *LoadProfile {
	lp := &LoadProfile{Phases: make([]Phase, 0, len(stages))}
	prev := 0
	for _, s := range stages {
		lp.Phases = append(lp.Phases, Phase{
			Duration:    s.Duration,
			StartActors: prev,
			EndActors:   s.Target,
		})
		prev = s.Target
	}
	return lp
}

// Validate reports whether all phase durations are positive and actor
// targets non-negative.
func (lp *LoadProfile) Validate() bool {
	if lp == nil || len(lp.Phases) == 0 {
		return false
	}
	for _, p := range lp.Phases {
		if p.Duration <= 0 || p.Actors < 0 || p.StartActors < 0 || p.EndActors < 0 {
			return false
		}
	}
	return true
}
