package fleetsim

import (
	"math"
	"math/rand"
	"time"
)

// Pattern shapes the simulated load over time.
type Pattern interface {
	Apply(base float64) float64
	Name() string
}

func ParsePattern(name string) Pattern {
	switch name {
	case "daily":
		return &DailyPattern{}
	case "random":
		return &RandomPattern{}
	case "gradual_rise":
		return &GradualRisePattern{startTime: time.Now()}
	case "sine_wave":
		return &SineWavePattern{}
	default:
		return &SteadyPattern{}
	}
}

// SteadyPattern - constant load
type SteadyPattern struct{}

func (p *SteadyPattern) Apply(base float64) float64 {
	return base
}

func (p *SteadyPattern) Name() string {
	return "steady"
}

// DailyPattern - simulates daily traffic cycle (high during business hours)
type DailyPattern struct{}

func (p *DailyPattern) Apply(base float64) float64 {
	hour := time.Now().Hour()

	var modifier float64
	switch {
	case hour >= 9 && hour <= 11:
		modifier = 1.4
	case hour >= 14 && hour <= 16:
		modifier = 1.3
	case hour >= 17 && hour <= 20:
		modifier = 1.1
	case hour >= 0 && hour <= 6:
		modifier = 0.6
	default:
		modifier = 1.0
	}

	return clamp(base*modifier, 0, 100)
}

func (p *DailyPattern) Name() string {
	return "daily"
}

// RandomPattern - unpredictable spikes and drops
type RandomPattern struct{}

func (p *RandomPattern) Apply(base float64) float64 {
	// Random modifier between 0.5 and 1.5
	modifier := 0.5 + rand.Float64()
	return clamp(base*modifier, 10, 100)
}

func (p *RandomPattern) Name() string {
	return "random"
}

// GradualRisePattern - slowly increasing load
type GradualRisePattern struct {
	startTime time.Time
}

func (p *GradualRisePattern) Apply(base float64) float64 {
	elapsed := time.Since(p.startTime)

	// Increase by 2% per minute, capped at 50% increase
	increasePercent := math.Min(elapsed.Minutes()*2, 50)
	modifier := 1.0 + (increasePercent / 100)

	return clamp(base*modifier, 0, 100)
}

func (p *GradualRisePattern) Name() string {
	return "gradual_rise"
}

// SineWavePattern - smooth oscillation
type SineWavePattern struct {
	Period    time.Duration
	Amplitude float64
}

func (p *SineWavePattern) Apply(base float64) float64 {
	period := p.Period
	if period == 0 {
		period = 10 * time.Minute
	}
	amplitude := p.Amplitude
	if amplitude == 0 {
		amplitude = 20
	}

	elapsed := float64(time.Now().UnixNano())
	phase := (elapsed / float64(period.Nanoseconds())) * 2 * math.Pi

	return clamp(base+math.Sin(phase)*amplitude, 10, 100)
}

func (p *SineWavePattern) Name() string {
	return "sine_wave"
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
