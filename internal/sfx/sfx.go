// Package sfx synthesizes the gift box sounds as beep streamers. Playback is up to the caller.
package sfx

import (
	"math"
	"math/rand"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
)

// SampleRate is the rate every sound is generated at.
const SampleRate = beep.SampleRate(44100)

const (
	rumbleAttack  = 20 * time.Millisecond
	rumbleRelease = 120 * time.Millisecond
	rumbleLowpass = 0.08

	chimeNote     = 180 * time.Millisecond
	chimeAttack   = 5 * time.Millisecond
	chimeRelease  = 150 * time.Millisecond
	chimeFirstHz  = 1046.50 // C6
	chimeSecondHz = 1318.51 // E6
)

// tone is a sine oscillator that runs for a fixed number of samples.
type tone struct {
	freq     float64
	phase    float64
	position int
	total    int
	rate     beep.SampleRate
}

func newTone(freq float64, d time.Duration, rate beep.SampleRate) *tone {
	return &tone{freq: freq, total: rate.N(d), rate: rate}
}

func (o *tone) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.total {
			return i, i > 0
		}
		v := math.Sin(2 * math.Pi * o.phase)
		samples[i][0], samples[i][1] = v, v
		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *tone) Err() error { return nil }

// rumbleNoise is low-passed white noise, so the shake sounds like a box knocking rather than hiss.
type rumbleNoise struct {
	rng      *rand.Rand
	last     float64
	position int
	total    int
}

func (r *rumbleNoise) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if r.position >= r.total {
			return i, i > 0
		}
		r.last += rumbleLowpass * (r.rng.Float64()*2 - 1 - r.last)
		samples[i][0], samples[i][1] = r.last, r.last
		r.position++
	}
	return len(samples), true
}

func (r *rumbleNoise) Err() error { return nil }

// envelope fades a stream in over attack and out over the last release of d.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func newEnvelope(s beep.Streamer, d, attack, release time.Duration, rate beep.SampleRate) *envelope {
	return &envelope{streamer: s, attack: rate.N(attack), release: rate.N(release), total: rate.N(d)}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if remaining := e.total - e.position; e.release > 0 && remaining < e.release {
			vol = math.Min(vol, float64(remaining)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// gain scales a stream linearly. Zero or less is silent.
func gain(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

// Rumble is a knock of filtered noise lasting d, scaled by intensity
// (the rumble intensity, where 0.1 is a normal tap).
func Rumble(d time.Duration, intensity float64, rng *rand.Rand) beep.Streamer {
	noise := &rumbleNoise{rng: rng, total: SampleRate.N(d)}
	shaped := newEnvelope(noise, d, rumbleAttack, rumbleRelease, SampleRate)
	return gain(shaped, math.Min(1, intensity*8))
}

// Chime is the rising two-note bell played when the open gesture fires.
func Chime(volume float64) beep.Streamer {
	first := newEnvelope(newTone(chimeFirstHz, chimeNote, SampleRate), chimeNote, chimeAttack, chimeRelease, SampleRate)
	second := newEnvelope(newTone(chimeSecondHz, chimeNote*2, SampleRate), chimeNote*2, chimeAttack, chimeRelease*2, SampleRate)
	return gain(beep.Seq(first, second), volume)
}

// Duration is the length of a finite streamer at SampleRate. It drains s.
func Duration(s beep.Streamer) time.Duration {
	buf := make([][2]float64, 512)
	total := 0
	for {
		n, ok := s.Stream(buf)
		total += n
		if !ok {
			break
		}
	}
	return SampleRate.D(total)
}
