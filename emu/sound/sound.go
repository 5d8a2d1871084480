package sound

import (
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneHz     = 440.0
	volume     = 0.05
)

// Beeper synthesizes the Chip-8 tone: a square wave that plays while the
// sound timer is nonzero. The host loop gates it once per frame via
// SetActive; the speaker goroutine only reads the gate.
type Beeper struct {
	mu    sync.Mutex
	on    bool
	phase float64
}

// New initializes the speaker and starts the (silent) tone stream.
func New() (*Beeper, error) {
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	b := &Beeper{}
	speaker.Play(beep.StreamerFunc(b.stream))
	return b, nil
}

func (b *Beeper) SetActive(on bool) {
	b.mu.Lock()
	b.on = on
	b.mu.Unlock()
}

func (b *Beeper) stream(samples [][2]float64) (int, bool) {
	b.mu.Lock()
	on := b.on
	b.mu.Unlock()

	for i := range samples {
		var v float64
		if on {
			if b.phase < 0.5 {
				v = volume
			} else {
				v = -volume
			}
			b.phase += toneHz / float64(sampleRate)
			if b.phase >= 1 {
				b.phase -= 1
			}
		}
		samples[i][0] = v
		samples[i][1] = v
	}
	return len(samples), true
}
