package audio

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/zurustar/oito/pkg/logger"
)

// Beeper plays one PCM cue through ebiten's audio package. Notify rewinds and
// plays, so a cue fired while the previous one is still playing restarts it.
type Beeper struct {
	player *audio.Player
	muted  bool
	plays  uint64
	mu     sync.Mutex
	log    *slog.Logger
}

// NewBeeper creates a beeper for pcm on ctx. ctx must use SampleRate.
func NewBeeper(ctx *audio.Context, pcm []byte) *Beeper {
	return &Beeper{
		player: ctx.NewPlayerFromBytes(pcm),
		log:    logger.GetLogger(),
	}
}

// Notify restarts the cue from its beginning.
func (b *Beeper) Notify() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.plays++
	if b.muted {
		return
	}
	if err := b.player.SetPosition(0); err != nil {
		b.log.Warn("Failed to rewind cue", "error", err)
		return
	}
	b.player.Play()
}

// SetMuted silences or restores the cue. Notify calls are still counted.
func (b *Beeper) SetMuted(muted bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.muted = muted
	if muted {
		b.player.SetVolume(0)
		b.player.Pause()
	} else {
		b.player.SetVolume(1)
	}
}

// IsMuted returns whether the beeper is muted.
func (b *Beeper) IsMuted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.muted
}

// Plays returns the number of Notify calls.
func (b *Beeper) Plays() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.plays
}

// Close releases the player.
func (b *Beeper) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.player.Close()
}

// Counter is a silent cue. Headless runs use it to report how often the
// sound timer was active.
type Counter struct {
	n atomic.Uint64
}

// Notify implements driver.Cue.
func (c *Counter) Notify() {
	c.n.Add(1)
}

// Count returns the number of Notify calls.
func (c *Counter) Count() uint64 {
	return c.n.Load()
}
