//go:build !headless

package main

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/ebitengine/oto/v3"
)

// playPCM plays mono float32 samples on the default output device and
// returns when playback ends or ctx is cancelled.
func playPCM(ctx context.Context, pcm []float32, sampleRate int) error {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 1,
		Format:       oto.FormatFloat32LE,
	})
	if err != nil {
		return fmt.Errorf("audio device: %w", err)
	}

	<-ready

	player := otoCtx.NewPlayer(bytes.NewReader(float32LE(pcm)))
	defer player.Close()

	player.Play()

	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for player.IsPlaying() {
		select {
		case <-ctx.Done():
			player.Pause()
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}

// float32LE lays out pcm in the byte order oto.FormatFloat32LE expects.
func float32LE(pcm []float32) []byte {
	buf := make([]byte, 0, 4*len(pcm))
	for _, v := range pcm {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}

	return buf
}
