//go:build headless

package main

import (
	"context"
	"errors"
)

func playPCM(context.Context, []float32, int) error {
	return errors.New("playback is not available in headless builds")
}
