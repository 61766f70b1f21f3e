// Package window generates the analysis windows used to measure rendered
// audio.
//
// The symmetric form suits filter design and level meters; the periodic
// form ([WithPeriodic]) is the one FFT framing wants, since its period is
// exactly the frame length.
package window
