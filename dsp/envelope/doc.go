// Package envelope implements the ADSR amplitude envelope.
//
// [Params.Gain] is a pure function of the time since the note started and
// the time at which it was released, so voices store only their start and
// end sample positions. [Gate] wraps the same shape in a gate-driven state
// machine for use inside signal graphs.
//
// The canonical curve is piecewise linear. [Exponential] applies the
// 2^g - 1 remap on top of it. Building with -tags fastmath evaluates that
// remap with github.com/meko-christian/algo-approx.
package envelope
