// Package rack implements a modular routing graph for block processing.
//
// A rack is a fixed set of modules connected output-port to input-port.
// Modules are owned by value in one slice and addressed by index; names
// are resolved once when a [Builder] is built. Each render evaluates the
// modules in topological order (declaration order breaks ties) and pushes
// every output along its connections before the downstream module runs,
// so a module always sees the current block's inputs. Cycles are rejected
// at build time.
//
// Inputs hold their last value until fed again. A single-element feed is
// a scalar held across the block; longer feeds are sample sequences.
// Several connections into the same input within one block are summed.
//
// Topologies can be declared in JSON and loaded with [ParseSpec]:
//
//	{
//	  "modules": [
//	    {"name": "voices", "kind": "passthrough"},
//	    {"name": "lfo", "kind": "oscillator", "params": {"pitch": -8}},
//	    {"name": "trem", "kind": "attenuverter", "params": {"gain": 0.2, "offset": 0.8}},
//	    {"name": "vca", "kind": "vca"},
//	    {"name": "out", "kind": "passthrough"}
//	  ],
//	  "connections": [
//	    {"from": "voices", "to": "vca"},
//	    {"from": "lfo", "to": "trem"},
//	    {"from": "trem", "to": "vca", "toPort": "cv"},
//	    {"from": "vca", "to": "out"}
//	  ]
//	}
package rack
