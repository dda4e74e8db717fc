// SPDX-License-Identifier: EPL-2.0

// Package mixer implements the track graph.
//
// A Track accumulates audio deposited by instances and by upstream tracks,
// runs its effect chain in registration order, scales the result by its
// volume and sends copies along its routes. Tracks are processed in a
// topological order of the routing relation, recomputed with Kahn's
// algorithm whenever the structure changes, so every track's contributions
// are complete before it runs. The main track has no routes and its buffer
// is the block's output.
//
// Cycles are rejected when a route is created, by Topology on the control
// side. The render-side Graph still tolerates one that slips through: the
// tracks on it are skipped, which leaves them silent, and a fault is
// reported.
//
// Graph is owned by the render goroutine. Everything it needs is allocated
// up front, on the control side, when tracks and effects are built.
package mixer
