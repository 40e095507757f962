// Package vehicle implements the planar single-track (bicycle) car.
//
// The package defines two types:
//
//   - [State]: ground-frame position, heading and velocities of the car
//   - [Car]: physical parameters plus a tire model, owning one live State
//
// # Conventions
//
// Heading Psi is measured from the ground y axis towards the x axis, so a
// car with Psi = pi/2 and positive Vx moves along +x. The sideslip angle
// follows the same convention: the velocity angle is atan2(Vx, Vy).
// Heading is never wrapped; it accumulates over the run.
//
// # Integration
//
// [State.Advance] is a first-order explicit Euler step. Positions are
// advanced with the velocities from before the step, then the velocities
// with the supplied accelerations.
package vehicle
