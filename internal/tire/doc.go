// Package tire provides tire force laws for the single-track model.
//
// A tire model maps the slip state of one axle and its normal load to the
// force the contact patch transmits, expressed in the tire's own frame:
//
//   - [Linear]: force proportional to combined slip, never saturates
//   - [Saturating]: linear up to the friction circle Mu*Fz
//
// Every model implements [Model]. Models are pure: the same inputs always
// yield the same forces and no call mutates the model.
package tire
