// Package analysis provides post-processing tools for vehicle trajectories.
//
// The package includes:
//
//   - [Convergence]: step-refinement study of one scenario
//   - [NewPhasePortrait]: two trajectory quantities against each other
//   - [DominantFrequency]: strongest oscillation in a sampled quantity
//
// # Convergence
//
// The integrator is first-order explicit Euler, so halving the step should
// roughly halve the change in the terminal state:
//
//	study, _ := analysis.Convergence(ctx, cfg, newCar, 4)
//	for _, lvl := range study.Levels {
//	    fmt.Println(lvl.Dt, lvl.FinalX, lvl.Order)
//	}
package analysis
