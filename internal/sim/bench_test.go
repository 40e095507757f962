package sim_test

import (
	"context"
	"testing"

	"github.com/san-kum/carsim/internal/sim"
	"github.com/san-kum/carsim/internal/vehicle"
)

func BenchmarkSimulateDefault(b *testing.B) {
	s := sim.Default()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		car, err := vehicle.New(vehicle.DefaultParams(), nil, vehicle.DefaultState())
		if err != nil {
			b.Fatal(err)
		}
		if _, err := s.Simulate(context.Background(), car); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCarAdvance(b *testing.B) {
	car, err := vehicle.New(vehicle.DefaultParams(), nil, vehicle.State{Vx: 25, Psi: 1.5707963267948966})
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		car.Advance(0.05, 0.01, 1e-3)
	}
}
