package anneal_test

import (
	"context"
	"fmt"

	"github.com/n0madic/go-ising-anneal/anneal"
	"github.com/n0madic/go-ising-anneal/ising"
)

// Anneal an antiferromagnetic chain: neighbours prefer
// opposite spins.
func ExampleSimulatedAnnealing() {
	h := []float64{0, 0, 0, 0}
	starts := []int{0, 1, 2}
	ends := []int{1, 2, 3}
	weights := []float64{1, 1, 1}

	schedule, _ := anneal.LinearSchedule(0.1, 5, 200)
	res, err := anneal.SimulatedAnnealing(context.Background(), 10, h, starts, ends, weights, schedule, 42)
	if err != nil {
		fmt.Println(err)
		return
	}

	_, e := res.Lowest()
	fmt.Println(res.NumSamples(), e)
	// Output: 10 -3
}

func ExampleSampler_Run() {
	p, err := ising.Build([]float64{-1, -1}, []int{0}, []int{1}, []float64{-1})
	if err != nil {
		fmt.Println(err)
		return
	}

	s := anneal.NewSampler(anneal.WithWorkers(2))
	schedule := []float64{1, 2, 4, 8}
	res, err := s.Run(context.Background(), p, schedule, anneal.Request{
		Seed:               7,
		NumSamples:         4,
		NumSweeps:          len(schedule),
		IntermediateStates: 2,
	})
	if err != nil {
		fmt.Println(err)
		return
	}

	for _, snap := range res.IntermediateStates[0] {
		fmt.Println("snapshot after sweep", snap.Sweep)
	}
	// Output:
	// snapshot after sweep 1
	// snapshot after sweep 3
}
