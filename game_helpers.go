package main

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/go-gol3d/model"
	"github.com/sheikhrachel/go-gol3d/utils"
)

// initializeLattice builds the lattice and applies seeds and random fill
func initializeLattice(config utils.Config) (*model.Lattice, error) {
	rs, err := config.RuleSet()
	if err != nil {
		return nil, errors.Wrap(err, "[initializeLattice] failed to parse rule")
	}

	lattice, err := model.New(config.Width, config.Height, config.Depth, rs,
		model.WithWorkers(config.Workers))
	if err != nil {
		return nil, errors.Wrap(err, "[initializeLattice] failed to create lattice")
	}

	lattice.Randomize(rand.New(rand.NewSource(config.RandomSeed)), config.RandomDensity)

	for _, s := range config.Seeds {
		if err := lattice.Set(s.X, s.Y, s.Z, s.Value); err != nil {
			return nil, errors.Wrap(err, "[initializeLattice] failed to place seed")
		}
	}

	return lattice, nil
}

// checkStopConditions determines if the run should end early
func checkStopConditions(livingCells, stagnantCount int, config utils.Config) (bool, string) {
	if livingCells == 0 {
		return true, "extinction"
	}
	if config.StopOnStagnation && stagnantCount >= config.StagnationThreshold {
		return true, "stagnation detected"
	}
	return false, ""
}

// run drives the lattice for the configured number of generations
func run(ctx context.Context, config utils.Config, logger *slog.Logger) error {
	lattice, err := initializeLattice(config)
	if err != nil {
		return err
	}

	stats := utils.NewStats()
	logger.Info("starting simulation",
		"rule", lattice.Rules().String(),
		"width", lattice.Width(),
		"height", lattice.Height(),
		"depth", lattice.Depth(),
		"generations", config.Generations,
		"living", lattice.CountLiving(),
	)

	var (
		generation    = 0
		stagnantCount = 0
		reason        = "generation limit"
	)

	for generation < config.Generations {
		if ctx.Err() != nil {
			reason = "interrupted"
			break
		}

		frameStart := time.Now()
		lattice.UpdateHistory()
		lattice.Advance()
		generation++

		livingCells := lattice.CountLiving()
		stats.Update(generation, livingCells, time.Since(frameStart))

		// Compare before the new state enters history
		if lattice.IsStagnant() {
			stagnantCount++
		} else {
			stagnantCount = 0
		}

		logger.Debug("generation",
			"generation", generation,
			"living", livingCells,
			"stagnant", stagnantCount,
			"gen_per_sec", stats.GenerationsPerSecond,
		)

		if stop, why := checkStopConditions(livingCells, stagnantCount, config); stop {
			reason = why
			break
		}
	}

	logger.Info("simulation finished",
		"reason", reason,
		"generations", generation,
		"living", lattice.CountLiving(),
		"avg_population", stats.AveragePopulation,
		"peak_population", stats.PeakPopulation,
		"runtime", stats.Runtime(),
		"hash", lattice.Hash(),
	)
	return nil
}
