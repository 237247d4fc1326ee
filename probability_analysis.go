//go:build analysis
// +build analysis

// Standalone probability analysis tool for the roll engine.
// Run with: go run -tags analysis probability_analysis.go
package main

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"drawdown/domain/entities"
	"drawdown/domain/services"
)

func main() {
	fmt.Println("=== Roll Engine Probability Analysis ===")

	probabilities := []float64{1, 5, 10, 25, 50, 75, 90, 95, 99}
	for _, prob := range probabilities {
		analyzeWinRate(prob, 100000)
	}

	fmt.Println("\n=== MULTIPLIER DISTRIBUTION ANALYSIS ===")
	analyzeMultipliers(entities.DefaultSettings(), 100000)

	fmt.Println("\n=== STREAK ADJUSTMENT CLAMPING ===")
	analyzeAdjustmentClamp()
}

// analyzeWinRate simulates many rolls at a given win probability and
// compares the observed rate against the configured one.
func analyzeWinRate(winProbability float64, numTrials int) {
	settings := entities.DefaultSettings()
	settings.WinProbability = winProbability
	roller := services.NewRollService(rand.New(rand.NewSource(rand.Int63())))

	wins := 0
	for i := 0; i < numTrials; i++ {
		if roller.Roll(settings, false).Won {
			wins++
		}
	}

	actualWinRate := float64(wins) / float64(numTrials) * 100
	deviation := actualWinRate - winProbability

	expectedWins := float64(numTrials) * winProbability / 100
	expectedLosses := float64(numTrials) - expectedWins
	chiSquared := math.Pow(float64(wins)-expectedWins, 2)/expectedWins +
		math.Pow(float64(numTrials-wins)-expectedLosses, 2)/expectedLosses

	fmt.Printf("Probability: %5.1f%% | Trials: %d | Wins: %6d | Actual: %.2f%% | Deviation: %+.2f%% | χ²: %.2f",
		winProbability, numTrials, wins, actualWinRate, deviation, chiSquared)

	if math.Abs(deviation) <= 2.0 {
		fmt.Println(" ✓ PASS")
	} else {
		fmt.Println(" ✗ FAIL")
	}
}

// analyzeMultipliers checks that winning rolls select multipliers in
// proportion to their configured weights.
func analyzeMultipliers(settings entities.Settings, numTrials int) {
	settings.WinProbability = 100
	roller := services.NewRollService(rand.New(rand.NewSource(rand.Int63())))

	counts := make(map[int]int)
	for i := 0; i < numTrials; i++ {
		counts[roller.Roll(settings, false).Multiplier]++
	}

	totalWeight := 0.0
	for _, m := range settings.EnabledMultipliers {
		totalWeight += settings.Multipliers[m]
	}

	observed := make([]int, 0, len(counts))
	for m := range counts {
		observed = append(observed, m)
	}
	sort.Ints(observed)

	fmt.Printf("\nEnabled multipliers with weights %v over %d winning rolls:\n", settings.Multipliers, numTrials)
	for _, m := range observed {
		expected := 0.0
		if m != 1 {
			expected = settings.Multipliers[m] / 100 * float64(numTrials)
		} else {
			// Weight shortfall falls through to the base multiplier
			expected = (100 - totalWeight) / 100 * float64(numTrials)
		}
		share := float64(counts[m]) / float64(numTrials) * 100
		bar := ""
		for j := 0; j < int(share/2); j++ {
			bar += "█"
		}
		fmt.Printf("  x%-3d %6d rolls (%5.2f%%, expected %6.0f) %s\n", m, counts[m], share, expected, bar)
	}
}

// analyzeAdjustmentClamp prints the effective probability across the full
// adjustment range, showing the [1, 99] clamp on the adjusted path.
func analyzeAdjustmentClamp() {
	settings := entities.DefaultSettings()
	settings.StreakAdjustment.Enabled = true

	for _, adj := range []int{-100, -60, -10, 0, 10, 60, 100} {
		settings.StreakAdjustment.Adjustment = adj
		effective := services.EffectiveWinProbability(settings, true)
		fmt.Printf("  base %.0f%% adjustment %+4d -> effective %5.1f%%\n",
			settings.WinProbability, adj, effective)
	}
}
