// Package validate provides input validation helpers for procedure
// parameters and control requests.
package validate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/manav03panchal/stepwise/internal/errors"
)

const (
	// MinArraySize is the smallest array a sorting run accepts.
	MinArraySize = 2
	// MaxArraySize is the largest array a sorting run accepts.
	MaxArraySize = 100
	// MaxArrayValue bounds individual array values.
	MaxArrayValue = 999
	// MinGridDim is the smallest grid side.
	MinGridDim = 2
	// MaxGridRows is the maximum number of grid rows.
	MaxGridRows = 50
	// MaxGridCols is the maximum number of grid columns.
	MaxGridCols = 80
	// MaxStringLength is the maximum length of a DP input string.
	MaxStringLength = 12
	// MaxKnapsackItems is the maximum number of knapsack items.
	MaxKnapsackItems = 10
	// MaxKnapsackCapacity bounds the knapsack capacity.
	MaxKnapsackCapacity = 50
	// MaxFibonacci bounds the fibonacci index.
	MaxFibonacci = 40
	// MaxCoinAmount bounds the coin-change target.
	MaxCoinAmount = 100
	// MaxCoins is the maximum number of coin denominations.
	MaxCoins = 8
	// MaxGraphNodes bounds randomly generated graphs.
	MaxGraphNodes = 26
)

// ArraySize validates the length of a sorting input.
func ArraySize(n int) error {
	if n < MinArraySize || n > MaxArraySize {
		return errors.NewUserErrorWithField("size", strconv.Itoa(n),
			"Array size out of range",
			fmt.Sprintf("Arrays must hold between %d and %d values", MinArraySize, MaxArraySize)).
			WithCause(errors.ErrInvalidSize)
	}
	return nil
}

// Values validates an explicit sorting input.
func Values(values []int) error {
	if err := ArraySize(len(values)); err != nil {
		return err
	}
	for i, v := range values {
		if v < 0 || v > MaxArrayValue {
			return errors.NewUserErrorWithField(fmt.Sprintf("values[%d]", i), strconv.Itoa(v),
				"Array value out of range",
				fmt.Sprintf("Values must be between 0 and %d", MaxArrayValue)).
				WithCause(errors.ErrInvalidParams)
		}
	}
	return nil
}

// GridSize validates pathfinding grid dimensions.
func GridSize(rows, cols int) error {
	if rows < MinGridDim || rows > MaxGridRows || cols < MinGridDim || cols > MaxGridCols {
		return errors.NewUserErrorWithField("grid", fmt.Sprintf("%dx%d", rows, cols),
			"Grid size out of range",
			fmt.Sprintf("Grids must be between %dx%d and %dx%d", MinGridDim, MinGridDim, MaxGridRows, MaxGridCols)).
			WithCause(errors.ErrInvalidSize)
	}
	return nil
}

// Density validates a maze wall density.
func Density(d float64) error {
	if d < 0 || d > 0.6 {
		return errors.NewUserErrorWithField("density", strconv.FormatFloat(d, 'f', -1, 64),
			"Wall density out of range",
			"Use a density between 0 and 0.6").
			WithCause(errors.ErrInvalidParams)
	}
	return nil
}

// Text validates a DP input string.
func Text(field, s string) error {
	if utf8.RuneCountInString(s) > MaxStringLength {
		return errors.NewUserErrorWithField(field, s,
			"Input too long",
			fmt.Sprintf("Strings must be %d characters or fewer", MaxStringLength)).
			WithCause(errors.ErrInputTooLong)
	}
	return nil
}

// Speed validates a step delay against [lo, hi]. Zero is always accepted
// and means "as fast as possible".
func Speed(d, lo, hi time.Duration) error {
	if d == 0 {
		return nil
	}
	if d < lo || d > hi {
		return errors.NewUserErrorWithField("speed", d.String(),
			"Speed out of range",
			fmt.Sprintf("Pick a delay between %s and %s", lo, hi)).
			WithCause(errors.ErrSpeedOutOfRange)
	}
	return nil
}

// Items validates the knapsack item count and that weights and values
// pair up.
func Items(weights, values []int) error {
	if len(weights) != len(values) {
		return errors.NewUserErrorWithField("items", fmt.Sprintf("%d/%d", len(weights), len(values)),
			"Weights and values differ in length",
			"Give one value per weight").
			WithCause(errors.ErrInvalidParams)
	}
	if len(weights) > MaxKnapsackItems {
		return errors.NewUserErrorWithField("items", strconv.Itoa(len(weights)),
			"Too many items",
			fmt.Sprintf("Knapsack takes at most %d items", MaxKnapsackItems)).
			WithCause(errors.ErrInvalidSize)
	}
	for i := range weights {
		if weights[i] < 1 || values[i] < 0 {
			return errors.NewUserErrorWithField(fmt.Sprintf("items[%d]", i), fmt.Sprintf("%d/%d", weights[i], values[i]),
				"Invalid item",
				"Weights must be positive and values non-negative").
				WithCause(errors.ErrInvalidParams)
		}
	}
	return nil
}

// Coins validates coin denominations.
func Coins(coins []int) error {
	if len(coins) > MaxCoins {
		return errors.NewUserErrorWithField("coins", strconv.Itoa(len(coins)),
			"Too many coins",
			fmt.Sprintf("Use at most %d denominations", MaxCoins)).
			WithCause(errors.ErrInvalidSize)
	}
	for i, c := range coins {
		if c < 1 {
			return errors.NewUserErrorWithField(fmt.Sprintf("coins[%d]", i), strconv.Itoa(c),
				"Invalid coin",
				"Denominations must be positive").
				WithCause(errors.ErrInvalidParams)
		}
	}
	return nil
}

// NonEmpty validates that a string is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewUserError(
			field+" cannot be empty",
			"Provide a value for "+field).
			WithCause(errors.ErrInvalidParams)
	}
	return nil
}

// InRange validates that an integer is within [min, max].
func InRange(field string, value, min, max int) error {
	if value < min || value > max {
		return errors.NewUserErrorWithField(field, strconv.Itoa(value),
			"Value out of range",
			fmt.Sprintf("Must be between %d and %d", min, max)).
			WithCause(errors.ErrInvalidParams)
	}
	return nil
}
