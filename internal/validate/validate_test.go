package validate

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manav03panchal/stepwise/internal/errors"
)

// =============================================================================
// Size Tests
// =============================================================================

func TestArraySize(t *testing.T) {
	tests := []struct {
		name    string
		n       int
		wantErr bool
	}{
		{"min", MinArraySize, false},
		{"max", MaxArraySize, false},
		{"typical", 50, false},
		{"too_small", 1, true},
		{"zero", 0, true},
		{"too_large", MaxArraySize + 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ArraySize(tt.n)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errors.ErrInvalidSize))
				assert.True(t, errors.IsUserError(err))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValues(t *testing.T) {
	assert.NoError(t, Values([]int{5, 3, 8, 1, 2}))
	assert.Error(t, Values([]int{5}))

	err := Values([]int{1, MaxArrayValue + 1})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidParams))
	ue, ok := errors.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "values[1]", ue.Field)
}

func TestGridSize(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		wantErr    bool
	}{
		{"default", 20, 40, false},
		{"max", MaxGridRows, MaxGridCols, false},
		{"min", MinGridDim, MinGridDim, false},
		{"too_many_rows", MaxGridRows + 1, 10, true},
		{"too_many_cols", 10, MaxGridCols + 1, true},
		{"degenerate", 1, 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := GridSize(tt.rows, tt.cols)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrInvalidSize))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestDensity(t *testing.T) {
	assert.NoError(t, Density(0))
	assert.NoError(t, Density(0.3))
	assert.Error(t, Density(-0.1))
	assert.Error(t, Density(0.9))
}

// =============================================================================
// Text Tests
// =============================================================================

func TestText(t *testing.T) {
	assert.NoError(t, Text("a", ""))
	assert.NoError(t, Text("a", strings.Repeat("x", MaxStringLength)))
	assert.NoError(t, Text("a", "日本語"))

	err := Text("b", strings.Repeat("x", MaxStringLength+1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInputTooLong))
}

// =============================================================================
// Speed Tests
// =============================================================================

func TestSpeed(t *testing.T) {
	lo, hi := 5*time.Millisecond, 2*time.Second

	tests := []struct {
		name    string
		d       time.Duration
		wantErr bool
	}{
		{"zero_means_no_delay", 0, false},
		{"lower_bound", lo, false},
		{"upper_bound", hi, false},
		{"typical", 50 * time.Millisecond, false},
		{"too_fast", time.Millisecond, true},
		{"too_slow", 3 * time.Second, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Speed(tt.d, lo, hi)
			if tt.wantErr {
				assert.True(t, errors.Is(err, errors.ErrSpeedOutOfRange))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// =============================================================================
// Knapsack and Coin Tests
// =============================================================================

func TestItems(t *testing.T) {
	assert.NoError(t, Items([]int{1, 3, 4, 5}, []int{1, 4, 5, 7}))
	assert.NoError(t, Items(nil, nil))

	assert.True(t, errors.Is(Items([]int{1}, []int{1, 2}), errors.ErrInvalidParams))
	assert.True(t, errors.Is(Items(make([]int, 11), make([]int, 11)), errors.ErrInvalidSize))
	assert.True(t, errors.Is(Items([]int{0}, []int{3}), errors.ErrInvalidParams))
}

func TestCoins(t *testing.T) {
	assert.NoError(t, Coins([]int{1, 5, 10, 25}))
	assert.Error(t, Coins([]int{1, 0}))
	assert.Error(t, Coins(make([]int, MaxCoins+1)))
}

// =============================================================================
// Generic Tests
// =============================================================================

func TestNonEmpty(t *testing.T) {
	assert.NoError(t, NonEmpty("procedure", "bubble"))
	assert.Error(t, NonEmpty("procedure", "   "))
}

func TestInRange(t *testing.T) {
	assert.NoError(t, InRange("n", 10, 0, 40))
	err := InRange("n", 41, 0, 40)
	require.Error(t, err)
	ue, ok := errors.AsUserError(err)
	require.True(t, ok)
	assert.Equal(t, "Must be between 0 and 40", ue.Suggestion)
	assert.Equal(t, "41", ue.Value)
}

// =============================================================================
// Sanitize Tests
// =============================================================================

func TestSanitizeText(t *testing.T) {
	assert.Equal(t, "ABCBDAB", SanitizeText("  abcbdab\n"))
	assert.Equal(t, "KITTEN", SanitizeText("kit\x00ten"))
}

func TestSanitizeID(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Bubble", "bubble"},
		{" edit_distance ", "edit-distance"},
		{"coin change", "coin-change"},
		{"a*star", "astar"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeID(tt.in))
		})
	}
}

func TestSanitizeNodeID(t *testing.T) {
	assert.Equal(t, "A", SanitizeNodeID(" a "))
}
