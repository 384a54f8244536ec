package indicators

import (
	"testing"

	talib "github.com/markcheno/go-talib"
)

func TestMovingAverage_Series(t *testing.T) {
	closes := []float64{100.0, 102.0, 101.0, 103.0, 104.0}

	tests := []struct {
		name     string
		config   MovingAverageConfig
		expected []float64 // NaN-free expectations; skipped positions are checked for nil
		warmup   int
	}{
		{
			name: "SMA period 3",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            SimpleMovingAverage,
			},
			expected: []float64{0, 0, 101.0, 102.0, 102.666667},
			warmup:   2,
		},
		{
			name: "EMA span 3 seeded by first close",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            ExponentialMovingAverage,
			},
			// alpha = 0.5
			expected: []float64{100.0, 101.0, 101.0, 102.0, 103.0},
			warmup:   0,
		},
		{
			name: "SMA longer than series",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 6},
				Type:            SimpleMovingAverage,
			},
			expected: []float64{0, 0, 0, 0, 0},
			warmup:   5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := NewMovingAverage(tt.config)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			series := ma.Series(closes)
			if len(series) != len(closes) {
				t.Fatalf("Expected %d values, got %d", len(closes), len(series))
			}

			for i, v := range series {
				if i < tt.warmup {
					if v != nil {
						t.Errorf("Expected nil at %d during warm-up, got %f", i, *v)
					}
					continue
				}
				if v == nil {
					t.Errorf("Expected value at %d, got nil", i)
					continue
				}
				// Allow for small floating point differences
				if *v-tt.expected[i] > 0.0001 || *v-tt.expected[i] < -0.0001 {
					t.Errorf("At %d expected %f, got %f", i, tt.expected[i], *v)
				}
			}
		})
	}
}

func TestNewMovingAverage_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config MovingAverageConfig
	}{
		{
			name: "Zero period",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 0},
				Type:            SimpleMovingAverage,
			},
		},
		{
			name: "Invalid MA type",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 3},
				Type:            "INVALID",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewMovingAverage(tt.config); err == nil {
				t.Error("Expected error but got none")
			}
		})
	}
}

func TestMovingAverage_Name(t *testing.T) {
	tests := []struct {
		name     string
		config   MovingAverageConfig
		expected string
	}{
		{
			name: "SMA name",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 5},
				Type:            SimpleMovingAverage,
			},
			expected: "SMA5",
		},
		{
			name: "EMA name",
			config: MovingAverageConfig{
				IndicatorConfig: IndicatorConfig{Period: 12},
				Type:            ExponentialMovingAverage,
			},
			expected: "EMA12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ma, err := NewMovingAverage(tt.config)
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if name := ma.Name(); name != tt.expected {
				t.Errorf("Expected name %s, got %s", tt.expected, name)
			}
		})
	}
}

func TestSMA_MatchesTalib(t *testing.T) {
	closes := []float64{
		10.2, 10.5, 10.1, 9.8, 9.9, 10.4, 10.9, 11.3, 11.0, 10.7,
		10.8, 11.5, 12.1, 11.9, 12.4, 12.0, 11.6, 11.8, 12.3, 12.9,
		13.1, 12.7, 12.5, 12.8, 13.4,
	}

	for _, period := range []int{5, 10, 20} {
		ours := SMA(closes, period)
		ref := talib.Sma(closes, period)
		for i := period - 1; i < len(closes); i++ {
			if ours[i] == nil {
				t.Fatalf("SMA%d nil at %d", period, i)
			}
			if diff := *ours[i] - ref[i]; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("SMA%d at %d: got %f, talib %f", period, i, *ours[i], ref[i])
			}
		}
	}
}

func TestEMA_RecursiveForm(t *testing.T) {
	values := []float64{1, 2, 3}
	got := EMA(values, 3)
	want := []float64{1, 1.5, 2.25}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("EMA at %d: expected %f, got %f", i, want[i], got[i])
		}
	}

	if len(EMA(nil, 12)) != 0 {
		t.Error("Expected empty EMA for empty input")
	}
}
