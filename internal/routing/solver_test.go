package routing

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"route-optimizer/internal/distance"
	"route-optimizer/internal/models"
	"route-optimizer/internal/testutil"
)

func TestSolve_EmptyInput(t *testing.T) {
	route, err := NewSolver().Solve(nil)

	assert.Nil(t, route)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrDegenerate)
}

func TestSolve_SingleStop(t *testing.T) {
	route, err := NewSolver().Solve([]models.Coordinate{testutil.Boston})
	require.NoError(t, err)

	assert.Equal(t, []models.Coordinate{testutil.Boston}, route.Path)
	assert.Equal(t, 0.0, route.TotalKm)
	assert.Empty(t, route.Legs)
}

func TestSolve_TwoStops(t *testing.T) {
	a, b := testutil.London, testutil.Paris

	route, err := NewSolver().Solve([]models.Coordinate{a, b})
	require.NoError(t, err)

	assert.Equal(t, []models.Coordinate{a, b}, route.Path)
	assert.Equal(t, distance.Haversine(a, b), route.TotalKm)
	require.Len(t, route.Legs, 1)
	assert.Equal(t, a, route.Legs[0].From)
	assert.Equal(t, b, route.Legs[0].To)
	assert.Equal(t, route.TotalKm, route.Legs[0].CumulativeKm)
}

func TestSolve_EastCoastRegression(t *testing.T) {
	// Starting in New York, Philadelphia is much closer than Boston, and
	// the open path never pays for the trip back.
	coords := []models.Coordinate{testutil.NewYork, testutil.Boston, testutil.Philadelphia}

	for _, strategy := range []Strategy{StrategyDense, StrategySparse} {
		t.Run(string(strategy), func(t *testing.T) {
			route, err := NewSolver(WithStrategy(strategy)).Solve(coords)
			require.NoError(t, err)

			assert.Equal(t, []string{"New York", "Philadelphia", "Boston"}, route.StopNames())
			assert.InDelta(t, testutil.EastCoastTripKm, route.TotalKm, 1e-6)
			assert.InDelta(t, testutil.BruteForceBest(coords, distance.Haversine), route.TotalKm, 1e-9)
		})
	}
}

func TestSolve_StartIsAlwaysFirstInput(t *testing.T) {
	coords := []models.Coordinate{testutil.Boston, testutil.NewYork, testutil.Philadelphia}

	route, err := NewSolver().Solve(coords)
	require.NoError(t, err)

	assert.Equal(t, []string{"Boston", "New York", "Philadelphia"}, route.StopNames())
}

func TestSolve_TooManyStops(t *testing.T) {
	coords := testutil.RandomCoordinates(3, 6)

	route, err := NewSolver(WithMaxStops(5)).Solve(coords)

	assert.Nil(t, route)
	require.ErrorIs(t, err, ErrDegenerate)
	var tooMany *ErrTooManyStops
	require.True(t, errors.As(err, &tooMany))
	assert.Equal(t, 6, tooMany.Count)
	assert.Equal(t, 5, tooMany.Limit)
	assert.Len(t, coords, 6, "input must not be truncated")
}

func TestSolve_DefaultLimit(t *testing.T) {
	solver := NewSolver()
	assert.Equal(t, DefaultMaxStops, solver.MaxStops())

	_, err := solver.Solve(testutil.RandomCoordinates(9, DefaultMaxStops+1))
	assert.ErrorIs(t, err, ErrDegenerate)
}

func TestWithMaxStops_Clamps(t *testing.T) {
	assert.Equal(t, 1, NewSolver(WithMaxStops(0)).MaxStops())
	assert.Equal(t, MaxSupportedStops, NewSolver(WithMaxStops(64)).MaxStops())
	assert.Equal(t, 12, NewSolver(WithMaxStops(12)).MaxStops())
}

func TestSolve_Idempotent(t *testing.T) {
	coords := testutil.RegionalCoordinates(11, 9, 40, -74)
	solver := NewSolver()

	first, err := solver.Solve(coords)
	require.NoError(t, err)
	second, err := solver.Solve(coords)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("second solve differs (-first +second):\n%s", diff)
	}
}

func TestSolve_MatchesBruteForce(t *testing.T) {
	for n := 2; n <= 8; n++ {
		for seed := int64(1); seed <= 5; seed++ {
			coords := testutil.RandomCoordinates(seed*100+int64(n), n)
			want := testutil.BruteForceBest(coords, distance.Haversine)

			for _, strategy := range []Strategy{StrategyDense, StrategySparse} {
				t.Run(fmt.Sprintf("n=%d/seed=%d/%s", n, seed, strategy), func(t *testing.T) {
					route, err := NewSolver(WithStrategy(strategy)).Solve(coords)
					require.NoError(t, err)

					assert.InDelta(t, want, route.TotalKm, 1e-9)
					assert.Len(t, route.Path, n)
					assert.Equal(t, coords[0], route.Path[0])
				})
			}
		}
	}
}

func TestSolve_PathIsPermutation(t *testing.T) {
	coords := testutil.RegionalCoordinates(5, 10, 48.85, 2.35)

	route, err := NewSolver().Solve(coords)
	require.NoError(t, err)

	seen := make(map[string]int)
	for _, c := range route.Path {
		seen[c.Name]++
	}
	assert.Len(t, seen, len(coords))
	for name, count := range seen {
		assert.Equal(t, 1, count, name)
	}
}

func TestSolve_DenseAndSparseAgree(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		coords := testutil.RegionalCoordinates(seed, 10, 35.68, 139.69)

		dense, err := NewSolver(WithStrategy(StrategyDense)).Solve(coords)
		require.NoError(t, err)
		sparse, err := NewSolver(WithStrategy(StrategySparse)).Solve(coords)
		require.NoError(t, err)

		if diff := cmp.Diff(dense, sparse); diff != "" {
			t.Errorf("seed %d: strategies disagree (-dense +sparse):\n%s", seed, diff)
		}
	}
}

func TestSolve_TiesGoToLowestIndex(t *testing.T) {
	// From the origin both neighbours are equally far and both orders cost
	// the same, so index 1 must be visited first.
	origin := models.Coordinate{Name: "origin", Lat: 0, Lng: 0}
	up := models.Coordinate{Name: "up", Lat: 1, Lng: 0}
	down := models.Coordinate{Name: "down", Lat: -1, Lng: 0}

	for _, strategy := range []Strategy{StrategyDense, StrategySparse} {
		solver := NewSolver(WithMetric(testutil.PlanarMetric), WithStrategy(strategy))

		route, err := solver.Solve([]models.Coordinate{origin, up, down})
		require.NoError(t, err)
		assert.Equal(t, []string{"origin", "up", "down"}, route.StopNames(), strategy)

		route, err = solver.Solve([]models.Coordinate{origin, down, up})
		require.NoError(t, err)
		assert.Equal(t, []string{"origin", "down", "up"}, route.StopNames(), strategy)
	}
}

func TestSolve_DuplicateCoordinates(t *testing.T) {
	coords := []models.Coordinate{
		testutil.NewYork,
		testutil.Boston,
		{Name: "New York", Lat: testutil.NewYork.Lat, Lng: testutil.NewYork.Lng},
	}

	route, err := NewSolver().Solve(coords)
	require.NoError(t, err)

	// The duplicate costs nothing, so it is visited before Boston.
	assert.Equal(t, []string{"New York", "New York", "Boston"}, route.StopNames())
	assert.InDelta(t, distance.Haversine(testutil.NewYork, testutil.Boston), route.TotalKm, 1e-9)
}

func TestSolve_LegsSumToTotal(t *testing.T) {
	coords := testutil.RegionalCoordinates(21, 7, 51.5, -0.12)

	route, err := NewSolver().Solve(coords)
	require.NoError(t, err)
	require.Len(t, route.Legs, len(coords)-1)

	sum := 0.0
	for i, leg := range route.Legs {
		assert.Equal(t, i, leg.Order)
		assert.Equal(t, route.Path[i], leg.From)
		assert.Equal(t, route.Path[i+1], leg.To)
		sum += leg.DistanceKm
		assert.Equal(t, sum, leg.CumulativeKm)
	}
	assert.Equal(t, sum, route.TotalKm)
}

func TestSolve_ConcurrentCallers(t *testing.T) {
	solver := NewSolver()
	inputs := make([][]models.Coordinate, 8)
	want := make([]*models.OptimizedRoute, len(inputs))
	for i := range inputs {
		inputs[i] = testutil.RegionalCoordinates(int64(i+1), 8, 52.52, 13.40)
		r, err := solver.Solve(inputs[i])
		require.NoError(t, err)
		want[i] = r
	}

	got := make([]*models.OptimizedRoute, len(inputs))
	var wg sync.WaitGroup
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := solver.Solve(inputs[i])
			if err == nil {
				got[i] = r
			}
		}(i)
	}
	wg.Wait()

	for i := range inputs {
		if diff := cmp.Diff(want[i], got[i]); diff != "" {
			t.Errorf("input %d differs under concurrency:\n%s", i, diff)
		}
	}
}

func TestSolve_DebugInstrumentation(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	solver := NewSolver(WithLogger(zap.New(core)))

	_, err := solver.Solve([]models.Coordinate{testutil.NewYork, testutil.Boston, testutil.Philadelphia})
	require.NoError(t, err)

	assert.Equal(t, 1, logs.FilterMessage("[ROUTING] Solve start").Len())
	assert.Positive(t, logs.FilterMessage("[ROUTING] Best next updated").Len())

	reconstructed := logs.FilterMessage("[ROUTING] Path reconstructed").All()
	require.Len(t, reconstructed, 1)
	assert.Equal(t, []interface{}{"New York", "Philadelphia", "Boston"}, reconstructed[0].ContextMap()["stops"])
}

func TestSolve_InfoLoggerSkipsTracing(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	solver := NewSolver(WithLogger(zap.New(core)))

	_, err := solver.Solve(testutil.RegionalCoordinates(2, 6, 0, 0))
	require.NoError(t, err)

	assert.Equal(t, 0, logs.FilterMessage("[ROUTING] Best next updated").Len())
	assert.Equal(t, 1, logs.FilterMessage("[ROUTING] Route optimized").Len())
}

func TestReconstruct_BrokenChain(t *testing.T) {
	_, err := reconstruct(3, func(pos int, mask uint32) int { return noNext })
	assert.Error(t, err)

	_, err = reconstruct(3, func(pos int, mask uint32) int { return 0 })
	assert.Error(t, err, "revisiting the start must be rejected")
}

func BenchmarkSolve(b *testing.B) {
	for _, n := range []int{8, 12, 16} {
		coords := testutil.RegionalCoordinates(1, n, 40, -74)
		for _, strategy := range []Strategy{StrategyDense, StrategySparse} {
			solver := NewSolver(WithStrategy(strategy))
			b.Run(fmt.Sprintf("n=%d/%s", n, strategy), func(b *testing.B) {
				for i := 0; i < b.N; i++ {
					if _, err := solver.Solve(coords); err != nil {
						b.Fatal(err)
					}
				}
			})
		}
	}
}
