package progressintegrationtests

import (
	"context"
	"testing"
	"time"

	progressservice "github.com/Black-And-White-Club/progress-engine/app/modules/progress/application"
	progressdomain "github.com/Black-And-White-Club/progress-engine/app/modules/progress/domain"
	progresscache "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/cache"
	progressdb "github.com/Black-And-White-Club/progress-engine/app/modules/progress/infrastructure/repositories"
	progressmetrics "github.com/Black-And-White-Club/progress-engine/app/observability/metrics/progress"
	"github.com/Black-And-White-Club/progress-engine/integration_tests/testutils"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var baseTime = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

type testDeps struct {
	ctx     context.Context
	service *progressservice.ProgressService
	gen     *testutils.TestDataGenerator
}

// setupTest clears the database and builds a service backed by Postgres for both
// the repository and the cache.
func setupTest(t *testing.T) testDeps {
	t.Helper()
	require.NoError(t, testEnv.Reset())

	repo := progressdb.NewRepository(testEnv.DB)
	store := progresscache.NewPostgresStore(repo, testEnv.DB, nil)
	svc := progressservice.NewProgressService(
		repo,
		store,
		testEnv.Logger,
		progressmetrics.NewNoop(),
		noop.NewTracerProvider().Tracer("integration"),
		testEnv.DB,
		progressservice.Options{},
	)
	return testDeps{
		ctx:     testEnv.Ctx,
		service: svc,
		gen:     testutils.NewTestDataGenerator(42),
	}
}

func seedGame(t *testing.T, deps testDeps, spec testutils.GameSpec) testutils.GameFixture {
	t.Helper()
	fx := deps.gen.GenerateGame(spec)
	require.NoError(t, testutils.SeedGame(deps.ctx, testEnv.DB, fx))
	return fx
}

func seedUsers(t *testing.T, deps testDeps, count int) []progressdb.User {
	t.Helper()
	users := deps.gen.GenerateUsers(count)
	require.NoError(t, testutils.SeedUsers(deps.ctx, testEnv.DB, users...))
	return users
}

func seedUnlocks(t *testing.T, deps testDeps, fx testutils.GameFixture, userID int64, unlocks []progressdb.PlayerAchievement) {
	t.Helper()
	require.NoError(t, testutils.SeedUnlocks(deps.ctx, testEnv.DB, fx, userID, unlocks))
}

func findPlayer(t *testing.T, deps testDeps, username string) progressdomain.Player {
	t.Helper()
	player, err := deps.service.FindPlayer(deps.ctx, username)
	require.NoError(t, err)
	return player
}

func cacheRows(t *testing.T, deps testDeps) int {
	t.Helper()
	n, err := testEnv.DB.NewSelect().Model((*progressdb.CacheEntry)(nil)).Count(deps.ctx)
	require.NoError(t, err)
	return n
}
