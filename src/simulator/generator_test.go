package simulator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"riskengine/src/database"
	"riskengine/src/model"
	"riskengine/src/repository"
)

func newTestGenerator(t *testing.T) (*Generator, *repository.ExposureRepository, *repository.RunRepository) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err, "open in-memory sqlite")
	require.NoError(t, database.Migrate(db), "migrate")

	runs := repository.NewRunRepository().WithDB(db)
	exposures := repository.NewExposureRepository().WithDB(db)
	return NewGenerator(runs, exposures), exposures, runs
}

func TestGenerateRunCompletesWithPortfolio(t *testing.T) {
	gen, exposures, runs := newTestGenerator(t)
	ctx := context.Background()

	cfg := Config{Exposures: 50, Seed: 42, Entity: "bank_eu", Currency: "EUR"}
	run, err := gen.GenerateRun(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, model.RunStatusCompleted, run.Status)
	assert.Equal(t, int64(50), run.ExposureCount)
	assert.Len(t, run.ParamsHash, 64)
	assert.True(t, run.TotalNotional.IsPositive())

	count, err := exposures.CountByRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(50), count)

	stored, err := runs.FindByID(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, model.RunStatusCompleted, stored.Status)
}

func TestGenerateRunIsDeterministicPerSeed(t *testing.T) {
	gen, exposures, _ := newTestGenerator(t)
	ctx := context.Background()

	cfg := Config{Exposures: 200, Seed: 7, Entity: "bank_eu", Currency: "EUR"}
	first, err := gen.GenerateRun(ctx, cfg)
	require.NoError(t, err)
	second, err := gen.GenerateRun(ctx, cfg)
	require.NoError(t, err)

	assert.Equal(t, first.ParamsHash, second.ParamsHash, "same config must hash identically")

	firstRows, err := exposures.LoadByRun(ctx, first.ID)
	require.NoError(t, err)
	secondRows, err := exposures.LoadByRun(ctx, second.ID)
	require.NoError(t, err)
	require.Len(t, secondRows, len(firstRows))

	for i := range firstRows {
		a, b := firstRows[i], secondRows[i]
		assert.Equal(t, a.ProductType, b.ProductType, "row %d", i)
		assert.Equal(t, a.ExposureClass, b.ExposureClass, "row %d", i)
		assert.Equal(t, a.CounterpartyID, b.CounterpartyID, "row %d", i)
		assert.Equal(t, a.Notional, b.Notional, "row %d", i)
		assert.Equal(t, a.EAD, b.EAD, "row %d", i)
		assert.Equal(t, a.PDOrigination, b.PDOrigination, "row %d", i)
		assert.Equal(t, a.PDCurrent, b.PDCurrent, "row %d", i)
		assert.Equal(t, a.LGD, b.LGD, "row %d", i)
		assert.Equal(t, a.DaysPastDue, b.DaysPastDue, "row %d", i)
		assert.Equal(t, a.Forbearance, b.Forbearance, "row %d", i)
		assert.True(t, a.BookingDate.Equal(b.BookingDate), "row %d booking date", i)
	}
}

func TestGenerateRunDifferentSeedsDiffer(t *testing.T) {
	gen, exposures, _ := newTestGenerator(t)
	ctx := context.Background()

	first, err := gen.GenerateRun(ctx, Config{Exposures: 100, Seed: 1, Entity: "bank_eu", Currency: "EUR"})
	require.NoError(t, err)
	second, err := gen.GenerateRun(ctx, Config{Exposures: 100, Seed: 2, Entity: "bank_eu", Currency: "EUR"})
	require.NoError(t, err)

	assert.NotEqual(t, first.ParamsHash, second.ParamsHash)

	firstRows, err := exposures.LoadByRun(ctx, first.ID)
	require.NoError(t, err)
	secondRows, err := exposures.LoadByRun(ctx, second.ID)
	require.NoError(t, err)

	same := true
	for i := range firstRows {
		if firstRows[i].Notional != secondRows[i].Notional {
			same = false
			break
		}
	}
	assert.False(t, same, "different seeds must draw different portfolios")
}

func TestGenerateRunOnlyOffBalanceSheetCarriesCCF(t *testing.T) {
	gen, exposures, _ := newTestGenerator(t)
	ctx := context.Background()

	run, err := gen.GenerateRun(ctx, Config{Exposures: 500, Seed: 42, Entity: "bank_eu", Currency: "EUR"})
	require.NoError(t, err)

	rows, err := exposures.LoadByRun(ctx, run.ID)
	require.NoError(t, err)

	for i, exp := range rows {
		if exp.ProductType == model.ProductOffBalanceSheet {
			assert.Greater(t, exp.CCF, 0.0, "row %d", i)
		} else {
			assert.Zero(t, exp.CCF, "row %d", i)
		}
		assert.GreaterOrEqual(t, exp.PDCurrent, exp.PDOrigination, "row %d", i)
		assert.GreaterOrEqual(t, exp.DaysPastDue, 0, "row %d", i)
	}
}

func TestGenerateRunRejectsNonPositiveCount(t *testing.T) {
	gen, _, _ := newTestGenerator(t)

	_, err := gen.GenerateRun(context.Background(), Config{Exposures: 0, Seed: 1, Entity: "bank_eu", Currency: "EUR"})
	assert.Error(t, err)
}
