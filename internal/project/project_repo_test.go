package project_test

import (
	"context"
	"regexp"
	"testing"
	"time"

	"go-workforce/internal/database/databasetest"
	"go-workforce/internal/project"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func utcDay(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestRepository_FindByEndDateAfter_UsesCallerCalendarDay(t *testing.T) {
	db := databasetest.New(t)
	repo := project.NewRepository(db)
	ctx := context.Background()

	for _, p := range []*project.Project{
		{Name: "yesterday", EndDate: utcDay(2026, 10, 18)},
		{Name: "today", EndDate: utcDay(2026, 10, 19)},
		{Name: "tomorrow", EndDate: utcDay(2026, 10, 20)},
		{Name: "open"},
	} {
		require.NoError(t, repo.Create(ctx, p))
	}

	cases := map[string]time.Time{
		"utc midnight":        time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC),
		"west of utc":         time.Date(2026, 10, 19, 0, 0, 0, 0, time.FixedZone("ART", -3*60*60)),
		"late evening east":   time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("LINT", 14*60*60)),
		"early morning local": time.Date(2026, 10, 19, 1, 0, 0, 0, time.FixedZone("ART", -3*60*60)),
	}
	for name, now := range cases {
		t.Run(name, func(t *testing.T) {
			projects, err := repo.FindByEndDateAfter(ctx, now)

			require.NoError(t, err)
			require.Len(t, projects, 1)
			assert.Equal(t, "tomorrow", projects[0].Name)
		})
	}
}

func TestRepository_FindByEndDateAfter_PostgresComparesDates(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(
		`SELECT * FROM "projects" WHERE end_date > CAST($1 AS DATE) ORDER BY end_date ASC, id ASC`,
	)).
		WithArgs("2026-10-19").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(2, "tomorrow"))

	buenosAires := time.FixedZone("ART", -3*60*60)
	projects, err := project.NewRepository(db).FindByEndDateAfter(context.Background(),
		time.Date(2026, 10, 19, 0, 0, 0, 0, buenosAires))

	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, uint(2), projects[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
