package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"recruitment_portal/internal/model"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var applicationRowColumns = []string{
	"id", "user_id", "job_id", "first_name", "last_name", "email", "phone",
	"date_of_birth", "gender", "category", "address", "city", "state", "pincode",
	"highest_qualification", "university", "graduation_year", "percentage",
	"experience", "current_position", "current_company", "skills",
	"position", "department", "resume", "photo", "achievements", "references",
	"status", "applied_date", "title", "department",
}

func applicationRow(rows *pgxmock.Rows, id, status string, applied time.Time) *pgxmock.Rows {
	return rows.AddRow(
		id, "u-1", strPtr("j-1"), "Alice", "Smith", "alice@x.com", "555",
		(*time.Time)(nil), "", "", "", "", "", "",
		"", "", "", "",
		"", "", "", "",
		"Clerk", "Revenue", "resume/a.pdf", "photo/a.png", "", "",
		status, applied, strPtr("Tax Clerk"), strPtr("Revenue"),
	)
}

func TestApplicationRepository_FindByUser(t *testing.T) {
	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	applied := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	rows := applicationRow(pgxmock.NewRows(applicationRowColumns), "a-1", model.StatusUnderReview, applied)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.user_id = $1 ORDER BY a.applied_date DESC")).
		WithArgs("u-1").
		WillReturnRows(rows)

	apps, err := repo.FindByUser(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "a-1", apps[0].ID)
	assert.Equal(t, "Tax Clerk", *apps[0].JobTitle)
	assert.Nil(t, apps[0].DateOfBirth)
}

func TestApplicationRepository_FindAll_StatusFilter(t *testing.T) {
	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.status = $1 ORDER BY a.applied_date DESC")).
		WithArgs(model.StatusShortlisted).
		WillReturnRows(pgxmock.NewRows(applicationRowColumns))

	status := model.StatusShortlisted
	apps, err := repo.FindAll(context.Background(), model.ApplicationFilters{Status: &status})
	require.NoError(t, err)
	assert.Empty(t, apps)
}

func TestApplicationRepository_UpdateStatus(t *testing.T) {
	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)
	applied := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $1 WHERE id = $2")).
		WithArgs(model.StatusSelected, "a-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE a.id = $1")).
		WithArgs("a-1").
		WillReturnRows(applicationRow(pgxmock.NewRows(applicationRowColumns), "a-1", model.StatusSelected, applied))

	app, err := repo.UpdateStatus(context.Background(), "a-1", model.StatusSelected)
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, model.StatusSelected, app.Status)
}

func TestApplicationRepository_UpdateStatus_NotFound(t *testing.T) {
	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE applications SET status = $1 WHERE id = $2")).
		WithArgs(model.StatusSelected, "missing").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	app, err := repo.UpdateStatus(context.Background(), "missing", model.StatusSelected)
	assert.NoError(t, err)
	assert.Nil(t, app)
}

func TestApplicationRepository_Stats(t *testing.T) {
	mock := newMockPool(t)
	repo := NewApplicationRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT status, COUNT(*) FROM applications GROUP BY status")).
		WillReturnRows(pgxmock.NewRows([]string{"status", "count"}).
			AddRow(model.StatusUnderReview, int64(3)).
			AddRow(model.StatusRejected, int64(1)))
	mock.ExpectQuery(regexp.QuoteMeta("GROUP BY department ORDER BY total DESC")).
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows([]string{"department", "total"}).
			AddRow("Revenue", int64(3)).
			AddRow("Health", int64(1)))

	counts, err := repo.CountByStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{model.StatusUnderReview: 3, model.StatusRejected: 1}, counts)

	departments, err := repo.TopDepartments(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []model.DepartmentCount{{Department: "Revenue", Count: 3}, {Department: "Health", Count: 1}}, departments)
}
