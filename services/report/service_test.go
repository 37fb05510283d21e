package report

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"servicedesk/apperrors"
	orderRepo "servicedesk/database/repository/serviceorder"
	"servicedesk/models"
	"servicedesk/services/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	admin = models.User{UID: "A1", UserType: models.UserTypeAdmin}
	base  = time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
)

func ptrTime(t time.Time) *time.Time { return &t }
func ptrInt(i int) *int             { return &i }

func seed(t *testing.T) *orderRepo.MemoryServiceOrderRepo {
	t.Helper()
	ctx := context.Background()
	repo := orderRepo.NewMemoryServiceOrderRepo()
	orders := []models.ServiceOrder{
		{OrderNumber: "OS-1", Title: "AC", Status: models.StatusConfirmed, Priority: models.PriorityHigh,
			EstablishmentID: "E1", EstablishmentName: "Main", TechnicianID: "T1", TechnicianName: "Tom",
			CreatedAt: base, CompletedAt: ptrTime(base.Add(4 * time.Hour)), UserRating: ptrInt(5)},
		{OrderNumber: "OS-2", Title: "Leak", Status: models.StatusCompleted, Priority: models.PriorityLow,
			EstablishmentID: "E1", EstablishmentName: "Main", TechnicianID: "T1", TechnicianName: "Tom",
			CreatedAt: base.Add(time.Hour), CompletedAt: ptrTime(base.Add(3 * time.Hour)), UserRating: ptrInt(4)},
		{OrderNumber: "OS-3", Title: "Door", Status: models.StatusCancelled, Priority: models.PriorityLow,
			EstablishmentID: "E2", EstablishmentName: "Annex", TechnicianID: "T2", TechnicianName: "Tia",
			CreatedAt: base.Add(2 * time.Hour)},
		{OrderNumber: "OS-4", Title: "Lamp", Status: "pending", Priority: models.PriorityMedium,
			EstablishmentID: "E2", EstablishmentName: "Annex", CreatedAt: base.Add(48 * time.Hour)},
	}
	for i := range orders {
		require.NoError(t, repo.Create(ctx, &orders[i]))
	}
	return repo
}

func TestSummary(t *testing.T) {
	s := &DefaultReportService{Orders: seed(t)}

	rep, err := s.Summary(context.Background(), admin, models.ReportRange{})
	require.NoError(t, err)

	assert.Equal(t, 4, rep.Total)
	assert.Equal(t, 1, rep.ByStatus[models.StatusOpen], "legacy pending counts as open")
	assert.Equal(t, 1, rep.ByStatus[models.StatusConfirmed])
	assert.Equal(t, 2, rep.ByPriority[models.PriorityLow])
	assert.Equal(t, 4.5, rep.AverageRating)
	assert.Equal(t, 2, rep.RatedCount)
	assert.Equal(t, 3.0, rep.AverageResolutionHours)
	require.Len(t, rep.ByEstablishment, 2)
	assert.Equal(t, "Annex", rep.ByEstablishment[0].EstablishmentName, "ties break by name")
}

func TestSummary_RangeAndAccess(t *testing.T) {
	s := &DefaultReportService{Orders: seed(t)}
	ctx := context.Background()

	rep, err := s.Summary(ctx, admin, models.ReportRange{From: ptrTime(base), To: ptrTime(base.Add(24 * time.Hour)), EstablishmentID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Total)

	_, err = s.Summary(ctx, admin, models.ReportRange{From: ptrTime(base.Add(time.Hour)), To: ptrTime(base)})
	assert.Equal(t, 400, apperrors.HTTPStatus(err))

	_, err = s.Summary(ctx, models.User{UID: "T1", UserType: models.UserTypeTechnician}, models.ReportRange{})
	assert.Equal(t, 403, apperrors.HTTPStatus(err))
}

func TestTechnicians(t *testing.T) {
	s := &DefaultReportService{Orders: seed(t)}

	perf, err := s.Technicians(context.Background(), admin, models.ReportRange{})
	require.NoError(t, err)
	require.Len(t, perf, 2)

	assert.Equal(t, "T1", perf[0].TechnicianID)
	assert.Equal(t, 2, perf[0].Assigned)
	assert.Equal(t, 2, perf[0].Completed)
	assert.Equal(t, 4.5, perf[0].AverageRating)

	assert.Equal(t, "T2", perf[1].TechnicianID)
	assert.Equal(t, 1, perf[1].Cancelled)
	assert.Zero(t, perf[1].AverageRating)
}

func TestExport(t *testing.T) {
	store := storage.NewMemoryStore()
	s := &DefaultReportService{
		Orders: seed(t),
		Store:  store,
		Now:    func() time.Time { return base.Add(72 * time.Hour) },
	}

	exp, err := s.Export(context.Background(), admin, models.ReportRange{EstablishmentID: "E1"})
	require.NoError(t, err)
	assert.Equal(t, "reports/service-orders-20260504-080000.csv", exp.ObjectPath)
	assert.Equal(t, 2, exp.Rows)
	assert.Equal(t, "memory://"+exp.ObjectPath, exp.URL)

	data, ok := store.Get(exp.ObjectPath)
	require.True(t, ok)
	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, exportHeader, records[0])
	assert.Contains(t, []string{records[1][0], records[2][0]}, "OS-1")
}
