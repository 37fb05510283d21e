package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"servicedesk/apperrors"
	orderRepo "servicedesk/database/repository/serviceorder"
	"servicedesk/models"
	"servicedesk/services/storage"
	"servicedesk/utils"

	"go.uber.org/zap"
)

type ReportService interface {
	Summary(ctx context.Context, actor models.User, rng models.ReportRange) (*models.SummaryReport, error)
	Technicians(ctx context.Context, actor models.User, rng models.ReportRange) ([]models.TechnicianPerformance, error)
	Export(ctx context.Context, actor models.User, rng models.ReportRange) (*models.ReportExport, error)
}

type DefaultReportService struct {
	Orders orderRepo.ServiceOrderRepository
	Store  storage.ReportStore
	Now    func() time.Time
}

func (s *DefaultReportService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *DefaultReportService) load(ctx context.Context, actor models.User, rng models.ReportRange) ([]models.ServiceOrder, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbiddenError("admin access required")
	}
	if rng.From != nil && rng.To != nil && rng.From.After(*rng.To) {
		return nil, apperrors.NewValidationError("from must not be after to",
			apperrors.ValidationDetail{Field: "from", Message: "must not be after to"})
	}
	return s.Orders.List(ctx, models.ServiceOrderFilter{
		EstablishmentID: rng.EstablishmentID,
		CreatedFrom:     rng.From,
		CreatedTo:       rng.To,
	})
}

// Summary counts orders by status, priority and establishment.
func (s *DefaultReportService) Summary(ctx context.Context, actor models.User, rng models.ReportRange) (*models.SummaryReport, error) {
	orders, err := s.load(ctx, actor, rng)
	if err != nil {
		return nil, err
	}

	rep := &models.SummaryReport{
		From:            rng.From,
		To:              rng.To,
		Total:           len(orders),
		ByStatus:        make(map[models.OrderStatus]int),
		ByPriority:      make(map[models.Priority]int),
		ByEstablishment: []models.EstablishmentCount{},
		GeneratedAt:     s.now(),
	}
	perEst := make(map[string]*models.EstablishmentCount)
	var ratings, resolution mean

	for _, o := range orders {
		rep.ByStatus[o.Status.Normalize()]++
		rep.ByPriority[o.Priority]++

		ec, ok := perEst[o.EstablishmentID]
		if !ok {
			ec = &models.EstablishmentCount{EstablishmentID: o.EstablishmentID, EstablishmentName: o.EstablishmentName}
			perEst[o.EstablishmentID] = ec
		}
		ec.Count++

		if o.UserRating != nil {
			ratings.add(float64(*o.UserRating))
		}
		if h, ok := resolutionHours(o); ok {
			resolution.add(h)
		}
	}

	for _, ec := range perEst {
		rep.ByEstablishment = append(rep.ByEstablishment, *ec)
	}
	sort.Slice(rep.ByEstablishment, func(i, j int) bool {
		a, b := rep.ByEstablishment[i], rep.ByEstablishment[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		return a.EstablishmentName < b.EstablishmentName
	})

	rep.AverageRating = ratings.value()
	rep.RatedCount = ratings.n
	rep.AverageResolutionHours = resolution.value()
	return rep, nil
}

// Technicians reports per-technician throughput, best performers first.
func (s *DefaultReportService) Technicians(ctx context.Context, actor models.User, rng models.ReportRange) ([]models.TechnicianPerformance, error) {
	orders, err := s.load(ctx, actor, rng)
	if err != nil {
		return nil, err
	}

	type acc struct {
		perf       models.TechnicianPerformance
		ratings    mean
		resolution mean
	}
	byTech := make(map[string]*acc)
	for _, o := range orders {
		if o.TechnicianID == "" {
			continue
		}
		a, ok := byTech[o.TechnicianID]
		if !ok {
			a = &acc{perf: models.TechnicianPerformance{TechnicianID: o.TechnicianID, TechnicianName: o.TechnicianName}}
			byTech[o.TechnicianID] = a
		}
		a.perf.Assigned++
		switch o.Status.Normalize() {
		case models.StatusCompleted, models.StatusConfirmed:
			a.perf.Completed++
		case models.StatusCancelled:
			a.perf.Cancelled++
		}
		if o.UserRating != nil {
			a.ratings.add(float64(*o.UserRating))
		}
		if h, ok := resolutionHours(o); ok {
			a.resolution.add(h)
		}
	}

	out := make([]models.TechnicianPerformance, 0, len(byTech))
	for _, a := range byTech {
		a.perf.AverageRating = a.ratings.value()
		a.perf.AverageResolutionHours = a.resolution.value()
		out = append(out, a.perf)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Completed != out[j].Completed {
			return out[i].Completed > out[j].Completed
		}
		return out[i].TechnicianName < out[j].TechnicianName
	})
	return out, nil
}

var exportHeader = []string{
	"orderNumber", "title", "status", "priority", "establishment", "sector",
	"requester", "technician", "createdAt", "completedAt", "rating", "reopenCount",
}

// Export writes the orders in range as CSV to the report store.
func (s *DefaultReportService) Export(ctx context.Context, actor models.User, rng models.ReportRange) (*models.ReportExport, error) {
	orders, err := s.load(ctx, actor, rng)
	if err != nil {
		return nil, err
	}
	if s.Store == nil {
		return nil, apperrors.NewUpstreamError("report storage is not configured", nil)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for _, o := range orders {
		completed, rating := "", ""
		if o.CompletedAt != nil {
			completed = o.CompletedAt.UTC().Format(time.RFC3339)
		}
		if o.UserRating != nil {
			rating = strconv.Itoa(*o.UserRating)
		}
		row := []string{
			o.OrderNumber, o.Title, string(o.Status.Normalize()), string(o.Priority),
			o.EstablishmentName, o.SectorName, o.UserName, o.TechnicianName,
			o.CreatedAt.UTC().Format(time.RFC3339), completed, rating, strconv.Itoa(o.ReopenCount),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}

	now := s.now()
	objectPath := fmt.Sprintf("reports/service-orders-%s.csv", now.Format("20060102-150405"))
	url, err := s.Store.Put(ctx, objectPath, "text/csv", buf.Bytes())
	if err != nil {
		utils.GetLogger().Error("Report export failed", zap.String("objectPath", objectPath), zap.Error(err))
		return nil, apperrors.NewUpstreamError("failed to store report", err)
	}
	utils.GetLogger().Info("Report exported",
		zap.String("objectPath", objectPath),
		zap.Int("rows", len(orders)),
		zap.String("by", actor.UID))
	return &models.ReportExport{ObjectPath: objectPath, URL: url, Rows: len(orders)}, nil
}

// resolutionHours is the time from creation to completion.
func resolutionHours(o models.ServiceOrder) (float64, bool) {
	if o.CompletedAt == nil || o.CompletedAt.Before(o.CreatedAt) {
		return 0, false
	}
	return o.CompletedAt.Sub(o.CreatedAt).Hours(), true
}

type mean struct {
	sum float64
	n   int
}

func (m *mean) add(v float64) {
	m.sum += v
	m.n++
}

func (m mean) value() float64 {
	if m.n == 0 {
		return 0
	}
	return math.Round(m.sum/float64(m.n)*100) / 100
}
