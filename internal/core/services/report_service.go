package services

import (
	"context"
	"fmt"

	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	"github.com/lorrc/repair-desk/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// ReportService builds SLA/KPI reports from the ticket store and roster.
type ReportService struct {
	ticketRepo ports.TicketRepository
	techRepo   ports.TechnicianRepository
	authzSvc   ports.AuthorizationService
	aggregator *analytics.Aggregator
}

var _ ports.ReportService = (*ReportService)(nil)

func NewReportService(
	ticketRepo ports.TicketRepository,
	techRepo ports.TechnicianRepository,
	authzSvc ports.AuthorizationService,
	aggregator *analytics.Aggregator,
) ports.ReportService {
	if aggregator == nil {
		aggregator = analytics.NewAggregator()
	}
	return &ReportService{
		ticketRepo: ticketRepo,
		techRepo:   techRepo,
		authzSvc:   authzSvc,
		aggregator: aggregator,
	}
}

// GetReport loads every ticket and the roster concurrently, then computes
// the four report views.
func (s *ReportService) GetReport(ctx context.Context, actor domain.Actor, filter domain.ReportFilter) (*domain.SLAReport, error) {
	if err := requirePermission(ctx, s.authzSvc, actor.Role, PermReportsRead); err != nil {
		return nil, err
	}

	var (
		tickets []*domain.Ticket
		roster  []domain.Technician
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tickets, err = s.ticketRepo.List(gctx, domain.TicketFilter{})
		if err != nil {
			return fmt.Errorf("list tickets: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		roster, err = s.techRepo.ListTechnicians(gctx)
		if err != nil {
			return fmt.Errorf("list technicians: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := s.aggregator.BuildReport(tickets, roster, filter)
	return &report, nil
}
