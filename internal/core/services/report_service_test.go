package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lorrc/repair-desk/internal/core/analytics"
	"github.com/lorrc/repair-desk/internal/core/domain"
	apperrors "github.com/lorrc/repair-desk/internal/core/errors"
	"github.com/lorrc/repair-desk/internal/core/mocks"
	"github.com/lorrc/repair-desk/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestReportService_GetReport(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	done := created.Add(48 * time.Hour)

	t.Run("builds report from tickets and roster", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository()
		techs := mocks.NewMockTechnicianRepository()
		svc := services.NewReportService(tickets, techs, services.NewAuthorizationService(), analytics.NewAggregator())

		tickets.On("List", mock.Anything, domain.TicketFilter{}).Return([]*domain.Ticket{
			{ID: "1", CreatedAt: created, Status: domain.StatusCompleted, UpdatedAt: &done, AssignedTo: strPtr("tech-1")},
			{ID: "2", CreatedAt: created, Status: domain.StatusPending},
		}, nil)
		techs.On("ListTechnicians", mock.Anything).Return(roster, nil)

		report, err := svc.GetReport(ctx, admin, domain.ReportFilter{})

		require.NoError(t, err)
		assert.Equal(t, []domain.MonthlyStat{{Label: "2024-01", Count: 2, AverageResolutionHours: 48}}, report.Monthly)
		require.Len(t, report.Technicians, 2)
		assert.Equal(t, "tech-1", report.Technicians[0].TechnicianID)
		assert.Equal(t, 2, report.TicketCount)
	})

	t.Run("roster failure fails the report", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository()
		techs := mocks.NewMockTechnicianRepository()
		svc := services.NewReportService(tickets, techs, services.NewAuthorizationService(), nil)
		boom := errors.New("roster unavailable")

		tickets.On("List", mock.Anything, domain.TicketFilter{}).Return([]*domain.Ticket{}, nil)
		techs.On("ListTechnicians", mock.Anything).Return(nil, boom)

		report, err := svc.GetReport(ctx, admin, domain.ReportFilter{})

		assert.Nil(t, report)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("requires reports permission", func(t *testing.T) {
		tickets := mocks.NewMockTicketRepository()
		techs := mocks.NewMockTechnicianRepository()
		svc := services.NewReportService(tickets, techs, services.NewAuthorizationService(), nil)

		_, err := svc.GetReport(ctx, technician, domain.ReportFilter{})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		tickets.AssertNotCalled(t, "List")
	})
}
