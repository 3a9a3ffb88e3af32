package services

import (
	"context"
	"time"

	"irisai/internal/models"
	"irisai/internal/pdf"
	"irisai/internal/repositories"
)

type ReportService struct {
	store repositories.Store
	pdf   pdf.Generator
	now   func() time.Time
}

func NewReportService(store repositories.Store, gen pdf.Generator) *ReportService {
	return &ReportService{store: store, pdf: gen, now: utcNow}
}

// PipelineSummary counts leads and accounts per status. Every known status is
// present, zero counts included.
type PipelineSummary struct {
	LeadsByStatus    map[models.LeadStatus]int    `json:"leads_by_status"`
	TotalLeads       int                          `json:"total_leads"`
	AccountsByStatus map[models.AccountStatus]int `json:"accounts_by_status"`
	TotalAccounts    int                          `json:"total_accounts"`
	GeneratedAt      time.Time                    `json:"generated_at"`
}

func (s *ReportService) Pipeline(ctx context.Context) (*PipelineSummary, error) {
	leads, err := s.store.Leads().CountByStatus(ctx)
	if err != nil {
		return nil, storeErr(err, "failed to count leads")
	}
	accounts, err := s.store.Accounts().CountByStatus(ctx)
	if err != nil {
		return nil, storeErr(err, "failed to count accounts")
	}

	sum := &PipelineSummary{
		LeadsByStatus:    make(map[models.LeadStatus]int, len(models.LeadStatuses)),
		AccountsByStatus: map[models.AccountStatus]int{models.AccountStatusActive: 0, models.AccountStatusInactive: 0},
		GeneratedAt:      s.now(),
	}
	for _, st := range models.LeadStatuses {
		sum.LeadsByStatus[st] = 0
	}
	for st, n := range leads {
		sum.LeadsByStatus[st] = n
		sum.TotalLeads += n
	}
	for st, n := range accounts {
		sum.AccountsByStatus[st] = n
		sum.TotalAccounts += n
	}
	return sum, nil
}

func (s *ReportService) PipelinePDF(ctx context.Context) ([]byte, error) {
	sum, err := s.Pipeline(ctx)
	if err != nil {
		return nil, err
	}

	data := pdf.PipelineReportData{
		GeneratedAt:   sum.GeneratedAt,
		TotalLeads:    sum.TotalLeads,
		TotalAccounts: sum.TotalAccounts,
	}
	for _, st := range models.LeadStatuses {
		data.Leads = append(data.Leads, pdf.StatusCount{Label: string(st), Count: sum.LeadsByStatus[st]})
	}
	for _, st := range []models.AccountStatus{models.AccountStatusActive, models.AccountStatusInactive} {
		data.Accounts = append(data.Accounts, pdf.StatusCount{Label: string(st), Count: sum.AccountsByStatus[st]})
	}

	out, err := s.pdf.GeneratePipelineReport(data)
	if err != nil {
		return nil, storeErr(err, "failed to render pipeline report")
	}
	return out, nil
}
