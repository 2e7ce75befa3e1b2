package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/platform/pdfgen"
)

// TestDetail is the catalog information needed to print receipts and
// lab reports.
type TestDetail struct {
	Name        string
	Price       float64
	Unit        string
	NormalRange string
}

// CatalogReader resolves test names against the lab test catalog. Names with
// no catalog entry are simply absent from the result.
type CatalogReader interface {
	DetailsByNames(ctx context.Context, names []string) (map[string]TestDetail, error)
}

// Renderer renders documents to PDF bytes.
type Renderer interface {
	Render(doc pdfgen.Document) ([]byte, error)
}

type Service struct {
	repo     Repository
	catalog  CatalogReader
	renderer Renderer
	logger   zerolog.Logger
}

func NewService(repo Repository, catalog CatalogReader, renderer Renderer, logger zerolog.Logger) *Service {
	return &Service{
		repo:     repo,
		catalog:  catalog,
		renderer: renderer,
		logger:   logger.With().Str("component", "patient_service").Logger(),
	}
}

// Register inserts a new patient. Input is assumed validated by the caller;
// the registration date defaults to now.
func (s *Service) Register(ctx context.Context, p *Patient) error {
	if p.RegDate.IsZero() {
		p.RegDate = time.Now()
	}
	p.Active = true
	if err := s.repo.Create(ctx, p); err != nil {
		return fmt.Errorf("register patient: %w", err)
	}
	s.logger.Info().Int("mr_no", p.MrNo).Msg("patient registered")
	return nil
}

func (s *Service) Get(ctx context.Context, mrNo int) (*Patient, error) {
	return s.repo.GetByMrNo(ctx, mrNo)
}

func (s *Service) List(ctx context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, search, limit, offset)
}

func (s *Service) Update(ctx context.Context, p *Patient) error {
	return s.repo.Update(ctx, p)
}

func (s *Service) Delete(ctx context.Context, mrNo int) error {
	return s.repo.Delete(ctx, mrNo)
}

func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}

// Receipt renders the payment receipt for a patient's registration.
func (s *Service) Receipt(ctx context.Context, mrNo int) ([]byte, error) {
	p, err := s.repo.GetByMrNo(ctx, mrNo)
	if err != nil {
		return nil, err
	}

	names := p.TestNames()
	details, err := s.catalog.DetailsByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tests for receipt: %w", err)
	}

	lines := make([]pdfgen.ReceiptLine, 0, len(names))
	for _, n := range names {
		line := pdfgen.ReceiptLine{Name: n}
		if d, ok := details[n]; ok {
			line.Price = d.Price
		}
		lines = append(lines, line)
	}

	return s.renderer.Render(pdfgen.Document{
		Kind:    pdfgen.KindReceipt,
		Patient: docPatient(p),
		Receipt: &pdfgen.ReceiptData{Tests: lines, Amount: p.Amount},
	})
}

// LabReport renders the result sheet for a patient's ordered tests. Result
// values are filled in by hand after printing, so cells carry the catalog
// reference data and a blank result column.
func (s *Service) LabReport(ctx context.Context, mrNo int) ([]byte, error) {
	p, err := s.repo.GetByMrNo(ctx, mrNo)
	if err != nil {
		return nil, err
	}

	names := p.TestNames()
	details, err := s.catalog.DetailsByNames(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve tests for lab report: %w", err)
	}

	results := make([]pdfgen.TestResult, 0, len(names))
	for _, n := range names {
		row := pdfgen.TestResult{TestName: n}
		if d, ok := details[n]; ok {
			row.Unit = d.Unit
			row.NormalRange = d.NormalRange
		}
		results = append(results, row)
	}

	return s.renderer.Render(pdfgen.Document{
		Kind:      pdfgen.KindLabReport,
		Patient:   docPatient(p),
		LabReport: &pdfgen.LabReportData{Results: results},
	})
}

func docPatient(p *Patient) pdfgen.PatientInfo {
	info := pdfgen.PatientInfo{
		MrNo:    p.MrNo,
		Name:    p.Name,
		Age:     p.Age,
		Gender:  p.Gender,
		Doctor:  p.Doctor,
		RegDate: p.RegDate,
	}
	if p.ReportingDate != nil {
		info.ReportingDate = *p.ReportingDate
	} else {
		info.ReportingDate = p.RegDate
	}
	return info
}
