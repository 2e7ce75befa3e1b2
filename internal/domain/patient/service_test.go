package patient

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/labms/labms/internal/platform/pdfgen"
)

// -- Mocks --

type mockRepo struct {
	patients map[int]*Patient
	nextMrNo int
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[int]*Patient), nextMrNo: 1}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.MrNo = m.nextMrNo
	m.nextMrNo++
	p.CreatedAt = time.Now()
	p.UpdatedAt = time.Now()
	m.patients[p.MrNo] = p
	return nil
}

func (m *mockRepo) GetByMrNo(_ context.Context, mrNo int) (*Patient, error) {
	p, ok := m.patients[mrNo]
	if !ok || !p.Active {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) List(_ context.Context, search string, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if !p.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(search)) {
			continue
		}
		items = append(items, p)
	}
	return items, len(items), nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	existing, ok := m.patients[p.MrNo]
	if !ok || !existing.Active {
		return ErrNotFound
	}
	p.Active = true
	m.patients[p.MrNo] = p
	return nil
}

func (m *mockRepo) Delete(_ context.Context, mrNo int) error {
	p, ok := m.patients[mrNo]
	if !ok || !p.Active {
		return ErrNotFound
	}
	p.Active = false
	return nil
}

func (m *mockRepo) Stats(_ context.Context) (*Stats, error) {
	st := &Stats{ByGender: make(map[string]int)}
	for _, p := range m.patients {
		if !p.Active {
			continue
		}
		st.TotalCount++
		st.ByGender[p.Gender]++
	}
	return st, nil
}

type mockCatalog struct {
	details map[string]TestDetail
}

func (m *mockCatalog) DetailsByNames(_ context.Context, names []string) (map[string]TestDetail, error) {
	out := make(map[string]TestDetail)
	for _, n := range names {
		if d, ok := m.details[n]; ok {
			out[n] = d
		}
	}
	return out, nil
}

type mockRenderer struct {
	lastDoc pdfgen.Document
}

func (m *mockRenderer) Render(doc pdfgen.Document) ([]byte, error) {
	m.lastDoc = doc
	return []byte("%PDF-1.4 fake"), nil
}

func newTestService() (*Service, *mockRepo, *mockRenderer) {
	repo := newMockRepo()
	catalog := &mockCatalog{details: map[string]TestDetail{
		"CBC":         {Name: "CBC", Price: 350, Unit: "cells/mcL", NormalRange: "4500-11000"},
		"Blood Sugar": {Name: "Blood Sugar", Price: 150, Unit: "mg/dL", NormalRange: "70-100"},
	}}
	renderer := &mockRenderer{}
	svc := NewService(repo, catalog, renderer, zerolog.Nop())
	return svc, repo, renderer
}

func register(t *testing.T, svc *Service) *Patient {
	t.Helper()
	p := &Patient{Name: "John Doe", Gender: "Male", Age: 45, Doctor: "Dr. Khan",
		Tests: "CBC, Blood Sugar", Amount: 500}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("register: %v", err)
	}
	return p
}

func TestService_Register(t *testing.T) {
	svc, repo, _ := newTestService()
	p := register(t, svc)

	if p.MrNo == 0 {
		t.Error("expected MR number to be assigned")
	}
	if p.RegDate.IsZero() {
		t.Error("expected registration date to default to now")
	}
	if !p.Active {
		t.Error("expected patient to be active")
	}
	if _, ok := repo.patients[p.MrNo]; !ok {
		t.Error("expected patient persisted")
	}
}

func TestService_Register_KeepsGivenRegDate(t *testing.T) {
	svc, _, _ := newTestService()
	regDate := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	p := &Patient{Name: "Jane Doe", Gender: "Female", Age: 30, RegDate: regDate}
	if err := svc.Register(context.Background(), p); err != nil {
		t.Fatalf("register: %v", err)
	}
	if !p.RegDate.Equal(regDate) {
		t.Errorf("expected reg date %v preserved, got %v", regDate, p.RegDate)
	}
}

func TestService_GetDelete(t *testing.T) {
	svc, _, _ := newTestService()
	p := register(t, svc)

	got, err := svc.Get(context.Background(), p.MrNo)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "John Doe" {
		t.Errorf("expected John Doe, got %q", got.Name)
	}

	if err := svc.Delete(context.Background(), p.MrNo); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(context.Background(), p.MrNo); err != ErrNotFound {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestService_Receipt(t *testing.T) {
	svc, _, renderer := newTestService()
	p := register(t, svc)

	pdf, err := svc.Receipt(context.Background(), p.MrNo)
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Error("expected PDF output")
	}

	doc := renderer.lastDoc
	if doc.Kind != pdfgen.KindReceipt {
		t.Errorf("expected receipt document, got %q", doc.Kind)
	}
	if doc.Receipt == nil || len(doc.Receipt.Tests) != 2 {
		t.Fatalf("expected 2 receipt lines, got %+v", doc.Receipt)
	}
	if doc.Receipt.Tests[0].Price != 350 {
		t.Errorf("expected CBC price 350, got %v", doc.Receipt.Tests[0].Price)
	}
	if doc.Receipt.Amount != 500 {
		t.Errorf("expected billed amount 500, got %v", doc.Receipt.Amount)
	}
}

func TestService_LabReport(t *testing.T) {
	svc, _, renderer := newTestService()
	p := register(t, svc)

	if _, err := svc.LabReport(context.Background(), p.MrNo); err != nil {
		t.Fatalf("lab report: %v", err)
	}

	doc := renderer.lastDoc
	if doc.Kind != pdfgen.KindLabReport {
		t.Errorf("expected lab report document, got %q", doc.Kind)
	}
	if doc.LabReport == nil || len(doc.LabReport.Results) != 2 {
		t.Fatalf("expected 2 result rows, got %+v", doc.LabReport)
	}
	if doc.LabReport.Results[0].NormalRange != "4500-11000" {
		t.Errorf("expected normal range from catalog, got %q", doc.LabReport.Results[0].NormalRange)
	}
	if doc.LabReport.Results[0].Result != "" {
		t.Error("expected result column left blank")
	}
}

func TestService_LabReport_ReportingDateFallsBackToRegDate(t *testing.T) {
	svc, _, renderer := newTestService()
	p := register(t, svc)

	if _, err := svc.LabReport(context.Background(), p.MrNo); err != nil {
		t.Fatalf("lab report: %v", err)
	}
	if !renderer.lastDoc.Patient.ReportingDate.Equal(p.RegDate) {
		t.Error("expected reporting date to fall back to registration date")
	}
}

func TestService_Receipt_NotFound(t *testing.T) {
	svc, _, _ := newTestService()
	if _, err := svc.Receipt(context.Background(), 99); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
