package patient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func newTestHandler() (*Handler, *echo.Echo, *mockRepo) {
	svc, repo, _ := newTestService()
	return NewHandler(svc), echo.New(), repo
}

func TestHandler_Register(t *testing.T) {
	h, e, repo := newTestHandler()
	body := `{"name":"John Doe","gender":"Male","age":45,"doctor":"Dr. Khan","tests":"CBC","amount":350}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected 1 patient persisted, got %d", len(repo.patients))
	}
}

func TestHandler_Register_ValidationFailed(t *testing.T) {
	h, e, _ := newTestHandler()
	body := `{"name":"","gender":"Unknown","age":0}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	var resp struct {
		Message string   `json:"message"`
		Errors  []string `json:"errors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Message != "Validation failed" {
		t.Errorf("expected validation message, got %q", resp.Message)
	}
	if len(resp.Errors) == 0 {
		t.Error("expected error details")
	}
}

func TestHandler_Get(t *testing.T) {
	h, e, repo := newTestHandler()
	p := &Patient{Name: "Jane Doe", Gender: "Female", Age: 30, Active: true}
	repo.Create(context.Background(), p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNo")
	c.SetParamValues(strconv.Itoa(p.MrNo))

	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Get_NotFound(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNo")
	c.SetParamValues("42")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusNotFound {
		t.Errorf("expected 404 error, got %v", err)
	}
}

func TestHandler_Get_InvalidMrNo(t *testing.T) {
	h, e, _ := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNo")
	c.SetParamValues("abc")

	err := h.Get(c)
	he, ok := err.(*echo.HTTPError)
	if !ok || he.Code != http.StatusBadRequest {
		t.Errorf("expected 400 error, got %v", err)
	}
}

func TestHandler_List(t *testing.T) {
	h, e, repo := newTestHandler()
	repo.Create(context.Background(), &Patient{Name: "John Doe", Gender: "Male", Age: 45, Active: true})
	repo.Create(context.Background(), &Patient{Name: "Jane Doe", Gender: "Female", Age: 30, Active: true})

	req := httptest.NewRequest(http.MethodGet, "/?limit=10", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Total != 2 {
		t.Errorf("expected 2 patients, got %d", resp.Total)
	}
}

func TestHandler_Delete(t *testing.T) {
	h, e, repo := newTestHandler()
	p := &Patient{Name: "John Doe", Gender: "Male", Age: 45, Active: true}
	repo.Create(context.Background(), p)

	req := httptest.NewRequest(http.MethodDelete, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNo")
	c.SetParamValues(strconv.Itoa(p.MrNo))

	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if repo.patients[p.MrNo].Active {
		t.Error("expected patient deactivated")
	}
}

func TestHandler_Receipt(t *testing.T) {
	h, e, repo := newTestHandler()
	p := &Patient{Name: "John Doe", Gender: "Male", Age: 45, Tests: "CBC", Amount: 350, Active: true}
	repo.Create(context.Background(), p)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("mrNo")
	c.SetParamValues(strconv.Itoa(p.MrNo))

	if err := h.Receipt(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); ct != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", ct)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF") {
		t.Error("expected PDF body")
	}
}

func TestHandler_Stats(t *testing.T) {
	h, e, repo := newTestHandler()
	repo.Create(context.Background(), &Patient{Name: "John Doe", Gender: "Male", Age: 45, Active: true})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Stats(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var st Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if st.TotalCount != 1 {
		t.Errorf("expected total 1, got %d", st.TotalCount)
	}
}
