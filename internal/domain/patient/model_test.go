package patient

import (
	"reflect"
	"testing"
)

func TestPatient_Validate(t *testing.T) {
	valid := Patient{Name: "Jane O'Neil-Smith Jr.", Gender: "Female", Age: 34, Amount: 500}
	if errs := valid.Validate(); len(errs) != 0 {
		t.Fatalf("expected no errors, got %v", errs)
	}

	tests := []struct {
		name    string
		mutate  func(*Patient)
		message string
	}{
		{"empty name", func(p *Patient) { p.Name = "  " }, "Name is required"},
		{"digits in name", func(p *Patient) { p.Name = "Jane42" }, "Name may only contain letters, spaces, dots and hyphens"},
		{"age too low", func(p *Patient) { p.Age = 0 }, "Age must be between 1 and 120"},
		{"age too high", func(p *Patient) { p.Age = 121 }, "Age must be between 1 and 120"},
		{"unknown gender", func(p *Patient) { p.Gender = "female" }, "Gender must be Male, Female or Other"},
		{"negative amount", func(p *Patient) { p.Amount = -1 }, "Amount must not be negative"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			errs := p.Validate()
			if len(errs) != 1 || errs[0] != tt.message {
				t.Errorf("expected [%q], got %v", tt.message, errs)
			}
		})
	}
}

func TestPatient_Validate_CollectsAllErrors(t *testing.T) {
	p := Patient{Name: "", Gender: "x", Age: 0, Amount: -5}
	if errs := p.Validate(); len(errs) != 4 {
		t.Errorf("expected 4 errors, got %d: %v", len(errs), errs)
	}
}

func TestPatient_TestNames(t *testing.T) {
	p := Patient{Tests: " CBC , Lipid Profile ,, Blood Sugar "}
	got := p.TestNames()
	want := []string{"CBC", "Lipid Profile", "Blood Sugar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestPatient_TestNames_Empty(t *testing.T) {
	p := Patient{Tests: ""}
	if got := p.TestNames(); len(got) != 0 {
		t.Errorf("expected no names, got %v", got)
	}
}
