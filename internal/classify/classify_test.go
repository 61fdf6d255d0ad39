package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func f64Ptr(f float64) *float64 { return &f }

func TestStewardship(t *testing.T) {
	ref := DefaultReference()

	tests := []struct {
		name     string
		compound *string
		want     string
	}{
		{"nil compound", nil, ClassNotApplicable},
		{"empty compound", strPtr(""), ClassNotClassified},
		{"access compound", strPtr("AMOXICILINA 500MG"), ClassAccess},
		{"watch compound", strPtr("AZITROMICINA 500MG COMPRIMIDO"), ClassWatch},
		{"reserve compound", strPtr("MEROPENEM 1G INJETAVEL"), ClassReserve},
		{"non antibiotic", strPtr("PARACETAMOL 750MG"), ClassNotClassified},
		{"access wins over watch", strPtr("AMOXICILINA + CLAVULANATO"), ClassAccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ref.Stewardship(tt.compound))
		})
	}
}

func TestSpectrum(t *testing.T) {
	ref := DefaultReference()

	tests := []struct {
		name     string
		compound *string
		want     string
	}{
		{"nil compound", nil, SpectrumNotApplicable},
		{"broad", strPtr("AZITROMICINA 500MG"), SpectrumBroad},
		{"narrow", strPtr("CEFALEXINA 500MG"), SpectrumNarrow},
		{"unlisted", strPtr("DIPIRONA 500MG"), SpectrumSpecific},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ref.Spectrum(tt.compound, strPtr("Oral")))
		})
	}

	// The usage type does not influence the result.
	assert.Equal(t, ref.Spectrum(strPtr("AZITROMICINA"), nil), ref.Spectrum(strPtr("AZITROMICINA"), strPtr("Contínuo")))
}

func TestBracketForAge(t *testing.T) {
	tests := []struct {
		name string
		age  *float64
		want string
	}{
		{"nil age", nil, BracketNotInformed},
		{"newborn", f64Ptr(0), BracketUnder1},
		{"eleven months", f64Ptr(0.9), BracketUnder1},
		{"one year", f64Ptr(1), Bracket1To11},
		{"eleven", f64Ptr(11), Bracket1To11},
		{"almost twelve stays child", f64Ptr(11.9), Bracket1To11},
		{"twelve", f64Ptr(12), Bracket12To17},
		{"seventeen", f64Ptr(17), Bracket12To17},
		{"eighteen", f64Ptr(18), Bracket18To59},
		{"fifty nine", f64Ptr(59), Bracket18To59},
		{"almost sixty stays adult", f64Ptr(59.9), Bracket18To59},
		{"sixty", f64Ptr(60), Bracket60Plus},
		{"elderly", f64Ptr(93), Bracket60Plus},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BracketForAge(tt.age))
		})
	}
}
