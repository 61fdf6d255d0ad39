// Package classify holds the antimicrobial classification rules applied
// while building the medication and patient dimensions: WHO AWaRe
// stewardship class, spectrum of action, and age brackets.
package classify

import "strings"

// Stewardship (WHO AWaRe) classes.
const (
	ClassAccess        = "Access"
	ClassWatch         = "Watch"
	ClassReserve       = "Reserve"
	ClassNotClassified = "Not Classified"
	ClassNotApplicable = "Not Applicable"
)

// Spectrum-of-action classes.
const (
	SpectrumBroad         = "Amplo"
	SpectrumNarrow        = "Estreito"
	SpectrumSpecific      = "Específico"
	SpectrumNotApplicable = "Não aplicável"
)

// Age bracket labels.
const (
	BracketUnder1      = "0-1 ano"
	Bracket1To11       = "1-11 anos"
	Bracket12To17      = "12-17 anos"
	Bracket18To59      = "18-59 anos"
	Bracket60Plus      = "60+ anos"
	BracketNotInformed = "Não informado"
)

// Reference carries the compound lists the matchers run against. The
// built-in lists are a simplified stand-in for the official WHO tables;
// substituting an official table changes only this data, never the
// matching algorithm.
type Reference struct {
	Access  []string
	Watch   []string
	Reserve []string
	Broad   []string
	Narrow  []string
}

// DefaultReference returns the built-in simplified reference lists.
func DefaultReference() Reference {
	return Reference{
		Access: []string{
			"AMOXICILINA", "AMPICILINA", "PENICILINA", "DOXICICLINA",
			"CEFALEXINA", "SULFAMETOXAZOL", "TRIMETOPRIMA", "METRONIDAZOL",
			"NITROFURANTOINA", "GENTAMICINA",
		},
		Watch: []string{
			"CIPROFLOXACINO", "LEVOFLOXACINO", "AZITROMICINA", "CLARITROMICINA",
			"CEFTRIAXONA", "CEFOTAXIMA", "CEFUROXIMA", "AMOXICILINA + CLAVULANATO",
		},
		Reserve: []string{
			"MEROPENEM", "IMIPENEM", "VANCOMICINA", "LINEZOLIDA",
			"COLISTINA", "TIGECICLINA", "DAPTOMICINA",
		},
		Broad: []string{
			"AMOXICILINA + CLAVULANATO", "CIPROFLOXACINO", "LEVOFLOXACINO",
			"CEFTRIAXONA", "AZITROMICINA", "MEROPENEM", "IMIPENEM",
		},
		Narrow: []string{
			"PENICILINA", "AMOXICILINA", "CEFALEXINA", "ERITROMICINA",
			"VANCOMICINA", "METRONIDAZOL",
		},
	}
}

func matchAny(compound string, list []string) bool {
	for _, item := range list {
		if strings.Contains(compound, item) {
			return true
		}
	}
	return false
}

// Stewardship classifies a chemical compound into a WHO AWaRe class.
// Lists are checked Access, then Watch, then Reserve; first substring
// match wins. A missing compound is Not Applicable, an unmatched one
// Not Classified.
func (r Reference) Stewardship(compound *string) string {
	if compound == nil {
		return ClassNotApplicable
	}
	c := strings.ToUpper(*compound)
	switch {
	case matchAny(c, r.Access):
		return ClassAccess
	case matchAny(c, r.Watch):
		return ClassWatch
	case matchAny(c, r.Reserve):
		return ClassReserve
	}
	return ClassNotClassified
}

// Spectrum classifies a compound's spectrum of action. The usage-type
// attribute is accepted but does not participate in matching.
func (r Reference) Spectrum(compound, usageType *string) string {
	if compound == nil {
		return SpectrumNotApplicable
	}
	c := strings.ToUpper(*compound)
	switch {
	case matchAny(c, r.Broad):
		return SpectrumBroad
	case matchAny(c, r.Narrow):
		return SpectrumNarrow
	}
	return SpectrumSpecific
}

// BracketForAge maps an age in years to its bracket label. Fails closed
// to "not informed" on a missing age. Fractional ages are truncated, so
// the upper bounds are half-open: exactly 12 falls into 12-17.
func BracketForAge(age *float64) string {
	if age == nil {
		return BracketNotInformed
	}
	years := int(*age)
	switch {
	case years < 1:
		return BracketUnder1
	case years < 12:
		return Bracket1To11
	case years < 18:
		return Bracket12To17
	case years < 60:
		return Bracket18To59
	}
	return Bracket60Plus
}
