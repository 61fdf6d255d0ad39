package star

import (
	"fmt"

	"camonet/internal/gold"
)

// Violation is one broken foreign-key reference found by ValidateStar:
// a fact row pointing at a surrogate key no dimension row carries.
type Violation struct {
	Fact      string
	Column    string
	Dimension string
	Row       int   // zero-based position in the fact table
	Key       int64 // the dangling surrogate key
}

func (v Violation) String() string {
	return fmt.Sprintf("%s row %d: %s=%d not found in %s", v.Fact, v.Row, v.Column, v.Key, v.Dimension)
}

type keySet map[int64]struct{}

func dimKeys[T any](rows []T, key func(T) int64) keySet {
	s := make(keySet, len(rows))
	for _, r := range rows {
		s[key(r)] = struct{}{}
	}
	return s
}

type checker struct {
	violations []Violation
}

// check records a violation for every non-null fact key absent from the
// dimension. Null keys are legitimate unresolved lookups and pass.
func (c *checker) check(fact, column, dimension string, keys keySet, row int, fk *int64) {
	if fk == nil {
		return
	}
	if _, ok := keys[*fk]; !ok {
		c.violations = append(c.violations, Violation{
			Fact:      fact,
			Column:    column,
			Dimension: dimension,
			Row:       row,
			Key:       *fk,
		})
	}
}

// ValidateStar checks every foreign-key column of the three fact tables
// against its dimension and returns ALL violations found, never stopping
// at the first. An empty result means the star is referentially sound.
func ValidateStar(s *gold.Set) []Violation {
	tempo := dimKeys(s.DimTempo, func(d gold.DimTempo) int64 { return d.SkTempo })
	unidade := dimKeys(s.DimUnidadeSaude, func(d gold.DimUnidadeSaude) int64 { return d.SkUnidadeSaude })
	atendimento := dimKeys(s.DimAtendimento, func(d gold.DimAtendimento) int64 { return d.SkAtendimento })
	paciente := dimKeys(s.DimPaciente, func(d gold.DimPaciente) int64 { return d.SkPaciente })
	medicamento := dimKeys(s.DimMedicamento, func(d gold.DimMedicamento) int64 { return d.SkMedicamento })
	diagnostico := dimKeys(s.DimDiagnostico, func(d gold.DimDiagnostico) int64 { return d.SkDiagnostico })

	var c checker
	for i := range s.FatoPrescricao {
		f := &s.FatoPrescricao[i]
		c.check("fato_prescricao", "sk_atendimento", "dim_atendimento", atendimento, i, f.SkAtendimento)
		c.check("fato_prescricao", "sk_paciente", "dim_paciente", paciente, i, f.SkPaciente)
		c.check("fato_prescricao", "sk_medicamento", "dim_medicamento", medicamento, i, f.SkMedicamento)
		c.check("fato_prescricao", "sk_tempo", "dim_tempo", tempo, i, f.SkTempo)
		c.check("fato_prescricao", "sk_unidade_saude", "dim_unidade_saude", unidade, i, f.SkUnidadeSaude)
		c.check("fato_prescricao", "sk_diagnostico", "dim_diagnostico", diagnostico, i, f.SkDiagnostico)
	}
	for i := range s.FatoDiagnostico {
		f := &s.FatoDiagnostico[i]
		c.check("fato_diagnostico", "sk_atendimento", "dim_atendimento", atendimento, i, f.SkAtendimento)
		c.check("fato_diagnostico", "sk_paciente", "dim_paciente", paciente, i, f.SkPaciente)
		c.check("fato_diagnostico", "sk_diagnostico", "dim_diagnostico", diagnostico, i, f.SkDiagnostico)
		c.check("fato_diagnostico", "sk_tempo", "dim_tempo", tempo, i, f.SkTempo)
		c.check("fato_diagnostico", "sk_unidade_saude", "dim_unidade_saude", unidade, i, f.SkUnidadeSaude)
	}
	for i := range s.FatoAtendimentoResumo {
		f := &s.FatoAtendimentoResumo[i]
		c.check("fato_atendimento_resumo", "sk_atendimento", "dim_atendimento", atendimento, i, f.SkAtendimento)
		c.check("fato_atendimento_resumo", "sk_paciente", "dim_paciente", paciente, i, f.SkPaciente)
		c.check("fato_atendimento_resumo", "sk_tempo", "dim_tempo", tempo, i, f.SkTempo)
		c.check("fato_atendimento_resumo", "sk_unidade_saude", "dim_unidade_saude", unidade, i, f.SkUnidadeSaude)
		c.check("fato_atendimento_resumo", "sk_diagnostico", "dim_diagnostico", diagnostico, i, f.SkDiagnostico)
	}
	return c.violations
}
