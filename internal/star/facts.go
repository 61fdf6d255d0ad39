package star

import (
	"camonet/internal/gold"
	"camonet/internal/silver"
)

// Lookups maps the natural key of each dimension to its surrogate key
// for the current run. Fact builders resolve through these maps only;
// a miss yields a null foreign key, never a dropped fact row.
type Lookups struct {
	Tempo        map[string]int64 // data_completa
	UnidadeSaude map[string]int64 // cod_unidade_saude
	Atendimento  map[string]int64 // cod_atendimento
	Paciente     map[string]int64 // cod_paciente
	Medicamento  map[string]int64 // cod_medicamento
	Diagnostico  map[string]int64 // codigo_diagnostico
}

// NewLookups indexes the six dimensions by natural key.
func NewLookups(s *gold.Set) Lookups {
	l := Lookups{
		Tempo:        make(map[string]int64, len(s.DimTempo)),
		UnidadeSaude: make(map[string]int64, len(s.DimUnidadeSaude)),
		Atendimento:  make(map[string]int64, len(s.DimAtendimento)),
		Paciente:     make(map[string]int64, len(s.DimPaciente)),
		Medicamento:  make(map[string]int64, len(s.DimMedicamento)),
		Diagnostico:  make(map[string]int64, len(s.DimDiagnostico)),
	}
	for _, d := range s.DimTempo {
		l.Tempo[d.DataCompleta] = d.SkTempo
	}
	for _, d := range s.DimUnidadeSaude {
		l.UnidadeSaude[d.CodUnidadeSaude] = d.SkUnidadeSaude
	}
	for _, d := range s.DimAtendimento {
		l.Atendimento[d.CodAtendimento] = d.SkAtendimento
	}
	for _, d := range s.DimPaciente {
		l.Paciente[d.CodPaciente] = d.SkPaciente
	}
	for _, d := range s.DimMedicamento {
		l.Medicamento[d.CodMedicamento] = d.SkMedicamento
	}
	for _, d := range s.DimDiagnostico {
		l.Diagnostico[d.CodigoDiagnostico] = d.SkDiagnostico
	}
	return l
}

func (l Lookups) tempo(date *string) *int64 {
	if t, ok := parseDate(date); ok {
		if sk, found := l.Tempo[t.Format(dateLayout)]; found {
			return &sk
		}
	}
	return nil
}

func lookup(m map[string]int64, key string) *int64 {
	if sk, ok := m[key]; ok {
		return &sk
	}
	return nil
}

// attendanceContext is the attendance-level view derived from the
// per-diagnosis analysis table: first-row attributes, the aggregate
// infectious flag, and the principal diagnosis.
type attendanceContext struct {
	first               silver.AtendimentoAnalise
	infeccioso          bool
	principal           *string // cod_cid_ciap of the principal diagnosis
	principalInfeccioso bool
}

// buildAttendanceContexts rolls the per-diagnosis rows up to the
// attendance grain. The aggregate infectious flag is true when ANY
// diagnosis of the attendance is infectious. The principal diagnosis is
// the first infectious diagnosis in source order, falling back to the
// first diagnosis of any kind; attendances whose rows all lack a code
// have no principal diagnosis.
func buildAttendanceContexts(atend []silver.AtendimentoAnalise) map[string]*attendanceContext {
	ctxs := make(map[string]*attendanceContext)
	for i := range atend {
		a := &atend[i]
		c, ok := ctxs[a.CodAtendimento]
		if !ok {
			c = &attendanceContext{first: *a}
			ctxs[a.CodAtendimento] = c
		}
		if a.EDiagInfeccioso {
			c.infeccioso = true
		}
		if a.CodCidCiap != nil {
			if c.principal == nil || (a.EDiagInfeccioso && !c.principalInfeccioso) {
				c.principal = a.CodCidCiap
				c.principalInfeccioso = a.EDiagInfeccioso
			}
		}
	}
	return ctxs
}

// unidadeByAtendimento indexes the attendance registry by code; the
// registry is the only silver table carrying the health-unit link.
func unidadeByAtendimento(regs []silver.Atendimento) map[string]string {
	m := make(map[string]string, len(regs))
	for _, r := range regs {
		if _, ok := m[r.CodAtendimento]; !ok {
			m[r.CodAtendimento] = r.CodUnidadeSaude
		}
	}
	return m
}

// BuildFatoPrescricao produces one fact row per prescription line, in
// source order. Row count equals the input row count: unresolved
// dimension lookups become null keys.
func BuildFatoPrescricao(
	lines []silver.MedPrescritoAnalise,
	prescrito []silver.MedPrescrito,
	regs []silver.Atendimento,
	ctxs map[string]*attendanceContext,
	dimMed []gold.DimMedicamento,
	l Lookups,
) []gold.FatoPrescricao {
	type qty struct{ quantidade, qtdReceita *float64 }
	quantities := make(map[string]qty, len(prescrito))
	for _, p := range prescrito {
		k := p.CodAtendimento + "\x00" + p.CodMedicamento
		if _, ok := quantities[k]; !ok {
			quantities[k] = qty{p.Quantidade, p.QtdReceita}
		}
	}

	medAttrs := make(map[string]gold.DimMedicamento, len(dimMed))
	for _, m := range dimMed {
		medAttrs[m.CodMedicamento] = m
	}
	unidades := unidadeByAtendimento(regs)

	facts := make([]gold.FatoPrescricao, 0, len(lines))
	for i, line := range lines {
		f := gold.FatoPrescricao{
			SkPrescricao:  int64(i + 1),
			SkAtendimento: lookup(l.Atendimento, line.CodAtendimento),
			SkMedicamento: lookup(l.Medicamento, line.CodMedicamento),
			Duracao:       line.Duracao,
			Concentracao:  line.Concentracao,
			EAntibiotico:  line.EAntibiotico,
		}
		if q, ok := quantities[line.CodAtendimento+"\x00"+line.CodMedicamento]; ok {
			f.Quantidade = q.quantidade
			f.QtdReceita = q.qtdReceita
		}
		if u, ok := unidades[line.CodAtendimento]; ok {
			f.SkUnidadeSaude = lookup(l.UnidadeSaude, u)
		}
		if c, ok := ctxs[line.CodAtendimento]; ok {
			f.SkPaciente = lookup(l.Paciente, c.first.CodPaciente)
			f.SkTempo = l.tempo(c.first.DataAtendimento)
			f.EDiagnosticoInfeccioso = c.infeccioso
			if c.principal != nil {
				f.SkDiagnostico = lookup(l.Diagnostico, *c.principal)
			}
		}
		if m, ok := medAttrs[line.CodMedicamento]; ok {
			f.TipoUso = m.TipoUso
			espectro, classe := m.EspectroAcao, m.ClasseWhoAware
			f.EspectroAcao = &espectro
			f.ClasseWhoAware = &classe
		}
		f.EPrescricaoApropriada = f.EAntibiotico && f.EDiagnosticoInfeccioso
		f.EPrescricaoInadequada = f.EAntibiotico && !f.EDiagnosticoInfeccioso
		facts = append(facts, f)
	}
	return facts
}

// BuildFatoDiagnostico produces one fact row per (attendance, diagnosis)
// source row, in source order. Rows without a diagnosis code keep a null
// sk_diagnostico.
func BuildFatoDiagnostico(
	atend []silver.AtendimentoAnalise,
	regs []silver.Atendimento,
	l Lookups,
) []gold.FatoDiagnostico {
	unidades := unidadeByAtendimento(regs)

	facts := make([]gold.FatoDiagnostico, 0, len(atend))
	for i := range atend {
		a := &atend[i]
		f := gold.FatoDiagnostico{
			SkDiagnosticoAtendimento: int64(i + 1),
			SkAtendimento:            lookup(l.Atendimento, a.CodAtendimento),
			SkPaciente:               lookup(l.Paciente, a.CodPaciente),
			SkTempo:                  l.tempo(a.DataAtendimento),
			DiagnosticarPor:          a.DiagnosticarPor,
			EDiagInfeccioso:          a.EDiagInfeccioso,
		}
		if a.CodCidCiap != nil {
			f.SkDiagnostico = lookup(l.Diagnostico, *a.CodCidCiap)
		}
		if u, ok := unidades[a.CodAtendimento]; ok {
			f.SkUnidadeSaude = lookup(l.UnidadeSaude, u)
		}
		facts = append(facts, f)
	}
	return facts
}

// BuildFatoAtendimentoResumo produces one fact row per attendance, in
// order of first appearance in the analysis table. Count measures default
// to zero for attendances with nothing recorded.
//
// The total prescription count comes from the prescribed-medication
// table; only the antibiotic count comes from the analysis lines. The
// two tables can carry different row sets for an attendance.
func BuildFatoAtendimentoResumo(
	atend []silver.AtendimentoAnalise,
	lines []silver.MedPrescritoAnalise,
	prescrito []silver.MedPrescrito,
	regs []silver.Atendimento,
	ctxs map[string]*attendanceContext,
	l Lookups,
) []gold.FatoAtendimentoResumo {
	type meds struct{ total, antibiotics int64 }
	medCounts := make(map[string]*meds)
	counts := func(cod string) *meds {
		m, ok := medCounts[cod]
		if !ok {
			m = &meds{}
			medCounts[cod] = m
		}
		return m
	}
	for _, p := range prescrito {
		counts(p.CodAtendimento).total++
	}
	for _, line := range lines {
		if line.EAntibiotico {
			counts(line.CodAtendimento).antibiotics++
		}
	}

	type diags struct{ total, infectious int64 }
	diagCounts := make(map[string]*diags)
	order := make([]string, 0)
	for i := range atend {
		a := &atend[i]
		d, ok := diagCounts[a.CodAtendimento]
		if !ok {
			d = &diags{}
			diagCounts[a.CodAtendimento] = d
			order = append(order, a.CodAtendimento)
		}
		if a.CodCidCiap != nil {
			d.total++
		}
		if a.EDiagInfeccioso {
			d.infectious++
		}
	}

	unidades := unidadeByAtendimento(regs)

	facts := make([]gold.FatoAtendimentoResumo, 0, len(order))
	for _, cod := range order {
		c := ctxs[cod]
		d := diagCounts[cod]
		f := gold.FatoAtendimentoResumo{
			SkAtendimento:                lookup(l.Atendimento, cod),
			SkPaciente:                   lookup(l.Paciente, c.first.CodPaciente),
			SkTempo:                      l.tempo(c.first.DataAtendimento),
			Especialidade:                c.first.Especialidade,
			TotalDiagnosticos:            d.total,
			TotalDiagnosticosInfecciosos: d.infectious,
			TeveDiagnosticoInfeccioso:    c.infeccioso,
		}
		if c.principal != nil {
			f.SkDiagnostico = lookup(l.Diagnostico, *c.principal)
		}
		if u, ok := unidades[cod]; ok {
			f.SkUnidadeSaude = lookup(l.UnidadeSaude, u)
		}
		if m, ok := medCounts[cod]; ok {
			f.TotalMedicamentosPrescritos = m.total
			f.TotalAntibioticosPrescritos = m.antibiotics
			f.TevePrescricaoAntibiotico = m.antibiotics > 0
		}
		facts = append(facts, f)
	}
	return facts
}
