// Package star builds the gold dimensional model from silver tables:
// six dimension builders, three fact builders, the referential-integrity
// validator, and the pipeline orchestrator.
//
// Every builder is deterministic: rows are deduplicated to the
// dimension's natural key, stable-sorted by that key, and only then
// given a dense 1..N surrogate key. Re-running over unchanged input
// yields byte-identical tables.
package star

import (
	"math"
	"sort"
	"time"

	"camonet/internal/classify"
	"camonet/internal/gold"
	"camonet/internal/silver"
)

const dateLayout = "2006-01-02"

// parseDate parses a silver attendance date. Timestamps are truncated to
// the day. Unparseable or missing values are dropped by callers, the
// same way the upstream contract treats coerced nulls.
func parseDate(s *string) (time.Time, bool) {
	if s == nil || *s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(dateLayout, *s); err == nil {
		return t, true
	}
	if t, err := time.Parse("2006-01-02 15:04:05", *s); err == nil {
		return t.Truncate(24 * time.Hour), true
	}
	return time.Time{}, false
}

// BuildDimTempo sources its date set exclusively from attendance dates.
// A date never seen in an attendance is absent from the dimension; a
// fact referencing it surfaces in the integrity check.
func BuildDimTempo(atend []silver.AtendimentoAnalise) []gold.DimTempo {
	seen := make(map[string]time.Time)
	for i := range atend {
		if t, ok := parseDate(atend[i].DataAtendimento); ok {
			seen[t.Format(dateLayout)] = t
		}
	}

	dates := make([]string, 0, len(seen))
	for d := range seen {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	dim := make([]gold.DimTempo, 0, len(dates))
	for i, d := range dates {
		t := seen[d]
		month := int32(t.Month())
		semestre := int32(1)
		if month > 6 {
			semestre = 2
		}
		dim = append(dim, gold.DimTempo{
			SkTempo:      int64(i + 1),
			DataCompleta: d,
			Ano:          int32(t.Year()),
			Mes:          month,
			Trimestre:    (month-1)/3 + 1,
			Semestre:     semestre,
			DiaSemana:    int32((int(t.Weekday()) + 6) % 7),
			NomeMes:      t.Month().String(),
			AnoMes:       t.Format("2006-01"),
		})
	}
	return dim
}

// BuildDimUnidadeSaude deduplicates health units by code, first row wins.
func BuildDimUnidadeSaude(unidades []silver.UnidadeSaude) []gold.DimUnidadeSaude {
	first := make(map[string]silver.UnidadeSaude)
	codes := make([]string, 0, len(unidades))
	for _, u := range unidades {
		if _, ok := first[u.CodUnidadeSaude]; !ok {
			first[u.CodUnidadeSaude] = u
			codes = append(codes, u.CodUnidadeSaude)
		}
	}
	sort.Strings(codes)

	dim := make([]gold.DimUnidadeSaude, 0, len(codes))
	for i, c := range codes {
		u := first[c]
		dim = append(dim, gold.DimUnidadeSaude{
			SkUnidadeSaude:  int64(i + 1),
			CodUnidadeSaude: u.CodUnidadeSaude,
			Tipo:            u.Tipo,
			EAnalizada:      u.EAnalizada,
		})
	}
	return dim
}

// BuildDimAtendimento deduplicates the per-diagnosis source down to the
// attendance grain before assigning keys.
func BuildDimAtendimento(atend []silver.AtendimentoAnalise) []gold.DimAtendimento {
	first := make(map[string]silver.AtendimentoAnalise)
	codes := make([]string, 0, len(atend))
	for _, a := range atend {
		if _, ok := first[a.CodAtendimento]; !ok {
			first[a.CodAtendimento] = a
			codes = append(codes, a.CodAtendimento)
		}
	}
	sort.Strings(codes)

	dim := make([]gold.DimAtendimento, 0, len(codes))
	for i, c := range codes {
		a := first[c]
		dim = append(dim, gold.DimAtendimento{
			SkAtendimento:   int64(i + 1),
			CodAtendimento:  a.CodAtendimento,
			Especialidade:   a.Especialidade,
			PeriodoExtracao: a.PeriodoExtracao,
		})
	}
	return dim
}

// BuildDimPaciente aggregates one row per patient code. Sex is the
// statistical mode of observed values (ties resolved to the value
// encountered first); age is the mean of observed ages, bracketed before
// rounding and then rounded to whole years. Per-visit variation is
// smoothed, not preserved.
func BuildDimPaciente(atend []silver.AtendimentoAnalise) []gold.DimPaciente {
	type acc struct {
		sexCount map[string]int
		sexOrder []string
		ageSum   float64
		ageN     int
	}
	patients := make(map[string]*acc)
	codes := make([]string, 0)
	for i := range atend {
		a := &atend[i]
		p, ok := patients[a.CodPaciente]
		if !ok {
			p = &acc{sexCount: make(map[string]int)}
			patients[a.CodPaciente] = p
			codes = append(codes, a.CodPaciente)
		}
		if a.Sexo != nil {
			if _, seen := p.sexCount[*a.Sexo]; !seen {
				p.sexOrder = append(p.sexOrder, *a.Sexo)
			}
			p.sexCount[*a.Sexo]++
		}
		if a.Idade != nil {
			p.ageSum += *a.Idade
			p.ageN++
		}
	}
	sort.Strings(codes)

	dim := make([]gold.DimPaciente, 0, len(codes))
	for i, c := range codes {
		p := patients[c]
		row := gold.DimPaciente{
			SkPaciente:  int64(i + 1),
			CodPaciente: c,
			FaixaEtaria: classify.BracketNotInformed,
		}
		best := -1
		for _, s := range p.sexOrder {
			if p.sexCount[s] > best {
				best = p.sexCount[s]
				v := s
				row.Sexo = &v
			}
		}
		if p.ageN > 0 {
			mean := p.ageSum / float64(p.ageN)
			row.FaixaEtaria = classify.BracketForAge(&mean)
			anos := int64(math.Round(mean))
			row.IdadeAnos = &anos
		}
		dim = append(dim, row)
	}
	return dim
}

// BuildDimMedicamento deduplicates medications by code and attaches the
// stewardship and spectrum classifications.
func BuildDimMedicamento(meds []silver.Medicamento, ref classify.Reference) []gold.DimMedicamento {
	first := make(map[string]silver.Medicamento)
	codes := make([]string, 0, len(meds))
	for _, m := range meds {
		if _, ok := first[m.CodMedicamento]; !ok {
			first[m.CodMedicamento] = m
			codes = append(codes, m.CodMedicamento)
		}
	}
	sort.Strings(codes)

	dim := make([]gold.DimMedicamento, 0, len(codes))
	for i, c := range codes {
		m := first[c]
		dim = append(dim, gold.DimMedicamento{
			SkMedicamento:       int64(i + 1),
			CodMedicamento:      m.CodMedicamento,
			CompostoQuimico:     m.CompostoQuimico,
			TipoUso:             m.TipoUso,
			UnidadeApresentacao: m.UnidadeApresentacao,
			Concentracao:        m.Concentracao,
			EAntibiotico:        m.EAntibiotico,
			ClasseWhoAware:      ref.Stewardship(m.CompostoQuimico),
			EspectroAcao:        ref.Spectrum(m.CompostoQuimico, m.TipoUso),
			ViaAdministracao:    "Oral",
		})
	}
	return dim
}

// BuildDimDiagnostico unions the CID and CIAP vocabularies into a single
// coded space. Deduplication is by code value only: if both vocabularies
// carry the same code, the CID row survives and the CIAP one is dropped.
// Cross-vocabulary collisions are not otherwise reconciled.
func BuildDimDiagnostico(cid []silver.CidDiagnostico, ciap []silver.CiapDiagnostico) []gold.DimDiagnostico {
	type diag struct {
		original, agrupado, analise, tipo string
		infeccao                          bool
	}
	first := make(map[string]diag)
	codes := make([]string, 0, len(cid)+len(ciap))
	add := func(code, original, agrupado, analise, tipo string, infeccao bool) {
		if _, ok := first[code]; ok {
			return
		}
		first[code] = diag{original, agrupado, analise, tipo, infeccao}
		codes = append(codes, code)
	}
	for _, d := range cid {
		add(d.CodCid, d.DiagOriginal, d.DiagAgrupado, d.DiagAnalise, "CID", d.EInfeccao)
	}
	for _, d := range ciap {
		add(d.CodCiap, d.DiagOriginal, d.DiagAgrupado, d.DiagAnalise, "CIAP", d.EInfeccao)
	}
	sort.Strings(codes)

	dim := make([]gold.DimDiagnostico, 0, len(codes))
	for i, c := range codes {
		d := first[c]
		dim = append(dim, gold.DimDiagnostico{
			SkDiagnostico:     int64(i + 1),
			CodigoDiagnostico: c,
			DiagOriginal:      d.original,
			DiagAgrupado:      d.agrupado,
			DiagAnalise:       d.analise,
			EInfeccao:         d.infeccao,
			TipoDiagnostico:   d.tipo,
		})
	}
	return dim
}
