// Package dashboard serves read-only aggregates over a built gold layer.
// The whole star schema is held in memory; every request recomputes its
// aggregate from the loaded slices, which is cheap at municipal scale.
package dashboard

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"camonet/internal/gold"
)

// Server exposes the dashboard endpoints over a loaded star schema.
type Server struct {
	set *gold.Set
	log zerolog.Logger
}

func NewServer(set *gold.Set, log zerolog.Logger) *Server {
	return &Server{set: set, log: log}
}

// Router builds the echo instance with all routes registered.
func (s *Server) Router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	e.GET("/health", s.health)
	v1 := e.Group("/api/v1")
	v1.GET("/overview", s.overview)
	v1.GET("/atendimentos/mensal", s.atendimentosMensal)
	v1.GET("/antibioticos/aware", s.antibioticosAware)
	v1.GET("/inadequacoes/unidades", s.inadequacoesUnidades)
	v1.GET("/impacto/periodos", s.impactoPeriodos)
	return e
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "ok",
		"atendimentos": len(s.set.FatoAtendimentoResumo),
		"prescricoes":  len(s.set.FatoPrescricao),
		"diagnosticos": len(s.set.FatoDiagnostico),
	})
}

// Overview totals across the whole loaded period.
type Overview struct {
	Atendimentos            int     `json:"atendimentos"`
	Pacientes               int     `json:"pacientes"`
	Prescricoes             int     `json:"prescricoes"`
	Antibioticos            int     `json:"antibioticos"`
	PrescricoesInadequadas  int     `json:"prescricoes_inadequadas"`
	TaxaInadequacao         float64 `json:"taxa_inadequacao"`
	AtendimentosInfecciosos int     `json:"atendimentos_infecciosos"`
}

func (s *Server) overview(c echo.Context) error {
	o := Overview{
		Atendimentos: len(s.set.FatoAtendimentoResumo),
		Pacientes:    len(s.set.DimPaciente),
		Prescricoes:  len(s.set.FatoPrescricao),
	}
	for i := range s.set.FatoPrescricao {
		f := &s.set.FatoPrescricao[i]
		if f.EAntibiotico {
			o.Antibioticos++
		}
		if f.EPrescricaoInadequada {
			o.PrescricoesInadequadas++
		}
	}
	for i := range s.set.FatoAtendimentoResumo {
		if s.set.FatoAtendimentoResumo[i].TeveDiagnosticoInfeccioso {
			o.AtendimentosInfecciosos++
		}
	}
	if o.Antibioticos > 0 {
		o.TaxaInadequacao = float64(o.PrescricoesInadequadas) / float64(o.Antibioticos)
	}
	return c.JSON(http.StatusOK, o)
}

// MonthBucket is one month of attendance volume.
type MonthBucket struct {
	AnoMes       string `json:"ano_mes"`
	Atendimentos int    `json:"atendimentos"`
	Antibioticos int64  `json:"antibioticos"`
}

func (s *Server) atendimentosMensal(c echo.Context) error {
	months := make(map[int64]string, len(s.set.DimTempo))
	for _, d := range s.set.DimTempo {
		months[d.SkTempo] = d.AnoMes
	}

	buckets := make(map[string]*MonthBucket)
	for i := range s.set.FatoAtendimentoResumo {
		f := &s.set.FatoAtendimentoResumo[i]
		if f.SkTempo == nil {
			continue
		}
		mes, ok := months[*f.SkTempo]
		if !ok {
			continue
		}
		b, ok := buckets[mes]
		if !ok {
			b = &MonthBucket{AnoMes: mes}
			buckets[mes] = b
		}
		b.Atendimentos++
		b.Antibioticos += f.TotalAntibioticosPrescritos
	}

	out := make([]MonthBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AnoMes < out[j].AnoMes })
	return c.JSON(http.StatusOK, out)
}

// AwareBucket is the prescription count for one stewardship class.
type AwareBucket struct {
	Classe      string `json:"classe"`
	Prescricoes int    `json:"prescricoes"`
}

func (s *Server) antibioticosAware(c echo.Context) error {
	counts := make(map[string]int)
	for i := range s.set.FatoPrescricao {
		f := &s.set.FatoPrescricao[i]
		if !f.EAntibiotico || f.ClasseWhoAware == nil {
			continue
		}
		counts[*f.ClasseWhoAware]++
	}
	out := make([]AwareBucket, 0, len(counts))
	for classe, n := range counts {
		out = append(out, AwareBucket{Classe: classe, Prescricoes: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Classe < out[j].Classe })
	return c.JSON(http.StatusOK, out)
}

// UnitBucket is the inadequate-prescription profile of one health unit.
type UnitBucket struct {
	CodUnidadeSaude string  `json:"cod_unidade_saude"`
	Tipo            string  `json:"tipo"`
	Antibioticos    int     `json:"antibioticos"`
	Inadequadas     int     `json:"inadequadas"`
	TaxaInadequacao float64 `json:"taxa_inadequacao"`
}

func (s *Server) inadequacoesUnidades(c echo.Context) error {
	units := make(map[int64]gold.DimUnidadeSaude, len(s.set.DimUnidadeSaude))
	for _, d := range s.set.DimUnidadeSaude {
		units[d.SkUnidadeSaude] = d
	}

	buckets := make(map[int64]*UnitBucket)
	for i := range s.set.FatoPrescricao {
		f := &s.set.FatoPrescricao[i]
		if !f.EAntibiotico || f.SkUnidadeSaude == nil {
			continue
		}
		u, ok := units[*f.SkUnidadeSaude]
		if !ok {
			continue
		}
		b, ok := buckets[*f.SkUnidadeSaude]
		if !ok {
			b = &UnitBucket{CodUnidadeSaude: u.CodUnidadeSaude, Tipo: u.Tipo}
			buckets[*f.SkUnidadeSaude] = b
		}
		b.Antibioticos++
		if f.EPrescricaoInadequada {
			b.Inadequadas++
		}
	}

	out := make([]UnitBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Antibioticos > 0 {
			b.TaxaInadequacao = float64(b.Inadequadas) / float64(b.Antibioticos)
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TaxaInadequacao != out[j].TaxaInadequacao {
			return out[i].TaxaInadequacao > out[j].TaxaInadequacao
		}
		return out[i].CodUnidadeSaude < out[j].CodUnidadeSaude
	})
	return c.JSON(http.StatusOK, out)
}

// PeriodBucket is the prescription profile of one extraction period,
// for before/after comparison of a stewardship intervention.
type PeriodBucket struct {
	PeriodoExtracao string  `json:"periodo_extracao"`
	Prescricoes     int     `json:"prescricoes"`
	Antibioticos    int     `json:"antibioticos"`
	Inadequadas     int     `json:"inadequadas"`
	TaxaInadequacao float64 `json:"taxa_inadequacao"`
}

func (s *Server) impactoPeriodos(c echo.Context) error {
	periods := make(map[int64]string, len(s.set.DimAtendimento))
	for _, d := range s.set.DimAtendimento {
		periods[d.SkAtendimento] = d.PeriodoExtracao
	}

	buckets := make(map[string]*PeriodBucket)
	for i := range s.set.FatoPrescricao {
		f := &s.set.FatoPrescricao[i]
		if f.SkAtendimento == nil {
			continue
		}
		periodo, ok := periods[*f.SkAtendimento]
		if !ok {
			continue
		}
		b, ok := buckets[periodo]
		if !ok {
			b = &PeriodBucket{PeriodoExtracao: periodo}
			buckets[periodo] = b
		}
		b.Prescricoes++
		if f.EAntibiotico {
			b.Antibioticos++
		}
		if f.EPrescricaoInadequada {
			b.Inadequadas++
		}
	}

	out := make([]PeriodBucket, 0, len(buckets))
	for _, b := range buckets {
		if b.Antibioticos > 0 {
			b.TaxaInadequacao = float64(b.Inadequadas) / float64(b.Antibioticos)
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PeriodoExtracao < out[j].PeriodoExtracao })
	return c.JSON(http.StatusOK, out)
}
