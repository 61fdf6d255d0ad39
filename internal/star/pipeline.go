package star

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"camonet/internal/classify"
	"camonet/internal/gold"
	"camonet/internal/silver"
)

// Stage names the phase a run is in, or ended in.
type Stage string

const (
	StageInit            Stage = "init"
	StageBuildDimensions Stage = "build_dimensions"
	StageBuildFacts      Stage = "build_facts"
	StageValidate        Stage = "validate"
	StageDone            Stage = "done"
	StageFailed          Stage = "failed"
)

// Pipeline runs the full silver-to-gold build: read silver, build the
// six dimensions, build the three facts, write everything, then re-read
// the written files and validate referential integrity. A run either
// completes all stages or stops at the first failed one; there are no
// retries and no partial writes beyond the stage that failed.
type Pipeline struct {
	Silver silver.Layer
	Gold   gold.Layer
	Ref    classify.Reference
	Log    zerolog.Logger
}

// Result reports what a run produced, however far it got.
type Result struct {
	RunID    string
	Stage    Stage
	Started  time.Time
	Duration time.Duration

	RowCounts map[string]int // per output table

	Antibiotics int // prescription rows flagged antibiotic
	Appropriate int // antibiotic with infectious diagnosis
	Inadequate  int // antibiotic without infectious diagnosis

	Violations []Violation
	Err        error
}

// Failed reports whether the run must map to a non-zero exit: either a
// stage error or at least one integrity violation.
func (r *Result) Failed() bool {
	return r.Err != nil || len(r.Violations) > 0
}

// Run executes the pipeline. The returned Result is never nil: on
// failure it carries the stage reached and the counts produced so far.
func (p *Pipeline) Run() *Result {
	res := &Result{
		RunID:     uuid.NewString(),
		Stage:     StageInit,
		Started:   time.Now(),
		RowCounts: make(map[string]int),
	}
	defer func() { res.Duration = time.Since(res.Started) }()
	log := p.Log.With().Str("run_id", res.RunID).Logger()

	fail := func(stage Stage, err error) *Result {
		res.Stage = StageFailed
		res.Err = fmt.Errorf("%s: %w", stage, err)
		log.Error().Err(err).Str("stage", string(stage)).Msg("pipeline failed")
		return res
	}

	log.Info().Str("silver_dir", p.Silver.Dir).Str("gold_dir", p.Gold.Dir).Msg("starting silver to gold build")
	if err := p.Gold.EnsureDir(); err != nil {
		return fail(StageInit, err)
	}

	atendRegs, err := p.Silver.Atendimentos()
	if err != nil {
		return fail(StageInit, err)
	}
	atendAnalise, err := p.Silver.AtendimentosAnalise()
	if err != nil {
		return fail(StageInit, err)
	}
	unidades, err := p.Silver.UnidadesSaude()
	if err != nil {
		return fail(StageInit, err)
	}
	medicamentos, err := p.Silver.Medicamentos()
	if err != nil {
		return fail(StageInit, err)
	}
	medPrescritos, err := p.Silver.MedPrescritos()
	if err != nil {
		return fail(StageInit, err)
	}
	medLines, err := p.Silver.MedPrescritosAnalise()
	if err != nil {
		return fail(StageInit, err)
	}
	cid, err := p.Silver.CidDiagnosticos()
	if err != nil {
		return fail(StageInit, err)
	}
	ciap, err := p.Silver.CiapDiagnosticos()
	if err != nil {
		return fail(StageInit, err)
	}
	log.Info().
		Int("atendimentos", len(atendRegs)).
		Int("atendimento_analise", len(atendAnalise)).
		Int("medicamentos", len(medicamentos)).
		Int("med_prescrito_analise", len(medLines)).
		Msg("silver layer loaded")

	res.Stage = StageBuildDimensions
	set := &gold.Set{
		DimTempo:        BuildDimTempo(atendAnalise),
		DimUnidadeSaude: BuildDimUnidadeSaude(unidades),
		DimAtendimento:  BuildDimAtendimento(atendAnalise),
		DimPaciente:     BuildDimPaciente(atendAnalise),
		DimMedicamento:  BuildDimMedicamento(medicamentos, p.Ref),
		DimDiagnostico:  BuildDimDiagnostico(cid, ciap),
	}
	res.RowCounts[gold.FileDimTempo] = len(set.DimTempo)
	res.RowCounts[gold.FileDimUnidadeSaude] = len(set.DimUnidadeSaude)
	res.RowCounts[gold.FileDimAtendimento] = len(set.DimAtendimento)
	res.RowCounts[gold.FileDimPaciente] = len(set.DimPaciente)
	res.RowCounts[gold.FileDimMedicamento] = len(set.DimMedicamento)
	res.RowCounts[gold.FileDimDiagnostico] = len(set.DimDiagnostico)
	log.Info().
		Int("dim_tempo", len(set.DimTempo)).
		Int("dim_paciente", len(set.DimPaciente)).
		Int("dim_medicamento", len(set.DimMedicamento)).
		Int("dim_diagnostico", len(set.DimDiagnostico)).
		Msg("dimensions built")

	res.Stage = StageBuildFacts
	ctxs := buildAttendanceContexts(atendAnalise)
	lookups := NewLookups(set)
	set.FatoPrescricao = BuildFatoPrescricao(medLines, medPrescritos, atendRegs, ctxs, set.DimMedicamento, lookups)
	set.FatoDiagnostico = BuildFatoDiagnostico(atendAnalise, atendRegs, lookups)
	set.FatoAtendimentoResumo = BuildFatoAtendimentoResumo(atendAnalise, medLines, medPrescritos, atendRegs, ctxs, lookups)
	res.RowCounts[gold.FileFatoPrescricao] = len(set.FatoPrescricao)
	res.RowCounts[gold.FileFatoDiagnostico] = len(set.FatoDiagnostico)
	res.RowCounts[gold.FileFatoAtendimentoResumo] = len(set.FatoAtendimentoResumo)
	for i := range set.FatoPrescricao {
		f := &set.FatoPrescricao[i]
		if f.EAntibiotico {
			res.Antibiotics++
		}
		if f.EPrescricaoApropriada {
			res.Appropriate++
		}
		if f.EPrescricaoInadequada {
			res.Inadequate++
		}
	}
	log.Info().
		Int("fato_prescricao", len(set.FatoPrescricao)).
		Int("fato_diagnostico", len(set.FatoDiagnostico)).
		Int("fato_atendimento_resumo", len(set.FatoAtendimentoResumo)).
		Int("antibioticos", res.Antibiotics).
		Msg("facts built")

	if err := p.Gold.WriteSet(set); err != nil {
		return fail(StageBuildFacts, err)
	}

	// Validation reads the written files back so it also proves that the
	// gold layer round-trips through Parquet.
	res.Stage = StageValidate
	written, err := p.Gold.ReadSet()
	if err != nil {
		return fail(StageValidate, err)
	}
	res.Violations = ValidateStar(written)
	if len(res.Violations) > 0 {
		res.Stage = StageFailed
		log.Error().Int("violations", len(res.Violations)).Msg("referential integrity check failed")
		return res
	}

	res.Stage = StageDone
	log.Info().Dur("elapsed", time.Since(res.Started)).Msg("silver to gold build complete")
	return res
}

// Summary renders a human-readable run report.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run %s\n", r.RunID)
	fmt.Fprintf(&b, "Stage:    %s\n", r.Stage)
	fmt.Fprintf(&b, "Duration: %s\n", r.Duration.Round(time.Millisecond))
	b.WriteString("\nTables:\n")
	for _, name := range []string{
		gold.FileDimTempo, gold.FileDimUnidadeSaude, gold.FileDimAtendimento,
		gold.FileDimPaciente, gold.FileDimMedicamento, gold.FileDimDiagnostico,
		gold.FileFatoPrescricao, gold.FileFatoDiagnostico, gold.FileFatoAtendimentoResumo,
	} {
		if n, ok := r.RowCounts[name]; ok {
			fmt.Fprintf(&b, "  %-32s %8d rows\n", name, n)
		}
	}
	fmt.Fprintf(&b, "\nAntibiotic prescriptions: %d (appropriate %d, inadequate %d)\n",
		r.Antibiotics, r.Appropriate, r.Inadequate)
	if len(r.Violations) > 0 {
		fmt.Fprintf(&b, "\nIntegrity violations: %d\n", len(r.Violations))
		max := len(r.Violations)
		if max > 20 {
			max = 20
		}
		for _, v := range r.Violations[:max] {
			fmt.Fprintf(&b, "  %s\n", v)
		}
		if len(r.Violations) > max {
			fmt.Fprintf(&b, "  ... and %d more\n", len(r.Violations)-max)
		}
	}
	if r.Err != nil {
		fmt.Fprintf(&b, "\nError: %v\n", r.Err)
	}
	return b.String()
}
