package star

import (
	"testing"

	"camonet/internal/classify"
	"camonet/internal/gold"
	"camonet/internal/silver"
)

// fixture builds a small but complete silver layer: two attendances at
// one health unit, one infectious, two prescription lines.
type fixture struct {
	regs     []silver.Atendimento
	atend    []silver.AtendimentoAnalise
	unidades []silver.UnidadeSaude
	meds     []silver.Medicamento
	presc    []silver.MedPrescrito
	lines    []silver.MedPrescritoAnalise
	cid      []silver.CidDiagnostico
}

func newFixture() *fixture {
	infeccioso := atendRow("A1", "P1", "2024-01-01")
	infeccioso.CodCidCiap = strPtr("J06")
	infeccioso.EDiagInfeccioso = true
	naoInfeccioso := atendRow("A1", "P1", "2024-01-01")
	naoInfeccioso.CodCidCiap = strPtr("Z00")
	outro := atendRow("A2", "P2", "2024-02-01")
	outro.CodCidCiap = strPtr("Z00")

	return &fixture{
		regs: []silver.Atendimento{
			{CodAtendimento: "A1", CodUnidadeSaude: "U1"},
			{CodAtendimento: "A2", CodUnidadeSaude: "U1"},
		},
		// A1's non-infectious diagnosis comes first so the principal
		// diagnosis must skip past it.
		atend: []silver.AtendimentoAnalise{naoInfeccioso, infeccioso, outro},
		unidades: []silver.UnidadeSaude{
			{CodUnidadeSaude: "U1", Tipo: "UBS", EAnalizada: true},
		},
		meds: []silver.Medicamento{
			{CodMedicamento: "M1", CompostoQuimico: strPtr("AMOXICILINA 500MG"), EAntibiotico: true, TipoUso: strPtr("Oral")},
			{CodMedicamento: "M2", CompostoQuimico: strPtr("PARACETAMOL 750MG")},
		},
		presc: []silver.MedPrescrito{
			{CodAtendimento: "A1", CodMedicamento: "M1", Quantidade: f64Ptr(21), QtdReceita: f64Ptr(1)},
		},
		lines: []silver.MedPrescritoAnalise{
			{CodAtendimento: "A1", CodMedicamento: "M1", Duracao: f64Ptr(7), EAntibiotico: true},
			{CodAtendimento: "A2", CodMedicamento: "M2"},
		},
		cid: []silver.CidDiagnostico{
			{CodCid: "J06", DiagOriginal: "IVAS", DiagAgrupado: "Respiratório", DiagAnalise: "Infecção respiratória", EInfeccao: true},
			{CodCid: "Z00", DiagOriginal: "Exame geral", DiagAgrupado: "Administrativo", DiagAnalise: "Sem doença"},
		},
	}
}

func (fx *fixture) buildDims() *gold.Set {
	return &gold.Set{
		DimTempo:        BuildDimTempo(fx.atend),
		DimUnidadeSaude: BuildDimUnidadeSaude(fx.unidades),
		DimAtendimento:  BuildDimAtendimento(fx.atend),
		DimPaciente:     BuildDimPaciente(fx.atend),
		DimMedicamento:  BuildDimMedicamento(fx.meds, classify.DefaultReference()),
		DimDiagnostico:  BuildDimDiagnostico(fx.cid, nil),
	}
}

func TestBuildFatoPrescricao(t *testing.T) {
	fx := newFixture()
	set := fx.buildDims()
	ctxs := buildAttendanceContexts(fx.atend)
	l := NewLookups(set)

	facts := BuildFatoPrescricao(fx.lines, fx.presc, fx.regs, ctxs, set.DimMedicamento, l)
	if len(facts) != len(fx.lines) {
		t.Fatalf("row count changed: %d lines in, %d facts out", len(fx.lines), len(facts))
	}

	f := facts[0]
	if f.SkPrescricao != 1 {
		t.Errorf("sk_prescricao = %d", f.SkPrescricao)
	}
	for name, fk := range map[string]*int64{
		"sk_atendimento":   f.SkAtendimento,
		"sk_paciente":      f.SkPaciente,
		"sk_medicamento":   f.SkMedicamento,
		"sk_tempo":         f.SkTempo,
		"sk_unidade_saude": f.SkUnidadeSaude,
		"sk_diagnostico":   f.SkDiagnostico,
	} {
		if fk == nil {
			t.Errorf("%s unexpectedly null", name)
		}
	}
	if f.Quantidade == nil || *f.Quantidade != 21 {
		t.Errorf("quantidade = %v, want 21 from prescribed-quantity join", f.Quantidade)
	}
	if !f.EAntibiotico || !f.EDiagnosticoInfeccioso {
		t.Errorf("flags = %+v", f)
	}
	if !f.EPrescricaoApropriada || f.EPrescricaoInadequada {
		t.Errorf("antibiotic with infectious diagnosis must be appropriate: %+v", f)
	}
	if f.ClasseWhoAware == nil || *f.ClasseWhoAware != classify.ClassAccess {
		t.Errorf("classe_who_aware = %v", f.ClasseWhoAware)
	}
	// The principal diagnosis of A1 is the infectious J06, not the
	// earlier Z00 row.
	var skJ06 int64
	for _, d := range set.DimDiagnostico {
		if d.CodigoDiagnostico == "J06" {
			skJ06 = d.SkDiagnostico
		}
	}
	if *f.SkDiagnostico != skJ06 {
		t.Errorf("sk_diagnostico = %d, want J06's key %d", *f.SkDiagnostico, skJ06)
	}

	g := facts[1]
	if g.EAntibiotico || g.EPrescricaoApropriada || g.EPrescricaoInadequada {
		t.Errorf("non-antibiotic must carry no adequacy flags: %+v", g)
	}
	if g.Quantidade != nil {
		t.Errorf("A2/M2 has no prescribed-quantity row, quantidade = %v", g.Quantidade)
	}
}

func TestBuildFatoPrescricaoUnresolvedLookups(t *testing.T) {
	fx := newFixture()
	set := fx.buildDims()
	ctxs := buildAttendanceContexts(fx.atend)
	l := NewLookups(set)

	orphan := []silver.MedPrescritoAnalise{
		{CodAtendimento: "GHOST", CodMedicamento: "NOPE", EAntibiotico: true},
	}
	facts := BuildFatoPrescricao(orphan, nil, fx.regs, ctxs, set.DimMedicamento, l)
	if len(facts) != 1 {
		t.Fatalf("orphan row must be kept, got %d facts", len(facts))
	}
	f := facts[0]
	if f.SkAtendimento != nil || f.SkMedicamento != nil || f.SkPaciente != nil || f.SkTempo != nil || f.SkUnidadeSaude != nil || f.SkDiagnostico != nil {
		t.Errorf("unresolved lookups must be null, got %+v", f)
	}
	// An unknown attendance has no diagnosis context, so the antibiotic
	// counts as inadequate.
	if !f.EPrescricaoInadequada {
		t.Errorf("orphan antibiotic should be inadequate")
	}
}

func TestBuildFatoDiagnostico(t *testing.T) {
	fx := newFixture()
	noCode := atendRow("A2", "P2", "2024-02-01")
	fx.atend = append(fx.atend, noCode)
	set := fx.buildDims()
	l := NewLookups(set)

	facts := BuildFatoDiagnostico(fx.atend, fx.regs, l)
	if len(facts) != len(fx.atend) {
		t.Fatalf("row count changed: %d in, %d out", len(fx.atend), len(facts))
	}
	for i, f := range facts {
		if f.SkDiagnosticoAtendimento != int64(i+1) {
			t.Errorf("sk not dense at %d: %+v", i, f)
		}
	}
	last := facts[len(facts)-1]
	if last.SkDiagnostico != nil {
		t.Errorf("row without a code must keep null sk_diagnostico")
	}
	if last.SkAtendimento == nil || last.SkUnidadeSaude == nil {
		t.Errorf("other keys still resolve: %+v", last)
	}
}

func TestBuildFatoAtendimentoResumo(t *testing.T) {
	fx := newFixture()
	set := fx.buildDims()
	ctxs := buildAttendanceContexts(fx.atend)
	l := NewLookups(set)

	facts := BuildFatoAtendimentoResumo(fx.atend, fx.lines, fx.presc, fx.regs, ctxs, l)
	if len(facts) != 2 {
		t.Fatalf("expected one row per attendance, got %d", len(facts))
	}

	a1 := facts[0]
	if a1.TotalDiagnosticos != 2 || a1.TotalDiagnosticosInfecciosos != 1 {
		t.Errorf("A1 diagnosis counts = %d/%d", a1.TotalDiagnosticos, a1.TotalDiagnosticosInfecciosos)
	}
	if a1.TotalMedicamentosPrescritos != 1 || a1.TotalAntibioticosPrescritos != 1 {
		t.Errorf("A1 prescription counts = %d/%d", a1.TotalMedicamentosPrescritos, a1.TotalAntibioticosPrescritos)
	}
	if !a1.TevePrescricaoAntibiotico || !a1.TeveDiagnosticoInfeccioso {
		t.Errorf("A1 flags = %+v", a1)
	}

	a2 := facts[1]
	if a2.TotalAntibioticosPrescritos != 0 || a2.TevePrescricaoAntibiotico {
		t.Errorf("A2 has no antibiotics: %+v", a2)
	}
}

func TestBuildFatoAtendimentoResumoCountSources(t *testing.T) {
	fx := newFixture()
	// The dispensing table carries two lines for A1 while the analysis
	// table carries one; the total must follow the dispensing table and
	// the antibiotic count the analysis table.
	fx.presc = []silver.MedPrescrito{
		{CodAtendimento: "A1", CodMedicamento: "M1"},
		{CodAtendimento: "A1", CodMedicamento: "M2"},
	}
	fx.lines = []silver.MedPrescritoAnalise{
		{CodAtendimento: "A1", CodMedicamento: "M1", EAntibiotico: true},
	}
	set := fx.buildDims()
	ctxs := buildAttendanceContexts(fx.atend)
	l := NewLookups(set)

	facts := BuildFatoAtendimentoResumo(fx.atend, fx.lines, fx.presc, fx.regs, ctxs, l)
	a1 := facts[0]
	if a1.TotalMedicamentosPrescritos != 2 {
		t.Errorf("total_medicamentos_prescritos = %d, want 2 from the dispensing table", a1.TotalMedicamentosPrescritos)
	}
	if a1.TotalAntibioticosPrescritos != 1 || !a1.TevePrescricaoAntibiotico {
		t.Errorf("antibiotic count = %d, want 1 from the analysis lines", a1.TotalAntibioticosPrescritos)
	}

	a2 := facts[1]
	if a2.TotalMedicamentosPrescritos != 0 || a2.TotalAntibioticosPrescritos != 0 {
		t.Errorf("A2 has nothing prescribed: %+v", a2)
	}
}

func TestBuildFatoAtendimentoResumoZeroDefaults(t *testing.T) {
	empty := atendRow("A9", "P9", "2024-03-01")
	atend := []silver.AtendimentoAnalise{empty}
	set := &gold.Set{
		DimTempo:       BuildDimTempo(atend),
		DimAtendimento: BuildDimAtendimento(atend),
		DimPaciente:    BuildDimPaciente(atend),
	}
	ctxs := buildAttendanceContexts(atend)
	l := NewLookups(set)

	facts := BuildFatoAtendimentoResumo(atend, nil, nil, nil, ctxs, l)
	f := facts[0]
	if f.TotalDiagnosticos != 0 || f.TotalMedicamentosPrescritos != 0 || f.TotalAntibioticosPrescritos != 0 {
		t.Errorf("counts must default to zero: %+v", f)
	}
	if f.TevePrescricaoAntibiotico || f.TeveDiagnosticoInfeccioso {
		t.Errorf("flags must default to false: %+v", f)
	}
	if f.SkDiagnostico != nil || f.SkUnidadeSaude != nil {
		t.Errorf("unresolvable keys must be null: %+v", f)
	}
}
