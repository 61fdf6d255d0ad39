package star

import (
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"camonet/internal/classify"
	"camonet/internal/gold"
	"camonet/internal/silver"
	"camonet/internal/table"
)

// writeSilverFixture materializes the in-memory fixture as real silver
// parquet files.
func writeSilverFixture(t *testing.T, dir string, fx *fixture) {
	t.Helper()
	writeTable(t, dir, silver.FileAtendimento, fx.regs)
	writeTable(t, dir, silver.FileAtendimentoAnalise, fx.atend)
	writeTable(t, dir, silver.FileUnidadeSaude, fx.unidades)
	writeTable(t, dir, silver.FileMedicamento, fx.meds)
	writeTable(t, dir, silver.FileMedPrescrito, fx.presc)
	writeTable(t, dir, silver.FileMedPrescritoAnal, fx.lines)
	writeTable(t, dir, silver.FileCidDiagnostico, fx.cid)
	writeTable(t, dir, silver.FileCiapDiagnostico, []silver.CiapDiagnostico{
		{CodCiap: "R74", DiagOriginal: "IVAS", DiagAgrupado: "Respiratório", DiagAnalise: "Infecção respiratória", EInfeccao: true},
	})
}

func writeTable[T any](t *testing.T, dir, name string, rows []T) {
	t.Helper()
	if _, err := table.WriteAll(filepath.Join(dir, name), rows); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func newTestPipeline(t *testing.T, silverDir, goldDir string) *Pipeline {
	t.Helper()
	return &Pipeline{
		Silver: silver.Layer{Dir: silverDir},
		Gold:   gold.Layer{Dir: goldDir},
		Ref:    classify.DefaultReference(),
		Log:    zerolog.Nop(),
	}
}

func TestPipelineRun(t *testing.T) {
	silverDir := t.TempDir()
	goldDir := filepath.Join(t.TempDir(), "gold")
	writeSilverFixture(t, silverDir, newFixture())

	res := newTestPipeline(t, silverDir, goldDir).Run()
	if res.Failed() {
		t.Fatalf("run failed: stage=%s err=%v violations=%v", res.Stage, res.Err, res.Violations)
	}
	if res.Stage != StageDone {
		t.Fatalf("stage = %s, want %s", res.Stage, StageDone)
	}
	if res.RunID == "" {
		t.Error("run id must be set")
	}

	// All nine tables written and counted.
	for name, want := range map[string]int{
		gold.FileDimTempo:              2,
		gold.FileDimUnidadeSaude:       1,
		gold.FileDimAtendimento:        2,
		gold.FileDimPaciente:           2,
		gold.FileDimMedicamento:        2,
		gold.FileDimDiagnostico:        3,
		gold.FileFatoPrescricao:        2,
		gold.FileFatoDiagnostico:       3,
		gold.FileFatoAtendimentoResumo: 2,
	} {
		if got := res.RowCounts[name]; got != want {
			t.Errorf("%s rows = %d, want %d", name, got, want)
		}
	}
	if res.Antibiotics != 1 || res.Appropriate != 1 || res.Inadequate != 0 {
		t.Errorf("indicators = %d/%d/%d", res.Antibiotics, res.Appropriate, res.Inadequate)
	}

	summary := res.Summary()
	for _, part := range []string{res.RunID, string(StageDone), gold.FileFatoPrescricao} {
		if !strings.Contains(summary, part) {
			t.Errorf("summary missing %q:\n%s", part, summary)
		}
	}
}

func TestPipelineRunIsDeterministic(t *testing.T) {
	silverDir := t.TempDir()
	writeSilverFixture(t, silverDir, newFixture())

	goldA := filepath.Join(t.TempDir(), "gold")
	goldB := filepath.Join(t.TempDir(), "gold")
	if res := newTestPipeline(t, silverDir, goldA).Run(); res.Failed() {
		t.Fatalf("first run failed: %v", res.Err)
	}
	if res := newTestPipeline(t, silverDir, goldB).Run(); res.Failed() {
		t.Fatalf("second run failed: %v", res.Err)
	}

	setA, err := gold.Layer{Dir: goldA}.ReadSet()
	if err != nil {
		t.Fatal(err)
	}
	setB, err := gold.Layer{Dir: goldB}.ReadSet()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(setA, setB) {
		t.Error("two runs over the same input must produce identical tables")
	}
}

func TestPipelineRunMissingSilverTable(t *testing.T) {
	silverDir := t.TempDir() // no files at all
	res := newTestPipeline(t, silverDir, filepath.Join(t.TempDir(), "gold")).Run()
	if !res.Failed() || res.Stage != StageFailed {
		t.Fatalf("missing input must fail the run: %+v", res)
	}
	if res.Err == nil {
		t.Fatal("expected an error")
	}
}

func TestPipelineOverwritesPreviousRun(t *testing.T) {
	silverDir := t.TempDir()
	goldDir := filepath.Join(t.TempDir(), "gold")

	fx := newFixture()
	writeSilverFixture(t, silverDir, fx)
	if res := newTestPipeline(t, silverDir, goldDir).Run(); res.Failed() {
		t.Fatalf("first run failed: %v", res.Err)
	}

	// Shrink the input and rerun; the gold layer must reflect only the
	// new input.
	fx.lines = fx.lines[:1]
	writeSilverFixture(t, silverDir, fx)
	res := newTestPipeline(t, silverDir, goldDir).Run()
	if res.Failed() {
		t.Fatalf("second run failed: %v", res.Err)
	}
	set, err := gold.Layer{Dir: goldDir}.ReadSet()
	if err != nil {
		t.Fatal(err)
	}
	if len(set.FatoPrescricao) != 1 {
		t.Errorf("fato_prescricao rows = %d, want 1 after rebuild", len(set.FatoPrescricao))
	}
}
