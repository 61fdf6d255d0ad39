package gold

import (
	"fmt"
	"os"
	"path/filepath"

	"camonet/internal/table"
)

// Fixed output file names of the gold layer.
const (
	FileDimTempo              = "dim_tempo.parquet"
	FileDimUnidadeSaude       = "dim_unidade_saude.parquet"
	FileDimAtendimento        = "dim_atendimento.parquet"
	FileDimPaciente           = "dim_paciente.parquet"
	FileDimMedicamento        = "dim_medicamento.parquet"
	FileDimDiagnostico        = "dim_diagnostico.parquet"
	FileFatoPrescricao        = "fato_prescricao.parquet"
	FileFatoDiagnostico       = "fato_diagnostico.parquet"
	FileFatoAtendimentoResumo = "fato_atendimento_resumo.parquet"
)

// Set is a fully built star schema held in memory.
type Set struct {
	DimTempo              []DimTempo
	DimUnidadeSaude       []DimUnidadeSaude
	DimAtendimento        []DimAtendimento
	DimPaciente           []DimPaciente
	DimMedicamento        []DimMedicamento
	DimDiagnostico        []DimDiagnostico
	FatoPrescricao        []FatoPrescricao
	FatoDiagnostico       []FatoDiagnostico
	FatoAtendimentoResumo []FatoAtendimentoResumo
}

// Layer reads and writes gold tables under a directory. Writes overwrite
// the previous run's files in full.
type Layer struct {
	Dir string
}

// EnsureDir creates the gold directory if it does not exist.
func (l Layer) EnsureDir() error {
	if err := os.MkdirAll(l.Dir, 0o755); err != nil {
		return fmt.Errorf("create gold dir: %w", err)
	}
	return nil
}

func write[T any](dir, name string, rows []T) (int, error) {
	n, err := table.WriteAll(filepath.Join(dir, name), rows)
	if err != nil {
		return 0, fmt.Errorf("gold table %s: %w", name, err)
	}
	return n, nil
}

func read[T any](dir, name string) ([]T, error) {
	rows, err := table.ReadAll[T](filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("gold table %s: %w", name, err)
	}
	return rows, nil
}

// WriteSet writes all nine tables of a star schema.
func (l Layer) WriteSet(s *Set) error {
	if _, err := write(l.Dir, FileDimTempo, s.DimTempo); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileDimUnidadeSaude, s.DimUnidadeSaude); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileDimAtendimento, s.DimAtendimento); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileDimPaciente, s.DimPaciente); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileDimMedicamento, s.DimMedicamento); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileDimDiagnostico, s.DimDiagnostico); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileFatoPrescricao, s.FatoPrescricao); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileFatoDiagnostico, s.FatoDiagnostico); err != nil {
		return err
	}
	if _, err := write(l.Dir, FileFatoAtendimentoResumo, s.FatoAtendimentoResumo); err != nil {
		return err
	}
	return nil
}

// ReadSet reads all nine tables back from disk.
func (l Layer) ReadSet() (*Set, error) {
	var (
		s   Set
		err error
	)
	if s.DimTempo, err = read[DimTempo](l.Dir, FileDimTempo); err != nil {
		return nil, err
	}
	if s.DimUnidadeSaude, err = read[DimUnidadeSaude](l.Dir, FileDimUnidadeSaude); err != nil {
		return nil, err
	}
	if s.DimAtendimento, err = read[DimAtendimento](l.Dir, FileDimAtendimento); err != nil {
		return nil, err
	}
	if s.DimPaciente, err = read[DimPaciente](l.Dir, FileDimPaciente); err != nil {
		return nil, err
	}
	if s.DimMedicamento, err = read[DimMedicamento](l.Dir, FileDimMedicamento); err != nil {
		return nil, err
	}
	if s.DimDiagnostico, err = read[DimDiagnostico](l.Dir, FileDimDiagnostico); err != nil {
		return nil, err
	}
	if s.FatoPrescricao, err = read[FatoPrescricao](l.Dir, FileFatoPrescricao); err != nil {
		return nil, err
	}
	if s.FatoDiagnostico, err = read[FatoDiagnostico](l.Dir, FileFatoDiagnostico); err != nil {
		return nil, err
	}
	if s.FatoAtendimentoResumo, err = read[FatoAtendimentoResumo](l.Dir, FileFatoAtendimentoResumo); err != nil {
		return nil, err
	}
	return &s, nil
}
