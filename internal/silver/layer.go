package silver

import (
	"fmt"
	"path/filepath"

	"camonet/internal/table"
)

// Fixed logical file names of the silver layer.
const (
	FileAtendimento        = "TAB_ATENDIMENTO.parquet"
	FileAtendimentoAnalise = "TAB_ATENDIMENTO_ANALISE.parquet"
	FileUnidadeSaude       = "TAB_UNIDADE_SAUDE.parquet"
	FileMedicamento        = "TAB_MEDICAMENTO.parquet"
	FileMedPrescrito       = "TAB_MED_PRESCRITO.parquet"
	FileMedPrescritoAnal   = "TAB_MEDPRESCRITO_ANALISE.parquet"
	FileCidDiagnostico     = "TAB_CID_DIAGNOSTICO.parquet"
	FileCiapDiagnostico    = "TAB_CIAP_DIAGNOSTICO.parquet"
)

// Layer reads silver tables from a directory. A missing table is a fatal
// error for the stage that needs it; there is no partial read.
type Layer struct {
	Dir string
}

func read[T any](dir, name string) ([]T, error) {
	rows, err := table.ReadAll[T](filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("silver table %s: %w", name, err)
	}
	return rows, nil
}

func (l Layer) Atendimentos() ([]Atendimento, error) {
	return read[Atendimento](l.Dir, FileAtendimento)
}

func (l Layer) AtendimentosAnalise() ([]AtendimentoAnalise, error) {
	return read[AtendimentoAnalise](l.Dir, FileAtendimentoAnalise)
}

func (l Layer) UnidadesSaude() ([]UnidadeSaude, error) {
	return read[UnidadeSaude](l.Dir, FileUnidadeSaude)
}

func (l Layer) Medicamentos() ([]Medicamento, error) {
	return read[Medicamento](l.Dir, FileMedicamento)
}

func (l Layer) MedPrescritos() ([]MedPrescrito, error) {
	return read[MedPrescrito](l.Dir, FileMedPrescrito)
}

func (l Layer) MedPrescritosAnalise() ([]MedPrescritoAnalise, error) {
	return read[MedPrescritoAnalise](l.Dir, FileMedPrescritoAnal)
}

func (l Layer) CidDiagnosticos() ([]CidDiagnostico, error) {
	return read[CidDiagnostico](l.Dir, FileCidDiagnostico)
}

func (l Layer) CiapDiagnosticos() ([]CiapDiagnostico, error) {
	return read[CiapDiagnostico](l.Dir, FileCiapDiagnostico)
}
