// Package gold models the dimensional star schema produced by the
// pipeline: six dimensions and three facts, written as Zstd Parquet.
//
// Surrogate keys (sk_*) are dense 1..N int64 sequences assigned per run.
// The whole layer is rebuilt on every run, so keys are not stable across
// runs; downstream consumers must rejoin on the natural (cod_*) keys.
// Fact foreign keys are optional columns: an unresolved dimension lookup
// is stored as null, never dropped.
package gold

// DimTempo has one row per distinct attendance date, keys assigned in
// ascending date order. data_completa is formatted YYYY-MM-DD.
type DimTempo struct {
	SkTempo      int64  `parquet:"sk_tempo"`
	DataCompleta string `parquet:"data_completa"`
	Ano          int32  `parquet:"ano"`
	Mes          int32  `parquet:"mes"`
	Trimestre    int32  `parquet:"trimestre"`
	Semestre     int32  `parquet:"semestre"`
	DiaSemana    int32  `parquet:"dia_semana"` // 0 = Monday .. 6 = Sunday
	NomeMes      string `parquet:"nome_mes"`
	AnoMes       string `parquet:"ano_mes"`
}

// DimUnidadeSaude has one row per health-unit code.
type DimUnidadeSaude struct {
	SkUnidadeSaude  int64  `parquet:"sk_unidade_saude"`
	CodUnidadeSaude string `parquet:"cod_unidade_saude"`
	Tipo            string `parquet:"tipo"`
	EAnalizada      bool   `parquet:"e_analizada"`
}

// DimAtendimento has one row per attendance code.
type DimAtendimento struct {
	SkAtendimento   int64  `parquet:"sk_atendimento"`
	CodAtendimento  string `parquet:"cod_atendimento"`
	Especialidade   string `parquet:"especialidade"`
	PeriodoExtracao string `parquet:"periodo_extracao"`
}

// DimPaciente has one row per patient code. Conflicting per-visit values
// are resolved by aggregation: sex is the most frequent observed value,
// age the rounded mean of observed ages.
type DimPaciente struct {
	SkPaciente  int64   `parquet:"sk_paciente"`
	CodPaciente string  `parquet:"cod_paciente"`
	Sexo        *string `parquet:"sexo,optional"`
	FaixaEtaria string  `parquet:"faixa_etaria"`
	IdadeAnos   *int64  `parquet:"idade_anos,optional"`
}

// DimMedicamento has one row per medication code, enriched with the
// antimicrobial classifications.
type DimMedicamento struct {
	SkMedicamento       int64    `parquet:"sk_medicamento"`
	CodMedicamento      string   `parquet:"cod_medicamento"`
	CompostoQuimico     *string  `parquet:"composto_quimico,optional"`
	TipoUso             *string  `parquet:"tipo_uso,optional"`
	UnidadeApresentacao *string  `parquet:"unidade_apresentacao,optional"`
	Concentracao        *float64 `parquet:"concentracao,optional"`
	EAntibiotico        bool     `parquet:"e_antibiotico"`
	ClasseWhoAware      string   `parquet:"classe_who_aware"`
	EspectroAcao        string   `parquet:"espectro_acao"`
	ViaAdministracao    string   `parquet:"via_administracao"` // constant placeholder pending real data
}

// DimDiagnostico unions the CID and CIAP vocabularies into one coded
// space, deduplicated by code value; tipo_diagnostico records the source
// vocabulary of the surviving row.
type DimDiagnostico struct {
	SkDiagnostico     int64  `parquet:"sk_diagnostico"`
	CodigoDiagnostico string `parquet:"codigo_diagnostico"`
	DiagOriginal      string `parquet:"diag_original"`
	DiagAgrupado      string `parquet:"diag_agrupado"`
	DiagAnalise       string `parquet:"diag_analise"`
	EInfeccao         bool   `parquet:"e_infeccao"`
	TipoDiagnostico   string `parquet:"tipo_diagnostico"` // CID | CIAP
}

// FatoPrescricao has one row per prescribed-medication line.
//
// e_diagnostico_infeccioso reflects the whole attendance: prescriptions
// and diagnoses are recorded independently within an attendance and
// cannot be paired at sub-attendance granularity, so each prescription is
// judged against the attendance's aggregate infectious status, and
// sk_diagnostico points at the attendance's principal diagnosis.
type FatoPrescricao struct {
	SkPrescricao           int64    `parquet:"sk_prescricao"`
	SkAtendimento          *int64   `parquet:"sk_atendimento,optional"`
	SkPaciente             *int64   `parquet:"sk_paciente,optional"`
	SkMedicamento          *int64   `parquet:"sk_medicamento,optional"`
	SkTempo                *int64   `parquet:"sk_tempo,optional"`
	SkUnidadeSaude         *int64   `parquet:"sk_unidade_saude,optional"`
	SkDiagnostico          *int64   `parquet:"sk_diagnostico,optional"`
	Quantidade             *float64 `parquet:"quantidade,optional"`
	QtdReceita             *float64 `parquet:"qtd_receita,optional"`
	Duracao                *float64 `parquet:"duracao,optional"`
	Concentracao           *float64 `parquet:"concentracao,optional"`
	EAntibiotico           bool     `parquet:"e_antibiotico"`
	EDiagnosticoInfeccioso bool     `parquet:"e_diagnostico_infeccioso"`
	EPrescricaoApropriada  bool     `parquet:"e_prescricao_apropriada"`
	EPrescricaoInadequada  bool     `parquet:"e_prescricao_inadequada"`
	TipoUso                *string  `parquet:"tipo_uso,optional"`
	EspectroAcao           *string  `parquet:"espectro_acao,optional"`
	ClasseWhoAware         *string  `parquet:"classe_who_aware,optional"`
}

// FatoDiagnostico has one row per (attendance, diagnosis) pair.
type FatoDiagnostico struct {
	SkDiagnosticoAtendimento int64  `parquet:"sk_diagnostico_atendimento"`
	SkAtendimento            *int64 `parquet:"sk_atendimento,optional"`
	SkPaciente               *int64 `parquet:"sk_paciente,optional"`
	SkDiagnostico            *int64 `parquet:"sk_diagnostico,optional"`
	SkTempo                  *int64 `parquet:"sk_tempo,optional"`
	SkUnidadeSaude           *int64 `parquet:"sk_unidade_saude,optional"`
	DiagnosticarPor          string `parquet:"diagnosticar_por"`
	EDiagInfeccioso          bool   `parquet:"e_diag_infeccioso"`
}

// FatoAtendimentoResumo has one row per attendance. Count measures are
// zero (not null) when the attendance has no prescriptions or diagnoses:
// "nothing recorded" is a valid state, distinct from a failed join.
// sk_diagnostico references the attendance's principal diagnosis.
type FatoAtendimentoResumo struct {
	SkAtendimento                *int64 `parquet:"sk_atendimento,optional"`
	SkPaciente                   *int64 `parquet:"sk_paciente,optional"`
	SkTempo                      *int64 `parquet:"sk_tempo,optional"`
	SkUnidadeSaude               *int64 `parquet:"sk_unidade_saude,optional"`
	SkDiagnostico                *int64 `parquet:"sk_diagnostico,optional"`
	Especialidade                string `parquet:"especialidade"`
	TotalDiagnosticos            int64  `parquet:"total_diagnosticos"`
	TotalMedicamentosPrescritos  int64  `parquet:"total_medicamentos_prescritos"`
	TotalAntibioticosPrescritos  int64  `parquet:"total_antibioticos_prescritos"`
	TotalDiagnosticosInfecciosos int64  `parquet:"total_diagnosticos_infecciosos"`
	TevePrescricaoAntibiotico    bool   `parquet:"teve_prescricao_antibiotico"`
	TeveDiagnosticoInfeccioso    bool   `parquet:"teve_diagnostico_infeccioso"`
}
