// Package silver models the normalized, de-identified input layer of the
// pipeline. Each type mirrors one silver Parquet table; column names are
// the stable snake_case contract produced by the upstream cleaning stage.
package silver

// Atendimento is one attendance row from TAB_ATENDIMENTO. Only the
// health-unit link is consumed here; the analytical attendance attributes
// live in AtendimentoAnalise.
type Atendimento struct {
	CodAtendimento  string `parquet:"cod_atendimento"`
	CodUnidadeSaude string `parquet:"cod_unidade_saude"`
}

// AtendimentoAnalise is one (attendance, diagnosis) row from
// TAB_ATENDIMENTO_ANALISE: the source has one row per diagnosis recorded
// in an attendance, so attendance-level reads must deduplicate first.
type AtendimentoAnalise struct {
	CodAtendimento  string   `parquet:"cod_atendimento"`
	CodPaciente     string   `parquet:"cod_paciente"`
	DataAtendimento *string  `parquet:"data_atendimento,optional"`
	Especialidade   string   `parquet:"especialidade"`
	PeriodoExtracao string   `parquet:"periodo_extracao"`
	Sexo            *string  `parquet:"sexo,optional"`
	Idade           *float64 `parquet:"idade,optional"`
	CodCidCiap      *string  `parquet:"cod_cid_ciap,optional"`
	EDiagInfeccioso bool     `parquet:"e_diag_infeccioso"`
	DiagnosticarPor string   `parquet:"diagnosticar_por"`
}

// UnidadeSaude is one health-unit row from TAB_UNIDADE_SAUDE.
type UnidadeSaude struct {
	CodUnidadeSaude string `parquet:"cod_unidade_saude"`
	Tipo            string `parquet:"tipo"`
	EAnalizada      bool   `parquet:"e_analizada"`
}

// Medicamento is one medication catalog row from TAB_MEDICAMENTO.
type Medicamento struct {
	CodMedicamento      string   `parquet:"cod_medicamento"`
	CompostoQuimico     *string  `parquet:"composto_quimico,optional"`
	TipoUso             *string  `parquet:"tipo_uso,optional"`
	UnidadeApresentacao *string  `parquet:"unidade_apresentacao,optional"`
	Concentracao        *float64 `parquet:"concentracao,optional"`
	EAntibiotico        bool     `parquet:"e_antibiotico"`
}

// MedPrescrito is one prescribed-medication line from TAB_MED_PRESCRITO,
// carrying the dispensing quantities.
type MedPrescrito struct {
	CodAtendimento string   `parquet:"cod_atendimento"`
	CodMedicamento string   `parquet:"cod_medicamento"`
	Quantidade     *float64 `parquet:"quantidade,optional"`
	QtdReceita     *float64 `parquet:"qtd_receita,optional"`
}

// MedPrescritoAnalise is one prescribed-medication line from
// TAB_MEDPRESCRITO_ANALISE, the grain-defining table of the prescription
// fact: one row per prescription line with antibiotic analysis attached.
type MedPrescritoAnalise struct {
	CodAtendimento string   `parquet:"cod_atendimento"`
	CodMedicamento string   `parquet:"cod_medicamento"`
	Duracao        *float64 `parquet:"duracao,optional"`
	Concentracao   *float64 `parquet:"concentracao,optional"`
	EAntibiotico   bool     `parquet:"e_antibiotico"`
}

// CidDiagnostico is one clinical-classification (CID) vocabulary row from
// TAB_CID_DIAGNOSTICO.
type CidDiagnostico struct {
	CodCid       string `parquet:"cod_cid"`
	DiagOriginal string `parquet:"diag_original"`
	DiagAgrupado string `parquet:"diag_agrupado"`
	DiagAnalise  string `parquet:"diag_analise"`
	EInfeccao    bool   `parquet:"e_infeccao"`
}

// CiapDiagnostico is one primary-care (CIAP) vocabulary row from
// TAB_CIAP_DIAGNOSTICO.
type CiapDiagnostico struct {
	CodCiap      string `parquet:"cod_ciap"`
	DiagOriginal string `parquet:"diag_original"`
	DiagAgrupado string `parquet:"diag_agrupado"`
	DiagAnalise  string `parquet:"diag_analise"`
	EInfeccao    bool   `parquet:"e_infeccao"`
}
