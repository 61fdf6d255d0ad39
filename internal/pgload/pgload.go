// Package pgload copies a built gold star schema into PostgreSQL for
// analytical serving. Each load is a full rebuild: the schema is applied
// idempotently, facts are truncated before dimensions, and every table
// is bulk-loaded with the COPY protocol.
package pgload

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"camonet/internal/gold"
)

//go:embed schema.sql
var schemaSQL string

// Loader writes gold tables to a PostgreSQL database.
type Loader struct {
	Pool *pgxpool.Pool
	Log  zerolog.Logger
}

// Connect opens a small pool against connStr and pings it.
func Connect(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parse connection: %w", err)
	}
	cfg.MaxConns = 4

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return pool, nil
}

// Load applies the schema and copies all nine tables in one transaction.
// It returns the per-table row counts.
func (l *Loader) Load(ctx context.Context, s *gold.Set) (map[string]int64, error) {
	start := time.Now()

	tx, err := l.Pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	// Facts first so the dimension truncates never hit a live reference.
	truncOrder := []string{
		"fato_atendimento_resumo", "fato_diagnostico", "fato_prescricao",
		"dim_diagnostico", "dim_medicamento", "dim_paciente",
		"dim_atendimento", "dim_unidade_saude", "dim_tempo",
	}
	for _, t := range truncOrder {
		if _, err := tx.Exec(ctx, "TRUNCATE "+t+" CASCADE"); err != nil {
			return nil, fmt.Errorf("truncate %s: %w", t, err)
		}
	}

	counts := make(map[string]int64, 9)
	copyTable := func(name string, cols []string, nrows int, row func(int) []any) error {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{name}, cols,
			pgx.CopyFromSlice(nrows, func(i int) ([]any, error) { return row(i), nil }))
		if err != nil {
			return fmt.Errorf("copy %s: %w", name, err)
		}
		counts[name] = n
		l.Log.Info().Str("table", name).Int64("rows", n).Msg("table loaded")
		return nil
	}

	if err := copyTable("dim_tempo",
		[]string{"sk_tempo", "data_completa", "ano", "mes", "trimestre", "semestre", "dia_semana", "nome_mes", "ano_mes"},
		len(s.DimTempo), func(i int) []any {
			d := &s.DimTempo[i]
			date, _ := time.Parse("2006-01-02", d.DataCompleta)
			return []any{d.SkTempo, date, d.Ano, d.Mes, d.Trimestre, d.Semestre, d.DiaSemana, d.NomeMes, d.AnoMes}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("dim_unidade_saude",
		[]string{"sk_unidade_saude", "cod_unidade_saude", "tipo", "e_analizada"},
		len(s.DimUnidadeSaude), func(i int) []any {
			d := &s.DimUnidadeSaude[i]
			return []any{d.SkUnidadeSaude, d.CodUnidadeSaude, d.Tipo, d.EAnalizada}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("dim_atendimento",
		[]string{"sk_atendimento", "cod_atendimento", "especialidade", "periodo_extracao"},
		len(s.DimAtendimento), func(i int) []any {
			d := &s.DimAtendimento[i]
			return []any{d.SkAtendimento, d.CodAtendimento, d.Especialidade, d.PeriodoExtracao}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("dim_paciente",
		[]string{"sk_paciente", "cod_paciente", "sexo", "faixa_etaria", "idade_anos"},
		len(s.DimPaciente), func(i int) []any {
			d := &s.DimPaciente[i]
			return []any{d.SkPaciente, d.CodPaciente, d.Sexo, d.FaixaEtaria, d.IdadeAnos}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("dim_medicamento",
		[]string{"sk_medicamento", "cod_medicamento", "composto_quimico", "tipo_uso", "unidade_apresentacao", "concentracao", "e_antibiotico", "classe_who_aware", "espectro_acao", "via_administracao"},
		len(s.DimMedicamento), func(i int) []any {
			d := &s.DimMedicamento[i]
			return []any{d.SkMedicamento, d.CodMedicamento, d.CompostoQuimico, d.TipoUso, d.UnidadeApresentacao, d.Concentracao, d.EAntibiotico, d.ClasseWhoAware, d.EspectroAcao, d.ViaAdministracao}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("dim_diagnostico",
		[]string{"sk_diagnostico", "codigo_diagnostico", "diag_original", "diag_agrupado", "diag_analise", "e_infeccao", "tipo_diagnostico"},
		len(s.DimDiagnostico), func(i int) []any {
			d := &s.DimDiagnostico[i]
			return []any{d.SkDiagnostico, d.CodigoDiagnostico, d.DiagOriginal, d.DiagAgrupado, d.DiagAnalise, d.EInfeccao, d.TipoDiagnostico}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("fato_prescricao",
		[]string{"sk_prescricao", "sk_atendimento", "sk_paciente", "sk_medicamento", "sk_tempo", "sk_unidade_saude", "sk_diagnostico", "quantidade", "qtd_receita", "duracao", "concentracao", "e_antibiotico", "e_diagnostico_infeccioso", "e_prescricao_apropriada", "e_prescricao_inadequada", "tipo_uso", "espectro_acao", "classe_who_aware"},
		len(s.FatoPrescricao), func(i int) []any {
			f := &s.FatoPrescricao[i]
			return []any{f.SkPrescricao, f.SkAtendimento, f.SkPaciente, f.SkMedicamento, f.SkTempo, f.SkUnidadeSaude, f.SkDiagnostico, f.Quantidade, f.QtdReceita, f.Duracao, f.Concentracao, f.EAntibiotico, f.EDiagnosticoInfeccioso, f.EPrescricaoApropriada, f.EPrescricaoInadequada, f.TipoUso, f.EspectroAcao, f.ClasseWhoAware}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("fato_diagnostico",
		[]string{"sk_diagnostico_atendimento", "sk_atendimento", "sk_paciente", "sk_diagnostico", "sk_tempo", "sk_unidade_saude", "diagnosticar_por", "e_diag_infeccioso"},
		len(s.FatoDiagnostico), func(i int) []any {
			f := &s.FatoDiagnostico[i]
			return []any{f.SkDiagnosticoAtendimento, f.SkAtendimento, f.SkPaciente, f.SkDiagnostico, f.SkTempo, f.SkUnidadeSaude, f.DiagnosticarPor, f.EDiagInfeccioso}
		}); err != nil {
		return nil, err
	}
	if err := copyTable("fato_atendimento_resumo",
		[]string{"sk_atendimento", "sk_paciente", "sk_tempo", "sk_unidade_saude", "sk_diagnostico", "especialidade", "total_diagnosticos", "total_medicamentos_prescritos", "total_antibioticos_prescritos", "total_diagnosticos_infecciosos", "teve_prescricao_antibiotico", "teve_diagnostico_infeccioso"},
		len(s.FatoAtendimentoResumo), func(i int) []any {
			f := &s.FatoAtendimentoResumo[i]
			return []any{f.SkAtendimento, f.SkPaciente, f.SkTempo, f.SkUnidadeSaude, f.SkDiagnostico, f.Especialidade, f.TotalDiagnosticos, f.TotalMedicamentosPrescritos, f.TotalAntibioticosPrescritos, f.TotalDiagnosticosInfecciosos, f.TevePrescricaoAntibiotico, f.TeveDiagnosticoInfeccioso}
		}); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	l.Log.Info().Dur("elapsed", time.Since(start)).Msg("gold layer loaded to postgres")
	return counts, nil
}
