package main

import (
	"fmt"
	"time"

	"pocket-coach/internal/models"
	"pocket-coach/internal/repository"
	"pocket-coach/internal/service"
	"pocket-coach/pkg/logger"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed reference data",
	Long: `Insert reference data. Every seed is idempotent.

Available subcommands:
  categories - Shared default categories
  tips       - Coach knowledge base, built in or read from PDFs`,
}

var seedCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Insert the shared default categories",
	RunE:  runSeedCategories,
}

var seedTipsCmd = &cobra.Command{
	Use:   "tips",
	Short: "Insert coach tips",
	Long: `Insert the built-in coach tips.

With --dir, PDFs found under <dir>/budgeting, <dir>/savings and <dir>/habits
are read and stored as tips of that type. Files already ingested with the
same content are skipped using a cache file in <dir>.`,
	RunE: runSeedTips,
}

var tipsDir string

func init() {
	seedTipsCmd.Flags().StringVar(&tipsDir, "dir", "", "directory of PDF guides to ingest")
	seedCmd.AddCommand(seedCategoriesCmd, seedTipsCmd)
}

func runSeedCategories(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	db, err := connect(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewCategoryRepository(db, appLogger)
	inserted, err := repo.SeedDefaults(ctx, service.DefaultCategoryRows(time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("seed categories: %w", err)
	}

	appLogger.Info("Default categories seeded", zap.Int64("inserted", inserted))
	return nil
}

func runSeedTips(cmd *cobra.Command, _ []string) error {
	cfg, appLogger, err := setup()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	db, err := connect(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer db.Close()

	repo := repository.NewKnowledgeRepository(db, appLogger)

	inserted := 0
	now := time.Now().UTC()
	for _, t := range builtinTips {
		ok, err := repo.Create(ctx, &models.CoachTip{
			ID:        uuid.New(),
			Type:      t.Type,
			Title:     t.Title,
			Content:   t.Content,
			CreatedAt: now,
		})
		if err != nil {
			return fmt.Errorf("seed tip %q: %w", t.Title, err)
		}
		if ok {
			inserted++
		}
	}
	appLogger.Info("Built-in tips seeded", zap.Int("inserted", inserted), zap.Int("total", len(builtinTips)))

	if tipsDir == "" {
		return nil
	}
	return seedTipsFromPDFs(ctx, tipsDir, repo, service.NewOCRService(appLogger), appLogger)
}

type tipSeed struct {
	Type    models.TipType
	Title   string
	Content string
}

var builtinTips = []tipSeed{
	{models.TipTypeBudgeting, "Regra 50/30/20",
		"Divide o rendimento líquido: 50% para necessidades (casa, contas, supermercado), 30% para desejos e 20% para poupança ou dívidas. Ajusta as percentagens ao teu custo de vida, mas mantém sempre uma fatia para poupar."},
	{models.TipTypeBudgeting, "Orçamento por categoria",
		"Define um limite mensal para as categorias onde mais gastas, como Alimentação e Lazer. Revê os gastos a meio do mês e corta nas categorias que já passaram de metade do limite."},
	{models.TipTypeBudgeting, "Pequenas despesas diárias",
		"Cafés, snacks e entregas parecem pequenos, mas somados ao fim do mês podem valer centenas de euros. Regista-os todos durante um mês para perceber o impacto real."},
	{models.TipTypeBudgeting, "Subscrições esquecidas",
		"Faz uma lista de todas as subscrições (streaming, ginásio, aplicações) e cancela as que não usaste no último mês. É uma das formas mais rápidas de reduzir gastos fixos."},
	{models.TipTypeBudgeting, "Supermercado com lista",
		"Vai às compras com uma lista fechada e depois de comer. Compara o preço por quilo e prefere marcas brancas nos produtos básicos para gastar menos em Alimentação."},
	{models.TipTypeSavings, "Poupar primeiro",
		"Transfere o valor da poupança logo no dia em que recebes o salário, em vez de poupar o que sobra no fim do mês. Automatiza a transferência para não depender da força de vontade."},
	{models.TipTypeSavings, "Fundo de emergência",
		"Antes de investir, junta um fundo de emergência equivalente a três a seis meses de despesas. Guarda-o numa conta separada e de fácil acesso."},
	{models.TipTypeSavings, "Poupar para férias",
		"Divide o custo previsto das férias pelo número de meses que faltam e poupa esse valor todos os meses. Reserva viagens com antecedência e compara preços de voos em datas flexíveis."},
	{models.TipTypeSavings, "Metas concretas",
		"Uma meta com valor e prazo (por exemplo, 600 € até junho) é mais fácil de cumprir do que poupar mais. Acompanha o progresso todos os meses e celebra cada etapa."},
	{models.TipTypeSavings, "Regra das 48 horas",
		"Antes de uma compra por impulso acima de 50 €, espera 48 horas. Se depois disso ainda fizer sentido, compra. Na maioria dos casos a vontade passa."},
	{models.TipTypeHabits, "Começar pequeno",
		"Hábitos novos pegam melhor quando começam pequenos: cinco minutos de leitura ou dez minutos de caminhada. Aumenta a dose só depois de cumprires duas semanas seguidas."},
	{models.TipTypeHabits, "Associar hábitos",
		"Liga o novo hábito a algo que já fazes todos os dias, por exemplo registar as despesas logo depois do jantar. A rotina existente serve de lembrete."},
	{models.TipTypeHabits, "Não falhar duas vezes",
		"Falhar um dia é normal. O importante é não falhar dois dias seguidos: retoma o hábito no dia seguinte sem tentar compensar tudo de uma vez."},
	{models.TipTypeHabits, "Rever a semana",
		"Reserva dez minutos ao domingo para ver os hábitos cumpridos e os gastos da semana. Escolhe uma única coisa a melhorar na semana seguinte."},
}
