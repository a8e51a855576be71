package main

import (
	"encoding/gob"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"

	"logreg/internal/config"
	"logreg/internal/data"
	"logreg/internal/evaluation"
	"logreg/internal/features"
	"logreg/internal/models"
	"logreg/internal/plotting"
	"logreg/pkg/utils"
)

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "Arquivo YAML de configuração (opcional)")
	regen := flag.Bool("regen", true, "Regenerar dataset sintético")
	n := flag.Int("n", 10000, "Número de observações sintéticas")
	out := flag.String("out", "data/synthetic.csv", "Caminho do CSV do dataset")
	seed := flag.Uint64("seed", 42, "Semente do gerador de dados")
	lr := flag.Float64("lr", 0.1, "Learning rate")
	iterations := flag.Int("iterations", 50000, "Número fixo de iterações")
	initSeed := flag.Uint64("init_seed", 1, "Semente dos betas iniciais")
	logEvery := flag.Int("log_every", 5000, "Registrar progresso a cada N iterações (0 desliga)")
	curve := flag.Bool("curve", true, "Gerar curva de loss (PNG)")
	curveImg := flag.String("curve_out_img", "cmd/api/static/loss_curve.png", "PNG da curva de loss")
	curveFrom := flag.Int("curve_from", 100, "Primeira iteração da janela do gráfico")
	curveTo := flag.Int("curve_to", 50000, "Fim da janela do gráfico")
	lossCsv := flag.String("loss_csv", "data/loss.csv", "CSV com a loss de cada iteração")
	modelOut := flag.String("model_out", "models/logreg_model.gob", "Arquivo do modelo treinado")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			logger.Fatal("Falha ao carregar configuração", zap.String("path", *cfgPath), zap.Error(err))
		}
		cfg = c
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "regen":
			cfg.Data.Regenerate = *regen
		case "n":
			cfg.Data.Observations = *n
		case "out":
			cfg.Data.Path = *out
		case "seed":
			cfg.Data.Seed = *seed
		case "lr":
			cfg.Training.LearningRate = *lr
		case "iterations":
			cfg.Training.Iterations = *iterations
		case "init_seed":
			cfg.Training.Seed = *initSeed
		case "log_every":
			cfg.Training.LogEvery = *logEvery
		case "curve":
			cfg.Plot.Enabled = *curve
		case "curve_out_img":
			cfg.Plot.Path = *curveImg
		case "curve_from":
			cfg.Plot.From = *curveFrom
		case "curve_to":
			cfg.Plot.To = *curveTo
		case "loss_csv":
			cfg.Output.LossCSV = *lossCsv
		case "model_out":
			cfg.Output.ModelPath = *modelOut
		}
	})
	if err := cfg.Validate(); err != nil {
		logger.Fatal("Configuração inválida", zap.Error(err))
	}

	mdl, err := train(cfg, logger)
	if err != nil {
		logger.Fatal("Falha no treino", zap.Error(err))
	}
	fmt.Println("Modelo:", mdl.Name(), "betas:", mdl.Betas)
}

func train(cfg config.Config, logger *zap.Logger) (*models.LogisticRegression, error) {
	dc := cfg.Data
	if dc.Regenerate {
		logger.Info("Gerando dataset sintético",
			zap.Int("n", dc.Observations),
			zap.Float64s("true_betas", dc.TrueBetas),
			zap.String("out", dc.Path),
		)
		if _, err := data.GenerateSyntheticCSV(dc.TrueBetas, dc.Observations, data.GenOptions{Seed: dc.Seed, Spread: dc.Spread}, dc.Path); err != nil {
			return nil, fmt.Errorf("gerar dataset: %w", err)
		}
	}

	ds, err := data.ReadCSV(dc.Path)
	if err != nil {
		return nil, fmt.Errorf("ler dataset: %w", err)
	}
	X, y, names := features.Vectorize(ds, dc.Threshold)
	pos, neg := features.Balance(y)
	logger.Info("Distribuição da classe", zap.Int("positivos", pos), zap.Int("negativos", neg))

	tc := cfg.Training
	mdl := models.NewLogisticRegression()
	mdl.LearningRate = tc.LearningRate
	mdl.Iterations = tc.Iterations
	mdl.Seed = tc.Seed
	mdl.InitScale = tc.InitScale
	mdl.LogEvery = tc.LogEvery
	mdl.WithLogger(logger)
	if err := mdl.Fit(X, y); err != nil {
		return nil, fmt.Errorf("treinar: %w", err)
	}

	report := evaluation.Evaluate(y, mdl.PredictProba(X), features.DefaultThreshold)
	logger.Info("Métricas no lote de treino",
		zap.String("model", mdl.Name()),
		zap.Float64("loss_final", mdl.Losses[len(mdl.Losses)-1]),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("f1", report.F1),
		zap.Float64("roc_auc", report.ROCAUC),
		zap.Float64("pr_auc", report.PRAUC),
		zap.Float64("melhor_limiar", report.BestThreshold),
		zap.Float64("melhor_f1", report.BestF1),
	)
	logCoefficients(logger, names, mdl, dc.TrueBetas)

	if err := saveModel(cfg.Output.ModelPath, mdl); err != nil {
		return nil, fmt.Errorf("salvar modelo: %w", err)
	}
	logger.Info("Modelo salvo", zap.String("path", cfg.Output.ModelPath))

	if err := data.WriteLossCSV(cfg.Output.LossCSV, mdl.Losses); err != nil {
		logger.Warn("Falha ao salvar CSV da loss", zap.Error(err))
	}
	if cfg.Plot.Enabled {
		w := plotting.Window{From: cfg.Plot.From, To: cfg.Plot.To}
		if err := plotting.LossCurve(cfg.Plot.Path, mdl.Losses, w); err != nil {
			logger.Warn("Falha ao salvar PNG da curva", zap.Error(err))
		} else {
			logger.Info("Curva de loss gerada", zap.String("png", cfg.Plot.Path), zap.String("csv", cfg.Output.LossCSV))
		}
	}
	return mdl, nil
}

// logCoefficients compares the fitted betas with the generating ones. On
// separable data only the direction is identifiable, so both vectors are
// also shown scaled to unit length.
func logCoefficients(logger *zap.Logger, names []string, mdl models.Linear, truth []float64) {
	fitted := mdl.Coefficients()
	fields := make([]zap.Field, 0, len(fitted)+2)
	for j := range fitted {
		fields = append(fields, zap.Float64(names[j], fitted[j]))
	}
	if len(truth) == len(fitted) {
		unitFit := append([]float64(nil), fitted...)
		unitTrue := append([]float64(nil), truth...)
		floats.Scale(1/floats.Norm(unitFit, 2), unitFit)
		floats.Scale(1/floats.Norm(unitTrue, 2), unitTrue)
		fields = append(fields,
			zap.Float64s("direcao_ajustada", unitFit),
			zap.Float64s("direcao_real", unitTrue),
			zap.Float64("cosseno", floats.Dot(unitFit, unitTrue)),
		)
	}
	logger.Info("Coeficientes ajustados", fields...)
}

func saveModel(path string, mdl *models.LogisticRegression) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	mf, err := os.Create(path)
	if err != nil {
		return err
	}
	defer mf.Close()
	return gob.NewEncoder(mf).Encode(mdl)
}
