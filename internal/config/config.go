package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"go.uber.org/multierr"
)

var ErrInvalid = errors.New("configuração inválida")

type Config struct {
	Data     DataConfig     `yaml:"data"`
	Training TrainingConfig `yaml:"training"`
	Plot     PlotConfig     `yaml:"plot"`
	Output   OutputConfig   `yaml:"output"`
}

type DataConfig struct {
	Regenerate   bool      `yaml:"regenerate"`
	TrueBetas    []float64 `yaml:"true_betas" validate:"required,min=1"`
	Observations int       `yaml:"observations" validate:"gt=0"`
	Seed         uint64    `yaml:"seed"`
	Spread       float64   `yaml:"spread" validate:"gt=0"`
	Threshold    float64   `yaml:"threshold" validate:"gt=0,lt=1"`
	Path         string    `yaml:"path" validate:"required"`
}

type TrainingConfig struct {
	LearningRate float64 `yaml:"learning_rate" validate:"gt=0"`
	Iterations   int     `yaml:"iterations" validate:"gt=0"`
	Seed         uint64  `yaml:"seed"`
	InitScale    float64 `yaml:"init_scale" validate:"gt=0"`
	LogEvery     int     `yaml:"log_every" validate:"gte=0"`
}

type PlotConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" validate:"required_if=Enabled true"`
	From    int    `yaml:"from" validate:"gte=0"`
	To      int    `yaml:"to" validate:"gte=0"`
}

type OutputConfig struct {
	ModelPath string `yaml:"model_path" validate:"required"`
	LossCSV   string `yaml:"loss_csv" validate:"required"`
}

// Default reproduces the reference run: betas [3,5,2,7], 10000 observations,
// learning rate 0.1, 50000 iterations, curve plotted from iteration 100.
func Default() Config {
	return Config{
		Data: DataConfig{
			Regenerate:   true,
			TrueBetas:    []float64{3, 5, 2, 7},
			Observations: 10000,
			Seed:         42,
			Spread:       1,
			Threshold:    0.5,
			Path:         "data/synthetic.csv",
		},
		Training: TrainingConfig{
			LearningRate: 0.1,
			Iterations:   50000,
			Seed:         1,
			InitScale:    1,
			LogEvery:     5000,
		},
		Plot: PlotConfig{
			Enabled: true,
			Path:    "cmd/api/static/loss_curve.png",
			From:    100,
			To:      50000,
		},
		Output: OutputConfig{
			ModelPath: "models/logreg_model.gob",
			LossCSV:   "data/loss.csv",
		},
	}
}

// Load overlays the YAML file at path on Default and validates the result.
// Unknown keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("não foi possível ler a configuração %s: %w", path, err)
	}
	if err := yaml.UnmarshalWithOptions(b, &cfg, yaml.DisallowUnknownField()); err != nil {
		return cfg, fmt.Errorf("não foi possível decodificar a configuração %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	var out error
	for _, fe := range verrs {
		out = multierr.Append(out, fmt.Errorf("%w: %s viola %q (valor %v)", ErrInvalid, fe.Namespace(), fe.ActualTag(), fe.Value()))
	}
	return out
}
