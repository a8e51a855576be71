package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type State int

const (
	StateReady State = iota
	StateTrained
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateTrained:
		return "trained"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Run is one fixed-length training session over a single batch. It goes
// from StateReady to StateTrained (or StateFailed) exactly once.
type Run struct {
	// LogEvery logs progress every n iterations; zero disables it.
	LogEvery int

	id         uuid.UUID
	batch      *Batch
	lr         float64
	iterations int

	state   State
	initial []float64
	betas   []float64
	yhat    []float64
	losses  []float64
	elapsed time.Duration
	err     error
}

func NewRun(betas []float64, b *Batch, lr float64, iterations int) (*Run, error) {
	if err := checkLearningRate(lr); err != nil {
		return nil, err
	}
	if iterations <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrIterations, iterations)
	}
	if err := b.checkBetas(betas); err != nil {
		return nil, err
	}
	initial := append([]float64(nil), betas...)
	return &Run{
		id:         uuid.New(),
		batch:      b,
		lr:         lr,
		iterations: iterations,
		state:      StateReady,
		initial:    initial,
		betas:      append([]float64(nil), betas...),
	}, nil
}

// Execute performs every iteration; there is no early stop.
func (r *Run) Execute(logger *zap.Logger) error {
	if r.state != StateReady {
		return fmt.Errorf("%w: estado %s", ErrNotReady, r.state)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("run_id", r.id.String()))
	n, nf := r.batch.Dims()
	logger.Info("Iniciando treino",
		zap.Int("observacoes", n),
		zap.Int("atributos", nf),
		zap.Float64("learning_rate", r.lr),
		zap.Int("iteracoes", r.iterations),
		zap.Float64s("betas_iniciais", r.initial),
	)

	start := time.Now()
	betas := r.betas
	losses := make([]float64, 0, r.iterations)
	for k := 1; k <= r.iterations; k++ {
		res, err := step(betas, r.batch, r.lr)
		if err != nil {
			r.state = StateFailed
			r.err = fmt.Errorf("iteração %d: %w", k, err)
			r.losses = losses
			r.elapsed = time.Since(start)
			logger.Error("Treino abortado", zap.Int("iteracao", k), zap.Error(err))
			return r.err
		}
		betas = res.Betas
		r.yhat = res.Predictions
		losses = append(losses, res.Loss)
		if r.LogEvery > 0 && k%r.LogEvery == 0 {
			logger.Info("Progresso do treino", zap.Int("iteracao", k), zap.Float64("loss", res.Loss))
		}
	}
	r.betas = betas
	r.losses = losses
	r.elapsed = time.Since(start)
	r.state = StateTrained
	logger.Info("Treino concluído",
		zap.Float64("loss_final", r.FinalLoss()),
		zap.Float64s("betas", r.betas),
		zap.Duration("duracao", r.elapsed),
	)
	return nil
}

func (r *Run) ID() uuid.UUID { return r.id }

func (r *Run) State() State { return r.state }

func (r *Run) Err() error { return r.err }

func (r *Run) LearningRate() float64 { return r.lr }

func (r *Run) Iterations() int { return r.iterations }

func (r *Run) Elapsed() time.Duration { return r.elapsed }

func (r *Run) Initial() []float64 { return append([]float64(nil), r.initial...) }

// Betas is the current estimate: the initial one while ready, the fitted one
// once trained.
func (r *Run) Betas() []float64 { return append([]float64(nil), r.betas...) }

func (r *Run) Losses() []float64 { return append([]float64(nil), r.losses...) }

func (r *Run) Predictions() []float64 { return append([]float64(nil), r.yhat...) }

func (r *Run) FinalLoss() float64 {
	if len(r.losses) == 0 {
		return 0
	}
	return r.losses[len(r.losses)-1]
}
