package main

import (
	"encoding/gob"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"logreg/internal/data"
	"logreg/internal/evaluation"
	"logreg/internal/features"
	"logreg/internal/metrics"
	"logreg/internal/models"
	"logreg/internal/plotting"
	"logreg/pkg/utils"
)

type limits struct {
	MaxIterations   int
	MaxObservations int
	MaxFeatures     int
	MaxRuns         int
}

type server struct {
	logger  *zap.Logger
	metrics *metrics.Metrics
	limits  limits
	runs    *runStore
	model   *models.LogisticRegression
}

func newServer(logger *zap.Logger, m *metrics.Metrics, model *models.LogisticRegression, l limits) *server {
	return &server{logger: logger, metrics: m, limits: l, runs: newRunStore(l.MaxRuns), model: model}
}

func main() {
	logger := utils.Logger()
	defer logger.Sync()

	path := os.Getenv("MODEL_PATH")
	if path == "" { path = "models/logreg_model.gob" }
	model, err := loadModel(path)
	if err != nil {
		logger.Warn("Nenhum modelo carregado, /predict exige run_id", zap.String("path", path), zap.Error(err))
	} else {
		logger.Info("Modelo carregado", zap.String("path", path), zap.String("model", model.Name()), zap.Float64s("betas", model.Coefficients()))
	}

	s := newServer(logger, metrics.New(), model, limits{
		MaxIterations:   envInt("MAX_ITERATIONS", 50000),
		MaxObservations: envInt("MAX_OBSERVATIONS", 100000),
		MaxFeatures:     envInt("MAX_FEATURES", 64),
		MaxRuns:         envInt("MAX_RUNS", 100),
	})
	r := s.router(os.Getenv("API_KEY"))

	port := os.Getenv("PORT")
	if port == "" { port = "8080" }
	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Servidor encerrado", zap.Error(err))
	}
}

func envInt(key string, def int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil || v <= 0 { return def }
	return v
}

func loadModel(path string) (*models.LogisticRegression, error) {
	f, err := os.Open(path)
	if err != nil { return nil, err }
	defer f.Close()
	var lr models.LogisticRegression
	if err := gob.NewDecoder(f).Decode(&lr); err != nil { return nil, err }
	if len(lr.Betas) == 0 { return nil, models.ErrNotFitted }
	return &lr, nil
}

func (s *server) router(apiKey string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Static("/static", "cmd/api/static")
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	api := r.Group("/")
	api.Use(apiKeyMiddleware(apiKey))
	api.POST("/train", s.handleTrain)
	api.GET("/runs/:id", s.handleRun)
	api.GET("/runs/:id/loss", s.handleLoss)
	api.POST("/predict", s.handlePredict)
	return r
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" { c.Next(); return }
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type trainReq struct {
	TrueBetas    []float64   `json:"true_betas"`
	Observations int         `json:"observations" binding:"omitempty,gt=0"`
	Seed         uint64      `json:"seed"`
	Xs           [][]float64 `json:"xs"`
	Ys           []int       `json:"ys"`
	Betas        []float64   `json:"betas"`
	LearningRate float64     `json:"learning_rate" binding:"omitempty,gt=0"`
	Iterations   int         `json:"iterations" binding:"omitempty,gt=0"`
	InitSeed     uint64      `json:"init_seed"`
}

func (s *server) handleTrain(c *gin.Context) {
	var req trainReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return
	}
	if req.LearningRate == 0 { req.LearningRate = 0.1 }
	if req.Iterations == 0 { req.Iterations = 1000 }
	if req.Iterations > s.limits.MaxIterations {
		c.JSON(http.StatusBadRequest, gin.H{"error": "iterations acima do limite", "max": s.limits.MaxIterations}); return
	}

	X, y := req.Xs, req.Ys
	if len(req.TrueBetas) > s.limits.MaxFeatures || len(req.Betas) > s.limits.MaxFeatures {
		c.JSON(http.StatusBadRequest, gin.H{"error": "features acima do limite", "max": s.limits.MaxFeatures}); return
	}
	for _, row := range X {
		if len(row) > s.limits.MaxFeatures {
			c.JSON(http.StatusBadRequest, gin.H{"error": "features acima do limite", "max": s.limits.MaxFeatures}); return
		}
	}
	if len(X) == 0 {
		if len(req.TrueBetas) == 0 { req.TrueBetas = []float64{3, 5, 2, 7} }
		if req.Observations == 0 { req.Observations = 1000 }
		if req.Observations > s.limits.MaxObservations {
			c.JSON(http.StatusBadRequest, gin.H{"error": "observations acima do limite", "max": s.limits.MaxObservations}); return
		}
		ds, err := data.GenerateLogistic(req.TrueBetas, req.Observations, data.GenOptions{Seed: req.Seed, Spread: 1})
		if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
		X, y, _ = features.Vectorize(ds, features.DefaultThreshold)
	}
	if len(X) > s.limits.MaxObservations {
		c.JSON(http.StatusBadRequest, gin.H{"error": "observations acima do limite", "max": s.limits.MaxObservations}); return
	}

	b, err := models.NewBatch(X, y)
	if err != nil { s.fail(c, err); return }
	betas := req.Betas
	if len(betas) == 0 {
		_, nf := b.Dims()
		betas = models.InitialBetas(nf, req.InitSeed, 1)
	}
	run, err := models.NewRun(betas, b, req.LearningRate, req.Iterations)
	if err != nil { s.fail(c, err); return }

	err = run.Execute(s.logger)
	s.metrics.ObserveRun(run.Iterations(), run.FinalLoss(), run.Elapsed(), err)
	rec := recordOf(run)
	s.runs.put(rec)
	if err != nil { s.fail(c, err); return }

	out := runView(rec)
	out["accuracy"] = evaluation.Count(y, run.Predictions(), features.DefaultThreshold).Accuracy()
	c.JSON(http.StatusOK, out)
}

func (s *server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, models.ErrShape), errors.Is(err, models.ErrLabel),
		errors.Is(err, models.ErrLearningRate), errors.Is(err, models.ErrIterations):
		status = http.StatusBadRequest
	case errors.Is(err, models.ErrNonFinite):
		status = http.StatusUnprocessableEntity
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("Falha ao processar requisição", zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func runView(rec *runRecord) gin.H {
	h := gin.H{
		"run_id":        rec.ID,
		"state":         rec.State.String(),
		"learning_rate": rec.LearningRate,
		"iterations":    rec.Iterations,
		"initial_betas": rec.Initial,
		"betas":         rec.Betas,
		"final_loss":    rec.FinalLoss,
		"elapsed_ms":    rec.Elapsed.Milliseconds(),
	}
	if rec.Err != nil { h["error"] = rec.Err.Error() }
	return h
}

func (s *server) lookup(c *gin.Context) (*runRecord, bool) {
	rec, ok := s.runs.get(c.Param("id"))
	if !ok { c.JSON(http.StatusNotFound, gin.H{"error": "execução não encontrada"}) }
	return rec, ok
}

func (s *server) handleRun(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok { return }
	c.JSON(http.StatusOK, runView(rec))
}

func (s *server) handleLoss(c *gin.Context) {
	rec, ok := s.lookup(c)
	if !ok { return }
	from, _ := strconv.Atoi(c.DefaultQuery("from", "0"))
	to, _ := strconv.Atoi(c.DefaultQuery("to", "0"))
	losses := rec.Losses
	w := plotting.Window{From: from, To: to}
	sum, err := plotting.Summarize(losses, w)
	if err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
	c.JSON(http.StatusOK, gin.H{"summary": sum, "losses": losses[sum.From:sum.To]})
}

type predictReq struct {
	RunID string      `json:"run_id"`
	Xs    [][]float64 `json:"xs" binding:"required,min=1"`
}

func (s *server) handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return
	}
	mdl, source := s.model, "arquivo"
	if req.RunID != "" {
		rec, ok := s.runs.get(req.RunID)
		if !ok { c.JSON(http.StatusNotFound, gin.H{"error": "execução não encontrada"}); return }
		if rec.State != models.StateTrained {
			c.JSON(http.StatusConflict, gin.H{"error": "execução não treinada", "state": rec.State.String()}); return
		}
		mdl, source = &models.LogisticRegression{Betas: rec.Betas}, "run"
	}
	if mdl == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "nenhum modelo carregado"}); return
	}
	ps, err := mdl.Score(req.Xs)
	if errors.Is(err, models.ErrNonFinite) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return
	}
	if err != nil { s.fail(c, err); return }

	labels := make([]int, len(ps))
	for i, p := range ps {
		if p >= features.DefaultThreshold { labels[i] = 1 }
	}
	s.metrics.Predictions.WithLabelValues(source).Add(float64(len(ps)))
	c.JSON(http.StatusOK, gin.H{"scores": ps, "labels": labels, "model": mdl.Name(), "source": source})
}
