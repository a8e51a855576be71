package models

import "errors"

var (
	ErrShape        = errors.New("dimensões incompatíveis")
	ErrLabel        = errors.New("rótulo deve ser 0 ou 1")
	ErrLearningRate = errors.New("learning rate deve ser positivo e finito")
	ErrIterations   = errors.New("número de iterações deve ser positivo")
	ErrNonFinite    = errors.New("valor não finito (NaN/Inf) durante o treino")
	ErrNotReady     = errors.New("execução de treino não está pronta")
	ErrNotFitted    = errors.New("modelo não treinado")
)
