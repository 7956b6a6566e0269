package api

import (
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/glucolog-org/coach/config"
	"github.com/glucolog-org/coach/uploads"
)

type Handler struct {
	uploads uploads.Service
	cfg     *config.Config
	logger  *zap.SugaredLogger
}

type Params struct {
	fx.In

	Uploads uploads.Service
	Cfg     *config.Config
	Logger  *zap.SugaredLogger
}

func NewHandler(p Params) *Handler {
	return &Handler{
		uploads: p.Uploads,
		cfg:     p.Cfg,
		logger:  p.Logger,
	}
}
