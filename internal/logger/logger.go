package logger

import (
	"go.uber.org/zap"

	"github.com/aliskhannn/knowledge-check-bot/internal/config"
)

// New builds the application logger: JSON in production, console elsewhere.
func New(cfg *config.Config) (*zap.Logger, error) {
	if cfg.Env == config.EnvProduction {
		return zap.NewProduction()
	}

	return zap.NewDevelopment()
}
