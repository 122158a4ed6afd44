package email

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Sender define la interfaz para envio de codigos de recuperacion.
type Sender interface {
	SendPasswordReset(ctx context.Context, toEmail string, code string, expiresAt time.Time) error
}

// LogSender escribe el codigo en el log en lugar de enviarlo.
// Sólo para desarrollo: el codigo queda en texto plano en los logs.
type LogSender struct {
	logger *zap.Logger
}

func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) SendPasswordReset(_ context.Context, toEmail string, code string, expiresAt time.Time) error {
	s.logger.Info("password reset email",
		zap.String("to", toEmail),
		zap.String("code", code),
		zap.Time("expires_at", expiresAt),
	)
	return nil
}
