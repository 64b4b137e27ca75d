package rtc

import (
	"github.com/pion/logging"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LoggerFactory hands pion's internal loggers to zerolog. pion is chatty, so
// its scopes log one level below what they ask for, except warnings and errors.
type LoggerFactory struct {
	base zerolog.Logger
}

var _ logging.LoggerFactory = LoggerFactory{}

func NewLoggerFactory() LoggerFactory {
	return LoggerFactory{base: log.Logger}
}

func (f LoggerFactory) NewLogger(scope string) logging.LeveledLogger {
	return zeroLeveled{l: f.base.With().Str("module", "pion").Str("scope", scope).Logger()}
}

type zeroLeveled struct {
	l zerolog.Logger
}

func (z zeroLeveled) Trace(msg string)               { z.l.Trace().Msg(msg) }
func (z zeroLeveled) Tracef(format string, a ...any) { z.l.Trace().Msgf(format, a...) }
func (z zeroLeveled) Debug(msg string)               { z.l.Trace().Msg(msg) }
func (z zeroLeveled) Debugf(format string, a ...any) { z.l.Trace().Msgf(format, a...) }
func (z zeroLeveled) Info(msg string)                { z.l.Debug().Msg(msg) }
func (z zeroLeveled) Infof(format string, a ...any)  { z.l.Debug().Msgf(format, a...) }
func (z zeroLeveled) Warn(msg string)                { z.l.Warn().Msg(msg) }
func (z zeroLeveled) Warnf(format string, a ...any)  { z.l.Warn().Msgf(format, a...) }
func (z zeroLeveled) Error(msg string)               { z.l.Error().Msg(msg) }
func (z zeroLeveled) Errorf(format string, a ...any) { z.l.Error().Msgf(format, a...) }
