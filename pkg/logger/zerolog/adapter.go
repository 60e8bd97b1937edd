package zerolog

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/raykavin/candleline/pkg/logger"
)

// ZerologAdapter exposes a zerolog logger through logger.Logger
type ZerologAdapter struct {
	*zerolog.Logger
}

func NewAdapter(l *zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{l}
}

// Discard returns an adapter that drops every entry, handy in tests
func Discard() *ZerologAdapter {
	nop := zerolog.Nop()
	return &ZerologAdapter{&nop}
}

func (z *ZerologAdapter) GetLevel() logger.Level {
	return toLevel(z.Logger.GetLevel())
}

func (z *ZerologAdapter) SetLevel(level logger.Level) {
	zerolog.SetGlobalLevel(toZerologLevel(level))
}

func (z *ZerologAdapter) Print(args ...any)                 { z.Logger.Print(args...) }
func (z *ZerologAdapter) Printf(format string, args ...any) { z.Logger.Printf(format, args...) }

func (z *ZerologAdapter) Trace(args ...any) { z.Logger.Trace().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Debug(args ...any) { z.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Info(args ...any)  { z.Logger.Info().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Warn(args ...any)  { z.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Error(args ...any) { z.Logger.Error().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Fatal(args ...any) { z.Logger.Fatal().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Panic(args ...any) { z.Logger.Panic().Msg(fmt.Sprint(args...)) }

func (z *ZerologAdapter) Tracef(format string, args ...any) { z.Logger.Trace().Msgf(format, args...) }
func (z *ZerologAdapter) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }
func (z *ZerologAdapter) Infof(format string, args ...any)  { z.Logger.Info().Msgf(format, args...) }
func (z *ZerologAdapter) Warnf(format string, args ...any)  { z.Logger.Warn().Msgf(format, args...) }
func (z *ZerologAdapter) Errorf(format string, args ...any) { z.Logger.Error().Msgf(format, args...) }
func (z *ZerologAdapter) Fatalf(format string, args ...any) { z.Logger.Fatal().Msgf(format, args...) }
func (z *ZerologAdapter) Panicf(format string, args ...any) { z.Logger.Panic().Msgf(format, args...) }

func (z *ZerologAdapter) WithError(err error) logger.Logger {
	l := z.With().Err(err).Logger()
	return &ZerologAdapter{&l}
}

func (z *ZerologAdapter) WithField(key string, value any) logger.Logger {
	l := z.With().Interface(key, value).Logger()
	return &ZerologAdapter{&l}
}

func (z *ZerologAdapter) WithFields(fields map[string]any) logger.Logger {
	l := z.With().Fields(fields).Logger()
	return &ZerologAdapter{&l}
}

var levels = []struct {
	zl  zerolog.Level
	own logger.Level
}{
	{zerolog.Disabled, logger.Disabled},
	{zerolog.NoLevel, logger.NoLevel},
	{zerolog.TraceLevel, logger.TraceLevel},
	{zerolog.DebugLevel, logger.DebugLevel},
	{zerolog.InfoLevel, logger.InfoLevel},
	{zerolog.WarnLevel, logger.WarnLevel},
	{zerolog.ErrorLevel, logger.ErrorLevel},
	{zerolog.FatalLevel, logger.FatalLevel},
	{zerolog.PanicLevel, logger.PanicLevel},
}

func toLevel(level zerolog.Level) logger.Level {
	for _, l := range levels {
		if l.zl == level {
			return l.own
		}
	}
	return logger.NoLevel
}

func toZerologLevel(level logger.Level) zerolog.Level {
	for _, l := range levels {
		if l.own == level {
			return l.zl
		}
	}
	return zerolog.NoLevel
}
