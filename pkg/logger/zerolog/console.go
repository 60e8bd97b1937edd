package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// Options configures the console logger
type Options struct {
	Level      string
	TimeLayout string
	Colored    bool
	JSON       bool
	Output     io.Writer
}

// New builds the application logger. JSON output writes raw zerolog events,
// otherwise entries go through a console writer with aligned, coloured columns.
func New(opts Options) (*ZerologAdapter, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil {
		return nil, err
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	layout := opts.TimeLayout
	if layout == "" {
		layout = time.DateTime
	}

	var writer io.Writer = out
	if !opts.JSON {
		writer = zerolog.ConsoleWriter{
			Out:             out,
			NoColor:         !opts.Colored,
			TimeFormat:      layout,
			FormatLevel:     formatLevel,
			FormatMessage:   formatMessage,
			FormatCaller:    formatCaller,
			FormatTimestamp: func(i interface{}) string { return formatTimestamp(i, layout) },
		}
	}

	l := zerolog.New(writer).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return NewAdapter(&l), nil
}

func formatLevel(i interface{}) string {
	switch fmt.Sprint(i) {
	case zerolog.LevelTraceValue:
		return term.Cyanf("[TRC]")
	case zerolog.LevelDebugValue:
		return term.Cyanf("[DBG]")
	case zerolog.LevelInfoValue:
		return term.Greenf("[INF]")
	case zerolog.LevelWarnValue:
		return term.Yellowf("[WAR]")
	case zerolog.LevelErrorValue:
		return term.Redf("[ERR]")
	case zerolog.LevelFatalValue:
		return term.Redf("[FTL]")
	case zerolog.LevelPanicValue:
		return term.Redf("[PAN]")
	default:
		return term.Whitef("[UNK]")
	}
}

func formatMessage(i interface{}) string {
	const width = 80

	msg, ok := i.(string)
	if !ok || msg == "" {
		return ">"
	}

	if len(msg) > width {
		msg = msg[:width]
	}
	return term.Whitef("> %-*s", width, msg)
}

func formatCaller(i interface{}) string {
	fname, ok := i.(string)
	if !ok || fname == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(fname), ":")
	if !found {
		return file
	}

	if len(file) > 18 {
		file = file[:18]
	}
	if len(line) > 4 {
		line = line[len(line)-4:]
	}

	return term.Yellowf("[%-18s:%4s]", file, line)
}

func formatTimestamp(i interface{}, layout string) string {
	raw := fmt.Sprint(i)
	if ts, err := time.Parse(zerolog.TimeFieldFormat, raw); err == nil {
		raw = ts.In(time.Local).Format(layout)
	}
	return term.Cyanf("[%s]", raw)
}
