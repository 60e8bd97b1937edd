// Package notification provides implementations for various notification services
package notification

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/raykavin/candleline/pkg/core"
	"github.com/raykavin/candleline/pkg/logger"
	"github.com/raykavin/candleline/pkg/signal"
)

// Command patterns
var (
	linesRegexp  = regexp.MustCompile(`^/lines\s+(?P<code>\w+)\s+(?P<period>\w+)$`)
	hlineRegexp  = regexp.MustCompile(`^/hline\s+(?P<code>\w+)\s+(?P<period>\w+)\s+(?P<price>\d+(?:\.\d+)?)$`)
	deleteRegexp = regexp.MustCompile(`^/delete\s+(?P<code>\w+)\s+(?P<period>\w+)\s+(?P<id>\d+)$`)
)

// telegram implements core.NotifierWithStart and lets authorized users
// inspect and edit trend lines from a chat
type telegram struct {
	settings core.TelegramSettings
	storage  core.LineStorage
	refresh  *signal.Feed
	log      logger.Logger
	client   *tb.Bot
	timeout  time.Duration
}

// Option is a function that configures a telegram instance
type Option func(telegram *telegram)

// WithTimeout bounds the storage calls made by chat commands
func WithTimeout(timeout time.Duration) Option {
	return func(t *telegram) {
		t.timeout = timeout
	}
}

// NewTelegram creates and initializes a new Telegram service
func NewTelegram(settings core.TelegramSettings, storage core.LineStorage, refresh *signal.Feed,
	log logger.Logger, options ...Option) (core.NotifierWithStart, error) {

	poller := &tb.LongPoller{Timeout: 10 * time.Second}
	client, err := tb.NewBot(tb.Settings{
		ParseMode: tb.ModeMarkdown,
		Token:     settings.Token,
		Poller:    tb.NewMiddlewarePoller(poller, authorized(settings.Users, log)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	if err := client.SetCommands(commands); err != nil {
		return nil, fmt.Errorf("failed to set commands: %w", err)
	}

	bot := &telegram{
		settings: settings,
		storage:  storage,
		refresh:  refresh,
		log:      log,
		client:   client,
		timeout:  10 * time.Second,
	}

	for _, option := range options {
		option(bot)
	}

	client.Handle("/help", bot.HelpHandle)
	client.Handle("/lines", bot.LinesHandle)
	client.Handle("/hline", bot.HorizontalLineHandle)
	client.Handle("/delete", bot.DeleteHandle)

	return bot, nil
}

var commands = []tb.Command{
	{Text: "/help", Description: "Display help instructions"},
	{Text: "/lines", Description: "List trend lines: /lines CODE PERIOD"},
	{Text: "/hline", Description: "Add a horizontal line: /hline CODE PERIOD PRICE"},
	{Text: "/delete", Description: "Delete a trend line: /delete CODE PERIOD ID"},
}

// authorized keeps the updates sent by the configured users
func authorized(users []int, log logger.Logger) func(u *tb.Update) bool {
	return func(u *tb.Update) bool {
		if u.Message == nil || u.Message.Sender == nil {
			log.Warn("telegram update without message or sender")
			return false
		}

		if slices.Contains(users, int(u.Message.Sender.ID)) {
			return true
		}

		log.WithField("user", u.Message.Sender.ID).Warn("unauthorized telegram user")
		return false
	}
}

// Start begins the Telegram bot and notifies all authorized users
func (t *telegram) Start() {
	go t.client.Start()
	t.Notify("Chart bot initialized.")
}

// Notify sends a message to all authorized users
func (t *telegram) Notify(text string) {
	for _, user := range t.settings.Users {
		if _, err := t.client.Send(&tb.User{ID: int64(user)}, text); err != nil {
			t.log.WithError(err).Error("failed to send notification")
		}
	}
}

// OnError notifies users about errors
func (t *telegram) OnError(err error) {
	t.Notify(FormatError(err))
}

func (t *telegram) sendMessage(to *tb.User, text string) {
	if _, err := t.client.Send(to, text); err != nil {
		t.log.WithError(err).Error("failed to send message")
	}
}

func (t *telegram) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), t.timeout)
}

// HelpHandle displays available commands
func (t *telegram) HelpHandle(m *tb.Message) {
	lines := make([]string, 0, len(commands))
	for _, command := range commands {
		lines = append(lines, fmt.Sprintf("%s - %s", command.Text, command.Description))
	}
	t.sendMessage(m.Sender, strings.Join(lines, "\n"))
}

// LinesHandle lists the trend lines of a chart
func (t *telegram) LinesHandle(m *tb.Message) {
	params, ok := extractCommandParams(linesRegexp, m.Text)
	if !ok {
		t.sendMessage(m.Sender, "Invalid command.\nExample of usage:\n`/lines SH600519 day`")
		return
	}

	ctx, cancel := t.context()
	defer cancel()

	lines, err := t.storage.Lines(ctx, params["code"], params["period"])
	if err != nil {
		t.OnError(err)
		return
	}

	t.sendMessage(m.Sender, FormatLines(params["code"], params["period"], lines))
}

// HorizontalLineHandle saves a horizontal line at a price
func (t *telegram) HorizontalLineHandle(m *tb.Message) {
	params, ok := extractCommandParams(hlineRegexp, m.Text)
	if !ok {
		t.sendMessage(m.Sender, "Invalid command.\nExample of usage:\n`/hline SH600519 day 1680.5`")
		return
	}

	price, err := strconv.ParseFloat(params["price"], 64)
	if err != nil {
		t.sendMessage(m.Sender, "Invalid price.")
		return
	}

	ctx, cancel := t.context()
	defer cancel()

	line := core.NewHorizontal(params["code"], params["period"], price)
	if err := t.storage.SaveLines(ctx, []*core.TrendLine{line}); err != nil {
		t.OnError(err)
		return
	}

	t.refresh.Publish(signal.NewKey(line.Code, line.Period))
	t.sendMessage(m.Sender, fmt.Sprintf("Saved line `%d`.", line.ID))
}

// DeleteHandle removes a trend line by id and refreshes its chart
func (t *telegram) DeleteHandle(m *tb.Message) {
	params, ok := extractCommandParams(deleteRegexp, m.Text)
	if !ok {
		t.sendMessage(m.Sender, "Invalid command.\nExample of usage:\n`/delete SH600519 day 12`")
		return
	}

	id, _ := strconv.ParseInt(params["id"], 10, 64)

	ctx, cancel := t.context()
	defer cancel()

	if err := t.storage.DeleteLine(ctx, id); err != nil {
		t.OnError(err)
		return
	}

	t.refresh.Publish(signal.NewKey(params["code"], params["period"]))
	t.sendMessage(m.Sender, fmt.Sprintf("Deleted line `%d`.", id))
}

// FormatLines renders a line list as a chat message
func FormatLines(code, period string, lines []*core.TrendLine) string {
	if len(lines) == 0 {
		return fmt.Sprintf("No trend lines for `%s %s`.", strings.ToUpper(code), period)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s %s*\n", strings.ToUpper(code), period)
	for _, line := range lines {
		fmt.Fprintf(&sb, "`%s`\n", line)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatError renders an error as a chat message
func FormatError(err error) string {
	return "🛑 ERROR\n-----\n" + err.Error()
}

// extractCommandParams returns the named groups of a command match
func extractCommandParams(regex *regexp.Regexp, text string) (map[string]string, bool) {
	match := regex.FindStringSubmatch(strings.TrimSpace(text))
	if match == nil {
		return nil, false
	}

	command := make(map[string]string)
	for i, name := range regex.SubexpNames() {
		if i != 0 && name != "" {
			command[name] = match[i]
		}
	}
	return command, true
}
