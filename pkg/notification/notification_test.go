package notification

import (
	"errors"
	"net/smtp"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tb "gopkg.in/tucnak/telebot.v2"

	"github.com/raykavin/candleline/pkg/core"
	zlog "github.com/raykavin/candleline/pkg/logger/zerolog"
)

func TestExtractCommandParams(t *testing.T) {
	cases := []struct {
		regex *regexp.Regexp
		text  string
		want  map[string]string
	}{
		{linesRegexp, "/lines SH600519 day", map[string]string{"code": "SH600519", "period": "day"}},
		{linesRegexp, "/lines SH600519", nil},
		{hlineRegexp, " /hline sz000001 1d 10.25 ", map[string]string{"code": "sz000001", "period": "1d", "price": "10.25"}},
		{hlineRegexp, "/hline sz000001 1d ten", nil},
		{deleteRegexp, "/delete SH600519 day 12", map[string]string{"code": "SH600519", "period": "day", "id": "12"}},
		{deleteRegexp, "/delete 12", nil},
	}

	for _, tc := range cases {
		params, ok := extractCommandParams(tc.regex, tc.text)
		assert.Equal(t, tc.want != nil, ok, tc.text)
		assert.Equal(t, tc.want, params, tc.text)
	}
}

func TestFormatLines(t *testing.T) {
	assert.Equal(t, "No trend lines for `SH600519 day`.", FormatLines("sh600519", "day", nil))

	line := core.NewHorizontal("SH600519", "day", 15)
	line.ID = 3
	message := FormatLines("SH600519", "day", []*core.TrendLine{line})
	assert.True(t, strings.HasPrefix(message, "*SH600519 day*\n`"))
	assert.Contains(t, message, line.String())
}

func TestAuthorized(t *testing.T) {
	allow := authorized([]int{42}, zlog.Discard())

	assert.True(t, allow(&tb.Update{Message: &tb.Message{Sender: &tb.User{ID: 42}}}))
	assert.False(t, allow(&tb.Update{Message: &tb.Message{Sender: &tb.User{ID: 7}}}))
	assert.False(t, allow(&tb.Update{}))
}

func TestMail(t *testing.T) {
	mail := NewMail(MailParams{
		SMTPServerPort:    587,
		SMTPServerAddress: "smtp.example.com",
		To:                "to@example.com",
		From:              "from@example.com",
		Password:          "secret",
	}, zlog.Discard())

	var addr string
	var body []byte
	mail.send = func(a string, _ smtp.Auth, from string, to []string, msg []byte) error {
		addr, body = a, msg
		assert.Equal(t, "from@example.com", from)
		assert.Equal(t, []string{"to@example.com"}, to)
		return nil
	}

	mail.OnError(errors.New("save failed"))
	require.Equal(t, "smtp.example.com:587", addr)
	assert.Contains(t, string(body), "Subject: candleline trend lines: write failed\r\n")
	assert.Contains(t, string(body), "To: <to@example.com>\r\n")
	assert.True(t, strings.HasSuffix(string(body), "\r\n\r\nsave failed\r\n"))
}

type recordingNotifier struct {
	messages []string
	errs     []error
}

func (r *recordingNotifier) Notify(text string) { r.messages = append(r.messages, text) }
func (r *recordingNotifier) OnError(err error)  { r.errs = append(r.errs, err) }

func TestMulti(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}
	multi := Multi{a, b, NewLog(zlog.Discard())}

	multi.Notify("saved")
	multi.OnError(errors.New("boom"))

	for _, r := range []*recordingNotifier{a, b} {
		assert.Equal(t, []string{"saved"}, r.messages)
		assert.Len(t, r.errs, 1)
	}
}
