package market

import "time"

// Shanghai is the exchange clock, a fixed UTC+8 zone so no tzdata is needed
var Shanghai = time.FixedZone("CST", 8*3600)

// Window is a trading window in minutes since midnight, both ends inclusive
type Window struct {
	Start int
	End   int
}

func (w Window) contains(minutes int) bool {
	return minutes >= w.Start && minutes <= w.End
}

// Session describes when a market trades
type Session struct {
	Location *time.Location
	Windows  []Window
}

// AShare is the mainland stock session: call auction from 09:15, morning
// trading to 11:30 and afternoon trading 13:00 to 15:00, Monday to Friday.
var AShare = Session{
	Location: Shanghai,
	Windows: []Window{
		{Start: 9*60 + 15, End: 11*60 + 30},
		{Start: 13 * 60, End: 15 * 60},
	},
}

// IsOpen reports whether t falls inside one of the session windows on a weekday
func (s Session) IsOpen(t time.Time) bool {
	local := t.In(s.Location)
	if wd := local.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return false
	}

	minutes := local.Hour()*60 + local.Minute()
	for _, w := range s.Windows {
		if w.contains(minutes) {
			return true
		}
	}
	return false
}

// AllDay trades every minute of every weekday
var AllDay = Session{Location: time.UTC, Windows: []Window{{Start: 0, End: 24 * 60}}}

// IsOpen reports whether the A-share session is trading at t
func IsOpen(t time.Time) bool {
	return AShare.IsOpen(t)
}
