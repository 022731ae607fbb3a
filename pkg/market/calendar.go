package market

import (
	"time"
)

// Calendar describes the regular trading session of an exchange.
// Exchange holidays are not modelled, a holiday is treated as a regular trading day.
type Calendar struct {
	Location *time.Location

	// Open and Close are the session boundaries as offsets from local midnight
	Open  time.Duration
	Close time.Duration
}

// NewYorkStockExchange returns the NYSE/NASDAQ regular session, 09:30 - 16:00 America/New_York.
func NewYorkStockExchange() *Calendar {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		// without tzdata fall back to EST
		loc = time.FixedZone("EST", -5*60*60)
	}

	return &Calendar{
		Location: loc,
		Open:     9*time.Hour + 30*time.Minute,
		Close:    16 * time.Hour,
	}
}

func (c *Calendar) IsTradingDay(t time.Time) bool {
	switch t.In(c.Location).Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return true
}

// IsOpen reports whether t falls into a regular session.
func (c *Calendar) IsOpen(t time.Time) bool {
	if !c.IsTradingDay(t) {
		return false
	}

	open, closeTime := c.session(t)
	return !t.Before(open) && t.Before(closeTime)
}

// SessionOpen returns the open of the session of the day of t, in exchange time.
func (c *Calendar) SessionOpen(t time.Time) time.Time {
	open, _ := c.session(t)
	return open
}

// LastClose returns the most recent session close at or before t.
func (c *Calendar) LastClose(t time.Time) time.Time {
	local := t.In(c.Location)
	for i := 0; i < 8; i++ {
		day := local.AddDate(0, 0, -i)
		if !c.IsTradingDay(day) {
			continue
		}

		_, closeTime := c.session(day)
		if !closeTime.After(t) {
			return closeTime
		}
	}

	// unreachable with a five day trading week
	return local
}

// IsFresh reports whether an artifact produced at modTime already includes the most recent
// completed session at now. During a session the previous close is the reference, the partial
// bar of the running session does not make an artifact stale.
func (c *Calendar) IsFresh(modTime, now time.Time) bool {
	if modTime.After(now) {
		return false
	}

	return !modTime.Before(c.LastClose(now))
}

func (c *Calendar) session(t time.Time) (time.Time, time.Time) {
	local := t.In(c.Location)
	return c.at(local, c.Open), c.at(local, c.Close)
}

func (c *Calendar) at(day time.Time, offset time.Duration) time.Time {
	h := int(offset / time.Hour)
	m := int((offset % time.Hour) / time.Minute)
	return time.Date(day.Year(), day.Month(), day.Day(), h, m, 0, 0, c.Location)
}
