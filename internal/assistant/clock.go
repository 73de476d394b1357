package assistant

import (
	"fmt"
	"time"
)

// TemporalContext is a snapshot of "now" in the operating locale, computed
// once per request so every date in the prompt agrees on what today is.
type TemporalContext struct {
	Date     string // 2024-01-20
	Time     string // 14:35
	Weekday  string // sábado
	LongDate string // sábado, 20 de janeiro de 2024
}

var weekdayNames = [...]string{
	"domingo", "segunda-feira", "terça-feira", "quarta-feira",
	"quinta-feira", "sexta-feira", "sábado",
}

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// Clock produces temporal context in a fixed location. The now function is
// injectable for tests.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

func NewClock(loc *time.Location) *Clock {
	if loc == nil {
		loc = time.Local
	}
	return &Clock{loc: loc, now: time.Now}
}

// WithNow overrides the clock's time source. Tests use this to pin "today".
func (c *Clock) WithNow(now func() time.Time) *Clock {
	c.now = now
	return c
}

func (c *Clock) Snapshot() TemporalContext {
	t := c.now().In(c.loc)
	return TemporalContext{
		Date:    t.Format(time.DateOnly),
		Time:    t.Format("15:04"),
		Weekday: weekdayNames[t.Weekday()],
		LongDate: fmt.Sprintf("%s, %d de %s de %d",
			weekdayNames[t.Weekday()], t.Day(), monthNames[t.Month()-1], t.Year()),
	}
}

// Relative resolves a relative-date keyword against a base ISO date.
func Relative(base, keyword string) (string, error) {
	t, err := time.Parse(time.DateOnly, base)
	if err != nil {
		return "", fmt.Errorf("invalid base date %q: %w", base, err)
	}
	switch keyword {
	case "today":
		return t.Format(time.DateOnly), nil
	case "tomorrow":
		return t.AddDate(0, 0, 1).Format(time.DateOnly), nil
	case "day-after-tomorrow":
		return t.AddDate(0, 0, 2).Format(time.DateOnly), nil
	case "next-week":
		return t.AddDate(0, 0, 7).Format(time.DateOnly), nil
	default:
		return "", fmt.Errorf("unknown relative keyword %q", keyword)
	}
}
