package model

import (
	"bytes"
	"fmt"
	"time"
)

// DateLayout - формат календарной даты в API и в jsonb-агрегатах PostgreSQL.
const DateLayout = "2006-01-02"

// Date - календарная дата без времени (колонки DATE).
// В JSON сериализуется как "YYYY-MM-DD".
type Date struct {
	time.Time
}

// NewDate создаёт Date из time.Time, отбрасывая время суток.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Time: time.Date(y, m, d, 0, 0, 0, 0, time.UTC)}
}

// ParseDate разбирает дату в формате YYYY-MM-DD или RFC 3339.
// Для RFC 3339 берётся календарная дата в UTC.
func ParseDate(s string) (Date, error) {
	if t, err := time.Parse(DateLayout, s); err == nil {
		return NewDate(t), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, fmt.Errorf("некорректная дата %q: ожидается YYYY-MM-DD или RFC 3339", s)
	}
	return NewDate(t.UTC()), nil
}

// DatePtr преобразует nullable DATE из БД.
func DatePtr(t *time.Time) *Date {
	if t == nil {
		return nil
	}
	d := NewDate(*t)
	return &d
}

// TimePtr возвращает значение для nullable DATE-параметра запроса.
func (d *Date) TimePtr() *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON сериализует дату как "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(DateLayout) + `"`), nil
}

// UnmarshalJSON принимает "YYYY-MM-DD", RFC 3339 или null.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("дата должна быть строкой: %s", data)
	}
	parsed, err := ParseDate(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
