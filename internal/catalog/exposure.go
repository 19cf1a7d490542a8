package catalog

import (
	"database/sql/driver"
	"fmt"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

const (
	microsPerDay   = int64(24 * time.Hour / time.Microsecond)
	microsPerMonth = 30 * microsPerDay
)

// Exposure is an image exposure time stored as a PostgreSQL INTERVAL.
// The zero value is NULL.
type Exposure struct {
	Duration time.Duration
	Valid    bool
}

// ExposureFromSeconds converts an EXPTIME-style value in seconds.
// Negative and non-finite values yield a NULL exposure.
func ExposureFromSeconds(seconds float64) Exposure {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return Exposure{}
	}
	return Exposure{Duration: time.Duration(seconds * float64(time.Second)), Valid: true}
}

// Scan implements sql.Scanner for INTERVAL columns.
// Days and months are folded into the duration, a month counting as 30 days.
func (e *Exposure) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*e = Exposure{}
		return nil
	case pgtype.Interval:
		e.fromInterval(v)
		return nil
	case string:
		var iv pgtype.Interval
		if err := iv.Scan(v); err != nil {
			return fmt.Errorf("failed to parse interval %q: %w", v, err)
		}
		e.fromInterval(iv)
		return nil
	case []byte:
		return e.Scan(string(v))
	default:
		return fmt.Errorf("cannot scan %T into Exposure", src)
	}
}

func (e *Exposure) fromInterval(iv pgtype.Interval) {
	micros := iv.Microseconds + int64(iv.Days)*microsPerDay + int64(iv.Months)*microsPerMonth
	e.Duration = time.Duration(micros) * time.Microsecond
	e.Valid = iv.Valid
}

// Value implements driver.Valuer
func (e Exposure) Value() (driver.Value, error) {
	if !e.Valid {
		return nil, nil
	}
	return pgtype.Interval{Microseconds: e.Duration.Microseconds(), Valid: true}, nil
}

// String returns the duration, or "NULL"
func (e Exposure) String() string {
	if !e.Valid {
		return "NULL"
	}
	return e.Duration.String()
}
