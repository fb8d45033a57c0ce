package dbx

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/docsync/internal/timex"
)

// TimeText scans a fixed-width TEXT timestamp column into *T.
//
//	var d models.Document
//	row.Scan(&d.ID, dbx.TimeText{T: &d.UpdatedAt})
type TimeText struct {
	T *time.Time
}

func (t TimeText) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case time.Time:
		*t.T = v.UTC()
		return nil
	default:
		return fmt.Errorf("cannot scan %T into timestamp", src)
	}
	parsed, err := timex.Parse(s)
	if err != nil {
		return err
	}
	*t.T = parsed
	return nil
}

// TimeArg renders t for a TEXT timestamp column.
func TimeArg(t time.Time) string {
	return timex.Format(t)
}

// NullString converts an optional string into a nullable column value.
func NullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// StringPtr is the inverse of NullString.
func StringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
