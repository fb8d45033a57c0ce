package dbx

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeText_Scan(t *testing.T) {
	want := time.Date(2024, 1, 2, 3, 4, 5, 6, time.UTC)

	var got time.Time
	require.NoError(t, TimeText{T: &got}.Scan(TimeArg(want)))
	assert.True(t, want.Equal(got))

	require.NoError(t, TimeText{T: &got}.Scan([]byte("2024-01-01T12:00")))
	assert.Equal(t, 12, got.Hour())

	require.NoError(t, TimeText{T: &got}.Scan(want))
	assert.True(t, want.Equal(got))

	require.Error(t, TimeText{T: &got}.Scan(42))
	require.Error(t, TimeText{T: &got}.Scan("not a time"))
}

func TestNullString_RoundTrip(t *testing.T) {
	assert.False(t, NullString(nil).Valid)
	assert.Nil(t, StringPtr(sql.NullString{}))

	s := "c1"
	ns := NullString(&s)
	require.True(t, ns.Valid)
	assert.Equal(t, "c1", *StringPtr(ns))
}
