package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayID(t *testing.T) {
	tests := []struct {
		name string
		id   string
		want string
	}{
		{"uuid cut to width", "f47ac10b-58cc-4372-a567-0e02b2c3d479", "f47ac10b"},
		{"short id padded", "abc", "abc     "},
		{"empty id", "", "        "},
		{"multibyte id cut on rune boundary", "séance-ришение-x", "séance-р"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &SessionDescriptor{SessionID: tt.id}
			got := d.DisplayID(8)
			assert.Equal(t, tt.want, got)
			assert.Len(t, []rune(got), 8)
		})
	}
}

func TestRecency(t *testing.T) {
	start := time.Date(2026, 2, 8, 9, 0, 0, 0, time.UTC)
	mtime := time.Date(2026, 2, 8, 12, 0, 0, 0, time.UTC)

	d := &SessionDescriptor{StartTime: start, LastModified: mtime}
	assert.Equal(t, start, d.Recency())

	d = &SessionDescriptor{LastModified: mtime}
	assert.Equal(t, mtime, d.Recency())
}
