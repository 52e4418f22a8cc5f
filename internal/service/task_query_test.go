package service

import (
	"math"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/taskmanager/internal/models"
)

func TestParseIntPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"abc", 0},
		{"12", 12},
		{"12abc", 12},
		{"  7", 7},
		{"+3", 3},
		{"-4", -4},
		{"3.9", 3},
		{"-", 0},
		{"99999999999999", math.MaxInt32},
		{"-99999999999999", -math.MaxInt32},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, parseIntPrefix(tt.in), "input %q", tt.in)
	}
}

func TestParseTaskQuery(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		q := ParseTaskQuery(url.Values{})

		assert.Nil(t, q.Completed)
		assert.Nil(t, q.Sort)
		assert.Equal(t, 10, q.Limit)
		assert.Equal(t, 1, q.Page)
	})

	t.Run("Completed filter", func(t *testing.T) {
		for raw, want := range map[string]bool{"true": true, "false": false, "yes": false, "TRUE": false} {
			q := ParseTaskQuery(url.Values{"completed": {raw}})
			require.NotNil(t, q.Completed, raw)
			assert.Equal(t, want, *q.Completed, raw)
		}

		q := ParseTaskQuery(url.Values{"completed": {""}})
		assert.Nil(t, q.Completed)
	})

	t.Run("Sort", func(t *testing.T) {
		tests := []struct {
			raw  string
			want *models.TaskSort
		}{
			{"createdAt", &models.TaskSort{Field: "createdAt"}},
			{"createdAt:desc", &models.TaskSort{Field: "createdAt", Desc: true}},
			{"createdAt:asc", &models.TaskSort{Field: "createdAt"}},
			{"completed:DESC", &models.TaskSort{Field: "completed"}},
			{":desc", nil},
		}
		for _, tt := range tests {
			q := ParseTaskQuery(url.Values{"sortBy": {tt.raw}})
			assert.Equal(t, tt.want, q.Sort, tt.raw)
		}
	})

	t.Run("Limit and page", func(t *testing.T) {
		q := ParseTaskQuery(url.Values{"limit": {"5items"}, "page": {"-2"}})
		assert.Equal(t, 5, q.Limit)
		assert.Equal(t, 2, q.Page)

		q = ParseTaskQuery(url.Values{"limit": {"0"}, "page": {"none"}})
		assert.Equal(t, 10, q.Limit)
		assert.Equal(t, 1, q.Page)
	})
}
