package service

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/yasinhessnawi1/taskmanager/internal/constants"
	"github.com/yasinhessnawi1/taskmanager/internal/models"
)

// ParseTaskQuery reads the task listing parameters.
//
//   - completed: absent or empty means no filter, "true" is true, anything else is false
//   - sortBy: "field" or "field:dir", descending only for dir "desc"
//   - limit, page: the leading integer of the value, 0 or no digits select the default
//
// A negative limit or page counts as its magnitude.
func ParseTaskQuery(values url.Values) models.TaskQuery {
	q := models.TaskQuery{
		Limit: positiveOr(parseIntPrefix(values.Get(constants.QueryParamLimit)), constants.DefaultTaskLimit),
		Page:  positiveOr(parseIntPrefix(values.Get(constants.QueryParamPage)), constants.DefaultTaskPage),
	}

	if raw := values.Get(constants.QueryParamCompleted); raw != "" {
		completed := raw == "true"
		q.Completed = &completed
	}

	if raw := values.Get(constants.QueryParamSortBy); raw != "" {
		field, direction, found := strings.Cut(raw, constants.SortSeparator)
		if field != "" {
			q.Sort = &models.TaskSort{
				Field: field,
				Desc:  found && direction == constants.SortDirectionDesc,
			}
		}
	}

	return q
}

// parseIntPrefix parses the optional sign and leading digits of s after
// leading whitespace, ignoring whatever follows. No digits yields 0.
// Values beyond the int32 range are clamped.
func parseIntPrefix(s string) int {
	s = strings.TrimLeft(s, " \t\n\r\f\v")

	negative := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		negative = s[0] == '-'
		s = s[1:]
	}

	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0
	}

	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil || n > math.MaxInt32 {
		n = math.MaxInt32
	}
	if negative {
		n = -n
	}
	return int(n)
}

// positiveOr returns |n|, or def when n is 0
func positiveOr(n, def int) int {
	if n < 0 {
		n = -n
	}
	if n == 0 {
		return def
	}
	return n
}
