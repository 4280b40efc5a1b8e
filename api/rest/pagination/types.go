package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// page size bounds for one listing endpoint
type Limits struct {
	Default int
	Max     int
}

type Params struct {
	Limit  int
	Offset int
}

type Meta struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"hasMore"`
}

// Clamp falls back to the default size for non-positive limits and never pages below zero
func (l Limits) Clamp(limit, offset int) Params {
	switch {
	case limit <= 0:
		limit = l.Default
	case limit > l.Max:
		limit = l.Max
	}

	return Params{Limit: limit, Offset: max(offset, 0)}
}

// reads ?limit= and ?offset=, ignoring values that are not integers
func (l Limits) FromQuery(c *gin.Context) Params {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	return l.Clamp(limit, offset)
}

func (p Params) Meta(total int) Meta {
	return Meta{
		Total:   total,
		Limit:   p.Limit,
		Offset:  p.Offset,
		HasMore: p.Offset+p.Limit < total,
	}
}
