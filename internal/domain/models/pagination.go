package models

const (
	MaxPageLimit = 100
)

// CursorQuery selects one page of a newest-first listing. Cursor is the id of the
// last row already seen and is excluded from the page.
type CursorQuery struct {
	Limit  int   `form:"limit" json:"limit" binding:"omitempty,min=1,max=100"`
	Cursor *uint `form:"cursor" json:"cursor"`
}

// WithDefaultLimit returns q with Limit set to def when the caller left it empty.
func (q CursorQuery) WithDefaultLimit(def int) CursorQuery {
	if q.Limit <= 0 {
		q.Limit = def
	}
	if q.Limit > MaxPageLimit {
		q.Limit = MaxPageLimit
	}
	return q
}

// CursorPage is one page of results; NextCursor is nil on the last page.
type CursorPage[T any] struct {
	Items      []T   `json:"items"`
	NextCursor *uint `json:"nextCursor"`
}

// NewCursorPage trims rows fetched with limit+1 down to limit. When the extra row
// was present the id of the last kept row becomes the next cursor.
func NewCursorPage[T any](rows []T, limit int, id func(T) uint) *CursorPage[T] {
	page := &CursorPage[T]{Items: rows}
	if page.Items == nil {
		page.Items = []T{}
	}
	if limit > 0 && len(rows) > limit {
		page.Items = rows[:limit]
		next := id(page.Items[limit-1])
		page.NextCursor = &next
	}
	return page
}
