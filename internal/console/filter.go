package console

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/employee-admin/internal/client"
	"github.com/noah-isme/employee-admin/internal/models"
)

// FilterMode is the active search dimension.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterByName
	FilterByDepartment
	FilterByID
)

var filterModeNames = map[FilterMode]string{
	FilterNone:         "none",
	FilterByName:       "name",
	FilterByDepartment: "department",
	FilterByID:         "id",
}

// String returns the form value of m.
func (m FilterMode) String() string {
	if name, ok := filterModeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("FilterMode(%d)", int(m))
}

// Modes lists every filter mode in display order.
func Modes() []FilterMode {
	return []FilterMode{FilterNone, FilterByName, FilterByDepartment, FilterByID}
}

// ParseFilterMode reads a form value produced by FilterMode.String.
func ParseFilterMode(s string) (FilterMode, error) {
	for mode, name := range filterModeNames {
		if strings.EqualFold(strings.TrimSpace(s), name) {
			return mode, nil
		}
	}
	return FilterNone, fmt.Errorf("unknown filter mode %q", s)
}

// Filter is the active mode and the one query slot that belongs to it.
type Filter struct {
	mode  FilterMode
	query string
}

// Mode returns the active mode.
func (f Filter) Mode() FilterMode { return f.mode }

// Query returns the text typed for the active mode.
func (f Filter) Query() string { return f.query }

// WithMode switches to mode. The query slot belongs to the previous mode and is cleared.
func (f Filter) WithMode(mode FilterMode) Filter {
	return Filter{mode: mode}
}

// WithQuery stores text for the active mode. Under FilterNone there is no slot.
func (f Filter) WithQuery(text string) Filter {
	if f.mode == FilterNone {
		return f
	}
	f.query = text
	return f
}

// Ready reports whether a search under f would issue a request.
func (f Filter) Ready() bool {
	return f.mode != FilterNone && strings.TrimSpace(f.query) != ""
}

// SearchResult is the outcome of one resolved search.
type SearchResult struct {
	// Applied is false when the search was a no-op and the list must not change.
	Applied   bool
	Employees []models.Employee
	Alert     string
}

// NotFoundAlert is shown when a lookup by ID finds nothing.
func NotFoundAlert(id string) string {
	return "Employee not found with ID: " + id
}

// FilterController owns the filter state and resolves searches against the
// server, one request per search.
type FilterController struct {
	api    API
	logger *zap.Logger
	filter Filter
}

// NewFilterController builds a controller starting in FilterNone.
func NewFilterController(api API, logger *zap.Logger) *FilterController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FilterController{api: api, logger: logger}
}

// Filter returns the current filter.
func (c *FilterController) Filter() Filter { return c.filter }

// SelectMode switches mode and clears the query text.
func (c *FilterController) SelectMode(mode FilterMode) {
	c.filter = c.filter.WithMode(mode)
}

// SetQuery stores text for the active mode.
func (c *FilterController) SetQuery(text string) {
	c.filter = c.filter.WithQuery(text)
}

// Reset returns to FilterNone with no text.
func (c *FilterController) Reset() {
	c.filter = Filter{}
}

// Search resolves the active filter. A blank query or FilterNone issues no
// request. A failed lookup by ID yields an empty list and an alert; any other
// failure is returned and the displayed list must stay as it is.
func (c *FilterController) Search(ctx context.Context) (SearchResult, error) {
	if !c.filter.Ready() {
		return SearchResult{}, nil
	}
	query := strings.TrimSpace(c.filter.query)

	var (
		list []models.Employee
		err  error
	)
	switch c.filter.mode {
	case FilterByName:
		list, err = c.api.SearchByKeyword(ctx, query)
	case FilterByDepartment:
		list, err = c.api.ListByDepartment(ctx, query)
	case FilterByID:
		var employee *models.Employee
		employee, err = c.api.GetByID(ctx, query)
		if err == nil {
			return SearchResult{Applied: true, Employees: []models.Employee{*employee}}, nil
		}
		if errors.Is(err, client.ErrNotFound) {
			c.logger.Info("employee lookup found nothing", zap.String("id", query), zap.Error(err))
			return SearchResult{Applied: true, Employees: []models.Employee{}, Alert: NotFoundAlert(query)}, nil
		}
	}
	if err != nil {
		c.logger.Error("employee search failed", zap.Stringer("mode", c.filter.mode), zap.String("query", query), zap.Error(err))
		return SearchResult{}, err
	}
	if list == nil {
		list = []models.Employee{}
	}
	return SearchResult{Applied: true, Employees: list}, nil
}
