package dbmanager

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/plakor-mes/assy-dashboard/internal/apperrors"
)

// allowedTables is the closed set of plant tables the dashboard may touch.
// Identifiers never come from request input; anything outside this set is a
// programming error surfaced at build time.
var allowedTables = map[string]struct{}{
	"TB_MD_ALC_SPEC":               {},
	"TB_MD_CARCODE":                {},
	"TB_PP_RECEIVE_ALC2_DATA":      {},
	"TB_PP_RECEIVE_ALC2_DATA_RAW":  {},
	"TB_PP_WORK_ORDER_ALC":         {},
	"TB_PP_WORK_ORDER_ALC_RAW":     {},
	"TB_PP_WORK_LIST":              {},
	"TB_HKMC_LOT_TRACKING":         {},
	"TB_HKMC_LOT_TRACKING_SUBITEM": {},
}

var allowedProcedures = map[string]struct{}{
	"SP_PP_WORK_ORDER_ALC_C": {},
}

// Builder assembles a parameterised SQL Server statement. Identifier text
// (database, table, column names) is validated against closed allow-lists;
// every request-supplied value goes through Bind and travels as an @pN named
// parameter. The two never mix.
type Builder struct {
	database string
	args     []any
	n        int
	err      error
}

// NewBuilder starts a builder for statements against the given database.
// The database name must come from the site registry, never from a request.
func NewBuilder(database string) *Builder {
	return &Builder{database: database}
}

// Bind registers a value as the next named parameter and returns its
// placeholder text ("@p1", "@p2", ...).
func (b *Builder) Bind(value any) string {
	b.n++
	name := fmt.Sprintf("p%d", b.n)
	b.args = append(b.args, sql.Named(name, value))
	return "@" + name
}

// Table returns the fully qualified form of an allow-listed table.
func (b *Builder) Table(name string) string {
	if _, ok := allowedTables[name]; !ok {
		b.fail("table %q is not allow-listed", name)
		return ""
	}
	return fmt.Sprintf("[%s].[dbo].[%s]", b.database, name)
}

// Procedure returns the fully qualified form of an allow-listed stored
// procedure.
func (b *Builder) Procedure(name string) string {
	if _, ok := allowedProcedures[name]; !ok {
		b.fail("procedure %q is not allow-listed", name)
		return ""
	}
	return fmt.Sprintf("[%s].[dbo].[%s]", b.database, name)
}

// Args returns the accumulated named parameters in bind order.
func (b *Builder) Args() []any {
	return b.args
}

// Err reports the first identifier violation, if any. Callers check it once
// after assembling the full statement.
func (b *Builder) Err() error {
	return b.err
}

func (b *Builder) fail(format string, a ...any) {
	if b.err == nil {
		b.err = fmt.Errorf("%w: "+format, append([]any{apperrors.ErrValidation}, a...)...)
	}
}

// Conditions collects WHERE fragments joined by AND.
type Conditions struct {
	parts []string
}

// Add appends a pre-parameterised fragment.
func (c *Conditions) Add(fragment string) {
	c.parts = append(c.parts, fragment)
}

// Addf appends a formatted fragment. Placeholders in the format must come
// from Builder.Bind.
func (c *Conditions) Addf(format string, a ...any) {
	c.parts = append(c.parts, fmt.Sprintf(format, a...))
}

// Clause renders "WHERE ..." or an empty string when nothing was added.
func (c *Conditions) Clause() string {
	if len(c.parts) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(c.parts, " AND ")
}

// AndClause renders " AND ..." for appending to an existing WHERE.
func (c *Conditions) AndClause() string {
	if len(c.parts) == 0 {
		return ""
	}
	return " AND " + strings.Join(c.parts, " AND ")
}
