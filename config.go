package tables

import (
	"github.com/go-playground/validator/v10"
)

// Config holds the configuration options shared by every table created
// from a Definition.
//
// Fields:
//   - Orderable: Default orderability of columns that do not set their own.
//   - PerPage: Rows per page when a request does not ask for a size.
//   - Orphans: Trailing rows merged into the last page.
//   - AllowEmptyFirstPage: Whether page 1 is valid for a table without rows.
//   - Prefix: Prefix of every request field name, for pages showing more
//     than one table.
//   - OrderByField: Request field carrying the ordering.
//   - PageField: Request field carrying the page number.
//   - PerPageField: Request field carrying the page size.
type Config struct {
	Orderable           bool
	PerPage             int `validate:"gte=1"`
	Orphans             int `validate:"gte=0"`
	AllowEmptyFirstPage bool
	Prefix              string
	OrderByField        string `validate:"required"`
	PageField           string `validate:"required"`
	PerPageField        string `validate:"required"`
}

// DefaultConfig returns the configuration used by definitions that do not
// provide one.
func DefaultConfig() Config {
	return Config{
		Orderable:           true,
		PerPage:             defaultPerPage,
		AllowEmptyFirstPage: true,
		OrderByField:        defaultOrderByField,
		PageField:           defaultPageField,
		PerPageField:        defaultPerPageField,
	}
}

var validate = validator.New()

// Validate checks the configuration, returning the validator's
// ValidationErrors for out of range values.
func (c Config) Validate() error {
	return validate.Struct(c)
}
