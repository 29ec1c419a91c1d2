package tables

// Constants used when parsing and rendering ordering requests.
const (
	accessorSeparator = "."   // Separator between accessor segments.
	orderDescPrefix   = "-"   // Prefix marking a descending order alias.
	orderSeparator    = ","   // Separator between aliases in an ordering request.
	sequenceRemainder = "..." // Placeholder for "all remaining columns" in a sequence.
)

// Default values for the request-facing field names and table texts.
const (
	defaultOrderByField = "sort"     // Query parameter carrying the ordering request.
	defaultPageField    = "page"     // Query parameter carrying the page number.
	defaultPerPageField = "per_page" // Query parameter carrying the page size.
	defaultPerPage      = 25         // Rows per page when nothing else is configured.
	defaultCellValue    = "—"        // Cell value used when a column declares no default.
)

// Hook method prefixes recognised when registering a hooks value on a table.
const (
	hookRender  = "Render"
	hookValue   = "Value"
	hookOrder   = "Order"
	hookCompute = "Compute"
)

// CSS classes added to generated header and row attributes.
const (
	classOrderable = "orderable"
	classAsc       = "asc"
	classDesc      = "desc"
	classEven      = "even"
	classOdd       = "odd"
	classPinned    = "pinned-row"
)

// Keys used in the payload produced by Table.Make.
const (
	responseHeaders   = "headers"
	responseData      = "data"
	responseTotal     = "recordsTotal"
	responsePage      = "page"
	responseNumPages  = "numPages"
	responseEmptyText = "emptyText"
	rowIDKey          = "DT_RowId"    // Row ID attribute.
	rowClassKey       = "DT_RowClass" // Row class attribute.
)

// SQL fragments used by GormSource.
const (
	queryGroupBy = "GROUP BY"
	queryCount   = "COUNT(*) AS count"
)
