package api

import (
	"context"
	"database/sql"

	"github.com/danielgtaylor/huma/v2"
)

// DuckDBHandler exposes the connection internal/db.Get opens for read-only
// SQL inspection: GeoParquet sources are read straight off disk with
// read_parquet()/ST_AsGeoJSON (see internal/source.loadParquet) rather than
// imported into tables, so this console exists mainly to let an operator run
// DESCRIBE/SELECT against a .parquet file before pointing a build at it.
type DuckDBHandler struct {
	db *sql.DB
}

// NewDBHandler creates a DuckDBHandler. db may be nil (internal/db.Get
// failed to open); every route then answers 503 instead of panicking.
func NewDBHandler(db *sql.DB) *DuckDBHandler {
	return &DuckDBHandler{db: db}
}

// RegisterRoutes registers the DuckDB console routes with Huma.
func (h *DuckDBHandler) RegisterRoutes(api huma.API) {
	huma.Get(api, "/api/v1/duckdb/tables", h.ListTables, huma.OperationTags("duckdb"))
	huma.Post(api, "/api/v1/duckdb/query", h.Query, huma.OperationTags("duckdb"))
}

// TablesOutput is the response for listing tables.
type TablesOutput struct {
	Body struct {
		Tables []string `json:"tables" doc:"Table names registered in the DuckDB catalog (empty unless a query has CREATE TABLE'd something)"`
	}
}

// ListTables returns the DuckDB catalog's tables. GeoParquet builds never
// populate this (they query the parquet file directly), so an empty list
// here is the common case, not a failure.
func (h *DuckDBHandler) ListTables(ctx context.Context, input *struct{}) (*TablesOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("DuckDB not available")
	}

	rows, err := h.db.QueryContext(ctx, "SHOW TABLES")
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to list tables", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err == nil {
			tables = append(tables, name)
		}
	}

	if tables == nil {
		tables = []string{}
	}

	return &TablesOutput{
		Body: struct {
			Tables []string `json:"tables" doc:"Table names registered in the DuckDB catalog (empty unless a query has CREATE TABLE'd something)"`
		}{
			Tables: tables,
		},
	}, nil
}

// QueryInput is the input for SQL queries.
type QueryInput struct {
	Body struct {
		Query string `json:"query" required:"true" doc:"SQL query to run against DuckDB, e.g. DESCRIBE read_parquet('sources/foo.geoparquet')"`
	}
}

// QueryOutput is the response for SQL queries.
type QueryOutput struct {
	Body struct {
		Columns []string                 `json:"columns" doc:"Column names"`
		Rows    []map[string]interface{} `json:"rows" doc:"Query results"`
		Count   int                      `json:"count" doc:"Number of rows returned"`
	}
}

// Query runs an arbitrary SQL statement against DuckDB, giving an operator a
// way to inspect a GeoParquet source (column names, CRS metadata, row
// counts) before handing it to POST /api/v1/sources/{name}/build.
func (h *DuckDBHandler) Query(ctx context.Context, input *QueryInput) (*QueryOutput, error) {
	if h.db == nil {
		return nil, huma.Error503ServiceUnavailable("DuckDB not available")
	}

	rows, err := h.db.QueryContext(ctx, input.Body.Query)
	if err != nil {
		return nil, huma.Error400BadRequest("query failed: " + err.Error())
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to get columns", err)
	}

	var results []map[string]interface{}
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			continue
		}

		row := make(map[string]interface{})
		for i, col := range columns {
			row[col] = values[i]
		}
		results = append(results, row)
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return &QueryOutput{
		Body: struct {
			Columns []string                 `json:"columns" doc:"Column names"`
			Rows    []map[string]interface{} `json:"rows" doc:"Query results"`
			Count   int                      `json:"count" doc:"Number of rows returned"`
		}{
			Columns: columns,
			Rows:    results,
			Count:   len(results),
		},
	}, nil
}
