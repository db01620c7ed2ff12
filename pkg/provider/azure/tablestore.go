// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package azure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/platform-engineering-labs/cloudvault/pkg/client"
	"github.com/platform-engineering-labs/cloudvault/pkg/config"
	"github.com/platform-engineering-labs/cloudvault/pkg/provider"
)

// Query parameters with a fixed meaning for ExecuteQuery. All other parameters bind @placeholders.
const (
	QueryParamTable = "table"
	QueryParamTop   = "top"

	// PropertyTables lists tables to create right after the account is provisioned.
	PropertyTables = "tables"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]{2,62}$`)

// TableStore is an AnalyticsResource backed by a storage account and Azure Table storage.
//
// Queries are OData filters evaluated by the table service; the target table is
// chosen with the "table" query parameter.
type TableStore struct {
	*storageAccount

	client *client.Client
	mu     sync.Mutex
	tables tableServiceAPI
}

var (
	_ provider.AnalyticsResource = (*TableStore)(nil)
	_ provider.Lister            = (*TableStore)(nil)
)

// NewTableStore creates a table store adapter for the storage account called name.
func NewTableStore(name string, cfg *config.Config, opts ...Option) (*TableStore, error) {
	o := newOptions(opts)
	account, err := newStorageAccount(name, cfg, o, "azure-tablestore", "table store", "tablestore")
	if err != nil {
		return nil, err
	}
	return &TableStore{
		storageAccount: account,
		client:         o.client,
		tables:         o.tables,
	}, nil
}

// Create provisions the storage account and then the tables listed in the "tables" property.
// Table names are checked before anything is provisioned. When table creation fails
// the account stays provisioned and its ID is returned along with the error.
func (t *TableStore) Create(ctx context.Context, opts provider.CreateOptions) (string, error) {
	tables, err := stringList(opts.Properties, PropertyTables)
	if err != nil {
		return "", fail(t.logger, opCreate, err)
	}
	for _, name := range tables {
		if err := validateTableName(name); err != nil {
			return "", fail(t.logger, opCreate, err)
		}
	}

	id, err := t.storageAccount.Create(ctx, opts)
	if err != nil {
		return "", err
	}

	if err := createAll(ctx, tables, func(ctx context.Context, table string) error {
		return t.CreateTable(ctx, table, nil)
	}); err != nil {
		return id, fail(t.logger, opCreate, err)
	}
	return id, nil
}

// CreateTable creates a table. Table storage is schemaless, so schema is only
// checked for empty column names and recorded in the log.
func (t *TableStore) CreateTable(ctx context.Context, tableName string, schema map[string]string) error {
	log := operationLogger(t.logger, opCreateTable, t.Name())

	if err := validateTableName(tableName); err != nil {
		return fail(log, opCreateTable, err)
	}
	for column := range schema {
		if strings.TrimSpace(column) == "" {
			return fail(log, opCreateTable, errors.New("schema contains an empty column name"))
		}
	}

	svc, err := t.tableService()
	if err != nil {
		return fail(log, opCreateTable, err)
	}
	if err := svc.CreateTable(ctx, tableName); err != nil {
		return fail(log, opCreateTable, err)
	}

	log.Info().Str("table", tableName).Interface("schema", schema).Msg("created table")
	return nil
}

// ExecuteQuery runs an OData filter against the table named by parameters["table"].
// An empty query returns every entity. parameters["top"] caps the number of rows.
func (t *TableStore) ExecuteQuery(ctx context.Context, query string, parameters map[string]any) ([]map[string]any, error) {
	log := operationLogger(t.logger, opExecuteQuery, t.Name())

	table, _ := parameters[QueryParamTable].(string)
	if table == "" {
		return nil, fail(log, opExecuteQuery, fmt.Errorf("query parameter %q is required", QueryParamTable))
	}
	top, err := topParam(parameters[QueryParamTop])
	if err != nil {
		return nil, fail(log, opExecuteQuery, err)
	}

	bindings := make(map[string]any, len(parameters))
	for k, v := range parameters {
		if k != QueryParamTable && k != QueryParamTop {
			bindings[k] = v
		}
	}
	filter, err := bindFilter(strings.TrimSpace(query), bindings)
	if err != nil {
		return nil, fail(log, opExecuteQuery, err)
	}

	svc, err := t.tableService()
	if err != nil {
		return nil, fail(log, opExecuteQuery, err)
	}
	raw, err := svc.ListEntities(ctx, table, filter, top)
	if err != nil {
		return nil, fail(log, opExecuteQuery, err)
	}

	rows := make([]map[string]any, 0, len(raw))
	for _, entity := range raw {
		var row map[string]any
		if err := json.Unmarshal(entity, &row); err != nil {
			return nil, fail(log, opExecuteQuery, fmt.Errorf("decode entity: %w", err))
		}
		for k := range row {
			if strings.HasPrefix(k, "odata.") {
				delete(row, k)
			}
		}
		rows = append(rows, row)
	}

	log.Debug().Str("table", table).Str("filter", filter).Int("rows", len(rows)).Msg("executed query")
	return rows, nil
}

func (t *TableStore) tableService() (tableServiceAPI, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.tables != nil {
		return t.tables, nil
	}
	if t.client == nil {
		c, err := client.NewClient(t.Config())
		if err != nil {
			return nil, err
		}
		t.client = c
	}
	svc, err := t.client.NewTableServiceClient(client.TableServiceURL(t.Name()))
	if err != nil {
		return nil, err
	}
	t.tables = &tableServiceClientWrapper{client: svc}
	return t.tables, nil
}

func topParam(v any) (int32, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return clampTop(int64(x))
	case int32:
		return clampTop(int64(x))
	case int64:
		return clampTop(x)
	case float64:
		if x != float64(int64(x)) {
			return 0, fmt.Errorf("query parameter %q must be an integer", QueryParamTop)
		}
		return clampTop(int64(x))
	default:
		return 0, fmt.Errorf("query parameter %q must be an integer", QueryParamTop)
	}
}

func clampTop(n int64) (int32, error) {
	if n < 0 {
		return 0, fmt.Errorf("query parameter %q must not be negative", QueryParamTop)
	}
	if n > 1<<31-1 {
		n = 1<<31 - 1
	}
	return int32(n), nil
}

// validateTableName checks Azure's table naming rules.
func validateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q: must be 3-63 letters or digits, starting with a letter", name)
	}
	return nil
}
