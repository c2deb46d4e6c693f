package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/service"
	"github.com/devicedesk/devicedesk/internal/types"
)

// importOrder lists the files BulkImport looks for. Clients and providers go
// first so device rows can reference them.
var importOrder = []types.TableName{
	types.TableNameClients,
	types.TableNameProviders,
	types.TableNameDevices,
}

// BulkImport loads clients.csv, providers.csv and devices.csv from DIR_PATH
// into TENANT_ID. Missing files are skipped.
func BulkImport() error {
	dir := os.Getenv("DIR_PATH")
	if dir == "" {
		return fmt.Errorf("directory is required (set DIR_PATH environment variable)")
	}

	ctx, err := tenantContext()
	if err != nil {
		return err
	}

	env, err := newScriptEnv()
	if err != nil {
		return err
	}
	defer env.close()

	importer := service.NewImportService(env.params)
	results := make([]*dto.ImportResult, 0, len(importOrder))

	for _, entity := range importOrder {
		path := filepath.Join(dir, string(entity)+".csv")
		f, err := os.Open(path)
		if errors.Is(err, os.ErrNotExist) {
			env.log.Infow("no file for entity, skipping", "entity", entity, "path", path)
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", path, err)
		}

		env.log.Infow("importing file", "entity", entity, "path", path, "tenant_id", types.GetTenantID(ctx))
		res, err := importer.Import(ctx, entity, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", path, err)
		}
		results = append(results, res)
	}

	printImportSummary(results)
	return nil
}

func printImportSummary(results []*dto.ImportResult) {
	fmt.Println("\n=== Import Summary ===")
	for _, res := range results {
		fmt.Printf("%-10s total=%d imported=%d skipped=%d failed=%d\n",
			res.Entity, res.Total, res.Imported, res.Skipped, res.Failed)
		for _, e := range res.Errors {
			fmt.Printf("  row %d: %s\n", e.Row, e.Message)
		}
	}
}
