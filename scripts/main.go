package main

import (
	"flag"
	"log"
	"os"
	"sort"

	"github.com/devicedesk/devicedesk/scripts/internal"
	"github.com/samber/lo"
)

type command struct {
	description string
	run         func() error
}

var commands = map[string]command{
	"bulk-import": {
		description: "Import clients.csv, providers.csv and devices.csv from DIR_PATH into TENANT_ID",
		run:         internal.BulkImport,
	},
	"invoice-due": {
		description: "Invoice every active subscription of TENANT_ID that is due (DRY_RUN, WORKER_COUNT)",
		run:         internal.InvoiceDueSubscriptions,
	},
}

func main() {
	cmdName := flag.String("cmd", "", "command to run")
	flag.Parse()

	cmd, ok := commands[*cmdName]
	if !ok {
		names := lo.Keys(commands)
		sort.Strings(names)
		log.Printf("unknown command %q, available commands:", *cmdName)
		for _, name := range names {
			log.Printf("  %-12s %s", name, commands[name].description)
		}
		os.Exit(1)
	}

	if err := cmd.run(); err != nil {
		log.Fatalf("%s failed: %v", *cmdName, err)
	}
}
