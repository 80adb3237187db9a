package main

import (
	"flag"
	"log"
	"log/slog"
	"os"
	"strconv"

	"lobby-lab/repositories"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/database"
	"github.com/olekukonko/tablewriter"
)

func main() {
	dbPath := flag.String("db", database.DefaultPath, "Path to the journal badger DB")
	room := flag.String("room", "", "Only show this room, newest first")
	limit := flag.Int("limit", 0, "Maximum entries per room (0 = all)")
	flag.Parse()

	// BypassLockGuard allows opening while the lobby server holds the lock
	db, err := badger.Open(badger.DefaultOptions(*dbPath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	var limitEntries *int
	if *limit > 0 {
		limitEntries = limit
	}
	repository := repositories.NewJournalRepository(db, slog.Default(), limitEntries)

	var entries []repositories.JournalEntry
	if *room != "" {
		entries, _, err = repository.List(*room, nil)
	} else {
		entries, err = repository.ListAll()
	}
	if err != nil {
		log.Fatal(err)
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Room", "Type", "Timestamp", "ID", "Payload"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, e := range entries {
		// First 8 characters of the ID are enough to tell entries apart
		displayID := e.ID.String()[:8]
		table.Append([]string{
			e.Room,
			e.Type,
			e.At.Format("15:04:05.000"),
			displayID,
			strconv.Itoa(len(e.Payload)) + " bytes",
		})
	}
	table.Render()
}
