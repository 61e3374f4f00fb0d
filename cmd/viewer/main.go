package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/olekukonko/tablewriter"

	"campus-chat/domain"
)

type Config struct {
	BadgerFilepath string `envconfig:"BADGER_FILEPATH" default:"/tmp/campus-chat/badger"`
	// VIEWER_PREFIX defaults to search results, use "user:" for accounts
	Prefix  string `envconfig:"VIEWER_PREFIX" default:"result:"`
	Colours bool   `envconfig:"VIEWER_COLOURS" default:"true"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	db, err := openDB(cfg.BadgerFilepath)
	if err != nil {
		log.Fatal("Error while opening Badger: ", err)
	}
	defer db.Close()

	header := fmt.Sprintf(" %s (prefix %q) ", cfg.BadgerFilepath, cfg.Prefix)
	if cfg.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	fmt.Println(header)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Keyword", "Time", "ID", "Title", "URL", "Summary"})
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

	rows := 0
	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefixBytes := []byte(cfg.Prefix)
		for it.Seek(prefixBytes); it.ValidForPrefix(prefixBytes); it.Next() {
			item := it.Item()
			err := item.Value(func(v []byte) error {
				var result domain.SearchResult
				if err := json.Unmarshal(v, &result); err != nil {
					// Au lieu de stopper tout le script, on log l'erreur et on continue
					fmt.Printf("Error unmarshaling key %s: %v\n", string(item.Key()), err)
					return nil
				}

				displayID := result.ID.String()
				if len(displayID) > 8 {
					displayID = displayID[:8]
				}

				table.Append([]string{
					result.Keyword,
					result.At.Format(time.DateTime),
					displayID,
					truncate(result.Title, 40),
					result.URL,
					truncate(result.Summary, 60),
				})
				rows++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}

	table.Render()

	footer := fmt.Sprintf(" %d rows ", rows)
	if cfg.Colours {
		footer = color.New(color.FgCyan).Render(footer)
	}
	fmt.Println(footer)
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}

func openDB(path string) (*badger.DB, error) {
	opts := badger.DefaultOptions(path).
		WithReadOnly(true).
		WithLogger(nil).
		WithBypassLockGuard(true).
		WithValueLogFileSize(10 * 1024 * 1024)

	db, err := badger.Open(opts)
	if err != nil {
		// Si corruption détectée, essaie un open en write pour truncate
		if strings.Contains(err.Error(), "Log truncate required") {
			repairOpts := badger.DefaultOptions(path).
				WithLogger(nil).WithBypassLockGuard(true)

			db, err = badger.Open(repairOpts)
			if err != nil {
				return nil, fmt.Errorf("repair failed: %w", err)
			}

			// Ferme et réouvre en read-only
			db.Close()
			return badger.Open(opts)
		}
		return nil, err
	}
	return db, nil
}
