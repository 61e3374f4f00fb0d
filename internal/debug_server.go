package internal

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

//go:embed inspect.html
var templatesFS embed.FS

type InspectRow struct {
	Key       string
	Type      string
	Timestamp string
	EntityID  string
	Namespace string
	Detail    string
}

type RowMapper func(key string, val []byte) InspectRow
type StatsProvider func() map[string]any

type PageData struct {
	Prefix string
	Items  []InspectRow
	Stats  map[string]any
}

// StartDebugServer exposes stored rows and live stats over HTTP for
// inspection during development. Never mount this on a public port.
func StartDebugServer(db *badger.DB, port int, mapper RowMapper, statsProvider StatsProvider) {
	mux := http.NewServeMux()
	tmpl := template.Must(template.ParseFS(templatesFS, "inspect.html"))

	if mapper == nil {
		mapper = DefaultMapper
	}

	mux.HandleFunc("/inspect", func(w http.ResponseWriter, r *http.Request) {
		prefix := r.URL.Query().Get("prefix")
		if prefix == "" {
			prefix = "result:"
		}

		data := PageData{
			Prefix: prefix,
			Stats:  make(map[string]any),
		}

		// Récupération des statistiques dynamiques pour le dashboard
		if statsProvider != nil {
			data.Stats = statsProvider()
		}

		_ = db.View(func(txn *badger.Txn) error {
			it := txn.NewIterator(badger.DefaultIteratorOptions)
			defer it.Close()
			for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
				item := it.Item()
				_ = item.Value(func(val []byte) error {
					data.Items = append(data.Items, mapper(string(item.Key()), val))
					return nil
				})
			}
			return nil
		})

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = tmpl.Execute(w, data)
	})

	go func() {
		// Écoute sur toutes les interfaces pour permettre l'accès réseau
		_ = http.ListenAndServe(fmt.Sprintf("0.0.0.0:%d", port), mux)
	}()
}

// DefaultMapper understands the "result:{keyword}:{ts}:{uuid}" and
// "user:{name}" key layouts, anything else renders as RAW.
func DefaultMapper(key string, val []byte) InspectRow {
	parts := strings.Split(key, ":")
	row := InspectRow{
		Key:       key,
		Type:      "RAW",
		Timestamp: "--:--:--",
		EntityID:  "--------",
		Namespace: "default",
		Detail:    "Size: " + strconv.Itoa(len(val)) + " bytes",
	}

	switch {
	case len(parts) >= 4 && parts[0] == "result":
		row.Type = "RESULT"
		row.Namespace = parts[1]
		if tsNano, err := strconv.ParseInt(parts[2], 10, 64); err == nil {
			row.Timestamp = time.Unix(0, tsNano).Format("15:04:05")
		}
		row.EntityID = shorten(parts[3])
		var fields struct {
			Title string `json:"title"`
			URL   string `json:"url"`
		}
		if err := json.Unmarshal(val, &fields); err == nil {
			row.Detail = fmt.Sprintf("%s (%s)", fields.Title, fields.URL)
		}
	case len(parts) == 2 && parts[0] == "user":
		row.Type = "USER"
		row.Namespace = "accounts"
		row.EntityID = parts[1]
	}
	return row
}

func shorten(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
