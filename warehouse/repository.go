//go:generate go run go.uber.org/mock/mockgen -source=repository.go -destination=../mocks/mock_result_repository.go -package=mocks
package warehouse

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blugelabs/bluge"
	"github.com/dgraph-io/badger/v4"

	"campus-chat/domain"
)

type IResultRepository interface {
	Store(result domain.SearchResult) error
	ScanByKeyword(keyword string, cursor *string) ([]domain.SearchResult, *string, error)
	SearchPaginated(ctx context.Context, query string, offset int) ([]domain.SearchResult, uint64, error)
	Flush() error
}

// ResultRepository persists scraped movie results twice: the full record in
// BadgerDB for chronological scans, a text projection in Bluge for search.
type ResultRepository struct {
	db       *badger.DB
	writer   *bluge.Writer
	log      *slog.Logger
	limit    *int
	pageSize int

	mu      sync.Mutex
	pending []*bluge.Document
}

func NewResultRepository(db *badger.DB, writer *bluge.Writer, log *slog.Logger, limit *int, pageSize int) *ResultRepository {
	return &ResultRepository{
		db:       db,
		writer:   writer,
		log:      log,
		limit:    limit,
		pageSize: pageSize,
	}
}

// resultKey is formatted as "result:{keyword}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding (lexicographical order).
//  2. Prevent data loss by using UUID as a collision disconnector if two results
//     arrive at the same nanosecond.
func resultKey(result domain.SearchResult) string {
	return fmt.Sprintf("result:%s:%019d:%s",
		result.Keyword,
		result.At.UnixNano(),
		result.ID,
	)
}

// Store writes the record to BadgerDB immediately and queues the Bluge
// document. Call Flush to make queued documents searchable.
func (r *ResultRepository) Store(result domain.SearchResult) error {
	key := resultKey(result)
	bytes, err := json.Marshal(result)
	if err != nil {
		return err
	}
	err = r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
	if err != nil {
		return err
	}

	doc := bluge.NewDocument(key).
		AddField(bluge.NewKeywordField("keyword", result.Keyword)).
		AddField(bluge.NewTextField("title", result.Title)).
		AddField(bluge.NewTextField("summary", result.Summary))

	r.mu.Lock()
	r.pending = append(r.pending, doc)
	r.mu.Unlock()
	return nil
}

// Flush applies the queued Bluge documents. Safe to call repeatedly.
func (r *ResultRepository) Flush() error {
	r.mu.Lock()
	docs := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, doc := range docs {
		if err := r.writer.Update(doc.ID(), doc); err != nil {
			return err
		}
	}
	return nil
}

// ScanByKeyword retrieves results for a keyword using a reverse prefix scan.
// Thanks to the padded timestamp in the key, results come back newest first.
// It stops collecting once the configured limit is reached and returns a
// cursor for the next page, nil when the scan is exhausted.
func (r *ResultRepository) ScanByKeyword(keyword string, cursor *string) ([]domain.SearchResult, *string, error) {
	var byteResults [][]byte
	var lastKey string
	exhausted := true
	err := r.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("result:%s:", keyword)
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if r.limit != nil && len(byteResults) == *r.limit {
				exhausted = false
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteResults = append(byteResults, value)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	results := make([]domain.SearchResult, 0, len(byteResults))
	for _, b := range byteResults {
		var result domain.SearchResult
		if err = json.Unmarshal(b, &result); err != nil {
			return nil, nil, err
		}
		results = append(results, result)
	}

	if exhausted {
		return results, nil, nil
	}
	return results, &lastKey, nil
}

// SearchPaginated runs a full-text query over titles and summaries.
// It returns one page of full records plus the total hit count.
func (r *ResultRepository) SearchPaginated(ctx context.Context, query string, offset int) ([]domain.SearchResult, uint64, error) {
	reader, err := r.writer.Reader()
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = reader.Close() }()

	textQuery := bluge.NewBooleanQuery().
		AddShould(bluge.NewMatchQuery(query).SetField("title")).
		AddShould(bluge.NewMatchQuery(query).SetField("summary"))

	request := bluge.NewTopNSearch(r.pageSize, textQuery).
		SetFrom(offset).
		WithStandardAggregations()

	iterator, err := reader.Search(ctx, request)
	if err != nil {
		return nil, 0, err
	}

	var keys []string
	match, err := iterator.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				keys = append(keys, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, 0, visitErr
		}
		match, err = iterator.Next()
	}
	if err != nil {
		return nil, 0, err
	}
	total := iterator.Aggregations().Count()

	results := make([]domain.SearchResult, 0, len(keys))
	for _, key := range keys {
		result, err := r.fetch(key)
		if stderrors.Is(err, badger.ErrKeyNotFound) {
			// Index can briefly lag behind a deletion, skip the ghost
			r.log.Warn("indexed result missing from store", slog.String("key", key))
			continue
		}
		if err != nil {
			return nil, 0, err
		}
		results = append(results, result)
	}
	return results, total, nil
}

func (r *ResultRepository) fetch(key string) (domain.SearchResult, error) {
	var bytes []byte
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		bytes, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return domain.SearchResult{}, err
	}
	var result domain.SearchResult
	if err := json.Unmarshal(bytes, &result); err != nil {
		return domain.SearchResult{}, err
	}
	return result, nil
}
