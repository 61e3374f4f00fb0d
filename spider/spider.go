//go:generate go run go.uber.org/mock/mockgen -source=spider.go -destination=../mocks/mock_spider.go -package=mocks
package spider

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"campus-chat/domain"
	"campus-chat/errors"
)

const (
	requestTimeout = 10 * time.Second
	maxBodySize    = 4 << 20 // 4 MB
	sniffSize      = 512
)

// Browser-like headers, some engines refuse bare clients
var requestHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/142.0.0.0 Safari/537.36 Edg/142.0.0.0",
	"Accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8,application/signed-exchange;v=b3;q=0.7",
	"Accept-Language": "zh-CN,zh;q=0.9,en-US;q=0.8,en;q=0.7,en-GB;q=0.6",
	"Cache-Control":   "no-cache",
	"Connection":      "keep-alive",
	"Pragma":          "no-cache",
}

type ISpider interface {
	Search(ctx context.Context, keyword string) ([]domain.SearchResult, error)
}

// Spider fetches a search engine result page for a keyword and extracts
// title, summary, url and cover from each result block.
type Spider struct {
	client  *http.Client
	log     *slog.Logger
	baseURL string
	now     func() time.Time
}

func New(log *slog.Logger, baseURL string) *Spider {
	return &Spider{
		client:  &http.Client{Timeout: requestTimeout},
		log:     log,
		baseURL: baseURL,
		now:     time.Now,
	}
}

func (s *Spider) Search(ctx context.Context, keyword string) ([]domain.SearchResult, error) {
	target := fmt.Sprintf("%s/s?wd=%s", s.baseURL, url.QueryEscape(keyword))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	for name, value := range requestHeaders {
		request.Header.Set(name, value)
	}

	response, err := s.client.Do(request)
	if err != nil {
		return nil, err
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from %s", response.StatusCode, s.baseURL)
	}

	body, err := io.ReadAll(io.LimitReader(response.Body, maxBodySize))
	if err != nil {
		return nil, err
	}

	sniff := body
	if len(sniff) > sniffSize {
		sniff = sniff[:sniffSize]
	}
	if detected := mimetype.Detect(sniff); !detected.Is("text/html") {
		s.log.Warn("response is not a page", slog.String("mime", detected.String()))
		return nil, errors.ErrNotHTML
	}

	results, err := s.extract(body, keyword)
	if err != nil {
		return nil, err
	}
	s.log.Debug("page scraped",
		slog.String("keyword", keyword),
		slog.Int("results", len(results)))
	return results, nil
}

// extract pulls result blocks out of the page. The layout puts every hit
// inside div#content_left as a direct child carrying the "result" class.
func (s *Spider) extract(body []byte, keyword string) ([]domain.SearchResult, error) {
	root, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	contentLeft := findByID(root, "content_left")
	if contentLeft == nil {
		return nil, nil
	}

	at := s.now().UTC()
	var results []domain.SearchResult
	for child := contentLeft.FirstChild; child != nil; child = child.NextSibling {
		if child.Type != html.ElementNode || child.Data != "div" || !hasClass(child, "result") {
			continue
		}
		result, ok := s.extractItem(child)
		if !ok {
			continue
		}
		result.ID = uuid.New()
		result.Keyword = keyword
		result.At = at
		results = append(results, result)
	}
	return results, nil
}

func (s *Spider) extractItem(item *html.Node) (domain.SearchResult, bool) {
	heading := findElement(item, "h3", nil)
	if heading == nil {
		return domain.SearchResult{}, false
	}
	title := strings.TrimSpace(text(heading))

	link := findElement(heading, "a", nil)
	if link == nil {
		return domain.SearchResult{}, false
	}
	resultURL := attr(link, "href")
	if title == "" || resultURL == "" {
		return domain.SearchResult{}, false
	}

	summaryNode := findElement(item, "div", func(n *html.Node) bool { return hasClass(n, "c-abstract") })
	if summaryNode == nil {
		summaryNode = findElement(item, "div", func(n *html.Node) bool {
			return strings.HasPrefix(attr(n, "class"), "content-right")
		})
	}
	var summary string
	if summaryNode != nil {
		summary = strings.TrimSpace(text(summaryNode))
	}

	var coverURL string
	if img := findElement(item, "img", nil); img != nil {
		coverURL = attr(img, "src")
		if coverURL != "" && !strings.HasPrefix(coverURL, "http://") && !strings.HasPrefix(coverURL, "https://") {
			coverURL = s.baseURL + coverURL
		}
	}

	return domain.SearchResult{
		Title:    title,
		Summary:  summary,
		URL:      resultURL,
		CoverURL: coverURL,
	}, true
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func findByID(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && attr(n, "id") == id {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findByID(child, id); found != nil {
			return found
		}
	}
	return nil
}

// findElement returns the first descendant with the given tag satisfying
// the optional predicate, depth first.
func findElement(n *html.Node, tag string, match func(*html.Node) bool) *html.Node {
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == html.ElementNode && child.Data == tag && (match == nil || match(child)) {
			return child
		}
		if found := findElement(child, tag, match); found != nil {
			return found
		}
	}
	return nil
}

func text(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for child := node.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
