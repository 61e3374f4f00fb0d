package httpapi

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"campus-chat/auth"
	"campus-chat/domain"
	"campus-chat/errors"
	"campus-chat/spider"
	"campus-chat/warehouse"
)

// ServerInfo is one entry of the public server listing.
type ServerInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// API exposes accounts, scraping and the result warehouse over JSON.
type API struct {
	log      *slog.Logger
	accounts *auth.Service
	tokens   auth.TokenManager
	spider   spider.ISpider
	results  warehouse.IResultRepository
	servers  []ServerInfo
}

func New(log *slog.Logger, accounts *auth.Service, tokens auth.TokenManager,
	sp spider.ISpider, results warehouse.IResultRepository, servers []ServerInfo) *API {
	return &API{
		log:      log,
		accounts: accounts,
		tokens:   tokens,
		spider:   sp,
		results:  results,
		servers:  servers,
	}
}

// Register wires every route onto the mux.
func (a *API) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/servers", a.handleServers)
	mux.HandleFunc("POST /api/register", a.handleRegister)
	mux.HandleFunc("POST /api/login", a.handleLogin)
	mux.HandleFunc("POST /api/search", a.requireAuth(a.handleSearch))
	mux.HandleFunc("POST /api/results", a.requireAuth(a.handleStoreResult))
	mux.HandleFunc("GET /api/results", a.requireAuth(a.handleListResults))
}

type contextKey string

const usernameKey contextKey = "username"

// requireAuth validates the bearer token and stashes the username in the
// request context.
func (a *API) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			a.writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		claims, err := a.tokens.Validate(token)
		if err != nil {
			a.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := context.WithValue(r.Context(), usernameKey, claims.Username)
		next(w, r.WithContext(ctx))
	}
}

func (a *API) handleServers(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]any{"servers": a.servers})
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var request auth.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		a.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	err := a.accounts.Register(request)
	switch {
	case stderrors.Is(err, errors.ErrUserExists):
		a.writeError(w, http.StatusConflict, "username already taken")
	case err != nil:
		a.writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.writeJSON(w, http.StatusCreated, map[string]any{"username": request.Username})
	}
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var request auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		a.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	token, err := a.accounts.Login(request)
	switch {
	case stderrors.Is(err, errors.ErrBadCredentials):
		a.writeError(w, http.StatusUnauthorized, "bad credentials")
	case err != nil:
		a.writeError(w, http.StatusBadRequest, err.Error())
	default:
		a.writeJSON(w, http.StatusOK, map[string]any{"token": token})
	}
}

type searchRequest struct {
	Keyword string `json:"keyword"`
}

// handleSearch scrapes the keyword, persists the hits and returns them.
func (a *API) handleSearch(w http.ResponseWriter, r *http.Request) {
	var request searchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		a.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	keyword := strings.TrimSpace(request.Keyword)
	if keyword == "" {
		a.writeError(w, http.StatusBadRequest, "keyword is required")
		return
	}

	results, err := a.spider.Search(r.Context(), keyword)
	if err != nil {
		a.log.Error("scrape failed", slog.String("keyword", keyword), slog.Any("error", err))
		a.writeError(w, http.StatusBadGateway, "scrape failed")
		return
	}

	for _, result := range results {
		if err := a.results.Store(result); err != nil {
			a.writeError(w, http.StatusInternalServerError, "failed to persist results")
			return
		}
	}
	if err := a.results.Flush(); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to index results")
		return
	}

	a.writeJSON(w, http.StatusOK, map[string]any{"result": results})
}

func (a *API) handleStoreResult(w http.ResponseWriter, r *http.Request) {
	var result domain.SearchResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		a.writeError(w, http.StatusBadRequest, "malformed body")
		return
	}
	if result.Title == "" || result.URL == "" || result.Keyword == "" {
		a.writeError(w, http.StatusBadRequest, "title, url and keyword are required")
		return
	}
	if err := a.results.Store(result); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to persist result")
		return
	}
	if err := a.results.Flush(); err != nil {
		a.writeError(w, http.StatusInternalServerError, "failed to index result")
		return
	}
	a.writeJSON(w, http.StatusCreated, map[string]any{"id": result.ID})
}

// handleListResults serves two modes: a chronological scan for a keyword
// (cursor pagination) or a full-text query via the q parameter.
func (a *API) handleListResults(w http.ResponseWriter, r *http.Request) {
	if query := r.URL.Query().Get("q"); query != "" {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		results, total, err := a.results.SearchPaginated(r.Context(), query, offset)
		if err != nil {
			a.writeError(w, http.StatusInternalServerError, "search failed")
			return
		}
		a.writeJSON(w, http.StatusOK, map[string]any{"result": results, "total": total})
		return
	}

	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		a.writeError(w, http.StatusBadRequest, "keyword or q is required")
		return
	}
	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}
	results, next, err := a.results.ScanByKeyword(keyword, cursor)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, "scan failed")
		return
	}
	response := map[string]any{"result": results}
	if next != nil {
		response["cursor"] = *next
	}
	a.writeJSON(w, http.StatusOK, response)
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.log.Error("failed to encode response", slog.Any("error", err))
	}
}

func (a *API) writeError(w http.ResponseWriter, status int, message string) {
	a.writeJSON(w, status, map[string]string{"error": message})
}
