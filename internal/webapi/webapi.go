// Package webapi is the HTTP surface of the grammar toolkit: submit a
// grammar, fetch its computed tables and conflicts, and run a token stream
// through either recognizer. All routes but /login sit behind JWT bearer
// auth for the single configured operator account.
package webapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/dekarrin/parsesmith/internal/conflict"
	"github.com/dekarrin/parsesmith/internal/diag"
	"github.com/dekarrin/parsesmith/internal/firstfollow"
	"github.com/dekarrin/parsesmith/internal/ll1"
	"github.com/dekarrin/parsesmith/internal/loader"
	"github.com/dekarrin/parsesmith/internal/lr0"
	"github.com/dekarrin/parsesmith/internal/store"
	"github.com/dekarrin/parsesmith/internal/trace"
	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type authKey int

const authUserKey authKey = 0

// Operator is the single configured operator account able to submit
// grammars and run analyses. The toolkit has no multi-user model; this is
// the minimal login surface needed to gate the API.
type Operator struct {
	Username     string
	PasswordHash string // bcrypt hash
}

// API holds everything the HTTP handlers need.
type API struct {
	Store       *store.Store
	Secret      []byte
	Operator    Operator
	UnauthDelay time.Duration
}

// Router builds the chi router for the whole API.
func (a API) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(a.dontPanic)

	r.Post("/login", a.handleLogin)

	r.Group(func(r chi.Router) {
		r.Use(a.requireAuth)
		r.Post("/grammars", a.handleCreateGrammar)
		r.Get("/grammars/{id}", a.handleGetGrammar)
		r.Get("/grammars/{id}/tables", a.handleGetTables)
		r.Get("/grammars/{id}/conflicts", a.handleGetConflicts)
		r.Post("/grammars/{id}/parse", a.handleParse)
	})

	return r
}

func (a API) dontPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				writeJSONError(w, http.StatusInternalServerError, "internal server error",
					fmt.Sprintf("panic: %v\n%s", p, debug.Stack()))
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func (a API) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		tok, err := bearerToken(req)
		if err != nil {
			time.Sleep(a.UnauthDelay)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		username, err := a.validateJWT(tok)
		if err != nil {
			time.Sleep(a.UnauthDelay)
			writeJSONError(w, http.StatusUnauthorized, "unauthorized", err.Error())
			return
		}

		ctx := context.WithValue(req.Context(), authUserKey, username)
		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

func bearerToken(req *http.Request) (string, error) {
	h := req.Header.Get("Authorization")
	var scheme, tok string
	if _, err := fmt.Sscanf(h, "%s %s", &scheme, &tok); err != nil {
		return "", fmt.Errorf("no bearer token present")
	}
	if scheme != "Bearer" {
		return "", fmt.Errorf("authorization header not in Bearer format")
	}
	return tok, nil
}

func (a API) validateJWT(tok string) (string, error) {
	parsed, err := jwt.Parse(tok, func(t *jwt.Token) (interface{}, error) {
		return a.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}), jwt.WithIssuer("psmithd"), jwt.WithLeeway(time.Minute))
	if err != nil {
		return "", err
	}
	subj, err := parsed.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if subj != a.Operator.Username {
		return "", fmt.Errorf("unknown subject")
	}
	return subj, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (a API) handleLogin(w http.ResponseWriter, req *http.Request) {
	var body loginRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}

	if body.Username != a.Operator.Username {
		time.Sleep(a.UnauthDelay)
		writeJSONError(w, http.StatusUnauthorized, "bad credentials", "unknown username")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.Operator.PasswordHash), []byte(body.Password)); err != nil {
		time.Sleep(a.UnauthDelay)
		writeJSONError(w, http.StatusUnauthorized, "bad credentials", "password mismatch")
		return
	}

	claims := jwt.MapClaims{
		"iss": "psmithd",
		"sub": a.Operator.Username,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := tok.SignedString(a.Secret)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not sign token", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{Token: signed})
}

type createGrammarRequest struct {
	Name   string `json:"name"`
	Source string `json:"source"`
}

type grammarResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (a API) handleCreateGrammar(w http.ResponseWriter, req *http.Request) {
	var body createGrammarRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}
	if body.Source == "" {
		writeJSONError(w, http.StatusBadRequest, "empty grammar source", "source must not be empty")
		return
	}

	g, _, err := loader.Load(strings.NewReader(body.Source))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "grammar could not be parsed", err.Error())
		return
	}

	id, err := a.Store.SaveGrammar(req.Context(), body.Name, body.Source)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not save grammar", err.Error())
		return
	}

	ff := firstfollow.Compute(g)
	llTable := ll1.Build(g, ff)
	lrTable := lr0.BuildSLRTable(g, ff)

	snapshot := store.AnalysisSnapshot{
		LL1Table:        diag.LL1Table(llTable),
		ActionGotoTable: diag.ActionGotoTable(lrTable),
		Conflicts:       store.SnapshotConflicts(append(conflict.DetectLL1(llTable), conflict.DetectLR(lrTable)...)),
	}
	summary := fmt.Sprintf("%d conflict(s)", len(snapshot.Conflicts))

	if _, err := a.Store.SaveAnalysisRun(req.Context(), id, snapshot, summary); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "could not save analysis run", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, grammarResponse{ID: id.String(), Name: body.Name})
}

func (a API) handleGetGrammar(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed id", err.Error())
		return
	}

	rec, err := a.Store.GetGrammar(req.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

func (a API) handleGetTables(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed id", err.Error())
		return
	}

	runs, err := a.Store.ListAnalysisRuns(req.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if len(runs) == 0 {
		writeJSONError(w, http.StatusNotFound, "no analysis on record", "")
		return
	}

	writeJSON(w, http.StatusOK, runs[0].Tables)
}

func (a API) handleGetConflicts(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed id", err.Error())
		return
	}

	runs, err := a.Store.ListAnalysisRuns(req.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}
	if len(runs) == 0 {
		writeJSONError(w, http.StatusNotFound, "no analysis on record", "")
		return
	}

	writeJSON(w, http.StatusOK, runs[0].Tables.Conflicts)
}

type parseRequest struct {
	Recognizer string   `json:"recognizer"` // "ll1" or "lr0"
	Tokens     []string `json:"tokens"`
}

type parseResponse struct {
	Accepted bool     `json:"accepted"`
	Trace    []string `json:"trace"`
	Error    string   `json:"error,omitempty"`
}

func (a API) handleParse(w http.ResponseWriter, req *http.Request) {
	id, err := uuid.Parse(chi.URLParam(req, "id"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed id", err.Error())
		return
	}

	var body parseRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "malformed request body", err.Error())
		return
	}

	rec, err := a.Store.GetGrammar(req.Context(), id)
	if err != nil {
		writeStoreErr(w, err)
		return
	}

	g, _, err := loader.Load(strings.NewReader(rec.Source))
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, "stored grammar no longer parses", err.Error())
		return
	}
	ff := firstfollow.Compute(g)

	mem := trace.NewMemorySink()
	sink := trace.Multi(mem, trace.Default())
	var parseErr error
	switch body.Recognizer {
	case "lr0":
		table := lr0.BuildSLRTable(g, ff)
		parseErr = lr0.NewRecognizer(table).Parse(body.Tokens, sink)
	default:
		table := ll1.Build(g, ff)
		parseErr = ll1.NewRecognizer(table, g).Parse(body.Tokens, sink)
	}

	resp := parseResponse{Accepted: parseErr == nil, Trace: mem.Lines}
	if parseErr != nil {
		resp.Error = parseErr.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func writeJSONError(w http.ResponseWriter, status int, message, detail string) {
	writeJSON(w, status, errorResponse{Message: message, Detail: detail})
}

func writeStoreErr(w http.ResponseWriter, err error) {
	if err == store.ErrNotFound {
		writeJSONError(w, http.StatusNotFound, "not found", "")
		return
	}
	writeJSONError(w, http.StatusInternalServerError, "internal server error", err.Error())
}
