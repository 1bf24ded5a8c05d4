package webapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dekarrin/parsesmith/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func testAPI(t *testing.T) API {
	t.Helper()
	s, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.DefaultCost)
	require.NoError(t, err)

	return API{
		Store:       s,
		Secret:      []byte("0123456789abcdef0123456789abcdef"),
		Operator:    Operator{Username: "admin", PasswordHash: string(hash)},
		UnauthDelay: time.Millisecond,
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, r http.Handler) string {
	t.Helper()
	rec := doJSON(t, r, http.MethodPost, "/login", loginRequest{Username: "admin", Password: "correct horse"}, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp loginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func TestLogin_RejectsBadPassword(t *testing.T) {
	api := testAPI(t)
	r := api.Router()

	rec := doJSON(t, r, http.MethodPost, "/login", loginRequest{Username: "admin", Password: "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_AcceptsGoodPassword(t *testing.T) {
	api := testAPI(t)
	r := api.Router()

	tok := login(t, r)
	assert.NotEmpty(t, tok)
}

func TestGrammars_RequiresAuth(t *testing.T) {
	api := testAPI(t)
	r := api.Router()

	rec := doJSON(t, r, http.MethodPost, "/grammars", createGrammarRequest{Name: "x", Source: "S -> a\n"}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateGrammar_ThenFetchTablesAndConflicts(t *testing.T) {
	api := testAPI(t)
	r := api.Router()
	tok := login(t, r)

	rec := doJSON(t, r, http.MethodPost, "/grammars", createGrammarRequest{
		Name:   "left-recursive-expr",
		Source: "E -> E + T | T\nT -> T * F | F\nF -> ( E ) | id\n",
	}, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created grammarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.ID)

	tablesRec := doJSON(t, r, http.MethodGet, "/grammars/"+created.ID+"/tables", nil, tok)
	assert.Equal(t, http.StatusOK, tablesRec.Code)

	conflictsRec := doJSON(t, r, http.MethodGet, "/grammars/"+created.ID+"/conflicts", nil, tok)
	require.Equal(t, http.StatusOK, conflictsRec.Code)

	var conflicts []store.ConflictSnapshot
	require.NoError(t, json.Unmarshal(conflictsRec.Body.Bytes(), &conflicts))
	assert.NotEmpty(t, conflicts, "left-recursive grammar should report LL1_MULTI conflicts")
}

func TestParse_AcceptsValidTokenStream(t *testing.T) {
	api := testAPI(t)
	r := api.Router()
	tok := login(t, r)

	rec := doJSON(t, r, http.MethodPost, "/grammars", createGrammarRequest{
		Name:   "expr",
		Source: "E -> T E2\nE2 -> + T E2 | ε\nT -> F T2\nT2 -> * F T2 | ε\nF -> ( E ) | id\n",
	}, tok)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created grammarResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	parseRec := doJSON(t, r, http.MethodPost, "/grammars/"+created.ID+"/parse", parseRequest{
		Recognizer: "ll1",
		Tokens:     []string{"id", "+", "id", "*", "id"},
	}, tok)
	require.Equal(t, http.StatusOK, parseRec.Code)

	var resp parseResponse
	require.NoError(t, json.Unmarshal(parseRec.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
	assert.Empty(t, resp.Error)
}
