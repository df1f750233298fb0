package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/splitward/splitward/internal/auth"
	"github.com/splitward/splitward/internal/service"
	"github.com/splitward/splitward/internal/storage/sqlite"
)

type testAPI struct {
	server *httptest.Server
	jwt    *auth.JWTManager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	server := httptest.NewServer(NewRouter(service.NewLedger(store), jwtManager))
	t.Cleanup(server.Close)

	return &testAPI{server: server, jwt: jwtManager}
}

// do sends a JSON request as the given user. An empty user sends no token.
func (a *testAPI) do(t *testing.T, user, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}

	req, err := http.NewRequest(method, a.server.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		token, err := a.jwt.Generate(user)
		if err != nil {
			t.Fatalf("failed to mint token: %v", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// decodeData unmarshals the data field of a success envelope into out.
func decodeData(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	var envelope struct {
		Status string          `json:"status"`
		Data   json.RawMessage `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		t.Fatalf("failed to decode data: %v", err)
	}
}

type groupData struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Members []string `json:"members"`
}

type expenseData struct {
	ID      string `json:"id"`
	PayerID string `json:"payer_id"`
	Settled bool   `json:"settled"`
	Splits  []struct {
		MemberID string `json:"member_id"`
		Share    string `json:"share"`
		Paid     bool   `json:"paid"`
	} `json:"splits"`
}

func (a *testAPI) createGroup(t *testing.T, creator string, members ...string) groupData {
	t.Helper()
	resp := a.do(t, creator, http.MethodPost, "/api/v1/groups", map[string]interface{}{
		"name":    "Trip",
		"members": members,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create group: status = %d, want 201", resp.StatusCode)
	}
	var group groupData
	decodeData(t, resp, &group)
	return group
}

func (a *testAPI) createExpense(t *testing.T, requester, groupID string) expenseData {
	t.Helper()
	resp := a.do(t, requester, http.MethodPost, fmt.Sprintf("/api/v1/groups/%s/expenses", groupID), map[string]interface{}{
		"label": "Dinner",
		"total": "90",
		"allocations": []map[string]string{
			{"member_id": "alice", "share": "30"},
			{"member_id": "bob", "share": "30"},
			{"member_id": "carol", "share": "30"},
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create expense: status = %d, want 201", resp.StatusCode)
	}
	var expense expenseData
	decodeData(t, resp, &expense)
	return expense
}

func TestAPI_GroupLifecycle(t *testing.T) {
	api := newTestAPI(t)

	group := api.createGroup(t, "alice", "alice", "bob", "carol")
	if len(group.Members) != 3 {
		t.Errorf("got %d members, want 3", len(group.Members))
	}

	resp := api.do(t, "bob", http.MethodGet, "/api/v1/groups/"+group.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("member get group: status = %d, want 200", resp.StatusCode)
	}

	resp = api.do(t, "alice", http.MethodGet, "/api/v1/groups", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("list groups: status = %d, want 200", resp.StatusCode)
	}

	resp = api.do(t, "alice", http.MethodDelete, "/api/v1/groups/"+group.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete group: status = %d, want 204", resp.StatusCode)
	}
}

func TestAPI_ExpenseAndSettlementFlow(t *testing.T) {
	api := newTestAPI(t)
	group := api.createGroup(t, "alice", "alice", "bob", "carol")
	expense := api.createExpense(t, "alice", group.ID)

	if expense.PayerID != "alice" {
		t.Errorf("payer = %s, want creator default alice", expense.PayerID)
	}
	if expense.Settled {
		t.Error("fresh expense reports settled")
	}

	// Balances: alice fronted 90, owes her own 30.
	resp := api.do(t, "alice", http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/balances", group.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("balances: status = %d, want 200", resp.StatusCode)
	}
	var balances map[string]string
	decodeData(t, resp, &balances)
	if balances["alice"] != "60" || balances["bob"] != "-30" || balances["carol"] != "-30" {
		t.Errorf("balances = %v, want alice:60 bob:-30 carol:-30", balances)
	}

	// Settlement plan: both debtors pay alice, bob first on the tiebreak.
	resp = api.do(t, "bob", http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/settlement", group.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("settlement: status = %d, want 200", resp.StatusCode)
	}
	var transfers []struct {
		From   string `json:"from"`
		To     string `json:"to"`
		Amount string `json:"amount"`
	}
	decodeData(t, resp, &transfers)
	if len(transfers) != 2 {
		t.Fatalf("got %d transfers, want 2", len(transfers))
	}
	if transfers[0].From != "bob" || transfers[0].To != "alice" || transfers[0].Amount != "30" {
		t.Errorf("transfer[0] = %+v, want bob→alice 30", transfers[0])
	}

	// Bob settles his share.
	resp = api.do(t, "bob", http.MethodPost, fmt.Sprintf("/api/v1/expenses/%s/splits/bob/pay", expense.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("pay split: status = %d, want 200", resp.StatusCode)
	}
	var updated expenseData
	decodeData(t, resp, &updated)
	if updated.Settled {
		t.Error("expense settled with carol still unpaid")
	}

	resp = api.do(t, "alice", http.MethodGet, fmt.Sprintf("/api/v1/groups/%s/balances", group.ID), nil)
	decodeData(t, resp, &balances)
	if balances["alice"] != "30" || balances["bob"] != "0" {
		t.Errorf("balances after bob paid = %v, want alice:30 bob:0", balances)
	}
}

// TestAPI_ErrorStatusContract pins the error-kind to status-code mapping the
// outer layer promises: validation→400, forbidden→403, not found→404,
// conflict→409, missing token→401.
func TestAPI_ErrorStatusContract(t *testing.T) {
	api := newTestAPI(t)
	group := api.createGroup(t, "alice", "alice", "bob", "carol")
	expense := api.createExpense(t, "alice", group.ID)

	// A paid split, for the conflict case.
	if resp := api.do(t, "bob", http.MethodPost,
		fmt.Sprintf("/api/v1/expenses/%s/splits/bob/pay", expense.ID), nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("setup pay: status = %d", resp.StatusCode)
	}

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   interface{}
		want   int
	}{
		{
			name:   "no token",
			user:   "",
			method: http.MethodGet,
			path:   "/api/v1/groups",
			want:   http.StatusUnauthorized,
		},
		{
			name:   "validation error",
			user:   "alice",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/groups/%s/expenses", group.ID),
			body: map[string]interface{}{
				"label": "Dinner",
				"total": "100",
				"allocations": []map[string]string{
					{"member_id": "alice", "share": "40"},
					{"member_id": "bob", "share": "40"},
				},
			},
			want: http.StatusBadRequest,
		},
		{
			name:   "forbidden",
			user:   "mallory",
			method: http.MethodGet,
			path:   fmt.Sprintf("/api/v1/groups/%s/balances", group.ID),
			want:   http.StatusForbidden,
		},
		{
			name:   "not found",
			user:   "alice",
			method: http.MethodGet,
			path:   "/api/v1/groups/nonexistent",
			want:   http.StatusNotFound,
		},
		{
			name:   "conflict on double settlement",
			user:   "bob",
			method: http.MethodPost,
			path:   fmt.Sprintf("/api/v1/expenses/%s/splits/bob/pay", expense.ID),
			want:   http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := api.do(t, tt.user, tt.method, tt.path, tt.body)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
