package rpc

import (
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"yieldvault/core"
	"yieldvault/core/events"
	"yieldvault/core/state"
	"yieldvault/storage"
)

const (
	testToken    = "test-token"
	depositorHex = "0x00000000000000000000000000000000000000dd"
	aliceHex     = "0x0000000000000000000000000000000000000001"
	strangerHex  = "0x0000000000000000000000000000000000000099"
)

var (
	adminAddr     = [20]byte{19: 0xad}
	depositorAddr = [20]byte{19: 0xdd}
	aliceAddr     = [20]byte{19: 0x01}
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	recorder := events.NewRecorder(0)
	processor := core.NewProcessor(state.NewManager(storage.NewMemDB()), recorder)
	genesis := core.Genesis{
		Admin:      adminAddr,
		Depositors: [][20]byte{depositorAddr},
		Accounts: []core.GenesisAccount{
			{Address: aliceAddr, VLT: big.NewInt(100_000)},
			{Address: depositorAddr, USDT: big.NewInt(100_000), VLT: big.NewInt(100_000), Native: big.NewInt(100_000)},
		},
	}
	if err := processor.ApplyGenesis(genesis); err != nil {
		t.Fatalf("genesis: %v", err)
	}
	return NewServer(processor, recorder, testToken, nil)
}

func call(t *testing.T, server *Server, token, method, params string) response {
	t.Helper()
	body := fmt.Sprintf(`{"jsonrpc":"2.0","id":1,"method":%q,"params":%s}`, method, params)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return resp
}

func TestRejectsNonPost(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}

func TestRejectsMalformedJSON(t *testing.T) {
	server := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	server.ServeHTTP(rec, req)

	var resp response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Error == nil || resp.Error.Code != codeParseError {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
}

func TestUnknownMethod(t *testing.T) {
	server := newTestServer(t)
	resp := call(t, server, "", "vault_doesNotExist", "{}")
	if resp.Error == nil || resp.Error.Code != codeMethodNotFound {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
}

func TestMutatingMethodRequiresToken(t *testing.T) {
	server := newTestServer(t)
	params := fmt.Sprintf(`{"from":%q,"amount":"100","tier":1}`, aliceHex)

	resp := call(t, server, "", "vault_stake", params)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("missing token: %+v", resp.Error)
	}
	resp = call(t, server, "wrong", "vault_stake", params)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("wrong token: %+v", resp.Error)
	}
	resp = call(t, server, testToken, "vault_stake", params)
	if resp.Error != nil {
		t.Fatalf("authorized stake failed: %+v", resp.Error)
	}
}

func TestReadMethodsSkipAuth(t *testing.T) {
	server := newTestServer(t)
	resp := call(t, server, "", "vault_epoch", "{}")
	if resp.Error != nil {
		t.Fatalf("epoch: %+v", resp.Error)
	}
	var result struct {
		Epoch uint64 `json:"epoch"`
	}
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.Epoch != 0 {
		t.Fatalf("epoch = %d, want 0", result.Epoch)
	}
}

func TestStakeDepositHarvestOverRPC(t *testing.T) {
	server := newTestServer(t)

	stakeParams := fmt.Sprintf(`{"from":%q,"amount":"1000","tier":1}`, aliceHex)
	resp := call(t, server, testToken, "vault_stake", stakeParams)
	if resp.Error != nil {
		t.Fatalf("stake: %+v", resp.Error)
	}

	depositParams := fmt.Sprintf(`{"from":%q,"usdt":"5000","vlt":"0","native":"0"}`, depositorHex)
	resp = call(t, server, testToken, "vault_deposit", depositParams)
	if resp.Error != nil {
		t.Fatalf("deposit: %+v", resp.Error)
	}
	var funded struct {
		Epoch uint64 `json:"epoch"`
	}
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &funded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if funded.Epoch != 0 {
		t.Fatalf("funded epoch = %d, want 0", funded.Epoch)
	}

	harvestParams := fmt.Sprintf(`{"from":%q,"index":0,"epoch":0,"vested":false}`, aliceHex)
	resp = call(t, server, testToken, "vault_harvest", harvestParams)
	if resp.Error != nil {
		t.Fatalf("harvest: %+v", resp.Error)
	}
	var payout payoutResult
	raw, _ = json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &payout); err != nil {
		t.Fatalf("decode payout: %v", err)
	}
	if payout.USDT != "5000" {
		t.Fatalf("payout USDT = %s, want 5000", payout.USDT)
	}

	// The second harvest attempt surfaces the stable reason string.
	resp = call(t, server, testToken, "vault_harvest", harvestParams)
	if resp.Error == nil || resp.Error.Code != codeServerError {
		t.Fatalf("second harvest: %+v", resp.Error)
	}
	if !strings.Contains(resp.Error.Message, "already harvested") {
		t.Fatalf("unexpected reason %q", resp.Error.Message)
	}
}

func TestUnauthorizedEngineErrorMapsToAuthCode(t *testing.T) {
	server := newTestServer(t)
	params := fmt.Sprintf(`{"from":%q,"usdt":"1","vlt":"0","native":"0"}`, strangerHex)
	resp := call(t, server, testToken, "vault_deposit", params)
	if resp.Error == nil || resp.Error.Code != codeUnauthorized {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
}

func TestInvalidAddressParam(t *testing.T) {
	server := newTestServer(t)
	resp := call(t, server, "", "vault_balance", `{"address":"not-an-address"}`)
	if resp.Error == nil || resp.Error.Code != codeInvalidParams {
		t.Fatalf("unexpected error %+v", resp.Error)
	}
}

func TestBalanceView(t *testing.T) {
	server := newTestServer(t)
	resp := call(t, server, "", "vault_balance", fmt.Sprintf(`{"address":%q}`, aliceHex))
	if resp.Error != nil {
		t.Fatalf("balance: %+v", resp.Error)
	}
	var balance balanceResult
	raw, _ := json.Marshal(resp.Result)
	if err := json.Unmarshal(raw, &balance); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if balance.VLT != "100000" {
		t.Fatalf("VLT = %s, want 100000", balance.VLT)
	}
}
