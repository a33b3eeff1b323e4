package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MixinNetwork/registry/mtg"
	"github.com/MixinNetwork/registry/nft"
	"github.com/MixinNetwork/registry/storage"
	"github.com/MixinNetwork/registry/store"
	"github.com/gin-gonic/gin"
)

const (
	testAsset  = "965e5c6e-434c-3fa9-b780-c50f43cd955c"
	testMinter = "e0148fc6-0e10-470e-8127-166e0829c839"
	testAlice  = "7ed9292d-7c95-4333-aa48-a8c640064186"
	testBob    = "3a2a7e7d-bcc7-4a46-9c6c-0b8bff5d7b41"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db, err := store.OpenBadgerInMemory()
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	contract := nft.DefaultContract()
	price, _ := nft.NewCoin(testAsset, "1")
	err = db.Transition(func(txn storage.Txn) error {
		_, err := contract.Instantiate(txn, nft.Env{}, &nft.InstantiateMsg{
			Name:      "Registry",
			Symbol:    "REG",
			Minter:    testMinter,
			MaxMints:  10,
			MintPrice: price,
		})
		if err != nil {
			return err
		}
		env := nft.Env{Block: nft.BlockInfo{Height: 1, Time: time.Now()}}
		for _, sender := range []string{testAlice, testBob, testAlice} {
			_, err = contract.Mint(txn, env, nft.MessageInfo{Sender: sender, Funds: []nft.Coin{price}})
			if err != nil {
				return err
			}
		}
		_, err = contract.Approve(txn, env, nft.MessageInfo{Sender: testAlice}, "1", testBob, nft.Never())
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	grp, err := mtg.BuildGroup(context.Background(), db, &mtg.Configuration{})
	if err != nil {
		t.Fatal(err)
	}
	return SetupRouter(db, contract, grp)
}

func request(t *testing.T, r *gin.Engine, method, path string, body interface{}) envelope {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		err := json.NewEncoder(&buf).Encode(body)
		if err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("%s %s => HTTP %d", method, path, w.Code)
	}
	var env envelope
	err := json.Unmarshal(w.Body.Bytes(), &env)
	if err != nil {
		t.Fatalf("%s %s => %s", method, path, w.Body.String())
	}
	return env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if env.Code != CodeSuccess {
		t.Fatalf("response %d %s", env.Code, env.Message)
	}
	err := json.Unmarshal(env.Data, v)
	if err != nil {
		t.Fatal(err)
	}
}

func TestContractRoutes(t *testing.T) {
	r := setupRouter(t)

	var info nft.ContractInfo
	decodeData(t, request(t, r, "GET", "/api/v1/contract", nil), &info)
	if info.Name != "Registry" || info.TokenCount != 3 || info.MintPrice.Denom != testAsset {
		t.Fatalf("contract %v", info)
	}
	var version nft.VersionInfo
	decodeData(t, request(t, r, "GET", "/api/v1/contract/version", nil), &version)
	if version.Contract != nft.ContractName {
		t.Fatalf("version %v", version)
	}
	var minter nft.MinterResponse
	decodeData(t, request(t, r, "GET", "/api/v1/contract/minter", nil), &minter)
	if minter.Minter != testMinter {
		t.Fatalf("minter %v", minter)
	}
	var num nft.NumTokensResponse
	decodeData(t, request(t, r, "GET", "/api/v1/contract/num_tokens", nil), &num)
	if num.Count != 3 {
		t.Fatalf("num tokens %v", num)
	}
}

func TestTokenRoutes(t *testing.T) {
	r := setupRouter(t)

	var tokens nft.TokensResponse
	decodeData(t, request(t, r, "GET", "/api/v1/tokens?limit=2", nil), &tokens)
	if len(tokens.Tokens) != 2 || tokens.Tokens[0] != "1" || tokens.Tokens[1] != "2" {
		t.Fatalf("all tokens %v", tokens.Tokens)
	}
	decodeData(t, request(t, r, "GET", "/api/v1/owners/"+testAlice+"/tokens?start_after=1", nil), &tokens)
	if len(tokens.Tokens) != 1 || tokens.Tokens[0] != "3" {
		t.Fatalf("alice tokens %v", tokens.Tokens)
	}

	var all nft.AllNftInfoResponse
	decodeData(t, request(t, r, "GET", "/api/v1/tokens/1", nil), &all)
	if all.Access.Owner != testAlice || len(all.Access.Approvals) != 1 {
		t.Fatalf("token 1 %v", all)
	}
	var approval nft.ApprovalResponse
	decodeData(t, request(t, r, "GET", "/api/v1/tokens/1/approvals/"+testBob, nil), &approval)
	if approval.Approval.Spender != testBob || approval.Approval.Expires != nft.Never() {
		t.Fatalf("approval %v", approval)
	}
	var approvals nft.ApprovalsResponse
	decodeData(t, request(t, r, "GET", "/api/v1/tokens/2/approvals", nil), &approvals)
	if len(approvals.Approvals) != 0 {
		t.Fatalf("token 2 approvals %v", approvals)
	}

	if env := request(t, r, "GET", "/api/v1/tokens/99", nil); env.Code != CodeNotFound {
		t.Fatalf("absent token => %d %s", env.Code, env.Message)
	}
	if env := request(t, r, "GET", "/api/v1/tokens/2/approvals/"+testAlice, nil); env.Code != CodeNotFound {
		t.Fatalf("absent approval => %d %s", env.Code, env.Message)
	}
	if env := request(t, r, "GET", "/api/v1/tokens?limit=x", nil); env.Code != CodeInvalidParam {
		t.Fatalf("invalid limit => %d %s", env.Code, env.Message)
	}
	if env := request(t, r, "GET", "/api/v1/owners/alice/tokens", nil); env.Code != CodeInvalidParam {
		t.Fatalf("invalid owner => %d %s", env.Code, env.Message)
	}
}

func TestOutputRoutes(t *testing.T) {
	r := setupRouter(t)
	id := "4b53f1f0-5b1c-4f5e-8f7a-1c2d3e4f5a6b"

	body := map[string]string{
		"utxo_id":  id,
		"asset_id": testAsset,
		"sender":   testAlice,
		"amount":   "1",
		"memo":     `{"mint":{}}`,
	}
	var out map[string]interface{}
	decodeData(t, request(t, r, "POST", "/api/v1/outputs", body), &out)
	if out["utxo_id"] != id || out["state"] != "unspent" || out["amount"] != "1" {
		t.Fatalf("output %v", out)
	}
	decodeData(t, request(t, r, "GET", "/api/v1/outputs/"+id, nil), &out)
	if out["memo"] != `{"mint":{}}` {
		t.Fatalf("output %v", out)
	}

	delete(body, "sender")
	if env := request(t, r, "POST", "/api/v1/outputs", body); env.Code != CodeInvalidParam {
		t.Fatalf("output without sender => %d %s", env.Code, env.Message)
	}
	body["sender"] = "alice"
	if env := request(t, r, "POST", "/api/v1/outputs", body); env.Code != CodeInvalidParam {
		t.Fatalf("output with invalid sender => %d %s", env.Code, env.Message)
	}
	if env := request(t, r, "GET", "/api/v1/outputs/"+testBob, nil); env.Code != CodeNotFound {
		t.Fatalf("absent output => %d %s", env.Code, env.Message)
	}
	if env := request(t, r, "GET", "/api/v1/transactions/"+testBob, nil); env.Code != CodeNotFound {
		t.Fatalf("absent transaction => %d %s", env.Code, env.Message)
	}
}

func TestOutputRoutesUppercaseId(t *testing.T) {
	r := setupRouter(t)
	id := "4B53F1F0-5B1C-4F5E-8F7A-1C2D3E4F5A6B"
	canonical := strings.ToLower(id)

	body := map[string]string{
		"utxo_id":  id,
		"asset_id": testAsset,
		"sender":   strings.ToUpper(testAlice),
		"amount":   "1",
	}
	var out map[string]interface{}
	decodeData(t, request(t, r, "POST", "/api/v1/outputs", body), &out)
	if out["utxo_id"] != canonical || out["sender"] != testAlice {
		t.Fatalf("output %v", out)
	}
	for _, path := range []string{id, canonical} {
		decodeData(t, request(t, r, "GET", "/api/v1/outputs/"+path, nil), &out)
		if out["utxo_id"] != canonical || out["state"] != "unspent" {
			t.Fatalf("GET %s => %v", path, out)
		}
	}
	if env := request(t, r, "GET", "/api/v1/outputs/not-a-uuid", nil); env.Code != CodeNotFound {
		t.Fatalf("invalid output id => %d %s", env.Code, env.Message)
	}
}
