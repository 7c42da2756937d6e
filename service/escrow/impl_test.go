package escrow

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

func newTestServer(t *testing.T, status string, captured *[]transferReq) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := transferReq{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		*captured = append(*captured, req)
		json.NewEncoder(w).Encode(transferResp{
			RequestId: req.RequestId,
			Status:    status,
		})
	}))
}

func newTestClient(baseUrl string) *client {
	return NewClient(&ClientCfg{
		HttpClient: http.Client{},
		BaseUrl:    baseUrl,
		Timeout:    10 * time.Second,
		ApiKey:     "api_key",
	}).(*client)
}

func TestTransferRequestIdStableAcrossRetries(t *testing.T) {
	req := require.New(t)
	captured := []transferReq{}
	srv := newTestServer(t, transferStatusSettled, &captured)
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := bCtx.Background()

	// a resubmitted transfer must carry the id of the first attempt so
	// the custody side can drop the duplicate
	req.NoError(c.TransferFungible(ctx, 1, "usdt.near", "carol.near", "900", "offer refund nft.near||42#1"))
	req.NoError(c.TransferFungible(ctx, 1, "usdt.near", "carol.near", "900", "offer refund nft.near||42#1"))

	req.Len(captured, 2)
	req.NotEmpty(captured[0].RequestId)
	req.Equal(captured[0].RequestId, captured[1].RequestId)
}

func TestTransferRequestIdDistinguishesTransfers(t *testing.T) {
	req := require.New(t)
	captured := []transferReq{}
	srv := newTestServer(t, transferStatusSettled, &captured)
	defer srv.Close()

	c := newTestClient(srv.URL)
	ctx := bCtx.Background()

	req.NoError(c.TransferFungible(ctx, 1, "usdt.near", "carol.near", "900", "offer refund nft.near||42#1"))
	req.NoError(c.TransferFungible(ctx, 1, "usdt.near", "carol.near", "900", "offer refund nft.near||42#3"))
	req.NoError(c.TransferNative(ctx, 1, "carol.near", "900", "offer refund nft.near||42#1"))
	req.NoError(c.TransferNFT(ctx, 1, "nft.near", "42", "alice.near"))

	req.Len(captured, 4)
	seen := map[string]bool{}
	for _, r := range captured {
		req.False(seen[r.RequestId], "request id reused across distinct transfers")
		seen[r.RequestId] = true
	}
	req.Equal("offer refund nft.near||42#1", captured[2].Memo)
}

func TestTransferNotSettled(t *testing.T) {
	req := require.New(t)
	captured := []transferReq{}
	srv := newTestServer(t, "declined", &captured)
	defer srv.Close()

	c := newTestClient(srv.URL)

	err := c.TransferNative(bCtx.Background(), 1, "carol.near", "900", "offer refund nft.near||42#1")
	req.ErrorIs(err, domain.ErrEscrowFailure)
}
