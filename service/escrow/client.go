package escrow

import (
	"errors"
	"net/http"
	"time"

	"github.com/czConstant/constant-pawn-protocol/domain"
	esc "github.com/czConstant/constant-pawn-protocol/domain/escrow"
)

var (
	ErrStatusCodeNotOk = errors.New("http.status != 200")
)

// ClientCfg configures the custody service client. ApiKey authenticates
// this marketplace against the custody api.
type ClientCfg struct {
	HttpClient http.Client
	BaseUrl    string
	Timeout    time.Duration
	ApiKey     string
}

type transferKind string

const (
	transferKindFungible transferKind = "fungible"
	transferKindNative   transferKind = "native"
	transferKindNft      transferKind = "nft"
)

// transferReq is the custody service's transfer request body.
// RequestId is derived from the rest of the fields, see requestId.
type transferReq struct {
	RequestId string         `json:"requestId"`
	Kind      transferKind   `json:"kind"`
	ChainId   domain.ChainId `json:"chainId"`
	Currency  domain.Address `json:"currency,omitempty"`
	Contract  domain.Address `json:"contract,omitempty"`
	TokenId   domain.TokenId `json:"tokenId,omitempty"`
	To        domain.Address `json:"to"`
	Amount    string         `json:"amount,omitempty"`
	Memo      string         `json:"memo,omitempty"`
}

type transferResp struct {
	RequestId string `json:"requestId"`
	Status    string `json:"status"`
	Reason    string `json:"reason"`
}

const transferStatusSettled = "settled"

// NewClient creates an escrow service backed by the custody HTTP api
func NewClient(cfg *ClientCfg) esc.Service {
	return &client{
		client:  cfg.HttpClient,
		baseUrl: cfg.BaseUrl,
		timeout: cfg.Timeout,
		apiKey:  cfg.ApiKey,
	}
}

type client struct {
	client  http.Client
	baseUrl string
	timeout time.Duration
	apiKey  string
}

var _ esc.Service = (*client)(nil)
