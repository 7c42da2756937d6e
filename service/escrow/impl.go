package escrow

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/xerrors"

	bCtx "github.com/czConstant/constant-pawn-protocol/base/ctx"
	"github.com/czConstant/constant-pawn-protocol/base/log"
	"github.com/czConstant/constant-pawn-protocol/domain"
)

const apiKeyHeader = "X-API-KEY"

// requestNamespace scopes the uuid v5 derivation of transfer request ids.
var requestNamespace = uuid.MustParse("7c9e2f0a-1b4d-4e8f-9a6c-3d5b8e1f2a07")

// requestId is derived from the transfer content so a resubmission of
// the same logical transfer carries the same id and the custody side
// can deduplicate it. A lost optimistic replace after a settled
// transfer therefore cannot pay twice on retry.
func requestId(req *transferReq) string {
	parts := []string{
		string(req.Kind),
		strconv.Itoa(int(req.ChainId)),
		string(req.Currency),
		string(req.Contract),
		string(req.TokenId),
		string(req.To),
		req.Amount,
		req.Memo,
	}
	return uuid.NewSHA1(requestNamespace, []byte(strings.Join(parts, "|"))).String()
}

func (c *client) TransferFungible(ctx bCtx.Ctx, chainId domain.ChainId, currency domain.Address, to domain.Address, amount string, memo string) error {
	return c.submit(ctx, &transferReq{
		Kind:     transferKindFungible,
		ChainId:  chainId,
		Currency: currency,
		To:       to,
		Amount:   amount,
		Memo:     memo,
	})
}

func (c *client) TransferNative(ctx bCtx.Ctx, chainId domain.ChainId, to domain.Address, amount string, memo string) error {
	return c.submit(ctx, &transferReq{
		Kind:    transferKindNative,
		ChainId: chainId,
		To:      to,
		Amount:  amount,
		Memo:    memo,
	})
}

func (c *client) TransferNFT(ctx bCtx.Ctx, chainId domain.ChainId, contract domain.Address, tokenId domain.TokenId, to domain.Address) error {
	return c.submit(ctx, &transferReq{
		Kind:     transferKindNft,
		ChainId:  chainId,
		Contract: contract,
		TokenId:  tokenId,
		To:       to,
	})
}

func (c *client) submit(ctx bCtx.Ctx, req *transferReq) error {
	req.RequestId = requestId(req)
	url := fmt.Sprintf("%s/transfers", c.baseUrl)

	body, err := c.post(ctx, url, req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url":       url,
			"requestId": req.RequestId,
			"kind":      req.Kind,
			"err":       err,
		}).Error("c.post failed")
		return xerrors.Errorf("submit transfer: %w", domain.ErrEscrowFailure)
	}

	resp := &transferResp{}
	if err := json.Unmarshal(body, resp); err != nil {
		ctx.WithField("err", err).Error("json.Unmarshal failed")
		return xerrors.Errorf("decode transfer response: %w", domain.ErrEscrowFailure)
	}

	if resp.Status != transferStatusSettled {
		ctx.WithFields(log.Fields{
			"requestId": req.RequestId,
			"status":    resp.Status,
			"reason":    resp.Reason,
		}).Error("transfer not settled")
		return xerrors.Errorf("transfer %s: %s: %w", resp.Status, resp.Reason, domain.ErrEscrowFailure)
	}

	return nil
}

func (c *client) post(ctx bCtx.Ctx, url string, payload interface{}) ([]byte, error) {
	ctx, cancel := bCtx.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(data))
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("NewRequestWithContext failed")
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("client.Do failed")
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		ctx.WithFields(log.Fields{
			"url":        url,
			"statusCode": resp.StatusCode,
		}).Error("resp.StatusCode != 200")
		return nil, ErrStatusCodeNotOk
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		ctx.WithFields(log.Fields{
			"url": url,
			"err": err,
		}).Error("failed to read body")
		return nil, err
	}
	return body, nil
}
