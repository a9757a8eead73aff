// Package rpc - JSON-RPC клиент сети реестра
package rpc

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/iurnickita/grabmarket/internal/ledger"
)

const confirmPollInterval = 500 * time.Millisecond

type rpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type client struct {
	endpoint string
	resty    *resty.Client
}

func NewClient(endpoint string) ledger.Client {
	return &client{
		endpoint: endpoint,
		resty:    resty.New(),
	}
}

func (c *client) call(ctx context.Context, method string, params []any) (json.RawMessage, error) {
	setreq := c.resty.R().SetContext(ctx)
	setreq.Method = http.MethodPost
	setreq.URL = c.endpoint
	setreq.SetHeader("Content-Type", "application/json")
	setreq.SetBody(rpcRequest{Jsonrpc: "2.0", ID: 1, Method: method, Params: params})

	setresp, err := setreq.Send()
	if err != nil {
		return nil, err
	}
	if setresp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("ledger rpc status: %d", setresp.StatusCode())
	}

	var resp rpcResponse
	if err := json.Unmarshal(setresp.Body(), &resp); err != nil {
		return nil, err
	}
	if resp.Error != nil {
		// текст ошибки узла отдаем как есть, по нему работает классификация
		return nil, errors.New(resp.Error.Message)
	}
	return resp.Result, nil
}

func (c *client) GetLatestCheckpoint(ctx context.Context, commitment string) (ledger.Checkpoint, error) {
	result, err := c.call(ctx, "getLatestCheckpoint", []any{commitment})
	if err != nil {
		return ledger.Checkpoint{}, err
	}

	var checkpoint struct {
		Blockhash   string `json:"blockhash"`
		ValidHeight uint64 `json:"validHeight"`
	}
	if err := json.Unmarshal(result, &checkpoint); err != nil {
		return ledger.Checkpoint{}, err
	}
	return ledger.Checkpoint{Blockhash: checkpoint.Blockhash, ValidHeight: checkpoint.ValidHeight}, nil
}

func (c *client) GetAccount(ctx context.Context, address ledger.Address) (ledger.AccountInfo, error) {
	result, err := c.call(ctx, "getAccount", []any{address.String()})
	if err != nil {
		return ledger.AccountInfo{}, err
	}
	if string(result) == "null" {
		return ledger.AccountInfo{}, ledger.ErrAccountNotFound
	}

	var account struct {
		Address string `json:"address"`
		Owner   string `json:"owner"`
		Asset   string `json:"asset"`
		Amount  uint64 `json:"amount"`
	}
	if err := json.Unmarshal(result, &account); err != nil {
		return ledger.AccountInfo{}, err
	}
	return ledger.AccountInfo{
		Address: ledger.Address(account.Address),
		Owner:   ledger.Address(account.Owner),
		Asset:   ledger.Address(account.Asset),
		Amount:  account.Amount,
	}, nil
}

func (c *client) SendRawTransaction(ctx context.Context, raw []byte, opts ledger.SendOptions) (string, error) {
	params := []any{
		base64.StdEncoding.EncodeToString(raw),
		map[string]any{
			"skipPreflight":       opts.SkipPreflight,
			"preflightCommitment": opts.PreflightCommitment,
			"maxRetries":          opts.MaxRetries,
		},
	}
	result, err := c.call(ctx, "sendTransaction", params)
	if err != nil {
		return "", err
	}

	var txHash string
	if err := json.Unmarshal(result, &txHash); err != nil {
		return "", err
	}
	return txHash, nil
}

func (c *client) ConfirmTransaction(ctx context.Context, txHash string, checkpoint ledger.Checkpoint, commitment string) error {
	ticker := time.NewTicker(confirmPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			status, err := c.getSignatureStatus(ctx, txHash, commitment)
			if err != nil {
				return err
			}
			if status.Err != "" {
				return errors.New(status.Err)
			}
			if status.Confirmed {
				return nil
			}

			// окно действия checkpoint закрылось - дальше ждать нечего
			height, err := c.getBlockHeight(ctx, commitment)
			if err != nil {
				return err
			}
			if height > checkpoint.ValidHeight {
				return ledger.ErrConfirmationTimeout
			}
		}
	}
}

func (c *client) getSignatureStatus(ctx context.Context, txHash string, commitment string) (signatureStatus, error) {
	result, err := c.call(ctx, "getSignatureStatus", []any{txHash, commitment})
	if err != nil {
		return signatureStatus{}, err
	}
	var status signatureStatus
	if string(result) == "null" {
		return status, nil
	}
	if err := json.Unmarshal(result, &status); err != nil {
		return signatureStatus{}, err
	}
	return status, nil
}

type signatureStatus struct {
	Confirmed bool   `json:"confirmed"`
	Err       string `json:"err"`
}

func (c *client) getBlockHeight(ctx context.Context, commitment string) (uint64, error) {
	result, err := c.call(ctx, "getBlockHeight", []any{commitment})
	if err != nil {
		return 0, err
	}
	var height uint64
	if err := json.Unmarshal(result, &height); err != nil {
		return 0, err
	}
	return height, nil
}
