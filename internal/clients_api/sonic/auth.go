package sonic

// Challenge/authorize exchange. The server hands out a one-time challenge
// string per wallet; signing it with the wallet key and posting the
// signature back yields the bearer token the campaign endpoints require.

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"sonic-minter/internal/infra/log"
	"sonic-minter/internal/wallet"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
)

type challengeResponse struct {
	Data string `json:"data"`
}

// AuthorizeRequest is the authorize endpoint body: the wallet address in
// base58 and base64 form plus the base64 detached signature over the
// challenge bytes.
type AuthorizeRequest struct {
	Address        string `json:"address"`
	AddressEncoded string `json:"address_encoded"`
	Signature      string `json:"signature"`
}

type authorizeResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// GetChallenge fetches the one-time challenge issued for the wallet address.
func (c *Client) GetChallenge(ctx context.Context, walletAddress string) (string, error) {
	endpoint := "/auth/sonic/challenge?" + url.Values{"wallet": {walletAddress}}.Encode()

	respBody, err := c.MakeRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("failed to get challenge: %w", err)
	}

	var resp challengeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal challenge response: %w", err)
	}
	if resp.Data == "" {
		return "", fmt.Errorf("challenge response carries no challenge")
	}

	return resp.Data, nil
}

// Authorize trades a signed challenge for a bearer token.
func (c *Client) Authorize(ctx context.Context, req AuthorizeRequest) (string, error) {
	respBody, err := c.MakeRequest(ctx, http.MethodPost, "/auth/sonic/authorize", req)
	if err != nil {
		return "", fmt.Errorf("failed to authorize: %w", err)
	}

	var resp authorizeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal authorize response: %w", err)
	}
	if resp.Data.Token == "" {
		return "", fmt.Errorf("authorize response carries no token")
	}

	return resp.Data.Token, nil
}

// Authenticate runs the full exchange for the wallet: fetch a challenge,
// sign its raw bytes, post the signature. The token is stored on the client
// for subsequent requests and also returned.
func (c *Client) Authenticate(ctx context.Context, w *wallet.Wallet) (string, error) {
	startTime := time.Now()

	challenge, err := c.GetChallenge(ctx, w.Address())
	if err != nil {
		return "", err
	}

	token, err := c.Authorize(ctx, AuthorizeRequest{
		Address:        w.Address(),
		AddressEncoded: w.AddressBase64(),
		Signature:      w.SignBase64([]byte(challenge)),
	})
	if err != nil {
		return "", err
	}

	c.SetAuthToken(token)

	log.LogSuccess("Authenticated",
		zap.String("wallet", w.Address()),
		zap.Int64("duration_ms", time.Since(startTime).Milliseconds()))

	return token, nil
}
