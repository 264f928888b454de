package sonic

import (
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"
)

type buildTxResponse struct {
	Data struct {
		Hash string `json:"hash"`
	} `json:"data"`
}

// BuildMintTx asks the campaign server for the prebuilt mystery-NFT mint
// transaction. The response hash field holds the whole transaction in
// base64, fee payer signature slot left for the wallet to fill. Requires a
// bearer token from Authenticate.
func (c *Client) BuildMintTx(ctx context.Context) (string, error) {
	if c.authToken == "" {
		return "", fmt.Errorf("build-tx requires authentication")
	}

	respBody, err := c.MakeRequest(ctx, http.MethodGet, "/nft-campaign/mint/unlimited/build-tx", nil)
	if err != nil {
		return "", fmt.Errorf("failed to get build-tx: %w", err)
	}

	var resp buildTxResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal build-tx response: %w", err)
	}
	if resp.Data.Hash == "" {
		return "", fmt.Errorf("build-tx response carries no transaction")
	}

	return resp.Data.Hash, nil
}
