package onepass

import (
	"context"
	"os"
	"strings"

	"github.com/1password/onepassword-sdk-go"

	"github.com/osp-containers/materializer/internal/errors"
)

// Client resolves op:// secret references through a 1Password service
// account.
type Client struct {
	op *onepassword.Client
}

// Enabled reports whether a service account token is available, either in
// the environment or at the token file path. Fragment resolution is only
// attempted when it is.
func Enabled(tokenFile string) bool {
	if os.Getenv("OP_SERVICE_ACCOUNT_TOKEN") != "" {
		return true
	}
	_, err := os.Stat(tokenFile)
	return err == nil
}

func NewClient(ctx context.Context, tokenFile string) (*Client, error) {
	token, err := getToken(tokenFile)
	if err != nil {
		return nil, err
	}

	client, err := onepassword.NewClient(ctx,
		onepassword.WithServiceAccountToken(token),
		onepassword.WithIntegrationInfo("Secret Materializer", "v1.0.0"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "Creating 1Password client", "1Password integration")
	}

	return &Client{op: client}, nil
}

func (c *Client) Resolve(ctx context.Context, reference string) (string, error) {
	return c.op.Secrets.Resolve(ctx, reference)
}

func getToken(tokenFile string) (string, error) {
	if token := os.Getenv("OP_SERVICE_ACCOUNT_TOKEN"); token != "" {
		return strings.TrimSpace(token), nil
	}

	data, err := os.ReadFile(tokenFile)
	if err != nil {
		return "", errors.TokenError("Cannot read service account token", tokenFile, err)
	}

	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", errors.TokenError("Token file is empty", tokenFile, nil)
	}

	return token, nil
}
