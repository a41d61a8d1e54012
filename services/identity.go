package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rpupo63/blogroll/errs"
	"github.com/rs/zerolog/log"
)

const DefaultIdentityURL = "https://www.hackerschool.com/auth"

// Identity is the profile the identity service returns for valid credentials.
type Identity struct {
	FirstName string          `json:"first_name"`
	LastName  string          `json:"last_name"`
	HSID      int64           `json:"hs_id"`
	Github    string          `json:"github"`
	Twitter   string          `json:"twitter"`
	Image     string          `json:"image"`
	Raw       json.RawMessage `json:"-"`
}

// IdentityClient checks credentials against the community's identity service.
type IdentityClient struct {
	endpoint string
	client   *http.Client
}

func NewIdentityClient(endpoint string, timeout time.Duration) *IdentityClient {
	if endpoint == "" {
		endpoint = DefaultIdentityURL
	}
	return &IdentityClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

// Verify sends the credentials to the identity service. Any non-OK answer,
// transport failure or unreadable body is reported as an auth failure.
func (c *IdentityClient) Verify(ctx context.Context, email, password string) (*Identity, error) {
	logger := log.With().Str("service", "identity").Logger()

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return nil, errs.NewAuthFailedError(fmt.Errorf("parse identity url: %w", err))
	}
	q := u.Query()
	q.Set("email", email)
	q.Set("password", password)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, errs.NewAuthFailedError(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		logger.Warn().Err(err).Msg("Identity service unreachable")
		return nil, errs.NewAuthFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Info().Int("status", resp.StatusCode).Msg("Identity service rejected credentials")
		return nil, errs.NewIdentityRejectedError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, errs.NewAuthFailedError(fmt.Errorf("read identity response: %w", err))
	}

	var identity Identity
	if err := json.Unmarshal(body, &identity); err != nil {
		return nil, errs.NewAuthFailedError(fmt.Errorf("decode identity response: %w", err))
	}
	if identity.HSID == 0 {
		return nil, errs.NewAuthFailedError(fmt.Errorf("identity response has no hs_id"))
	}
	identity.Raw = json.RawMessage(body)

	return &identity, nil
}
