package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"agentforce/pkg/config"
	"agentforce/pkg/failure"
)

const (
	GrantClientCredentials = "client_credentials"
	GrantPassword          = "password"

	codeTransport       = "transport"
	codeMissingToken    = "missing_access_token"
	codeNoCredentials   = "missing_credentials"
	missingTokenMessage = "token response did not include an access_token"
)

// Token is the bearer credential obtained from one successful grant. Its
// lifetime is not tracked.
type Token struct {
	AccessToken string
	TokenType   string
	InstanceURL string
	Scope       string
	IssuedAt    string
}

// Authenticator exchanges configured credentials for an access token.
type Authenticator struct {
	httpClient *http.Client
	now        func() time.Time
}

type Option func(*Authenticator)

// WithHTTPClient routes token requests through client.
func WithHTTPClient(client *http.Client) Option {
	return func(a *Authenticator) {
		if client != nil {
			a.httpClient = client
		}
	}
}

func New(opts ...Option) *Authenticator {
	a := &Authenticator{
		httpClient: &http.Client{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// GrantFor picks the grant type a config will use, or "" when neither
// credential pair is complete.
func GrantFor(cfg config.AgentforceConfig) string {
	switch {
	case cfg.HasClientCredentials():
		return GrantClientCredentials
	case cfg.HasPasswordCredentials():
		return GrantPassword
	default:
		return ""
	}
}

// Authenticate performs one token request. There is no retry.
func (a *Authenticator) Authenticate(ctx context.Context, cfg config.AgentforceConfig) (Token, error) {
	cfg = cfg.ApplyDefaults()
	grant := GrantFor(cfg)
	tokenURL := cfg.TokenURL()

	log := authLogger().With("operation", "token", "grant_type", grant)
	startedAt := time.Now()
	log.Debug("provider request started", "url", tokenURL)

	if grant == "" {
		err := failure.Auth(codeNoCredentials, "no complete credential pair configured", 0, nil)
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", err)
		return Token{}, err
	}

	if cfg.TimeoutMS > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout())
		defer cancel()
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	var (
		tok *oauth2.Token
		err error
	)
	switch grant {
	case GrantClientCredentials:
		cc := clientcredentials.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		tok, err = cc.Token(ctx)
	case GrantPassword:
		oc := oauth2.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			Endpoint: oauth2.Endpoint{
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		}
		tok, err = oc.PasswordCredentialsToken(ctx, strings.TrimSpace(cfg.Username), cfg.Password+cfg.SecurityToken)
	}
	if err != nil {
		authErr := mapError(err)
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", authErr)
		return Token{}, authErr
	}
	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		authErr := failure.Auth(codeMissingToken, missingTokenMessage, http.StatusOK, nil)
		log.Debug("provider request failed", "duration_ms", time.Since(startedAt).Milliseconds(), "error", authErr)
		return Token{}, authErr
	}

	token := Token{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		InstanceURL: extraString(tok, "instance_url"),
		Scope:       extraString(tok, "scope"),
		IssuedAt:    extraString(tok, "issued_at"),
	}
	if token.InstanceURL == "" {
		token.InstanceURL = cfg.InstanceURL
	}
	if token.IssuedAt == "" {
		token.IssuedAt = fmt.Sprintf("%d", a.now().UnixMilli())
	}

	log.Debug("provider request completed",
		"duration_ms", time.Since(startedAt).Milliseconds(),
		"token_type", token.TokenType,
		"instance_url", token.InstanceURL,
	)

	return token, nil
}

// mapError converts oauth2 failures into auth-phase errors carrying the
// upstream error code and description.
func mapError(err error) error {
	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}

		code := strings.TrimSpace(retrieveErr.ErrorCode)
		description := strings.TrimSpace(retrieveErr.ErrorDescription)
		if code == "" {
			code = http.StatusText(status)
		}
		if description == "" {
			description = strings.TrimSpace(string(retrieveErr.Body))
		}
		if description == "" {
			description = code
		}
		return failure.Auth(code, description, status, err)
	}

	if strings.Contains(err.Error(), "missing access_token") {
		return failure.Auth(codeMissingToken, missingTokenMessage, http.StatusOK, err)
	}

	return failure.Auth(codeTransport, err.Error(), 0, err)
}

func extraString(tok *oauth2.Token, key string) string {
	value, _ := tok.Extra(key).(string)
	return strings.TrimSpace(value)
}

func authLogger() *slog.Logger {
	return slog.Default().With("component", "auth.oauth2")
}
