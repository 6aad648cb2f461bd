// Copyright (c) 2023 The KBase Project and its Contributors
// Copyright (c) 2023 Cohere Consulting, LLC
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"github.com/phac-nml/irida-galaxy-import/clients"
	"github.com/phac-nml/irida-galaxy-import/config"
)

// OAuth2 parameters handed to the importer by IRIDA (via Galaxy) in the
// launch manifest
type OAuth2Parameters struct {
	// the redirect URI registered for the Galaxy client
	Redirect string `json:"redirect"`
	// the authorization code issued to the Galaxy client
	Code string `json:"code"`
}

// describes how an access token for the registry was obtained
type TokenSource int

const (
	TokenFromFlag      TokenSource = iota // supplied on the command line
	TokenFromFile                         // decrypted from the configured token file
	TokenFromExchange                     // exchanged for an authorization code
)

func (s TokenSource) String() string {
	switch s {
	case TokenFromFlag:
		return "command line"
	case TokenFromFile:
		return "token file"
	default:
		return "authorization code exchange"
	}
}

// returns an OAuth2 configuration for the registry built from the
// importer's configuration and the given redirect URI
func oauth2Config(redirect string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     config.Registry.ClientId,
		ClientSecret: config.Registry.ClientSecret,
		RedirectURL:  redirect,
		Endpoint: oauth2.Endpoint{
			TokenURL:  config.Registry.TokenEndpoint,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

// Establishes an authenticated session with the registry, returning an HTTP
// client that attaches a bearer token to every request. The token is, in
// order of preference, the given pre-issued access token, a token decrypted
// from the configured token file, or one obtained by exchanging the
// authorization code in params.
func NewRegistryClient(ctx context.Context, params OAuth2Parameters,
	accessToken string) (*http.Client, TokenSource, error) {
	base := clients.SecureHttpClient(time.Duration(config.Registry.Timeout) * time.Second)
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &base)

	if accessToken != "" {
		return withBase(oauth2.NewClient(ctx, staticToken(accessToken)), base), TokenFromFlag, nil
	}

	if config.Registry.TokenFile != "" {
		token, err := ReadAccessTokenFile(config.Registry.TokenFile, config.Registry.TokenKey)
		if err != nil {
			return nil, TokenFromFile, err
		}
		return withBase(oauth2.NewClient(ctx, staticToken(token)), base), TokenFromFile, nil
	}

	if params.Code == "" {
		return nil, TokenFromExchange, &MissingCredentialsError{}
	}
	conf := oauth2Config(params.Redirect)
	slog.Debug(fmt.Sprintf("Exchanging authorization code at %s", conf.Endpoint.TokenURL))
	token, err := conf.Exchange(ctx, params.Code)
	if err != nil {
		return nil, TokenFromExchange, &TokenExchangeError{
			Endpoint: conf.Endpoint.TokenURL,
			Err:      err,
		}
	}
	return withBase(conf.Client(ctx, token), base), TokenFromExchange, nil
}

// oauth2 clients inherit only the transport of the base client, so we carry
// over its timeout and redirect policy
func withBase(client *http.Client, base http.Client) *http.Client {
	client.Timeout = base.Timeout
	client.CheckRedirect = base.CheckRedirect
	return client
}

func staticToken(accessToken string) oauth2.TokenSource {
	return oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: strings.TrimSpace(accessToken),
		TokenType:   "Bearer",
	})
}
