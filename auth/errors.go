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
	"fmt"
)

// indicates that no access token or authorization code was available for
// establishing a registry session
type MissingCredentialsError struct{}

func (e MissingCredentialsError) Error() string {
	return "No access token or authorization code was provided for the registry"
}

// indicates that the registry refused to exchange an authorization code for
// an access token
type TokenExchangeError struct {
	Endpoint string
	Err      error
}

func (e TokenExchangeError) Error() string {
	return fmt.Sprintf("Couldn't obtain an access token from %s: %s", e.Endpoint, e.Err.Error())
}

func (e TokenExchangeError) Unwrap() error {
	return e.Err
}

// indicates that an encrypted token file couldn't be used
type InvalidTokenFileError struct {
	Path, Message string
}

func (e InvalidTokenFileError) Error() string {
	return fmt.Sprintf("Invalid access token file '%s': %s", e.Path, e.Message)
}
