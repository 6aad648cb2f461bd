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
	"os"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

// fernet tokens written by operators carry no meaningful age, so the file is
// accepted regardless of when it was encrypted
const tokenFileTTL = 100 * 365 * 24 * time.Hour

// Reads a pre-issued registry access token from a file encrypted with the
// given (base64-encoded) fernet key. The plaintext holds the access token on
// its first non-blank, non-comment line.
func ReadAccessTokenFile(tokenFilePath, encodedKey string) (string, error) {
	key, err := fernet.DecodeKey(encodedKey)
	if err != nil {
		return "", &InvalidTokenFileError{
			Path:    tokenFilePath,
			Message: "invalid decryption key",
		}
	}

	encryptedText, err := os.ReadFile(tokenFilePath)
	if err != nil {
		return "", err
	}

	plainText := fernet.VerifyAndDecrypt([]byte(strings.TrimSpace(string(encryptedText))),
		tokenFileTTL, []*fernet.Key{key})
	if plainText == nil {
		return "", &InvalidTokenFileError{
			Path:    tokenFilePath,
			Message: "could not decrypt contents",
		}
	}

	for _, line := range strings.Split(string(plainText), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
	return "", &InvalidTokenFileError{
		Path:    tokenFilePath,
		Message: "no access token found",
	}
}
