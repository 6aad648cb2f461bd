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

package transfers

import (
	"fmt"
)

// indicates that no Galaxy user matches the email address of the user for
// whom a library is to be created
type PrincipalNotFoundError struct {
	Email string
}

func (e PrincipalNotFoundError) Error() string {
	return fmt.Sprintf("No Galaxy user could be found for the email: '%s'", e.Email)
}

// indicates that a folder was requested under a base folder that doesn't
// exist (base folders are never created implicitly)
type InvalidBasePathError struct {
	Path, BasePath string
}

func (e InvalidBasePathError) Error() string {
	return fmt.Sprintf("Can't create folder '%s': base folder '%s' must already exist, or be empty",
		e.Path, e.BasePath)
}

// indicates that a sample file doesn't exist on the local filesystem
type LocalFileMissingError struct {
	LocalPath, GalaxyPath string
}

func (e LocalFileMissingError) Error() string {
	return fmt.Sprintf("Sample file not found: %s (destined for %s)", e.LocalPath, e.GalaxyPath)
}

// indicates that Galaxy failed to register a sample file
type TransferError struct {
	LocalPath, GalaxyPath string
	Err                   error
}

func (e TransferError) Error() string {
	return fmt.Sprintf("Couldn't import %s to %s: %s", e.LocalPath, e.GalaxyPath, e.Err.Error())
}

func (e TransferError) Unwrap() error {
	return e.Err
}

// indicates that a library operation was attempted before a library was
// resolved
type NoLibraryError struct{}

func (e NoLibraryError) Error() string {
	return "No destination library has been resolved"
}

// indicates that a content listing was searched on an unsupported attribute
type UnknownAttributeError struct {
	Attribute string
}

func (e UnknownAttributeError) Error() string {
	return fmt.Sprintf("Library contents have no attribute '%s'", e.Attribute)
}
