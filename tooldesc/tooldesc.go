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

// Package tooldesc points the importer's Galaxy tool descriptor at the
// configured IRIDA and Galaxy servers.
package tooldesc

import (
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/phac-nml/irida-galaxy-import/config"
)

// names of the hidden form parameters IRIDA hands back to Galaxy
const (
	ClientIdParam    = "galaxyClientID"
	CallbackUrlParam = "galaxyCallbackUrl"
)

// Settings holds the values written into a tool descriptor.
type Settings struct {
	// base URL of the IRIDA server
	RegistryURL string
	// OAuth2 client ID the importer uses with IRIDA
	ClientId string
	// base URL of the Galaxy server
	GalaxyURL string
	// ID of the importer tool within Galaxy
	ToolId string
}

// returns settings drawn from the current configuration
func SettingsFromConfig() Settings {
	return Settings{
		RegistryURL: config.Registry.URL,
		ClientId:    config.Registry.ClientId,
		GalaxyURL:   config.Galaxy.URL,
		ToolId:      config.Tool.ToolId,
	}
}

// the URL of the IRIDA page that sends users back to Galaxy with a cart
func (s Settings) Action() string {
	return strings.TrimRight(s.RegistryURL, "/") + "/projects"
}

// the Galaxy URL that IRIDA redirects users to after they choose samples
func (s Settings) CallbackURL() string {
	return fmt.Sprintf("%s/tool_runner?tool_id=%s", strings.TrimRight(s.GalaxyURL, "/"),
		url.QueryEscape(s.ToolId))
}

// Copies the tool descriptor read from r to w, setting the action of its
// inputs form and the values of its hidden client ID and callback URL
// params. All other content is copied unchanged.
func Patch(r io.Reader, w io.Writer, s Settings) error {
	decoder := xml.NewDecoder(r)
	encoder := xml.NewEncoder(w)
	patched := map[string]bool{"inputs": false, ClientIdParam: false, CallbackUrlParam: false}
	for {
		token, err := decoder.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &InvalidDescriptorError{Message: err.Error()}
		}
		token = xml.CopyToken(token)
		if start, ok := token.(xml.StartElement); ok {
			switch start.Name.Local {
			case "inputs":
				start.Attr = setAttr(start.Attr, "action", s.Action())
				patched["inputs"] = true
			case "param":
				switch attr(start.Attr, "name") {
				case ClientIdParam:
					start.Attr = setAttr(start.Attr, "value", s.ClientId)
					patched[ClientIdParam] = true
				case CallbackUrlParam:
					start.Attr = setAttr(start.Attr, "value", s.CallbackURL())
					patched[CallbackUrlParam] = true
				}
			}
			token = start
		}
		err = encoder.EncodeToken(token)
		if err != nil {
			return &InvalidDescriptorError{Message: err.Error()}
		}
	}
	for _, name := range []string{"inputs", ClientIdParam, CallbackUrlParam} {
		if !patched[name] {
			return &MissingElementError{Name: name}
		}
	}
	return encoder.Flush()
}

// Patches the tool descriptor at the given path in place.
func PatchFile(path string, s Settings) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(out.Name())

	err = Patch(in, out, s)
	if err == nil {
		err = out.Close()
	} else {
		out.Close()
	}
	if err != nil {
		return err
	}
	if info, err := in.Stat(); err == nil {
		os.Chmod(out.Name(), info.Mode().Perm())
	}
	err = os.Rename(out.Name(), path)
	if err != nil {
		return err
	}
	slog.Info(fmt.Sprintf("Configured tool descriptor %s (action: %s, callback: %s)",
		path, s.Action(), s.CallbackURL()))
	return nil
}

// returns the value of the named attribute, or "" if absent
func attr(attrs []xml.Attr, name string) string {
	for _, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			return a.Value
		}
	}
	return ""
}

// sets the value of the named attribute, appending it if absent
func setAttr(attrs []xml.Attr, name, value string) []xml.Attr {
	for i, a := range attrs {
		if a.Name.Space == "" && a.Name.Local == name {
			attrs[i].Value = value
			return attrs
		}
	}
	return append(attrs, xml.Attr{Name: xml.Name{Local: name}, Value: value})
}
