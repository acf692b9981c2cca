/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"drilldesigner/internal/domain"
)

// ErrNotFound is returned by Client when the server answers 404.
var ErrNotFound = errors.New("server: not found")

// Client reads a drill shared by another drilldesigner instance.
type Client struct {
	BaseURL string
	client  *http.Client
}

// NewClient normalizes baseURL by trimming trailing slashes.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 32<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		msg := resp.Status
		if json.Unmarshal(body, &eb) == nil && eb.Error != "" {
			msg = eb.Error
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, msg)
		}
		return nil, fmt.Errorf("server GET %s: %s", u.Path, msg)
	}
	return body, nil
}

func (c *Client) getJSON(ctx context.Context, path string, dest any) error {
	b, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, dest)
}

// Drill fetches the shared drill.
func (c *Client) Drill(ctx context.Context) (*domain.Drill, error) {
	var d domain.Drill
	if err := c.getJSON(ctx, "/api/drill", &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// Step fetches one step of the shared drill.
func (c *Client) Step(ctx context.Context, stepID string) (domain.DrillStep, error) {
	var st domain.DrillStep
	err := c.getJSON(ctx, "/api/drill/steps/"+url.PathEscape(stepID), &st)
	return st, err
}

// Diagram fetches a rendered step, format "svg" or "png".
func (c *Client) Diagram(ctx context.Context, stepID, format string) ([]byte, error) {
	return c.get(ctx, fmt.Sprintf("/api/drill/steps/%s/diagram.%s", url.PathEscape(stepID), format))
}

// Catalog fetches the server's asset catalog.
func (c *Client) Catalog(ctx context.Context) (CatalogResponse, error) {
	var cr CatalogResponse
	err := c.getJSON(ctx, "/api/catalog", &cr)
	return cr, err
}
