// Copyright 2025 Viaje Scout Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package services

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/customsearch/v1"
)

// PhotoFinder resolves a place query to a representative image URL.
type PhotoFinder interface {
	FindPhoto(ctx context.Context, query string) (string, error)
}

// CustomSearchPhotoFinder looks up photos through a Programmable Search
// Engine configured for image results.
type CustomSearchPhotoFinder struct {
	service *customsearch.Service
	cx      string
	timeout time.Duration
}

func NewCustomSearchPhotoFinder(service *customsearch.Service, cx string, timeout time.Duration) *CustomSearchPhotoFinder {
	return &CustomSearchPhotoFinder{
		service: service,
		cx:      cx,
		timeout: timeout,
	}
}

// FindPhoto returns the link of the top image hit for the query. No hits is
// an error; the caller leaves the record's photo URL empty.
func (p *CustomSearchPhotoFinder) FindPhoto(ctx context.Context, query string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.service.Cse.List().
		Q(query).
		Cx(p.cx).
		SearchType("image").
		Num(1).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("photo search %q: %w", query, err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("photo search %q: no results", query)
	}
	return resp.Items[0].Link, nil
}
