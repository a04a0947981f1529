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

// Package model defines the core data structures for the application.
// This file implements the result normalizer: the trust boundary between
// the generative model's duck-typed output and the rest of the system.
//
// The extraction step hands us a string that is supposed to be a JSON array
// of place objects, but across real responses it has been observed as:
//   - a single object instead of an array,
//   - wrapped in ```json fences or surrounding prose,
//   - carrying numbers as strings ("4,5"), nulls, or missing fields,
//   - carrying slash-joined category composites ("Comida/Otro").
//
// NormalizePlaces absorbs all of that. It never panics and never fails on
// a malformed *item*; only a payload with no salvageable JSON, or one whose
// item list is empty, yields an error, which the HTTP layer maps to a 422.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// RawExtractedItem is the untrusted shape of one extracted place. Every
// field is decoded as json.RawMessage-free interface values so that wrong
// types are coerced instead of failing the decode.
type RawExtractedItem map[string]interface{}

// NormalizePlaces converts the raw model response into a list of fully
// populated PlaceRecords. sourceUrl is stamped on every record.
//
// A wholly unparsable payload, or a parsable one holding zero places (the
// model answered "[]" or "null" for a video with nothing to extract),
// returns an empty slice together with an error describing why; individual
// malformed items degrade to sentinel defaults and are kept.
func NormalizePlaces(raw string, sourceUrl string) ([]*PlaceRecord, error) {
	items, err := decodeRawItems(raw)
	if err != nil {
		return []*PlaceRecord{}, err
	}
	if len(items) == 0 {
		return []*PlaceRecord{}, fmt.Errorf("extraction found no places")
	}

	out := make([]*PlaceRecord, 0, len(items))
	for _, item := range items {
		out = append(out, normalizeItem(item, sourceUrl))
	}
	return out, nil
}

// decodeRawItems parses the payload into a list of raw items, tolerating
// code fences, surrounding prose, and a bare object in place of an array.
func decodeRawItems(raw string) ([]RawExtractedItem, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, fmt.Errorf("empty extraction response")
	}

	var list []RawExtractedItem
	if err := json.Unmarshal([]byte(cleaned), &list); err == nil {
		return list, nil
	}

	// The model sometimes returns a single object for a single-place video.
	var single RawExtractedItem
	if err := json.Unmarshal([]byte(cleaned), &single); err == nil {
		return []RawExtractedItem{single}, nil
	}

	// Last resort: find the outermost JSON value inside prose.
	if inner := extractEmbeddedJSON(cleaned); inner != "" && inner != cleaned {
		return decodeRawItems(inner)
	}

	return nil, fmt.Errorf("extraction response is not valid JSON")
}

// normalizeItem coerces one raw item into a PlaceRecord. Identity fields
// (id, timestamp) are always generated fresh, never taken from the input.
func normalizeItem(item RawExtractedItem, sourceUrl string) *PlaceRecord {
	rec := NewPlaceRecord()
	rec.SourceUrl = sourceUrl
	if item == nil {
		return rec
	}

	if v := coerceString(item["placeName"]); v != "" {
		rec.PlaceName = v
	}
	rec.Category = NormalizeCategory(coerceString(item["category"]))
	rec.EstimatedLocation = coerceString(item["estimatedLocation"])
	if v := coerceString(item["priceRange"]); v != "" {
		rec.PriceRange = v
	}
	rec.Summary = coerceString(item["summary"])
	if v := coerceString(item["confidenceLevel"]); v != "" {
		rec.ConfidenceLevel = v
	}
	rec.IsTouristTrap = coerceBool(item["isTouristTrap"])
	rec.Website = coerceString(item["website"])
	rec.Lat = coerceFloat(item["lat"])
	rec.Lng = coerceFloat(item["lng"])
	rec.Score = clampScore(coerceFloat(item["score"]))

	// Prepend the critical verdict once. Contains is the idempotence
	// guard: re-normalizing already merged content must not stack the
	// verdict in front of the summary a second time.
	if verdict := coerceString(item["criticalVerdict"]); verdict != "" && !strings.Contains(rec.Summary, verdict) {
		if rec.Summary == "" {
			rec.Summary = verdict
		} else {
			rec.Summary = verdict + ". " + rec.Summary
		}
	}

	return rec
}

// NormalizeCategory reduces whatever the model called the category to one
// member of Categories. Slash-joined composites take their first segment;
// an unrecognized single value passes through unchanged, which is a known
// inconsistency we keep visible rather than mask as "Otro".
func NormalizeCategory(in string) string {
	trimmed := strings.TrimSpace(in)
	if trimmed == "" {
		return "Otro"
	}
	first := trimmed
	if idx := strings.IndexAny(trimmed, "/|,"); idx >= 0 {
		first = strings.TrimSpace(trimmed[:idx])
	}
	if canonical, ok := categoryAliases[strings.ToLower(first)]; ok {
		return canonical
	}
	return first
}

// NormalizeName lowercases and trims a place name for deduplication.
func NormalizeName(in string) string {
	return strings.ToLower(strings.TrimSpace(in))
}

// StripCodeFences removes markdown code fences the model wraps JSON in,
// including a leading "json" language tag.
func StripCodeFences(in string) string {
	out := strings.TrimSpace(in)
	if strings.HasPrefix(out, "```") {
		out = strings.TrimPrefix(out, "```")
		out = strings.TrimPrefix(out, "json")
		if idx := strings.LastIndex(out, "```"); idx >= 0 {
			out = out[:idx]
		}
	}
	return strings.TrimSpace(out)
}

// extractEmbeddedJSON pulls the outermost array or object out of a payload
// that has prose around it. Returns "" when neither bracket pair exists.
func extractEmbeddedJSON(in string) string {
	for _, pair := range [][2]string{{"[", "]"}, {"{", "}"}} {
		start := strings.Index(in, pair[0])
		end := strings.LastIndex(in, pair[1])
		if start >= 0 && end > start {
			return strings.TrimSpace(in[start : end+1])
		}
	}
	return ""
}

// coerceString renders any scalar as a trimmed string. The literal strings
// "null" and "undefined" collapse to empty, mirroring how the model leaks
// JavaScript-isms into text fields.
func coerceString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") || strings.EqualFold(s, "undefined") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// coerceFloat parses numbers that may arrive as JSON numbers or as strings
// with either decimal separator ("4.5" or "4,5"). Failure yields 0.
func coerceFloat(v interface{}) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(t, ",", "."))
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if t {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// coerceBool accepts booleans, "true"/"sí"-ish strings, and numbers.
func coerceBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		s := strings.ToLower(strings.TrimSpace(t))
		return s == "true" || s == "yes" || s == "si" || s == "sí" || s == "1"
	case float64:
		return t != 0
	default:
		return false
	}
}

// clampScore enforces the non-zero score invariant: 0 or absent becomes
// DefaultScore, anything else is clamped into [MinScore, MaxScore].
func clampScore(score float64) float64 {
	if score == 0 {
		return DefaultScore
	}
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}
