package service

import (
	"fmt"
	"math"
	"strings"
	"time"

	"immosearch/internal/model"
)

const (
	descriptionLimit = 300
	maxCardImages    = 5
)

// surfaceAttributeKeys are the attribute spellings that carry the usable
// surface, in lookup order.
var surfaceAttributeKeys = []string{"Suprafata utila", "Suprafata", "suprafata_utila"}

// FormatResult shapes one raw engine hit into a UI result record. The score
// is normalized against the best hit of the response into 0..100; when the
// response carries no usable max score every hit scores 0.
func FormatResult(hit model.Hit, maxScore float64) model.SearchResult {
	src := hit.Source

	score := 0
	if maxScore > 0 {
		score = int(math.Round(hit.Score / maxScore * 100))
		if score > 100 {
			score = 100
		}
		if score < 0 {
			score = 0
		}
	}

	title := getString(src, "driver_title")
	if title == "" {
		title = getString(src, "name")
	}
	if title == "" {
		title = "No title"
	}

	phone := getString(src, "decrypted_phone")
	if phone == "" {
		phone = "N/A"
	}

	source := getString(src, "ad_source")
	if source == "" {
		source = getString(src, "source")
	}

	currency := getString(src, "currency")
	if currency == "" {
		currency = "EUR"
	}

	images, imageCount := filterImages(src)

	return model.SearchResult{
		ID:          hit.ID,
		AdID:        stringify(src["ad_id"]),
		Title:       title,
		Description: formatDescription(getString(src, "description")),
		Price:       getFloat(src, "price"),
		Currency:    currency,
		Location:    formatLocation(src),
		Categories:  getStringSlice(src, "categories"),
		Surface:     extractSurface(src),
		Phone:       phone,
		Date:        formatDate(getString(src, "valid_from")),
		Images:      images,
		ImageCount:  imageCount,
		Source:      source,
		URL:         getString(src, "ad_url"),
		Score:       score,
		IsAgency:    getBool(src, "is_agent"),
		SellerType:  "unknown",
	}
}

// formatDescription collapses HTML line breaks and newlines into single
// spaces and truncates to the card preview length.
func formatDescription(desc string) string {
	desc = strings.ReplaceAll(desc, "<br />", " ")
	desc = strings.ReplaceAll(desc, "<br>", " ")
	desc = strings.ReplaceAll(desc, "\n", " ")

	runes := []rune(desc)
	if len(runes) > descriptionLimit {
		return string(runes[:descriptionLimit]) + "..."
	}
	return desc
}

// formatLocation builds the "City, Area" display string, skipping absent
// parts.
func formatLocation(src map[string]any) string {
	var parts []string
	if v := getString(src, "location_1"); v != "" {
		parts = append(parts, v)
	}
	if v := getString(src, "location_2"); v != "" {
		parts = append(parts, v)
	}
	return strings.Join(parts, ", ")
}

// filterImages keeps absolute http(s) URLs that are not vector images,
// capped for the card; the true count is reported separately.
func filterImages(src map[string]any) ([]string, int) {
	raw := getStringSlice(src, "src_images")
	if len(raw) == 0 {
		raw = getStringSlice(src, "images")
	}

	var valid []string
	for _, img := range raw {
		if !strings.HasPrefix(img, "http") {
			continue
		}
		if strings.HasSuffix(img, ".svg") {
			continue
		}
		valid = append(valid, img)
	}

	count := len(valid)
	if count > maxCardImages {
		valid = valid[:maxCardImages]
	}
	if valid == nil {
		valid = []string{}
	}
	return valid, count
}

// formatDate reformats an ISO-8601 source timestamp for display; anything
// unparseable passes through unchanged.
func formatDate(raw string) string {
	if raw == "" {
		return ""
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// Some sources omit the zone entirely
		ts, err = time.Parse("2006-01-02T15:04:05", raw)
		if err != nil {
			return raw
		}
	}
	return ts.Format("01/02/06, 3:04 PM")
}

// extractSurface finds the first known surface attribute alias.
func extractSurface(src map[string]any) string {
	attrs, ok := src["attributes"].(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range surfaceAttributeKeys {
		if v := stringify(attrs[key]); v != "" {
			return v
		}
	}
	return ""
}

// Generic JSON source accessors

func getString(src map[string]any, key string) string {
	v, _ := src[key].(string)
	return v
}

func getFloat(src map[string]any, key string) *float64 {
	v, ok := src[key].(float64)
	if !ok {
		return nil
	}
	return &v
}

func getBool(src map[string]any, key string) bool {
	switch v := src[key].(type) {
	case bool:
		return v
	case string:
		return v == "true"
	}
	return false
}

func getStringSlice(src map[string]any, key string) []string {
	raw, ok := src[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == math.Trunc(t) {
			return fmt.Sprintf("%.0f", t)
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
