package submissions

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/JaimeStill/numeral/pkg/query"
	"github.com/JaimeStill/numeral/pkg/repository"
)

var projection = query.
	NewProjectionMap("", "submissions", "s").
	Project("id", "ID").
	Project("submitted_at", "Timestamp").
	Project("image", "Image").
	Project("label", "Label").
	Project("predictions", "Predictions")

var recentSort = []query.SortField{
	{Field: "Timestamp", Descending: true},
	{Field: "ID", Descending: true},
}

// Filters narrows recent-submission queries. Nil fields are ignored.
type Filters struct {
	Label *int `json:"label,omitempty"`
}

// Apply adds filter conditions to a query builder.
func (f Filters) Apply(b *query.Builder) *query.Builder {
	return b.WhereEquals("Label", f.Label)
}

// Match reports whether s passes the filters.
func (f Filters) Match(s Submission) bool {
	return f.Label == nil || *f.Label == s.Label
}

// FiltersFromQuery extracts filter values from URL query parameters.
func FiltersFromQuery(values url.Values) (Filters, error) {
	var f Filters

	if raw := strings.TrimSpace(values.Get("label")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			return f, fmt.Errorf("%w: %q", ErrInvalidLabel, raw)
		}
		if err := ValidateLabel(v); err != nil {
			return f, err
		}
		f.Label = &v
	}

	return f, nil
}

func scanSubmission(s repository.Scanner) (Submission, error) {
	var (
		sub   Submission
		preds []byte
	)

	if err := s.Scan(&sub.ID, &sub.Timestamp, &sub.Image, &sub.Label, &preds); err != nil {
		return sub, err
	}
	if err := json.Unmarshal(preds, &sub.Predictions); err != nil {
		return sub, fmt.Errorf("decode predictions: %w", err)
	}
	sub.Timestamp = sub.Timestamp.UTC()
	return sub, nil
}
