package validation

import (
	"errors"
	"regexp"

	"github.com/goliatone/go-userforms/pkg/model"
)

// SchemaIssue is a problem found while loading a schema document.
type SchemaIssue struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of CheckSchema.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Fields []string      `json:"fields,omitempty"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

var quotedName = regexp.MustCompile(`"([^"]+)"`)

// CheckSchema loads a schema document and reports whether it is usable,
// listing the field ids on success.
func CheckSchema(data []byte, source string) SchemaValidationResult {
	schema, err := model.LoadSchema(data, source)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	if err := CheckKeys(schema); err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{issueFromError(err)}}
	}
	return SchemaValidationResult{Valid: true, Fields: schema.IDs()}
}

func issueFromError(err error) SchemaIssue {
	issue := SchemaIssue{Message: err.Error()}
	if errors.Is(err, model.ErrFieldIDMissing) {
		return issue
	}
	if match := quotedName.FindStringSubmatch(err.Error()); len(match) == 2 {
		issue.Field = match[1]
	}
	return issue
}
