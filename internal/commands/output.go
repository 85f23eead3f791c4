package commands

import (
	"time"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
)

type checkboxInfo struct {
	Line           int          `json:"line,omitempty"`
	Symbol         string       `json:"symbol"`
	Status         string       `json:"status"`
	Type           string       `json:"type"`
	Description    string       `json:"description"`
	DoneDate       string       `json:"done_date,omitempty"`
	Rule           string       `json:"rule,omitempty"`
	RecurrenceDate string       `json:"recurrence_date,omitempty"`
	Tags           []string     `json:"tags"`
	BlockLink      string       `json:"block_link,omitempty"`
	Markdown       string       `json:"markdown"`
	Diagnostics    []diagnostic `json:"diagnostics,omitempty"`
}

type diagnostic struct {
	Kind  string `json:"kind"`
	Field string `json:"field"`
	Text  string `json:"text"`
	Error string `json:"error"`
}

func newCheckboxInfo(line int, cb checkbox.Checkbox, markdown string, diags []checkbox.Diagnostic) checkboxInfo {
	info := checkboxInfo{
		Line:        line,
		Symbol:      cb.Status.Symbol,
		Status:      cb.Status.Name,
		Type:        string(cb.Status.Type),
		Description: cb.Description,
		DoneDate:    formatDay(cb.DoneDate),
		Tags:        cb.Tags,
		BlockLink:   cb.BlockLink,
		Markdown:    markdown,
	}
	if info.Tags == nil {
		info.Tags = []string{}
	}
	if cb.RecurrenceRule != nil {
		info.Rule = cb.RecurrenceRule.Text()
	}
	info.RecurrenceDate = formatDay(cb.RecurrenceDate)
	for _, d := range diags {
		item := diagnostic{Kind: string(d.Kind), Field: string(d.Field), Text: d.Text}
		if d.Err != nil {
			item.Error = d.Err.Error()
		}
		info.Diagnostics = append(info.Diagnostics, item)
	}
	return info
}

func formatDay(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(checkbox.DateLayout)
}
