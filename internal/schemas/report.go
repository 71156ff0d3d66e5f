package schemas

import "encoding/json"

// ReportOutput is the result of `repodoc report`. Unknown fields returned by
// the backend are kept in Extra and written back out when marshaled.
type ReportOutput struct {
	Command             string `json:"command"`
	Success             bool   `json:"success" schema:"default=true"`
	MarkdownContent     string `json:"markdown_content" schema:"required"`
	ReportTitle         string `json:"report_title" schema:"required"`
	GenerationTimestamp string `json:"generation_timestamp" schema:"required"`

	Extra map[string]any `json:"-"`
}

func (*ReportOutput) CommandName() string { return "report" }

// SetExtra stores fields the schema does not declare.
func (r *ReportOutput) SetExtra(extra map[string]any) { r.Extra = extra }

// MarshalJSON writes declared fields over any extra ones.
func (r ReportOutput) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+5)
	for k, v := range r.Extra {
		out[k] = v
	}
	out["command"] = r.Command
	out["success"] = r.Success
	out["markdown_content"] = r.MarkdownContent
	out["report_title"] = r.ReportTitle
	out["generation_timestamp"] = r.GenerationTimestamp
	return json.Marshal(out)
}
