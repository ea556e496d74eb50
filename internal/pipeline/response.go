package pipeline

import (
	"github.com/joseph-ayodele/docfields/constants"
	"github.com/joseph-ayodele/docfields/internal/extract"
	"github.com/joseph-ayodele/docfields/internal/pipeline/imagescan"
)

const msgProcessed = "File successfully processed"

// Response is the outward envelope of one extraction. Data is {} and
// Tables is empty whenever Status is error.
type Response struct {
	Status    constants.Status `json:"status"`
	Message   string           `json:"message"`
	Filename  string           `json:"filename"`
	FileSize  int              `json:"file_size"`
	RequestID string           `json:"request_id,omitempty"`
	Method    constants.Method `json:"method,omitempty"`
	Data      map[string]any   `json:"data"`
	Tables    []extract.Table  `json:"tables"`
	Scan      *imagescan.Scan  `json:"scan,omitempty"`
}

// NewResponse builds the envelope from the result of Process or ProcessImage.
func NewResponse(doc Document, out *Outcome, err error) Response {
	r := Response{
		Filename:  doc.Filename,
		FileSize:  len(doc.Data),
		RequestID: doc.RequestID,
		Data:      map[string]any{},
		Tables:    []extract.Table{},
	}
	if out != nil {
		r.Method = out.Method
		r.Scan = out.Scan
		if r.RequestID == "" {
			r.RequestID = out.RequestID
		}
	}
	if err != nil {
		r.Status = constants.StatusError
		r.Message = extractionMessage(err)
		return r
	}
	r.Status = constants.StatusSuccess
	r.Message = msgProcessed
	if out != nil {
		if out.Data != nil {
			r.Data = out.Data
		}
		if out.Tables != nil {
			r.Tables = out.Tables
		}
	}
	return r
}
