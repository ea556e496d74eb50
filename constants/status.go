package constants

// Status is the outward status of an extraction response.
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Method records which pipelines produced a document's content.
type Method string

const (
	MethodTextLayer  Method = "text-layer"
	MethodPDFToText  Method = "pdftotext"
	MethodImageScan  Method = "image-scan"
	MethodSupplement Method = "text-layer+image-scan"
)

// Policy decides how the text-layer and image pipelines are combined.
type Policy string

const (
	PolicyTextFirst  Policy = "text-first" // text layer, image scan when it yields nothing
	PolicyImageOnly  Policy = "image-only"
	PolicySupplement Policy = "supplement" // both, content concatenated
)

func ParsePolicy(s string) (Policy, bool) {
	switch Policy(s) {
	case PolicyTextFirst, PolicyImageOnly, PolicySupplement:
		return Policy(s), true
	case "":
		return PolicyTextFirst, true
	}
	return "", false
}

// Strategy selects the table segmentation approach of the image pipeline.
type Strategy string

const (
	StrategyStructural Strategy = "structural"
	StrategyEdges      Strategy = "edges"
)

func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyStructural, StrategyEdges:
		return Strategy(s), true
	case "":
		return StrategyStructural, true
	}
	return "", false
}

// JobStatus tracks a queued document.
type JobStatus string

const (
	JobStatusQueued  JobStatus = "QUEUED"
	JobStatusRunning JobStatus = "RUNNING"
	JobStatusDone    JobStatus = "DONE"
	JobStatusFailed  JobStatus = "FAILED"
)
