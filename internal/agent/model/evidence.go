package model

// EvidenceStatus tags the outcome of the evidence-fetch stage so the
// responder can distinguish "we chose not to fetch" from "we tried and
// failed" when wording its fallback reply.
type EvidenceStatus string

const (
	// EvidenceFetched means Text carries usable supporting prose.
	EvidenceFetched EvidenceStatus = "fetched"
	// EvidenceSkipped means policy decided no grounding was needed.
	EvidenceSkipped EvidenceStatus = "skipped"
	// EvidenceEmpty means the provider returned nothing usable.
	EvidenceEmpty EvidenceStatus = "empty"
	// EvidenceFailed means the provider errored, timed out or refused.
	EvidenceFailed EvidenceStatus = "failed"
)

// EvidenceBlob is opaque supporting text for the responder. It is context,
// never ground truth to parse.
type EvidenceBlob struct {
	Status EvidenceStatus
	Text   string
	// Reason explains skips and failures for logging and fallback wording.
	Reason string
}

// Usable reports whether the blob carries text worth placing in the
// responder prompt.
func (b EvidenceBlob) Usable() bool {
	return b.Status == EvidenceFetched && b.Text != ""
}

func SkippedEvidence(reason string) EvidenceBlob {
	return EvidenceBlob{Status: EvidenceSkipped, Reason: reason}
}

func FailedEvidence(reason string) EvidenceBlob {
	return EvidenceBlob{Status: EvidenceFailed, Reason: reason}
}
