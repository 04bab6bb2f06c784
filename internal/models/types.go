package models

// Classification is the terminal verdict assigned to a domain
type Classification string

const (
	ClassValid   Classification = "Valid"
	ClassRisky   Classification = "Risky"
	ClassInvalid Classification = "Invalid"
)

// Classifications lists every verdict in report order
var Classifications = []Classification{ClassValid, ClassRisky, ClassInvalid}

// LivenessKind tags the variant held by a LivenessOutcome
type LivenessKind string

const (
	LivenessLive                  LivenessKind = "live"
	LivenessDead                  LivenessKind = "dead"
	LivenessParked                LivenessKind = "parked"
	LivenessSubdomainDeadRootLive LivenessKind = "subdomain_dead_root_live"
)

// ProbeVia names the transport that proved a domain live
type ProbeVia string

const (
	ViaHTTPS  ProbeVia = "https"
	ViaHTTP   ProbeVia = "http"
	ViaSocket ProbeVia = "socket"
)

// RecordType represents the DNS record lookups performed per domain
type RecordType string

const (
	RecordMX    RecordType = "MX"
	RecordA     RecordType = "A"
	RecordTXT   RecordType = "TXT"
	RecordDMARC RecordType = "DMARC"
)

// FailureKind classifies why a DNS lookup produced no usable record.
// Every kind is treated as "record absent" by the classifier.
type FailureKind string

const (
	FailureNXDomain      FailureKind = "nxdomain"
	FailureNoAnswer      FailureKind = "no_answer"
	FailureNoNameservers FailureKind = "no_nameservers"
	FailureResolution    FailureKind = "resolution_error"
)

// RunStatus represents the current state of a batch run
type RunStatus string

const (
	StatusRunning  RunStatus = "running"
	StatusComplete RunStatus = "complete"
	StatusFailed   RunStatus = "failed"
)
