package domain

type UploadPolicyInput struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	MediaType string `json:"media_type"`
}

type PolicyDeny struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

type PolicyResult struct {
	Allow bool         `json:"allow"`
	Deny  []PolicyDeny `json:"deny,omitempty"`
}
