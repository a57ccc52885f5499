package api

// TokenRequest holds the credentials for POST /api/auth/token.
type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// TokenResponse returns the issued bearer token.
type TokenResponse struct {
	Token            string `json:"token"`
	TokenType        string `json:"token_type"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

// CleanupRequest starts a batch deletion of every subject in a context.
type CleanupRequest struct {
	Context string `json:"context" validate:"required"`
	DryRun  bool   `json:"dry_run"`
}

// MigrateRequest starts a schema migration between two contexts.
type MigrateRequest struct {
	SourceContext string `json:"source_context" validate:"required"`
	TargetContext string `json:"target_context" validate:"required,nefield=SourceContext"`
}

// ExportRequest starts an export of every subject in a context.
type ExportRequest struct {
	Context string `json:"context" validate:"required"`
}
