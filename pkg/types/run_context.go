package types

// Credential is an App Store account used to sign in before installing apps.
type Credential struct {
	Email    string
	Password string
}

// RunContext is built once before the first phase and only read afterwards.
type RunContext struct {
	System   System
	OS       OS
	Hostname string

	// TargetHostname is empty when no hostname argument was given.
	TargetHostname string

	// DataDir overrides the embedded resources (manifests, shell files,
	// preferences) when non-empty.
	DataDir string
	// LibDir is where cloned helper repositories live. The dotfiles
	// checkout defaults to a directory under it.
	LibDir string

	Home string

	AppStoreCredential *Credential
	BaseOnly           bool
}

// NewRunContext creates a RunContext from a resolved profile.
func NewRunContext(p Profile) *RunContext {
	return &RunContext{
		System:   p.System,
		OS:       p.OS,
		Hostname: p.Hostname,
	}
}

// HasCredential reports whether an App Store credential was supplied.
func (rc *RunContext) HasCredential() bool {
	return rc.AppStoreCredential != nil && rc.AppStoreCredential.Email != ""
}
