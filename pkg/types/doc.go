// Package types defines the core types shared by the provisioning packages:
// the resolved platform profile, the RunContext every phase reads, the
// filesystem seam, and the per-run execution record.
package types
