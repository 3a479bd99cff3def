// Package executor runs external commands on behalf of the provisioning
// phases.
//
// Every package manager call, installer script and probe goes through the
// Runner interface so that phases can be exercised against a recording fake
// (see executortest) instead of the real host.
package executor
