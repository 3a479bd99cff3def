// Package platform resolves the host into one of the fixed installation
// profiles. Resolution never fails: hosts that match no known marker map to
// types.Unknown, and phases degrade to a warning on that profile.
package platform
