//go:build !unix

package platform

func unameSysname() string {
	return ""
}
