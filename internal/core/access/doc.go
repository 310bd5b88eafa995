// Package access decides what a resolved identity may do.
//
// The role authority (IsAllowed, Decide, Authorize) is a pure function of an
// identity and an explicit allow-set of roles. The tenant gate (Gate) adds
// row-level scoping: it re-reads the caller's user record on every call so
// assignment and org-admin changes take effect on the next request.
package access
