// Package ratelimit implements the client-side rate-limit governor: a
// table of token buckets keyed by request family, reset on a local
// per-family window and reconciled against the server's own
// X-RateLimit-* response headers.
package ratelimit

import "strings"

// Family groups requests that share a bucket by the platform's own
// rate-limit policy (first path segment, occasionally sub-keyed by a
// second segment).
type Family string

const (
	FamilyMessaging Family = "Messaging"
	FamilyServers   Family = "Servers"
	FamilyUserEdit  Family = "UserEdit"
	FamilyAuthDelete Family = "AuthDelete"
	FamilyAny       Family = "Any"
)

// BucketKey identifies one token bucket: a Family plus, for the families
// that sub-key per entity, the entity id the request acts on.
type BucketKey struct {
	Family Family
	Entity string
}

// Classify derives a BucketKey from a request's method and path, per the
// fixed classifier: the first path segment selects a family; messaging,
// server, and user-edit families sub-key by the second segment; DELETE
// /auth/* is its own family; everything unrecognised falls to Any.
func Classify(method, path string) BucketKey {
	segs := splitPath(path)
	if len(segs) == 0 {
		return BucketKey{Family: FamilyAny}
	}

	if method == "DELETE" && segs[0] == "auth" {
		return BucketKey{Family: FamilyAuthDelete}
	}

	switch segs[0] {
	case "channels":
		if len(segs) >= 2 {
			return BucketKey{Family: FamilyMessaging, Entity: segs[1]}
		}
	case "servers":
		if len(segs) >= 2 {
			return BucketKey{Family: FamilyServers, Entity: segs[1]}
		}
	case "users":
		if len(segs) >= 2 {
			return BucketKey{Family: FamilyUserEdit, Entity: segs[1]}
		}
	}
	return BucketKey{Family: FamilyAny}
}

func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
