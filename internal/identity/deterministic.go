package identity

import (
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

const namespace = "go-pagetree:"

// UUID derives a deterministic UUID from a stable key using go-hashid, falling
// back to a SHA1 name based UUID when hashing fails.
//
// Callers prefix keys by entity kind to avoid cross-entity collisions.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// RegionUUID identifies a region definition by key.
func RegionUUID(key string) uuid.UUID {
	return UUID(namespace + "region:" + strings.ToLower(strings.TrimSpace(key)))
}

// TemplateUUID identifies a template definition by key.
func TemplateUUID(key string) uuid.UUID {
	return UUID(namespace + "template:" + strings.ToLower(strings.TrimSpace(key)))
}
