package profile

import (
	"aboutme/internal/models"
)

// Cache-Control values attached to profile responses. Public reads may be
// held briefly by shared caches; anything credentialed must never be.
const (
	CacheControlPublic  = "public, s-maxage=60, stale-while-revalidate=300"
	CacheControlPrivate = "no-store"
)

type requesterKind int

const (
	requesterAnonymous requesterKind = iota
	requesterAPIKey
	requesterOwner
)

// Requester identifies who is asking for a profile: an anonymous caller, a
// bearer of a profile API key, or a session-authenticated user.
type Requester struct {
	kind   requesterKind
	apiKey string
	userID string
}

// Anonymous is a requester with no credential.
func Anonymous() Requester {
	return Requester{kind: requesterAnonymous}
}

// WithAPIKey is a requester presenting a bearer API key.
func WithAPIKey(key string) Requester {
	return Requester{kind: requesterAPIKey, apiKey: key}
}

// AsUser is a session-authenticated requester. It only grants owner access
// when the user ID matches the profile's owner; otherwise it behaves like an
// anonymous requester.
func AsUser(userID string) Requester {
	return Requester{kind: requesterOwner, userID: userID}
}

// Decision is the outcome of an authorization check for a profile read.
// When denied, Deny carries the error to return and Data is empty.
type Decision struct {
	Allowed      bool
	Data         models.ProfileData
	IsPublic     *bool
	IsOwner      bool
	CacheControl string
	Deny         *ServiceError
}

// Resolve applies the access rules for a profile read.
//
//	anonymous + public profile        -> allowed, public projection
//	anonymous + private profile       -> 403
//	API key matches profile.api_key   -> allowed regardless of is_public,
//	                                     response annotated with the actual
//	                                     is_public value
//	API key does not match            -> 401
//	owner (user ID matches)           -> allowed, unrestricted projection
//
// The contact section is stripped for every non-owner unless its visibility
// is exactly "public". Whether the profile exists at all is decided by the
// caller; missing profiles are 404 on every credential path so that a wrong
// key and a missing user are not distinguishable by response shape.
func Resolve(profile *models.Profile, requester Requester) Decision {
	switch requester.kind {
	case requesterOwner:
		if requester.userID == profile.UserID {
			return Decision{
				Allowed:      true,
				Data:         profile.Data,
				IsOwner:      true,
				CacheControl: CacheControlPrivate,
			}
		}
		// A logged-in user viewing someone else's profile gets the
		// anonymous treatment.
		return resolveAnonymous(profile)

	case requesterAPIKey:
		if profile.APIKey == nil || requester.apiKey != *profile.APIKey {
			return Decision{
				CacheControl: CacheControlPrivate,
				Deny:         NewUnauthorizedError("invalid API key"),
			}
		}
		isPublic := profile.IsPublic
		return Decision{
			Allowed:      true,
			Data:         projectPublic(profile.Data),
			IsPublic:     &isPublic,
			CacheControl: CacheControlPrivate,
		}

	default:
		return resolveAnonymous(profile)
	}
}

func resolveAnonymous(profile *models.Profile) Decision {
	if !profile.IsPublic {
		return Decision{
			CacheControl: CacheControlPrivate,
			Deny:         NewForbiddenError("this profile is private and requires an API key"),
		}
	}
	return Decision{
		Allowed:      true,
		Data:         projectPublic(profile.Data),
		CacheControl: CacheControlPublic,
	}
}

// projectPublic strips the contact section unless it is marked public. The
// key is absent from the result, not nulled.
func projectPublic(data models.ProfileData) models.ProfileData {
	if data.Contact != nil && data.Contact.Visibility != models.ContactVisibilityPublic {
		data.Contact = nil
	}
	return data
}
