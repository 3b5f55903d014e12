// Package models - Profile domain types.
// The profile document is a versioned schema with explicit optional sections
// rather than an open-ended map, so the visibility rules can be checked at
// compile time against the fields they inspect.
package models

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// SchemaVersion is the profile_data schema this service reads and writes.
// Documents with a newer major version are rejected on write.
const SchemaVersion = "1.0"

// Contact visibility values.
const (
	ContactVisibilityPublic     = "public"
	ContactVisibilityPrivate    = "private"
	ContactVisibilityAPIKeyOnly = "api_key_only"
)

// Profile is a stored user profile. Username is globally unique and immutable
// after creation (enforced by the service layer, not the data layer). APIKey
// is an opaque bearer secret; nil means key-gated access is disabled.
type Profile struct {
	ID        string      `json:"id"`
	UserID    string      `json:"user_id"`
	Username  string      `json:"username"`
	Data      ProfileData `json:"profile_data"`
	IsPublic  bool        `json:"is_public"`
	APIKey    *string     `json:"api_key,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// ProfileName holds the structured name inside the identity section.
type ProfileName struct {
	First  string `json:"first"`
	Middle string `json:"middle,omitempty"`
	Last   string `json:"last"`
}

type ProfileIdentity struct {
	Name        ProfileName `json:"name"`
	DateOfBirth string      `json:"date_of_birth,omitempty"`
	Bio         string      `json:"bio,omitempty"`
	Pronouns    string      `json:"pronouns,omitempty"`
}

type ProfileLocation struct {
	Hometown    string `json:"hometown,omitempty"`
	CurrentCity string `json:"current_city,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
}

// ProfileContact is the only section subject to field-level projection:
// it is stripped from non-owner responses unless Visibility is "public".
type ProfileContact struct {
	Visibility string            `json:"visibility"`
	Emails     map[string]string `json:"emails,omitempty"`
	Phones     map[string]string `json:"phones,omitempty"`
}

type ProfileSocials struct {
	GitHub    string   `json:"github,omitempty"`
	LinkedIn  string   `json:"linkedin,omitempty"`
	Twitter   string   `json:"twitter,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	Facebook  string   `json:"facebook,omitempty"`
	YouTube   string   `json:"youtube,omitempty"`
	Other     []string `json:"other,omitempty"`
}

type ProfileCompetitiveProgramming struct {
	LeetCode   string `json:"leetcode,omitempty"`
	Codeforces string `json:"codeforces,omitempty"`
	CodeChef   string `json:"codechef,omitempty"`
	Codolio    string `json:"codolio,omitempty"`
}

type ProfileLaunchPlatforms struct {
	ProductHunt  string `json:"producthunt,omitempty"`
	Peerlist     string `json:"peerlist,omitempty"`
	IndieHackers string `json:"indiehackers,omitempty"`
}

type ProfilePresence struct {
	Socials                *ProfileSocials                `json:"socials,omitempty"`
	CompetitiveProgramming *ProfileCompetitiveProgramming `json:"competitive_programming,omitempty"`
	LaunchPlatforms        *ProfileLaunchPlatforms        `json:"launch_platforms,omitempty"`
}

type ProfileCareer struct {
	CurrentStatus     string   `json:"current_status,omitempty"`
	CurrentlyStudying string   `json:"currently_studying,omitempty"`
	PrimaryRoles      []string `json:"primary_roles,omitempty"`
	SecondaryRoles    []string `json:"secondary_roles,omitempty"`
	Targets           []string `json:"targets,omitempty"`
}

type ProfileJobPreferences struct {
	OpenToWork      bool     `json:"open_to_work,omitempty"`
	PreferredRoles  []string `json:"preferred_roles,omitempty"`
	EmploymentTypes []string `json:"employment_types,omitempty"`
	Locations       []string `json:"locations,omitempty"`
	TechFocus       []string `json:"tech_focus,omitempty"`
}

type ProfileResume struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ProfileProject struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	TechStack   []string          `json:"tech_stack,omitempty"`
	Role        string            `json:"role,omitempty"`
	Status      string            `json:"status,omitempty"`
	Links       map[string]string `json:"links,omitempty"`
}

type ProfileArtifacts struct {
	Resumes  map[string]ProfileResume `json:"resumes,omitempty"`
	Projects []ProfileProject         `json:"projects,omitempty"`
}

type ProfileExperience struct {
	Company     string   `json:"company"`
	Role        string   `json:"role"`
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date,omitempty"`
	Description []string `json:"description,omitempty"`
	TechStack   []string `json:"tech_stack,omitempty"`
}

type ProfileMeta struct {
	SchemaVersion  string          `json:"schema_version"`
	Sources        map[string]bool `json:"sources,omitempty"`
	VerifiedFields []string        `json:"verified_fields,omitempty"`
	LastUpdated    string          `json:"last_updated,omitempty"`
}

// ProfileData is the structured document stored in the profile_data column.
// All sections are optional; absent sections marshal to nothing.
type ProfileData struct {
	Identity       *ProfileIdentity       `json:"identity,omitempty"`
	Location       *ProfileLocation       `json:"location,omitempty"`
	Contact        *ProfileContact        `json:"contact,omitempty"`
	Presence       *ProfilePresence       `json:"presence,omitempty"`
	Career         *ProfileCareer         `json:"career,omitempty"`
	JobPreferences *ProfileJobPreferences `json:"job_preferences,omitempty"`
	Artifacts      *ProfileArtifacts      `json:"artifacts,omitempty"`
	Experience     []ProfileExperience    `json:"experience,omitempty"`
	Meta           *ProfileMeta           `json:"meta,omitempty"`
}

// CheckSchemaVersion verifies the document's declared schema version is
// readable by this service. An empty version is treated as the current one.
// A document with a newer major version is rejected.
func (pd *ProfileData) CheckSchemaVersion() error {
	if pd.Meta == nil || pd.Meta.SchemaVersion == "" {
		return nil
	}
	declared, err := semver.NewVersion(pd.Meta.SchemaVersion)
	if err != nil {
		return fmt.Errorf("invalid schema_version %q: %w", pd.Meta.SchemaVersion, err)
	}
	supported := semver.MustParse(SchemaVersion)
	if declared.Major() > supported.Major() {
		return fmt.Errorf("schema_version %s is newer than supported %s", pd.Meta.SchemaVersion, SchemaVersion)
	}
	return nil
}

// FullName joins the identity name parts, skipping empty components.
func (pd *ProfileData) FullName() string {
	if pd.Identity == nil {
		return ""
	}
	name := pd.Identity.Name
	full := name.First
	if name.Middle != "" {
		full += " " + name.Middle
	}
	if name.Last != "" {
		full += " " + name.Last
	}
	return full
}

// NewProfile creates a profile for the given owner with a fresh UUID.
func NewProfile(userID, username string, data ProfileData, isPublic bool) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:        uuid.New().String(),
		UserID:    userID,
		Username:  username,
		Data:      data,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// GenerateAPIKey produces a new random profile API key in the format
// aboutme_<32 url-safe base64 chars>. The raw value is stored on the profile
// row; it is an opaque bearer secret, not a derived credential.
func GenerateAPIKey() (string, error) {
	b := make([]byte, 24) // 24 bytes -> 32 base64url chars
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return "aboutme_" + base64.RawURLEncoding.EncodeToString(b), nil
}

// AccessLogEntry is an append-only record of a profile read. Entries are
// written fire-and-forget and only ever read back for aggregate counts and
// the dashboard's recent-calls list.
type AccessLogEntry struct {
	ID        string    `json:"id"`
	ProfileID string    `json:"profile_id"`
	Username  string    `json:"username"`
	Endpoint  string    `json:"endpoint"`
	CallerIP  string    `json:"caller_ip,omitempty"`
	UserAgent string    `json:"user_agent,omitempty"`
	Referer   string    `json:"referer,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AccessLogStats aggregates a profile's access log for the dashboard.
type AccessLogStats struct {
	TotalCalls int `json:"total_calls"`
	UniqueIPs  int `json:"unique_ips"`
}

// User is an account row for the session-auth endpoints. PasswordHash is a
// bcrypt digest.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUserID generates a new UUID v4 for use as a User ID.
func NewUserID() string {
	return uuid.New().String()
}
