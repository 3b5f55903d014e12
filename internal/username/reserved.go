package username

// Reserved names are blocked for security, internal use, or to prevent
// confusion. Grouped by why they are blocked; the groups are merged into the
// default policy's exact-match set.

// Application routes and pages.
var appRoutes = []string{
	"about", "api", "auth", "blog", "builder", "privacy", "protected", "terms",
	"login", "signup", "register", "admin", "dashboard", "settings", "help",
	"support", "contact", "pricing", "docs", "documentation", "faq", "home",
	"index", "new", "create", "edit", "delete", "search", "explore", "discover",
	"profile", "profiles", "user", "users", "account", "accounts",
}

// Brand and identity protection.
var brandNames = []string{
	"aboutme", "about-me", "aboutmeapi", "about-me-api", "aboutme-api",
	"official", "verified", "team", "staff", "moderator", "mod",
	"administrator", "admin", "root", "system", "bot", "robot",
}

// Security-sensitive paths.
var securityPaths = []string{
	"null", "undefined", "true", "false", "nan", "infinity",
	"localhost", "admin", "administrator", "root", "superuser", "sudo",
	"system", "www", "ftp", "mail", "email", "smtp", "pop", "imap",
	"test", "testing", "demo", "example", "sample",
	"api", "graphql", "rest", "webhook", "webhooks", "callback",
	"oauth", "auth", "login", "logout", "signin", "signout", "signup",
	"password", "reset", "forgot", "recover", "verify", "confirm",
	"token", "tokens", "session", "sessions", "cookie", "cookies",
	"ssl", "secure", "security", "private", "public",
	".well-known", "robots", "sitemap", "favicon", "manifest",
}

// Common utility and file paths.
var utilityPaths = []string{
	"static", "assets", "images", "img", "css", "js", "fonts",
	"media", "files", "uploads", "download", "downloads",
	"public", "private", "internal", "external",
	"status", "health", "healthcheck", "ping", "version", "info",
}

// Social and reserved words.
var socialReserved = []string{
	"me", "my", "mine", "you", "your", "yours", "we", "our", "ours",
	"everyone", "anybody", "somebody", "nobody", "anonymous", "guest",
	"follow", "following", "followers", "like", "likes", "share", "shares",
	"comment", "comments", "post", "posts", "message", "messages",
	"notification", "notifications", "feed", "news", "trending", "popular",
}

// Inappropriate or problematic terms (basic list).
var blockedTerms = []string{
	"abuse", "spam", "scam", "phishing", "malware", "virus",
	"hack", "hacker", "exploit", "attack",
}

// DefaultPolicy is the reserved-name policy applied by Validate and
// IsReserved. The substring slack of 3 allows legitimate names that contain a
// sensitive term incidentally while blocking padded impersonations; the exact
// threshold is a product choice, not a hard rule.
var DefaultPolicy = &Policy{
	Reserved:       buildReservedSet(),
	Prefixes:       []string{"admin", "mod", "staff", "official", "verified", "system"},
	Substrings:     []string{"admin", "support", "help", "official"},
	SubstringSlack: 3,
}

func buildReservedSet() map[string]struct{} {
	set := make(map[string]struct{})
	for _, group := range [][]string{
		appRoutes, brandNames, securityPaths, utilityPaths, socialReserved, blockedTerms,
	} {
		for _, name := range group {
			set[name] = struct{}{}
		}
	}
	return set
}
