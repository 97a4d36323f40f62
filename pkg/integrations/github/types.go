package github

import "time"

// CommunityProfile holds the community-health profile for a repository.
// The Files map records which well-known community files exist (keys like
// "readme", "license", "code_of_conduct").
type CommunityProfile struct {
	HealthPercentage int             `json:"health_percentage"`
	Files            map[string]bool `json:"files"`
}

// HasFile reports whether the named community file exists in the profile.
func (p *CommunityProfile) HasFile(name string) bool {
	return p.Files[name]
}

// Release represents a published GitHub release.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Body        string    `json:"body"`
	CreatedAt   time.Time `json:"created_at"`
	PublishedAt time.Time `json:"published_at"`
}

// ContentItem represents an item in a repository directory listing.
type ContentItem struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"` // "file" or "dir"
}

// Issue represents a GitHub issue with its comment count.
type Issue struct {
	Number   int    `json:"number"`
	Title    string `json:"title"`
	State    string `json:"state"`
	Comments int    `json:"comments"`
}

// Workflow represents a GitHub Actions workflow definition.
type Workflow struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Commit holds the author timestamp of a single commit.
type Commit struct {
	SHA  string    `json:"sha"`
	Date time.Time `json:"date"`
}
