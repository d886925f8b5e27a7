package cfwidget

import (
	"regexp"
	"time"
)

// Member represents a project team member.
type Member struct {
	Title    string `json:"title"`
	Username string `json:"username"`
	ID       int    `json:"id"`
}

// File represents an uploaded project file.
type File struct {
	ID         int      `json:"id"`
	URL        string   `json:"url"`
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Version    string   `json:"version"`
	Filesize   int64    `json:"filesize"`
	Versions   []string `json:"versions"`
	Downloads  int64    `json:"downloads"`
	UploadedAt string   `json:"uploaded_at"`
}

// Downloads holds the project download counters.
type Downloads struct {
	Monthly int64 `json:"monthly"`
	Total   int64 `json:"total"`
}

// URLs holds the project's public links.
type URLs struct {
	CurseForge string `json:"curseforge"`
	Project    string `json:"project"`
}

// Project represents a CurseForge project as served by cfwidget.com,
// reduced to the fields this service actually exposes.
type Project struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Description string    `json:"description"`
	Game        string    `json:"game"`
	Type        string    `json:"type"`
	URLs        URLs      `json:"urls"`
	Thumbnail   string    `json:"thumbnail"`
	CreatedAt   string    `json:"created_at"`
	Downloads   Downloads `json:"downloads"`
	License     string    `json:"license"`
	Categories  []string  `json:"categories"`
	Members     []Member  `json:"members"`
	Files       []File    `json:"files"`
}

// Owner returns the username of the project owner, or "Unknown" when the
// member list carries no Owner entry.
func (p *Project) Owner() string {
	for _, m := range p.Members {
		if m.Title == "Owner" {
			return m.Username
		}
	}
	return "Unknown"
}

// LatestVersion describes the newest well-defined file of a project.
type LatestVersion struct {
	FileName     string
	Version      string
	UploadedAt   time.Time
	DownloadURL  string
	FileSize     int64
	GameVersions []string
}

var (
	leadingDigit   = regexp.MustCompile(`^\d`)
	versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)
)

// LatestFile picks the latest file of a project: among files whose declared
// version begins with a digit (falling back to all files if none do), the one
// with the newest upload timestamp wins. When the declared version is not
// numeric the version is extracted from the filename instead.
func LatestFile(p *Project) *LatestVersion {
	if p == nil || len(p.Files) == 0 {
		return nil
	}

	candidates := make([]File, 0, len(p.Files))
	for _, f := range p.Files {
		if leadingDigit.MatchString(f.Version) {
			candidates = append(candidates, f)
		}
	}
	if len(candidates) == 0 {
		candidates = p.Files
	}

	latest := candidates[0]
	latestTime := parseUploadTime(latest.UploadedAt)
	for _, f := range candidates[1:] {
		if t := parseUploadTime(f.UploadedAt); t.After(latestTime) {
			latest = f
			latestTime = t
		}
	}

	version := latest.Version
	if !leadingDigit.MatchString(version) {
		if m := versionPattern.FindString(latest.Name); m != "" {
			version = m
		}
	}

	gameVersions := make([]string, 0, len(latest.Versions))
	for _, v := range latest.Versions {
		if leadingDigit.MatchString(v) {
			gameVersions = append(gameVersions, v)
		}
	}

	return &LatestVersion{
		FileName:     latest.Name,
		Version:      version,
		UploadedAt:   latestTime,
		DownloadURL:  latest.URL,
		FileSize:     latest.Filesize,
		GameVersions: gameVersions,
	}
}

func parseUploadTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
