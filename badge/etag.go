package badge

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"

	"curseforge-badges/cfwidget"
)

// etagPayload covers exactly the inputs that influence rendered pixels: the
// pixel-affecting metadata subset plus every rendering option. Marshaling a
// struct gives a stable key order, so the encoding is canonical.
type etagPayload struct {
	Project struct {
		Title     string `json:"title"`
		Thumbnail string `json:"thumbnail"`
		Downloads int64  `json:"downloads"`
	} `json:"project"`
	Params Options `json:"params"`
}

// ETag derives the entity tag for a badge request. Identical inputs always
// produce identical tags; any change to a pixel-affecting input produces a
// different one.
func ETag(projectID int, p *cfwidget.Project, opts Options) string {
	var payload etagPayload
	if p != nil {
		payload.Project.Title = p.Title
		payload.Project.Thumbnail = p.Thumbnail
		payload.Project.Downloads = p.Downloads.Total
	}
	payload.Params = opts

	encoded, err := json.Marshal(payload)
	if err != nil {
		// Options and the metadata subset are plain values; this cannot fail.
		panic(fmt.Sprintf("etag payload marshal: %v", err))
	}

	return fmt.Sprintf("%q", fmt.Sprintf("%d-%x", projectID, sha256.Sum256(encoded)))
}
