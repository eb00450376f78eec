// Package intake holds the provider-independent webhook reconciliation
// logic: authenticate the inbound request, extract a normalized MR event
// from whatever shape the code host sent, decide whether it should trigger
// a review, upsert the Repository/MergeRequest rows, and enqueue a job.
//
// The extraction in this file deliberately does not branch on provider name
// first. GitLab, GitHub and Gitea webhook payloads disagree on nearly every
// field path (`object_attributes.iid` vs `pull_request.number`,
// `project.id` vs `repository.id`, ...), so each attribute is resolved by
// trying an ordered list of known field paths across all three shapes and
// taking the first one present. This is the same "defensive, fallback
// fields" idiom the teacher uses in its per-provider parseXEvent functions,
// generalized so adding a fourth provider never requires touching this
// file.
package intake

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Event is the normalized shape intake reconciles against the store,
// regardless of which code host sent the webhook.
type Event struct {
	ProjectID    string
	MrIID        int
	HeadSha      string
	Title        string
	Description  string
	WebURL       string
	Author       string
	SourceBranch string
	TargetBranch string
	State        string
	Action       string // normalized to one of: open, update, reopen, merge, close, or "" if unrecognized

	// Namespace/Name split from the repository's full path, used to
	// populate Repository.Namespace/Name on upsert.
	Namespace string
	Name      string
}

var (
	projectIDPaths = []string{"project.id", "repository.id", "pull_request.base.repo.id"}
	mrIIDPaths     = []string{"object_attributes.iid", "pull_request.number", "number"}
	headShaPaths   = []string{
		"object_attributes.last_commit.id",
		"object_attributes.diff_refs.head_sha",
		"pull_request.head.sha",
		"after",
	}
	titlePaths       = []string{"object_attributes.title", "pull_request.title"}
	descriptionPaths = []string{"object_attributes.description", "pull_request.body"}
	webURLPaths      = []string{"object_attributes.url", "pull_request.html_url", "pull_request.url"}
	authorPaths      = []string{"user.username", "user.login", "pull_request.user.login", "sender.login"}
	sourceBranchPaths = []string{"object_attributes.source_branch", "pull_request.head.ref"}
	targetBranchPaths = []string{"object_attributes.target_branch", "pull_request.base.ref"}
	statePaths        = []string{"object_attributes.state", "pull_request.state"}
	actionPaths       = []string{"action", "object_attributes.action"}
	repoPathPaths     = []string{"project.path_with_namespace", "repository.full_name"}
)

// ParseEvent extracts a normalized Event from a raw webhook body. It never
// returns an error for a recognized-but-irrelevant event (e.g. a comment
// webhook) — callers check Event.ProjectID/MrIID/HeadSha for emptiness and
// treat that as "ignore, 202" per spec. An error is only returned if the
// body isn't valid JSON at all.
func ParseEvent(payload []byte) (Event, error) {
	var raw map[string]interface{}
	if err := json.Unmarshal(payload, &raw); err != nil {
		return Event{}, err
	}

	merged, _ := lookupBool(raw, "pull_request.merged")

	namespace, name := splitRepoPath(firstString(raw, repoPathPaths...))

	return Event{
		ProjectID:    firstScalarAsString(raw, projectIDPaths...),
		MrIID:        firstInt(raw, mrIIDPaths...),
		HeadSha:      firstString(raw, headShaPaths...),
		Title:        firstString(raw, titlePaths...),
		Description:  firstString(raw, descriptionPaths...),
		WebURL:       firstString(raw, webURLPaths...),
		Author:       firstString(raw, authorPaths...),
		SourceBranch: firstString(raw, sourceBranchPaths...),
		TargetBranch: firstString(raw, targetBranchPaths...),
		State:        firstString(raw, statePaths...),
		Action:       normalizeAction(firstString(raw, actionPaths...), merged),
		Namespace:    namespace,
		Name:         name,
	}, nil
}

// HasRequiredFields reports whether the event carries enough information to
// act on (spec §4.7 step 3's "missing required fields -> 202 ignored").
func (e Event) HasRequiredFields() bool {
	return e.ProjectID != "" && e.MrIID != 0 && e.HeadSha != ""
}

// normalizeAction maps a provider's raw action string (plus, for
// GitHub/Gitea, the separate "merged" boolean since those providers encode
// a merge as action=closed+merged=true) to the canonical vocabulary spec
// §4.7 filters on: open, update, reopen, merge, close. GitLab's own action
// names already are this vocabulary, so they pass through unchanged.
func normalizeAction(raw string, merged bool) string {
	switch strings.ToLower(raw) {
	case "open", "opened":
		return "open"
	case "update", "synchronize":
		return "update"
	case "reopen", "reopened":
		return "reopen"
	case "merge", "merged":
		return "merge"
	case "close", "closed":
		if merged {
			return "merge"
		}
		return "close"
	default:
		return ""
	}
}

// splitRepoPath splits "group/subgroup/project" or "owner/repo" into
// (namespace, name) on the last "/", mirroring the teacher's
// strings.SplitN(path, "/", 2) except rsplit so multi-level GitLab
// namespaces keep their full prefix.
func splitRepoPath(path string) (namespace, name string) {
	if path == "" {
		return "", ""
	}
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return "", path
	}
	return path[:idx], path[idx+1:]
}

func lookupPath(m map[string]interface{}, path string) (interface{}, bool) {
	parts := strings.Split(path, ".")
	var cur interface{} = m
	for _, p := range parts {
		asMap, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		v, ok := asMap[p]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func firstString(m map[string]interface{}, paths ...string) string {
	for _, p := range paths {
		v, ok := lookupPath(m, p)
		if !ok {
			continue
		}
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return ""
}

// firstScalarAsString resolves a field that may arrive as either a JSON
// number (GitLab's project.id) or a JSON string (some Gitea payloads),
// returning its string form.
func firstScalarAsString(m map[string]interface{}, paths ...string) string {
	for _, p := range paths {
		v, ok := lookupPath(m, p)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case string:
			if val != "" {
				return val
			}
		case float64:
			return formatFloatAsID(val)
		}
	}
	return ""
}

func firstInt(m map[string]interface{}, paths ...string) int {
	for _, p := range paths {
		v, ok := lookupPath(m, p)
		if !ok {
			continue
		}
		switch val := v.(type) {
		case float64:
			if val != 0 {
				return int(val)
			}
		case string:
			// Some providers encode numeric ids as strings.
			if n, err := strconv.Atoi(val); err == nil && n != 0 {
				return n
			}
		}
	}
	return 0
}

func lookupBool(m map[string]interface{}, path string) (bool, bool) {
	v, ok := lookupPath(m, path)
	if !ok {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

// formatFloatAsID renders a JSON-decoded numeric id (always a whole number
// in practice) as a plain base-10 string.
func formatFloatAsID(f float64) string {
	return strconv.FormatInt(int64(f), 10)
}
