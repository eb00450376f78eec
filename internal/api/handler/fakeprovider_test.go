package handler

import (
	"context"
	"net/http"

	"github.com/verustcode/verustcode/internal/git/provider"
)

// fakeProvider is a minimal in-memory provider.Provider for exercising the
// manual-trigger handler without a real code host. Only GetPullRequest
// carries meaningful behavior; the rest exist solely to satisfy the
// interface.
type fakeProvider struct {
	name  string
	pr    *provider.PullRequest
	err   error
	files map[string][]byte
}

func (p *fakeProvider) Name() string       { return p.name }
func (p *fakeProvider) GetBaseURL() string { return "https://" + p.name + ".example.com" }

func (p *fakeProvider) Clone(ctx context.Context, owner, repo, destPath string, opts *provider.CloneOptions) error {
	return nil
}
func (p *fakeProvider) ClonePR(ctx context.Context, owner, repo string, prNumber int, destPath string, opts *provider.CloneOptions) error {
	return nil
}
func (p *fakeProvider) GetPRRef(prNumber int) string { return "" }

func (p *fakeProvider) GetPullRequest(ctx context.Context, owner, repo string, number int) (*provider.PullRequest, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.pr, nil
}

func (p *fakeProvider) ListPullRequests(ctx context.Context, owner, repo string) ([]*provider.PullRequest, error) {
	return nil, nil
}
func (p *fakeProvider) PostComment(ctx context.Context, owner, repo string, opts *provider.CommentOptions, body string) error {
	return nil
}
func (p *fakeProvider) ListComments(ctx context.Context, owner, repo string, prNumber int) ([]*provider.Comment, error) {
	return nil, nil
}
func (p *fakeProvider) DeleteComment(ctx context.Context, owner, repo string, commentID int64) error {
	return nil
}
func (p *fakeProvider) UpdateComment(ctx context.Context, owner, repo string, commentID int64, prNumber int, body string) error {
	return nil
}
func (p *fakeProvider) ParseWebhook(r *http.Request, secret string) (*provider.WebhookEvent, error) {
	return nil, nil
}
func (p *fakeProvider) CreateWebhook(ctx context.Context, owner, repo, url, secret string, events []string) (string, error) {
	return "", nil
}
func (p *fakeProvider) DeleteWebhook(ctx context.Context, owner, repo, webhookID string) error {
	return nil
}
func (p *fakeProvider) ValidateToken(ctx context.Context) error { return nil }
func (p *fakeProvider) ParseRepoPath(repoURL string) (string, string, error) {
	return "", "", nil
}
func (p *fakeProvider) ListBranches(ctx context.Context, owner, repo string) ([]string, error) {
	return nil, nil
}
func (p *fakeProvider) MatchesURL(repoURL string) bool { return true }

func (p *fakeProvider) GetUser(ctx context.Context) (*provider.User, error) {
	return &provider.User{Username: "verustcode-bot"}, nil
}

func (p *fakeProvider) GetMergeRequestChanges(ctx context.Context, owner, repo string, number int) (*provider.DiffSet, error) {
	return nil, nil
}

func (p *fakeProvider) GetMergeRequestApprovals(ctx context.Context, owner, repo string, number int) (*provider.ApprovalState, error) {
	return nil, nil
}

func (p *fakeProvider) GetProjectFileRaw(ctx context.Context, owner, repo, ref, path string) ([]byte, error) {
	if content, ok := p.files[path]; ok {
		return content, nil
	}
	return nil, &provider.ProviderError{Provider: p.name, Message: "not found"}
}
