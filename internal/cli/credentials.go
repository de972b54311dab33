package cli

import (
	"context"
	"log/slog"

	"github.com/johnqtcg/pr2md/internal/config"
	gh "github.com/johnqtcg/pr2md/internal/github"
)

// Credential is a resolved GitHub token and where it came from.
type Credential struct {
	Token  string
	Source string
}

const (
	sourceFlag      = "--token"
	sourceGitHubEnv = "GITHUB_TOKEN"
	sourceGHEnv     = "GH_TOKEN"
	sourceGHAuth    = "gh auth token"
	sourceAnonymous = "anonymous"
)

// ResolveCredential walks --token, GITHUB_TOKEN, GH_TOKEN and the gh CLI's stored token,
// falling back to anonymous access. runner is only invoked when every earlier source is empty.
func ResolveCredential(ctx context.Context, cfg config.Config, runner gh.CommandRunner, logger *slog.Logger) Credential {
	cred := Credential{Source: sourceAnonymous}
	switch {
	case cfg.Token != "":
		cred = Credential{Token: cfg.Token, Source: sourceFlag}
	case cfg.GitHubToken != "":
		cred = Credential{Token: cfg.GitHubToken, Source: sourceGitHubEnv}
	case cfg.GHToken != "":
		cred = Credential{Token: cfg.GHToken, Source: sourceGHEnv}
	default:
		if token := gh.TokenFromGH(ctx, runner); token != "" {
			cred = Credential{Token: token, Source: sourceGHAuth}
		}
	}

	if logger != nil {
		logger.Debug("resolved credential", "source", cred.Source)
	}
	return cred
}
