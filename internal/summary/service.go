package summary

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/repofolio/repofolio/internal/config"
	apperrors "github.com/repofolio/repofolio/internal/errors"
	"github.com/repofolio/repofolio/internal/github"
	"github.com/repofolio/repofolio/internal/models"
	"github.com/repofolio/repofolio/internal/utils"
)

const commitsPerPage = 100

// RepositoryReader reads the repository context a summary is built from
type RepositoryReader interface {
	GetRepository(ctx context.Context, token, owner, name string) (*models.Repository, error)
	ListContributors(ctx context.Context, token, owner, name string) ([]github.Contributor, error)
	GetReadme(ctx context.Context, token, owner, name string) (*github.Readme, error)
}

// CommitLister lists recent commits of a repository
type CommitLister interface {
	ListCommits(ctx context.Context, token, owner, name, author string, perPage int) ([]github.CommitSummary, error)
}

// Request describes the project to summarize. Owner and Repo may be left
// empty when URL points at the repository.
type Request struct {
	Owner       string `json:"owner"`
	Repo        string `json:"repo"`
	Title       string `json:"title"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Service writes portfolio descriptions of repositories
type Service struct {
	repos     RepositoryReader
	commits   CommitLister
	viewers   github.ViewerService
	generator Generator
	language  string
	logger    *logrus.Logger
}

// NewService creates a new summary service. generator may be nil, in which
// case Summarize reports that the feature is not configured.
func NewService(repos RepositoryReader, commits CommitLister, viewers github.ViewerService, generator Generator, cfg *config.SummaryConfig, logger *logrus.Logger) *Service {
	language := "English"
	if cfg != nil && cfg.Language != "" {
		language = cfg.Language
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		repos:     repos,
		commits:   commits,
		viewers:   viewers,
		generator: generator,
		language:  language,
		logger:    logger,
	}
}

// Configured reports whether a generator is available
func (s *Service) Configured() bool {
	return s.generator != nil
}

func (r Request) target() (string, string, error) {
	owner, repo := strings.TrimSpace(r.Owner), strings.TrimSpace(r.Repo)
	if (owner == "" || repo == "") && r.URL != "" {
		parsedOwner, parsedRepo, err := utils.ParseRepoURL(r.URL)
		if err != nil {
			return "", "", apperrors.NewValidationError("invalid repository url", err)
		}
		owner, repo = parsedOwner, parsedRepo
	}
	if owner == "" || repo == "" {
		return "", "", apperrors.NewValidationError("missing owner or repo name", nil)
	}
	return owner, repo, nil
}

// Summarize gathers contributors, the viewer's commits and the README of the
// repository and asks the generator for a short description. The repository,
// its contributors and the viewer are required; commits and README are best
// effort. Title and description default to the repository's own.
func (s *Service) Summarize(ctx context.Context, token string, req Request) (string, error) {
	owner, repo, err := req.target()
	if err != nil {
		return "", err
	}
	if s.generator == nil {
		return "", apperrors.NewNotConfiguredError("summary generation is not configured")
	}

	logger := s.logger.WithFields(logrus.Fields{
		"owner": owner,
		"repo":  repo,
	})

	var (
		repository   *models.Repository
		contributors []github.Contributor
		viewer       *models.Viewer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		repository, err = s.repos.GetRepository(gctx, token, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		contributors, err = s.repos.ListContributors(gctx, token, owner, repo)
		return err
	})
	g.Go(func() error {
		var err error
		viewer, err = s.viewers.GetViewer(gctx, token)
		return err
	})
	if err := g.Wait(); err != nil {
		return "", classifyContextError(err)
	}

	team := len(contributors) > 1
	author := ""
	if team {
		author = viewer.Login
	}

	var (
		commits []github.CommitSummary
		readme  string
	)
	var optional errgroup.Group
	optional.Go(func() error {
		var err error
		if commits, err = s.commits.ListCommits(ctx, token, owner, repo, author, commitsPerPage); err != nil {
			logger.WithError(err).Warn("Failed to fetch commits for summary")
		}
		return nil
	})
	optional.Go(func() error {
		doc, err := s.repos.GetReadme(ctx, token, owner, repo)
		if err != nil {
			logger.WithError(err).Debug("README unavailable for summary")
			return nil
		}
		if readme, err = decodeReadme(doc); err != nil {
			logger.WithError(err).Warn("Failed to decode README")
		}
		return nil
	})
	_ = optional.Wait()

	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		messages = append(messages, c.Commit.Message)
	}

	title, description := strings.TrimSpace(req.Title), strings.TrimSpace(req.Description)
	if title == "" {
		title = repository.Name
	}
	if description == "" && repository.Description != nil {
		description = *repository.Description
	}

	prompt, err := buildPrompt(promptData{
		Language:     s.language,
		Title:        title,
		Description:  description,
		Team:         team,
		Contributors: len(contributors),
		Commits:      messages,
		Readme:       readme,
	})
	if err != nil {
		return "", apperrors.NewInternalError("failed to build prompt", err)
	}

	summary, err := s.generator.Generate(ctx, prompt)
	if err != nil {
		logger.WithError(err).Error("Failed to generate summary")
		return "", apperrors.NewUpstreamError("failed to generate summary", err)
	}

	logger.WithFields(logrus.Fields{
		"team":    team,
		"commits": len(messages),
	}).Info("Generated summary")
	return summary, nil
}

func classifyContextError(err error) error {
	switch {
	case apperrors.TypeOf(err) != "":
		return err
	case github.IsUpstreamStatus(err, http.StatusUnauthorized):
		return apperrors.NewUnauthorizedError("GitHub rejected the access token", err)
	case github.IsUpstreamStatus(err, http.StatusNotFound):
		return apperrors.NewNotFoundError("repository not found", err)
	default:
		return apperrors.NewUpstreamError("failed to load repository context", err)
	}
}

func decodeReadme(doc *github.Readme) (string, error) {
	if doc == nil || doc.Content == "" {
		return "", nil
	}
	if doc.Encoding != "" && doc.Encoding != "base64" {
		return doc.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(doc.Content, "\n", ""))
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
