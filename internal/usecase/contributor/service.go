package contributor

import (
	"context"
	"crypto/md5" //nolint:gosec // gravatar addresses are md5 digests
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/nodesearch/internal/db"
	"github.com/kailas-cloud/nodesearch/internal/domain/category"
	"github.com/kailas-cloud/nodesearch/internal/domain/document"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/query"
	"github.com/kailas-cloud/nodesearch/internal/domain/search/result"
)

// Defaults for Config fields left zero.
const (
	DefaultSize         = 10
	DefaultMaxSize      = 100
	DefaultGravatarSize = 40
)

const userField = "user"

// Config tunes paging and avatars.
type Config struct {
	DefaultSize  int
	MaxSize      int
	GravatarSize int
}

// Request is one typeahead lookup.
type Request struct {
	Query string
	Page  int
	Size  int
	// Exclude lists user ids that must not be returned.
	Exclude []string
	// CurrentUser is the id of the searching user, empty when anonymous.
	CurrentUser string
}

// Service serves contributor autocompletion.
type Service struct {
	index  Index
	users  Users
	name   string
	cfg    Config
	logger *zap.Logger
}

// New creates a contributor search service over the index called name.
func New(index Index, users Users, name string, cfg Config, logger *zap.Logger) *Service {
	if cfg.DefaultSize <= 0 {
		cfg.DefaultSize = DefaultSize
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = DefaultMaxSize
	}
	if cfg.GravatarSize <= 0 {
		cfg.GravatarSize = DefaultGravatarSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{index: index, users: users, name: name, cfg: cfg, logger: logger}
}

var signs = regexp.MustCompile(`[-+]`)

// Terms normalizes a typeahead query into lower-cased prefix terms.
func Terms(q string) []string {
	return strings.Fields(strings.ToLower(signs.ReplaceAllString(q, "")))
}

// BuildQuery returns the filtered user query for req. Size and page must
// already be normalized.
func BuildQuery(req Request) *query.Query {
	filter := query.BoolFilter{Must: []query.Clause{}, Should: []query.Clause{}, MustNot: []query.Clause{}}
	for _, id := range req.Exclude {
		filter.MustNot = append(filter.MustNot, query.TermClause("id", id))
	}
	for _, term := range Terms(req.Query) {
		filter.Must = append(filter.Must, query.PrefixClause(userField, term))
	}
	return query.NewFiltered(filter).WithPage(req.Page*req.Size, req.Size)
}

// Search returns the active users whose name starts with every query term.
func (s *Service) Search(ctx context.Context, req Request) (*result.ContributorPage, error) {
	req = s.normalize(req)

	res, err := s.index.Search(ctx, s.name, []string{category.User.String()}, BuildQuery(req))
	if err != nil {
		return nil, fmt.Errorf("search contributors: %w", err)
	}

	users := make([]result.Contributor, 0, len(res.Hits))
	for _, h := range res.Hits {
		c, ok, err := s.enrich(ctx, h, req.CurrentUser)
		if err != nil {
			return nil, err
		}
		if ok {
			users = append(users, c)
		}
	}

	return &result.ContributorPage{
		Users: users,
		Total: res.Total,
		Pages: result.Pages(res.Total, req.Size),
		Page:  req.Page,
	}, nil
}

func (s *Service) normalize(req Request) Request {
	if req.Size <= 0 {
		req.Size = s.cfg.DefaultSize
	}
	if req.Size > s.cfg.MaxSize {
		req.Size = s.cfg.MaxSize
	}
	if req.Page < 0 {
		req.Page = 0
	}
	return req
}

// enrich reloads the user behind a hit. Users that are gone or no longer
// active are reported with ok == false. The name is the indexed one, so it
// is the name the terms matched.
func (s *Service) enrich(ctx context.Context, h db.Hit, currentUser string) (result.Contributor, bool, error) {
	id := h.ID
	user, err := s.users.LoadUser(ctx, id)
	if err != nil {
		s.logger.Error("Could not load user", zap.String("user_id", id), zap.Error(err))
		return result.Contributor{}, false, nil
	}
	if !user.Active() {
		return result.Contributor{}, false, nil
	}

	inCommon := 0
	if currentUser != "" {
		if inCommon, err = s.users.ProjectsInCommon(ctx, currentUser, user.ID); err != nil {
			return result.Contributor{}, false, fmt.Errorf("projects in common %s/%s: %w", currentUser, user.ID, err)
		}
	}

	c := result.Contributor{
		FullName:          indexedName(h.Source, user.FullName),
		ID:                user.ID,
		NProjectsInCommon: inCommon,
		GravatarURL:       GravatarURL(user.Username, s.cfg.GravatarSize),
		ProfileURL:        user.ProfileURL(),
		Registered:        user.IsRegistered,
		Active:            true,
	}
	if len(user.Jobs) > 0 {
		employment := user.Jobs[0].Institution
		c.Employment = &employment
	}
	if len(user.Schools) > 0 {
		education := user.Schools[0].Institution
		c.Education = &education
	}
	return c, true, nil
}

// indexedName returns the user field of a hit source, or fallback when the
// source carries none.
func indexedName(source json.RawMessage, fallback string) string {
	if len(source) == 0 {
		return fallback
	}
	var doc document.UserDocument
	if err := json.Unmarshal(source, &doc); err != nil || doc.User == "" {
		return fallback
	}
	return doc.User
}

// GravatarURL returns the secure identicon avatar for an email address.
func GravatarURL(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email)))) //nolint:gosec // see import
	return fmt.Sprintf("https://secure.gravatar.com/avatar/%x?d=identicon&size=%d", sum, size)
}
