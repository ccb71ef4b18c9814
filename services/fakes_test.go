package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"civictrack-be/apperrors"
	"civictrack-be/geo"
	"civictrack-be/models"
)

// store is an in-memory stand-in for the Mongo collections.
type store struct {
	mu     sync.Mutex
	issues map[primitive.ObjectID]models.Issue
	logs   []models.StatusLog
	flags  map[primitive.ObjectID]models.Flag
	users  map[primitive.ObjectID]models.User

	failAppend      error
	failFlagCleanup error
}

func newStore() *store {
	return &store{
		issues: map[primitive.ObjectID]models.Issue{},
		flags:  map[primitive.ObjectID]models.Flag{},
		users:  map[primitive.ObjectID]models.User{},
	}
}

type memIssues struct{ *store }
type memLogs struct{ *store }
type memFlags struct{ *store }
type memUsers struct{ *store }

func (s *store) deps() Deps {
	return Deps{
		Issues: memIssues{s},
		Logs:   memLogs{s},
		Flags:  memFlags{s},
		Users:  memUsers{s},
	}
}

func matches(f models.IssueFilter, i models.Issue) bool {
	if f.Category != "" && i.Category != f.Category {
		return false
	}
	if f.Status != "" && i.Status != f.Status {
		return false
	}
	if !f.CreatedBy.IsZero() && i.CreatedBy != f.CreatedBy {
		return false
	}
	if f.ExcludeHidden && i.Hidden {
		return false
	}
	for _, id := range f.ExcludeAuthors {
		if i.CreatedBy == id {
			return false
		}
	}
	if !f.Since.IsZero() && i.CreatedAt.Before(f.Since) {
		return false
	}
	if f.Box != nil && !f.Box.Contains(geo.Point{Lat: i.Location.Lat, Lng: i.Location.Lng}) {
		return false
	}
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(i.Title), term) && !strings.Contains(strings.ToLower(i.Description), term) {
			return false
		}
	}
	return true
}

func (m memIssues) Create(_ context.Context, issue *models.Issue) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issues[issue.ID] = *issue
	return nil
}

func (m memIssues) FindByID(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, apperrors.NotFound("Issue")
	}
	return &issue, nil
}

func (m memIssues) Find(_ context.Context, f models.IssueFilter, page models.Page) ([]models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Issue{}
	for _, i := range m.issues {
		if matches(f, i) {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if page.Limit > 0 {
		start := int(page.Skip())
		if start > len(out) {
			start = len(out)
		}
		end := start + page.Limit
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, nil
}

func (m memIssues) Count(ctx context.Context, f models.IssueFilter) (int64, error) {
	all, _ := m.Find(ctx, f, models.Page{})
	return int64(len(all)), nil
}

func (m memIssues) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.Status, at time.Time) (models.Status, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return "", apperrors.NotFound("Issue")
	}
	prev := issue.Status
	issue.Status = status
	issue.UpdatedAt = at
	m.issues[id] = issue
	return prev, nil
}

func (m memIssues) SetHidden(_ context.Context, id primitive.ObjectID, hidden bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return apperrors.NotFound("Issue")
	}
	issue.Hidden = hidden
	m.issues[id] = issue
	return nil
}

func (m memIssues) Delete(_ context.Context, id primitive.ObjectID) (*models.Issue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	issue, ok := m.issues[id]
	if !ok {
		return nil, apperrors.NotFound("Issue")
	}
	delete(m.issues, id)
	return &issue, nil
}

func (m memIssues) CountByStatus(context.Context) (map[models.Status]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.Status]int64{}
	for _, s := range models.Statuses {
		out[s] = 0
	}
	for _, i := range m.issues {
		out[i.Status]++
	}
	return out, nil
}

func (m memIssues) CountByCategory(_ context.Context, since time.Time) (map[models.Category]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[models.Category]int64{}
	for _, c := range models.Categories {
		out[c] = 0
	}
	for _, i := range m.issues {
		if since.IsZero() || !i.CreatedAt.Before(since) {
			out[i.Category]++
		}
	}
	return out, nil
}

func (m memIssues) CountByDay(_ context.Context, since time.Time) ([]models.DayCount, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	byDay := map[string]int64{}
	for _, i := range m.issues {
		if !i.CreatedAt.Before(since) {
			byDay[i.CreatedAt.UTC().Format("2006-01-02")]++
		}
	}
	out := []models.DayCount{}
	for day, n := range byDay {
		out = append(out, models.DayCount{Day: day, Count: n})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Day < out[b].Day })
	return out, nil
}

func (m memLogs) Append(_ context.Context, entry *models.StatusLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend != nil {
		return m.failAppend
	}
	m.logs = append(m.logs, *entry)
	return nil
}

func (m memLogs) ListByIssue(_ context.Context, issueID primitive.ObjectID) ([]models.StatusLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.StatusLog{}
	for i := len(m.logs) - 1; i >= 0; i-- {
		if m.logs[i].IssueID == issueID {
			out = append(out, m.logs[i])
		}
	}
	return out, nil
}

func (m memLogs) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var kept []models.StatusLog
	var n int64
	for _, l := range m.logs {
		if l.IssueID == issueID {
			n++
			continue
		}
		kept = append(kept, l)
	}
	m.logs = kept
	return n, nil
}

func (m memFlags) Create(_ context.Context, flag *models.Flag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, f := range m.flags {
		if f.UserID == flag.UserID && f.IssueID == flag.IssueID {
			return apperrors.Conflict("You have already flagged this issue")
		}
	}
	m.flags[flag.ID] = *flag
	return nil
}

func (m memFlags) FindByID(_ context.Context, id primitive.ObjectID) (*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return nil, apperrors.NotFound("Flag")
	}
	return &f, nil
}

func (m memFlags) Review(_ context.Context, id primitive.ObjectID, outcome models.ReviewStatus, note string, reviewer primitive.ObjectID, at time.Time) (*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return nil, apperrors.NotFound("Flag")
	}
	if f.ReviewStatus != models.ReviewPending {
		return nil, apperrors.Conflict("Flag has already been reviewed")
	}
	f.ReviewStatus = outcome
	f.AdminNote = note
	f.ReviewedBy = &reviewer
	f.ReviewedAt = &at
	m.flags[id] = f
	return &f, nil
}

func (m memFlags) Delete(_ context.Context, id primitive.ObjectID) (*models.Flag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.flags[id]
	if !ok {
		return nil, apperrors.NotFound("Flag")
	}
	delete(m.flags, id)
	return &f, nil
}

func (m memFlags) DeleteByIssue(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFlagCleanup != nil {
		return 0, m.failFlagCleanup
	}
	var n int64
	for id, f := range m.flags {
		if f.IssueID == issueID {
			delete(m.flags, id)
			n++
		}
	}
	return n, nil
}

func (m memFlags) CountActive(_ context.Context, issueID primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.flags {
		if f.IssueID == issueID && f.ReviewStatus != models.ReviewSpam {
			n++
		}
	}
	return n, nil
}

func (m memFlags) Count(_ context.Context, filter models.FlagFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, f := range m.flags {
		if filter.ReviewStatus == "" || f.ReviewStatus == filter.ReviewStatus {
			n++
		}
	}
	return n, nil
}

func (m memFlags) ListWithIssue(_ context.Context, filter models.FlagFilter, page models.Page) ([]models.FlagWithIssue, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.FlagWithIssue{}
	for _, f := range m.flags {
		issue, ok := m.issues[f.IssueID]
		if !ok || (filter.ReviewStatus != "" && f.ReviewStatus != filter.ReviewStatus) {
			continue
		}
		out = append(out, models.FlagWithIssue{Flag: f, Issue: models.IssueSummary{
			ID: issue.ID, Title: issue.Title, Status: issue.Status, Category: issue.Category, Hidden: issue.Hidden,
		}})
	}
	return out, int64(len(out)), nil
}

func (m memUsers) Create(_ context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == user.Email {
			return apperrors.Conflict("User already exists")
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("User")
	}
	return &u, nil
}

func (m memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == strings.ToLower(email) {
			return &u, nil
		}
	}
	return nil, apperrors.NotFound("User")
}

func (m memUsers) List(_ context.Context, search string, page models.Page) ([]models.User, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.User{}
	for _, u := range m.users {
		if search == "" || strings.Contains(u.Name, search) || strings.Contains(u.Email, search) {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (m memUsers) SetBanned(_ context.Context, id primitive.ObjectID, banned bool, at time.Time) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperrors.NotFound("User")
	}
	u.Banned = banned
	u.BannedAt = nil
	if banned {
		u.BannedAt = &at
	}
	m.users[id] = u
	return &u, nil
}

func (m memUsers) BannedIDs(context.Context) ([]primitive.ObjectID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var ids []primitive.ObjectID
	for id, u := range m.users {
		if u.Banned {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (m memUsers) FindNames(_ context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[primitive.ObjectID]string{}
	for _, id := range ids {
		if u, ok := m.users[id]; ok {
			out[id] = u.Name
		}
	}
	return out, nil
}

func (m memUsers) Count(_ context.Context, bannedOnly bool) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, u := range m.users {
		if !bannedOnly || u.Banned {
			n++
		}
	}
	return n, nil
}

func (s *store) addUser(name string, role models.Role) Viewer {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := primitive.NewObjectID()
	s.users[id] = models.User{ID: id, Name: name, Email: strings.ToLower(name) + "@example.com", Role: role}
	return Viewer{ID: id, Role: role}
}

// latestLog returns the newest status log entry for an issue.
func (s *store) latestLog(issueID primitive.ObjectID) (models.StatusLog, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.logs) - 1; i >= 0; i-- {
		if s.logs[i].IssueID == issueID {
			return s.logs[i], true
		}
	}
	return models.StatusLog{}, false
}

func (s *store) flagCount(issueID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, f := range s.flags {
		if f.IssueID == issueID {
			n++
		}
	}
	return n
}

func (s *store) logCount(issueID primitive.ObjectID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, l := range s.logs {
		if l.IssueID == issueID {
			n++
		}
	}
	return n
}

var errStoreDown = errors.New("store unavailable")

type recordingPhotos struct {
	destroyed []string
	owners    []string
}

func (p *recordingPhotos) Upload(context.Context, io.Reader, string) (string, error) {
	return "https://res.cloudinary.com/demo/image/upload/v1/civictrack/issues/x.jpg", nil
}

func ownedPhotoURL(ownerID primitive.ObjectID) string {
	return "https://res.cloudinary.com/demo/image/upload/v1/civictrack/issues/issue_" + ownerID.Hex() + "_a.jpg"
}

func (p *recordingPhotos) Owns(url, ownerID string) bool {
	return strings.Contains(url, "/issue_"+ownerID+"_")
}

func (p *recordingPhotos) Destroy(_ context.Context, url, ownerID string) error {
	p.destroyed = append(p.destroyed, url)
	p.owners = append(p.owners, ownerID)
	return nil
}
