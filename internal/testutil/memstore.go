package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"me-platform/internal/models"
	"me-platform/internal/repository"
)

// MemStore is an in-memory datastore implementing the service store
// interfaces. A single mutex stands in for row locks, so Review is atomic.
type MemStore struct {
	mu sync.Mutex

	Now func() time.Time

	users    map[int64]*models.User
	sessions map[string]*models.Session
	audit    []models.AuditLog
	tax      models.Taxonomy
	reports  map[int64]*models.Report
	projects map[int64]*models.Project

	nextID int64
}

// NewMemStore returns an empty store
func NewMemStore() *MemStore {
	return &MemStore{
		Now:      time.Now,
		users:    map[int64]*models.User{},
		sessions: map[string]*models.Session{},
		reports:  map[int64]*models.Report{},
		projects: map[int64]*models.Project{},
	}
}

func (m *MemStore) id() int64 {
	m.nextID++
	return m.nextID
}

// Accessors for each store interface

func (m *MemStore) Users() *MemUsers       { return &MemUsers{m} }
func (m *MemStore) Sessions() *MemSessions { return &MemSessions{m} }
func (m *MemStore) Audit() *MemAudit       { return &MemAudit{m} }
func (m *MemStore) Roles() MemRoles        { return MemRoles{} }
func (m *MemStore) Taxonomy() *MemTaxonomy { return &MemTaxonomy{m} }
func (m *MemStore) Reports() *MemReports   { return &MemReports{m} }
func (m *MemStore) Projects() *MemProjects { return &MemProjects{m} }

// ---- users ----

type MemUsers struct{ m *MemStore }

func (s *MemUsers) Create(_ context.Context, user *models.User) error {
	m := s.m
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username {
			return repository.ErrDuplicate
		}
	}
	if user.OrganisationID != nil && m.organisationName(*user.OrganisationID) == "" ||
		user.FocusAreaID != nil && m.focusArea(*user.FocusAreaID) == nil {
		return repository.ErrReference
	}
	user.ID = m.id()
	user.CreatedAt = m.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (s *MemUsers) GetByID(_ context.Context, id int64) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *MemUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for _, u := range s.m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *MemUsers) List(_ context.Context, limit, offset int) ([]models.UserWithRole, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.UserWithRole
	for _, u := range s.m.users {
		out = append(out, models.UserWithRole{User: *u, Role: u.RoleID.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func (s *MemUsers) ListActiveByRole(_ context.Context, role models.RoleID) ([]models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.User
	for _, u := range s.m.users {
		if u.RoleID == role && u.IsActive {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemUsers) Update(_ context.Context, user *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if user.FocusAreaID != nil && s.m.focusArea(*user.FocusAreaID) == nil {
		return repository.ErrReference
	}
	user.UpdatedAt = s.m.Now()
	u.FullName, u.Email, u.FocusAreaID, u.IsActive, u.UpdatedAt = user.FullName, user.Email, user.FocusAreaID, user.IsActive, user.UpdatedAt
	return nil
}

func (s *MemUsers) UpdatePassword(_ context.Context, userID int64, hash string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	u, ok := s.m.users[userID]
	if !ok {
		return repository.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (s *MemUsers) UpdateLastLogin(_ context.Context, userID int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if u, ok := s.m.users[userID]; ok {
		now := s.m.Now()
		u.LastLoginAt = &now
	}
	return nil
}

func (s *MemUsers) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.users[id]; !ok {
		return repository.ErrNotFound
	}
	for _, r := range s.m.reports {
		if r.UserID == id {
			return repository.ErrReference
		}
	}
	for _, p := range s.m.projects {
		if p.UserID == id {
			return repository.ErrReference
		}
	}
	delete(s.m.users, id)
	for jti, sess := range s.m.sessions {
		if sess.UserID == id {
			delete(s.m.sessions, jti)
		}
	}
	return nil
}

// ---- sessions ----

type MemSessions struct{ m *MemStore }

func (s *MemSessions) Create(_ context.Context, session *models.Session) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	cp := *session
	s.m.sessions[session.JTI] = &cp
	return nil
}

func (s *MemSessions) GetByJTI(_ context.Context, jti string) (*models.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	sess, ok := s.m.sessions[jti]
	if !ok || !sess.ExpiresAt.After(s.m.Now()) {
		return nil, repository.ErrNotFound
	}
	cp := *sess
	return &cp, nil
}

func (s *MemSessions) ListByUserID(_ context.Context, userID int64) ([]models.Session, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Session
	for _, sess := range s.m.sessions {
		if sess.UserID == userID && sess.ExpiresAt.After(s.m.Now()) {
			out = append(out, *sess)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastActivityAt.After(out[j].LastActivityAt) })
	return out, nil
}

func (s *MemSessions) DeleteByID(_ context.Context, id string, userID int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for jti, sess := range s.m.sessions {
		if sess.ID == id && sess.UserID == userID {
			delete(s.m.sessions, jti)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *MemSessions) Touch(_ context.Context, jti string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if sess, ok := s.m.sessions[jti]; ok {
		sess.LastActivityAt = s.m.Now()
	}
	return nil
}

func (s *MemSessions) DeleteByJTI(_ context.Context, jti string) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	delete(s.m.sessions, jti)
	return nil
}

func (s *MemSessions) DeleteByUserID(_ context.Context, userID int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	for jti, sess := range s.m.sessions {
		if sess.UserID == userID {
			delete(s.m.sessions, jti)
		}
	}
	return nil
}

func (s *MemSessions) DeleteExpired(_ context.Context) (int64, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var n int64
	for jti, sess := range s.m.sessions {
		if !sess.ExpiresAt.After(s.m.Now()) {
			delete(s.m.sessions, jti)
			n++
		}
	}
	return n, nil
}

// Count returns the number of stored sessions, expired ones included
func (s *MemSessions) Count() int {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	return len(s.m.sessions)
}

// ---- audit ----

type MemAudit struct{ m *MemStore }

func (s *MemAudit) Create(_ context.Context, log *models.AuditLog) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	log.ID = s.m.id()
	log.CreatedAt = s.m.Now()
	s.m.audit = append(s.m.audit, *log)
	return nil
}

func (s *MemAudit) List(_ context.Context, userID *int64, limit, offset int) ([]models.AuditLog, int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.AuditLog
	for i := len(s.m.audit) - 1; i >= 0; i-- {
		l := s.m.audit[i]
		if userID == nil || (l.UserID != nil && *l.UserID == *userID) {
			out = append(out, l)
		}
	}
	return page(out, limit, offset), len(out), nil
}

// Actions returns the recorded audit actions in order
func (s *MemAudit) Actions() []string {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	out := make([]string, 0, len(s.m.audit))
	for _, l := range s.m.audit {
		out = append(out, l.Action)
	}
	return out
}

// ---- roles ----

type MemRoles struct{}

func (MemRoles) List(context.Context) ([]models.Role, error) {
	return []models.Role{
		{ID: models.RoleAdmin, Name: models.RoleAdmin.Name(), Description: "Administrator"},
		{ID: models.RoleNPC, Name: models.RoleNPC.Name(), Description: "Reviewer"},
		{ID: models.RoleOMA, Name: models.RoleOMA.Name(), Description: "Ministry staff"},
	}, nil
}

// ---- taxonomy ----

type MemTaxonomy struct{ m *MemStore }

func (s *MemTaxonomy) Snapshot(context.Context) (*models.Taxonomy, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	t := s.m.tax
	return &t, nil
}

func (s *MemTaxonomy) GetFocusArea(_ context.Context, id int64) (*models.FocusArea, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if fa := s.m.focusArea(id); fa != nil {
		cp := *fa
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *MemTaxonomy) GetProgramme(_ context.Context, id int64) (*models.Programme, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if pg := s.m.programme(id); pg != nil {
		cp := *pg
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (s *MemTaxonomy) Upsert(_ context.Context, t *models.Taxonomy) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	s.m.tax = *t
	return nil
}

func (m *MemStore) focusArea(id int64) *models.FocusArea {
	for i := range m.tax.FocusAreas {
		if m.tax.FocusAreas[i].ID == id {
			return &m.tax.FocusAreas[i]
		}
	}
	return nil
}

func (m *MemStore) programme(id int64) *models.Programme {
	for i := range m.tax.Programmes {
		if m.tax.Programmes[i].ID == id {
			return &m.tax.Programmes[i]
		}
	}
	return nil
}

func (m *MemStore) organisationName(id int64) string {
	for _, o := range m.tax.Organisations {
		if o.ID == id {
			return o.Name
		}
	}
	return ""
}

func (m *MemStore) pillarOf(focusAreaID int64) (int64, string) {
	fa := m.focusArea(focusAreaID)
	if fa == nil {
		return 0, ""
	}
	for _, th := range m.tax.Themes {
		if th.ID != fa.ThemeID {
			continue
		}
		for _, p := range m.tax.Pillars {
			if p.ID == th.PillarID {
				return p.ID, p.Name
			}
		}
	}
	return 0, ""
}

// ---- reports ----

type MemReports struct{ m *MemStore }

func cloneReport(r *models.Report) *models.Report {
	cp := *r
	cp.StrategyIDs = append([]int64{}, r.StrategyIDs...)
	cp.ReviewerComments = append(models.ReviewComments{}, r.ReviewerComments...)
	return &cp
}

func (s *MemReports) details(r *models.Report) models.ReportWithDetails {
	d := models.ReportWithDetails{Report: *cloneReport(r)}
	if u, ok := s.m.users[r.UserID]; ok {
		d.AuthorName = u.FullName
	}
	d.OrganisationName = s.m.organisationName(r.OrganisationID)
	if fa := s.m.focusArea(r.FocusAreaID); fa != nil {
		d.FocusAreaName = fa.Name
	}
	if pg := s.m.programme(r.ProgrammeID); pg != nil {
		d.ProgrammeName = pg.Name
	}
	return d
}

func (s *MemReports) Create(_ context.Context, rep *models.Report) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if rep.ReviewerComments == nil {
		rep.ReviewerComments = models.ReviewComments{}
	}
	rep.ID = s.m.id()
	rep.CreatedAt = s.m.Now()
	rep.UpdatedAt = rep.CreatedAt
	s.m.reports[rep.ID] = cloneReport(rep)
	return nil
}

func (s *MemReports) GetByID(_ context.Context, id int64) (*models.ReportWithDetails, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	d := s.details(r)
	return &d, nil
}

func (s *MemReports) List(_ context.Context, f models.ReportFilter) ([]models.ReportWithDetails, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.ReportWithDetails
	for _, r := range s.m.reports {
		if f.UserID != nil && r.UserID != *f.UserID ||
			f.OrganisationID != nil && r.OrganisationID != *f.OrganisationID ||
			f.FocusAreaID != nil && r.FocusAreaID != *f.FocusAreaID ||
			f.Status != nil && r.Status != *f.Status ||
			f.Stage != nil && r.CurrentStage != *f.Stage {
			continue
		}
		out = append(out, s.details(r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemReports) UpdateContent(_ context.Context, id int64, upd models.ReportContentUpdate) (*models.Report, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if upd.FocusAreaID != nil {
		r.FocusAreaID = *upd.FocusAreaID
	}
	if upd.ProgrammeID != nil {
		r.ProgrammeID = *upd.ProgrammeID
	}
	if upd.StrategyIDs != nil {
		r.StrategyIDs = append([]int64{}, (*upd.StrategyIDs)...)
	}
	if upd.Description != nil {
		r.Description = *upd.Description
	}
	if upd.Target != nil {
		r.Target = *upd.Target
	}
	if upd.Period != nil {
		r.Period = *upd.Period
	}
	if upd.Comments != nil {
		r.Comments = *upd.Comments
	}
	r.UpdatedAt = s.m.Now()
	return cloneReport(r), nil
}

func (s *MemReports) Review(_ context.Context, id int64, decide repository.ReviewFunc) (*models.Report, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	r, ok := s.m.reports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	outcome, err := decide(cloneReport(r))
	if err != nil {
		return nil, err
	}
	r.Status = outcome.Status
	r.CurrentStage = outcome.Stage
	r.ReviewerComments = append(r.ReviewerComments, outcome.Comment)
	r.UpdatedAt = s.m.Now()
	return cloneReport(r), nil
}

func (s *MemReports) StatusStageCounts(_ context.Context, orgID *int64) ([]models.StatusStageCount, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	counts := map[[2]string]int{}
	for _, r := range s.m.reports {
		if orgID != nil && r.OrganisationID != *orgID {
			continue
		}
		counts[[2]string{string(r.Status), string(r.CurrentStage)}]++
	}
	var out []models.StatusStageCount
	for k, n := range counts {
		out = append(out, models.StatusStageCount{Status: models.Status(k[0]), Stage: models.Stage(k[1]), Count: n})
	}
	return out, nil
}

func (s *MemReports) Analytics(_ context.Context, q models.AnalyticsQuery) ([]models.AnalyticsRow, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	type key struct {
		group  int64
		bucket time.Time
	}
	rows := map[key]*models.AnalyticsRow{}
	for _, r := range s.m.reports {
		if q.OrganisationID != nil && r.OrganisationID != *q.OrganisationID {
			continue
		}
		if q.From != nil && r.CreatedAt.Before(*q.From) || q.To != nil && !r.CreatedAt.Before(*q.To) {
			continue
		}

		var gid int64
		var gname string
		switch q.GroupBy {
		case "pillar":
			gid, gname = s.m.pillarOf(r.FocusAreaID)
		case "programme":
			gid = r.ProgrammeID
			if pg := s.m.programme(gid); pg != nil {
				gname = pg.Name
			}
		default:
			gid, gname = r.OrganisationID, s.m.organisationName(r.OrganisationID)
		}

		k := key{gid, truncate(r.CreatedAt, q.Bucket)}
		row, ok := rows[k]
		if !ok {
			row = &models.AnalyticsRow{GroupID: gid, GroupName: gname, Bucket: k.bucket}
			rows[k] = row
		}
		row.Total++
		switch r.Status {
		case models.StatusPlanningApproved, models.StatusExecutionApproved, models.StatusMonitoringApproved:
			row.Approved++
		case models.StatusRejected:
			row.Rejected++
		case models.StatusClosed:
			row.Closed++
		}
	}

	out := make([]models.AnalyticsRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Bucket.Equal(out[j].Bucket) {
			return out[i].Bucket.Before(out[j].Bucket)
		}
		return out[i].GroupName < out[j].GroupName
	})
	return out, nil
}

func truncate(t time.Time, bucket string) time.Time {
	t = t.UTC()
	switch bucket {
	case "year":
		return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	case "quarter":
		return time.Date(t.Year(), ((t.Month()-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

func (s *MemReports) ListPending(context.Context) ([]models.PendingReview, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.PendingReview
	for _, r := range s.m.reports {
		if r.CurrentStage == models.StageClosed {
			continue
		}
		p := models.PendingReview{
			ReportID:         r.ID,
			OrganisationName: s.m.organisationName(r.OrganisationID),
			Period:           r.Period,
			Stage:            r.CurrentStage,
			Status:           r.Status,
			UpdatedAt:        r.UpdatedAt,
		}
		if fa := s.m.focusArea(r.FocusAreaID); fa != nil {
			p.FocusAreaName = fa.Name
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ReportID < out[j].ReportID })
	return out, nil
}

// ---- projects ----

type MemProjects struct{ m *MemStore }

func (s *MemProjects) Create(_ context.Context, p *models.Project) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p.ID = s.m.id()
	p.CreatedAt = s.m.Now()
	p.UpdatedAt = p.CreatedAt
	cp := *p
	s.m.projects[p.ID] = &cp
	return nil
}

func (s *MemProjects) GetByID(_ context.Context, id int64) (*models.Project, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	p, ok := s.m.projects[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemProjects) List(_ context.Context, userID, orgID *int64) ([]models.Project, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	var out []models.Project
	for _, p := range s.m.projects {
		if userID != nil && p.UserID != *userID || orgID != nil && p.OrganisationID != *orgID {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemProjects) Count(_ context.Context, orgID *int64) (int, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	n := 0
	for _, p := range s.m.projects {
		if orgID == nil || p.OrganisationID == *orgID {
			n++
		}
	}
	return n, nil
}

func (s *MemProjects) Delete(_ context.Context, id int64) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()
	if _, ok := s.m.projects[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.m.projects, id)
	return nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
