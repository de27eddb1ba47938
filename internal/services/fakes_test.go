package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/models"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/repositories"
)

func testConfig() *config.Config {
	return &config.Config{
		AppPort:          "4000",
		Environment:      "local",
		FrontendURL:      "http://localhost:5173",
		OrganizationName: "FR Family Investments",

		TokenExpiry: 24 * time.Hour,

		VerificationCodeLength: 6,
		VerificationCodeExpiry: 10 * time.Minute,

		BroadcastBatchSize:     50,
		BroadcastBatchInterval: time.Second,
		BroadcastMaxRetries:    3,
		BroadcastRetryBackoff:  500 * time.Millisecond,
		BroadcastDeadline:      10 * time.Minute,

		ReminderCronSpec: "0 9 * * *",
	}
}

// ---------------------------------------------------------------------
// Messaging fakes
// ---------------------------------------------------------------------

type fakeSMS struct {
	mu sync.Mutex

	sent []sentSMS

	// failFor makes sends to these phones fail permanently.
	failFor map[string]bool
	// failFirstN makes the first N attempts per phone fail, then
	// succeed (exercises the retry path).
	failFirstN int
	attempts   map[string]int
}

type sentSMS struct {
	To   string
	Body string
}

func newFakeSMS() *fakeSMS {
	return &fakeSMS{failFor: map[string]bool{}, attempts: map[string]int{}}
}

func (f *fakeSMS) SendSMS(to, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.attempts[to]++
	if f.failFor[to] {
		return errors.New("carrier rejected")
	}
	if f.failFirstN > 0 && f.attempts[to] <= f.failFirstN {
		return errors.New("transient carrier error")
	}
	f.sent = append(f.sent, sentSMS{To: to, Body: body})
	return nil
}

func (f *fakeSMS) sentTo(phone string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.To == phone {
			n++
		}
	}
	return n
}

func (f *fakeSMS) totalSent() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeEmail struct {
	mu   sync.Mutex
	sent int
	fail bool
}

func (f *fakeEmail) SendEmail(_, _, _, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("email gateway down")
	}
	f.sent++
	return nil
}

// ---------------------------------------------------------------------
// Repository fakes (in-memory maps, no locking beyond what tests need)
// ---------------------------------------------------------------------

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
	roles *fakeRoleRepo
}

func newFakeUserRepo(roles *fakeRoleRepo) *fakeUserRepo {
	return &fakeUserRepo{users: map[uuid.UUID]*models.User{}, roles: roles}
}

func (f *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) GetByEmailOrUsername(_ context.Context, identifier string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == identifier || u.Username == identifier {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) ListAll(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) ListBroadcastRecipients(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.User
	for _, u := range f.users {
		if u.Phone == "" || !u.IsEmailVerified || !u.IsPhoneVerified {
			continue
		}
		if f.roles != nil && f.roles.nameOf(u.RoleID) == models.RoleAdmin {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeUserRepo) CountBroadcastRecipients(ctx context.Context) (int, error) {
	users, _ := f.ListBroadcastRecipients(ctx)
	return len(users), nil
}

func (f *fakeUserRepo) SetVerificationCode(_ context.Context, id uuid.UUID, code string, expiresAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.VerificationCode = &code
	u.VerificationCodeExpiry = &expiresAt
	return nil
}

func (f *fakeUserRepo) MarkVerified(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errors.New("user not found")
	}
	u.VerificationCode = nil
	u.VerificationCodeExpiry = nil
	u.IsEmailVerified = true
	u.IsPhoneVerified = true
	return nil
}

func (f *fakeUserRepo) UpdateProfileImage(_ context.Context, id uuid.UUID, img models.ProfileImage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.ProfileImage = img
	}
	return nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, id uuid.UUID, roleID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		u.RoleID = roleID
	}
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)
	return nil
}

type fakeRoleRepo struct {
	mu    sync.Mutex
	roles map[string]*models.Role
}

func newFakeRoleRepo() *fakeRoleRepo {
	f := &fakeRoleRepo{roles: map[string]*models.Role{}}
	for _, name := range []string{models.RoleUser, models.RoleCoAdmin, models.RoleAdmin} {
		f.roles[name] = &models.Role{ID: uuid.New(), Name: name}
	}
	return f
}

func (f *fakeRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRoleRepo) GetByName(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.roles[name], nil
}

func (f *fakeRoleRepo) ListAll(_ context.Context) ([]*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Role, 0, len(f.roles))
	for _, r := range f.roles {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoleRepo) Ensure(_ context.Context, name string) (*models.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, ok := f.roles[name]; ok {
		return r, nil
	}
	r := &models.Role{ID: uuid.New(), Name: name}
	f.roles[name] = r
	return r, nil
}

func (f *fakeRoleRepo) nameOf(id uuid.UUID) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.roles {
		if r.ID == id {
			return r.Name
		}
	}
	return ""
}

type fakePropertyRepo struct {
	mu         sync.Mutex
	properties map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{properties: map[uuid.UUID]*models.Property{}}
}

func (f *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.properties[p.ID] = &cp
	return nil
}

func (f *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.properties[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (f *fakePropertyRepo) ListPublic(_ context.Context) ([]*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Property
	for _, p := range f.properties {
		if p.Status == models.PropertyAvailable {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePropertyRepo) ListByCreator(_ context.Context, createdBy uuid.UUID) ([]*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Property
	for _, p := range f.properties {
		if p.CreatedBy == createdBy {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePropertyRepo) ListAll(_ context.Context) ([]*models.Property, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Property, 0, len(f.properties))
	for _, p := range f.properties {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakePropertyRepo) Update(_ context.Context, p *models.Property) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.properties[p.ID] = &cp
	return nil
}

func (f *fakePropertyRepo) UpdateRating(_ context.Context, id uuid.UUID, average float64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p, ok := f.properties[id]; ok {
		p.Rating = models.Rating{Average: average, Count: count}
	}
	return nil
}

func (f *fakePropertyRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.properties, id)
	return nil
}

type fakeAppointmentRepo struct {
	mu           sync.Mutex
	appointments map[uuid.UUID]*models.Appointment
}

func newFakeAppointmentRepo() *fakeAppointmentRepo {
	return &fakeAppointmentRepo{appointments: map[uuid.UUID]*models.Appointment{}}
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.appointments[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.appointments[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeAppointmentRepo) GetByConfirmationCode(_ context.Context, code string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.ConfirmationCode == code {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeAppointmentRepo) GetLatestPendingByPhone(_ context.Context, phone string) (*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *models.Appointment
	for _, a := range f.appointments {
		if a.Visitor.Phone != phone || a.Status != models.AppointmentPendingSMS {
			continue
		}
		if latest == nil || a.CreatedAt.After(latest.CreatedAt) {
			latest = a
		}
	}
	if latest == nil {
		return nil, nil
	}
	cp := *latest
	return &cp, nil
}

func (f *fakeAppointmentRepo) SlotTaken(_ context.Context, propertyID uuid.UUID, slot string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.appointments {
		if a.PropertyID == propertyID && a.TimeSlot == slot && a.Status != models.AppointmentCancelled {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeAppointmentRepo) TakenSlotKeys(_ context.Context, propertyID uuid.UUID, datePrefix string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]bool{}
	for _, a := range f.appointments {
		if a.PropertyID == propertyID && a.Status != models.AppointmentCancelled && strings.HasPrefix(a.TimeSlot, datePrefix) {
			out[a.TimeSlot] = true
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) CountActiveByUser(_ context.Context, userID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.appointments {
		if a.UserID != nil && *a.UserID == userID && a.IsActive() {
			n++
		}
	}
	return n, nil
}

func (f *fakeAppointmentRepo) List(_ context.Context, filter repositories.AppointmentFilter) ([]*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.appointments {
		if filter.Status != nil && a.Status != *filter.Status {
			continue
		}
		if filter.PropertyID != nil && a.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.From != nil && a.AppointmentDate.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !a.AppointmentDate.Before(*filter.To) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.UserID != nil && *a.UserID == userID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListConfirmedBetween(_ context.Context, from, to time.Time) ([]*models.Appointment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Appointment
	for _, a := range f.appointments {
		if a.Status != models.AppointmentConfirmed {
			continue
		}
		if a.AppointmentDate.Before(from) || !a.AppointmentDate.Before(to) {
			continue
		}
		cp := *a
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeAppointmentRepo) Update(_ context.Context, a *models.Appointment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *a
	f.appointments[a.ID] = &cp
	return nil
}

func (f *fakeAppointmentRepo) DeleteAll(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := int64(len(f.appointments))
	f.appointments = map[uuid.UUID]*models.Appointment{}
	return n, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	records map[uuid.UUID]*models.Notification

	progressWrites int
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{records: map[uuid.UUID]*models.Notification{}}
}

func (f *fakeNotificationRepo) Create(_ context.Context, n *models.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *n
	f.records[n.ID] = &cp
	return nil
}

func (f *fakeNotificationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.records[id]
	if !ok {
		return nil, nil
	}
	cp := *n
	return &cp, nil
}

func (f *fakeNotificationRepo) ListRecent(_ context.Context, limit int) ([]*models.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Notification
	for _, n := range f.records {
		cp := *n
		out = append(out, &cp)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeNotificationRepo) UpdateProgress(_ context.Context, id uuid.UUID, stats models.BroadcastStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.progressWrites++
	if n, ok := f.records[id]; ok {
		n.Stats = stats
	}
	return nil
}

func (f *fakeNotificationRepo) Finalize(
	_ context.Context,
	id uuid.UUID,
	status models.BroadcastStatus,
	stats models.BroadcastStats,
	completedAt time.Time,
	durationSeconds int,
) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if n, ok := f.records[id]; ok {
		n.Status = status
		n.Stats = stats
		n.CompletedAt = &completedAt
		n.DurationSeconds = durationSeconds
	}
	return nil
}

type fakeOfferRepo struct {
	mu     sync.Mutex
	offers map[uuid.UUID]*models.Offer
}

func newFakeOfferRepo() *fakeOfferRepo {
	return &fakeOfferRepo{offers: map[uuid.UUID]*models.Offer{}}
}

func (f *fakeOfferRepo) Create(_ context.Context, o *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

func (f *fakeOfferRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	o, ok := f.offers[id]
	if !ok {
		return nil, nil
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOfferRepo) GetActiveByPropertyAndUser(_ context.Context, propertyID, userID uuid.UUID) (*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.offers {
		if o.PropertyID == propertyID && o.UserID == userID && o.IsActive() {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeOfferRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Offer
	for _, o := range f.offers {
		if o.UserID == userID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) ListPending(_ context.Context) ([]*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Offer
	for _, o := range f.offers {
		if o.Status == models.OfferPending {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) ListByAssignee(_ context.Context, staffID uuid.UUID) ([]*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Offer
	for _, o := range f.offers {
		if o.AssignedTo != nil && *o.AssignedTo == staffID {
			cp := *o
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeOfferRepo) ListAll(_ context.Context) ([]*models.Offer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Offer, 0, len(f.offers))
	for _, o := range f.offers {
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeOfferRepo) Update(_ context.Context, o *models.Offer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *o
	f.offers[o.ID] = &cp
	return nil
}

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*models.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: map[uuid.UUID]*models.Review{}}
}

func (f *fakeReviewRepo) Create(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rv
	f.reviews[rv.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rv, ok := f.reviews[id]
	if !ok {
		return nil, nil
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviewRepo) GetByPropertyAndUser(_ context.Context, propertyID, userID uuid.UUID) (*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, rv := range f.reviews {
		if rv.PropertyID == propertyID && rv.UserID == userID {
			cp := *rv
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeReviewRepo) ListApprovedByProperty(_ context.Context, propertyID uuid.UUID) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for _, rv := range f.reviews {
		if rv.PropertyID == propertyID && rv.Status == models.ReviewApproved {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListPending(_ context.Context) ([]*models.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Review
	for _, rv := range f.reviews {
		if rv.Status == models.ReviewPending {
			cp := *rv
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ApprovedStats(_ context.Context, propertyID uuid.UUID) (float64, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sum, count := 0, 0
	for _, rv := range f.reviews {
		if rv.PropertyID == propertyID && rv.Status == models.ReviewApproved {
			sum += rv.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}

func (f *fakeReviewRepo) Update(_ context.Context, rv *models.Review) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *rv
	f.reviews[rv.ID] = &cp
	return nil
}

func (f *fakeReviewRepo) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.reviews, id)
	return nil
}
