package service

import (
	"context"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/potluckhq/potluck/internal/model"
	"github.com/potluckhq/potluck/internal/repository"
)

// fakeStore is an in-memory repository.Store. InTx holds a single mutex
// for the whole callback, which gives the tests the same isolation the
// real store gets from serializable transactions.
type fakeStore struct {
	mu sync.Mutex

	users         map[string]*model.User
	parties       map[string]*model.Party
	participants  map[string]*model.PartyParticipant
	dishes        map[string]*model.Dish
	partyDishes   map[string]*model.PartyDish // key partyID+"/"+dishID
	contributions map[string]*model.Contribution
	invitations   map[string]*model.PartyInvitation
	categories    map[string]*model.Category
	notifications map[string]*model.Notification
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:         make(map[string]*model.User),
		parties:       make(map[string]*model.Party),
		participants:  make(map[string]*model.PartyParticipant),
		dishes:        make(map[string]*model.Dish),
		partyDishes:   make(map[string]*model.PartyDish),
		contributions: make(map[string]*model.Contribution),
		invitations:   make(map[string]*model.PartyInvitation),
		categories:    make(map[string]*model.Category),
		notifications: make(map[string]*model.Notification),
	}
}

func (s *fakeStore) Users() repository.IUserRepository          { return fakeUsers{s} }
func (s *fakeStore) Parties() repository.IPartyRepository       { return fakeParties{s} }
func (s *fakeStore) Participants() repository.IParticipantRepository {
	return fakeParticipants{s}
}
func (s *fakeStore) Dishes() repository.IDishRepository           { return fakeDishes{s} }
func (s *fakeStore) PartyDishes() repository.IPartyDishRepository { return fakePartyDishes{s} }
func (s *fakeStore) Contributions() repository.IContributionRepository {
	return fakeContributions{s}
}
func (s *fakeStore) Invitations() repository.IInvitationRepository {
	return fakeInvitations{s}
}
func (s *fakeStore) Categories() repository.ICategoryRepository { return fakeCategories{s} }
func (s *fakeStore) Notifications() repository.INotificationRepository {
	return fakeNotifications{s}
}

func (s *fakeStore) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s)
}

func pdKey(partyID, dishID string) string { return partyID + "/" + dishID }

// --- users ---

type fakeUsers struct{ s *fakeStore }

func (f fakeUsers) Create(ctx context.Context, u *model.User) error {
	f.s.users[u.ID] = u
	return nil
}

func (f fakeUsers) FindByID(ctx context.Context, id string) (*model.User, error) {
	if u, ok := f.s.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	for _, u := range f.s.users {
		if u.UserName == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, u := range f.s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeUsers) Update(ctx context.Context, u *model.User) error {
	f.s.users[u.ID] = u
	return nil
}

// --- parties ---

type fakeParties struct{ s *fakeStore }

func (f fakeParties) Create(ctx context.Context, p *model.Party) error {
	f.s.parties[p.ID] = p
	return nil
}

func (f fakeParties) FindByID(ctx context.Context, id string) (*model.Party, error) {
	if p, ok := f.s.parties[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeParties) FindByIDForUpdate(ctx context.Context, id string) (*model.Party, error) {
	return f.FindByID(ctx, id)
}

func (f fakeParties) Save(ctx context.Context, p *model.Party) error {
	f.s.parties[p.ID] = p
	return nil
}

func (f fakeParties) UpdateStatus(ctx context.Context, id string, status model.PartyStatus) error {
	p, ok := f.s.parties[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	p.Status = status
	return nil
}

func (f fakeParties) ListByHost(ctx context.Context, hostID string) ([]*model.Party, error) {
	var out []*model.Party
	for _, p := range f.s.parties {
		if p.HostID == hostID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeParties) ListPublic(ctx context.Context) ([]*model.Party, error) {
	var out []*model.Party
	for _, p := range f.s.parties {
		if p.Privacy == model.PartyPrivacyPublic {
			out = append(out, p)
		}
	}
	return out, nil
}

// --- participants ---

type fakeParticipants struct{ s *fakeStore }

func (f fakeParticipants) Create(ctx context.Context, p *model.PartyParticipant) error {
	for _, existing := range f.s.participants {
		if existing.PartyID == p.PartyID && existing.UserID == p.UserID {
			return gorm.ErrDuplicatedKey
		}
	}
	if p.JoinedAt.IsZero() {
		p.JoinedAt = time.Now()
	}
	f.s.participants[p.ID] = p
	return nil
}

func (f fakeParticipants) FindByID(ctx context.Context, id string) (*model.PartyParticipant, error) {
	if p, ok := f.s.participants[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeParticipants) FindByPartyAndUser(ctx context.Context, partyID, userID string) (*model.PartyParticipant, error) {
	for _, p := range f.s.participants {
		if p.PartyID == partyID && p.UserID == userID {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeParticipants) ListByParty(ctx context.Context, partyID string) ([]*model.PartyParticipant, error) {
	var out []*model.PartyParticipant
	for _, p := range f.s.participants {
		if p.PartyID == partyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f fakeParticipants) TotalSeats(ctx context.Context, partyID string) (int, error) {
	total := 0
	for _, p := range f.s.participants {
		if p.PartyID == partyID {
			total += p.Seats()
		}
	}
	return total, nil
}

func (f fakeParticipants) Delete(ctx context.Context, id string) error {
	delete(f.s.participants, id)
	return nil
}

// --- dishes ---

type fakeDishes struct{ s *fakeStore }

func (f fakeDishes) Create(ctx context.Context, d *model.Dish) error {
	f.s.dishes[d.ID] = d
	return nil
}

func (f fakeDishes) FindByID(ctx context.Context, id string) (*model.Dish, error) {
	if d, ok := f.s.dishes[id]; ok {
		return d, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeDishes) Save(ctx context.Context, d *model.Dish) error {
	f.s.dishes[d.ID] = d
	return nil
}

func (f fakeDishes) List(ctx context.Context) ([]*model.Dish, error) {
	var out []*model.Dish
	for _, d := range f.s.dishes {
		out = append(out, d)
	}
	return out, nil
}

func (f fakeDishes) ListByCategory(ctx context.Context, categoryID string) ([]*model.Dish, error) {
	var out []*model.Dish
	for _, d := range f.s.dishes {
		if d.CategoryID == categoryID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f fakeDishes) Delete(ctx context.Context, id string) error {
	delete(f.s.dishes, id)
	return nil
}

// --- party dishes ---

type fakePartyDishes struct{ s *fakeStore }

func (f fakePartyDishes) Create(ctx context.Context, pd *model.PartyDish) error {
	f.s.partyDishes[pdKey(pd.PartyID, pd.DishID)] = pd
	return nil
}

func (f fakePartyDishes) Find(ctx context.Context, partyID, dishID string) (*model.PartyDish, error) {
	if pd, ok := f.s.partyDishes[pdKey(partyID, dishID)]; ok {
		return pd, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakePartyDishes) FindForUpdate(ctx context.Context, partyID, dishID string) (*model.PartyDish, error) {
	return f.Find(ctx, partyID, dishID)
}

func (f fakePartyDishes) Save(ctx context.Context, pd *model.PartyDish) error {
	f.s.partyDishes[pdKey(pd.PartyID, pd.DishID)] = pd
	return nil
}

func (f fakePartyDishes) ListByParty(ctx context.Context, partyID string) ([]*model.PartyDish, error) {
	var out []*model.PartyDish
	for _, pd := range f.s.partyDishes {
		if pd.PartyID == partyID {
			out = append(out, pd)
		}
	}
	return out, nil
}

func (f fakePartyDishes) Delete(ctx context.Context, partyID, dishID string) error {
	delete(f.s.partyDishes, pdKey(partyID, dishID))
	return nil
}

// --- contributions ---

type fakeContributions struct{ s *fakeStore }

func (f fakeContributions) Create(ctx context.Context, c *model.Contribution) error {
	f.s.contributions[c.ID] = c
	return nil
}

func (f fakeContributions) Save(ctx context.Context, c *model.Contribution) error {
	f.s.contributions[c.ID] = c
	return nil
}

func (f fakeContributions) FindByID(ctx context.Context, id string) (*model.Contribution, error) {
	if c, ok := f.s.contributions[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeContributions) FindByParticipantAndDish(ctx context.Context, partyID, dishID, participantID string) (*model.Contribution, error) {
	for _, c := range f.s.contributions {
		if c.PartyID == partyID && c.DishID == dishID && c.ParticipantID == participantID {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeContributions) ListByParty(ctx context.Context, partyID string) ([]*model.Contribution, error) {
	var out []*model.Contribution
	for _, c := range f.s.contributions {
		if c.PartyID == partyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeContributions) ListByDish(ctx context.Context, partyID, dishID string) ([]*model.Contribution, error) {
	var out []*model.Contribution
	for _, c := range f.s.contributions {
		if c.PartyID == partyID && c.DishID == dishID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeContributions) SumByDishExcluding(ctx context.Context, partyID, dishID, excludeID string) (float64, error) {
	var total float64
	for _, c := range f.s.contributions {
		if c.PartyID == partyID && c.DishID == dishID && c.ID != excludeID {
			total += c.Amount
		}
	}
	return total, nil
}

func (f fakeContributions) Delete(ctx context.Context, id string) error {
	if _, ok := f.s.contributions[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.s.contributions, id)
	return nil
}

func (f fakeContributions) DeleteByPartyDish(ctx context.Context, partyID, dishID string) error {
	for id, c := range f.s.contributions {
		if c.PartyID == partyID && c.DishID == dishID {
			delete(f.s.contributions, id)
		}
	}
	return nil
}

func (f fakeContributions) DeleteByParticipant(ctx context.Context, participantID string) error {
	for id, c := range f.s.contributions {
		if c.ParticipantID == participantID {
			delete(f.s.contributions, id)
		}
	}
	return nil
}

// --- invitations ---

type fakeInvitations struct{ s *fakeStore }

func (f fakeInvitations) Create(ctx context.Context, inv *model.PartyInvitation) error {
	f.s.invitations[inv.ID] = inv
	return nil
}

func (f fakeInvitations) FindByToken(ctx context.Context, token string) (*model.PartyInvitation, error) {
	for _, inv := range f.s.invitations {
		if inv.Token == token {
			return inv, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeInvitations) FindByTokenForUpdate(ctx context.Context, token string) (*model.PartyInvitation, error) {
	return f.FindByToken(ctx, token)
}

func (f fakeInvitations) Save(ctx context.Context, inv *model.PartyInvitation) error {
	f.s.invitations[inv.ID] = inv
	return nil
}

func (f fakeInvitations) ListByParty(ctx context.Context, partyID string) ([]*model.PartyInvitation, error) {
	var out []*model.PartyInvitation
	for _, inv := range f.s.invitations {
		if inv.PartyID == partyID {
			out = append(out, inv)
		}
	}
	return out, nil
}

func (f fakeInvitations) Delete(ctx context.Context, id string) error {
	delete(f.s.invitations, id)
	return nil
}

// --- categories ---

type fakeCategories struct{ s *fakeStore }

func (f fakeCategories) Create(ctx context.Context, c *model.Category) error {
	f.s.categories[c.ID] = c
	return nil
}

func (f fakeCategories) FindByID(ctx context.Context, id string) (*model.Category, error) {
	if c, ok := f.s.categories[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f fakeCategories) FindByIDForUpdate(ctx context.Context, id string) (*model.Category, error) {
	return f.FindByID(ctx, id)
}

func (f fakeCategories) Save(ctx context.Context, c *model.Category) error {
	f.s.categories[c.ID] = c
	return nil
}

func (f fakeCategories) UpdateParent(ctx context.Context, id string, parentID *string) error {
	c, ok := f.s.categories[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.ParentID = parentID
	return nil
}

func (f fakeCategories) List(ctx context.Context) ([]*model.Category, error) {
	var out []*model.Category
	for _, c := range f.s.categories {
		out = append(out, c)
	}
	return out, nil
}

func (f fakeCategories) ListChildren(ctx context.Context, parentID string) ([]*model.Category, error) {
	var out []*model.Category
	for _, c := range f.s.categories {
		if c.ParentID != nil && *c.ParentID == parentID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f fakeCategories) Delete(ctx context.Context, id string) error {
	delete(f.s.categories, id)
	return nil
}

// --- notifications ---

type fakeNotifications struct{ s *fakeStore }

func (f fakeNotifications) Create(ctx context.Context, n *model.Notification) error {
	f.s.notifications[n.ID] = n
	return nil
}

func (f fakeNotifications) ListByUser(ctx context.Context, userID string) ([]*model.Notification, error) {
	var out []*model.Notification
	for _, n := range f.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f fakeNotifications) MarkRead(ctx context.Context, id, userID string) error {
	n, ok := f.s.notifications[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.Read = true
	return nil
}
