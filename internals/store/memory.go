package store

import (
	"context"
	"sort"
	"sync"

	"github.com/footstock/api-server/internals/models"
)

// MemoryStore implements Store with in-memory maps. Used for testing and
// development; not suitable for production (no persistence).
//
// Atomically clones the whole state, runs fn against the clone, and swaps
// it in on success, so a failed transaction leaves every map untouched.
type MemoryStore struct {
	mu   sync.RWMutex
	st   *memState
	inTx bool

	// Fail forces the named write op to return its error; tests use it
	// to simulate a mid-transaction fault.
	Fail map[string]error
}

type memState struct {
	players      map[string]models.Player
	stats        map[string][]models.PlayerStat
	accounts     map[int]models.Account
	holdings     map[int]map[string]models.Holding
	transactions []models.Transaction
	matchweeks   map[int]models.Matchweek
	users        map[int]models.User
	nextUserID   int
}

func newMemState() *memState {
	return &memState{
		players:    make(map[string]models.Player),
		stats:      make(map[string][]models.PlayerStat),
		accounts:   make(map[int]models.Account),
		holdings:   make(map[int]map[string]models.Holding),
		matchweeks: make(map[int]models.Matchweek),
		users:      make(map[int]models.User),
		nextUserID: 1,
	}
}

func (st *memState) clone() *memState {
	c := newMemState()
	c.nextUserID = st.nextUserID
	for k, v := range st.players {
		c.players[k] = v
	}
	for k, v := range st.stats {
		c.stats[k] = append([]models.PlayerStat(nil), v...)
	}
	for k, v := range st.accounts {
		c.accounts[k] = v
	}
	for uid, hs := range st.holdings {
		m := make(map[string]models.Holding, len(hs))
		for k, v := range hs {
			m[k] = v
		}
		c.holdings[uid] = m
	}
	c.transactions = append([]models.Transaction(nil), st.transactions...)
	for k, v := range st.matchweeks {
		c.matchweeks[k] = v
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	return c
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{st: newMemState()}
}

func (s *MemoryStore) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemoryStore) rlock() func() {
	if s.inTx {
		return func() {}
	}
	s.mu.RLock()
	return s.mu.RUnlock
}

func (s *MemoryStore) failing(op string) error {
	if s.Fail == nil {
		return nil
	}
	return s.Fail[op]
}

func (s *MemoryStore) Atomically(_ context.Context, fn func(tx Store) error) error {
	if s.inTx {
		return fn(s)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := s.st.clone()
	tx := &MemoryStore{st: clone, inTx: true, Fail: s.Fail}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = clone
	return nil
}

// --- Players ---

func (s *MemoryStore) CreatePlayer(_ context.Context, p *models.Player) error {
	defer s.lock()()
	s.st.players[p.PlayerID] = *p
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, playerID string) (*models.Player, error) {
	defer s.rlock()()
	p, ok := s.st.players[playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (s *MemoryStore) ListPlayers(_ context.Context) ([]models.Player, error) {
	defer s.rlock()()
	players := make([]models.Player, 0, len(s.st.players))
	for _, p := range s.st.players {
		players = append(players, p)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].PlayerID < players[j].PlayerID })
	return players, nil
}

func (s *MemoryStore) SavePlayer(_ context.Context, p *models.Player) error {
	defer s.lock()()
	if _, ok := s.st.players[p.PlayerID]; !ok {
		return ErrNotFound
	}
	s.st.players[p.PlayerID] = *p
	return nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, playerID string) error {
	defer s.lock()()
	if _, ok := s.st.players[playerID]; !ok {
		return ErrNotFound
	}
	delete(s.st.players, playerID)
	delete(s.st.stats, playerID)
	return nil
}

func (s *MemoryStore) AdjustPopularity(_ context.Context, playerID string, delta int) error {
	defer s.lock()()
	p, ok := s.st.players[playerID]
	if !ok {
		return ErrNotFound
	}
	p.Popularity += delta
	if p.Popularity < 0 {
		p.Popularity = 0
	}
	s.st.players[playerID] = p
	return nil
}

func (s *MemoryStore) CountHoldersOf(_ context.Context, playerID string) (int, error) {
	defer s.rlock()()
	count := 0
	for _, hs := range s.st.holdings {
		if _, ok := hs[playerID]; ok {
			count++
		}
	}
	return count, nil
}

// --- Player stats ---

func (s *MemoryStore) UpsertPlayerStat(_ context.Context, stat *models.PlayerStat) error {
	defer s.lock()()
	list := s.st.stats[stat.PlayerID]
	for i := range list {
		if list[i].Matchweek == stat.Matchweek {
			list[i] = *stat
			return nil
		}
	}
	s.st.stats[stat.PlayerID] = append(list, *stat)
	return nil
}

func (s *MemoryStore) ListPlayerStats(_ context.Context, playerID string) ([]models.PlayerStat, error) {
	defer s.rlock()()
	list := append([]models.PlayerStat(nil), s.st.stats[playerID]...)
	sort.Slice(list, func(i, j int) bool { return list[i].Matchweek < list[j].Matchweek })
	return list, nil
}

// --- Accounts and holdings ---

func (s *MemoryStore) CreateAccount(_ context.Context, a *models.Account) error {
	defer s.lock()()
	s.st.accounts[a.UserID] = *a
	return nil
}

func (s *MemoryStore) GetAccount(_ context.Context, userID int) (*models.Account, error) {
	defer s.rlock()()
	a, ok := s.st.accounts[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &a, nil
}

func (s *MemoryStore) SaveAccount(_ context.Context, a *models.Account) error {
	if err := s.failing("SaveAccount"); err != nil {
		return err
	}
	defer s.lock()()
	if _, ok := s.st.accounts[a.UserID]; !ok {
		return ErrNotFound
	}
	s.st.accounts[a.UserID] = *a
	return nil
}

func (s *MemoryStore) ListAccounts(_ context.Context) ([]models.Account, error) {
	defer s.rlock()()
	accounts := make([]models.Account, 0, len(s.st.accounts))
	for _, a := range s.st.accounts {
		accounts = append(accounts, a)
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].UserID < accounts[j].UserID })
	return accounts, nil
}

func (s *MemoryStore) GetHolding(_ context.Context, userID int, playerID string) (*models.Holding, error) {
	defer s.rlock()()
	h, ok := s.st.holdings[userID][playerID]
	if !ok {
		return nil, ErrNotFound
	}
	return &h, nil
}

func (s *MemoryStore) ListHoldings(_ context.Context, userID int) ([]models.Holding, error) {
	defer s.rlock()()
	hs := s.st.holdings[userID]
	holdings := make([]models.Holding, 0, len(hs))
	for _, h := range hs {
		holdings = append(holdings, h)
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].PlayerID < holdings[j].PlayerID })
	return holdings, nil
}

func (s *MemoryStore) SaveHolding(_ context.Context, h *models.Holding) error {
	if err := s.failing("SaveHolding"); err != nil {
		return err
	}
	defer s.lock()()
	if s.st.holdings[h.UserID] == nil {
		s.st.holdings[h.UserID] = make(map[string]models.Holding)
	}
	s.st.holdings[h.UserID][h.PlayerID] = *h
	return nil
}

func (s *MemoryStore) DeleteHolding(_ context.Context, userID int, playerID string) error {
	defer s.lock()()
	if _, ok := s.st.holdings[userID][playerID]; !ok {
		return ErrNotFound
	}
	delete(s.st.holdings[userID], playerID)
	return nil
}

// --- Transaction log ---

func (s *MemoryStore) AppendTransaction(_ context.Context, t *models.Transaction) error {
	if err := s.failing("AppendTransaction"); err != nil {
		return err
	}
	defer s.lock()()
	s.st.transactions = append(s.st.transactions, *t)
	return nil
}

func (s *MemoryStore) ListTransactions(_ context.Context, userID int, limit int) ([]models.Transaction, error) {
	defer s.rlock()()
	var result []models.Transaction
	for i := len(s.st.transactions) - 1; i >= 0; i-- {
		if s.st.transactions[i].UserID != userID {
			continue
		}
		result = append(result, s.st.transactions[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// --- Matchweeks ---

func (s *MemoryStore) CreateMatchweek(_ context.Context, m *models.Matchweek) error {
	defer s.lock()()
	s.st.matchweeks[m.WeekNumber] = *m
	return nil
}

func (s *MemoryStore) GetMatchweek(_ context.Context, weekNumber int) (*models.Matchweek, error) {
	defer s.rlock()()
	m, ok := s.st.matchweeks[weekNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return &m, nil
}

func (s *MemoryStore) GetActiveMatchweek(_ context.Context) (*models.Matchweek, error) {
	defer s.rlock()()
	for _, m := range s.st.matchweeks {
		if m.IsActive {
			return &m, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) SaveMatchweek(_ context.Context, m *models.Matchweek) error {
	defer s.lock()()
	if _, ok := s.st.matchweeks[m.WeekNumber]; !ok {
		return ErrNotFound
	}
	s.st.matchweeks[m.WeekNumber] = *m
	return nil
}

func (s *MemoryStore) DeactivateMatchweeks(_ context.Context) error {
	defer s.lock()()
	for k, m := range s.st.matchweeks {
		m.IsActive = false
		s.st.matchweeks[k] = m
	}
	return nil
}

// --- Users ---

func (s *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	defer s.lock()()
	if u.UserID == 0 {
		u.UserID = s.st.nextUserID
		s.st.nextUserID++
	}
	s.st.users[u.UserID] = *u
	return nil
}

func (s *MemoryStore) GetUser(_ context.Context, userID int) (*models.User, error) {
	defer s.rlock()()
	u, ok := s.st.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetUserByName(_ context.Context, userName string) (*models.User, error) {
	defer s.rlock()()
	for _, u := range s.st.users {
		if u.UserName == userName {
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CountUsersByMail(_ context.Context, mailID string) (int64, error) {
	defer s.rlock()()
	var count int64
	for _, u := range s.st.users {
		if u.MailID == mailID {
			count++
		}
	}
	return count, nil
}
