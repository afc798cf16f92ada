package config

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
)

// Mode defines how users are selected from a pool during iteration.
type Mode string

const (
	// ModeSequential hands out users in order, wrapping around.
	ModeSequential Mode = "sequential"
	// ModeRandom selects a random user for each acquisition.
	ModeRandom Mode = "random"
)

// UserPool is a set of actor credentials with iteration support, so a run
// can spread authentication load across many accounts instead of hammering
// one test user.
type UserPool struct {
	users   []User
	mode    Mode
	counter atomic.Uint64
	mu      sync.Mutex
	rng     *rand.Rand
}

// NewUserPool creates a pool from explicit users.
func NewUserPool(users []User, mode Mode) *UserPool {
	if mode == "" {
		mode = ModeSequential
	}
	return &UserPool{
		users: users,
		mode:  mode,
		rng:   rand.New(rand.NewSource(rand.Int63())),
	}
}

// SingleUserPool wraps one credential pair in a pool.
func SingleUserPool(u User) *UserPool {
	return NewUserPool([]User{u}, ModeSequential)
}

// Len returns the number of users in the pool.
func (p *UserPool) Len() int {
	return len(p.users)
}

// Next returns the next user based on the pool's mode.
// Thread-safe for concurrent access by multiple actors.
func (p *UserPool) Next() User {
	if len(p.users) == 0 {
		return User{}
	}

	var idx int
	switch p.mode {
	case ModeRandom:
		p.mu.Lock()
		idx = p.rng.Intn(len(p.users))
		p.mu.Unlock()
	default:
		n := p.counter.Add(1) - 1
		idx = int(n % uint64(len(p.users)))
	}

	return p.users[idx]
}

// LoadUserFile loads actor credentials from a CSV or JSON file.
// CSV files need a header row with username/password (and optionally role)
// columns; JSON files must be an array of user objects.
func LoadUserFile(path string, mode Mode) (*UserPool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	var users []User
	var err error

	switch ext {
	case ".csv":
		users, err = loadUserCSV(path)
	case ".json":
		users, err = loadUserJSON(path)
	default:
		return nil, fmt.Errorf("unsupported user file format %q (use .csv or .json)", ext)
	}

	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	if len(users) == 0 {
		return nil, fmt.Errorf("user file %s is empty", path)
	}

	return NewUserPool(users, mode), nil
}

func loadUserCSV(path string) ([]User, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV must have a header row and at least one data row")
	}

	col := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		col[strings.ToLower(strings.TrimSpace(h))] = i
	}
	userIdx, ok := col["username"]
	if !ok {
		return nil, fmt.Errorf("CSV header missing username column")
	}
	passIdx, ok := col["password"]
	if !ok {
		return nil, fmt.Errorf("CSV header missing password column")
	}
	roleIdx, hasRole := col["role"]

	users := make([]User, 0, len(records)-1)
	for _, rec := range records[1:] {
		u := User{Username: rec[userIdx], Password: rec[passIdx]}
		if hasRole && roleIdx < len(rec) {
			u.Role = rec[roleIdx]
		}
		users = append(users, u)
	}
	return users, nil
}

func loadUserJSON(path string) ([]User, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var users []User
	if err := json.Unmarshal(data, &users); err != nil {
		return nil, fmt.Errorf("JSON must be an array of user objects: %w", err)
	}
	return users, nil
}
