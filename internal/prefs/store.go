package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"regexp"
	"slices"
	"sort"
	"sync"

	"MarketCourier/internal/fileutil"
	"MarketCourier/internal/model"
)

var (
	ErrUnknownCategory = errors.New("unknown category")
	ErrUnknownSymbol   = errors.New("unknown symbol")
	ErrInvalidTime     = errors.New("time must be HH:MM")
	ErrUnknownReport   = errors.New("unknown report type")
)

var timePattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// ValidTime reports whether s is a well-formed HH:MM time of day.
func ValidTime(s string) bool {
	return timePattern.MatchString(s)
}

// Store is the per-subscriber preference store. Every operation is a
// read-modify-write of the whole document under one mutex.
type Store struct {
	mu       sync.Mutex
	path     string
	profiles map[string]StoredProfile
}

// NewStore loads the store from path. A missing or malformed file starts an
// empty store; a malformed one is moved aside first.
func NewStore(path string) (*Store, error) {
	profiles, err := loadProfiles(path)
	if err != nil {
		return nil, err
	}
	return &Store{path: path, profiles: profiles}, nil
}

func loadProfiles(path string) (map[string]StoredProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]StoredProfile{}, nil
		}
		return nil, fmt.Errorf("read preferences: %w", err)
	}
	profiles := map[string]StoredProfile{}
	if err := json.Unmarshal(data, &profiles); err != nil {
		aside := path + ".corrupt"
		if rerr := os.Rename(path, aside); rerr != nil {
			log.Printf("[WARN] move corrupt preferences aside: %v", rerr)
		}
		log.Printf("[WARN] preferences file %s unreadable, starting empty (kept as %s): %v", path, aside, err)
		return map[string]StoredProfile{}, nil
	}
	if profiles == nil {
		profiles = map[string]StoredProfile{}
	}
	return profiles, nil
}

// GetOrCreate returns the subscriber's profile, creating the starter profile
// for new subscribers and backfilling fields missing from older ones.
func (s *Store) GetOrCreate(id string) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sp, err := s.healLocked(id)
	if err != nil {
		return model.Profile{}, err
	}
	return sp.Profile(), nil
}

// Profiles returns a healed copy of every subscriber profile.
func (s *Store) Profiles() (map[string]model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for id, sp := range s.profiles {
		if healed, ok := Migrate(sp); ok {
			s.profiles[id] = healed
			changed = true
		}
	}
	if changed {
		if err := s.saveLocked(); err != nil {
			log.Printf("[ERROR] persist migrated preferences: %v", err)
		}
	}

	out := make(map[string]model.Profile, len(s.profiles))
	for id, sp := range s.profiles {
		out[id] = sp.Profile()
	}
	return out, nil
}

// IDs returns subscriber ids in sorted order.
func (s *Store) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.profiles))
	for id := range s.profiles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ToggleSymbol adds symbol to the category selection or removes it if present.
func (s *Store) ToggleSymbol(id string, c model.Category, symbol string) (model.Profile, error) {
	if !model.IsCategory(c) {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
	}
	return s.update(id, func(p *model.Profile) error {
		list := categoryList(p, c)
		if _, known := model.LookupSymbol(c, symbol); !known && !slices.Contains(*list, symbol) {
			return fmt.Errorf("%w: %s/%s", ErrUnknownSymbol, c, symbol)
		}
		*list = toggle(*list, symbol)
		return nil
	})
}

// ToggleScheduleTime flips hhmm in the delivery times.
func (s *Store) ToggleScheduleTime(id, hhmm string) (model.Profile, error) {
	return s.update(id, func(p *model.Profile) error {
		if !ValidTime(hhmm) && !slices.Contains(p.Schedule.Times, hhmm) {
			return fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
		}
		p.Schedule.Times = toggle(p.Schedule.Times, hhmm)
		return nil
	})
}

// ToggleScheduleReport flips a report type in the scheduled bundle.
func (s *Store) ToggleScheduleReport(id string, r model.ReportType) (model.Profile, error) {
	return s.update(id, func(p *model.Profile) error {
		if !model.IsReportType(r) && !slices.Contains(p.Schedule.Reports, string(r)) {
			return fmt.Errorf("%w: %s", ErrUnknownReport, r)
		}
		p.Schedule.Reports = toggle(p.Schedule.Reports, string(r))
		return nil
	})
}

// ToggleScheduleActive switches automatic delivery on or off.
func (s *Store) ToggleScheduleActive(id string) (model.Profile, error) {
	return s.update(id, func(p *model.Profile) error {
		p.Schedule.Active = !p.Schedule.Active
		return nil
	})
}

// update applies fn to the healed profile and persists the store. The
// in-memory entry is rolled back if the write fails.
func (s *Store) update(id string, fn func(p *model.Profile) error) (model.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sp, err := s.healLocked(id)
	if err != nil {
		return model.Profile{}, err
	}
	p := sp.Profile()
	if err := fn(&p); err != nil {
		return model.Profile{}, err
	}

	prev := s.profiles[id]
	s.profiles[id] = fromProfile(p)
	if err := s.saveLocked(); err != nil {
		s.profiles[id] = prev
		return model.Profile{}, fmt.Errorf("save preferences: %w", err)
	}
	return p.Clone(), nil
}

// healLocked creates or migrates the profile for id and persists any change.
func (s *Store) healLocked(id string) (StoredProfile, error) {
	sp, exists := s.profiles[id]
	changed := false
	if !exists {
		sp = fromProfile(model.NewProfile())
		changed = true
	} else if healed, ok := Migrate(sp); ok {
		sp = healed
		changed = true
	}
	if !changed {
		return sp, nil
	}

	s.profiles[id] = sp
	if err := s.saveLocked(); err != nil {
		if !exists {
			delete(s.profiles, id)
			return StoredProfile{}, fmt.Errorf("save new profile: %w", err)
		}
		// Healing is additive; keep it in memory and retry on the next write.
		log.Printf("[ERROR] persist migrated profile %s: %v", id, err)
	}
	return sp, nil
}

func (s *Store) saveLocked() error {
	data, err := json.MarshalIndent(s.profiles, "", "    ")
	if err != nil {
		return err
	}
	return fileutil.WriteAtomic(s.path, data)
}

func categoryList(p *model.Profile, c model.Category) *[]string {
	switch c {
	case model.CategoryCurrency:
		return &p.Currency
	case model.CategoryGold:
		return &p.Gold
	default:
		return &p.Crypto
	}
}

func toggle(list []string, v string) []string {
	if i := slices.Index(list, v); i >= 0 {
		return slices.Delete(slices.Clone(list), i, i+1)
	}
	return append(slices.Clone(list), v)
}
