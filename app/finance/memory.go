package finance

import (
	"context"
	"sync"

	"tendo-schools/app/models"
)

// MemoryStore is an in-memory Store used by tests and local seeding. Writes
// take the same all-or-nothing shape as the SQL store.
type MemoryStore struct {
	mu       sync.RWMutex
	students map[string]*models.Student
	levels   map[string][]*models.ClassLevel
	rules    map[string][]*models.FeeRule
	txns     []*models.Transaction
	credits  []*models.Credit
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		students: make(map[string]*models.Student),
		levels:   make(map[string][]*models.ClassLevel),
		rules:    make(map[string][]*models.FeeRule),
	}
}

// AddStudent registers a student.
func (m *MemoryStore) AddStudent(s *models.Student) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.students[s.ID] = s
}

// AddClassLevels registers a school's ordered class list.
func (m *MemoryStore) AddClassLevels(schoolID string, levels ...*models.ClassLevel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.levels[schoolID] = append(m.levels[schoolID], levels...)
}

// AddFeeRule registers a fee rule; rules keep insertion order.
func (m *MemoryStore) AddFeeRule(r *models.FeeRule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[r.SchoolID] = append(m.rules[r.SchoolID], r)
}

// Credits returns every credit written so far.
func (m *MemoryStore) Credits() []*models.Credit {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Credit, len(m.credits))
	copy(out, m.credits)
	return out
}

// Transactions returns every transaction written so far.
func (m *MemoryStore) Transactions() []*models.Transaction {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Transaction, len(m.txns))
	copy(out, m.txns)
	return out
}

func (m *MemoryStore) Student(ctx context.Context, id string) (*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.students[id]
	if !ok || !s.IsActive {
		return nil, &NotFoundError{Resource: "student", ID: id}
	}
	return s, nil
}

func (m *MemoryStore) ClassLevels(ctx context.Context, schoolID string) ([]*models.ClassLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.ClassLevel(nil), m.levels[schoolID]...), nil
}

func (m *MemoryStore) FeeRules(ctx context.Context, schoolID string) ([]*models.FeeRule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.FeeRule(nil), m.rules[schoolID]...), nil
}

func (m *MemoryStore) PaidTotal(ctx context.Context, studentID, academicYear string, term models.Term) (float64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var total float64
	for _, t := range m.txns {
		if t.StudentID == studentID && t.AcademicYear == academicYear && t.Term == term {
			total += t.Amount
		}
	}
	return total, nil
}

func (m *MemoryStore) AppendOutcome(ctx context.Context, txns []*models.Transaction, credits []*models.Credit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txns = append(m.txns, txns...)
	m.credits = append(m.credits, credits...)
	return nil
}

func (m *MemoryStore) StudentsBySchool(ctx context.Context, schoolID string) ([]*models.Student, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Student
	for _, s := range m.students {
		if s.SchoolID == schoolID && s.IsActive {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MemoryStore) TransactionsByPeriod(ctx context.Context, schoolID, academicYear string) ([]*models.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*models.Transaction
	for _, t := range m.txns {
		if t.SchoolID == schoolID && t.AcademicYear == academicYear {
			out = append(out, t)
		}
	}
	return out, nil
}
