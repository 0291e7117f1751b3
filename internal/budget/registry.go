package budget

import "sync"

// Registry is the explicitly owned, process-wide collection of known budgets,
// in insertion order. It replaces ambient global state: uniqueness checks and
// fetch population read and write it through a reference held by the caller.
//
// Writers are the success paths of budget creation and completed fetches;
// readers get a consistent snapshot at the point they read.
type Registry struct {
	mu      sync.Mutex
	budgets []*Budget
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends b to the registry.
func (r *Registry) Add(b *Budget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets = append(r.budgets, b)
}

// Replace swaps the registry contents for budgets, preserving their order.
// Used when a fetch completes.
func (r *Registry) Replace(budgets []*Budget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.budgets = append([]*Budget(nil), budgets...)
}

// Budgets returns a snapshot of the registry in insertion order.
func (r *Registry) Budgets() []*Budget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*Budget(nil), r.budgets...)
}

// Names returns the names of all registered budgets, for duplicate checks.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.budgets))
	for i, b := range r.budgets {
		names[i] = b.Name
	}
	return names
}

// Len reports the number of registered budgets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.budgets)
}
