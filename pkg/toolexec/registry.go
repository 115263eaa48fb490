package toolexec

import (
	"fmt"
	"sort"
	"sync"
)

// Registry defines the interface for tool registration and discovery.
// Implementations must be thread-safe for concurrent access.
type Registry interface {
	// Register adds a tool to the registry.
	// Returns ErrNilTool if tool is nil.
	// Returns ErrDuplicateTool if a tool with the same name is already registered.
	Register(tool Tool) error

	// Get retrieves a tool by name.
	// Returns ErrToolNotFound if no tool with that name is registered.
	Get(name string) (Tool, error)

	// List returns information about all registered tools, sorted by name.
	List() []ToolInfo

	// Has returns true if a tool with the given name is registered.
	Has(name string) bool

	// Count returns the number of registered tools.
	Count() int
}

// registry is the default thread-safe implementation of Registry.
type registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry holding tools. It panics on a nil or
// duplicate tool, which is a programming error.
func NewRegistry(tools ...Tool) Registry {
	r := &registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *registry) Register(tool Tool) error {
	if tool == nil {
		return ErrNilTool
	}

	name := tool.Name()
	if name == "" {
		return fmt.Errorf("cannot register tool with empty name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[name]; exists {
		return NewDuplicateToolError(name)
	}

	r.tools[name] = tool
	return nil
}

func (r *registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, ok := r.tools[name]
	if !ok {
		return nil, NewToolNotFoundError(name)
	}
	return tool, nil
}

func (r *registry) List() []ToolInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]ToolInfo, 0, len(r.tools))
	for _, tool := range r.tools {
		infos = append(infos, ToolInfoFromTool(tool))
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}

func (r *registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.tools[name]
	return ok
}

func (r *registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}
