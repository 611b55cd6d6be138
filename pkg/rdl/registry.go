package rdl

import (
	"sort"
	"sync"
)

// ItemFactory returns a new, independent report item.
type ItemFactory func() ReportItem

// ElementRegistry maps element names to the report items that parse them.
type ElementRegistry struct {
	mu        sync.RWMutex
	factories map[string]ItemFactory
}

// NewElementRegistry creates an empty registry. Every name it does not know
// builds a GenericItem.
func NewElementRegistry() *ElementRegistry {
	return &ElementRegistry{
		factories: make(map[string]ItemFactory),
	}
}

// Register associates an element name with a factory, replacing any earlier one.
func (r *ElementRegistry) Register(name string, factory ItemFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Create returns a fresh item for the element name.
func (r *ElementRegistry) Create(name string) ReportItem {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()

	if !ok {
		return newGenericItem(name)
	}
	item := factory()
	if item.base().typeName == "" {
		item.base().typeName = name
	}
	return item
}

// Has reports whether a name has a registered factory.
func (r *ElementRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered element names in sorted order.
func (r *ElementRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent copy that can be extended without touching r.
func (r *ElementRegistry) Clone() *ElementRegistry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clone := NewElementRegistry()
	for name, factory := range r.factories {
		clone.factories[name] = factory
	}
	return clone
}

var (
	defaultElements     *ElementRegistry
	defaultElementsOnce sync.Once
)

// DefaultElementRegistry returns the shared registry holding every built-in item.
func DefaultElementRegistry() *ElementRegistry {
	defaultElementsOnce.Do(func() {
		defaultElements = NewElementRegistry()
		registerBuiltinItems(defaultElements)
	})
	return defaultElements
}

func registerBuiltinItems(r *ElementRegistry) {
	r.Register("TextRun", func() ReportItem { return newTextRun() })
	r.Register("Textbox", func() ReportItem { return newTextBox() })
	r.Register("TextBox", func() ReportItem { return newTextBox() })
	r.Register("Body", func() ReportItem { return newBody() })
	r.Register("Page", func() ReportItem { return newPage() })
	r.Register("EmbeddedImages", func() ReportItem { return newEmbeddedImages() })
	r.Register("EmbeddedImage", func() ReportItem { return newEmbeddedImage() })
	r.Register("Style", func() ReportItem { return newStyle() })
	r.Register("Border", func() ReportItem { return newBorder("Border") })
	r.Register("TopBorder", func() ReportItem { return newBorder("TopBorder") })
	r.Register("BottomBorder", func() ReportItem { return newBorder("BottomBorder") })
	r.Register("LeftBorder", func() ReportItem { return newBorder("LeftBorder") })
	r.Register("RightBorder", func() ReportItem { return newBorder("RightBorder") })
	r.Register("DataSets", func() ReportItem { return newDataSets() })
	r.Register("DataSet", func() ReportItem { return newDataSet() })
	r.Register("Tablix", func() ReportItem { return newTablix() })
	r.Register("TablixBody", func() ReportItem { return newTablixBody() })
	r.Register("TablixColumn", func() ReportItem { return newTablixColumn() })
	r.Register("TablixRow", func() ReportItem { return newTablixRow() })
	r.Register("TablixCell", func() ReportItem { return newTablixCell() })
	r.Register("TablixMember", func() ReportItem { return newTablixMember() })
	r.Register("Group", func() ReportItem { return newTablixGroup() })
	r.Register("TablixRowHierarchy", func() ReportItem { return newTablixRowHierarchy() })
	r.Register("TablixColumnHierarchy", func() ReportItem { return newTablixColumnHierarchy() })
}
