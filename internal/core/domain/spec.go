package domain

// SpecGroup is a choice axis on a product ("Temperature", "Sugar level").
type SpecGroup struct {
	ID   uint64
	Name string
}

// SpecItem is one selectable value inside a group ("Hot", "Iced").
type SpecItem struct {
	ID      uint64
	GroupID uint64
	Value   string
}

// SpecSelection maps a spec group id to the chosen item ids.
type SpecSelection map[uint64][]uint64
