package model

// PoolDefinition is a bucket of record identifiers.
type PoolDefinition struct {
	UserFiles []string `yaml:"users" json:"users"`
}

// PoolOrder is one stage of a day: draw Count records from pool Pool,
// firing the Before hooks on entry and the After hooks on exit.
type PoolOrder struct {
	Pool   int      `yaml:"pool" json:"pool"`
	Count  int      `yaml:"count" json:"count"`
	Before []string `yaml:"before" json:"before"`
	After  []string `yaml:"after" json:"after"`
}

// DayDefinition describes one game day.
type DayDefinition struct {
	Index     int              `yaml:"index" json:"index"`
	Directory string           `yaml:"directory" json:"directory"`
	Date      string           `yaml:"date" json:"date"`
	Pools     []PoolDefinition `yaml:"pools" json:"pools"`
	Order     []PoolOrder      `yaml:"pool_order" json:"pool_order"`
}

// DefaultDay is the definition used when a day cannot be loaded.
func DefaultDay() DayDefinition {
	return DayDefinition{
		Directory: "daynull",
		Date:      "null",
		Pools:     []PoolDefinition{},
		Order:     []PoolOrder{},
	}
}

// Clone deep-copies the pools and order so a session can consume them.
func (d DayDefinition) Clone() DayDefinition {
	out := DayDefinition{
		Index:     d.Index,
		Directory: d.Directory,
		Date:      d.Date,
		Pools:     make([]PoolDefinition, len(d.Pools)),
		Order:     make([]PoolOrder, len(d.Order)),
	}
	for i, p := range d.Pools {
		out.Pools[i] = PoolDefinition{UserFiles: append([]string(nil), p.UserFiles...)}
	}
	for i, o := range d.Order {
		out.Order[i] = PoolOrder{
			Pool:   o.Pool,
			Count:  o.Count,
			Before: append([]string(nil), o.Before...),
			After:  append([]string(nil), o.After...),
		}
	}
	return out
}

// TotalCount is the number of records the day intends to present.
func (d DayDefinition) TotalCount() int {
	total := 0
	for _, o := range d.Order {
		total += o.Count
	}
	return total
}
