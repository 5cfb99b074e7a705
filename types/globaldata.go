package types

// Payload is the decoded body of a global data block.
// Either Opaque (raw bytes, for anything we don't understand) or one of the structured shapes below.
// The set is closed: is_payload keeps outsiders from adding shapes the dispatcher can't encode.
type Payload interface {
	is_payload()
}

type Opaque []byte

type MiscStat struct {
	Name     string
	Category uint8
	Value    int32
}

type MiscStats struct {
	Stats []MiscStat
}

// PlayerLocation is the version 9+ layout
type PlayerLocation struct {
	NextObjectId uint32
	Worldspace1  RefId
	CoorX        int32
	CoorY        int32
	Worldspace2  RefId
	PosX         float32
	PosY         float32
	PosZ         float32
	Unknown      uint8
}

// PlayerLocationPre9 is what older saves have instead.  Not the same struct with holes in it.
type PlayerLocationPre9 struct {
	NextObjectId uint32
	Worldspace1  RefId
	Cell         [4]uint32
	Worldspace2  RefId
	Tail         uint32
}

type TesItem struct {
	RefId   RefId
	Unknown uint16
}

type Tes struct {
	List1 []TesItem
	List2 []RefId
	List3 []RefId
}

type GlobalVariable struct {
	RefId RefId
	Value float32
}

type GlobalVariables struct {
	Vars []GlobalVariable
}

func (Opaque) is_payload()              {}
func (*MiscStats) is_payload()          {}
func (*PlayerLocation) is_payload()     {}
func (*PlayerLocationPre9) is_payload() {}
func (*Tes) is_payload()                {}
func (*GlobalVariables) is_payload()    {}

type GlobalDataEntry struct {
	Type    uint32
	Name    string
	Payload Payload
}

// Is_opaque is true if the payload is a raw byte blob
func (e *GlobalDataEntry) Is_opaque() bool {
	_, ok := e.Payload.(Opaque)
	return ok
}

// GlobalDataTable is an ordered name->block mapping.
// Order is file order and is preserved.  Names are expected to be unique within a table;
// a duplicate is kept (we don't drop bytes) but Get only ever sees the first one.
type GlobalDataTable struct {
	Entries []GlobalDataEntry
}

func (t *GlobalDataTable) Len() int {
	return len(t.Entries)
}

func (t *GlobalDataTable) Get(name string) (*GlobalDataEntry, bool) {
	for i := range t.Entries {
		if t.Entries[i].Name == name {
			// Not a copy, caller may be editing
			return &t.Entries[i], true
		}
	}
	return nil, false
}

func (t *GlobalDataTable) Has(name string) bool {
	_, ok := t.Get(name)
	return ok
}

// Add appends an entry, or replaces the payload of an existing entry with the same name
func (t *GlobalDataTable) Add(entry GlobalDataEntry) {
	if e, ok := t.Get(entry.Name); ok {
		e.Type = entry.Type
		e.Payload = entry.Payload
		return
	}
	t.Entries = append(t.Entries, entry)
}

func (t *GlobalDataTable) Names() []string {
	out := make([]string, 0, len(t.Entries))
	for _, e := range t.Entries {
		out = append(out, e.Name)
	}
	return out
}
