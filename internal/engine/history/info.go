package history

// EntryInfo is a read-only view of one history entry.
type EntryInfo struct {
	Index       int
	Description string
	DocumentID  string
	Significant bool
	Locked      bool
	Done        bool
	CanUndo     bool
	CanRedo     bool
}

// Info is a read-only snapshot of a History.
type Info struct {
	EditorID     string
	NextAddIndex int
	Capacity     int
	Mode         Mode
	Entries      []EntryInfo
}

// Entries returns a snapshot of every entry, oldest first.
func (h *History) Entries() []EntryInfo {
	result := make([]EntryInfo, len(h.entries))
	for i := range h.entries {
		result[i] = h.entryInfo(i)
	}
	return result
}

func (h *History) entryInfo(i int) EntryInfo {
	p := h.entries[i]
	return EntryInfo{
		Index:       i,
		Description: p.Description(),
		DocumentID:  p.DocumentID(),
		Significant: p.IsSignificant(),
		Locked:      p.Locked(),
		Done:        i < h.nextAdd,
		CanUndo:     p.CanUndo(),
		CanRedo:     p.CanRedo(),
	}
}

// Info returns a snapshot of the history.
func (h *History) Info() Info {
	return Info{
		EditorID:     h.editorID,
		NextAddIndex: h.nextAdd,
		Capacity:     h.capacity,
		Mode:         h.mode,
		Entries:      h.Entries(),
	}
}

// PeekUndo returns info about the entry Undo would target.
func (h *History) PeekUndo() (EntryInfo, bool) {
	i := h.undoIndex()
	if i < 0 {
		return EntryInfo{}, false
	}
	return h.entryInfo(i), true
}

// PeekRedo returns info about the entry Redo would target.
func (h *History) PeekRedo() (EntryInfo, bool) {
	i := h.redoIndex()
	if i < 0 {
		return EntryInfo{}, false
	}
	return h.entryInfo(i), true
}
