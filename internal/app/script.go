package app

import "github.com/dshills/formedit/internal/plugin/lua"

// scriptHost exposes the application to Lua scripts.
type scriptHost struct {
	app *Application
}

func (h scriptHost) CreateForm(id, name string) error {
	return h.app.CreateForm(id, name)
}

func (h scriptHost) EmbedForm(parentID, childID string) error {
	return h.app.EmbedForm(parentID, childID)
}

func (h scriptHost) OpenEditor(formID string) (lua.Editor, error) {
	ed, err := h.app.OpenEditor(formID)
	if err != nil {
		return nil, err
	}
	return ed, nil
}

var (
	_ lua.Host   = scriptHost{}
	_ lua.Editor = (*Editor)(nil)
)
