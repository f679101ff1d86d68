// Package inspect renders read-only diagnostic views of editor histories.
// Nothing here mutates a History.
package inspect

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dshills/formedit/internal/engine/history"
)

// Source is anything that can produce a history snapshot.
type Source interface {
	Info() history.Info
}

// Row is one line of the listing.
type Row struct {
	Index       int
	Cursor      bool
	CanUndo     bool
	CanRedo     bool
	Locked      bool
	Significant bool
	Description string
}

// View is the listing for one history.
type View struct {
	EditorID     string
	NextAddIndex int
	Capacity     int
	Mode         string
	Rows         []Row
}

// Snapshot builds a View from src.
func Snapshot(src Source) View {
	info := src.Info()
	v := View{
		EditorID:     info.EditorID,
		NextAddIndex: info.NextAddIndex,
		Capacity:     info.Capacity,
		Mode:         info.Mode.String(),
		Rows:         make([]Row, len(info.Entries)),
	}
	for i, e := range info.Entries {
		v.Rows[i] = Row{
			Index:       e.Index,
			Cursor:      e.Index == info.NextAddIndex-1,
			CanUndo:     e.CanUndo,
			CanRedo:     e.CanRedo,
			Locked:      e.Locked,
			Significant: e.Significant,
			Description: e.Description,
		}
	}
	return v
}

// Render writes v as an aligned text table.
func Render(w io.Writer, v View) error {
	if _, err := fmt.Fprintf(w, "editor %s  nextAddIndex=%d  capacity=%d  mode=%s\n",
		v.EditorID, v.NextAddIndex, v.Capacity, v.Mode); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\t#\tUNDO\tREDO\tLOCKED\tDESCRIPTION")
	for _, r := range v.Rows {
		mark := ""
		if r.Cursor {
			mark = ">"
		}
		desc := r.Description
		if !r.Significant {
			desc = "(" + desc + ")"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\t%s\n",
			mark, r.Index, yesNo(r.CanUndo), yesNo(r.CanRedo), yesNo(r.Locked), desc)
	}
	return tw.Flush()
}

// String renders v to a string.
func (v View) String() string {
	var sb strings.Builder
	_ = Render(&sb, v)
	return sb.String()
}

// RenderAll renders a view for each source, separated by blank lines.
func RenderAll(w io.Writer, srcs ...Source) error {
	for i, src := range srcs {
		if i > 0 {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		if err := Render(w, Snapshot(src)); err != nil {
			return err
		}
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
